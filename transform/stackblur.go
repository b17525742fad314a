// Go implementation of the StackBlur algorithm described here:
// http://incubator.quasimondo.com/processing/fast_blur_deluxe.php

package transform

import "image"

var mulTable = [...]uint32{
	512, 512, 456, 512, 328, 456, 335, 512, 405, 328, 271, 456, 388, 335, 292, 512,
	454, 405, 364, 328, 298, 271, 496, 456, 420, 388, 360, 335, 312, 292, 273, 512,
	482, 454, 428, 405, 383, 364, 345, 328, 312, 298, 284, 271, 259, 496, 475, 456,
	437, 420, 404, 388, 374, 360, 347, 335, 323, 312, 302, 292, 282, 273, 265, 512,
	497, 482, 468, 454, 441, 428, 417, 405, 394, 383, 373, 364, 354, 345, 337, 328,
	320, 312, 305, 298, 291, 284, 278, 271, 265, 259, 507, 496, 485, 475, 465, 456,
	446, 437, 428, 420, 412, 404, 396, 388, 381, 374, 367, 360, 354, 347, 341, 335,
	329, 323, 318, 312, 307, 302, 297, 292, 287, 282, 278, 273, 269, 265, 261, 512,
	505, 497, 489, 482, 475, 468, 461, 454, 447, 441, 435, 428, 422, 417, 411, 405,
	399, 394, 389, 383, 378, 373, 368, 364, 359, 354, 350, 345, 341, 337, 332, 328,
	324, 320, 316, 312, 309, 305, 301, 298, 294, 291, 287, 284, 281, 278, 274, 271,
	268, 265, 262, 259, 257, 507, 501, 496, 491, 485, 480, 475, 470, 465, 460, 456,
	451, 446, 442, 437, 433, 428, 424, 420, 416, 412, 408, 404, 400, 396, 392, 388,
	385, 381, 377, 374, 370, 367, 363, 360, 357, 354, 350, 347, 344, 341, 338, 335,
	332, 329, 326, 323, 320, 318, 315, 312, 310, 307, 304, 302, 299, 297, 294, 292,
	289, 287, 285, 282, 280, 278, 275, 273, 271, 269, 267, 265, 263, 261, 259,
}

var shgTable = [...]uint32{
	9, 11, 12, 13, 13, 14, 14, 15, 15, 15, 15, 16, 16, 16, 16, 17,
	17, 17, 17, 17, 17, 17, 18, 18, 18, 18, 18, 18, 18, 18, 18, 19,
	19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 20, 20, 20,
	20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 21,
	21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21,
	21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 22, 22, 22, 22, 22, 22,
	22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22,
	22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 23,
	23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23,
	23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23,
	23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23,
	23, 23, 23, 23, 23, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
}

type pixel [4]uint32

// stackBlur blurs img in place. img must have its origin at (0, 0).
func stackBlur(img *image.NRGBA, radius int) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if radius < 1 || w == 0 || h == 0 {
		return
	}
	radius = min(radius, len(mulTable)-1)

	stack := make([]pixel, 2*radius+1)
	for y := 0; y < h; y++ {
		blurLine(img.Pix, y*img.Stride, 4, w, radius, stack)
	}
	for x := 0; x < w; x++ {
		blurLine(img.Pix, x*4, img.Stride, h, radius, stack)
	}
}

// blurLine blurs the n pixels starting at pix[start], step bytes apart.
func blurLine(pix []uint8, start, step, n, radius int, stack []pixel) {
	var (
		sum, inSum, outSum pixel
		div                = len(stack)
		last               = n - 1
		mul                = mulTable[radius]
		shg                = shgTable[radius]
	)
	at := func(i int) pixel {
		o := start + i*step
		return pixel{uint32(pix[o]), uint32(pix[o+1]), uint32(pix[o+2]), uint32(pix[o+3])}
	}

	first := at(0)
	for i := 0; i <= radius; i++ {
		stack[i] = first
		for c := range first {
			sum[c] += first[c] * uint32(i+1)
			outSum[c] += first[c]
		}
	}
	for i := 1; i <= radius; i++ {
		p := at(min(i, last))
		stack[i+radius] = p
		for c := range p {
			sum[c] += p[c] * uint32(radius+1-i)
			inSum[c] += p[c]
		}
	}

	sp := radius
	xp := min(radius, last)
	for x := 0; x < n; x++ {
		o := start + x*step
		for c := range sum {
			pix[o+c] = uint8(min((sum[c]*mul)>>shg, 255))
		}

		stackStart := sp + div - radius
		if stackStart >= div {
			stackStart -= div
		}
		for c := range sum {
			sum[c] -= outSum[c]
			outSum[c] -= stack[stackStart][c]
		}

		if xp < last {
			xp++
		}
		stack[stackStart] = at(xp)
		for c := range sum {
			inSum[c] += stack[stackStart][c]
			sum[c] += inSum[c]
		}

		if sp++; sp >= div {
			sp = 0
		}
		for c := range sum {
			outSum[c] += stack[sp][c]
			inSum[c] -= stack[sp][c]
		}
	}
}
