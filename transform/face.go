package transform

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"sort"

	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"
	"github.com/kmmage/kmmage/utils"
)

// FaceDetector finds faces in an image.
type FaceDetector interface {
	Detect(img *image.NRGBA) []image.Rectangle
}

// PigoDetector detects faces with a pigo cascade classifier.
type PigoDetector struct {
	MinSize     int
	ShiftFactor float64
	ScaleFactor float64
	// Angle is the in-plane rotation of the faces, in the 0..1 range.
	Angle float64
	// IoU is the intersection over union threshold used to cluster detections.
	IoU float64
	// Threshold drops detections scoring lower.
	Threshold float32

	classifier *pigo.Pigo
}

// NewPigoDetector unpacks a pigo cascade file.
func NewPigoDetector(cascade []byte) (*PigoDetector, error) {
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("error unpacking the cascade file: %w", err)
	}
	return &PigoDetector{
		MinSize:     20,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		IoU:         0.2,
		Threshold:   5.0,
		classifier:  classifier,
	}, nil
}

// LoadPigoDetector reads a cascade file from disk.
func LoadPigoDetector(path string) (*PigoDetector, error) {
	cascade, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read the cascade file: %w", err)
	}
	return NewPigoDetector(cascade)
}

func (d *PigoDetector) Detect(img *image.NRGBA) []image.Rectangle {
	dx, dy := img.Bounds().Dx(), img.Bounds().Dy()

	params := pigo.CascadeParams{
		MinSize:     d.MinSize,
		MaxSize:     utils.Max(dx, dy),
		ShiftFactor: d.ShiftFactor,
		ScaleFactor: d.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(img),
			Rows:   dy,
			Cols:   dx,
			Dim:    dx,
		},
	}
	dets := d.classifier.RunCascade(params, d.Angle)
	dets = d.classifier.ClusterDetections(dets, d.IoU)

	faces := make([]image.Rectangle, 0, len(dets))
	for _, det := range dets {
		if det.Q < d.Threshold {
			continue
		}
		half := det.Scale / 2
		faces = append(faces, image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half))
	}
	return faces
}

// FaceCrop crops the image to Width x Height around the largest detected face.
// Without a detector, or when no face is found, the crop is centred.
type FaceCrop struct {
	Width, Height int
	Detector      FaceDetector
}

func (f FaceCrop) CacheKey() string { return fmt.Sprintf("FaceCrop(%dx%d)", f.Width, f.Height) }

func (f FaceCrop) Transform(_ context.Context, src *image.NRGBA) (*image.NRGBA, error) {
	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("invalid face crop size %dx%d", f.Width, f.Height)
	}
	if f.Detector == nil {
		return imaging.Fill(src, f.Width, f.Height, imaging.Center, imaging.Lanczos), nil
	}

	faces := f.Detector.Detect(src)
	if len(faces) == 0 {
		return imaging.Fill(src, f.Width, f.Height, imaging.Center, imaging.Lanczos), nil
	}
	sort.Slice(faces, func(i, j int) bool {
		return area(faces[i]) > area(faces[j])
	})

	r := cropAround(src.Bounds(), faces[0], float64(f.Width)/float64(f.Height))
	return imaging.Resize(imaging.Crop(src, r), f.Width, f.Height, imaging.Lanczos), nil
}

// cropAround returns the largest rectangle with the given aspect ratio that fits
// in bounds, centred on face as far as the bounds allow.
func cropAround(bounds, face image.Rectangle, aspect float64) image.Rectangle {
	w, h := bounds.Dx(), int(math.Round(float64(bounds.Dx())/aspect))
	if h > bounds.Dy() {
		w, h = int(math.Round(float64(bounds.Dy())*aspect)), bounds.Dy()
	}
	c := face.Min.Add(face.Max).Div(2)

	x := utils.Clamp(c.X-w/2, bounds.Min.X, bounds.Max.X-w)
	y := utils.Clamp(c.Y-h/2, bounds.Min.Y, bounds.Max.Y-h)
	return image.Rect(x, y, x+w, y+h)
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
