package main

import (
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/kmmage/kmmage"
	"github.com/kmmage/kmmage/content"
	"github.com/kmmage/kmmage/geom"
	"github.com/kmmage/kmmage/raster"
	"github.com/kmmage/kmmage/transform"
	"github.com/kmmage/kmmage/utils"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// Supported files
var (
	validExtensions  = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff", ".webp"}
	outputExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff"}
)

// Ops holds the rendering pipeline shared by every processed file.
type Ops struct {
	Src, Dst, PipeName string
	Workers            int

	// Width and Height of the output. Zero keeps the intrinsic size of the
	// image on that axis.
	Width, Height int

	Loader          *kmmage.ImageLoader
	Transformations []transform.Transformation
	// Modifier places the loaded image; its Painter is set per source.
	Modifier content.Modifier
	Render   raster.Options
	Spinner  *utils.Spinner
}

// result holds the relevant information about the rendering process of a single file.
type result struct {
	path string
	err  error
}

// Execute renders the source into the destination. A directory source is
// walked recursively and its images are rendered concurrently.
func (op *Ops) Execute(ctx context.Context) error {
	if utils.IsValidUrl(op.Src) {
		return op.single(ctx)
	}

	var (
		fs  os.FileInfo
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if op.Src == op.PipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(op.Src)
	}
	if err != nil {
		return fmt.Errorf("failed to load the source image: %w", err)
	}

	switch mode := fs.Mode(); {
	case mode.IsDir():
		return op.directory(ctx)
	case mode.IsRegular() || mode&os.ModeNamedPipe != 0 || mode&os.ModeCharDevice != 0:
		return op.single(ctx)
	default:
		return fmt.Errorf("unsupported source: %s", op.Src)
	}
}

func (op *Ops) single(ctx context.Context) error {
	ext := strings.ToLower(filepath.Ext(op.Dst))
	if op.Dst != op.PipeName && !isValidExtension(ext, outputExtensions) {
		return fmt.Errorf("%v file type not supported", ext)
	}
	if err := op.process(ctx, op.Src, op.Dst); err != nil {
		return err
	}
	op.printOpStatus(op.Dst, nil)
	return nil
}

func (op *Ops) directory(ctx context.Context) error {
	if _, err := os.Stat(op.Dst); err != nil {
		if err := os.MkdirAll(op.Dst, 0755); err != nil {
			return fmt.Errorf("unable to create the destination directory: %w", err)
		}
	}

	// Limit the concurrently running workers to maxWorkers.
	workers := op.Workers
	if workers <= 0 || workers > maxWorkers {
		workers = runtime.NumCPU()
	}

	ch := make(chan result)
	done := make(chan struct{})
	defer close(done)

	paths, errc := walkDir(done, op.Src, validExtensions)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			op.consumer(ctx, ch, done, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	var total, failed int
	for res := range ch {
		total++
		if res.err != nil {
			failed++
		}
		op.printOpStatus(res.path, res.err)
	}
	if err := <-errc; err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images could not be rendered", failed, total)
	}
	return nil
}

// consumer reads the path names from the paths channel and renders each of them
// into the destination directory.
func (op *Ops) consumer(ctx context.Context, res chan<- result, done <-chan struct{}, paths <-chan string) {
	for src := range paths {
		rel, err := filepath.Rel(op.Src, src)
		if err != nil {
			rel = filepath.Base(src)
		}
		dst := outputPath(filepath.Join(op.Dst, rel))
		if err == nil {
			err = os.MkdirAll(filepath.Dir(dst), 0755)
		}
		if err == nil {
			err = op.process(ctx, src, dst)
		}

		select {
		case <-done:
			return
		case res <- result{path: src, err: err}:
		}
	}
}

// process renders a single source and writes it to out.
func (op *Ops) process(ctx context.Context, in, out string) error {
	successMsg := fmt.Sprintf("%s %s %s",
		utils.DecorateText("⚡ KMMAGE", utils.StatusMessage),
		utils.DecorateText("⇢", utils.DefaultMessage),
		utils.DecorateText("the image has been rendered successfully ✔", utils.SuccessMessage),
	)
	errorMsg := fmt.Sprintf("%s %s %s",
		utils.DecorateText("⚡ KMMAGE", utils.StatusMessage),
		utils.DecorateText("rendering image failed...", utils.DefaultMessage),
		utils.DecorateText("✘", utils.ErrorMessage),
	)

	if op.Spinner != nil {
		op.Spinner.Start()
	}
	stop := func(msg string) {
		if op.Spinner != nil {
			op.Spinner.Stop(msg)
		}
	}

	data, err := op.source(in)
	if err != nil {
		stop(errorMsg)
		return err
	}
	img, err := op.render(ctx, data)
	if err != nil {
		stop(errorMsg)
		return err
	}

	if err := op.write(out, img); err != nil {
		stop(errorMsg)
		return err
	}
	stop(successMsg)

	return nil
}

// source converts the input path into request data understood by the loader.
func (op *Ops) source(in string) (any, error) {
	switch {
	case utils.IsValidUrl(in):
		return in, nil
	case in == op.PipeName:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return os.Stdin, nil
	default:
		return in, nil
	}
}

// request builds the image request for data.
func (op *Ops) request(data any) *kmmage.ImageRequest {
	b := op.Loader.NewBuilder().
		Data(data).
		Transformations(op.Transformations...).
		PremultipliedAlpha(false)
	if op.Width > 0 && op.Height > 0 {
		// Decode no larger than needed; the canvas does the final resampling.
		scale := requestScale(op.Modifier.ContentScale)
		if hasFaceCrop(op.Transformations) {
			// The crop has to cover the output on both axes.
			scale = kmmage.ScaleFill
		}
		b.Size(op.Width, op.Height).
			Scale(scale).
			Precision(kmmage.PrecisionInexact)
	}
	return b.Build()
}

// load executes the image request for data and returns the decoded image.
func (op *Ops) load(ctx context.Context, data any) (image.Image, error) {
	res := op.Loader.Execute(ctx, op.request(data))
	if e, ok := res.(*kmmage.ErrorResult); ok {
		return nil, e.Err
	}
	return res.Image(), nil
}

// render loads data and draws it through the modifier into a new image.
func (op *Ops) render(ctx context.Context, data any) (*image.NRGBA, error) {
	img, err := op.load(ctx, data)
	if err != nil {
		return nil, err
	}

	m := op.Modifier
	m.Painter = content.NewImagePainter(img)

	canvas, err := raster.Render(m, outputConstraints(op.Width, op.Height), op.Render)
	if err != nil {
		return nil, err
	}
	return canvas.Image(), nil
}

// write encodes img into out, choosing the format from the file extension.
// The pipe name writes a JPEG to stdout.
func (op *Ops) write(out string, img image.Image) error {
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("`-` should be used with a pipe for stdout")
		}
		return encode(os.Stdout, img, ".jpg")
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("unable to create the destination file: %w", err)
	}
	if err := encode(f, img, filepath.Ext(out)); err != nil {
		f.Close()
		// remove the generated image file in case of an error
		os.Remove(out)
		return err
	}
	return f.Close()
}

// outputPath replaces an extension that cannot be encoded with .png.
func outputPath(path string) string {
	ext := filepath.Ext(path)
	if isValidExtension(strings.ToLower(ext), outputExtensions) {
		return path
	}
	return strings.TrimSuffix(path, ext) + ".png"
}

// encode writes img in the format matching ext.
func encode(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case ".png":
		return png.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".gif":
		return gif.Encode(w, img, nil)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%v file type not supported for encoding", ext)
	}
}

// outputConstraints maps the requested output size to layout constraints.
// A single given dimension keeps the aspect ratio of the image on the other one.
func outputConstraints(width, height int) geom.Constraints {
	switch {
	case width > 0 && height > 0:
		return geom.Fixed(width, height)
	case width > 0:
		return geom.Constraints{MaxWidth: width, MaxHeight: geom.Infinity}
	case height > 0:
		return geom.Constraints{MaxWidth: geom.Infinity, MaxHeight: height}
	default:
		return geom.Unbounded()
	}
}

// requestScale picks the sampling scale that leaves enough pixels for the
// content scale applied at render time.
func requestScale(s content.ContentScale) kmmage.Scale {
	switch s {
	case content.Crop, content.Fill, content.FillWidth, content.FillHeight:
		return kmmage.ScaleFill
	default:
		return kmmage.ScaleFit
	}
}

func hasFaceCrop(ts []transform.Transformation) bool {
	for _, t := range ts {
		if _, ok := t.(transform.FaceCrop); ok {
			return true
		}
	}
	return false
}

// printOpStatus displays the relevant information about the rendering process.
func (op *Ops) printOpStatus(fname string, err error) {
	if err != nil {
		log.Printf(
			utils.DecorateText("\nError rendering the image: %s", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err.Error()), utils.DefaultMessage),
		)
		return
	}
	if fname != op.PipeName {
		fmt.Fprintf(os.Stderr, "\nThe image has been saved as: %s %s\n\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each supported image to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan struct{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}
			if !isValidExtension(strings.ToLower(filepath.Ext(f.Name())), srcExts) {
				return nil
			}

			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	return utils.Contains(extensions, ext)
}
