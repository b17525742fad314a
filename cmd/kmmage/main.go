package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"gioui.org/app"
	"github.com/kmmage/kmmage"
	"github.com/kmmage/kmmage/content"
	"github.com/kmmage/kmmage/geom"
	"github.com/kmmage/kmmage/imop"
	"github.com/kmmage/kmmage/raster"
	"github.com/kmmage/kmmage/transform"
	"github.com/kmmage/kmmage/utils"
)

const HelpBanner = `
┬┌─┌┬┐┌┬┐┌─┐┌─┐┌─┐
├┴┐│││││││├─┤│ ┬├┤
┴ ┴┴ ┴┴ ┴┴ ┴└─┘└─┘

Image loading and placement toolkit.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source file, directory, URL or - for stdin")
	destination = flag.String("out", pipeName, "Destination file, directory or - for stdout")
	newWidth    = flag.Int("width", 0, "Output width")
	newHeight   = flag.Int("height", 0, "Output height")
	scale       = flag.String("scale", "fit", "Content scale: fit, crop, fill, inside, none, fillwidth, fillheight")
	align       = flag.String("align", "center", "Alignment, e.g. center, top-start, bottom-end")
	rtl         = flag.Bool("rtl", false, "Right-to-left layout direction")
	alpha       = flag.Float64("alpha", 1, "Image opacity in the [0, 1] range")
	background  = flag.String("bg", "", "Background color as hex, transparent if empty")
	tint        = flag.String("tint", "", "Tint color as hex")
	blendMode   = flag.String("blend", string(imop.Normal), "Blend mode of the tint color")
	saturation  = flag.Float64("saturation", 0, "Saturation change in the [-100, 100] range")
	grayscale   = flag.Bool("gray", false, "Convert the image to grayscale")
	dither      = flag.Bool("dither", false, "Apply a threshold dither")
	blurRadius  = flag.Int("blur", 0, "Blur radius")
	cascade     = flag.String("face", "", "Face classifier cascade; crops around the largest face")
	cacheDir    = flag.String("cache", "", "Disk cache directory for remote images")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
	preview     = flag.Bool("preview", false, "Show the image in a window")
	terminal    = flag.Bool("term", false, "Show the image in the terminal")
	verbose     = flag.Bool("v", false, "Verbose logging")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *verbose {
		kmmage.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	op, err := newOps()
	if err != nil {
		flag.Usage()
		log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bg := backgroundColor(*background)

	switch {
	case *preview:
		// The window event loop needs the main OS thread.
		go func() {
			if err := op.Preview(ctx, bg); err != nil {
				log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
			}
			os.Exit(0)
		}()
		app.Main()
	case *terminal:
		if err := op.Terminal(ctx); err != nil && ctx.Err() == nil {
			log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
		}
	default:
		spinnerText := fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ KMMAGE", utils.StatusMessage),
			utils.DecorateText("⇢ rendering image...", utils.DefaultMessage))
		op.Spinner = utils.NewSpinner(spinnerText, time.Millisecond*80, true)

		// Restore the cursor visibility on CTRL-C.
		go func() {
			<-ctx.Done()
			op.Spinner.RestoreCursor()
		}()

		now := time.Now()
		if err := op.Execute(ctx); err != nil {
			log.Fatalf(
				utils.DecorateText("\nError rendering the image: %s", utils.ErrorMessage),
				utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err), utils.DefaultMessage),
			)
		}
		fmt.Fprintf(os.Stderr, "\nExecution time: %s\n",
			utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	}
}

// newOps builds the rendering pipeline from the command line flags.
func newOps() (*Ops, error) {
	if *alpha < 0 || *alpha > 1 {
		return nil, fmt.Errorf("alpha should be in the [0, 1] range, got %v", *alpha)
	}
	if *saturation < -100 || *saturation > 100 {
		return nil, fmt.Errorf("saturation should be in the [-100, 100] range, got %v", *saturation)
	}

	cs, err := content.ParseContentScale(*scale)
	if err != nil {
		return nil, err
	}
	al, err := content.ParseAlignment(*align)
	if err != nil {
		return nil, err
	}
	if err := imop.NewBlend().Set(imop.BlendMode(*blendMode)); err != nil {
		return nil, err
	}

	ts, err := transformations()
	if err != nil {
		return nil, err
	}

	var opts []kmmage.Option
	if *cacheDir != "" {
		dc, err := kmmage.NewDiskCache(*cacheDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kmmage.WithDiskCache(dc))
	}

	m := content.NewModifier(nil)
	m.ContentScale = cs
	m.Alignment = al
	m.Alpha = float32(*alpha)
	if f := colorFilter(*tint, imop.BlendMode(*blendMode), *saturation); len(f) > 0 {
		m.ColorFilter = f
	}

	dir := geom.LTR
	if *rtl {
		dir = geom.RTL
	}
	return &Ops{
		Src:             *source,
		Dst:             *destination,
		PipeName:        pipeName,
		Workers:         *workers,
		Width:           *newWidth,
		Height:          *newHeight,
		Loader:          kmmage.NewImageLoader(opts...),
		Transformations: ts,
		Modifier:        m,
		Render:          raster.Options{Background: backgroundColor(*background), Direction: dir},
	}, nil
}

// backgroundColor parses a hex color. The empty string is transparent.
func backgroundColor(hex string) color.NRGBA {
	if hex == "" {
		return color.NRGBA{}
	}
	return utils.HexToRGBA(hex)
}

// transformations returns the pixel transformations selected by the flags,
// applied by the loader in this order.
func transformations() ([]transform.Transformation, error) {
	var ts []transform.Transformation
	if *cascade != "" {
		if *newWidth <= 0 || *newHeight <= 0 {
			return nil, fmt.Errorf("the -face flag needs both -width and -height")
		}
		det, err := transform.LoadPigoDetector(*cascade)
		if err != nil {
			return nil, err
		}
		ts = append(ts, transform.FaceCrop{Width: *newWidth, Height: *newHeight, Detector: det})
	}
	if *blurRadius > 0 {
		ts = append(ts, transform.Blur{Radius: *blurRadius})
	}
	if *grayscale {
		ts = append(ts, transform.Grayscale{})
	}
	if *dither {
		ts = append(ts, transform.Dither{})
	}
	return ts, nil
}

// colorFilter chains the tint and saturation filters. An empty chain means
// no filter.
func colorFilter(tint string, mode imop.BlendMode, saturation float64) imop.Chain {
	var chain imop.Chain
	if tint != "" {
		f := imop.Tint(utils.HexToRGBA(tint))
		if mode != "" && mode != imop.Normal {
			// Blend over the image instead of replacing its colors.
			f.Op = imop.SrcAtop
			f.Mode = mode
		}
		chain = append(chain, f)
	}
	if saturation != 0 {
		chain = append(chain, imop.SaturationFilter{Percentage: saturation})
	}
	return chain
}
