/*
Package kmmage is an image loading library. It builds immutable image requests,
runs them through a memory and disk cached fetch, decode and transform pipeline
and hands the result to the display surfaces of the sub-packages:

  - content places a painter inside a layout box following a content scale and an alignment.
  - raster draws into in-memory images, gioimage into Gio widgets and termview into a terminal.

The package provides a command line interface, supporting various flags for the
different ways an image can be placed. To check the supported commands type:

	$ kmmage --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"context"
		"fmt"

		"github.com/kmmage/kmmage"
	)

	func main() {
		loader := kmmage.NewImageLoader()
		req := loader.NewBuilder().
			Data("https://example.com/image.jpg").
			Size(640, 480).
			Build()

		switch res := loader.Execute(context.Background(), req).(type) {
		case *kmmage.SuccessResult:
			fmt.Println("loaded", res.Img.Bounds(), "from", res.DataSource)
		case *kmmage.ErrorResult:
			fmt.Printf("Error loading image: %v", res.Err)
		}
	}
*/
package kmmage
