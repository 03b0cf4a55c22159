//go:build gocv

package imageprocessor

import (
	"fmt"
	"image"

	"sketchmatch/logging"

	"gocv.io/x/gocv"
)

// CVImageLoader decodes formats the Go image packages cannot, through OpenCV
type CVImageLoader struct {
	BaseImageLoader
}

// NewCVImageLoader creates a loader backed by gocv.IMRead
func NewCVImageLoader() *CVImageLoader {
	return &CVImageLoader{
		BaseImageLoader: BaseImageLoader{
			SupportedFormats: []FormatType{FormatPNM, FormatJP2},
		},
	}
}

// LoadImage reads the file with OpenCV and converts the Mat to an image.Image
func (l *CVImageLoader) LoadImage(path string) (image.Image, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()

	if mat.Empty() {
		return nil, newImageLoadError(path, fmt.Errorf("opencv could not decode file"))
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, newImageLoadError(path, fmt.Errorf("converting mat: %w", err))
	}
	return img, nil
}

func (r *ImageLoaderRegistry) registerPlatformLoaders() {
	cvLoader := NewCVImageLoader()
	for _, ext := range []string{".pbm", ".pgm", ".ppm", ".pnm", ".jp2"} {
		r.RegisterLoader(ext, cvLoader)
	}
	logging.LogInfo("Registered OpenCV loader %s", gocv.Version())
}
