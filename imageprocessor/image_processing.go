package imageprocessor

import (
	"image"
	"sync"

	"sketchmatch/bitmap"
)

var (
	defaultRegistry *ImageLoaderRegistry
	registryOnce    sync.Once
)

func registry() *ImageLoaderRegistry {
	registryOnce.Do(func() {
		defaultRegistry = NewImageLoaderRegistry()
	})
	return defaultRegistry
}

// LoadImage loads an image using the appropriate loader based on file type
func LoadImage(path string) (image.Image, error) {
	return registry().LoadImage(path)
}

// CanLoadFile reports whether a loader is registered for the file's extension
func CanLoadFile(path string) bool {
	return registry().CanLoadFile(path)
}

// LoadAndNormalize decodes the file at path and normalizes it. Any read or
// decode failure is returned as *LoadError naming the file.
func LoadAndNormalize(path string) (bitmap.Bitmap, error) {
	img, err := LoadImage(path)
	if err != nil {
		return bitmap.Bitmap{}, err
	}
	return Normalize(img), nil
}
