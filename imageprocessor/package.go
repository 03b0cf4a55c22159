// Package imageprocessor loads image files and normalizes them into the
// fixed-size binary bitmaps that drawings are matched against.
package imageprocessor

import "image"

// ImageLoader is the interface that all image loaders must implement
type ImageLoader interface {
	// CanLoad checks if the loader can handle the given file
	CanLoad(path string) bool

	// LoadImage decodes and returns the image
	LoadImage(path string) (image.Image, error)
}
