package imageprocessor

import "fmt"

// LoadError reports a source image that could not be read or decoded.
// Dataset loading treats it as non-fatal: the file is skipped.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load image %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// newImageLoadError creates a LoadError for path, keeping an existing
// LoadError as is.
func newImageLoadError(path string, err error) error {
	if le, ok := err.(*LoadError); ok {
		return le
	}
	return &LoadError{Path: path, Err: err}
}
