package imageprocessor

import (
	"path/filepath"
	"sort"
	"strings"
)

// FormatType represents a known image format type
type FormatType string

// Known image format constants
const (
	FormatUnknown FormatType = "unknown"
	FormatPNG     FormatType = "png"
	FormatJPEG    FormatType = "jpeg"
	FormatGIF     FormatType = "gif"
	FormatBMP     FormatType = "bmp"
	FormatTIFF    FormatType = "tiff"
	FormatWEBP    FormatType = "webp"
	FormatPNM     FormatType = "pnm"
	FormatJP2     FormatType = "jp2"
)

// Map of extensions to format types
var formatExtensions = map[string]FormatType{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".webp": FormatWEBP,
	".pbm":  FormatPNM,
	".pgm":  FormatPNM,
	".ppm":  FormatPNM,
	".pnm":  FormatPNM,
	".jp2":  FormatJP2,
}

// ReferenceExtension is the only suffix picked up from a dataset folder
const ReferenceExtension = ".png"

// IsImageFile checks if a file is a supported image based on extension
func IsImageFile(path string) bool {
	return GetFileFormat(path) != FormatUnknown
}

// IsReferenceFile reports whether a dataset file should be loaded as a
// reference. The suffix check is case-insensitive.
func IsReferenceFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ReferenceExtension)
}

// GetFileFormat returns the format type based on file extension
func GetFileFormat(path string) FormatType {
	ext := strings.ToLower(filepath.Ext(path))
	format, exists := formatExtensions[ext]
	if !exists {
		return FormatUnknown
	}
	return format
}

// GetSupportedExtensions returns all supported image file extensions, sorted
func GetSupportedExtensions() []string {
	extensions := make([]string, 0, len(formatExtensions))
	for ext := range formatExtensions {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}
