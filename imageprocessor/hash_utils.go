package imageprocessor

import (
	"fmt"

	"sketchmatch/bitmap"

	"github.com/corona10/goimagehash"
)

// ComputeAverageHash computes a 64-bit average hash of a normalized bitmap.
// Identical bitmaps always share a hash, which the index uses to report
// duplicate references.
func ComputeAverageHash(b bitmap.Bitmap) (string, error) {
	if b.Len() == 0 {
		return "", fmt.Errorf("cannot compute hash for empty bitmap")
	}

	hash, err := goimagehash.AverageHash(b.Render(1))
	if err != nil {
		return "", fmt.Errorf("average hash: %w", err)
	}
	return hash.ToString(), nil
}

// CalculateHammingDistance returns the number of differing bits between two
// hashes produced by ComputeAverageHash
func CalculateHammingDistance(hash1, hash2 string) (int, error) {
	h1, err := goimagehash.ImageHashFromString(hash1)
	if err != nil {
		return 0, fmt.Errorf("parsing hash %q: %w", hash1, err)
	}
	h2, err := goimagehash.ImageHashFromString(hash2)
	if err != nil {
		return 0, fmt.Errorf("parsing hash %q: %w", hash2, err)
	}
	return h1.Distance(h2)
}
