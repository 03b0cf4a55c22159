package types

import "sketchmatch/bitmap"

// ReferenceInfo is one indexed reference drawing
type ReferenceInfo struct {
	ID          int64         `json:"id"`
	Path        string        `json:"path"`
	Root        string        `json:"root"`
	Category    string        `json:"category"`
	Name        string        `json:"name"`
	CreatedAt   string        `json:"created_at"`
	ModifiedAt  string        `json:"modified_at"`
	Size        int64         `json:"size"`
	Bitmap      bitmap.Bitmap `json:"-"`
	AverageHash string        `json:"average_hash"`
}

