package scanner

import (
	"io"
	"sync"
	"time"

	"sketchmatch/bitmap"
)

// ScanOptions defines the options for scanning
type ScanOptions struct {
	FolderPath   string
	ForceRewrite bool
	DebugMode    bool
	MaxWorkers   int       // Optional worker limit
	Progress     io.Writer // Optional live progress output
}

// ReferenceFile is one dataset file found by the walk
type ReferenceFile struct {
	Root     string
	Path     string
	Category string
	Name     string
}

// ProcessImageResult holds the result of processing a reference file
type ProcessImageResult struct {
	File    ReferenceFile
	Bitmap  bitmap.Bitmap
	Success bool
	Skipped bool
	Error   error
}

// LoadReport summarises a dataset load or scan
type LoadReport struct {
	Files      int
	Loaded     int
	Skipped    int
	Failed     int
	Collisions int
	Removed    int
	Elapsed    time.Duration
}

// FileStats tracks information about files to be processed
type FileStats struct {
	root       string
	totalFiles int
	categories int
}

// ProgressTracker tracks progress of the scan operation
type ProgressTracker struct {
	processed  int
	skipped    int
	errors     int
	ticker     *time.Ticker
	done       chan struct{}
	drained    chan struct{}
	mu         sync.Mutex
	out        io.Writer
	totalFiles int
}
