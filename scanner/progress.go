package scanner

import (
	"fmt"
	"io"
	"time"

	"sketchmatch/logging"
)

// NewProgressTracker starts consuming results. Progress lines are written
// to out twice a second when out is not nil.
func NewProgressTracker(stats FileStats, out io.Writer, resultsChan <-chan ProcessImageResult) *ProgressTracker {
	tracker := &ProgressTracker{
		ticker:     time.NewTicker(500 * time.Millisecond),
		done:       make(chan struct{}),
		drained:    make(chan struct{}),
		out:        out,
		totalFiles: stats.totalFiles,
	}

	go tracker.displayProgress()
	go tracker.processResults(resultsChan)

	return tracker
}

func (p *ProgressTracker) displayProgress() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			if p.out == nil {
				continue
			}
			p.mu.Lock()
			if p.errors > 0 {
				fmt.Fprintf(p.out, "\rProgress: %d/%d (Skipped: %d, Errors: %d)", p.processed, p.totalFiles, p.skipped, p.errors)
			} else {
				fmt.Fprintf(p.out, "\rProgress: %d/%d (Skipped: %d)", p.processed, p.totalFiles, p.skipped)
			}
			p.mu.Unlock()
		}
	}
}

func (p *ProgressTracker) processResults(resultsChan <-chan ProcessImageResult) {
	defer close(p.drained)
	logResults := logging.Enabled()
	for result := range resultsChan {
		p.mu.Lock()
		p.processed++
		switch {
		case result.Skipped:
			p.skipped++
		case !result.Success:
			p.errors++
			if logResults && result.Error != nil {
				logging.LogImageProcessed(result.File.Path, false, result.Error.Error())
			}
		default:
			if logResults {
				logging.LogImageProcessed(result.File.Path, true, "")
			}
		}
		p.mu.Unlock()
	}
}

// Stop waits for the results channel to be closed and drained, then ends
// the progress display
func (p *ProgressTracker) Stop() {
	<-p.drained
	p.ticker.Stop()
	close(p.done)
	if p.out != nil {
		fmt.Fprintf(p.out, "\rProgress: %d/%d\n", p.processed, p.totalFiles)
	}
}

// PrintStartupInfo displays information about the scan before starting
func PrintStartupInfo(w io.Writer, stats FileStats, options ScanOptions) {
	fmt.Fprintf(w, "Starting reference indexing...\nReference files to process: %d in %d categories\n",
		stats.totalFiles, stats.categories)
	fmt.Fprintf(w, "Force rewrite mode: %v\n", options.ForceRewrite)

	if options.DebugMode {
		fmt.Fprintf(w, "Debug mode: enabled\n")
		logging.DebugLog("Found %d reference files in %d categories under %s",
			stats.totalFiles, stats.categories, options.FolderPath)
	}
}

// PrintCompletionStats displays statistics after scan completion
func PrintCompletionStats(w io.Writer, report LoadReport, options ScanOptions) {
	if options.DebugMode {
		logging.DebugLog("Scan completed in %v. Loaded: %d, Skipped: %d, Errors: %d, Removed: %d",
			report.Elapsed, report.Loaded, report.Skipped, report.Failed, report.Removed)
	}

	fmt.Fprintln(w, "Indexing complete.")
	fmt.Fprintf(w, "Indexed %d of %d references in %v (%d unchanged).\n",
		report.Loaded, report.Files, report.Elapsed.Round(time.Millisecond), report.Skipped)

	if report.Removed > 0 {
		fmt.Fprintf(w, "Removed %d references whose files disappeared.\n", report.Removed)
	}
	if report.Failed > 0 {
		fmt.Fprintf(w, "Encountered %d errors during indexing.\n", report.Failed)
		fmt.Fprintln(w, "Check the log for details.")
	}
}
