package scanner

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"sketchmatch/database"
	"sketchmatch/imageprocessor"
	"sketchmatch/logging"
	"sketchmatch/matcher"
	"sketchmatch/signalhandler"
)

// LoadDataset normalizes every reference under options.FolderPath and adds
// it to engine under its bare filename. Files that cannot be decoded are
// logged and skipped. When two categories hold the same filename the later
// one in walk order wins.
func LoadDataset(ctx context.Context, engine *matcher.Engine, options ScanOptions) (LoadReport, error) {
	startTime := time.Now()

	files, stats, err := ListReferenceFiles(options.FolderPath)
	if err != nil {
		return LoadReport{}, err
	}
	if options.DebugMode {
		logging.DebugLog("Loading %d reference files from %s", stats.totalFiles, options.FolderPath)
	}

	results, runErr := runPool(ctx, files, nil, stats, options)

	report := LoadReport{Files: len(files)}
	seen := make(map[string]bool, len(results))
	for _, result := range results {
		if !result.Success {
			report.Failed++
			logging.LogWarning("Skipping %s: %v", result.File.Path, result.Error)
			continue
		}
		if seen[result.File.Name] {
			report.Collisions++
			logging.DebugLog("Reference %s in %s replaces an earlier one", result.File.Name, result.File.Category)
		}
		seen[result.File.Name] = true
		engine.AddReference(result.File.Name, result.Bitmap, nil)
		report.Loaded++
	}

	report.Elapsed = time.Since(startTime)
	return report, runErr
}

// ScanAndStoreFolder indexes every reference under options.FolderPath into
// db. Unchanged files are skipped unless ForceRewrite is set, and rows for
// files no longer present are removed once the walk completes.
func ScanAndStoreFolder(ctx context.Context, db *sql.DB, options ScanOptions) (LoadReport, error) {
	startTime := time.Now()

	files, stats, err := ListReferenceFiles(options.FolderPath)
	if err != nil {
		return LoadReport{}, err
	}
	if options.Progress != nil {
		PrintStartupInfo(options.Progress, stats, options)
	}

	// Decide up front which files need decoding
	preset := make([]*ProcessImageResult, len(files))
	replace := make([]bool, len(files))
	for i, file := range files {
		if options.ForceRewrite {
			replace[i] = true
			continue
		}
		unchanged, stale, err := checkUnchanged(db, file.Path, options)
		switch {
		case err != nil:
			preset[i] = &ProcessImageResult{File: file, Error: err}
		case unchanged:
			preset[i] = &ProcessImageResult{File: file, Success: true, Skipped: true}
		default:
			replace[i] = stale
		}
	}

	results, runErr := runPool(ctx, files, preset, stats, options)

	report := LoadReport{Files: len(files)}
	seen := make(map[string]bool, len(results))
	names := make(map[string]bool, len(results))
	for i, result := range results {
		switch {
		case result.Skipped:
			report.Skipped++
		case !result.Success:
			report.Failed++
			logging.LogWarning("Skipping %s: %v", result.File.Path, result.Error)
			continue
		default:
			if err := storeResult(db, result, replace[i]); err != nil {
				report.Failed++
				logging.LogError("%v", err)
				continue
			}
			report.Loaded++
		}

		seen[result.File.Path] = true
		if names[result.File.Name] {
			report.Collisions++
		}
		names[result.File.Name] = true
	}

	if runErr == nil {
		removed, err := database.DeleteMissing(db, stats.root, seen)
		if err != nil {
			return report, err
		}
		report.Removed = removed
	}

	report.Elapsed = time.Since(startTime)
	if options.Progress != nil {
		PrintCompletionStats(options.Progress, report, options)
	}
	return report, runErr
}

// runPool normalizes files on a bounded set of goroutines. Entries with a
// preset result are not decoded. The returned slice follows the order of
// files; if ctx is cancelled it holds only the files started before that.
func runPool(ctx context.Context, files []ReferenceFile, preset []*ProcessImageResult, stats FileStats, options ScanOptions) ([]ProcessImageResult, error) {
	workers := options.MaxWorkers
	if workers <= 0 {
		workers = signalhandler.GetOptimalProcs()
	}

	var wg sync.WaitGroup
	results := make([]ProcessImageResult, len(files))
	resultsChan := make(chan ProcessImageResult, 100)
	semaphore := make(chan struct{}, workers)

	tracker := NewProgressTracker(stats, options.Progress, resultsChan)

	started := 0
	var runErr error
	for i, file := range files {
		if preset != nil && preset[i] != nil {
			results[i] = *preset[i]
			resultsChan <- results[i]
			started++
			continue
		}

		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		wg.Add(1)
		started++
		go func(i int, file ReferenceFile) {
			defer wg.Done()
			defer func() { <-semaphore }()

			results[i] = processFile(file)
			resultsChan <- results[i]
		}(i, file)
	}

	wg.Wait()
	close(resultsChan)
	tracker.Stop()

	if runErr != nil && options.DebugMode {
		logging.DebugLog("Scan interrupted after %d of %d files", started, len(files))
	}
	return results[:started], runErr
}

func processFile(file ReferenceFile) ProcessImageResult {
	result := ProcessImageResult{File: file}

	b, err := imageprocessor.LoadAndNormalize(file.Path)
	if err != nil {
		result.Error = err
		return result
	}

	result.Bitmap = b
	result.Success = true
	return result
}
