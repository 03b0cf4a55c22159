package scanner

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sketchmatch/database"
	"sketchmatch/imageprocessor"
	"sketchmatch/logging"
	"sketchmatch/matcher"
	"sketchmatch/types"
)

// checkUnchanged reports whether path is indexed with a modification time
// not older than the file's. stale is true when a row exists but the file
// has changed since.
func checkUnchanged(db *sql.DB, path string, options ScanOptions) (unchanged, stale bool, err error) {
	exists, storedModTime, err := database.CheckReferenceExists(db, path)
	if err != nil {
		return false, false, err
	}
	if !exists {
		return false, false, nil
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		return false, false, fmt.Errorf("cannot stat file %s: %w", path, err)
	}

	storedTime, err := time.Parse(time.RFC3339, storedModTime)
	if err != nil {
		// Unreadable timestamp: reindex
		return false, true, nil
	}

	if !fileInfo.ModTime().After(storedTime) {
		if options.DebugMode {
			logging.DebugLog("Skipping unchanged reference: %s", path)
		}
		return true, false, nil
	}
	return false, true, nil
}

// storeResult writes a decoded reference to the index
func storeResult(db *sql.DB, result ProcessImageResult, replace bool) error {
	fileInfo, err := os.Stat(result.File.Path)
	if err != nil {
		return fmt.Errorf("cannot stat file %s: %w", result.File.Path, err)
	}

	hash, err := imageprocessor.ComputeAverageHash(result.Bitmap)
	if err != nil {
		return fmt.Errorf("cannot compute average hash for %s: %w", result.File.Path, err)
	}

	info := types.ReferenceInfo{
		Path:        result.File.Path,
		Root:        result.File.Root,
		Category:    result.File.Category,
		Name:        result.File.Name,
		ModifiedAt:  fileInfo.ModTime().Format(time.RFC3339Nano),
		Size:        fileInfo.Size(),
		Bitmap:      result.Bitmap,
		AverageHash: hash,
	}
	return database.StoreReference(db, info, replace)
}

// LoadIndex fills engine with the references scanned from root and returns
// the number of rows read. Rows arrive in walk order, so name collisions
// resolve the same way as a direct folder load. An empty root loads every
// scanned dataset, one root after another.
func LoadIndex(db *sql.DB, engine *matcher.Engine, root string) (int, error) {
	root, err := resolveRoot(root)
	if err != nil {
		return 0, err
	}
	refs, err := database.LoadReferences(db, root)
	if err != nil {
		return 0, err
	}
	for _, ref := range refs {
		engine.AddReference(ref.Name, ref.Bitmap, nil)
	}
	return len(refs), nil
}

// resolveRoot returns root as stored by a scan; empty stays empty
func resolveRoot(root string) (string, error) {
	if root == "" {
		return "", nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("cannot resolve dataset root: %w", err)
	}
	return abs, nil
}

// NearDuplicateDistance is the largest average-hash distance reported as a
// near duplicate
const NearDuplicateDistance = 2

// NearDuplicate is a pair of references whose average hashes differ in only
// a few bits
type NearDuplicate struct {
	First    types.ReferenceInfo
	Second   types.ReferenceInfo
	Distance int
}

// FindNearDuplicates compares the average hashes of the references scanned
// from root (every root when empty) and returns the pairs at a distance of
// 1 to maxDistance. Identical hashes are left to database.FindDuplicateHashes.
func FindNearDuplicates(db *sql.DB, root string, maxDistance int) ([]NearDuplicate, error) {
	root, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	refs, err := database.LoadReferences(db, root)
	if err != nil {
		return nil, err
	}

	var pairs []NearDuplicate
	for i := 0; i < len(refs); i++ {
		if refs[i].AverageHash == "" {
			continue
		}
		for j := i + 1; j < len(refs); j++ {
			if refs[j].AverageHash == "" {
				continue
			}
			dist, err := imageprocessor.CalculateHammingDistance(refs[i].AverageHash, refs[j].AverageHash)
			if err != nil {
				return nil, fmt.Errorf("comparing %s and %s: %w", refs[i].Path, refs[j].Path, err)
			}
			if dist > 0 && dist <= maxDistance {
				pairs = append(pairs, NearDuplicate{First: refs[i], Second: refs[j], Distance: dist})
			}
		}
	}
	return pairs, nil
}
