package database

import (
	"database/sql"
	"fmt"
	"time"

	"sketchmatch/bitmap"
	"sketchmatch/logging"
	"sketchmatch/types"

	_ "github.com/mattn/go-sqlite3"
)

// InitDatabase initializes and returns a database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS references_idx (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL UNIQUE,
		root TEXT,
		category TEXT,
		name TEXT NOT NULL,
		modified_at TEXT,
		size INTEGER,
		bitmap BLOB NOT NULL,
		average_hash TEXT,
		created_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_name ON references_idx(name);
	CREATE INDEX IF NOT EXISTS idx_average_hash ON references_idx(average_hash);`

	if _, err = db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, err
	}

	// Older indexes were created before hashes and roots were stored
	for _, column := range []string{"average_hash", "root"} {
		var hasColumn bool
		err = db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('references_idx') WHERE name = ?", column).Scan(&hasColumn)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("error checking for %s column: %w", column, err)
		}
		if hasColumn {
			continue
		}
		if _, err = db.Exec("ALTER TABLE references_idx ADD COLUMN " + column + " TEXT;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("error adding %s column: %w", column, err)
		}
		logging.DebugLog("Added '%s' column to existing database schema", column)
	}

	if _, err = db.Exec("CREATE INDEX IF NOT EXISTS idx_root ON references_idx(root);"); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenDatabase opens an existing database connection
func OpenDatabase(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", dbPath)
}

// CheckReferenceExists reports whether path is indexed and, if so, the
// modification time stored for it
func CheckReferenceExists(db *sql.DB, path string) (bool, string, error) {
	var storedModTime sql.NullString
	err := db.QueryRow("SELECT modified_at FROM references_idx WHERE path = ?", path).Scan(&storedModTime)
	if err == sql.ErrNoRows {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("database error for %s: %w", path, err)
	}
	return true, storedModTime.String, nil
}

// StoreReference stores a reference in the database. With replace set an
// existing row for the same path is overwritten, otherwise it is kept.
func StoreReference(db *sql.DB, info types.ReferenceInfo, replace bool) error {
	packed, err := info.Bitmap.MarshalBinary()
	if err != nil {
		return fmt.Errorf("cannot encode bitmap for %s: %w", info.Path, err)
	}

	verb := "INSERT OR IGNORE"
	if replace {
		verb = "INSERT OR REPLACE"
	}
	stmt, err := db.Prepare(verb + ` INTO references_idx (
			path, root, category, name, modified_at, size, bitmap, average_hash, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("cannot prepare statement for %s: %w", info.Path, err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		info.Path,
		info.Root,
		info.Category,
		info.Name,
		info.ModifiedAt,
		info.Size,
		packed,
		info.AverageHash,
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("cannot insert data for %s: %w", info.Path, err)
	}
	return nil
}

// LoadReferences returns the references scanned from root, or from every
// root when root is empty. Rows come back grouped by root, then ordered by
// category and name, the order a folder walk visits them in.
func LoadReferences(db *sql.DB, root string) ([]types.ReferenceInfo, error) {
	query := `
		SELECT id, path, root, category, name, created_at, modified_at, size, bitmap, average_hash
		FROM references_idx`
	var args []interface{}
	if root != "" {
		query += " WHERE root = ?"
		args = append(args, root)
	}
	query += " ORDER BY root, category, name, path"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query references: %w", err)
	}
	defer rows.Close()

	var refs []types.ReferenceInfo
	for rows.Next() {
		var (
			info                                  types.ReferenceInfo
			root, category, created, modified, ah sql.NullString
			size                                  sql.NullInt64
			packed                                []byte
		)
		if err := rows.Scan(&info.ID, &info.Path, &root, &category, &info.Name, &created, &modified, &size, &packed, &ah); err != nil {
			return nil, fmt.Errorf("failed to read reference row: %w", err)
		}
		var b bitmap.Bitmap
		if err := b.UnmarshalBinary(packed); err != nil {
			return nil, fmt.Errorf("corrupt bitmap for %s: %w", info.Path, err)
		}
		info.Root = root.String
		info.Category = category.String
		info.CreatedAt = created.String
		info.ModifiedAt = modified.String
		info.Size = size.Int64
		info.AverageHash = ah.String
		info.Bitmap = b
		refs = append(refs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate references: %w", err)
	}
	return refs, nil
}

// DeleteMissing removes rows scanned from root whose path is not in seen
// and returns how many were removed. root must be in the form it was
// stored with.
func DeleteMissing(db *sql.DB, root string, seen map[string]bool) (int, error) {
	rows, err := db.Query("SELECT path FROM references_idx WHERE root = ?", root)
	if err != nil {
		return 0, fmt.Errorf("failed to list indexed paths: %w", err)
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to read indexed path: %w", err)
		}
		if !seen[path] {
			stale = append(stale, path)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to iterate indexed paths: %w", err)
	}

	for _, path := range stale {
		if _, err := db.Exec("DELETE FROM references_idx WHERE path = ?", path); err != nil {
			return 0, fmt.Errorf("cannot delete %s: %w", path, err)
		}
		logging.DebugLog("Removed missing reference: %s", path)
	}
	return len(stale), nil
}

// FindDuplicateHashes groups reference names by average hash, keeping only
// hashes shared by more than one reference
func FindDuplicateHashes(db *sql.DB) (map[string][]string, error) {
	rows, err := db.Query(`
		SELECT average_hash, name FROM references_idx
		WHERE average_hash IN (
			SELECT average_hash FROM references_idx
			WHERE average_hash IS NOT NULL AND average_hash != ''
			GROUP BY average_hash HAVING COUNT(*) > 1
		)
		ORDER BY average_hash, category, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query duplicate hashes: %w", err)
	}
	defer rows.Close()

	groups := make(map[string][]string)
	for rows.Next() {
		var hash, name string
		if err := rows.Scan(&hash, &name); err != nil {
			return nil, fmt.Errorf("failed to read duplicate row: %w", err)
		}
		groups[hash] = append(groups[hash], name)
	}
	return groups, rows.Err()
}

// ScanStats contains statistics about the reference index
type ScanStats struct {
	TotalReferences int
	Categories      int
	UniqueHashes    int
	NameCollisions  int
}

// GetScanStats retrieves statistics about indexed references
func GetScanStats(db *sql.DB) (*ScanStats, error) {
	var stats ScanStats
	var distinctNames int

	err := db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT category), COUNT(DISTINCT average_hash), COUNT(DISTINCT name)
		FROM references_idx`).Scan(&stats.TotalReferences, &stats.Categories, &stats.UniqueHashes, &distinctNames)
	if err != nil {
		return nil, fmt.Errorf("failed to get index statistics: %w", err)
	}

	// Names shared across categories collapse to one match candidate
	stats.NameCollisions = stats.TotalReferences - distinctNames
	return &stats, nil
}
