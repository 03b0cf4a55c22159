package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"sketchmatch/bitmap"
	"sketchmatch/database"
	"sketchmatch/imageprocessor"
	"sketchmatch/logging"
	"sketchmatch/matcher"
	"sketchmatch/scanner"
	"sketchmatch/session"
	"sketchmatch/signalhandler"
	"sketchmatch/utils"
)

func main() {
	args := utils.ParseArguments()
	command, hasCommand := args["command"]

	dbPath := utils.GetDefaultDatabasePath()
	if customDB, ok := args["database"]; ok && customDB != "" {
		dbPath = customDB
	} else if customDB, ok := args["db"]; ok && customDB != "" {
		// Allow --db as an alias for --database
		dbPath = customDB
	}

	debugMode := false
	if _, ok := args["debug"]; ok {
		debugMode = true
		logPath := "sketchmatch.log"
		if customLogPath, ok := args["logfile"]; ok && customLogPath != "" {
			logPath = customLogPath
		}
		if err := logging.SetupLogger(logPath); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", logPath)
		}
		defer logging.CloseLogger()
	}

	showUsage := !hasCommand
	switch command {
	case "scan":
		showUsage = args["folder"] == ""
	case "match":
		showUsage = args["image"] == "" && args["grid"] == ""
	case "render":
		showUsage = args["name"] == "" || args["out"] == ""
	}
	if showUsage {
		utils.PrintUsage()
		os.Exit(1)
	}

	switch command {
	case "scan":
		handleScanCommand(args, dbPath, debugMode)
	case "match":
		handleMatchCommand(args, dbPath, debugMode)
	case "stats":
		handleStatsCommand(args, dbPath)
	case "render":
		handleRenderCommand(args, dbPath, debugMode)
	case "draw":
		handleDrawCommand(args, dbPath, debugMode)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		utils.PrintUsage()
		os.Exit(1)
	}
}

func handleScanCommand(args map[string]string, dbPath string, debugMode bool) {
	folderPath := args["folder"]
	mustBeDir(folderPath)

	_, forceRewrite := args["force"]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopSignals := signalhandler.SetupHandler(cancel)
	defer stopSignals()

	db := initDatabaseWithRetry(dbPath)
	defer db.Close()

	options := scanner.ScanOptions{
		FolderPath:   folderPath,
		ForceRewrite: forceRewrite,
		DebugMode:    debugMode,
		MaxWorkers:   signalhandler.GetOptimalProcs(),
		Progress:     os.Stdout,
	}

	startTime := time.Now()
	_, err := scanner.ScanAndStoreFolder(ctx, db, options)
	if errors.Is(err, context.Canceled) {
		fmt.Println("\nScan interrupted; files processed so far were stored.")
		return
	}
	if err != nil {
		log.Fatalf("Error scanning folder: %v", err)
	}

	fmt.Printf("\nScan completed successfully!\n")
	fmt.Printf("Total execution time: %v\n", time.Since(startTime))
	fmt.Printf("Database: %s\n", dbPath)
	printStats(db)
	printDuplicates(db, folderPath)
}

func handleMatchCommand(args map[string]string, dbPath string, debugMode bool) {
	topK := matcher.DefaultTopK
	if value, ok := args["top"]; ok {
		parsed, err := utils.ParseTopK(value)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		} else {
			topK = parsed
		}
	}

	query := loadQuery(args)
	engine := loadEngine(args, dbPath, debugMode)

	startTime := time.Now()
	matches, err := engine.Rank(query, topK)
	if err != nil {
		log.Fatalf("Error ranking drawing: %v", err)
	}

	fmt.Println("Top Matches:")
	if len(matches) == 0 {
		fmt.Println("No matches found.")
	}
	for i, m := range matches {
		fmt.Println(m.Label(i + 1))
	}

	if dir := args["preview-dir"]; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Cannot create preview directory: %v", err)
		}
		for i, m := range matches {
			out := filepath.Join(dir, fmt.Sprintf("%d_%s", i+1, previewName(m.ID)))
			if err := writePNG(out, m.Preview); err != nil {
				log.Fatalf("Error writing preview: %v", err)
			}
			fmt.Printf("Preview written: %s\n", out)
		}
	}

	if debugMode {
		logging.DebugLog("Ranked %d references in %v", engine.Len(), time.Since(startTime))
	}
}

func handleStatsCommand(args map[string]string, dbPath string) {
	mustExist(dbPath, "Database does not exist: %s. Run scan command first.")
	db, err := database.OpenDatabase(dbPath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	fmt.Printf("Database: %s\n", dbPath)
	printStats(db)
	printDuplicates(db, args["root"])
}

func handleRenderCommand(args map[string]string, dbPath string, debugMode bool) {
	engine := loadEngine(args, dbPath, debugMode)

	entry, ok := engine.Get(args["name"])
	if !ok {
		log.Fatalf("No reference named %s", args["name"])
	}
	if err := writePNG(args["out"], entry.Render()); err != nil {
		log.Fatalf("Error writing preview: %v", err)
	}
	fmt.Printf("Preview of %s written to %s\n", entry.ID, args["out"])
}

func handleDrawCommand(args map[string]string, dbPath string, debugMode bool) {
	engine := loadEngine(args, dbPath, debugMode)

	topK := matcher.DefaultTopK
	if value, ok := args["top"]; ok {
		if parsed, err := utils.ParseTopK(value); err == nil {
			topK = parsed
		}
	}

	s := session.New(engine, topK)
	if err := session.RunScript(s, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("Error in draw script: %v", err)
	}
}

// loadQuery reads the drawing from --image or --grid
func loadQuery(args map[string]string) bitmap.Bitmap {
	if path := args["grid"]; path != "" {
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("Cannot open grid file: %v", err)
		}
		defer f.Close()
		query, err := bitmap.Parse(f)
		if err != nil {
			log.Fatalf("Invalid grid in %s: %v", path, err)
		}
		return query
	}

	path := args["image"]
	mustExist(path, "Query image does not exist: %s")
	if !imageprocessor.IsImageFile(path) {
		fmt.Printf("Warning: %s has an unrecognised extension, trying to decode anyway\n", path)
	} else if !imageprocessor.CanLoadFile(path) {
		fmt.Printf("Warning: no decoder registered for %s; build with -tags gocv for OpenCV formats\n", path)
	}
	query, err := imageprocessor.LoadAndNormalize(path)
	if err != nil {
		log.Fatalf("Error loading query image: %v", err)
	}
	return query
}

// loadEngine fills an engine from --folder when given, otherwise from the
// reference index
func loadEngine(args map[string]string, dbPath string, debugMode bool) *matcher.Engine {
	engine := matcher.NewEngine()

	if folder := args["folder"]; folder != "" {
		mustBeDir(folder)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		stopSignals := signalhandler.SetupHandler(cancel)
		defer stopSignals()

		report, err := scanner.LoadDataset(ctx, engine, scanner.ScanOptions{
			FolderPath: folder,
			DebugMode:  debugMode,
			MaxWorkers: signalhandler.GetOptimalProcs(),
		})
		if err != nil {
			log.Fatalf("Error loading dataset: %v", err)
		}
		fmt.Printf("Loaded %d references from %s (%d skipped)\n", engine.Len(), folder, report.Failed)
		return engine
	}

	mustExist(dbPath, "Database does not exist: %s. Run scan command first.")
	db, err := database.OpenDatabase(dbPath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	if _, err := scanner.LoadIndex(db, engine, args["root"]); err != nil {
		log.Fatalf("Error loading references: %v", err)
	}
	fmt.Printf("Loaded %d references from %s\n", engine.Len(), dbPath)
	return engine
}

func initDatabaseWithRetry(dbPath string) *sql.DB {
	const maxRetries = 3
	for i := 0; ; i++ {
		db, err := database.InitDatabase(dbPath)
		if err == nil {
			return db
		}
		if i >= maxRetries-1 {
			log.Fatalf("Error initializing database after %d attempts: %v", maxRetries, err)
		}
		log.Printf("Error initializing database (attempt %d/%d): %v - retrying...", i+1, maxRetries, err)
		time.Sleep(time.Second * time.Duration(i+1))
	}
}

// printDuplicates reports references with identical or nearly identical
// average hashes
func printDuplicates(db *sql.DB, root string) {
	dups, err := database.FindDuplicateHashes(db)
	if err != nil {
		logging.LogWarning("Could not check for duplicates: %v", err)
		return
	}
	for hash, names := range dups {
		fmt.Printf("Warning: references %v share average hash %s\n", names, hash)
	}

	near, err := scanner.FindNearDuplicates(db, root, scanner.NearDuplicateDistance)
	if err != nil {
		logging.LogWarning("Could not check for near duplicates: %v", err)
		return
	}
	for _, pair := range near {
		fmt.Printf("Note: %s and %s are near duplicates (hash distance %d)\n",
			pair.First.Path, pair.Second.Path, pair.Distance)
	}
}

func printStats(db *sql.DB) {
	stats, err := database.GetScanStats(db)
	if err != nil {
		logging.LogWarning("Could not read index statistics: %v", err)
		return
	}
	fmt.Printf("\nSummary:\n")
	fmt.Printf("- References indexed: %d\n", stats.TotalReferences)
	fmt.Printf("- Categories: %d\n", stats.Categories)
	fmt.Printf("- Unique average hashes: %d\n", stats.UniqueHashes)
	if stats.NameCollisions > 0 {
		fmt.Printf("- Shadowed by a same-named reference: %d\n", stats.NameCollisions)
	}
}

func mustExist(path, format string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Fatalf(format, path)
	}
}

func mustBeDir(path string) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Fatalf("Folder path does not exist: %s", path)
		}
		log.Fatalf("Cannot access folder path: %s (%v)", path, err)
	}
	if !info.IsDir() {
		log.Fatalf("Path is not a directory: %s", path)
	}
}

// previewName keeps the id usable as a file name and makes it a .png
func previewName(id string) string {
	base := filepath.Base(id)
	if !imageprocessor.IsReferenceFile(base) {
		base += ".png"
	}
	return base
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
