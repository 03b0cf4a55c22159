package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sketchmatch/bitmap"
	"sketchmatch/imageprocessor"
	"sketchmatch/matcher"
)

// DatabaseEnv overrides the default database location when set
const DatabaseEnv = "SKETCHMATCH_DB"

var commands = map[string]bool{
	"scan":   true,
	"match":  true,
	"stats":  true,
	"render": true,
	"draw":   true,
}

// ParseArguments converts os.Args into a map of flags and values
func ParseArguments() map[string]string {
	return ParseArgs(os.Args[1:])
}

// ParseArgs converts arguments into a map of flags and values. The first
// known command word is stored under "command".
func ParseArgs(argv []string) map[string]string {
	args := make(map[string]string)

	commandIndex := -1
	for i, arg := range argv {
		if commands[arg] {
			args["command"] = arg
			commandIndex = i
			break
		}
	}

	for i := 0; i < len(argv); i++ {
		if i == commandIndex {
			continue
		}

		arg := argv[i]
		if !strings.HasPrefix(arg, "--") {
			continue
		}

		// --key=value
		if strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			args[strings.TrimPrefix(parts[0], "--")] = parts[1]
			continue
		}

		// --key value, or a bare boolean flag
		flagName := strings.TrimPrefix(arg, "--")
		if i+1 >= len(argv) || strings.HasPrefix(argv[i+1], "--") || i+1 == commandIndex {
			args[flagName] = "true"
		} else {
			args[flagName] = argv[i+1]
			i++
		}
	}

	return args
}

// GetDefaultDatabasePath returns the default path for the database file
func GetDefaultDatabasePath() string {
	if path := os.Getenv(DatabaseEnv); path != "" {
		return path
	}

	exePath, err := os.Executable()
	if err != nil {
		return "sketches.db"
	}
	return filepath.Join(filepath.Dir(exePath), "sketches.db")
}

// ParseTopK parses and validates the number of matches to report
func ParseTopK(value string) (int, error) {
	k, err := strconv.Atoi(value)
	if err != nil || k < 1 {
		return matcher.DefaultTopK, fmt.Errorf("invalid --top value '%s', using default (%d)", value, matcher.DefaultTopK)
	}
	return k, nil
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s scan --folder=PATH [--database=PATH] [--force] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("  %s match --image=PATH|--grid=PATH [--database=PATH [--root=PATH]|--folder=PATH] [--top=N] [--preview-dir=DIR]\n", os.Args[0])
	fmt.Printf("  %s stats [--database=PATH] [--root=PATH]\n", os.Args[0])
	fmt.Printf("  %s render --name=ID --out=FILE [--database=PATH [--root=PATH]|--folder=PATH]\n", os.Args[0])
	fmt.Printf("  %s draw [--database=PATH [--root=PATH]|--folder=PATH] < script\n", os.Args[0])
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --folder      : Dataset root, one subdirectory per category holding .png references\n")
	fmt.Printf("  --database    : Path to the reference index (default: %s, or $%s)\n", GetDefaultDatabasePath(), DatabaseEnv)
	fmt.Printf("  --root        : Only use references scanned from this dataset root (default: every scanned root)\n")
	fmt.Printf("  --image       : Query drawing as an image file (%s)\n", strings.Join(imageprocessor.GetSupportedExtensions(), " "))
	fmt.Printf("  --grid        : Query drawing as a %dx%d text grid ('#' or '1' on, '.' or '0' off)\n", bitmap.GridSize, bitmap.GridSize)
	fmt.Printf("  --top         : Number of matches to report (default: %d)\n", matcher.DefaultTopK)
	fmt.Printf("  --preview-dir : Write a PNG preview of each match into this directory\n")
	fmt.Printf("  --name        : Reference identifier (its filename) to render\n")
	fmt.Printf("  --out         : Output PNG path for render\n")
	fmt.Printf("  --force       : Force rewrite existing entries during scan\n")
	fmt.Printf("  --debug       : Enable debug mode (logs detailed information)\n")
	fmt.Printf("  --logfile     : Specify custom log file path (default: sketchmatch.log)\n")
	fmt.Printf("\nDraw script commands, one per line: paint X Y, erase X Y, send, clear, show\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s scan --folder=/path/to/dataset --debug\n", os.Args[0])
	fmt.Printf("  %s match --image=/path/to/sketch.png --top=3\n", os.Args[0])
}
