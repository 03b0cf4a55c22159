package logging

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

var (
	mu          sync.Mutex
	debugLogger *log.Logger
	logFile     *os.File
)

// SetupLogger opens logFilePath for appending and routes every level into
// it. Calling it again while a file is open does nothing.
func SetupLogger(logFilePath string) error {
	mu.Lock()
	defer mu.Unlock()

	if debugLogger != nil {
		return nil
	}

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logFile = f
	debugLogger = log.New(f, "", log.LstdFlags)
	debugLogger.Printf("--- sketchmatch debug log started at %s ---", time.Now().Format(time.RFC3339))
	return nil
}

// CloseLogger closes the log file
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return
	}
	debugLogger.Printf("--- sketchmatch debug log closed at %s ---", time.Now().Format(time.RFC3339))
	logFile.Close()
	logFile = nil
	debugLogger = nil
}

// Enabled reports whether a debug log file is open
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return debugLogger != nil
}

// write sends a message to the debug file. Without one, only messages marked
// fallback reach the standard logger.
func write(prefix string, fallback bool, format string, args []interface{}) {
	mu.Lock()
	defer mu.Unlock()

	switch {
	case debugLogger != nil:
		debugLogger.Printf(prefix+format, args...)
	case fallback:
		log.Printf(prefix+format, args...)
	}
}

// LogInfo logs an information message
func LogInfo(format string, args ...interface{}) { write("INFO: ", false, format, args) }

// DebugLog logs a message if debug mode is enabled
func DebugLog(format string, args ...interface{}) { write("", false, format, args) }

// LogWarning logs a warning, to stderr when no log file is open
func LogWarning(format string, args ...interface{}) { write("WARNING: ", true, format, args) }

// LogError logs an error, to stderr when no log file is open
func LogError(format string, args ...interface{}) { write("ERROR: ", true, format, args) }

// LogImageProcessed records the outcome for one reference file
func LogImageProcessed(path string, success bool, errMsg string) {
	if success {
		write("PROCESSED: ", false, "%s", []interface{}{path})
		return
	}
	write("FAILED: ", false, "%s - Error: %s", []interface{}{path, errMsg})
}
