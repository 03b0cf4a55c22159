package signalhandler

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"sketchmatch/logging"
)

// SetupHandler cancels the scan context on SIGINT or SIGTERM. A second
// signal exits immediately. The returned function stops listening.
func SetupHandler(cancel context.CancelFunc) func() {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	stop := make(chan struct{})
	go func() {
		select {
		case sig := <-sigChan:
			logging.LogWarning("Received %v, finishing in-flight files", sig)
			cancel()
		case <-stop:
			return
		}

		select {
		case <-sigChan:
			os.Exit(1)
		case <-stop:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(stop)
	}
}

// GetOptimalProcs returns the number of decode workers to run
func GetOptimalProcs() int {
	numCPU := runtime.NumCPU()

	// Leave headroom for the collector and the cgo decoder when present
	maxProcs := (numCPU * 3) / 4
	if maxProcs < 1 {
		maxProcs = 1
	}

	return maxProcs
}
