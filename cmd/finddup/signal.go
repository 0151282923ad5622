package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// setupSignalHandler sets up signal handling for graceful shutdown.
// The returned channel is closed when SIGINT or SIGTERM arrives; the returned function
// stops signal delivery and must be called once the run is over.
func setupSignalHandler() (<-chan struct{}, func()) {
	shutdown := make(chan struct{})
	done := make(chan struct{})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			fmt.Fprintf(os.Stderr, "\nReceived signal: %v\n", sig)
			close(shutdown)
		case <-done:
		}
		signal.Stop(sigChan)
	}()

	return shutdown, func() { close(done) }
}
