//go:build windows

package cmd

import (
	"fmt"
	"os"
	"time"
)

const shutdownTimeout = 5 * time.Second

// killDaemon interrupts the daemon and forcefully terminates it if it does
// not exit in time.
func killDaemon(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("process not found: %w", err)
	}

	// os.Interrupt is not deliverable to every process on Windows.
	if err := process.Signal(os.Interrupt); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to stop daemon: %w", err)
		}
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := process.Wait()
		done <- err
	}()

	select {
	case <-done:
		return nil
	case <-time.After(shutdownTimeout):
		fmt.Println("Graceful shutdown timeout, forcing kill...")
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to kill daemon: %w", err)
		}
		return nil
	}
}
