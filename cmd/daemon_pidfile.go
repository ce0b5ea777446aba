package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

const pidFileName = "daemon.pid"

// getPidFilePath returns the path to the daemon PID file in dir.
func getPidFilePath(dir string) string {
	return filepath.Join(dir, pidFileName)
}

// WritePidFile writes the current process ID to the PID file.
func WritePidFile(dir string) error {
	if err := appFs.MkdirAll(dir, 0755); err != nil {
		return err
	}
	pid := os.Getpid()
	return afero.WriteFile(appFs, getPidFilePath(dir), []byte(strconv.Itoa(pid)), 0644)
}

// ReadPidFile reads and returns the PID from the PID file.
func ReadPidFile(dir string) (int, error) {
	data, err := afero.ReadFile(appFs, getPidFilePath(dir))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid PID: %d", pid)
	}
	return pid, nil
}

// RemovePidFile removes the PID file.
func RemovePidFile(dir string) error {
	err := appFs.Remove(getPidFilePath(dir))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
