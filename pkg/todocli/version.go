package todocli

import (
	"context"
	"fmt"
	"io"
	"os"
)

// VersionCheckEnv is the environment variable name used to suppress version mismatch warnings.
// Set to any non-empty value to disable warnings (useful for scripts and CI).
const VersionCheckEnv = "TODOSTUDIO_SUPPRESS_VERSION_CHECK"

// CheckVersionMismatch warns on w when the daemon runs a different version
// than expectedVersion. It never blocks execution.
func (c *Client) CheckVersionMismatch(ctx context.Context, w io.Writer, expectedVersion string) {
	if expectedVersion == "" || os.Getenv(VersionCheckEnv) != "" {
		return
	}

	daemonVersion, err := c.GetDaemonVersion(ctx)
	if err != nil {
		fmt.Fprintf(w, "Warning: could not verify daemon version: %v\n", err)
		return
	}

	if daemonVersion.Version != expectedVersion {
		fmt.Fprintf(w, "Warning: CLI version (%s) differs from daemon version (%s)\n",
			expectedVersion, daemonVersion.Version)
		fmt.Fprintf(w, "Restart 'todostudio daemon' to run the new version.\n")
	}
}
