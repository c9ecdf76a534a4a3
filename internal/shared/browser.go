package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// openCommand returns the platform command that opens location with its default application.
func openCommand(location string) (*exec.Cmd, error) {
	switch rt := getRuntime(); rt {
	case "darwin":
		return exec.Command("open", location), nil
	case "linux":
		return exec.Command("xdg-open", location), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", location), nil
	default:
		return nil, fmt.Errorf("%w: unsupported platform %s", ErrNotImplemented, rt)
	}
}

// OpenLocation opens a playlist URL or file path with the system's default application.
//
// Supports macOS, Linux, and Windows platforms.
func OpenLocation(location string) error {
	if location == "" {
		return fmt.Errorf("%w: empty location", ErrMissingArgument)
	}

	cmd, err := openCommand(location)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", location, err)
	}
	return nil
}
