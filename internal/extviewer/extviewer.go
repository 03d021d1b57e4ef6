// Package extviewer opens a photo in the platform's default image viewer.
package extviewer

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Open hands the file to the desktop environment's default handler. The
// viewer process is detached; Open returns once the launch command has been
// started, not when the viewer exits.
func Open(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open in viewer: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch viewer: %w", err)
	}
	// Reap the launcher in the background so it never lingers as a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}
