package platform

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenInViewer opens a file with the OS-default application so a human
// can inspect it. The viewer runs detached; OpenInViewer only reports
// whether the launch itself succeeded.
func OpenInViewer(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		// "start" is a cmd builtin; the empty string is the window title
		cmd = exec.Command("cmd", "/c", "start", "", path)
	case "darwin":
		cmd = exec.Command("open", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch viewer for %s: %w", path, err)
	}

	// Detach: the merge must not wait for the viewer to exit
	go cmd.Wait()

	return nil
}
