// Package browser opens files and URLs with the platform's default handler.
package browser

import (
	"os/exec"
	"runtime"

	"github.com/pkg/errors"
)

// OpenBrowser hands url to the OS. The viewer is spawned, not waited on.
func OpenBrowser(url string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	default:
		return errors.Errorf("unsupported platform %v", runtime.GOOS)
	}
}
