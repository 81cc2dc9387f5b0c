package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// BrowserOpener opens a URL for the user. [OpenBrowser] is the default.
type BrowserOpener func(url string) error

// launchers maps GOOS to the command that hands a URL to the desktop's default browser.
var launchers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"openbsd": {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// OpenBrowser starts the platform launcher for url without waiting for the browser.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(getRuntime(), url)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	go cmd.Wait()
	return nil
}

func browserCommand(goos, url string) (*exec.Cmd, error) {
	argv, ok := launchers[goos]
	if !ok {
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
	args := append(append([]string{}, argv[1:]...), url)
	return exec.Command(argv[0], args...), nil
}
