package browser

import (
	"github.com/go-faster/errors"
	"github.com/go-rod/rod/lib/launcher"
)

// resolveChromium downloads a compatible Chromium if none is cached yet
// and returns the executable path.
func resolveChromium() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", errors.Wrap(err, "download chromium")
	}
	return path, nil
}
