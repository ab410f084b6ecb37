package browser

import "time"

type config struct {
	chromePath   string
	autoDownload bool
	noSandbox    bool
	headless     any
	timeout      time.Duration
	downloadDir  string
}

func defaultConfig() config {
	return config{
		headless: "new",
		timeout:  30 * time.Second,
	}
}

type Option func(*config)

// WithChromePath sets the Chrome or Chromium executable. By default
// standard locations are searched.
func WithChromePath(path string) Option {
	return func(c *config) { c.chromePath = path }
}

// WithAutoDownload fetches a Chromium build into the local cache when no
// executable path is set.
func WithAutoDownload() Option {
	return func(c *config) { c.autoDownload = true }
}

// WithNoSandbox is required when running as root, e.g. in containers.
func WithNoSandbox() Option {
	return func(c *config) { c.noSandbox = true }
}

// WithHeadless(false) shows the browser window, so print dialogs are real.
func WithHeadless(headless bool) Option {
	return func(c *config) {
		if headless {
			c.headless = "new"
		} else {
			c.headless = false
		}
	}
}

// WithTimeout bounds every page operation. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithDownloadDir is where Save puts files. Defaults to the working
// directory.
func WithDownloadDir(dir string) Option {
	return func(c *config) { c.downloadDir = dir }
}
