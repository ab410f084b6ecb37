// Package browser implements pdf.Host on a Chromium tab driven over the
// DevTools protocol. The tab shows a stage page, normally the one served by
// blob.Store, and embeds documents into it as iframes.
package browser

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/alapierre/go-simpleinvoicing-client/invoicing/pdf"
	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

var logger = logrus.WithField("component", "invoicing.browser")

var (
	ErrClosed       = errors.New("browser host is closed")
	ErrSurfaceGone  = errors.New("surface is no longer mounted")
	ErrDownloadFail = errors.New("download canceled")
)

// Host is safe for concurrent use. Close it to stop the browser.
type Host struct {
	cfg     config
	pageURL string

	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	tab           context.Context

	downloads *downloads
	seq       atomic.Int64
	// evalFn evaluates a script in the stage page, awaiting promises.
	evalFn func(ctx context.Context, script string, res any) error

	mu     sync.Mutex
	closed bool
}

var _ pdf.Host = (*Host)(nil)

// startBrowser launches the browser process. It must get the tab context
// itself: the process lives as long as the context of the first Run.
var startBrowser = func(tab context.Context) error {
	return chromedp.Run(tab)
}

// New starts a browser and opens pageURL in it. Containers used by
// MountInto must exist on that page.
func New(ctx context.Context, pageURL string, opts ...Option) (*Host, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveChromium()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	dir := cfg.downloadDir
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "resolve download directory")
	}
	cfg.downloadDir = dir

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tab, browserCancel := chromedp.NewContext(allocCtx)

	h := &Host{
		cfg:           cfg,
		pageURL:       pageURL,
		allocCancel:   allocCancel,
		browserCancel: browserCancel,
		tab:           tab,
		downloads:     newDownloads(),
	}
	h.evalFn = h.evalCDP

	chromedp.ListenTarget(tab, h.downloads.handle)

	if err := startBrowser(tab); err != nil {
		browserCancel()
		allocCancel()
		return nil, errors.Wrap(err, "start browser")
	}

	if err := h.run(ctx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllowAndName).
			WithDownloadPath(cfg.downloadDir).
			WithEventsEnabled(true),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		browserCancel()
		allocCancel()
		return nil, errors.Wrap(err, "open stage page")
	}

	logger.WithField("page", pageURL).Debug("browser host ready")
	return h, nil
}

// Close stops the browser. It is idempotent.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	h.browserCancel()
	h.allocCancel()
	return nil
}

func (h *Host) MountHidden(ctx context.Context, src string) (pdf.Surface, error) {
	id := "print-surface-" + strconv.FormatInt(h.seq.Add(1), 10)

	var loaded bool
	if err := h.eval(ctx, mountHiddenScript(id, src), &loaded); err != nil {
		// The frame is attached before it loads.
		var removed bool
		if rerr := h.eval(context.Background(), removeScript(id), &removed); rerr != nil {
			logger.WithError(rerr).WithField("surface", id).Warn("remove failed frame")
		}
		return nil, errors.Wrap(err, "mount hidden frame")
	}
	return &surface{host: h, id: id}, nil
}

func (h *Host) MountInto(ctx context.Context, containerID, src string) error {
	var found bool
	if err := h.eval(ctx, mountIntoScript(containerID, src), &found); err != nil {
		return errors.Wrap(err, "mount frame")
	}
	if !found {
		return pdf.ErrContainerNotFound
	}
	return nil
}

// Save clicks a download link for src and waits until the browser has
// written the file, then names it filename inside the download directory.
func (h *Host) Save(ctx context.Context, src, filename string) error {
	done := h.downloads.expect(src)
	defer h.downloads.forget(src, done)

	var ok bool
	if err := h.eval(ctx, saveScript(src, filename), &ok); err != nil {
		return errors.Wrap(err, "start download")
	}

	waitCtx, cancel := h.bounded(ctx)
	defer cancel()

	var res downloadResult
	select {
	case res = <-done:
	case <-waitCtx.Done():
		return errors.Wrap(waitCtx.Err(), "wait for download")
	}
	if res.err != nil {
		return res.err
	}

	target := filepath.Join(h.cfg.downloadDir, filepath.Base(filename))
	if err := os.Rename(filepath.Join(h.cfg.downloadDir, res.guid), target); err != nil {
		return errors.Wrap(err, "name downloaded file")
	}
	logger.WithField("path", target).Debug("download saved")
	return nil
}

func (h *Host) eval(ctx context.Context, script string, res any) error {
	return h.evalFn(ctx, script, res)
}

func (h *Host) evalCDP(ctx context.Context, script string, res any) error {
	return h.run(ctx, chromedp.Evaluate(script, res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
}

// run executes actions on the tab, bounded by the configured timeout and
// cancelled together with ctx.
func (h *Host) run(ctx context.Context, actions ...chromedp.Action) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return ErrClosed
	}

	runCtx, cancel := h.bounded(h.tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (h *Host) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.cfg.timeout > 0 {
		return context.WithTimeout(ctx, h.cfg.timeout)
	}
	return context.WithCancel(ctx)
}

type surface struct {
	host *Host
	id   string
}

func (s *surface) Print(ctx context.Context) error {
	var ok bool
	if err := s.host.eval(ctx, printScript(s.id), &ok); err != nil {
		return errors.Wrap(err, "print frame")
	}
	if !ok {
		return ErrSurfaceGone
	}
	return nil
}

// Remove runs detached from any caller context; it is used from cleanup
// timers.
func (s *surface) Remove() error {
	var ok bool
	if err := s.host.eval(context.Background(), removeScript(s.id), &ok); err != nil {
		return errors.Wrap(err, "remove frame")
	}
	if !ok {
		return ErrSurfaceGone
	}
	return nil
}
