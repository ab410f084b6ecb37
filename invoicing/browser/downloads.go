package browser

import (
	"slices"
	"sync"

	"github.com/chromedp/cdproto/browser"
)

type downloadResult struct {
	guid string
	err  error
}

// downloads routes browser download events to the Save call waiting for
// them. Calls for the same URL are matched first come first served on
// start, then by GUID.
type downloads struct {
	mu     sync.Mutex
	byURL  map[string][]chan downloadResult
	byGUID map[string]chan downloadResult
}

func newDownloads() *downloads {
	return &downloads{
		byURL:  make(map[string][]chan downloadResult),
		byGUID: make(map[string]chan downloadResult),
	}
}

func (d *downloads) expect(url string) chan downloadResult {
	ch := make(chan downloadResult, 1)
	d.mu.Lock()
	d.byURL[url] = append(d.byURL[url], ch)
	d.mu.Unlock()
	return ch
}

// forget drops ch wherever it is still waiting.
func (d *downloads) forget(url string, ch chan downloadResult) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if q := slices.DeleteFunc(d.byURL[url], func(c chan downloadResult) bool { return c == ch }); len(q) > 0 {
		d.byURL[url] = q
	} else {
		delete(d.byURL, url)
	}
	for guid, c := range d.byGUID {
		if c == ch {
			delete(d.byGUID, guid)
		}
	}
}

// handle is a chromedp target listener and must not block.
func (d *downloads) handle(ev any) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch ev := ev.(type) {
	case *browser.EventDownloadWillBegin:
		q := d.byURL[ev.URL]
		if len(q) == 0 {
			return
		}
		d.byGUID[ev.GUID] = q[0]
		if len(q) == 1 {
			delete(d.byURL, ev.URL)
		} else {
			d.byURL[ev.URL] = q[1:]
		}
	case *browser.EventDownloadProgress:
		ch, ok := d.byGUID[ev.GUID]
		if !ok {
			return
		}
		switch ev.State {
		case browser.DownloadProgressStateCompleted:
			ch <- downloadResult{guid: ev.GUID}
		case browser.DownloadProgressStateCanceled:
			ch <- downloadResult{guid: ev.GUID, err: ErrDownloadFail}
		default:
			return
		}
		delete(d.byGUID, ev.GUID)
	}
}
