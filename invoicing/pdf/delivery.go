// Package pdf delivers generated invoices: printing, downloading and
// rendering through a Host, and saving to disk.
package pdf

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultFileName = "download.pdf"
	// DefaultPrintDelay is how long a print surface outlives the print call.
	DefaultPrintDelay = 100 * time.Millisecond
)

var logger = logrus.WithField("component", "invoicing.pdf")

type Option func(*Delivery)

func WithPrintDelay(d time.Duration) Option {
	return func(dl *Delivery) { dl.printDelay = d }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(dl *Delivery) { dl.log = l }
}

// Delivery runs the interactive helpers. Calls are independent of each
// other; each one manages its own surface and temporary reference.
type Delivery struct {
	host       Host
	refs       References
	printDelay time.Duration
	log        logrus.FieldLogger

	pending sync.WaitGroup
}

func NewDelivery(host Host, refs References, opts ...Option) *Delivery {
	d := &Delivery{
		host:       host,
		refs:       refs,
		printDelay: DefaultPrintDelay,
		log:        logger,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Print stages src on a hidden surface, prints it and schedules removal of
// the surface and release of any temporary reference after the print
// delay. The scheduled cleanup cannot be cancelled; use Wait to block until
// it has run.
func (d *Delivery) Print(ctx context.Context, src Source) error {
	href, release, err := d.resolve(src)
	if err != nil {
		return err
	}

	surface, err := d.host.MountHidden(ctx, href)
	if err != nil {
		release()
		return errors.Wrap(err, "mount print surface")
	}

	if err := surface.Print(ctx); err != nil {
		d.remove(surface)
		release()
		return errors.Wrap(err, "print")
	}

	d.pending.Add(1)
	time.AfterFunc(d.printDelay, func() {
		defer d.pending.Done()
		d.remove(surface)
		release()
	})
	return nil
}

// Download saves src through the host under filename (DefaultFileName
// when empty).
func (d *Delivery) Download(ctx context.Context, src Source, filename string) error {
	if filename == "" {
		filename = DefaultFileName
	}

	href, release, err := d.resolve(src)
	if err != nil {
		return err
	}
	defer release()

	if err := d.host.Save(ctx, href, filename); err != nil {
		return errors.Wrap(err, "download")
	}
	return nil
}

// Render replaces the content of an existing container with src.
func (d *Delivery) Render(ctx context.Context, src Source, containerID string) error {
	href, release, err := d.resolve(src)
	if err != nil {
		return err
	}
	defer release()

	if err := d.host.MountInto(ctx, containerID, href); err != nil {
		if errors.Is(err, ErrContainerNotFound) {
			d.log.WithField("container", containerID).Warn("render target missing")
		}
		return errors.Wrapf(err, "render into %q", containerID)
	}
	return nil
}

// Wait blocks until all scheduled print cleanups have run.
func (d *Delivery) Wait() {
	d.pending.Wait()
}

// resolve turns src into something the host can load. URLs pass through;
// base64 payloads are decoded and published as a temporary reference that
// the returned release func revokes. release is never nil and must be
// called exactly once.
func (d *Delivery) resolve(src Source) (string, func(), error) {
	if err := src.Validate(); err != nil {
		return "", nil, err
	}
	if src.IsURL() {
		return src.Value(), func() {}, nil
	}

	data, err := DecodeBase64(src.Value())
	if err != nil {
		return "", nil, err
	}
	ref, err := d.refs.Create(data, ContentType)
	if err != nil {
		return "", nil, errors.Wrap(err, "create temporary reference")
	}

	release := func() {
		if err := d.refs.Revoke(ref); err != nil {
			d.log.WithError(err).WithField("ref", ref).Warn("release temporary reference")
		}
	}
	return ref, release, nil
}

func (d *Delivery) remove(s Surface) {
	if err := s.Remove(); err != nil {
		d.log.WithError(err).Warn("remove surface")
	}
}
