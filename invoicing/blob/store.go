// Package blob keeps short-lived binary payloads addressable over HTTP, the
// way object URLs make a Blob addressable inside a browser. A reference must
// be revoked exactly once when it is no longer needed.
package blob

import (
	"context"
	_ "embed"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/alapierre/go-simpleinvoicing-client/invoicing/util"
	"github.com/go-faster/errors"
	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
)

const pathPrefix = "/blob/"

var logger = logrus.WithField("component", "invoicing.blob")

var ErrNotFound = errors.New("blob: reference not found")

//go:embed stage.html
var stageTemplate string

type object struct {
	data        []byte
	contentType string
}

// Store is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]object
	created int
	revoked int

	title      string
	containers []string
	page       []byte
}

type Option func(*Store)

// WithContainers names the empty containers on the stage page. Defaults to
// a single "invoice" container.
func WithContainers(ids ...string) Option {
	return func(s *Store) { s.containers = ids }
}

func WithTitle(title string) Option {
	return func(s *Store) { s.title = title }
}

// NewStore creates a store whose references start with baseURL. Use Listen
// to serve it and pick up the real address.
func NewStore(baseURL string, opts ...Option) (*Store, error) {
	s := &Store{
		baseURL:    strings.TrimRight(baseURL, "/"),
		objects:    make(map[string]object),
		title:      "Invoice",
		containers: []string{"invoice"},
	}
	for _, o := range opts {
		o(s)
	}

	page, err := util.MergeTemplate(&stageTemplate, struct {
		Title      string
		Containers []string
	}{s.title, s.containers})
	if err != nil {
		return nil, errors.Wrap(err, "render stage page")
	}
	s.page = page
	return s, nil
}

// Create publishes data and returns its reference URL.
func (s *Store) Create(data []byte, contentType string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", errors.Wrap(err, "generate blob id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[id.String()] = object{data: data, contentType: contentType}
	s.created++

	ref := s.baseURL + pathPrefix + id.String()
	logger.WithField("ref", ref).Debug("blob created")
	return ref, nil
}

// Revoke releases a reference. Revoking an unknown or already revoked
// reference returns ErrNotFound.
func (s *Store) Revoke(ref string) error {
	id := ref[strings.LastIndex(ref, "/")+1:]

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[id]; !ok {
		return errors.Wrapf(ErrNotFound, "%s", ref)
	}
	delete(s.objects, id)
	s.revoked++

	logger.WithField("ref", ref).Debug("blob revoked")
	return nil
}

// Live returns the number of references not yet revoked.
func (s *Store) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Stats returns how many references were created and revoked so far.
func (s *Store) Stats() (created, revoked int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created, s.revoked
}

func (s *Store) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseURL
}

// PageURL is the stage page that hosts the containers.
func (s *Store) PageURL() string {
	return s.BaseURL() + "/"
}

func (s *Store) lookup(id string) (object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[id]
	return o, ok
}

// Listen serves the store on addr (":0" style addresses pick a free port)
// until ctx is done and returns the base URL references will use.
func (s *Store) Listen(ctx context.Context, addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", errors.Wrap(err, "listen")
	}

	base := "http://" + ln.Addr().String()
	s.mu.Lock()
	s.baseURL = base
	s.mu.Unlock()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("blob server stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.WithField("url", base).Debug("blob server listening")
	return base, nil
}
