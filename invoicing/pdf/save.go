package pdf

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/alapierre/go-simpleinvoicing-client/invoicing/mutex"
	"github.com/go-faster/errors"
	"github.com/ogen-go/ogen/validate"
)

// Document is the part of a generator response needed to persist it.
type Document struct {
	Source    Source
	InvoiceNr string
}

type SavedFile struct {
	FilePath string
	FileName string
	Size     int
}

type SaveOption func(*saveConfig)

type saveConfig struct {
	client *http.Client
}

// WithHTTPClient sets the client used to fetch URL sources.
func WithHTTPClient(c *http.Client) SaveOption {
	return func(cfg *saveConfig) { cfg.client = c }
}

var paths mutex.KeyedMutex[string]

// Invoice numbers such as FV/1/2024 must not turn into subdirectories.
var separators = strings.NewReplacer("/", "-", "\\", "-")

// SaveToFile writes doc to dir under fileName, or <InvoiceNr>.pdf when
// fileName is empty, with path separators in the number replaced by dashes.
// dir is created when missing and an existing file is overwritten. URL
// sources are fetched and written byte for byte.
func SaveToFile(ctx context.Context, doc Document, dir, fileName string, opts ...SaveOption) (*SavedFile, error) {
	cfg := saveConfig{client: http.DefaultClient}
	for _, o := range opts {
		o(&cfg)
	}

	if fileName == "" {
		if doc.InvoiceNr == "" {
			return nil, ErrNoFileName
		}
		fileName = separators.Replace(doc.InvoiceNr) + ".pdf"
	}

	data, err := doc.Source.Bytes(ctx, cfg.client)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create output directory")
	}
	path := filepath.Join(dir, fileName)

	paths.Lock(path)
	defer paths.Unlock(path)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, errors.Wrap(err, "write PDF")
	}

	logger.WithField("path", path).WithField("size", len(data)).Info("invoice saved")
	return &SavedFile{FilePath: path, FileName: fileName, Size: len(data)}, nil
}

// Bytes returns the PDF content: decoded for base64 sources, fetched with
// client for URL sources.
func (s Source) Bytes(ctx context.Context, client *http.Client) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.IsBase64() {
		return DecodeBase64(s.value)
	}
	return Fetch(ctx, client, s.value)
}

// Fetch GETs url and returns the body as is. Non-2xx answers are a
// FetchError wrapping validate.UnexpectedStatusCodeError.
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("Accept", ContentType)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        &validate.UnexpectedStatusCodeError{StatusCode: resp.StatusCode},
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	return data, nil
}
