package invoicing

import (
	"fmt"
	"unicode/utf8"

	"github.com/alapierre/go-simpleinvoicing-client/invoicing/invoice"
	"github.com/go-faster/errors"
)

var (
	ErrInvalidInvoice = errors.New("invalid invoice")
	ErrEmptyResponse  = errors.New("empty response body")
)

const maxBodyExcerpt = 512

// ValidationError carries the validator result of a rejected invoice.
type ValidationError struct {
	Result invoice.Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidInvoice, e.Result)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInvoice
}

// Unwrap exposes the per-field *validate.Error.
func (e *ValidationError) Unwrap() error {
	return e.Result.Err()
}

// TransportError is any failure after validation: the request could not be
// sent, the status was not 2xx or the body was not usable JSON.
type TransportError struct {
	Endpoint   string
	StatusCode int    // 0 when no response arrived
	Body       string // leading part of the response body
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("POST %s: %v", e.Endpoint, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("POST %s: http status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("POST %s: http status %d: %v: %s", e.Endpoint, e.StatusCode, e.Err, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// excerpt cuts body to maxBodyExcerpt bytes without splitting a rune.
func excerpt(body []byte) string {
	if len(body) <= maxBodyExcerpt {
		return string(body)
	}
	n := maxBodyExcerpt
	for n > 0 && !utf8.RuneStart(body[n]) {
		n--
	}
	return string(body[:n]) + "..."
}
