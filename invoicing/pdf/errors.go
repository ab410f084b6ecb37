package pdf

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrContainerNotFound is returned by Render when the target container
	// does not exist on the host page.
	ErrContainerNotFound = errors.New("container not found")
	ErrInvalidSource     = errors.New("invalid PDF source")
	ErrInvalidBase64     = errors.New("invalid base64 PDF payload")
	ErrNoFileName        = errors.New("no file name and no invoice number to derive one from")
)

// FetchError is a failed download of a URL source.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response arrived
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: http status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
