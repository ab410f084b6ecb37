package pdf

import (
	"encoding/base64"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// DataURIPrefix may precede base64 payloads returned by the generator.
const DataURIPrefix = "data:application/pdf;base64,"

const ContentType = "application/pdf"

type Kind int

const (
	KindURL Kind = iota + 1
	KindBase64
)

func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindBase64:
		return "base64"
	}
	return "invalid"
}

// Source points at a PDF: either a remote http(s) URL or a base64 payload.
// The zero value is invalid.
type Source struct {
	kind  Kind
	value string
}

func URL(u string) Source {
	return Source{kind: KindURL, value: u}
}

// Base64 wraps an encoded payload, with or without DataURIPrefix.
func Base64(payload string) Source {
	return Source{kind: KindBase64, value: payload}
}

// ParseSource classifies an untagged string: http:// and https:// prefixes
// (case-sensitive) are URLs, anything else is taken as base64.
func ParseSource(s string) Source {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return URL(s)
	}
	return Base64(s)
}

func (s Source) Kind() Kind     { return s.kind }
func (s Source) Value() string  { return s.value }
func (s Source) IsURL() bool    { return s.kind == KindURL }
func (s Source) IsBase64() bool { return s.kind == KindBase64 }

func (s Source) String() string {
	if s.kind == KindBase64 {
		return "base64(" + humanSize(len(s.value)) + ")"
	}
	return s.kind.String() + "(" + s.value + ")"
}

// Validate checks that a URL source is an absolute http(s) URL and that a
// base64 source is not empty. The payload itself is checked on decode.
func (s Source) Validate() error {
	switch s.kind {
	case KindURL:
		u, err := url.Parse(s.value)
		if err != nil {
			return errors.Wrap(ErrInvalidSource, err.Error())
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.Wrapf(ErrInvalidSource, "not an http(s) URL: %q", s.value)
		}
		return nil
	case KindBase64:
		if strings.TrimSpace(strings.TrimPrefix(s.value, DataURIPrefix)) == "" {
			return errors.Wrap(ErrInvalidSource, "empty base64 payload")
		}
		return nil
	}
	return errors.Wrap(ErrInvalidSource, "zero Source")
}

// DecodeBase64 strips DataURIPrefix and whitespace and decodes the rest.
func DecodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimPrefix(strings.TrimSpace(payload), DataURIPrefix)
	payload = strings.Join(strings.Fields(payload), "")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidBase64, err.Error())
	}
	return data, nil
}

func humanSize(n int) string {
	const unit = 1024
	switch {
	case n < unit:
		return strconv.Itoa(n) + " B"
	case n < unit*unit:
		return strconv.Itoa(n/unit) + " KiB"
	default:
		return strconv.Itoa(n/(unit*unit)) + " MiB"
	}
}
