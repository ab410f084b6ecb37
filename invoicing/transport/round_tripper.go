// Package transport provides the http.RoundTripper used by every outgoing
// call: request ids and request/response logging.
package transport

import (
	"context"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/alapierre/go-simpleinvoicing-client/invoicing/util"
	"github.com/go-faster/errors"
	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-Id"

var logger = logrus.WithField("component", "invoicing.transport")

type requestIDKey struct{}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey{}).(string)
	return v, ok && v != ""
}

type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Log       logrus.FieldLogger
	// Trace dumps full requests and responses at debug level.
	Trace bool
}

// NewLoggingRoundTripper wraps transport (http.DefaultTransport when nil).
// Tracing follows SIMPLEINVOICING_HTTP_TRACE.
func NewLoggingRoundTripper(transport http.RoundTripper) *LoggingRoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &LoggingRoundTripper{
		Transport: transport,
		Log:       logger,
		Trace:     util.HttpTraceEnabled(),
	}
}

// NewClient returns an http.Client logging through a LoggingRoundTripper.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewLoggingRoundTripper(nil),
	}
}

func (l *LoggingRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	reqID, ok := RequestIDFromContext(ctx)
	if !ok {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, errors.Wrap(err, "generate request id")
		}
		reqID = id.String()
	}
	r = r.Clone(ctx)
	r.Header.Set(RequestIDHeader, reqID)

	log := l.Log.WithFields(logrus.Fields{
		"request_id": reqID,
		"method":     r.Method,
		"url":        r.URL.Redacted(),
	})
	log.Debug("outgoing request")

	if l.Trace {
		if dump, err := httputil.DumpRequestOut(r, true); err == nil {
			log.Debugf("request dump:\n%s", dump)
		}
	}

	start := time.Now()
	resp, err := l.Transport.RoundTrip(r)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return nil, errors.Wrap(err, "round trip")
	}

	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("incoming response")

	if l.Trace {
		if dump, err := httputil.DumpResponse(resp, true); err == nil {
			log.Debugf("response dump:\n%s", dump)
		}
	}

	return resp, nil
}
