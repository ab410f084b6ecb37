// Package invoicing is a client for the Simple Invoicing generator service.
// Invoices are validated locally and posted as JSON; the service answers
// with the generated PDF as a URL or a base64 payload.
package invoicing

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/alapierre/go-simpleinvoicing-client/invoicing/invoice"
	"github.com/alapierre/go-simpleinvoicing-client/invoicing/transport"
	"github.com/go-faster/errors"
	"github.com/ogen-go/ogen/validate"
	"github.com/sirupsen/logrus"
)

const DefaultEndpoint = "https://simpleinvoicing.warberryapps.com/data/api/invoice/generate"

const defaultTimeout = 30 * time.Second

var logger = logrus.WithField("component", "invoicing")

type Client struct {
	httpClient *http.Client
	endpoint   string
	validator  *invoice.Validator
	log        logrus.FieldLogger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithEndpoint(url string) Option {
	return func(cl *Client) { cl.endpoint = url }
}

func WithValidator(v *invoice.Validator) Option {
	return func(cl *Client) { cl.validator = v }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(cl *Client) { cl.log = l }
}

// NewClient returns a client for DefaultEndpoint using a logging
// http.Client with a 30s timeout unless configured otherwise.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		log:      logger,
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient == nil {
		c.httpClient = transport.NewClient(defaultTimeout)
	}
	if c.validator == nil {
		c.validator = invoice.NewValidator(invoice.WithLogger(c.log))
	}
	return c
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// GenerateInvoice validates inv and, when it is valid, posts it to the
// generator. Validation failures never reach the network and come back as
// *ValidationError; everything after that is a *TransportError.
func (c *Client) GenerateInvoice(ctx context.Context, inv invoice.Invoice) (*Response, error) {
	if res := c.validator.Validate(inv); !res.Valid {
		return nil, &ValidationError{Result: res}
	}

	body, err := invoice.EncodeJSON(inv)
	if err != nil {
		return nil, errors.Wrap(err, "encode invoice")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, c.transportError(0, nil, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(0, nil, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(resp.StatusCode, nil, errors.Wrap(err, "read response"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.transportError(resp.StatusCode, data, &validate.UnexpectedStatusCodeError{StatusCode: resp.StatusCode})
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, c.transportError(resp.StatusCode, data, ErrEmptyResponse)
	}
	if ct := resp.Header.Get("Content-Type"); !isJSON(ct) {
		return nil, c.transportError(resp.StatusCode, data, &validate.InvalidContentTypeError{ContentType: ct})
	}

	out, err := DecodeResponse(data)
	if err != nil {
		return nil, c.transportError(resp.StatusCode, data, err)
	}

	c.log.WithField("invoiceNr", out.InvoiceNr).WithField("source", out.Source().Kind()).Info("invoice generated")
	return out, nil
}

func (c *Client) transportError(status int, body []byte, err error) error {
	te := &TransportError{
		Endpoint:   c.endpoint,
		StatusCode: status,
		Body:       excerpt(body),
		Err:        err,
	}
	c.log.WithError(err).WithField("status", status).Error("invoice generation failed")
	return te
}

// isJSON accepts application/json and +json media types. A missing header
// is taken as JSON.
func isJSON(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
