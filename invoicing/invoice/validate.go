package invoice

import (
	"fmt"
	"strings"

	"github.com/ogen-go/ogen/validate"
	"github.com/sirupsen/logrus"
)

const ErrItemsMissing = "Missing or empty 'items' array"

// Result is the outcome of a shape check. Errors keep the order in which
// the checks ran.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`

	fields []string
}

// Err converts an invalid Result into an ogen validation error listing
// every missing field path. Valid results give nil.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	ve := &validate.Error{}
	for _, f := range r.fields {
		ve.Fields = append(ve.Fields, validate.FieldError{Name: f, Error: validate.ErrFieldRequired})
	}
	return ve
}

func (r Result) String() string {
	if r.Valid {
		return "valid"
	}
	return strings.Join(r.Errors, "; ")
}

type Option func(*Validator)

// WithPaymentDetails turns on the nested paymentDetails check
// (bankName, routing, account, accountType, IBAN, SWIFT). Off by default:
// the remote service only needs the key to be present.
func WithPaymentDetails(enabled bool) Option {
	return func(v *Validator) { v.paymentDetails = enabled }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(v *Validator) { v.log = l }
}

// Validator checks presence of required keys. It never looks at types or
// values and never mutates the invoice.
type Validator struct {
	paymentDetails bool
	log            logrus.FieldLogger
}

func NewValidator(opts ...Option) *Validator {
	v := &Validator{log: logger}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Validate runs a default Validator.
func Validate(inv Invoice, opts ...Option) Result {
	return NewValidator(opts...).Validate(inv)
}

func (v *Validator) Validate(inv Invoice) Result {
	c := &collector{}

	for _, key := range RequiredKeys {
		if _, ok := inv[key]; !ok {
			c.missing(key)
		}
	}

	items, ok := asSequence(inv[KeyItems])
	if !ok || len(items) == 0 {
		c.add(ErrItemsMissing, KeyItems)
	} else {
		for i, item := range items {
			c.nested(item, ItemKeys, fmt.Sprintf("items[%d]", i))
		}
	}

	c.nestedIfPresent(inv, KeySupplier, PartyKeys)
	c.nestedIfPresent(inv, KeyRecipient, PartyKeys)
	if v.paymentDetails {
		c.nestedIfPresent(inv, KeyPaymentDetails, PaymentDetailsKeys)
	}
	c.nestedIfPresent(inv, KeyInvoiceDetails, InvoiceDetailsKeys)
	c.nestedIfPresent(inv, KeyInvoiceSettings, SettingsKeys)

	if len(c.errors) > 0 {
		v.log.WithField("errors", c.errors).Error("Validation errors")
		return Result{Valid: false, Errors: c.errors, fields: c.fields}
	}

	v.log.Debug("Invoice object is valid")
	return Result{Valid: true}
}

type collector struct {
	errors []string
	fields []string
}

func (c *collector) add(msg, field string) {
	c.errors = append(c.errors, msg)
	c.fields = append(c.fields, field)
}

func (c *collector) missing(path string) {
	c.add("Missing key: "+path, path)
}

// nestedIfPresent skips absent and nil parents; an absent parent has
// already been reported at the top level.
func (c *collector) nestedIfPresent(inv Invoice, key string, keys []string) {
	v, ok := inv[key]
	if !ok || v == nil {
		return
	}
	c.nested(v, keys, key)
}

// nested reports every key of keys missing from value. A value that is not a
// mapping has none of them.
func (c *collector) nested(value any, keys []string, path string) {
	obj, _ := asObject(value)
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			c.missing(path + "." + k)
		}
	}
}
