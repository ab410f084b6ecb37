// Package invoice holds the dynamic invoice object accepted by the remote
// generator, its shape validator and the JSON/XML decoders used to load it.
package invoice

import "github.com/sirupsen/logrus"

var logger = logrus.WithField("component", "invoicing.invoice")

// Invoice is the caller-built invoice object. Values are whatever the caller
// put there: nested mappings, sequences, strings, numbers.
type Invoice map[string]any

// Object is a nested mapping inside an Invoice (supplier, items[i], ...).
type Object = map[string]any

const (
	KeySupplier        = "supplier"
	KeyRecipient       = "recipient"
	KeyPaymentDetails  = "paymentDetails"
	KeyItems           = "items"
	KeyInvoiceDetails  = "invoiceDetails"
	KeyInvoiceSettings = "invoiceSettings"
)

// RequiredKeys lists top-level keys in the order they are reported.
var RequiredKeys = []string{
	KeySupplier,
	KeyRecipient,
	KeyPaymentDetails,
	KeyItems,
	KeyInvoiceDetails,
	KeyInvoiceSettings,
}

var (
	PartyKeys          = []string{"name", "address", "city", "country", "postCode"}
	ItemKeys           = []string{"item", "description", "quantity", "netAmount", "grossAmount", "tax", "type"}
	InvoiceDetailsKeys = []string{"issueDate", "deliveryDate", "dueDate", "netSubtotal", "grossTotal", "invoiceNr", "invoiceLanguage", "currency"}
	SettingsKeys       = []string{"returnAs"}
	PaymentDetailsKeys = []string{"bankName", "routing", "account", "accountType", "IBAN", "SWIFT"}
)

// InvoiceNr returns invoiceDetails.invoiceNr rendered as a string, if present.
func (inv Invoice) InvoiceNr() (string, bool) {
	details, ok := asObject(inv[KeyInvoiceDetails])
	if !ok {
		return "", false
	}
	v, ok := details["invoiceNr"]
	if !ok || v == nil {
		return "", false
	}
	return scalarString(v), true
}

func asObject(v any) (Object, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, true
	case Invoice:
		return o, true
	}
	return nil, false
}

func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []map[string]any:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	}
	return nil, false
}
