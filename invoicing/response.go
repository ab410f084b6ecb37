package invoicing

import (
	"encoding/json"
	"fmt"

	"github.com/alapierre/go-simpleinvoicing-client/invoicing/invoice"
	"github.com/alapierre/go-simpleinvoicing-client/invoicing/pdf"
	"github.com/go-faster/errors"
)

// Response is the generator answer. Only invoice and invoiceNr are
// interpreted; the rest is kept in Object.
type Response struct {
	Raw       []byte
	Object    map[string]any
	Invoice   string
	InvoiceNr string
}

// DecodeResponse parses a generator answer. The body must be a JSON object;
// Invoice stays empty when it has no string invoice field, and Source then
// fails validation.
func DecodeResponse(data []byte) (*Response, error) {
	obj, err := invoice.DecodeJSON(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode response")
	}

	r := &Response{
		Raw:    data,
		Object: obj,
	}
	r.Invoice, _ = obj["invoice"].(string)
	switch nr := obj["invoiceNr"].(type) {
	case nil:
	case string:
		r.InvoiceNr = nr
	case json.Number:
		r.InvoiceNr = nr.String()
	default:
		r.InvoiceNr = fmt.Sprint(nr)
	}
	return r, nil
}

// Source classifies the invoice field by its scheme prefix.
func (r *Response) Source() pdf.Source {
	return pdf.ParseSource(r.Invoice)
}

func (r *Response) Document() pdf.Document {
	return pdf.Document{Source: r.Source(), InvoiceNr: r.InvoiceNr}
}
