package invoice

import (
	"errors"
	"testing"

	"github.com/ogen-go/ogen/validate"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func party(name string) map[string]any {
	return map[string]any{
		"name":     name,
		"address":  "Main Street 1",
		"city":     "Warsaw",
		"country":  "PL",
		"postCode": "00-001",
	}
}

func validInvoice() Invoice {
	return Invoice{
		"supplier":       party("Supplier"),
		"recipient":      party("Recipient"),
		"paymentDetails": map[string]any{},
		"items": []any{
			map[string]any{
				"item":        "i",
				"description": "d",
				"quantity":    1,
				"netAmount":   10,
				"grossAmount": 11,
				"tax":         1,
				"type":        "t",
			},
		},
		"invoiceDetails": map[string]any{
			"issueDate":       "2024-01-01",
			"deliveryDate":    "2024-01-02",
			"dueDate":         "2024-01-10",
			"netSubtotal":     10,
			"grossTotal":      11,
			"invoiceNr":       "1",
			"invoiceLanguage": "en",
			"currency":        "USD",
		},
		"invoiceSettings": map[string]any{"returnAs": "pdf"},
	}
}

func TestValidate_WellFormed(t *testing.T) {
	res := Validate(validInvoice())

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.NoError(t, res.Err())
}

func TestValidate_MissingTopLevelKeySkipsNested(t *testing.T) {
	for _, key := range []string{KeySupplier, KeyRecipient, KeyPaymentDetails, KeyInvoiceDetails, KeyInvoiceSettings} {
		t.Run(key, func(t *testing.T) {
			inv := validInvoice()
			delete(inv, key)

			res := Validate(inv)

			require.False(t, res.Valid)
			assert.Equal(t, []string{"Missing key: " + key}, res.Errors)
		})
	}
}

func TestValidate_Items(t *testing.T) {
	tests := []struct {
		name  string
		items any
		drop  bool
		want  []string
	}{
		{name: "absent", drop: true, want: []string{"Missing key: items", ErrItemsMissing}},
		{name: "empty", items: []any{}, want: []string{ErrItemsMissing}},
		{name: "not a sequence", items: "widget", want: []string{ErrItemsMissing}},
		{name: "nil", items: nil, want: []string{ErrItemsMissing}},
		{
			name:  "item missing keys",
			items: []any{map[string]any{"item": "x", "description": "y", "quantity": 1, "netAmount": 1, "grossAmount": 1}},
			want:  []string{"Missing key: items[0].tax", "Missing key: items[0].type"},
		},
		{
			name: "second item checked",
			items: []map[string]any{
				validInvoice()["items"].([]any)[0].(map[string]any),
				{"item": "x", "description": "y", "quantity": 1, "netAmount": 1, "grossAmount": 1, "tax": 0},
			},
			want: []string{"Missing key: items[1].type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			if tt.drop {
				delete(inv, KeyItems)
			} else {
				inv[KeyItems] = tt.items
			}

			res := Validate(inv)

			assert.False(t, res.Valid)
			assert.Equal(t, tt.want, res.Errors)
		})
	}
}

func TestValidate_EmptySupplier(t *testing.T) {
	inv := validInvoice()
	inv[KeySupplier] = map[string]any{}

	res := Validate(inv)

	require.False(t, res.Valid)
	assert.Equal(t, []string{
		"Missing key: supplier.name",
		"Missing key: supplier.address",
		"Missing key: supplier.city",
		"Missing key: supplier.country",
		"Missing key: supplier.postCode",
	}, res.Errors)
}

func TestValidate_AccumulatesEverything(t *testing.T) {
	inv := Invoice{
		"supplier":        map[string]any{"name": "A"},
		"invoiceSettings": map[string]any{},
	}

	res := Validate(inv)

	assert.Equal(t, []string{
		"Missing key: recipient",
		"Missing key: paymentDetails",
		"Missing key: items",
		"Missing key: invoiceDetails",
		ErrItemsMissing,
		"Missing key: supplier.address",
		"Missing key: supplier.city",
		"Missing key: supplier.country",
		"Missing key: supplier.postCode",
		"Missing key: invoiceSettings.returnAs",
	}, res.Errors)
}

func TestValidate_NonMappingParentHasNoKeys(t *testing.T) {
	inv := validInvoice()
	inv[KeyInvoiceSettings] = "pdf"

	res := Validate(inv)

	assert.Equal(t, []string{"Missing key: invoiceSettings.returnAs"}, res.Errors)
}

func TestValidate_PaymentDetailsToggle(t *testing.T) {
	inv := validInvoice()

	assert.True(t, Validate(inv).Valid, "nested payment details are not checked by default")

	res := Validate(inv, WithPaymentDetails(true))
	require.False(t, res.Valid)
	assert.Len(t, res.Errors, len(PaymentDetailsKeys))
	assert.Equal(t, "Missing key: paymentDetails.bankName", res.Errors[0])

	inv[KeyPaymentDetails] = map[string]any{
		"bankName": "Bank", "routing": "1", "account": "2", "accountType": "checking", "IBAN": "PL00", "SWIFT": "BANKPLPW",
	}
	assert.True(t, Validate(inv, WithPaymentDetails(true)).Valid)
}

func TestValidate_DoesNotMutate(t *testing.T) {
	inv := Invoice{"supplier": map[string]any{}}

	_ = Validate(inv)

	assert.Equal(t, Invoice{"supplier": map[string]any{}}, inv)
}

func TestResult_Err(t *testing.T) {
	inv := validInvoice()
	delete(inv, KeyRecipient)

	err := Validate(inv).Err()

	var ve *validate.Error
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "recipient", ve.Fields[0].Name)
	assert.ErrorIs(t, ve.Fields[0].Error, validate.ErrFieldRequired)
}

func TestValidate_LogsSummary(t *testing.T) {
	l, hook := logtest.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)

	inv := validInvoice()
	delete(inv, KeySupplier)
	NewValidator(WithLogger(l)).Validate(inv)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, []string{"Missing key: supplier"}, hook.LastEntry().Data["errors"])

	hook.Reset()
	NewValidator(WithLogger(l)).Validate(validInvoice())
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}

func TestInvoice_InvoiceNr(t *testing.T) {
	nr, ok := validInvoice().InvoiceNr()
	assert.True(t, ok)
	assert.Equal(t, "1", nr)

	_, ok = Invoice{}.InvoiceNr()
	assert.False(t, ok)
}
