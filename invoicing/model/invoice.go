// Package model is a typed way to build the dynamic invoice object sent to
// the generator. Amounts are decimals, dates are days.
package model

import (
	"encoding/json"
	"time"

	"github.com/alapierre/go-simpleinvoicing-client/invoicing/invoice"
	"github.com/shopspring/decimal"
)

type Party struct {
	Name     string
	Address  string
	City     string
	Country  string
	PostCode string
}

// PaymentDetails fields are optional; empty ones are left out.
type PaymentDetails struct {
	BankName    string
	Routing     string
	Account     string
	AccountType string
	IBAN        string
	SWIFT       string
}

type Item struct {
	Item        string
	Description string
	Quantity    decimal.Decimal
	NetAmount   decimal.Decimal
	GrossAmount decimal.Decimal
	Tax         decimal.Decimal
	Type        string
}

type Details struct {
	IssueDate       time.Time
	DeliveryDate    time.Time
	DueDate         time.Time
	NetSubtotal     decimal.Decimal
	GrossTotal      decimal.Decimal
	InvoiceNr       string
	InvoiceLanguage string
	Currency        string
}

type Settings struct {
	ReturnAs string
}

type Invoice struct {
	Supplier       Party
	Recipient      Party
	PaymentDetails PaymentDetails
	Items          []Item
	Details        Details
	Settings       Settings
}

// Object renders the typed invoice as the mapping the validator and the
// remote service work with.
func (i Invoice) Object() invoice.Invoice {
	items := make([]any, 0, len(i.Items))
	for _, it := range i.Items {
		items = append(items, it.object())
	}

	return invoice.Invoice{
		invoice.KeySupplier:        i.Supplier.object(),
		invoice.KeyRecipient:       i.Recipient.object(),
		invoice.KeyPaymentDetails:  i.PaymentDetails.object(),
		invoice.KeyItems:           items,
		invoice.KeyInvoiceDetails:  i.Details.object(),
		invoice.KeyInvoiceSettings: map[string]any{"returnAs": i.Settings.ReturnAs},
	}
}

func (p Party) object() map[string]any {
	return map[string]any{
		"name":     p.Name,
		"address":  p.Address,
		"city":     p.City,
		"country":  p.Country,
		"postCode": p.PostCode,
	}
}

func (p PaymentDetails) object() map[string]any {
	m := map[string]any{}
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set("bankName", p.BankName)
	set("routing", p.Routing)
	set("account", p.Account)
	set("accountType", p.AccountType)
	set("IBAN", p.IBAN)
	set("SWIFT", p.SWIFT)
	return m
}

func (it Item) object() map[string]any {
	return map[string]any{
		"item":        it.Item,
		"description": it.Description,
		"quantity":    number(it.Quantity),
		"netAmount":   number(it.NetAmount),
		"grossAmount": number(it.GrossAmount),
		"tax":         number(it.Tax),
		"type":        it.Type,
	}
}

func (d Details) object() map[string]any {
	return map[string]any{
		"issueDate":       d.IssueDate.Format(time.DateOnly),
		"deliveryDate":    d.DeliveryDate.Format(time.DateOnly),
		"dueDate":         d.DueDate.Format(time.DateOnly),
		"netSubtotal":     number(d.NetSubtotal),
		"grossTotal":      number(d.GrossTotal),
		"invoiceNr":       d.InvoiceNr,
		"invoiceLanguage": d.InvoiceLanguage,
		"currency":        d.Currency,
	}
}

// number keeps the decimal digits exactly as written when encoded.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
