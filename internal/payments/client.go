// Package payments integrates with the external checkout/invoicing provider.
//
// The provider exposes a form-encoded REST API (checkout sessions, customers,
// tax IDs, invoices) and pushes payment events over a signed webhook. This
// package owns the outbound half: a thin typed client with no retry loop —
// reconciliation on failure is the service layer's job, driven either by the
// webhook redelivery policy or by the pull-based verification path.
package payments

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/atelierhaus/atelier-backend/internal/config"
)

// Session payment states reported by the provider.
const (
	SessionPaid   = "paid"
	SessionUnpaid = "unpaid"
)

// Invoice states reported by the provider. Only draft invoices may be
// finalized; finalizing any other state is a caller-side no-op.
const (
	InvoiceDraft = "draft"
	InvoiceOpen  = "open"
	InvoicePaid  = "paid"
)

// CheckoutSession is the provider's representation of a pending payment.
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Customer      string `json:"customer"`
	Invoice       string `json:"invoice"`
	Status        string `json:"status"`         // open | complete | expired
	PaymentStatus string `json:"payment_status"` // paid | unpaid
	AmountTotal   int64  `json:"amount_total"`
	CustomerEmail string `json:"customer_email"`

	// ClientReferenceID carries our inquiry ID round-trip through checkout.
	ClientReferenceID string `json:"client_reference_id"`
}

// Customer is the provider's customer record.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaxID is a tax identifier registered on a customer.
type TaxID struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Invoice is the provider's invoice record.
type Invoice struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// apiError is the provider's error envelope.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Address is a postal address forwarded to the provider.
type Address struct {
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
}

// CheckoutParams describes a new checkout session.
type CheckoutParams struct {
	CustomerEmail string
	ProductName   string
	AmountCents   int64
	Currency      string
	ReferenceID   string // our inquiry ID, round-tripped via client_reference_id
	SuccessURL    string
	CancelURL     string
	CollectTaxID  bool // business clients: have the provider collect a tax ID
}

// Client calls the checkout provider API. Safe for concurrent use.
type Client struct {
	http *resty.Client
}

// NewClient builds a provider client from configuration.
func NewClient(cfg config.PaymentConfig) *Client {
	c := resty.New().
		SetBaseURL(cfg.APIBase).
		SetTimeout(20*time.Second).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// CreateCheckoutSession opens a checkout session in invoice-creation mode.
// A customer record is always created, even if payment never completes, and
// the provider collects the billing address (plus tax ID for business
// clients) during checkout.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	form := map[string]string{
		"mode":                                          "payment",
		"customer_email":                                p.CustomerEmail,
		"client_reference_id":                           p.ReferenceID,
		"customer_creation":                             "always",
		"billing_address_collection":                    "required",
		"invoice_creation[enabled]":                     "true",
		"success_url":                                   p.SuccessURL,
		"cancel_url":                                    p.CancelURL,
		"line_items[0][quantity]":                       "1",
		"line_items[0][price_data][currency]":           p.Currency,
		"line_items[0][price_data][unit_amount]":        strconv.FormatInt(p.AmountCents, 10),
		"line_items[0][price_data][product_data][name]": p.ProductName,
	}
	if p.CollectTaxID {
		form["tax_id_collection[enabled]"] = "true"
	}

	var out CheckoutSession
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		SetError(&apiErr).
		Post("/checkout/sessions")
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("create checkout session: %s (%s)", apiErr.Error.Message, resp.Status())
	}
	return &out, nil
}

// GetCheckoutSession retrieves the current state of a checkout session.
func (c *Client) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	var out CheckoutSession
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/checkout/sessions/" + id)
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get checkout session %s: %s (%s)", id, apiErr.Error.Message, resp.Status())
	}
	return &out, nil
}

// UpdateCustomer sets the customer's legal name and postal address.
func (c *Client) UpdateCustomer(ctx context.Context, id, name string, addr Address) (*Customer, error) {
	form := map[string]string{
		"name":                 name,
		"address[line1]":       addr.Line1,
		"address[city]":        addr.City,
		"address[postal_code]": addr.PostalCode,
	}
	if addr.Line2 != "" {
		form["address[line2]"] = addr.Line2
	}
	if addr.Country != "" {
		form["address[country]"] = addr.Country
	}

	var out Customer
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		SetError(&apiErr).
		Post("/customers/" + id)
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("update customer %s: %s (%s)", id, apiErr.Error.Message, resp.Status())
	}
	return &out, nil
}

// CreateTaxID registers a tax identifier on the customer.
func (c *Client) CreateTaxID(ctx context.Context, customerID, taxType, value string) (*TaxID, error) {
	var out TaxID
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"type":  taxType,
			"value": value,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/customers/" + customerID + "/tax_ids")
	if err != nil {
		return nil, fmt.Errorf("create tax id: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("create tax id for %s: %s (%s)", customerID, apiErr.Error.Message, resp.Status())
	}
	return &out, nil
}

// GetInvoice retrieves an invoice.
func (c *Client) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	var out Invoice
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/invoices/" + id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get invoice %s: %s (%s)", id, apiErr.Error.Message, resp.Status())
	}
	return &out, nil
}

// FinalizeInvoice transitions a draft invoice to issued. The transition is
// irreversible on the provider side.
func (c *Client) FinalizeInvoice(ctx context.Context, id string) (*Invoice, error) {
	var out Invoice
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Post("/invoices/" + id + "/finalize")
	if err != nil {
		return nil, fmt.Errorf("finalize invoice: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("finalize invoice %s: %s (%s)", id, apiErr.Error.Message, resp.Status())
	}
	return &out, nil
}
