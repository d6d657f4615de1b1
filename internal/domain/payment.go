/**
 * @description
 * This file defines the core domain models for the payment gateway bridge.
 * These structs represent the payment entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Amounts are carried as `int64` in euro cents, which avoids floating-point
 *   inaccuracies with financial data. The 2-decimal string form only exists at
 *   the provider boundary and in API responses.
 */

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus enumerates the states of the local payment record.
// `pending` is the only non-terminal state; the others are terminal and
// mutually exclusive.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusCanceled PaymentStatus = "canceled"
	PaymentStatusExpired  PaymentStatus = "expired"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusFailed, PaymentStatusCanceled, PaymentStatusExpired:
		return true
	}
	return false
}

// Payment is the local record of a payment initiated with the provider.
// The provider-assigned id is the cross-system identity and is unique.
type Payment struct {
	ProviderPaymentID string        `json:"provider_payment_id"`
	TenantID          uuid.UUID     `json:"tenant_id"`
	OfferID           uuid.UUID     `json:"offer_id"`
	SubscriptionID    *uuid.UUID    `json:"subscription_id,omitempty"`
	Status            PaymentStatus `json:"status"`
	AmountCents       int64         `json:"amount_cents"`
	Description       string        `json:"description"`
	Method            string        `json:"method"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// AmountString renders the amount with fixed 2-decimal formatting, the form
// the provider API and the public API expect.
func (p *Payment) AmountString() string {
	return FormatCents(p.AmountCents)
}

// FormatCents renders an amount in cents as a fixed 2-decimal string.
func FormatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// CreatePaymentRequest is the DTO for incoming payment creation API requests.
// Amount arrives as a JSON number in major units (e.g. 29.99).
type CreatePaymentRequest struct {
	OfferID        string  `json:"offer_id"`
	PaymentMethod  string  `json:"payment_method"`
	Amount         float64 `json:"amount"`
	Description    string  `json:"description"`
	SubscriptionID *string `json:"subscription_id,omitempty"`
}

// CreatePaymentResponse is returned after a payment has been created with the
// provider and recorded locally. The caller redirects the payer to CheckoutURL.
type CreatePaymentResponse struct {
	PaymentID   string `json:"payment_id"`
	CheckoutURL string `json:"checkout_url"`
	Status      string `json:"status"`
	Amount      string `json:"amount"`
}

// PaymentStatusResponse is the DTO for the polling endpoint. Status reflects
// the provider's current view, not the local cache.
type PaymentStatusResponse struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}
