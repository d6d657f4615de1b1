/**
 * @description
 * Event payloads published to RabbitMQ for the notification collaborator.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentCreatedEvent is published when a provider payment has been created
// and the local pending record persisted.
type PaymentCreatedEvent struct {
	ProviderPaymentID string    `json:"provider_payment_id"`
	OfferID           uuid.UUID `json:"offer_id"`
	AmountCents       int64     `json:"amount_cents"`
	Timestamp         time.Time `json:"timestamp"`
}

// PaymentPaidEvent is published exactly once per payment, when the webhook
// reconciliation lands the pending→paid transition.
type PaymentPaidEvent struct {
	ProviderPaymentID string     `json:"provider_payment_id"`
	OfferID           uuid.UUID  `json:"offer_id"`
	SubscriptionID    *uuid.UUID `json:"subscription_id,omitempty"`
	AmountCents       int64      `json:"amount_cents"`
	Timestamp         time.Time  `json:"timestamp"`
}
