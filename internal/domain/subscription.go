/**
 * @description
 * This file defines the subscription and offer domain models. An Offer is a
 * priced plan (seat limit, price, period length); a Subscription ties a tenant
 * to an offer for a billing period and is activated or extended when the
 * matching payment reaches the `paid` status.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Offer represents a priced subscription plan.
type Offer struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	PriceCents   int64     `json:"price_cents"`
	SeatLimit    int       `json:"seat_limit"`
	TrialDays    int       `json:"trial_days"`
	PeriodMonths int       `json:"period_months"`
}

// Subscription represents a tenant's subscription to an offer.
type Subscription struct {
	ID                 uuid.UUID `json:"id"`
	TenantID           uuid.UUID `json:"tenant_id"`
	OfferID            uuid.UUID `json:"offer_id"`
	Status             string    `json:"status"` // 'active', 'expired', 'canceled'
	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
