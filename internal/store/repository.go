/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for
 * all data access operations required by the service. By defining an interface,
 * we decouple the application's business logic from the specific database
 * implementation (PostgreSQL), making the code more modular and easier to test.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/domain"
)

// Sentinel errors returned by repository implementations. Callers match them
// with errors.Is to map onto HTTP statuses.
var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrDuplicatePayment     = errors.New("payment already recorded for provider id")
	ErrOfferNotFound        = errors.New("offer not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Payment records
	CreatePayment(ctx context.Context, payment *domain.Payment) error
	FindPaymentByProviderID(ctx context.Context, providerPaymentID string) (*domain.Payment, error)
	// MarkPaymentStatusIfPending applies the pending→status transition as one
	// conditional UPDATE. It returns the record and whether this call performed
	// the transition; a record already in a terminal state is returned with
	// transitioned=false. This is the sole idempotency safeguard for
	// concurrent webhook deliveries, so it must stay a single statement.
	MarkPaymentStatusIfPending(ctx context.Context, providerPaymentID string, status domain.PaymentStatus) (payment *domain.Payment, transitioned bool, err error)

	// Offers and subscriptions
	FindOfferByID(ctx context.Context, offerID uuid.UUID) (*domain.Offer, error)
	// ActivateSubscription creates a subscription on the offer for the paying
	// tenant, or extends the referenced subscription by the offer's period
	// length when subscriptionID is set.
	ActivateSubscription(ctx context.Context, tenantID uuid.UUID, offerID uuid.UUID, subscriptionID *uuid.UUID) (*domain.Subscription, error)
	LapseExpiredSubscriptions(ctx context.Context) (int64, error)

	// Risk store
	// FindRisksInBoundingBox returns the tenant's risks inside a coarse
	// lat/lng box. Exact distance filtering happens in the service layer.
	FindRisksInBoundingBox(ctx context.Context, tenantID uuid.UUID, minLat, maxLat, minLng, maxLng float64) ([]domain.Risk, error)
}
