/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains the SQL for payment records, offers, subscriptions, and the
 * tenant-scoped risk candidate query used by the nearby-risk service.
 *
 * @notes
 * - Tables are created by external migrations; no DDL lives here.
 * - The pending→terminal payment transition is a single conditional UPDATE so
 *   two concurrent webhook deliveries cannot both observe `pending`.
 *
 * @dependencies
 * - context, errors, time: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreatePayment inserts a new payment record. The provider payment id carries
// a uniqueness constraint; a duplicate insert reports ErrDuplicatePayment.
func (r *PostgresRepository) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	query := `
        INSERT INTO payments (provider_payment_id, tenant_id, offer_id, subscription_id, status, amount_cents, description, method, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
    `
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	_, err := r.db.Exec(ctx, query,
		payment.ProviderPaymentID,
		payment.TenantID,
		payment.OfferID,
		payment.SubscriptionID,
		payment.Status,
		payment.AmountCents,
		payment.Description,
		payment.Method,
		now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePayment
		}
		return err
	}
	return nil
}

// FindPaymentByProviderID retrieves a payment record by the provider-assigned id.
func (r *PostgresRepository) FindPaymentByProviderID(ctx context.Context, providerPaymentID string) (*domain.Payment, error) {
	var p domain.Payment
	query := `
        SELECT provider_payment_id, tenant_id, offer_id, subscription_id, status, amount_cents, description, method, created_at, updated_at
        FROM payments
        WHERE provider_payment_id = $1
    `
	err := r.db.QueryRow(ctx, query, providerPaymentID).Scan(
		&p.ProviderPaymentID,
		&p.TenantID,
		&p.OfferID,
		&p.SubscriptionID,
		&p.Status,
		&p.AmountCents,
		&p.Description,
		&p.Method,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// MarkPaymentStatusIfPending applies the pending→status transition atomically.
// The WHERE clause is the compare-and-set: only a `pending` row is updated, so
// at most one caller ever observes transitioned=true for a given record.
func (r *PostgresRepository) MarkPaymentStatusIfPending(ctx context.Context, providerPaymentID string, status domain.PaymentStatus) (*domain.Payment, bool, error) {
	var p domain.Payment
	query := `
        UPDATE payments
        SET status = $2, updated_at = NOW()
        WHERE provider_payment_id = $1 AND status = 'pending'
        RETURNING provider_payment_id, tenant_id, offer_id, subscription_id, status, amount_cents, description, method, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query, providerPaymentID, status).Scan(
		&p.ProviderPaymentID,
		&p.TenantID,
		&p.OfferID,
		&p.SubscriptionID,
		&p.Status,
		&p.AmountCents,
		&p.Description,
		&p.Method,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == nil {
		return &p, true, nil
	}
	if err != pgx.ErrNoRows {
		return nil, false, err
	}

	// No pending row matched: either the record does not exist or it already
	// reached a terminal state. Distinguish the two for the caller.
	existing, findErr := r.FindPaymentByProviderID(ctx, providerPaymentID)
	if findErr != nil {
		return nil, false, findErr
	}
	return existing, false, nil
}

// FindOfferByID retrieves an offer (plan) by its id.
func (r *PostgresRepository) FindOfferByID(ctx context.Context, offerID uuid.UUID) (*domain.Offer, error) {
	var o domain.Offer
	query := `SELECT id, name, price_cents, seat_limit, trial_days, period_months FROM offers WHERE id = $1`
	err := r.db.QueryRow(ctx, query, offerID).Scan(&o.ID, &o.Name, &o.PriceCents, &o.SeatLimit, &o.TrialDays, &o.PeriodMonths)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &o, nil
}

// ActivateSubscription activates or extends a subscription inside one
// transaction so the offer lookup and the period arithmetic stay consistent.
func (r *PostgresRepository) ActivateSubscription(ctx context.Context, tenantID uuid.UUID, offerID uuid.UUID, subscriptionID *uuid.UUID) (*domain.Subscription, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var periodMonths int
	if err := tx.QueryRow(ctx, `SELECT period_months FROM offers WHERE id = $1`, offerID).Scan(&periodMonths); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	if periodMonths <= 0 {
		periodMonths = 1
	}

	var sub domain.Subscription
	if subscriptionID != nil {
		// Extend the referenced subscription. Extension starts from the later
		// of now and the current period end so early renewals stack.
		query := `
            UPDATE subscriptions
            SET status = 'active',
                current_period_end = GREATEST(NOW(), current_period_end) + make_interval(months => $2),
                updated_at = NOW()
            WHERE id = $1
            RETURNING id, tenant_id, offer_id, status, current_period_start, current_period_end, created_at, updated_at
        `
		err = tx.QueryRow(ctx, query, *subscriptionID, periodMonths).Scan(
			&sub.ID, &sub.TenantID, &sub.OfferID, &sub.Status,
			&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.CreatedAt, &sub.UpdatedAt,
		)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, ErrSubscriptionNotFound
			}
			return nil, err
		}
	} else {
		query := `
            INSERT INTO subscriptions (id, tenant_id, offer_id, status, current_period_start, current_period_end, created_at, updated_at)
            VALUES ($1, $2, $3, 'active', NOW(), NOW() + make_interval(months => $4), NOW(), NOW())
            ON CONFLICT (tenant_id, offer_id) DO UPDATE SET
                status = 'active',
                current_period_end = GREATEST(NOW(), subscriptions.current_period_end) + make_interval(months => $4),
                updated_at = NOW()
            RETURNING id, tenant_id, offer_id, status, current_period_start, current_period_end, created_at, updated_at
        `
		err = tx.QueryRow(ctx, query, uuid.New(), tenantID, offerID, periodMonths).Scan(
			&sub.ID, &sub.TenantID, &sub.OfferID, &sub.Status,
			&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.CreatedAt, &sub.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &sub, nil
}

// LapseExpiredSubscriptions marks active subscriptions whose period has ended
// as expired and returns how many rows were affected.
func (r *PostgresRepository) LapseExpiredSubscriptions(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE subscriptions
        SET status = 'expired', updated_at = NOW()
        WHERE status = 'active' AND current_period_end < NOW()
    `)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// FindRisksInBoundingBox returns the tenant's risks inside a coarse lat/lng
// box, ordered by id for a stable scan. When the box crosses the antimeridian
// (minLng > maxLng) the longitude filter becomes a disjunction.
func (r *PostgresRepository) FindRisksInBoundingBox(ctx context.Context, tenantID uuid.UUID, minLat, maxLat, minLng, maxLng float64) ([]domain.Risk, error) {
	lngClause := "longitude BETWEEN $4 AND $5"
	if minLng > maxLng {
		lngClause = "(longitude >= $4 OR longitude <= $5)"
	}
	query := `
        SELECT id, tenant_id, title, category, level, latitude, longitude, created_at
        FROM risks
        WHERE tenant_id = $1 AND latitude BETWEEN $2 AND $3 AND ` + lngClause + `
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, tenantID, minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var risks []domain.Risk
	for rows.Next() {
		var risk domain.Risk
		if err := rows.Scan(&risk.ID, &risk.TenantID, &risk.Title, &risk.Category, &risk.Level, &risk.Latitude, &risk.Longitude, &risk.CreatedAt); err != nil {
			return nil, err
		}
		risks = append(risks, risk)
	}
	return risks, rows.Err()
}
