/**
 * @description
 * This file contains the core business logic for the payment gateway bridge:
 * creating payments with the external provider, reconciling status through
 * webhook deliveries, and the read-through status poll.
 *
 * Key rules:
 * - The webhook payload is never trusted; the provider is re-queried by id.
 * - The pending→terminal transition goes through the repository's conditional
 *   update, so duplicate or concurrent deliveries activate a subscription at
 *   most once.
 * - Webhook failures are logged and counted but never surfaced to the
 *   boundary caller; the provider must not be provoked into retry storms.
 *
 * @dependencies
 * - internal/store: Repository contract and sentinel errors.
 * - pkg/mollieclient: The provider API client types.
 * - pkg/rabbitmq: Billing event publication.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/config"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/domain"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/store"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/pkg/mollieclient"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/pkg/rabbitmq"
)

// maxAmountCents caps a single payment at 99999.99 in major units.
const maxAmountCents int64 = 9_999_999

// providerMethods maps the API's payment method names (the platform's French
// vocabulary plus English aliases) onto the provider's method identifiers.
// Cheques have no provider method of their own; they settle as bank transfers.
var providerMethods = map[string]string{
	"card":           "creditcard",
	"carte_bancaire": "creditcard",
	"bank-transfer":  "banktransfer",
	"virement":       "banktransfer",
	"direct-debit":   "directdebit",
	"prelevement":    "directdebit",
	"check":          "banktransfer",
	"cheque":         "banktransfer",
}

// providerStatusToLocal maps the provider's terminal statuses onto the local
// payment states. Non-terminal provider statuses (open, pending) are absent
// on purpose: they must not touch the record.
var providerStatusToLocal = map[string]domain.PaymentStatus{
	"paid":     domain.PaymentStatusPaid,
	"failed":   domain.PaymentStatusFailed,
	"canceled": domain.PaymentStatusCanceled,
	"expired":  domain.PaymentStatusExpired,
}

// PaymentProvider is the slice of the provider client the service depends on.
type PaymentProvider interface {
	CreatePayment(ctx context.Context, payload mollieclient.CreatePaymentRequest) (*mollieclient.PaymentResponse, error)
	GetPayment(ctx context.Context, paymentID string) (*mollieclient.PaymentResponse, error)
}

// PaymentService orchestrates the provider client, the payment store, and
// billing event publication. Safe for concurrent use.
type PaymentService struct {
	repo     store.Repository
	provider PaymentProvider
	producer rabbitmq.Publisher
	exchange string
	currency string
	redirect string
	webhook  string
}

// NewPaymentService creates the payment bridge service.
func NewPaymentService(repo store.Repository, provider PaymentProvider, producer rabbitmq.Publisher, cfg config.Config) *PaymentService {
	return &PaymentService{
		repo:     repo,
		provider: provider,
		producer: producer,
		exchange: cfg.BillingEventExchange,
		currency: cfg.PaymentCurrency,
		redirect: cfg.CheckoutRedirectURL,
		webhook:  strings.TrimSuffix(cfg.PublicBaseURL, "/") + "/webhooks/payments",
	}
}

// amountToCents validates the request amount and converts it to minor units.
// More than two decimal places, non-positive values, and values above the cap
// are rejected.
func amountToCents(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be a positive number", ErrInvalidPaymentRequest)
	}
	scaled := amount * 100
	cents := math.Round(scaled)
	if math.Abs(scaled-cents) > 1e-6 {
		return 0, fmt.Errorf("%w: amount has more than 2 decimal places", ErrInvalidPaymentRequest)
	}
	// Compare in float space: converting an oversized float to int64 wraps
	// around, which would slip past an int64 comparison.
	if cents > float64(maxAmountCents) {
		return 0, fmt.Errorf("%w: amount exceeds %s", ErrInvalidPaymentRequest, domain.FormatCents(maxAmountCents))
	}
	return int64(cents), nil
}

// CreatePayment validates the request, registers the payment with the
// provider, and persists the local pending record. The record is written only
// after the provider confirms creation, so a provider failure leaves nothing
// behind locally.
func (s *PaymentService) CreatePayment(ctx context.Context, tenantID uuid.UUID, req domain.CreatePaymentRequest) (*domain.CreatePaymentResponse, error) {
	offerIDRaw := strings.TrimSpace(req.OfferID)
	if offerIDRaw == "" {
		return nil, fmt.Errorf("%w: offer_id is required", ErrInvalidPaymentRequest)
	}
	offerID, err := uuid.Parse(offerIDRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: offer_id is not a valid id", ErrInvalidPaymentRequest)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidPaymentRequest)
	}

	method, ok := providerMethods[strings.TrimSpace(req.PaymentMethod)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPaymentMethod, req.PaymentMethod)
	}

	cents, err := amountToCents(req.Amount)
	if err != nil {
		return nil, err
	}

	var subscriptionID *uuid.UUID
	if req.SubscriptionID != nil && strings.TrimSpace(*req.SubscriptionID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.SubscriptionID))
		if err != nil {
			return nil, fmt.Errorf("%w: subscription_id is not a valid id", ErrInvalidPaymentRequest)
		}
		subscriptionID = &parsed
	}

	// The offer must exist before anything is registered with the provider;
	// otherwise the webhook would later try to activate against a ghost plan.
	if _, err := s.repo.FindOfferByID(ctx, offerID); err != nil {
		if errors.Is(err, store.ErrOfferNotFound) {
			return nil, fmt.Errorf("%w: offer %s does not exist", ErrInvalidPaymentRequest, offerID)
		}
		log.Printf("level=error component=payment_service op=create_payment outcome=offer_lookup_failure offer_id=%s err=%v", offerID, err)
		return nil, fmt.Errorf("offer lookup failed: %w", err)
	}

	metadata := map[string]string{
		"offer_id":  offerID.String(),
		"tenant_id": tenantID.String(),
	}
	if subscriptionID != nil {
		metadata["subscription_id"] = subscriptionID.String()
	}

	providerResp, err := s.provider.CreatePayment(ctx, mollieclient.CreatePaymentRequest{
		Amount: mollieclient.Amount{
			Currency: s.currency,
			Value:    domain.FormatCents(cents),
		},
		Description: req.Description,
		RedirectURL: s.redirect,
		WebhookURL:  s.webhook + "?offer_id=" + offerID.String(),
		Method:      method,
		Metadata:    metadata,
	})
	if err != nil {
		log.Printf("level=error component=payment_service op=create_payment outcome=provider_failure offer_id=%s err=%v", offerID, err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentCreationFailed, err)
	}

	payment := &domain.Payment{
		ProviderPaymentID: providerResp.ID,
		TenantID:          tenantID,
		OfferID:           offerID,
		SubscriptionID:    subscriptionID,
		Status:            domain.PaymentStatusPending,
		AmountCents:       cents,
		Description:       req.Description,
		Method:            method,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		log.Printf("level=error component=payment_service op=create_payment outcome=persist_failure provider_payment_id=%s err=%v", providerResp.ID, err)
		return nil, fmt.Errorf("failed to persist payment record: %w", err)
	}
	paymentsCreatedTotal.Inc()

	if err := s.producer.Publish(ctx, s.exchange, "payment.created", domain.PaymentCreatedEvent{
		ProviderPaymentID: payment.ProviderPaymentID,
		OfferID:           payment.OfferID,
		AmountCents:       payment.AmountCents,
		Timestamp:         time.Now(),
	}); err != nil {
		log.Printf("level=warn component=payment_service op=create_payment msg=\"event publish failed\" provider_payment_id=%s err=%v", payment.ProviderPaymentID, err)
	}

	log.Printf("level=info component=payment_service op=create_payment outcome=created provider_payment_id=%s offer_id=%s amount=%s method=%s",
		payment.ProviderPaymentID, offerID, payment.AmountString(), method)

	return &domain.CreatePaymentResponse{
		PaymentID:   providerResp.ID,
		CheckoutURL: providerResp.CheckoutURL(),
		Status:      providerResp.Status,
		Amount:      payment.AmountString(),
	}, nil
}

// HandleWebhook reconciles the local payment record against the provider's
// view. The returned error is for logging and metrics only; the HTTP boundary
// acknowledges the delivery regardless.
func (s *PaymentService) HandleWebhook(ctx context.Context, providerPaymentID string) error {
	id := strings.TrimSpace(providerPaymentID)
	if id == "" {
		webhookFailuresTotal.WithLabelValues("payload").Inc()
		return fmt.Errorf("%w: webhook payload carries no payment id", ErrInvalidRequest)
	}

	// The payload's own status claims are never trusted; the provider is the
	// only status source.
	providerResp, err := s.provider.GetPayment(ctx, id)
	if err != nil {
		webhookFailuresTotal.WithLabelValues("provider_query").Inc()
		return fmt.Errorf("provider re-query for %s failed: %w", id, err)
	}

	target, terminal := providerStatusToLocal[providerResp.Status]
	if !terminal {
		log.Printf("level=info component=payment_service op=webhook outcome=no_transition provider_payment_id=%s provider_status=%s", id, providerResp.Status)
		return nil
	}

	payment, transitioned, err := s.repo.MarkPaymentStatusIfPending(ctx, id, target)
	if err != nil {
		if errors.Is(err, store.ErrPaymentNotFound) {
			webhookFailuresTotal.WithLabelValues("unknown_payment").Inc()
			return fmt.Errorf("webhook for unknown payment %s: %w", id, err)
		}
		webhookFailuresTotal.WithLabelValues("persistence").Inc()
		return fmt.Errorf("status update for %s failed: %w", id, err)
	}
	if !transitioned {
		// Already terminal: a duplicate or late delivery. No side effects.
		webhookDuplicatesTotal.Inc()
		log.Printf("level=info component=payment_service op=webhook outcome=duplicate provider_payment_id=%s status=%s", id, payment.Status)
		return nil
	}
	webhookTransitionsTotal.WithLabelValues(string(target)).Inc()
	log.Printf("level=info component=payment_service op=webhook outcome=transition provider_payment_id=%s to=%s", id, target)

	if target != domain.PaymentStatusPaid {
		return nil
	}

	// The CAS above landed pending→paid exactly once, so this activation runs
	// exactly once per payment.
	sub, err := s.repo.ActivateSubscription(ctx, payment.TenantID, payment.OfferID, payment.SubscriptionID)
	if err != nil {
		webhookFailuresTotal.WithLabelValues("activation").Inc()
		return fmt.Errorf("subscription activation for payment %s failed: %w", id, err)
	}
	log.Printf("level=info component=payment_service op=webhook outcome=subscription_activated provider_payment_id=%s subscription_id=%s period_end=%s",
		id, sub.ID, sub.CurrentPeriodEnd.Format(time.RFC3339))

	if err := s.producer.Publish(ctx, s.exchange, "payment.paid", domain.PaymentPaidEvent{
		ProviderPaymentID: payment.ProviderPaymentID,
		OfferID:           payment.OfferID,
		SubscriptionID:    payment.SubscriptionID,
		AmountCents:       payment.AmountCents,
		Timestamp:         time.Now(),
	}); err != nil {
		log.Printf("level=warn component=payment_service op=webhook msg=\"event publish failed\" provider_payment_id=%s err=%v", id, err)
	}
	return nil
}

// GetPaymentStatus reads the payment status through to the provider so the
// polling caller sees the current external truth even before the webhook has
// been delivered.
func (s *PaymentService) GetPaymentStatus(ctx context.Context, paymentID string) (*domain.PaymentStatusResponse, error) {
	id := strings.TrimSpace(paymentID)
	if id == "" {
		return nil, fmt.Errorf("%w: payment id is required", ErrInvalidRequest)
	}

	providerResp, err := s.provider.GetPayment(ctx, id)
	if err != nil {
		log.Printf("level=warn component=payment_service op=get_status outcome=provider_failure provider_payment_id=%s err=%v", id, err)
		return nil, fmt.Errorf("%w: %v", ErrStatusUnavailable, err)
	}

	return &domain.PaymentStatusResponse{
		PaymentID: providerResp.ID,
		Status:    providerResp.Status,
	}, nil
}
