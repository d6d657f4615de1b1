package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/config"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/domain"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/store"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/pkg/mollieclient"
)

type createPaymentRepoStub struct {
	store.Repository

	created      *domain.Payment
	createErr    error
	createCalled bool
	offerErr     error
}

func (s *createPaymentRepoStub) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	s.createCalled = true
	if s.createErr != nil {
		return s.createErr
	}
	s.created = payment
	return nil
}

func (s *createPaymentRepoStub) FindOfferByID(ctx context.Context, offerID uuid.UUID) (*domain.Offer, error) {
	if s.offerErr != nil {
		return nil, s.offerErr
	}
	return &domain.Offer{ID: offerID, Name: "Offre Pro", PriceCents: 2999, PeriodMonths: 1}, nil
}

type providerStub struct {
	createResp *mollieclient.PaymentResponse
	createErr  error
	createReq  *mollieclient.CreatePaymentRequest

	getResp   *mollieclient.PaymentResponse
	getErr    error
	getCalls  int
	lastGetID string
}

func (p *providerStub) CreatePayment(ctx context.Context, payload mollieclient.CreatePaymentRequest) (*mollieclient.PaymentResponse, error) {
	p.createReq = &payload
	if p.createErr != nil {
		return nil, p.createErr
	}
	return p.createResp, nil
}

func (p *providerStub) GetPayment(ctx context.Context, paymentID string) (*mollieclient.PaymentResponse, error) {
	p.getCalls++
	p.lastGetID = paymentID
	if p.getErr != nil {
		return nil, p.getErr
	}
	return p.getResp, nil
}

type publisherStub struct {
	published []string
}

func (p *publisherStub) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.published = append(p.published, routingKey)
	return nil
}

func (p *publisherStub) Close() {}

func testConfig() config.Config {
	return config.Config{
		BillingEventExchange: "billing_events",
		PaymentCurrency:      "EUR",
		CheckoutRedirectURL:  "https://app.example.com/billing/return",
		PublicBaseURL:        "https://api.example.com",
	}
}

func checkoutResponse(id, status, href string) *mollieclient.PaymentResponse {
	resp := &mollieclient.PaymentResponse{ID: id, Status: status}
	resp.Links.Checkout.Href = href
	return resp
}

func TestCreatePayment_PersistsPendingRecord(t *testing.T) {
	repo := &createPaymentRepoStub{}
	provider := &providerStub{
		createResp: checkoutResponse("tr_WDqYK6vllg", "open", "https://pay.example.com/checkout/tr_WDqYK6vllg"),
	}
	producer := &publisherStub{}
	svc := NewPaymentService(repo, provider, producer, testConfig())

	tenantID := uuid.New()
	offerID := uuid.New()
	resp, err := svc.CreatePayment(context.Background(), tenantID, domain.CreatePaymentRequest{
		OfferID:       offerID.String(),
		PaymentMethod: "carte_bancaire",
		Amount:        29.99,
		Description:   "Offre Pro - mensuel",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.PaymentID != "tr_WDqYK6vllg" {
		t.Fatalf("expected provider payment id in response, got %q", resp.PaymentID)
	}
	if resp.CheckoutURL != "https://pay.example.com/checkout/tr_WDqYK6vllg" {
		t.Fatalf("unexpected checkout url %q", resp.CheckoutURL)
	}
	if resp.Amount != "29.99" {
		t.Fatalf("expected amount 29.99, got %q", resp.Amount)
	}
	if repo.created == nil {
		t.Fatal("expected payment record to be persisted")
	}
	if repo.created.Status != domain.PaymentStatusPending {
		t.Fatalf("expected pending record, got %q", repo.created.Status)
	}
	if repo.created.AmountCents != 2999 {
		t.Fatalf("expected 2999 cents, got %d", repo.created.AmountCents)
	}
	if repo.created.TenantID != tenantID {
		t.Fatal("expected tenant id on persisted record")
	}
	if repo.created.Method != "creditcard" {
		t.Fatalf("expected carte_bancaire to map to creditcard, got %q", repo.created.Method)
	}
	if len(producer.published) != 1 || producer.published[0] != "payment.created" {
		t.Fatalf("expected one payment.created event, got %v", producer.published)
	}
}

func TestCreatePayment_SendsTwoDecimalAmountToProvider(t *testing.T) {
	repo := &createPaymentRepoStub{}
	provider := &providerStub{
		createResp: checkoutResponse("tr_amount", "open", "https://pay.example.com/c/tr_amount"),
	}
	svc := NewPaymentService(repo, provider, &publisherStub{}, testConfig())

	_, err := svc.CreatePayment(context.Background(), uuid.New(), domain.CreatePaymentRequest{
		OfferID:       uuid.New().String(),
		PaymentMethod: "card",
		Amount:        10,
		Description:   "Offre Starter",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if provider.createReq == nil {
		t.Fatal("expected provider create call")
	}
	if provider.createReq.Amount.Value != "10.00" {
		t.Fatalf("expected provider amount \"10.00\", got %q", provider.createReq.Amount.Value)
	}
	if provider.createReq.Amount.Currency != "EUR" {
		t.Fatalf("expected EUR, got %q", provider.createReq.Amount.Currency)
	}
}

func TestCreatePayment_RejectsInvalidAmounts(t *testing.T) {
	cases := []struct {
		name   string
		amount float64
	}{
		{"zero", 0},
		{"negative", -5},
		{"three decimals", 10.999},
		{"above cap", 100000.00},
		{"huge value overflowing int64", 1e18},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &createPaymentRepoStub{}
			provider := &providerStub{}
			svc := NewPaymentService(repo, provider, &publisherStub{}, testConfig())

			_, err := svc.CreatePayment(context.Background(), uuid.New(), domain.CreatePaymentRequest{
				OfferID:       uuid.New().String(),
				PaymentMethod: "card",
				Amount:        tc.amount,
				Description:   "Offre Pro",
			})
			if !errors.Is(err, ErrInvalidPaymentRequest) {
				t.Fatalf("expected ErrInvalidPaymentRequest, got %v", err)
			}
			if provider.createReq != nil {
				t.Fatal("provider must not be called for an invalid amount")
			}
			if repo.createCalled {
				t.Fatal("nothing must be persisted for an invalid amount")
			}
		})
	}
}

func TestCreatePayment_RejectsUnknownOffer(t *testing.T) {
	repo := &createPaymentRepoStub{offerErr: store.ErrOfferNotFound}
	provider := &providerStub{}
	svc := NewPaymentService(repo, provider, &publisherStub{}, testConfig())

	_, err := svc.CreatePayment(context.Background(), uuid.New(), domain.CreatePaymentRequest{
		OfferID:       uuid.New().String(),
		PaymentMethod: "card",
		Amount:        29.99,
		Description:   "Offre Pro",
	})
	if !errors.Is(err, ErrInvalidPaymentRequest) {
		t.Fatalf("expected ErrInvalidPaymentRequest, got %v", err)
	}
	if provider.createReq != nil {
		t.Fatal("provider must not be called for an unknown offer")
	}
	if repo.createCalled {
		t.Fatal("nothing must be persisted for an unknown offer")
	}
}

func TestCreatePayment_RejectsUnsupportedMethod(t *testing.T) {
	repo := &createPaymentRepoStub{}
	svc := NewPaymentService(repo, &providerStub{}, &publisherStub{}, testConfig())

	_, err := svc.CreatePayment(context.Background(), uuid.New(), domain.CreatePaymentRequest{
		OfferID:       uuid.New().String(),
		PaymentMethod: "bitcoin",
		Amount:        29.99,
		Description:   "Offre Pro",
	})
	if !errors.Is(err, ErrUnsupportedPaymentMethod) {
		t.Fatalf("expected ErrUnsupportedPaymentMethod, got %v", err)
	}
}

func TestCreatePayment_MapsFrenchMethodAliases(t *testing.T) {
	cases := map[string]string{
		"carte_bancaire": "creditcard",
		"virement":       "banktransfer",
		"prelevement":    "directdebit",
		"cheque":         "banktransfer",
	}
	for alias, want := range cases {
		repo := &createPaymentRepoStub{}
		provider := &providerStub{
			createResp: checkoutResponse("tr_alias", "open", "https://pay.example.com/c/tr_alias"),
		}
		svc := NewPaymentService(repo, provider, &publisherStub{}, testConfig())

		_, err := svc.CreatePayment(context.Background(), uuid.New(), domain.CreatePaymentRequest{
			OfferID:       uuid.New().String(),
			PaymentMethod: alias,
			Amount:        15.50,
			Description:   "Offre",
		})
		if err != nil {
			t.Fatalf("%s: expected nil error, got %v", alias, err)
		}
		if provider.createReq.Method != want {
			t.Fatalf("%s: expected provider method %q, got %q", alias, want, provider.createReq.Method)
		}
	}
}

func TestCreatePayment_ProviderFailureLeavesNoRecord(t *testing.T) {
	repo := &createPaymentRepoStub{}
	provider := &providerStub{createErr: errors.New("connection refused")}
	producer := &publisherStub{}
	svc := NewPaymentService(repo, provider, producer, testConfig())

	_, err := svc.CreatePayment(context.Background(), uuid.New(), domain.CreatePaymentRequest{
		OfferID:       uuid.New().String(),
		PaymentMethod: "card",
		Amount:        29.99,
		Description:   "Offre Pro",
	})
	if !errors.Is(err, ErrPaymentCreationFailed) {
		t.Fatalf("expected ErrPaymentCreationFailed, got %v", err)
	}
	if repo.createCalled {
		t.Fatal("no local record may be written when the provider call fails")
	}
	if len(producer.published) != 0 {
		t.Fatalf("no events may be published on provider failure, got %v", producer.published)
	}
}

func TestGetPaymentStatus_ReadsThroughToProvider(t *testing.T) {
	provider := &providerStub{
		getResp: &mollieclient.PaymentResponse{ID: "tr_poll", Status: "paid"},
	}
	svc := NewPaymentService(&createPaymentRepoStub{}, provider, &publisherStub{}, testConfig())

	resp, err := svc.GetPaymentStatus(context.Background(), "tr_poll")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.Status != "paid" {
		t.Fatalf("expected provider status, got %q", resp.Status)
	}
	if provider.lastGetID != "tr_poll" {
		t.Fatalf("expected provider query for tr_poll, got %q", provider.lastGetID)
	}
}

func TestGetPaymentStatus_ProviderUnreachable(t *testing.T) {
	provider := &providerStub{getErr: errors.New("timeout")}
	svc := NewPaymentService(&createPaymentRepoStub{}, provider, &publisherStub{}, testConfig())

	_, err := svc.GetPaymentStatus(context.Background(), "tr_poll")
	if !errors.Is(err, ErrStatusUnavailable) {
		t.Fatalf("expected ErrStatusUnavailable, got %v", err)
	}
}
