package mollieclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreatePayment_SendsAuthAndDecodesResponse(t *testing.T) {
	var gotAuth string
	var gotPayload CreatePaymentRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/v2/payments" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{
			"id": "tr_WDqYK6vllg",
			"status": "open",
			"amount": {"currency": "EUR", "value": "29.99"},
			"_links": {"checkout": {"href": "https://pay.example.com/checkout/tr_WDqYK6vllg"}}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test_key_123")
	resp, err := client.CreatePayment(context.Background(), CreatePaymentRequest{
		Amount:      Amount{Currency: "EUR", Value: "29.99"},
		Description: "Offre Pro - mensuel",
		Method:      "creditcard",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gotAuth != "Bearer test_key_123" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotPayload.Amount.Value != "29.99" {
		t.Fatalf("expected amount value to round-trip, got %q", gotPayload.Amount.Value)
	}
	if resp.ID != "tr_WDqYK6vllg" {
		t.Fatalf("unexpected payment id %q", resp.ID)
	}
	if resp.Status != "open" {
		t.Fatalf("unexpected status %q", resp.Status)
	}
	if resp.CheckoutURL() != "https://pay.example.com/checkout/tr_WDqYK6vllg" {
		t.Fatalf("unexpected checkout url %q", resp.CheckoutURL())
	}
}

func TestGetPayment_FetchesByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/v2/payments/tr_abc123" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "tr_abc123", "status": "paid", "amount": {"currency": "EUR", "value": "15.50"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test_key_123")
	resp, err := client.GetPayment(context.Background(), "tr_abc123")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.Status != "paid" {
		t.Fatalf("expected paid, got %q", resp.Status)
	}
	if resp.CheckoutURL() != "" {
		t.Fatalf("expected no checkout link on a settled payment, got %q", resp.CheckoutURL())
	}
}

func TestClient_DecodesProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"status": 422, "title": "Unprocessable Entity", "detail": "The amount is higher than the maximum"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test_key_123")
	_, err := client.CreatePayment(context.Background(), CreatePaymentRequest{})
	if err == nil {
		t.Fatal("expected an error for a 422 response")
	}
	var provErr *ErrorResponse
	if !errors.As(err, &provErr) {
		t.Fatalf("expected an ErrorResponse, got %T: %v", err, err)
	}
	if provErr.Status != 422 || provErr.Title != "Unprocessable Entity" {
		t.Fatalf("error body not decoded: %+v", provErr)
	}
}

func TestClient_UnparsableErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test_key_123")
	_, err := client.GetPayment(context.Background(), "tr_abc123")
	if err == nil {
		t.Fatal("expected an error for an unparsable 502 body")
	}
	var provErr *ErrorResponse
	if errors.As(err, &provErr) {
		t.Fatalf("expected a plain error, got ErrorResponse %+v", provErr)
	}
}
