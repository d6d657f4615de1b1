/**
 * @description
 * This file contains the HTTP handlers for the payment endpoints. Handlers are
 * responsible for parsing incoming requests, calling the appropriate methods
 * on the application services, and writing the HTTP response. They act as the
 * bridge between the web layer and the business logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain: For service logic, models, and sentinel errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/app"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/domain"
)

// Handlers holds the application services the HTTP layer dispatches to.
type Handlers struct {
	payments        *app.PaymentService
	risks           *app.RiskService
	limiter         *app.RedisQueryRateLimiter
	nearbyRateLimit int
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(payments *app.PaymentService, risks *app.RiskService, limiter *app.RedisQueryRateLimiter, nearbyRateLimit int) *Handlers {
	return &Handlers{
		payments:        payments,
		risks:           risks,
		limiter:         limiter,
		nearbyRateLimit: nearbyRateLimit,
	}
}

// tenantFromContext resolves the authenticated tenant id placed on the context
// by the auth middleware.
func (h *Handlers) tenantFromContext(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	tenantIDStr, ok := GetTenantID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get tenant ID from context")
		return uuid.Nil, false
	}
	tenantID, err := uuid.Parse(tenantIDStr)
	if err != nil {
		log.Printf("level=warn component=api outcome=reject reason=invalid_tenant_id tenant_id=%s", tenantIDStr)
		h.writeError(w, http.StatusBadRequest, "Invalid tenant ID format")
		return uuid.Nil, false
	}
	return tenantID, true
}

// CreatePaymentHandler handles requests to initiate a payment for an offer.
func (h *Handlers) CreatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantFromContext(w, r)
	if !ok {
		return
	}

	var req domain.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=create_payment outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.payments.CreatePayment(r.Context(), tenantID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=create_payment outcome=failed tenant_id=%s err=%v", tenantID, err)
		switch {
		case errors.Is(err, app.ErrInvalidPaymentRequest), errors.Is(err, app.ErrUnsupportedPaymentMethod):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, app.ErrPaymentCreationFailed):
			h.writeError(w, http.StatusBadGateway, "Payment could not be created with the provider")
		default:
			h.writeError(w, http.StatusInternalServerError, "Unable to create payment")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, resp)
}

// PaymentStatusHandler handles the polling endpoint. It reads through to the
// provider so the caller sees the freshest status.
func (h *Handlers) PaymentStatusHandler(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")

	resp, err := h.payments.GetPaymentStatus(r.Context(), paymentID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidRequest):
			h.writeError(w, http.StatusBadRequest, "A payment id is required")
		case errors.Is(err, app.ErrStatusUnavailable):
			h.writeError(w, http.StatusBadGateway, "Payment status is temporarily unavailable")
		default:
			log.Printf("level=error component=api endpoint=payment_status payment_id=%s err=%v", paymentID, err)
			h.writeError(w, http.StatusInternalServerError, "Unable to fetch payment status")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// writeJSON is a helper for writing JSON responses.
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("level=error component=api msg=\"failed to encode response\" err=%v", err)
	}
}

// writeError writes a JSON error body with the given status.
func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
