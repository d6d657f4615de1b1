/**
 * @description
 * This file contains the HTTP handler for incoming payment webhooks from the
 * provider. The boundary is deliberately forgiving: every delivery is
 * acknowledged with 200 regardless of outcome, because a non-2xx answer makes
 * the provider re-deliver and a malformed payload would re-deliver forever.
 * Failures stay observable through server-side logs and the prometheus
 * counters in the app package.
 *
 * The payload itself is untrusted. Only the payment id is extracted; the
 * service re-queries the provider for the authoritative status.
 */

package api

import (
	"encoding/json"
	"log"
	"mime"
	"net/http"
	"strings"
)

// webhookPayload is the JSON form of the provider notification. The provider
// normally posts form-encoded bodies; JSON is accepted for tooling and tests.
type webhookPayload struct {
	ID string `json:"id"`
}

// PaymentWebhookHandler reconciles a payment after a provider notification.
// It always answers 200.
func (h *Handlers) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	id := extractWebhookPaymentID(r)
	if id == "" {
		// Acknowledge without processing: an error here would only trigger
		// provider retries of the same malformed payload.
		log.Printf("level=warn component=api endpoint=payment_webhook outcome=ignored reason=missing_payment_id remote=%s", r.RemoteAddr)
		h.acknowledge(w)
		return
	}

	if err := h.payments.HandleWebhook(r.Context(), id); err != nil {
		log.Printf("level=error component=api endpoint=payment_webhook outcome=failed provider_payment_id=%s err=%v", id, err)
	}
	h.acknowledge(w)
}

func (h *Handlers) acknowledge(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func extractWebhookPaymentID(r *http.Request) string {
	contentType := r.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "application/json" {
		var payload webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			log.Printf("level=warn component=api endpoint=payment_webhook msg=\"undecodable json payload\" err=%v", err)
			return ""
		}
		return strings.TrimSpace(payload.ID)
	}

	if err := r.ParseForm(); err != nil {
		log.Printf("level=warn component=api endpoint=payment_webhook msg=\"unparsable form payload\" err=%v", err)
		return ""
	}
	return strings.TrimSpace(r.PostFormValue("id"))
}
