/**
 * @description
 * This file contains the HTTP handler for the nearby-risk query endpoint.
 * It parses the geographic query parameters, applies the per-tenant rate
 * limit, and maps the service's sentinel errors onto HTTP statuses.
 */

package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/app"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/domain"
)

// nearbyResponse wraps the result list so the payload can grow (paging,
// truncation hints) without breaking clients.
type nearbyResponse struct {
	Count   int                       `json:"count"`
	Results []domain.RiskWithDistance `json:"results"`
}

// NearbyRisksHandler serves GET /risks/nearby?lat=&lng=&radius_km=&limit=.
func (h *Handlers) NearbyRisksHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantFromContext(w, r)
	if !ok {
		return
	}

	if h.limiter != nil {
		count, retryAfter, err := h.limiter.ConsumeRateLimit(r.Context(), "nearby", tenantID.String(), h.nearbyRateLimit, time.Minute)
		if err != nil {
			// Redis trouble must not take the endpoint down; log and continue.
			log.Printf("level=warn component=api endpoint=nearby_risks msg=\"rate limiter unavailable\" tenant_id=%s err=%v", tenantID, err)
		} else if h.nearbyRateLimit > 0 && count > h.nearbyRateLimit {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			h.writeError(w, http.StatusTooManyRequests, "Too many nearby queries, slow down")
			return
		}
	}

	query, err := parseNearbyQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.risks.FindNearby(r.Context(), tenantID, query)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidCoordinates),
			errors.Is(err, app.ErrRadiusTooLarge),
			errors.Is(err, app.ErrInvalidRequest):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("level=error component=api endpoint=nearby_risks tenant_id=%s err=%v", tenantID, err)
			h.writeError(w, http.StatusInternalServerError, "Unable to run nearby query")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, nearbyResponse{Count: len(results), Results: results})
}

func parseNearbyQuery(r *http.Request) (domain.NearbyQuery, error) {
	var query domain.NearbyQuery

	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		return query, errors.New("query parameter 'lat' is required and must be a number")
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		return query, errors.New("query parameter 'lng' is required and must be a number")
	}
	query.Latitude = lat
	query.Longitude = lng

	// Zero values on NearbyQuery mean "omitted"; an explicit zero in the URL
	// is out of range and must not silently pick up the default.
	if raw := r.URL.Query().Get("radius_km"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			return query, errors.New("query parameter 'radius_km' must be a positive number")
		}
		query.RadiusKm = radius
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return query, errors.New("query parameter 'limit' must be a positive integer")
		}
		query.Limit = limit
	}
	return query, nil
}
