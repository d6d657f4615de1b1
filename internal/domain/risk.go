/**
 * @description
 * This file defines the domain models for geolocated risks and the nearby-risk
 * query. A Risk is a hazard pinned to GPS coordinates, visible to the field
 * workers of the tenant that recorded it.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Risk is a geolocated hazard record as consumed by the nearby query.
// Tenant scoping is applied by the store; this model carries the tenant id
// only for traceability.
type Risk struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Level     string    `json:"level"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// RiskWithDistance pairs a risk with its computed great-circle distance from
// the query point. Distance is derived per query, never stored.
type RiskWithDistance struct {
	Risk       Risk    `json:"risk"`
	DistanceKm float64 `json:"distance_km"`
}

// NearbyQuery carries the parsed parameters of a nearby-risk request.
// Zero RadiusKm / Limit mean "not provided" and get the configured defaults.
type NearbyQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Limit     int
}
