/**
 * @description
 * This file implements the nearby-risk query: given a point and a radius,
 * return the tenant's risks within the radius, annotated with their
 * great-circle distance and sorted ascending by distance.
 *
 * The store supplies tenant-scoped candidates from a coarse bounding box;
 * exact filtering, ordering, and truncation happen here so that equal inputs
 * always go through one float64 code path and yield equal ordering.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/config"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/domain"
	"github.com/PaulDecu/SaasGeoSentinel-sub001/internal/store"
)

// earthRadiusKm is the IUGG mean earth radius used by the haversine formula.
const earthRadiusKm = 6371.0088

// RiskService serves distance-bounded risk queries. Safe for concurrent use.
type RiskService struct {
	repo          store.Repository
	maxRadiusKm   float64
	defaultRadius float64
	maxResults    int
	defaultLimit  int
}

// NewRiskService creates the nearby-risk query service. The ceilings and
// defaults come from configuration; they are policy values, not invariants of
// the algorithm.
func NewRiskService(repo store.Repository, cfg config.Config) *RiskService {
	return &RiskService{
		repo:          repo,
		maxRadiusKm:   cfg.NearbyMaxRadiusKm,
		defaultRadius: cfg.NearbyDefaultRadius,
		maxResults:    cfg.NearbyMaxResults,
		defaultLimit:  cfg.NearbyDefaultResults,
	}
}

// FindNearby returns the tenant's risks within query.RadiusKm of the query
// point, closest first, ties broken by risk id. An empty result is a valid,
// non-error outcome.
func (s *RiskService) FindNearby(ctx context.Context, tenantID uuid.UUID, query domain.NearbyQuery) ([]domain.RiskWithDistance, error) {
	if query.Latitude < -90 || query.Latitude > 90 || query.Longitude < -180 || query.Longitude > 180 {
		return nil, fmt.Errorf("%w: lat=%.6f lng=%.6f", ErrInvalidCoordinates, query.Latitude, query.Longitude)
	}

	radius := query.RadiusKm
	if radius == 0 {
		radius = s.defaultRadius
	}
	if radius > s.maxRadiusKm {
		return nil, fmt.Errorf("%w: %.1f km requested, ceiling is %.1f km", ErrRadiusTooLarge, radius, s.maxRadiusKm)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive", ErrInvalidRequest)
	}

	limit := query.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}
	if limit < 1 || limit > s.maxResults {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidRequest, s.maxResults)
	}

	minLat, maxLat, minLng, maxLng := boundingBox(query.Latitude, query.Longitude, radius)
	candidates, err := s.repo.FindRisksInBoundingBox(ctx, tenantID, minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, err
	}

	results := make([]domain.RiskWithDistance, 0, len(candidates))
	for _, risk := range candidates {
		d := haversineKm(query.Latitude, query.Longitude, risk.Latitude, risk.Longitude)
		if d <= radius {
			results = append(results, domain.RiskWithDistance{Risk: risk, DistanceKm: d})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceKm != results[j].DistanceKm {
			return results[i].DistanceKm < results[j].DistanceKm
		}
		return results[i].Risk.ID.String() < results[j].Risk.ID.String()
	})
	if len(results) > limit {
		results = results[:limit]
	}

	nearbyQueriesTotal.Inc()
	log.Printf("level=info component=risk_service op=find_nearby tenant_id=%s radius_km=%.1f candidates=%d returned=%d",
		tenantID, radius, len(candidates), len(results))
	return results, nil
}

// haversineKm computes the great-circle distance between two points on a
// spherical earth.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180
	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lng2 - lng1) * degToRad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// boundingBox returns a coarse lat/lng box enclosing the radius around the
// point, used as an index-friendly SQL prefilter. Near the poles the box
// degenerates to the full longitude range; crossing the antimeridian is
// reported by minLng > maxLng.
func boundingBox(lat, lng, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	const degToRad = math.Pi / 180
	latDelta := radiusKm / earthRadiusKm / degToRad

	minLat = math.Max(lat-latDelta, -90)
	maxLat = math.Min(lat+latDelta, 90)

	cosLat := math.Cos(lat * degToRad)
	if cosLat < 1e-9 {
		return minLat, maxLat, -180, 180
	}
	lngDelta := latDelta / cosLat
	if lngDelta >= 180 {
		return minLat, maxLat, -180, 180
	}

	minLng = lng - lngDelta
	maxLng = lng + lngDelta
	if minLng < -180 {
		minLng += 360
	}
	if maxLng > 180 {
		maxLng -= 360
	}
	return minLat, maxLat, minLng, maxLng
}
