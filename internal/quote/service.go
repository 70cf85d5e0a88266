// Package quote turns what the user typed into a priced trip: it resolves
// both ends to coordinates, checks them against the service area, asks the
// prediction endpoint for a fare and keeps a history of quotes.
package quote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"taxifare.predict.org/internal/config"
	"taxifare.predict.org/internal/geo"
	"taxifare.predict.org/internal/geocode"
	"taxifare.predict.org/internal/metrics"
	"taxifare.predict.org/internal/models"
	"taxifare.predict.org/internal/report"
	"taxifare.predict.org/internal/tripmap"
	"taxifare.predict.org/internal/utils"
)

// ErrHistoryDisabled is returned by Recent when no Store is configured.
var ErrHistoryDisabled = errors.New("quote history is disabled")

// Predictor prices a trip against the endpoint named in settings. Quote
// hands it the same settings snapshot the trip was validated with.
type Predictor interface {
	Predict(ctx context.Context, settings models.Settings, trip models.TripRequest) (models.FarePrediction, error)
}

// Where a resolved point came from.
const (
	SourceManual   = "manual"
	SourceGeocoder = "geocoder"
	SourceDefault  = "default"
)

// PointInput is one end of the trip as submitted. Coordinates, when set,
// take precedence over Address.
type PointInput struct {
	Address     string
	Coordinates *models.Coordinates
}

type ResolvedPoint struct {
	Role    models.PointRole `json:"role"`
	Address string           `json:"address"`
	models.Coordinates
	DisplayName string `json:"display_name,omitempty"`
	Source      string `json:"source"`
	// Fallback is set when the address could not be geocoded and the
	// role's default coordinates were used instead.
	Fallback bool `json:"fallback"`
}

type QuoteRequest struct {
	PickupDatetime time.Time
	Pickup         PointInput
	Dropoff        PointInput
	PassengerCount int
}

// Preview is a trip with both ends resolved but not yet priced.
type Preview struct {
	Pickup     ResolvedPoint
	Dropoff    ResolvedPoint
	DistanceKm float64
	Map        tripmap.MapView
}

type QuoteResult struct {
	Quote   models.Quote
	Preview Preview
}

// ValidationError means the request itself is unusable: a point outside the
// service area, bad coordinates or an out-of-range passenger count.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

type Service struct {
	Geocoder  geocode.Geocoder
	Predictor Predictor
	// Store is optional; without it quotes are not kept.
	Store  Store
	Config *config.Config
	Logger *slog.Logger

	now func() time.Time
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// ResolvePoint turns input into coordinates for role. Manual coordinates
// win; otherwise the address is geocoded, and when that fails the role's
// default point is used with Fallback set. The result must lie inside the
// service area.
func (s *Service) ResolvePoint(ctx context.Context, role models.PointRole, in PointInput) (ResolvedPoint, error) {
	return s.resolvePoint(ctx, s.Config.GetSettings(), role, in)
}

func (s *Service) resolvePoint(ctx context.Context, settings models.Settings, role models.PointRole, in PointInput) (ResolvedPoint, error) {
	point := ResolvedPoint{Role: role, Address: in.Address}

	if in.Coordinates != nil {
		if !geo.IsValidLatLon(in.Coordinates.Lat, in.Coordinates.Lon) {
			return ResolvedPoint{}, &ValidationError{
				Field:   string(role),
				Message: fmt.Sprintf("(%v, %v) is not a valid coordinate", in.Coordinates.Lat, in.Coordinates.Lon),
			}
		}
		point.Coordinates = *in.Coordinates
		point.Source = SourceManual
	} else {
		result, err := s.Geocoder.Geocode(ctx, in.Address)
		switch {
		case err == nil:
			point.Coordinates = result.Coordinates
			point.DisplayName = result.DisplayName
			point.Source = SourceGeocoder
		case ctx.Err() != nil:
			return ResolvedPoint{}, ctx.Err()
		default:
			def := settings.DefaultFor(role)
			point.Coordinates = def.Coordinates
			point.Source = SourceDefault
			point.Fallback = true
			metrics.GeocodeFallbacks.WithLabelValues(string(role)).Inc()
			s.Logger.Warn("geocoding fell back to default point",
				"role", role, "cell", geo.CellToken(def.Lat, def.Lon, geo.DefaultCellLevel), "error", err)
		}
	}

	if !settings.ServiceArea.Contains(point.Lat, point.Lon) {
		return ResolvedPoint{}, &ValidationError{
			Field:   string(role),
			Message: fmt.Sprintf("(%v, %v) is outside the service area", point.Lat, point.Lon),
		}
	}
	return point, nil
}

// Preview resolves both ends and lays out the map without pricing the trip.
func (s *Service) Preview(ctx context.Context, req QuoteRequest) (Preview, error) {
	return s.preview(ctx, s.Config.GetSettings(), req)
}

func (s *Service) preview(ctx context.Context, settings models.Settings, req QuoteRequest) (Preview, error) {
	pickup, err := s.resolvePoint(ctx, settings, models.RolePickup, req.Pickup)
	if err != nil {
		return Preview{}, err
	}
	dropoff, err := s.resolvePoint(ctx, settings, models.RoleDropoff, req.Dropoff)
	if err != nil {
		return Preview{}, err
	}

	meters := geo.HaversineDistance(pickup.Lat, pickup.Lon, dropoff.Lat, dropoff.Lon)
	return Preview{
		Pickup:     pickup,
		Dropoff:    dropoff,
		DistanceKm: math.Round(meters/10) / 100,
		Map:        tripmap.Build(settings.Map, pickup.Coordinates, dropoff.Coordinates),
	}, nil
}

// Quote prices the trip. When the prediction fails the returned result
// still carries the preview so the page can draw the map.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (QuoteResult, error) {
	settings := s.Config.GetSettings()

	if req.PassengerCount < settings.Passengers.Min || req.PassengerCount > settings.Passengers.Max {
		return QuoteResult{}, &ValidationError{
			Field:   "passenger_count",
			Message: fmt.Sprintf("%d is outside %d..%d", req.PassengerCount, settings.Passengers.Min, settings.Passengers.Max),
		}
	}
	if req.PickupDatetime.IsZero() {
		req.PickupDatetime = s.clock()
	}

	preview, err := s.preview(ctx, settings, req)
	if err != nil {
		return QuoteResult{}, err
	}

	pickupCell := geo.CellToken(preview.Pickup.Lat, preview.Pickup.Lon, geo.DefaultCellLevel)
	dropoffCell := geo.CellToken(preview.Dropoff.Lat, preview.Dropoff.Lon, geo.DefaultCellLevel)

	prediction, err := s.Predictor.Predict(ctx, settings, models.TripRequest{
		PickupDatetime: req.PickupDatetime,
		Pickup:         preview.Pickup.Coordinates,
		Dropoff:        preview.Dropoff.Coordinates,
		PassengerCount: req.PassengerCount,
	})
	if err != nil {
		s.Logger.Error("fare prediction failed",
			"pickup_cell", pickupCell, "dropoff_cell", dropoffCell, "error", err)
		report.ReportUpstreamError("predict", err, map[string]interface{}{
			"passenger_count": req.PassengerCount,
			"distance_km":     preview.DistanceKm,
		})
		return QuoteResult{Preview: preview}, err
	}

	metrics.TripDistance.Observe(preview.DistanceKm)

	q := models.Quote{
		ID:             uuid.New(),
		PickupDatetime: utils.PickupTime(req.PickupDatetime),
		PickupAddress:  preview.Pickup.Address,
		Pickup:         preview.Pickup.Coordinates,
		PickupCell:     pickupCell,
		DropoffAddress: preview.Dropoff.Address,
		Dropoff:        preview.Dropoff.Coordinates,
		DropoffCell:    dropoffCell,
		PassengerCount: req.PassengerCount,
		FarePrediction: prediction,
		DistanceKm:     preview.DistanceKm,
		CreatedAt:      s.clock().UTC(),
	}

	if s.Store != nil {
		if err := s.Store.Save(ctx, q); err != nil {
			metrics.QuotesStored.WithLabelValues(metrics.OutcomeError).Inc()
			s.Logger.Error("failed to store quote", "id", q.ID, "error", err)
			report.ReportError(err)
		} else {
			metrics.QuotesStored.WithLabelValues(metrics.OutcomeOK).Inc()
		}
	}

	return QuoteResult{Quote: q, Preview: preview}, nil
}

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

// Recent returns up to limit stored quotes, newest first. limit is clamped
// to 1..MaxRecentLimit; zero means DefaultRecentLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.Quote, error) {
	if s.Store == nil {
		return nil, ErrHistoryDisabled
	}
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	return s.Store.Recent(ctx, limit)
}
