package models

import (
	"time"

	"github.com/google/uuid"
	"taxifare.predict.org/internal/utils"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// PointRole identifies which end of the trip a point belongs to.
type PointRole string

const (
	RolePickup  PointRole = "pickup"
	RoleDropoff PointRole = "dropoff"
)

// TripRequest carries everything the fare prediction endpoint needs.
type TripRequest struct {
	PickupDatetime time.Time
	Pickup         Coordinates
	Dropoff        Coordinates
	PassengerCount int
}

// FarePrediction is the fare returned by the prediction endpoint,
// rounded to cents, plus the even split between passengers.
type FarePrediction struct {
	Fare             float64 `json:"fare"`
	FarePerPassenger float64 `json:"fare_per_passenger"`
}

// Quote is a completed prediction together with the trip it was made for.
// The cells are s2 tokens of both ends, coarse enough to group trips by
// area without keeping the addresses.
type Quote struct {
	ID             uuid.UUID        `json:"id"`
	PickupDatetime utils.PickupTime `json:"pickup_datetime"`
	PickupAddress  string           `json:"pickup_address,omitempty"`
	Pickup         Coordinates      `json:"pickup"`
	PickupCell     string           `json:"pickup_cell"`
	DropoffAddress string           `json:"dropoff_address,omitempty"`
	Dropoff        Coordinates      `json:"dropoff"`
	DropoffCell    string           `json:"dropoff_cell"`
	PassengerCount int              `json:"passenger_count"`
	FarePrediction
	DistanceKm float64   `json:"distance_km"`
	CreatedAt  time.Time `json:"created_at"`
}
