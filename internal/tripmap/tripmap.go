// Package tripmap describes the map shown under the trip form: a marker at
// each end of the trip and a dashed line between them.
package tripmap

import (
	"taxifare.predict.org/internal/geo"
	"taxifare.predict.org/internal/models"
)

type Marker struct {
	Role   models.PointRole   `json:"role"`
	Point  models.Coordinates `json:"point"`
	Color  string             `json:"color"`
	Icon   string             `json:"icon"`
	Prefix string             `json:"prefix"`
	Popup  string             `json:"popup"`
}

type Line struct {
	From      models.Coordinates `json:"from"`
	To        models.Coordinates `json:"to"`
	Color     string             `json:"color"`
	Weight    int                `json:"weight"`
	DashArray string             `json:"dash_array"`
	Opacity   float64            `json:"opacity"`
}

// MapView is everything the page script needs to draw the trip.
type MapView struct {
	Center      models.Coordinates `json:"center"`
	Zoom        int                `json:"zoom"`
	TileURL     string             `json:"tile_url"`
	Attribution string             `json:"attribution"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Markers     []Marker           `json:"markers"`
	Line        Line               `json:"line"`
}

// Build lays out the map for a trip. The view is centred on the midpoint of
// the two ends; tiles and size come from settings.
func Build(settings models.MapSettings, pickup, dropoff models.Coordinates) MapView {
	lat, lon := geo.Midpoint(pickup.Lat, pickup.Lon, dropoff.Lat, dropoff.Lon)

	return MapView{
		Center:      models.Coordinates{Lat: lat, Lon: lon},
		Zoom:        settings.Zoom,
		TileURL:     settings.TileURL,
		Attribution: settings.Attribution,
		Width:       settings.Width,
		Height:      settings.Height,
		Markers: []Marker{
			{Role: models.RolePickup, Point: pickup, Color: "red", Icon: "car", Prefix: "fa", Popup: "Pickup point"},
			{Role: models.RoleDropoff, Point: dropoff, Color: "blue", Icon: "car", Prefix: "fa", Popup: "Dropoff point"},
		},
		Line: Line{
			From:      pickup,
			To:        dropoff,
			Color:     "black",
			Weight:    3,
			DashArray: "5, 5",
			Opacity:   0.8,
		},
	}
}
