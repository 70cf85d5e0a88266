package tripmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"taxifare.predict.org/internal/models"
)

var testSettings = models.MapSettings{
	TileURL:     "https://tiles.stadiamaps.com/tiles/alidade_smooth/{z}/{x}/{y}{r}.png",
	Attribution: "&copy; Stadia Maps",
	Zoom:        10,
	Width:       700,
	Height:      500,
}

func TestBuild(t *testing.T) {
	pickup := models.Coordinates{Lat: 40.6, Lon: -74.1}
	dropoff := models.Coordinates{Lat: 40.7, Lon: -74.0}

	view := Build(testSettings, pickup, dropoff)

	assert.InDelta(t, 40.65, view.Center.Lat, 1e-9)
	assert.InDelta(t, -74.05, view.Center.Lon, 1e-9)
	assert.Equal(t, 10, view.Zoom)
	assert.Equal(t, 700, view.Width)
	assert.Equal(t, 500, view.Height)
	assert.Equal(t, testSettings.TileURL, view.TileURL)

	require.Len(t, view.Markers, 2)
	assert.Equal(t, Marker{Role: models.RolePickup, Point: pickup, Color: "red", Icon: "car", Prefix: "fa", Popup: "Pickup point"}, view.Markers[0])
	assert.Equal(t, Marker{Role: models.RoleDropoff, Point: dropoff, Color: "blue", Icon: "car", Prefix: "fa", Popup: "Dropoff point"}, view.Markers[1])

	assert.Equal(t, Line{From: pickup, To: dropoff, Color: "black", Weight: 3, DashArray: "5, 5", Opacity: 0.8}, view.Line)
}

func TestGeoJSON(t *testing.T) {
	view := Build(testSettings,
		models.Coordinates{Lat: 40.6711927, Lon: -73.9636398},
		models.Coordinates{Lat: 40.7527262, Lon: -73.9772294})

	data, err := json.Marshal(view.GeoJSON())
	require.NoError(t, err)

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "FeatureCollection", decoded.Type)
	require.Len(t, decoded.Features, 3)

	assert.Equal(t, "Point", decoded.Features[0].Geometry.Type)
	assert.JSONEq(t, `[-73.9636398, 40.6711927]`, string(decoded.Features[0].Geometry.Coordinates))
	assert.Equal(t, "red", decoded.Features[0].Properties["color"])
	assert.Equal(t, "Pickup point", decoded.Features[0].Properties["popup"])

	assert.Equal(t, "blue", decoded.Features[1].Properties["color"])

	line := decoded.Features[2]
	assert.Equal(t, "LineString", line.Geometry.Type)
	assert.JSONEq(t, `[[-73.9636398, 40.6711927], [-73.9772294, 40.7527262]]`, string(line.Geometry.Coordinates))
	assert.Equal(t, "5, 5", line.Properties["dashArray"])
	assert.Equal(t, float64(3), line.Properties["weight"])
}
