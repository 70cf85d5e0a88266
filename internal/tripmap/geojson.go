package tripmap

import "taxifare.predict.org/internal/models"

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Geometry is a Point (Coordinates is [lon, lat]) or a LineString
// (Coordinates is [][lon, lat]).
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

func position(c models.Coordinates) []float64 {
	return []float64{c.Lon, c.Lat}
}

// GeoJSON returns the markers and the line as a FeatureCollection.
func (m MapView) GeoJSON() FeatureCollection {
	features := make([]Feature, 0, len(m.Markers)+1)
	for _, mk := range m.Markers {
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: Geometry{Type: "Point", Coordinates: position(mk.Point)},
			Properties: map[string]interface{}{
				"role":   string(mk.Role),
				"color":  mk.Color,
				"icon":   mk.Icon,
				"prefix": mk.Prefix,
				"popup":  mk.Popup,
			},
		})
	}

	features = append(features, Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "LineString",
			Coordinates: [][]float64{position(m.Line.From), position(m.Line.To)},
		},
		Properties: map[string]interface{}{
			"color":     m.Line.Color,
			"weight":    m.Line.Weight,
			"dashArray": m.Line.DashArray,
			"opacity":   m.Line.Opacity,
		},
	})

	return FeatureCollection{Type: "FeatureCollection", Features: features}
}
