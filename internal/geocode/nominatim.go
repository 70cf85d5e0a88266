package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"taxifare.predict.org/internal/models"
)

// maxErrorBody caps how much of an error response is kept for messages.
const maxErrorBody = 1024

// NominatimGeocoder queries an OpenStreetMap Nominatim instance.
// Nominatim's usage policy requires an identifying User-Agent.
type NominatimGeocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// nominatimPlace is one element of the /search JSON array.
// Nominatim encodes lat and lon as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func NewNominatimGeocoder(client *http.Client, baseURL, userAgent string) *NominatimGeocoder {
	return &NominatimGeocoder{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
	}
}

func (n *NominatimGeocoder) Name() string { return models.GeocoderNominatim }

// Geocode returns the first /search match for address.
func (n *NominatimGeocoder) Geocode(ctx context.Context, address string) (Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Result{}, ErrEmptyAddress
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search", nil)
	if err != nil {
		return Result{}, fmt.Errorf("create nominatim request: %w", err)
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	req.URL.RawQuery = q.Encode()

	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Result{}, &StatusError{
			Provider: n.Name(),
			Code:     resp.StatusCode,
			Body:     strings.TrimSpace(string(b)),
		}
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return Result{}, fmt.Errorf("decode nominatim response: %w", err)
	}
	if len(places) == 0 {
		return Result{}, ErrNoResult
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return Result{}, fmt.Errorf("parse nominatim latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return Result{}, fmt.Errorf("parse nominatim longitude %q: %w", places[0].Lon, err)
	}

	return Result{
		Coordinates: models.Coordinates{Lat: lat, Lon: lon},
		DisplayName: places[0].DisplayName,
	}, nil
}
