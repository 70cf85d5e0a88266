// Package predict talks to the fare prediction endpoint.
package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"taxifare.predict.org/internal/config"
	"taxifare.predict.org/internal/metrics"
	"taxifare.predict.org/internal/models"
	"taxifare.predict.org/internal/utils"
)

const maxErrorBody = 4096

// Client calls the prediction endpoint at BaseURL.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	MaxRetries int
}

// StatusError is a non-200 answer from the prediction endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Error %d : %s", e.Code, e.Body)
}

// RequestError is any failure other than a non-200 status: the request
// could not be sent, or its answer could not be understood.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("Error during request : %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

type predictResponse struct {
	Fare *float64 `json:"fare"`
}

// Predict asks the endpoint for the fare of trip.
func (c *Client) Predict(ctx context.Context, trip models.TripRequest) (models.FarePrediction, error) {
	if trip.PassengerCount < 1 {
		return models.FarePrediction{}, fmt.Errorf("passenger_count must be at least 1, got %d", trip.PassengerCount)
	}

	prediction, err := c.predict(ctx, trip)
	var se *StatusError
	switch {
	case err == nil:
		metrics.Predictions.WithLabelValues(metrics.OutcomeOK).Inc()
		metrics.PredictedFare.Observe(prediction.Fare)
	case errors.As(err, &se):
		metrics.Predictions.WithLabelValues(metrics.OutcomeHTTPError).Inc()
	default:
		metrics.Predictions.WithLabelValues(metrics.OutcomeRequestError).Inc()
	}
	return prediction, err
}

func (c *Client) predict(ctx context.Context, trip models.TripRequest) (models.FarePrediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
	if err != nil {
		return models.FarePrediction{}, &RequestError{Err: err}
	}
	req.URL.RawQuery = queryParams(trip).Encode()
	req.Header.Set("Accept", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := config.DoWithBackoff(ctx, client, req, c.MaxRetries)
	if err != nil {
		return models.FarePrediction{}, &RequestError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return models.FarePrediction{}, &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}

	var body predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.FarePrediction{}, &RequestError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if body.Fare == nil {
		return models.FarePrediction{}, &RequestError{Err: errors.New("response has no fare")}
	}

	fare := round2(*body.Fare)
	return models.FarePrediction{
		Fare:             fare,
		FarePerPassenger: round2(fare / float64(trip.PassengerCount)),
	}, nil
}

func queryParams(trip models.TripRequest) url.Values {
	q := url.Values{}
	q.Set("pickup_datetime", trip.PickupDatetime.Format(utils.PickupLayout))
	q.Set("pickup_longitude", formatCoordinate(trip.Pickup.Lon))
	q.Set("pickup_latitude", formatCoordinate(trip.Pickup.Lat))
	q.Set("dropoff_longitude", formatCoordinate(trip.Dropoff.Lon))
	q.Set("dropoff_latitude", formatCoordinate(trip.Dropoff.Lat))
	q.Set("passenger_count", strconv.Itoa(trip.PassengerCount))
	return q
}

func formatCoordinate(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// round2 rounds to cents from the exact binary value of f, ties to even,
// so 1.115 (stored just below) becomes 1.11 and 0.125 becomes 0.12.
func round2(f float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 2, 64), 64)
	return v
}

// FormatFare renders a fare the way the page shows it: the shortest
// decimal form, keeping ".0" on whole amounts ("12.0", "12.5", "7.33").
func FormatFare(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
