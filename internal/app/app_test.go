package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"taxifare.predict.org/internal/models"
	"taxifare.predict.org/internal/quote"
)

func TestUpdateSettingsMovesPredictEndpoint(t *testing.T) {
	first, firstQueries := predictServer(t, http.StatusOK, `{"fare": 10}`)
	second, secondQueries := predictServer(t, http.StatusOK, `{"fare": 20}`)

	app := newTestApplication(t, first.URL, nil)
	req := quote.QuoteRequest{
		PickupDatetime: time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC),
		Pickup:         quote.PointInput{Coordinates: &models.Coordinates{Lat: 40.65, Lon: -73.95}},
		Dropoff:        quote.PointInput{Coordinates: &models.Coordinates{Lat: 40.75, Lon: -73.98}},
		PassengerCount: 1,
	}

	res, err := app.Quotes.Quote(context.Background(), req)
	if err != nil {
		t.Fatalf("first quote failed: %v", err)
	}
	if res.Quote.Fare != 10 {
		t.Errorf("expected fare 10 from the first endpoint, got %v", res.Quote.Fare)
	}
	<-firstQueries

	settings := app.ConfigService.Config.GetSettings()
	settings.PredictURL = second.URL
	app.ConfigService.Config.UpdateSettings(settings)

	res, err = app.Quotes.Quote(context.Background(), req)
	if err != nil {
		t.Fatalf("second quote failed: %v", err)
	}
	if res.Quote.Fare != 20 {
		t.Errorf("expected fare 20 after the settings update, got %v", res.Quote.Fare)
	}
	<-secondQueries

	if len(firstQueries) != 0 {
		t.Error("first endpoint must not be called after the update")
	}
}
