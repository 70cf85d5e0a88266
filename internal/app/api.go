package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"taxifare.predict.org/internal/geocode"
	"taxifare.predict.org/internal/models"
	"taxifare.predict.org/internal/predict"
	"taxifare.predict.org/internal/quote"
	"taxifare.predict.org/internal/utils"
)

// maxRequestBody caps POST /v1/predict bodies.
const maxRequestBody = 1 << 16

type geocodeResponse struct {
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name,omitempty"`
	Provider    string  `json:"provider"`
}

func (app *Application) geocodeHandler(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		app.errorResponse(w, http.StatusBadRequest, "address is required")
		return
	}

	result, err := app.Geocoder.Geocode(r.Context(), address)
	switch {
	case err == nil:
	case errors.Is(err, geocode.ErrNoResult):
		app.errorResponse(w, http.StatusNotFound, fmt.Sprintf("no result for %q", address))
		return
	case errors.Is(err, geocode.ErrProviderBackoff):
		app.errorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	default:
		app.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}

	app.writeJSON(w, http.StatusOK, geocodeResponse{
		Address:     address,
		Latitude:    result.Lat,
		Longitude:   result.Lon,
		DisplayName: result.DisplayName,
		Provider:    app.Geocoder.Name(),
	})
}

// queryPoint reads one end of the trip from the query string. Coordinates
// win over the address; with neither, the role's default address is used.
func queryPoint(q url.Values, role models.PointRole, def models.DefaultPoint) (quote.PointInput, error) {
	prefix := string(role)
	latStr, lonStr := q.Get(prefix+"_latitude"), q.Get(prefix+"_longitude")

	if latStr == "" && lonStr == "" {
		address := strings.TrimSpace(q.Get(prefix + "_address"))
		if address == "" {
			address = def.Address
		}
		return quote.PointInput{Address: address}, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return quote.PointInput{}, fmt.Errorf("%s_latitude must be a number", prefix)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return quote.PointInput{}, fmt.Errorf("%s_longitude must be a number", prefix)
	}
	return quote.PointInput{Coordinates: &models.Coordinates{Lat: lat, Lon: lon}}, nil
}

// mapHandler returns the trip as a GeoJSON FeatureCollection.
func (app *Application) mapHandler(w http.ResponseWriter, r *http.Request) {
	settings := app.ConfigService.Config.GetSettings()
	q := r.URL.Query()

	var req quote.QuoteRequest
	var err error
	if req.Pickup, err = queryPoint(q, models.RolePickup, settings.Defaults.Pickup); err != nil {
		app.badRequestResponse(w, err)
		return
	}
	if req.Dropoff, err = queryPoint(q, models.RoleDropoff, settings.Defaults.Dropoff); err != nil {
		app.badRequestResponse(w, err)
		return
	}

	preview, err := app.Quotes.Preview(r.Context(), req)
	if err != nil {
		app.quoteErrorResponse(w, err)
		return
	}
	app.writeJSON(w, http.StatusOK, preview.Map.GeoJSON())
}

type pointRequest struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (p pointRequest) input(role models.PointRole) (quote.PointInput, error) {
	in := quote.PointInput{Address: strings.TrimSpace(p.Address)}
	switch {
	case p.Latitude != nil && p.Longitude != nil:
		in.Coordinates = &models.Coordinates{Lat: *p.Latitude, Lon: *p.Longitude}
	case p.Latitude != nil || p.Longitude != nil:
		return in, fmt.Errorf("%s needs both latitude and longitude", role)
	case in.Address == "":
		return in, fmt.Errorf("%s needs an address or coordinates", role)
	}
	return in, nil
}

type predictRequest struct {
	PickupDatetime string       `json:"pickup_datetime"`
	Pickup         pointRequest `json:"pickup"`
	Dropoff        pointRequest `json:"dropoff"`
	PassengerCount *int         `json:"passenger_count"`
}

type quoteResponse struct {
	models.Quote
	PickupPoint  quote.ResolvedPoint `json:"pickup_point"`
	DropoffPoint quote.ResolvedPoint `json:"dropoff_point"`
}

func (app *Application) predictAPIHandler(w http.ResponseWriter, r *http.Request) {
	settings := app.ConfigService.Config.GetSettings()

	var body predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		app.badRequestResponse(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	at, err := utils.ParsePickupTime(body.PickupDatetime)
	if err != nil {
		app.badRequestResponse(w, err)
		return
	}
	req := quote.QuoteRequest{
		PickupDatetime: at,
		PassengerCount: settings.Passengers.Default,
	}
	if body.PassengerCount != nil {
		req.PassengerCount = *body.PassengerCount
	}
	if req.Pickup, err = body.Pickup.input(models.RolePickup); err != nil {
		app.badRequestResponse(w, err)
		return
	}
	if req.Dropoff, err = body.Dropoff.input(models.RoleDropoff); err != nil {
		app.badRequestResponse(w, err)
		return
	}

	res, err := app.Quotes.Quote(r.Context(), req)
	if err != nil {
		app.quoteErrorResponse(w, err)
		return
	}

	app.writeJSON(w, http.StatusOK, quoteResponse{
		Quote:        res.Quote,
		PickupPoint:  res.Preview.Pickup,
		DropoffPoint: res.Preview.Dropoff,
	})
}

// quoteErrorResponse maps quote and predict errors to statuses: 400 for a
// bad trip, 502 when the prediction endpoint failed.
func (app *Application) quoteErrorResponse(w http.ResponseWriter, err error) {
	var ve *quote.ValidationError
	var se *predict.StatusError
	var re *predict.RequestError
	switch {
	case errors.As(err, &ve):
		app.badRequestResponse(w, err)
	case errors.As(err, &se):
		app.writeJSON(w, http.StatusBadGateway, errorBody{
			Error:          se.Error(),
			UpstreamStatus: se.Code,
			UpstreamBody:   se.Body,
		})
	case errors.As(err, &re):
		app.errorResponse(w, http.StatusBadGateway, re.Error())
	default:
		app.serverErrorResponse(w, err)
	}
}

func (app *Application) quotesHandler(w http.ResponseWriter, r *http.Request) {
	limit := quote.DefaultRecentLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			app.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	quotes, err := app.Quotes.Recent(r.Context(), limit)
	if errors.Is(err, quote.ErrHistoryDisabled) {
		app.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		app.serverErrorResponse(w, err)
		return
	}

	app.writeJSON(w, http.StatusOK, map[string]interface{}{"quotes": quotes})
}
