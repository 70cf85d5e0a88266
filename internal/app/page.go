package app

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taxifare.predict.org/internal/middleware"
	"taxifare.predict.org/internal/models"
	"taxifare.predict.org/internal/predict"
	"taxifare.predict.org/internal/quote"
	"taxifare.predict.org/internal/tripmap"
	"taxifare.predict.org/internal/utils"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pointField struct {
	Role      models.PointRole
	Legend    string
	Example   string
	Address   string
	Latitude  string
	Longitude string
	Fallback  bool
	MinLat    float64
	MaxLat    float64
	MinLon    float64
	MaxLon    float64
}

type pageData struct {
	PickupDatetime string
	Points         []pointField
	PassengerCount int
	PassengerMin   int
	PassengerMax   int
	Prediction     string
	Error          string
	Map            tripmap.MapView
}

func formatCoordinate(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// newPageData fills the form from the resolved preview when there is one,
// and from the submitted inputs otherwise.
func newPageData(settings models.Settings, at time.Time, passengers int, req quote.QuoteRequest, preview quote.Preview) pageData {
	area := settings.ServiceArea
	field := func(role models.PointRole, legend string, in quote.PointInput, resolved quote.ResolvedPoint) pointField {
		f := pointField{
			Role:    role,
			Legend:  legend,
			Example: settings.DefaultFor(role).Address,
			Address: in.Address,
			MinLat:  area.MinLat,
			MaxLat:  area.MaxLat,
			MinLon:  area.MinLon,
			MaxLon:  area.MaxLon,
		}
		switch {
		case resolved.Role != "":
			f.Latitude = formatCoordinate(resolved.Lat)
			f.Longitude = formatCoordinate(resolved.Lon)
			f.Fallback = resolved.Fallback
		case in.Coordinates != nil:
			f.Latitude = formatCoordinate(in.Coordinates.Lat)
			f.Longitude = formatCoordinate(in.Coordinates.Lon)
		}
		return f
	}

	mapView := preview.Map
	if len(mapView.Markers) == 0 {
		pickup := settings.DefaultFor(models.RolePickup).Coordinates
		dropoff := settings.DefaultFor(models.RoleDropoff).Coordinates
		mapView = tripmap.Build(settings.Map, pickup, dropoff)
	}

	return pageData{
		PickupDatetime: at.Format(utils.FormLayout),
		Points: []pointField{
			field(models.RolePickup, "Choose your pickup address or coordinates (red car dot)", req.Pickup, preview.Pickup),
			field(models.RoleDropoff, "Choose your dropoff address or coordinates (blue car dot)", req.Dropoff, preview.Dropoff),
		},
		PassengerCount: passengers,
		PassengerMin:   settings.Passengers.Min,
		PassengerMax:   settings.Passengers.Max,
		Map:            mapView,
	}
}

func (app *Application) renderPage(w http.ResponseWriter, status int, data pageData) {
	var buf strings.Builder
	if err := app.page.Execute(&buf, data); err != nil {
		app.serverErrorResponse(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", middleware.PageContentSecurityPolicy(data.Map.TileURL))
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

// pageHandler renders the form with the default addresses, the current
// time and the default passenger count.
func (app *Application) pageHandler(w http.ResponseWriter, r *http.Request) {
	settings := app.ConfigService.Config.GetSettings()
	now := time.Now()

	req := quote.QuoteRequest{
		Pickup:  quote.PointInput{Address: settings.Defaults.Pickup.Address},
		Dropoff: quote.PointInput{Address: settings.Defaults.Dropoff.Address},
	}

	preview, err := app.Quotes.Preview(r.Context(), req)
	data := newPageData(settings, now, settings.Passengers.Default, req, preview)
	if err != nil {
		app.Logger.Warn("failed to preview default trip", "error", err)
		data.Error = err.Error()
	}
	app.renderPage(w, http.StatusOK, data)
}

// formPoint reads one end of the trip from the form. Submitted coordinates
// only count while the address is the one they were resolved from; editing
// the address discards them so it gets geocoded again.
func formPoint(r *http.Request, role models.PointRole) (quote.PointInput, error) {
	prefix := string(role)
	in := quote.PointInput{Address: strings.TrimSpace(r.PostFormValue(prefix + "_address"))}

	if in.Address != strings.TrimSpace(r.PostFormValue(prefix+"_previous_address")) {
		return in, nil
	}

	latStr := strings.TrimSpace(r.PostFormValue(prefix + "_latitude"))
	lonStr := strings.TrimSpace(r.PostFormValue(prefix + "_longitude"))
	if latStr == "" && lonStr == "" {
		return in, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return in, &quote.ValidationError{Field: prefix + "_latitude", Message: fmt.Sprintf("%q is not a number", latStr)}
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return in, &quote.ValidationError{Field: prefix + "_longitude", Message: fmt.Sprintf("%q is not a number", lonStr)}
	}
	in.Coordinates = &models.Coordinates{Lat: lat, Lon: lon}
	return in, nil
}

// parseForm reads every field before giving up, so a re-rendered form keeps
// what the user typed. The first problem found is returned.
func parseForm(r *http.Request, settings models.Settings) (quote.QuoteRequest, error) {
	var req quote.QuoteRequest
	var errs []error

	at, err := utils.ParsePickupTime(r.PostFormValue("pickup_datetime"))
	if err != nil {
		errs = append(errs, &quote.ValidationError{Field: "pickup_datetime", Message: err.Error()})
	}
	req.PickupDatetime = at

	req.PassengerCount = settings.Passengers.Default
	if s := strings.TrimSpace(r.PostFormValue("passenger_count")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, &quote.ValidationError{Field: "passenger_count", Message: fmt.Sprintf("%q is not a whole number", s)})
		} else {
			req.PassengerCount = n
		}
	}

	if req.Pickup, err = formPoint(r, models.RolePickup); err != nil {
		errs = append(errs, err)
	}
	if req.Dropoff, err = formPoint(r, models.RoleDropoff); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return req, errs[0]
	}
	return req, nil
}

// keepRawInput puts back the submitted values that did not parse: the
// pickup time, and the coordinates of any point whose address is unchanged.
func keepRawInput(data *pageData, r *http.Request) {
	if s := strings.TrimSpace(r.PostFormValue("pickup_datetime")); s != "" {
		if _, err := utils.ParsePickupTime(s); err != nil {
			data.PickupDatetime = s
		}
	}
	for i := range data.Points {
		p := &data.Points[i]
		prefix := string(p.Role)
		if p.Address != strings.TrimSpace(r.PostFormValue(prefix+"_previous_address")) {
			continue
		}
		if p.Latitude == "" {
			p.Latitude = strings.TrimSpace(r.PostFormValue(prefix + "_latitude"))
		}
		if p.Longitude == "" {
			p.Longitude = strings.TrimSpace(r.PostFormValue(prefix + "_longitude"))
		}
	}
}

// predictFormHandler prices the submitted trip and re-renders the page
// with the map and either the prediction or the error.
func (app *Application) predictFormHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.badRequestResponse(w, err)
		return
	}
	settings := app.ConfigService.Config.GetSettings()

	req, err := parseForm(r, settings)
	if err != nil {
		data := newPageData(settings, formTime(req.PickupDatetime), req.PassengerCount, req, quote.Preview{})
		keepRawInput(&data, r)
		data.Error = err.Error()
		app.renderPage(w, http.StatusUnprocessableEntity, data)
		return
	}

	res, err := app.Quotes.Quote(r.Context(), req)
	data := newPageData(settings, formTime(req.PickupDatetime), req.PassengerCount, req, res.Preview)
	if err != nil {
		data.Error = err.Error()
		app.renderPage(w, pageStatus(err), data)
		return
	}

	data.Prediction = fmt.Sprintf("Prediction : %s$, or %s$ for each passenger",
		predict.FormatFare(res.Quote.Fare), predict.FormatFare(res.Quote.FarePerPassenger))
	app.renderPage(w, http.StatusOK, data)
}

func formTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func pageStatus(err error) int {
	var ve *quote.ValidationError
	var se *predict.StatusError
	var re *predict.RequestError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.As(err, &se), errors.As(err, &re):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
