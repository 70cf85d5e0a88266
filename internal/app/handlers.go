package app

import (
	"encoding/json"
	"net/http"

	"taxifare.predict.org/internal/report"
)

// HealthStatus is the body of /v1/healthcheck.
//
// Ready is true when the current settings validate, which is what a load
// balancer needs to know before sending traffic. PredictURL and Geocoder
// show which upstreams this replica is talking to after a config refresh.
type HealthStatus struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	PredictURL  string `json:"predict_url"`
	Geocoder    string `json:"geocoder"`
	Ready       bool   `json:"ready"`
}

// healthcheckHandler responds with HTTP 500 when the settings are not usable.
func (app *Application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	settings := app.ConfigService.Config.GetSettings()
	ready := settings.Validate() == nil

	status := HealthStatus{
		Status:      "available",
		Environment: app.ConfigService.Config.Env,
		Version:     app.Version,
		PredictURL:  settings.PredictURL,
		Geocoder:    app.Geocoder.Name(),
		Ready:       ready,
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusInternalServerError
	}
	app.writeJSON(w, code, status)
}

func (app *Application) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		app.Logger.Error("failed to encode response", "error", err)
	}
}

type errorBody struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	UpstreamBody   string `json:"upstream_body,omitempty"`
}

func (app *Application) errorResponse(w http.ResponseWriter, status int, message string) {
	app.writeJSON(w, status, errorBody{Error: message})
}

func (app *Application) badRequestResponse(w http.ResponseWriter, err error) {
	app.errorResponse(w, http.StatusBadRequest, err.Error())
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, err error) {
	app.Logger.Error("internal error", "error", err)
	report.ReportError(err)
	app.errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}
