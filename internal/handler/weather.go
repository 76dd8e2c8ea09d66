package handler

import (
	"net/http"

	"homeboard/internal/weather"
)

type WeatherHandler struct {
	svc *weather.Service
}

func NewWeatherHandler(svc *weather.Service) *WeatherHandler {
	return &WeatherHandler{svc: svc}
}

// Today serves the cached forecast. An unconfigured or unreachable
// upstream is reported in the body, never as an HTTP error.
func (h *WeatherHandler) Today(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Today(r.Context()))
}
