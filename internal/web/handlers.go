package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/omarshaarawi/squashbot/internal/models"
	"github.com/unrolled/render"
)

type SensorService interface {
	Sensors() []models.SensorState
	Sensor(uniqueID string) (models.SensorState, bool)
	Status() models.ServiceStatus
}

type errorResponse struct {
	Error string `json:"error"`
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

func statusHandler(sensors SensorService, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, http.StatusOK, sensors.Status())
	}
}

func listSensorsHandler(sensors SensorService, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, http.StatusOK, sensors.Sensors())
	}
}

func getSensorHandler(sensors SensorService, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "uniqueID")
		state, ok := sensors.Sensor(id)
		if !ok {
			render.JSON(w, http.StatusNotFound, errorResponse{Error: "sensor not found: " + id})
			return
		}
		render.JSON(w, http.StatusOK, state)
	}
}
