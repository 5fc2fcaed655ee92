package web

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/unrolled/render"
)

func getRouter(sensors SensorService, render *render.Render) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", healthHandler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", statusHandler(sensors, render))
		r.Get("/sensors", listSensorsHandler(sensors, render))
		r.Get("/sensors/{uniqueID}", getSensorHandler(sensors, render))
	})

	return r
}
