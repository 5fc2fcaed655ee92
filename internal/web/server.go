package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/unrolled/render"
)

type Server struct {
	server *http.Server
}

func NewServer(addr string, sensors SensorService) *Server {
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           getRouter(sensors, render.New()),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// ListenAndServe serves until ctx is done, then shuts the server down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Web server is listening", "addr", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
