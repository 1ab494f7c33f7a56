package metrics

import (
	"context"
	"net/http"

	"github.com/emf99/zkSMT/protocol"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service serves the registered metrics over HTTP.
type Service struct {
	*http.Server
	log protocol.Logger
}

// NewService returns a prometheus service listening on addr.
// It returns nil if addr is empty.
func NewService(addr string, log protocol.Logger) *Service {
	if addr == "" {
		return nil
	}
	return &Service{
		Server: &http.Server{
			Addr:    addr,
			Handler: promhttp.Handler(),
		},
		log: log,
	}
}

// Start runs the HTTP service; it blocks until the service is shut down.
func (s *Service) Start() {
	s.log.Info("metrics service is running", "endpoint", s.Addr)
	err := s.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		s.log.Warn("metrics service couldn't start", "endpoint", s.Addr, "error", err)
	}
}

// ShutDown stops the service.
func (s *Service) ShutDown() {
	s.log.Info("shutting down metrics service", "endpoint", s.Addr)
	if err := s.Shutdown(context.Background()); err != nil {
		s.log.Error("can't shut metrics service down", "error", err)
	}
}
