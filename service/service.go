// Package service hosts the sidecar HTTP endpoints (healthz, metrics) that
// run alongside the acceptance tester.
package service

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/ethereum/go-ethereum/log"

	"github.com/mcp-base/mcp-acceptor/metrics"
)

const (
	HealthzHost = "0.0.0.0"
	HealthzPort = "8080"

	MetricsHost = "0.0.0.0"
	MetricsPort = "7300"
)

type Service struct {
	Healthz *HealthzServer
	Metrics *MetricsServer
}

// New creates the sidecar service. The version is reported by /healthz.
func New(version string) *Service {
	return &Service{
		Healthz: NewHealthzServer(version),
		Metrics: &MetricsServer{},
	}
}

// SetRunningCheck wires the acceptance tester's run state into /healthz.
// May be called after Start, once the acceptor exists.
func (s *Service) SetRunningCheck(running func() bool) {
	s.Healthz.SetRunningCheck(running)
}

func (s *Service) Start(ctx context.Context) {
	log.Info("mcp-acceptor sidecar starting")

	go func() {
		addr := net.JoinHostPort(HealthzHost, HealthzPort)
		log.Info("starting healthz server", "service", "mcp-acceptor", "addr", addr)
		if err := s.Healthz.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("error starting healthz server", "err", err)
			metrics.RecordErrorDetails("error starting healthz server", err)
		}
	}()

	go func() {
		addr := net.JoinHostPort(MetricsHost, MetricsPort)
		log.Info("starting metrics server", "service", "mcp-acceptor", "addr", addr)
		if err := s.Metrics.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("error starting metrics server", "err", err)
			metrics.RecordErrorDetails("error starting metrics server", err)
		}
	}()

	log.Info("mcp-acceptor sidecar started")
}

func (s *Service) Shutdown() {
	log.Info("mcp-acceptor sidecar shutting down")

	_ = s.Healthz.Shutdown()
	log.Info("healthz stopped")

	_ = s.Metrics.Shutdown()
	log.Info("metrics stopped")

	log.Info("mcp-acceptor sidecar stopped")
}
