// Package grpc exposes the standard gRPC health service, driven by data store pings.
package grpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/abgdnv/catalog/pkg/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported alongside the overall "" status.
const ServiceName = "catalog.v1.ProductCatalog"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReporter periodically pings the data store and publishes the result through grpc.health.v1.
type HealthReporter struct {
	server   *health.Server
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewHealthReporter creates a reporter. The initial status is NOT_SERVING until the first check.
func NewHealthReporter(pinger Pinger, cfg config.HealthConfig, logger *slog.Logger) *HealthReporter {
	srv := health.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	srv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthReporter{
		server:   srv,
		pinger:   pinger,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   logger.With("component", "grpc-health"),
	}
}

// Register adds the health service to a gRPC server.
func (h *HealthReporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Server returns the underlying health server.
func (h *HealthReporter) Server() healthpb.HealthServer {
	return h.server
}

// Check pings the store once and updates the serving status.
func (h *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.pinger.Ping(pingCtx); err != nil {
		h.logger.WarnContext(ctx, "Data store ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Run checks immediately and then on every interval until ctx is done.
// On return every status is set to NOT_SERVING.
func (h *HealthReporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			h.logger.Info("Health reporter stopped")
			return nil
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
