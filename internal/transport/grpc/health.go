package grpc

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported alongside the overall "" entry.
const ServiceName = "dresscutur.Backend"

// HealthChecker mirrors database reachability into grpc.health.v1 statuses.
type HealthChecker struct {
	srv      *health.Server
	ping     func(ctx context.Context) error
	interval time.Duration
	timeout  time.Duration
	log      *slog.Logger

	last healthpb.HealthCheckResponse_ServingStatus
}

func NewHealthChecker(ping func(ctx context.Context) error, interval time.Duration, log *slog.Logger) *HealthChecker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	h := &HealthChecker{
		srv:      health.NewServer(),
		ping:     ping,
		interval: interval,
		timeout:  2 * time.Second,
		log:      log.With(slog.String("component", "grpc.health")),
		last:     healthpb.HealthCheckResponse_UNKNOWN,
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *HealthChecker) Server() healthpb.HealthServer {
	return h.srv
}

// Check pings once and publishes the result.
func (h *HealthChecker) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		if h.last != healthpb.HealthCheckResponse_NOT_SERVING {
			h.log.Warn("database unreachable", slog.Any("err", err))
		}
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	if h.last != healthpb.HealthCheckResponse_SERVING {
		h.log.Info("database reachable")
	}
	h.set(healthpb.HealthCheckResponse_SERVING)
}

// Run checks immediately and then on every interval until ctx is done.
func (h *HealthChecker) Run(ctx context.Context) {
	h.Check(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

// Shutdown flips every status to NOT_SERVING and ends open Watch streams.
func (h *HealthChecker) Shutdown() {
	h.srv.Shutdown()
}

func (h *HealthChecker) set(st healthpb.HealthCheckResponse_ServingStatus) {
	h.last = st
	h.srv.SetServingStatus("", st)
	h.srv.SetServingStatus(ServiceName, st)
}

// NewServer builds the ops gRPC server with the health service registered.
func NewServer(h *HealthChecker, requestTimeout time.Duration) *grpc.Server {
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(DefaultRequestTimeoutInterceptor(requestTimeout)),
	)
	healthpb.RegisterHealthServer(s, h.Server())
	return s
}

func DefaultRequestTimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return handler(ctx, req)
	}
}
