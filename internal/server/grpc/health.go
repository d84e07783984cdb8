// Package grpcserver runs the gRPC side listener: standard health checking
// backed by database pings, plus reflection in development.
package grpcserver

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name clients may check besides "".
const ServiceName = "lovary.Diary"

const pingTimeout = 2 * time.Second

// Pinger is satisfied by the postgres pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health keeps the health status in line with database reachability.
type Health struct {
	hs       *health.Server
	db       Pinger
	interval time.Duration
	log      *zap.Logger

	last healthpb.HealthCheckResponse_ServingStatus
}

// NewHealth starts in NOT_SERVING until the first successful probe.
func NewHealth(db Pinger, interval time.Duration, log *zap.Logger) *Health {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Health{hs: hs, db: db, interval: interval, log: log, last: healthpb.HealthCheckResponse_NOT_SERVING}
}

// Server exposes the underlying health server.
func (h *Health) Server() healthpb.HealthServer { return h.hs }

// Probe pings the database once and publishes the result.
func (h *Health) Probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	err := h.db.Ping(ctx)
	if err != nil {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	if st != h.last {
		h.log.Info("health changed", zap.String("status", st.String()), zap.Error(err))
		h.last = st
	}
	h.hs.SetServingStatus("", st)
	h.hs.SetServingStatus(ServiceName, st)
}

// Run probes until ctx is done, then marks everything NOT_SERVING for good.
func (h *Health) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()
	h.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			h.hs.Shutdown()
			return
		case <-t.C:
			h.Probe(ctx)
		}
	}
}

// NewServer builds the gRPC server with logging and recovery, serving health.
func NewServer(h *Health, dev bool, log *zap.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts,
		grpc.ChainUnaryInterceptor(RecoverUnary(log), LoggingUnary(log)),
		grpc.ChainStreamInterceptor(RecoverStream(log), LoggingStream(log)),
	)
	s := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s, h.Server())
	if dev {
		reflection.Register(s)
	}
	return s
}
