package grpc

import (
	"context"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func (s *GRPCServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := s.check(ctx, healthpb.HealthCheckResponse_UNKNOWN)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			last = s.check(ctx, last)
		}
	}
}

// check pings the database and publishes the result. It logs only changes.
func (s *GRPCServer) check(ctx context.Context, last healthpb.HealthCheckResponse_ServingStatus) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, s.interval/2+time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	err := s.pinger.PingContext(pingCtx)
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	if ctx.Err() != nil {
		return last
	}

	if status != last {
		if err != nil {
			s.logger.Warn(ctx, "database unavailable", "error", err)
		} else {
			s.logger.Info(ctx, "database available")
		}
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}
