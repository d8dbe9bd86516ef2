package grpc

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ReadyCheck is a named dependency probe.
type ReadyCheck struct {
	Name  string
	Check func(context.Context) error
}

// probe runs every check with its own short timeout and returns the failures.
func probe(ctx context.Context, checks []ReadyCheck) []string {
	var failures []string
	for _, check := range checks {
		if check.Check == nil {
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := check.Check(cctx)
		cancel()
		if err != nil {
			name := check.Name
			if name == "" {
				name = "dependency"
			}
			failures = append(failures, name+": "+err.Error())
		}
	}
	return failures
}

// WatchReadiness keeps the health status of ServiceName and of the server as
// a whole in line with checks until ctx is done.
func WatchReadiness(ctx context.Context, hs *health.Server, interval time.Duration, log *slog.Logger, checks ...ReadyCheck) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "grpc.health"))

	last := healthpb.HealthCheckResponse_UNKNOWN
	update := func() {
		next := healthpb.HealthCheckResponse_SERVING
		if failures := probe(ctx, checks); len(failures) > 0 {
			next = healthpb.HealthCheckResponse_NOT_SERVING
			if last != next {
				log.Warn("dependency not ready", slog.String("failures", strings.Join(failures, "; ")))
			}
		} else if last == healthpb.HealthCheckResponse_NOT_SERVING {
			log.Info("dependencies ready again")
		}
		hs.SetServingStatus("", next)
		hs.SetServingStatus(ServiceName, next)
		last = next
	}

	update()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}
