package grpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestProbe_CollectsFailures(t *testing.T) {
	failures := probe(context.Background(), []ReadyCheck{
		{Name: "postgres", Check: func(ctx context.Context) error { return nil }},
		{Name: "redis", Check: func(ctx context.Context) error { return errors.New("connection refused") }},
		{Name: "skipped"},
		{Check: func(ctx context.Context) error { return errors.New("down") }},
	})

	if len(failures) != 2 {
		t.Fatalf("failures = %v, want 2", failures)
	}
	if failures[0] != "redis: connection refused" || failures[1] != "dependency: down" {
		t.Fatalf("failures = %v", failures)
	}
}

func TestWatchReadiness_SetsStatus(t *testing.T) {
	hs := health.NewServer()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		WatchReadiness(ctx, hs, time.Hour, discardLogger(), ReadyCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return errors.New("down") },
		})
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
		if err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_NOT_SERVING {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("status never became NOT_SERVING (resp=%v err=%v)", resp, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-done
}
