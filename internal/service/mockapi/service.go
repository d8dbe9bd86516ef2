// Package mockapi is the simulated backend: it fabricates appointment
// fixtures, validates writes and persists the documents the application keeps.
package mockapi

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"go.opentelemetry.io/otel"

	"citavista/backend/internal/store"
)

var tracer = otel.Tracer("citavista/service/mockapi")

var (
	_ store.AppointmentSource = (*Service)(nil)
	_ store.ConfigSource      = (*Service)(nil)
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type Options struct {
	// Latency is waited before every read, WriteLatency before every write.
	Latency      time.Duration
	WriteLatency time.Duration
	// Seed makes generated fixtures reproducible. Zero picks a random seed.
	Seed     uint64
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
}

type Service struct {
	kv           store.KeyValue
	latency      time.Duration
	writeLatency time.Duration
	loc          *time.Location
	now          func() time.Time
	log          *slog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewService(kv store.KeyValue, opts Options) *Service {
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		kv:           kv,
		latency:      opts.Latency,
		writeLatency: opts.WriteLatency,
		loc:          opts.Location,
		now:          opts.Now,
		log:          opts.Logger.With(slog.String("component", "mockapi")),
		rnd:          rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// wait simulates the network round trip.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) intN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}

func (s *Service) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

func (s *Service) today() time.Time {
	return s.now().In(s.loc)
}
