package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"citavista/backend/internal/config"
	"citavista/backend/internal/domain"
	"citavista/backend/internal/service/appointments"
	"citavista/backend/internal/service/configuration"
	"citavista/backend/internal/service/mockapi"
	"citavista/backend/internal/store"
	"citavista/backend/internal/store/memory"
	"citavista/backend/internal/store/postgres"
	"citavista/backend/internal/store/redis"
	"citavista/backend/internal/telemetry"
	grpcTransport "citavista/backend/internal/transport/grpc"
)

const serviceName = "citavista-server"

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", serviceName),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", serviceName),
	)
	slog.SetDefault(log)

	log.Info(
		"starting",
		slog.String("grpc_addr", cfg.GRPCAddr()),
		slog.String("log_level", cfg.LogLevel),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.OTelEnabled,
		ServiceName: serviceName,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Error("telemetry setup failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("telemetry shutdown failed", slog.Any("err", err))
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		log.Error("invalid time zone", slog.Any("err", err), slog.String("time_zone", cfg.TimeZone))
		os.Exit(1)
	}

	kv, checks, closer, err := openKeyValue(ctx, log, cfg)
	if err != nil {
		log.Error("storage open failed", slog.Any("err", err), slog.String("storage_backend", cfg.StorageBackend))
		os.Exit(1)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			log.Warn("storage close failed", slog.Any("err", err))
		}
	}()

	api := mockapi.NewService(kv, mockapi.Options{
		Latency:      cfg.MockLatency,
		WriteLatency: cfg.MockWriteLatency,
		Seed:         cfg.MockSeed,
		Location:     loc,
		Logger:       log,
	})
	apptStore, err := appointments.NewStore(api, appointments.Options{
		CacheTTL:  cfg.CacheTTL,
		CacheSize: cfg.CacheSize,
		Logger:    log,
	})
	if err != nil {
		log.Error("appointment store init failed", slog.Any("err", err))
		os.Exit(1)
	}
	configStore := configuration.NewStore(api, configuration.Options{Location: loc, Logger: log})
	configStore.OnScheduleSaved(monthReloader(apptStore, func() time.Time { return time.Now().In(loc) }, log))

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpcTransport.UnaryServerRequestIDInterceptor(),
			defaultRequestTimeoutInterceptor(cfg.GRPCRequestTimeout),
		),
	)
	grpcTransport.RegisterCitaVistaServer(grpcServer, grpcTransport.NewServer(apptStore, configStore, api, log))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	go grpcTransport.WatchReadiness(ctx, healthServer, 10*time.Second, log, checks...)

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()

	log.Info("grpc server started", slog.String("grpc_addr", cfg.GRPCAddr()))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		healthServer.Shutdown()
		shutdown(log, grpcServer, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("grpc server stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

// monthReloader drops every cached month and reloads the current one in the
// background. The reload outlives the request that saved the schedule.
func monthReloader(appts *appointments.Store, now func() time.Time, log *slog.Logger) configuration.ScheduleListener {
	return func(ctx context.Context, _ domain.ScheduleConfig) {
		appts.InvalidateCache()
		month := domain.DateOf(now()).MonthKey()
		go func() {
			if _, err := appts.LoadMonth(context.WithoutCancel(ctx), month); err != nil {
				log.Warn("month reload after schedule change failed", slog.Any("err", err), slog.String("month", month.String()))
			}
		}()
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openKeyValue connects the configured storage backend and returns it with
// its readiness probes.
func openKeyValue(ctx context.Context, log *slog.Logger, cfg config.Config) (store.KeyValue, []grpcTransport.ReadyCheck, io.Closer, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
		db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		checks := []grpcTransport.ReadyCheck{{Name: "postgres", Check: postgres.ReadyCheck(db)}}
		return postgres.NewKeyValueRepo(db), checks, closerFunc(func() error { return postgres.Close(db) }), nil

	case config.BackendRedis:
		log.Info("connecting to redis", slog.String("redis_addr", cfg.RedisAddr), slog.Int("redis_db", cfg.RedisDB))
		rdb, err := redis.Open(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		checks := []grpcTransport.ReadyCheck{{Name: "redis", Check: redis.ReadyCheck(rdb)}}
		return redis.NewKeyValue(rdb, cfg.RedisPrefix), checks, rdb, nil
	}

	log.Warn("using in-memory storage; data is lost on restart")
	return memory.NewKeyValue(), nil, closerFunc(func() error { return nil }), nil
}

func defaultRequestTimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
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

func shutdown(log *slog.Logger, s *grpc.Server, timeout time.Duration) {
	log.Info("shutting down grpc server", slog.Duration("timeout", timeout))

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-timer.C:
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
