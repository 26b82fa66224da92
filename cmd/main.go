package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/http/api"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/postgres"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/redisstore"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/repository"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/alerts"
	service "github.com/Williammicrosaas/VagasPeloWhatsapp/internal/app"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/config"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/scoring"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/quota"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/logger"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	metrics.GetRegistry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "service exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	svc, err := newService(cfg, b, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	srv := newHTTPServer(cfg, svc)
	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "service shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return err
}

// backends holds the store, quota counter and alert dispatcher selected by config.
type backends struct {
	store      repository.Store
	counter    quota.Counter
	dispatcher alerts.Dispatcher
	closers    []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg *config.Config, log logger.Logger) (*backends, error) {
	b := &backends{}

	switch cfg.Store {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		if err := postgres.Migrate(ctx, pool); err != nil {
			b.close()
			return nil, err
		}
		b.store = postgres.New(pool,
			postgres.WithFreePlanLimit(cfg.FreePlanDailyLimit),
			postgres.WithLogger(log.Named("postgres")),
		)
		log.Info(ctx, "using postgres store")
	default:
		b.store = repository.NewMemoryStore(repository.WithFreePlanLimit(cfg.FreePlanDailyLimit))
		log.Info(ctx, "using in-memory store")
	}

	if cfg.RedisURL == "" {
		b.counter = quota.NewMemoryCounter()
		b.dispatcher = alerts.LogDispatcher{Log: log.Named("alerts")}
		return b, nil
	}
	rdb, err := redisstore.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		b.close()
		return nil, err
	}
	b.closers = append(b.closers, func() { _ = rdb.Close() })
	b.counter = redisstore.NewQuotaCounter(rdb)
	b.dispatcher = redisstore.NewPublisher(rdb, cfg.AlertChannel)
	log.Info(ctx, "using redis quota counter and alert publisher", logger.String("channel", cfg.AlertChannel))
	return b, nil
}

func newService(cfg *config.Config, b *backends, log logger.Logger) (*service.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return service.New(b.store, b.counter, b.dispatcher,
		service.WithLogger(log.Named("service")),
		service.WithWeights(scoring.Weights{
			Country:        cfg.WeightCountry,
			Area:           cfg.WeightArea,
			Salary:         cfg.WeightSalary,
			Level:          cfg.WeightLevel,
			EmploymentType: cfg.WeightEmploymentType,
			Remote:         cfg.WeightRemote,
		}),
		service.WithOversample(cfg.OversampleFactor),
		service.WithLimits(cfg.DefaultLimit, cfg.MaxLimit),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.EventQueueSize),
		service.WithDedupeSize(cfg.AlertDedupeSize),
		service.WithSweep(cfg.SweepSchedule, cfg.SweepRatePerSec),
		service.WithLocation(loc),
	), nil
}

func newHTTPServer(cfg *config.Config, svc *service.Service) *http.Server {
	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
