package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/koru-wellness/koru/internal/api"
	"github.com/koru-wellness/koru/internal/app/stats"
	"github.com/koru-wellness/koru/internal/domain"
	"github.com/koru-wellness/koru/internal/health"
	_ "github.com/koru-wellness/koru/internal/infra/metrics" // Register Prometheus metrics
	"github.com/koru-wellness/koru/internal/infra/sqlite"
)

// Daemon is the Koru runtime. It wires the record store, the stats
// repository, and the HTTP API together.
type Daemon struct {
	Config Config
	Store  *sqlite.Store
	Stats  *stats.Repository
	Server *api.Server
	Health *health.Checker
	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
// With persistence disabled the store is left nil and the repository runs
// in degraded mode.
func NewWithConfig(cfg Config) (*Daemon, error) {
	d := &Daemon{Config: cfg}

	if !cfg.Store.PersistenceDisabled {
		dir := cfg.Store.Dir
		if dir == "" {
			dir = koruHome()
		}
		store, err := sqlite.Open(dir)
		if err != nil {
			return nil, fmt.Errorf("open record store: %w", err)
		}
		d.Store = store
	} else {
		log.Printf("[daemon] persistence disabled — running statelessly")
	}

	d.Stats = stats.NewRepository(storeOrNil(d.Store), !cfg.Store.PersistenceDisabled)

	srv := api.NewServer(d.Stats, api.Options{
		HistoryLimit:     cfg.Session.HistoryLimit,
		LeaderboardLimit: cfg.Session.LeaderboardLimit,
		RecentDays:       cfg.Session.RecentDays,
		CORSOrigins:      cfg.API.CORSOrigins,
	})
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	d.Server = srv

	d.Health = health.NewChecker(d.Store, cfg.Store.Dir)

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		if d.Store != nil {
			_ = d.Store.Close()
		}
	}()

	fmt.Printf("Koru achievements engine serving on http://%s\n", addr)
	if d.Config.Store.PersistenceDisabled {
		fmt.Println("  Persistence: disabled (stats are not stored)")
	}
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Store != nil {
		_ = d.Store.Close()
	}
}

// storeOrNil keeps a typed-nil *sqlite.Store from masquerading as a
// non-nil RecordStore interface value.
func storeOrNil(s *sqlite.Store) domain.RecordStore {
	if s == nil {
		return nil
	}
	return s
}
