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

	"github.com/focusrpg/focusrpg/internal/api"
	"github.com/focusrpg/focusrpg/internal/app/blocking"
	"github.com/focusrpg/focusrpg/internal/app/gate"
	"github.com/focusrpg/focusrpg/internal/app/level"
	"github.com/focusrpg/focusrpg/internal/app/progress"
	"github.com/focusrpg/focusrpg/internal/app/schedule"
	"github.com/focusrpg/focusrpg/internal/app/streaks"
	"github.com/focusrpg/focusrpg/internal/app/wallet"
	_ "github.com/focusrpg/focusrpg/internal/infra/metrics" // Register Prometheus metrics
	"github.com/focusrpg/focusrpg/internal/infra/sqlite"
	"github.com/focusrpg/focusrpg/internal/oracle/leetcode"
)

// Daemon is the core FocusRPG runtime. It wires together all services.
type Daemon struct {
	Config   Config
	DB       *sqlite.DB
	Level    *level.Service
	Gate     *gate.Service
	Wallet   *wallet.Service
	Streaks  *streaks.Service
	Progress *progress.Service
	Expander *schedule.Expander
	Schedule *schedule.Service
	Server   *api.Server

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
func NewWithConfig(cfg Config) (*Daemon, error) {
	dataDir := cfg.Data.Dir
	if dataDir == "" {
		dataDir = focusHome()
	}
	db, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Seed(); err != nil {
		return nil, fmt.Errorf("seed database: %w", err)
	}

	oracle := leetcode.NewClient(cfg.Oracle.Endpoint, cfg.OracleTimeout())
	coordinator := blocking.NewCoordinator(nil)

	d := &Daemon{Config: cfg, DB: db}
	d.Level = level.NewService(db)
	d.Gate = gate.NewService(db, oracle)
	d.Wallet = wallet.NewService(db, d.Gate, coordinator)
	d.Streaks = streaks.NewService(db)
	d.Progress = progress.NewService(db, d.Level, d.Wallet)
	d.Expander = schedule.NewExpander(db, nil)
	d.Schedule = schedule.NewService(db, d.Level, d.Wallet, d.Gate, d.Progress, d.Streaks)
	d.Server = api.NewServer(api.Services{
		Level:    d.Level,
		Gate:     d.Gate,
		Wallet:   d.Wallet,
		Streaks:  d.Streaks,
		Progress: d.Progress,
		Expander: d.Expander,
		Schedule: d.Schedule,
	})

	// Daemon start counts as a login; achievements reflect it on the
	// next completion recompute.
	if first, err := d.Streaks.RecordLogin(time.Now()); err != nil {
		log.Printf("[daemon] record login: %v", err)
	} else if first {
		if err := d.Progress.RecomputeAchievements(time.Now()); err != nil {
			log.Printf("[daemon] recompute achievements: %v", err)
		}
	}

	return d, nil
}

// Serve starts the HTTP server and tick loop, blocking until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.tickLoop(ctx)

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

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("FocusRPG serving on http://%s\n", addr)
	fmt.Printf("  Metrics: http://%s/metrics\n", addr)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// tickLoop drives the wallet's unlock-window countdown. The remaining
// time is derived from wall-clock, so a missed tick (sleep, suspend)
// is caught up by the next one.
func (d *Daemon) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(d.Config.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := d.Wallet.Tick(ctx, now); err != nil {
				log.Printf("[daemon] wallet tick: %v", err)
			}
		}
	}
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
