package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"factorypulse/internal/config"
	"factorypulse/internal/db"
	"factorypulse/internal/fixtures"
	"factorypulse/internal/model"
	"factorypulse/internal/monitor"
	"factorypulse/internal/realtime"
	"factorypulse/internal/service"
	"factorypulse/internal/store"
	"factorypulse/internal/web"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const statsInterval = 30 * time.Minute

// NewLogger builds the production logger, or the development one at
// debug level.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		zcfg := zap.NewProductionConfig()
		if err := zcfg.Level.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		logger, err = zcfg.Build(zap.AddStacktrace(zap.FatalLevel))
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// LoadSnapshot returns the baseline snapshot: the site's fixtures file
// when configured, the embedded one otherwise.
func LoadSnapshot(cfg *config.Config) (model.Snapshot, error) {
	var (
		snap model.Snapshot
		err  error
	)
	if cfg.FixturesPath != "" {
		snap, err = fixtures.LoadFile(cfg.FixturesPath)
	} else {
		snap, err = fixtures.Load()
	}
	if err != nil {
		return model.Snapshot{}, err
	}
	if cfg.Site != "" {
		snap.Site = cfg.Site
	}
	return snap, nil
}

// Serve runs the dashboard and every configured live source until ctx is
// cancelled, then shuts them down.
func Serve(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	snap, err := LoadSnapshot(cfg)
	if err != nil {
		return err
	}
	st := store.New(snap, logger.Named("store"))

	hub := realtime.NewHub(logger.Named("realtime"))
	st.OnChange(hub.Publish)

	health := &monitor.Health{Clients: hub.Clients, Logger: logger}
	stats := db.NewIngestStats()

	g, ctx := errgroup.WithContext(ctx)

	// --- Optional Postgres ---
	var sink service.EventSink
	if cfg.DatabaseEnabled() {
		dbMgr, err := db.NewDBManager(ctx, cfg, logger.Named("db"))
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer dbMgr.Shutdown()

		if err := dbMgr.Migrate(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		sink = dbMgr
		health.DB = dbMgr

		job := service.NewRefreshJob(dbMgr, st, logger.Named("refresh"))
		if _, err := job.RunOnce(ctx); err != nil {
			logger.Warnw("initial equipment refresh failed", "error", err)
		}
		if err := job.Start(ctx, cfg.RefreshSchedule); err != nil {
			return err
		}
		defer job.Stop()
	} else {
		logger.Info("DATABASE_URL not set, running on fixtures only")
	}

	ingest := service.NewIngestor(st, sink, stats, logger.Named("ingest"))
	g.Go(func() error {
		stats.Run(ctx, statsInterval, logger)
		return nil
	})

	// --- Optional Kafka ---
	if cfg.KafkaEnabled() {
		reader, err := service.NewKafkaReader(cfg)
		if err != nil {
			return err
		}
		kafkaSvc := service.NewKafkaService(ingest, logger.Named("kafka"))
		g.Go(func() error {
			defer reader.Close()
			kafkaSvc.StartConsumer(ctx, reader)
			return nil
		})
	}

	// --- Optional upstream feed ---
	if cfg.FeedEnabled() {
		feedSvc := service.NewFeedService(cfg, ingest, logger.Named("feed"))
		health.Feed = feedSvc
		g.Go(func() error { return feedSvc.Run(ctx) })
	}

	// --- HTTP ---
	srv, err := web.NewServer(web.Options{
		Store:     st,
		WS:        realtime.NewHandler(hub, realtime.NewAuthenticator(cfg.JWTSecret, cfg.JWTAudience), logger.Named("ws")),
		Health:    health,
		Site:      snap.Site,
		PublicURL: cfg.PublicURL,
		Logger:    logger.Named("http"),
	})
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Infow("starting http server", "addr", cfg.HTTPAddr, "auth", cfg.AuthEnabled(),
			"database", cfg.DatabaseEnabled(), "kafka", cfg.KafkaEnabled(), "feed", cfg.FeedEnabled())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnw("http shutdown incomplete", "error", err)
		}
		return nil
	})

	err = g.Wait()
	applied, persisted, rejected := stats.Counts()
	logger.Infow("shutdown completed", "applied", applied, "persisted", persisted, "rejected", rejected)
	return err
}
