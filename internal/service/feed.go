package service

import (
	"context"
	"errors"

	"factorypulse/internal/config"
	"factorypulse/pkg/feed"

	"go.uber.org/zap"
)

// FeedService applies the events of an upstream websocket status feed.
type FeedService struct {
	client *feed.Client
	ingest *Ingestor
	logger *zap.SugaredLogger
}

func NewFeedService(cfg *config.Config, ingest *Ingestor, logger *zap.SugaredLogger) *FeedService {
	client := feed.NewClient(feed.Options{URL: cfg.FeedURL, Token: cfg.FeedToken}, logger.Desugar().Named("feed"))
	return &FeedService{client: client, ingest: ingest, logger: logger}
}

// Run subscribes to all equipment and blocks until ctx is done.
func (f *FeedService) Run(ctx context.Context) error {
	if err := f.client.Subscribe(ctx, feed.AllEquipment); err != nil {
		return err
	}
	err := f.client.Run(ctx, func(ctx context.Context, msg []byte) {
		_ = f.ingest.Handle(ctx, msg)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// IsAlive checks if the upstream connection is up
func (f *FeedService) IsAlive() bool {
	return f.client.IsAlive()
}
