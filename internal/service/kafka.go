package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"factorypulse/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Config() kafka.ReaderConfig
}

type KafkaService struct {
	ingest     *Ingestor
	logger     *zap.SugaredLogger
	backoff    time.Duration
	maxBackoff time.Duration
}

func NewKafkaService(ingest *Ingestor, logger *zap.SugaredLogger) *KafkaService {
	return &KafkaService{
		ingest:     ingest,
		logger:     logger,
		backoff:    5 * time.Second,
		maxBackoff: 2 * time.Minute,
	}
}

// NewKafkaReader builds the consumer-group reader for the status topic.
func NewKafkaReader(cfg *config.Config) (*kafka.Reader, error) {
	tlsCfg, err := cfg.KafkaTLSConfig()
	if err != nil {
		return nil, fmt.Errorf("kafka tls: %w", err)
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:           cfg.KafkaBrokers,
		Topic:             cfg.KafkaTopic,
		GroupID:           cfg.KafkaGroupID,
		StartOffset:       kafka.FirstOffset,
		ReadLagInterval:   -1,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
		Dialer: &kafka.Dialer{
			Timeout: 10 * time.Second,
			TLS:     tlsCfg,
		},
	}), nil
}

// ProcessMessage applies one message; failures are logged by the ingestor.
func (s *KafkaService) ProcessMessage(ctx context.Context, m kafka.Message) {
	_ = s.ingest.Handle(ctx, m.Value)
}

// Internal consumer loop
func (s *KafkaService) consumeLoop(ctx context.Context, reader messageReader) error {
	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.logger.Info("consumer context canceled, stopping consumer loop")
				return nil
			}
			if errors.Is(err, io.EOF) {
				s.logger.Debug("kafka EOF reached, waiting for new messages")
				if !sleepCtx(ctx, 2*time.Second) {
					return nil
				}
				continue
			}
			return fmt.Errorf("error reading message: %w", err)
		}

		s.ProcessMessage(ctx, m)
	}
}

// StartConsumer runs the consumer with exponential backoff between
// failures until ctx is done.
func (s *KafkaService) StartConsumer(ctx context.Context, reader messageReader) {
	if reader == nil {
		s.logger.Warn("kafka reader is nil, consumer not started")
		return
	}

	cfg := reader.Config()
	s.logger.Infow("starting kafka consumer", "brokers", cfg.Brokers, "topic", cfg.Topic, "group_id", cfg.GroupID)

	backoff := s.backoff
	for {
		err := s.consumeLoop(ctx, reader)
		if err == nil || ctx.Err() != nil {
			s.logger.Info("kafka consumer stopped")
			return
		}

		s.logger.Errorw("kafka consumer error", "error", err, "retry_in", backoff)
		if !sleepCtx(ctx, backoff) {
			return
		}
		backoff = min(backoff*2, s.maxBackoff)
	}
}

// sleepCtx waits for d and reports false when ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
