package db

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// IngestStats keeps track of ingested event counts
type IngestStats struct {
	sync.Mutex
	Applied   int
	Persisted int
	Rejected  int
}

func NewIngestStats() *IngestStats {
	return &IngestStats{}
}

// Run logs a summary every interval until ctx is done.
func (s *IngestStats) Run(ctx context.Context, interval time.Duration, logger *zap.SugaredLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			applied, persisted, rejected := s.Counts()
			logger.Infow("ingest summary", "applied", applied, "persisted", persisted, "rejected", rejected)
		}
	}
}

func (s *IngestStats) Counts() (applied, persisted, rejected int) {
	s.Lock()
	defer s.Unlock()
	return s.Applied, s.Persisted, s.Rejected
}

// IncrementApplied counts an event folded into the snapshot
func (s *IngestStats) IncrementApplied() {
	s.Lock()
	s.Applied++
	s.Unlock()
}

// IncrementPersisted counts an event written to Postgres
func (s *IngestStats) IncrementPersisted() {
	s.Lock()
	s.Persisted++
	s.Unlock()
}

// IncrementRejected counts an undecodable or unknown event
func (s *IngestStats) IncrementRejected() {
	s.Lock()
	s.Rejected++
	s.Unlock()
}
