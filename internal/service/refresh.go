package service

import (
	"context"
	"fmt"
	"time"

	"factorypulse/internal/model"
	"factorypulse/internal/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// EquipmentLoader reads persisted equipment. *db.DBManager implements it.
type EquipmentLoader interface {
	LoadEquipment(ctx context.Context) ([]model.EquipmentState, error)
}

// RefreshJob periodically merges persisted equipment into the snapshot.
type RefreshJob struct {
	loader  EquipmentLoader
	store   *store.Store
	logger  *zap.SugaredLogger
	timeout time.Duration
	cron    *cron.Cron
}

func NewRefreshJob(loader EquipmentLoader, st *store.Store, logger *zap.SugaredLogger) *RefreshJob {
	return &RefreshJob{loader: loader, store: st, logger: logger, timeout: 10 * time.Second, cron: cron.New()}
}

// RunOnce loads and merges once, returning how many records were updated.
func (j *RefreshJob) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	states, err := j.loader.LoadEquipment(ctx)
	if err != nil {
		return 0, fmt.Errorf("refresh equipment: %w", err)
	}
	n := j.store.MergeEquipment(states)
	j.logger.Debugw("equipment refreshed", "loaded", len(states), "merged", n)
	return n, nil
}

// Start schedules RunOnce on spec, a cron expression such as "@every 30s".
func (j *RefreshJob) Start(ctx context.Context, spec string) error {
	_, err := j.cron.AddFunc(spec, func() {
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.Errorw("scheduled refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule refresh %q: %w", spec, err)
	}
	j.cron.Start()
	j.logger.Infow("equipment refresh scheduled", "spec", spec)
	return nil
}

// Stop waits for a running refresh to finish.
func (j *RefreshJob) Stop() {
	<-j.cron.Stop().Done()
}
