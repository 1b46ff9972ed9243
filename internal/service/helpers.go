package service

import (
	"context"
	"errors"
	"fmt"

	"factorypulse/internal/db"
	"factorypulse/internal/model"
	"factorypulse/internal/store"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var jsonFast = jsoniter.ConfigFastest

// EventSink persists applied events. *db.DBManager implements it.
type EventSink interface {
	UpsertEquipmentStatus(ctx context.Context, ev model.StatusEvent) error
	InsertStatusEvent(ctx context.Context, ev model.StatusEvent) error
}

// DecodeStatusEvent decodes a status event, unwrapping the optional
// {"payload": "<json>"} envelope some gateways add. The event's own
// decoder is called directly so its sentinel errors survive wrapping.
func DecodeStatusEvent(raw []byte) (model.StatusEvent, error) {
	var wrapper model.KafkaWrapper
	if err := jsonFast.Unmarshal(raw, &wrapper); err == nil && wrapper.Payload != "" {
		raw = []byte(wrapper.Payload)
	}

	var ev model.StatusEvent
	if err := ev.UnmarshalJSON(raw); err != nil {
		return model.StatusEvent{}, fmt.Errorf("decode status event: %w", err)
	}
	return ev, nil
}

// Ingestor is the shared path of every live source: decode, apply to the
// snapshot, then persist.
type Ingestor struct {
	store  *store.Store
	sink   EventSink
	stats  *db.IngestStats
	logger *zap.SugaredLogger
}

// NewIngestor builds an ingestor; sink may be nil when no database is
// configured.
func NewIngestor(st *store.Store, sink EventSink, stats *db.IngestStats, logger *zap.SugaredLogger) *Ingestor {
	return &Ingestor{store: st, sink: sink, stats: stats, logger: logger}
}

func (i *Ingestor) Stats() *db.IngestStats { return i.stats }

// Handle processes one raw message. Bad messages are counted and
// returned as errors; they never stop a consumer.
func (i *Ingestor) Handle(ctx context.Context, raw []byte) error {
	ev, err := DecodeStatusEvent(raw)
	if err != nil {
		i.stats.IncrementRejected()
		i.logger.Errorw("failed to parse status event", "error", err)
		return err
	}
	return i.HandleEvent(ctx, ev)
}

func (i *Ingestor) HandleEvent(ctx context.Context, ev model.StatusEvent) error {
	if _, err := i.store.Apply(ev); err != nil {
		i.stats.IncrementRejected()
		if errors.Is(err, store.ErrUnknownEquipment) {
			i.logger.Warnw("status event for unknown equipment", "equipment_id", ev.EquipmentID)
		} else {
			i.logger.Errorw("failed to apply status event", "error", err, "equipment_id", ev.EquipmentID)
		}
		return err
	}
	i.stats.IncrementApplied()

	if i.sink == nil {
		return nil
	}
	if err := i.sink.UpsertEquipmentStatus(ctx, ev); err != nil {
		i.logger.Errorw("failed to upsert equipment", "error", err, "equipment_id", ev.EquipmentID)
		return err
	}
	if err := i.sink.InsertStatusEvent(ctx, ev); err != nil {
		i.logger.Errorw("failed to insert status event", "error", err, "equipment_id", ev.EquipmentID)
		return err
	}
	i.stats.IncrementPersisted()
	return nil
}
