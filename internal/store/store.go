// Package store keeps the live factory snapshot shared by the web pages,
// the realtime hub and the ingestion services.
package store

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"factorypulse/internal/model"
)

var (
	ErrUnknownEquipment = errors.New("unknown equipment")
	ErrUnknownAlert     = errors.New("unknown alert")
)

// Change describes one applied update. Records holds every equipment
// record the event touched, across screens.
type Change struct {
	EquipmentID string
	Status      model.EquipmentStatus
	Records     []model.EquipmentRecord
	At          time.Time
}

type ChangeListener func(Change)

type Store struct {
	mu        sync.RWMutex
	notify    sync.Mutex // taken before mu is released, so listeners run in apply order
	snap      model.Snapshot
	listeners []ChangeListener
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func New(snap model.Snapshot, logger *zap.SugaredLogger) *Store {
	if snap.Floor == nil {
		snap.Floor = make(map[string]model.EquipmentStatus)
	}
	return &Store{snap: snap, logger: logger, now: time.Now}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Replace swaps the whole snapshot.
func (s *Store) Replace(snap model.Snapshot) {
	s.mu.Lock()
	s.snap = snap.Clone()
	s.mu.Unlock()
	s.logger.Infow("snapshot replaced", "site", snap.Site)
}

// OnChange registers a listener called after every applied event, in
// apply order. Listeners run on the applying goroutine and must not call
// Apply.
func (s *Store) OnChange(l ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Apply folds a status event into every screen that shows the equipment.
// It returns ErrUnknownEquipment when nothing matched.
func (s *Store) Apply(ev model.StatusEvent) (Change, error) {
	if ev.Status.IsZero() {
		return Change{}, fmt.Errorf("apply %s: %w", ev.EquipmentID, model.ErrUnknownStatus)
	}
	key := model.NormalizeID(ev.EquipmentID)
	if key == "" {
		return Change{}, fmt.Errorf("apply: %w: empty id", ErrUnknownEquipment)
	}
	at := ev.Timestamp
	if at.IsZero() {
		at = s.now()
	}

	s.mu.Lock()
	change := Change{EquipmentID: ev.EquipmentID, Status: ev.Status, At: at}
	matched := false

	for _, list := range [][]model.EquipmentRecord{s.snap.Mission.Equipment, s.snap.ShopFloor.Equipment} {
		for i := range list {
			if model.NormalizeID(list[i].ID) != key {
				continue
			}
			applyToRecord(&list[i], ev)
			change.Records = append(change.Records, list[i])
			matched = true
		}
	}
	for i := range s.snap.Live.Equipment {
		le := &s.snap.Live.Equipment[i]
		if model.NormalizeID(le.ID) != key {
			continue
		}
		le.Status = ev.Status
		if ev.Efficiency != nil {
			le.Efficiency = float64(*ev.Efficiency)
		}
		le.LastPing = "0s"
		matched = true
	}
	for id := range s.snap.Floor {
		if model.NormalizeID(id) == key {
			s.snap.Floor[id] = ev.Status
			matched = true
		}
	}
	if !matched {
		s.mu.Unlock()
		return Change{}, fmt.Errorf("apply %s: %w", ev.EquipmentID, ErrUnknownEquipment)
	}
	listeners := append([]ChangeListener(nil), s.listeners...)
	s.notify.Lock()
	s.mu.Unlock()
	defer s.notify.Unlock()

	for _, l := range listeners {
		l(change)
	}
	return change, nil
}

func applyToRecord(r *model.EquipmentRecord, ev model.StatusEvent) {
	r.Status = ev.Status
	if ev.Efficiency != nil {
		r.Efficiency = float64(*ev.Efficiency)
	}
	if ev.OutputCurrent != nil {
		r.Output.Current = float64(*ev.OutputCurrent)
	}
	if ev.AlertCount != nil {
		r.AlertCount = *ev.AlertCount
	}
	r.LastUpdate = "just now"
}

// MergeEquipment overlays persisted state onto the snapshot by id. Only
// fields the database has a value for are copied. It returns how many
// records were updated.
func (s *Store) MergeEquipment(states []model.EquipmentState) int {
	byID := make(map[string]model.EquipmentState, len(states))
	for _, st := range states {
		byID[model.NormalizeID(st.ID)] = st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	for _, list := range [][]model.EquipmentRecord{s.snap.Mission.Equipment, s.snap.ShopFloor.Equipment} {
		for i := range list {
			st, ok := byID[model.NormalizeID(list[i].ID)]
			if !ok {
				continue
			}
			mergeState(&list[i], st)
			updated++
		}
	}
	return updated
}

func mergeState(r *model.EquipmentRecord, st model.EquipmentState) {
	if !st.Status.IsZero() {
		r.Status = st.Status
	}
	if finite(st.Efficiency) {
		r.Efficiency = *st.Efficiency
	}
	if finite(st.OutputCurrent) {
		r.Output.Current = *st.OutputCurrent
	}
	if finite(st.OutputTarget) && *st.OutputTarget > 0 {
		r.Output.Target = *st.OutputTarget
	}
	if st.AlertCount != nil {
		r.AlertCount = *st.AlertCount
	}
	if st.LastUpdate != "" {
		r.LastUpdate = st.LastUpdate
	}
}

func finite(f *float64) bool {
	return f != nil && !math.IsNaN(*f) && !math.IsInf(*f, 0)
}

// Acknowledge marks one alert as handled.
func (s *Store) Acknowledge(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snap.Alerts.Items {
		if s.snap.Alerts.Items[i].ID == id {
			s.snap.Alerts.Items[i].Acknowledged = true
			return nil
		}
	}
	return fmt.Errorf("acknowledge %d: %w", id, ErrUnknownAlert)
}

// AcknowledgeAll marks every alert handled and returns how many changed.
func (s *Store) AcknowledgeAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.snap.Alerts.Items {
		if !s.snap.Alerts.Items[i].Acknowledged {
			s.snap.Alerts.Items[i].Acknowledged = true
			n++
		}
	}
	return n
}
