package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"factorypulse/internal/fixtures"
	"factorypulse/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	snap, err := fixtures.Load()
	require.NoError(t, err)
	return New(snap, zap.NewNop().Sugar())
}

func TestApplyUpdatesEveryScreen(t *testing.T) {
	s := newTestStore(t)

	ev := model.StatusEvent{
		EquipmentID: "CNC-1",
		Status:      model.Down,
		Efficiency:  model.FlexFloat(12.5).Ptr(),
	}
	change, err := s.Apply(ev)
	require.NoError(t, err)
	require.Len(t, change.Records, 1)
	assert.Equal(t, model.Down, change.Records[0].Status)

	snap := s.Snapshot()
	assert.Equal(t, model.Down, snap.ShopFloor.Equipment[0].Status)
	assert.Equal(t, 12.5, snap.ShopFloor.Equipment[0].Efficiency)
	assert.Equal(t, model.Down, snap.Live.Equipment[0].Status)
	assert.Equal(t, model.Down, snap.Floor["cnc1"])
	assert.Equal(t, model.Running, snap.Floor["cnc2"])
}

func TestApplyRejectsUnknownEquipment(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Apply(model.StatusEvent{EquipmentID: "press-9", Status: model.Idle})
	assert.ErrorIs(t, err, ErrUnknownEquipment)
}

func TestApplyRejectsUnsetStatus(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Apply(model.StatusEvent{EquipmentID: "cnc-1"})
	assert.ErrorIs(t, err, model.ErrUnknownStatus)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestStore(t)
	snap := s.Snapshot()
	snap.Mission.Equipment[0].Status = model.Down
	snap.Floor["cnc1"] = model.Down

	fresh := s.Snapshot()
	assert.Equal(t, model.Running, fresh.Mission.Equipment[0].Status)
	assert.Equal(t, model.Running, fresh.Floor["cnc1"])
}

func TestOnChangeNotifies(t *testing.T) {
	s := newTestStore(t)
	got := make(chan Change, 1)
	s.OnChange(func(c Change) { got <- c })

	_, err := s.Apply(model.StatusEvent{EquipmentID: "line-b", Status: model.Running})
	require.NoError(t, err)

	select {
	case c := <-got:
		assert.Equal(t, "line-b", c.EquipmentID)
		assert.Equal(t, model.Running, c.Status)
	case <-time.After(time.Second):
		t.Fatal("listener not called")
	}
}

func TestAcknowledge(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, 3, s.Snapshot().Alerts.Unacknowledged())

	require.NoError(t, s.Acknowledge(1))
	assert.Equal(t, 2, s.Snapshot().Alerts.Unacknowledged())

	assert.ErrorIs(t, s.Acknowledge(99), ErrUnknownAlert)

	assert.Equal(t, 2, s.AcknowledgeAll())
	assert.Equal(t, 0, s.Snapshot().Alerts.Unacknowledged())
}

func ptr[T any](v T) *T { return &v }

func TestMergeEquipment(t *testing.T) {
	s := newTestStore(t)
	n := s.MergeEquipment([]model.EquipmentState{
		{ID: "line_c", Status: model.Running, Efficiency: ptr(70.0), OutputCurrent: ptr(120.0), AlertCount: ptr(0)},
		{ID: "unknown", Status: model.Idle},
	})
	assert.Equal(t, 1, n)

	rec := s.Snapshot().Mission.Equipment[2]
	assert.Equal(t, model.Running, rec.Status)
	assert.Equal(t, 70.0, rec.Efficiency)
	assert.Equal(t, 120.0, rec.Output.Current)
	assert.Equal(t, 600.0, rec.Output.Target)
	assert.Equal(t, 0, rec.AlertCount)
}

func TestMergeEquipmentKeepsUnreportedFields(t *testing.T) {
	s := newTestStore(t)
	before := s.Snapshot().Mission.Equipment[0]
	require.Equal(t, "line-a", before.ID)

	n := s.MergeEquipment([]model.EquipmentState{{ID: "line-a", Status: model.Idle, LastUpdate: "just now"}})
	assert.Equal(t, 1, n)

	rec := s.Snapshot().Mission.Equipment[0]
	assert.Equal(t, model.Idle, rec.Status)
	assert.Equal(t, before.Efficiency, rec.Efficiency)
	assert.Equal(t, before.Output, rec.Output)
	assert.Equal(t, before.AlertCount, rec.AlertCount)
	assert.Equal(t, "just now", rec.LastUpdate)
}

func TestListenersSeeApplyOrder(t *testing.T) {
	s := newTestStore(t)
	var got []model.EquipmentStatus
	s.OnChange(func(c Change) { got = append(got, c.Status) })

	for range 200 {
		_, err := s.Apply(model.StatusEvent{EquipmentID: "line-a", Status: model.Down})
		require.NoError(t, err)
		_, err = s.Apply(model.StatusEvent{EquipmentID: "line-a", Status: model.Running})
		require.NoError(t, err)
	}

	require.Len(t, got, 400)
	for i := 0; i < len(got); i += 2 {
		assert.Equal(t, model.Down, got[i])
		assert.Equal(t, model.Running, got[i+1])
	}
	assert.Equal(t, model.Running, got[len(got)-1])
	assert.Equal(t, model.Running, s.Snapshot().Mission.Equipment[0].Status)
}

func TestConcurrentAppliesNotifyInStoreOrder(t *testing.T) {
	s := newTestStore(t)
	var (
		mu   sync.Mutex
		last model.EquipmentStatus
	)
	s.OnChange(func(c Change) {
		mu.Lock()
		last = c.Status
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st := model.Down
			if i%2 == 0 {
				st = model.Running
			}
			_, err := s.Apply(model.StatusEvent{EquipmentID: "line-a", Status: st})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, s.Snapshot().Mission.Equipment[0].Status, last)
}

func TestApplyLiveOnlyEquipmentHasNoRecords(t *testing.T) {
	s := newTestStore(t)
	change, err := s.Apply(model.StatusEvent{EquipmentID: "conveyor-a", Status: model.Down})
	require.NoError(t, err)
	assert.Empty(t, change.Records)
	assert.Equal(t, model.Down, s.Snapshot().Live.Equipment[6].Status)
}
