package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"factorypulse/internal/model"
)

func TestEquipmentRowState(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	eff, target := 89.0, 1000.0
	alerts := int32(2)
	row := equipmentRow{
		ID:           "line-a",
		Name:         "Line A - Assembly",
		Status:       "Running",
		Efficiency:   &eff,
		OutputTarget: &target,
		Unit:         "units",
		AlertCount:   &alerts,
		UpdatedAt:    now.Add(-2 * time.Minute),
	}
	st, err := row.state(now)
	require.NoError(t, err)
	assert.Equal(t, model.Running, st.Status)
	require.NotNil(t, st.OutputTarget)
	assert.Equal(t, 1000.0, *st.OutputTarget)
	assert.Nil(t, st.OutputCurrent)
	require.NotNil(t, st.AlertCount)
	assert.Equal(t, 2, *st.AlertCount)
	assert.Equal(t, "2 min ago", st.LastUpdate)

	row.Status = "exploded"
	_, err = row.state(now)
	assert.ErrorIs(t, err, model.ErrUnknownStatus)
}

func TestEquipmentRowStateLeavesNullFiguresUnset(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	st, err := equipmentRow{ID: "line-a", Status: "idle", UpdatedAt: now}.state(now)
	require.NoError(t, err)
	assert.Nil(t, st.Efficiency)
	assert.Nil(t, st.OutputCurrent)
	assert.Nil(t, st.OutputTarget)
	assert.Nil(t, st.AlertCount)
}

func TestSinceText(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		age  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{23 * time.Minute, "23 min ago"},
		{time.Hour, "1 hour ago"},
		{5 * time.Hour, "5 hours ago"},
		{72 * time.Hour, "2024-01-12"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sinceText(now, now.Add(-tt.age)))
	}
}

func TestTableIdentifier(t *testing.T) {
	assert.Equal(t, `"factory"."equipment"`, table("factory", "equipment"))
	assert.Equal(t, `"a""b"."equipment"`, table(`a"b`, "equipment"))
}

func TestFloatArg(t *testing.T) {
	assert.Nil(t, floatArg(nil))
	v := floatArg(model.FlexFloat(71.5).Ptr())
	require.NotNil(t, v)
	assert.Equal(t, 71.5, *v)
}

func TestIngestStats(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewIngestStats()
	s.IncrementApplied()
	s.IncrementApplied()
	s.IncrementPersisted()
	s.IncrementRejected()

	applied, persisted, rejected := s.Counts()
	assert.Equal(t, 2, applied)
	assert.Equal(t, 1, persisted)
	assert.Equal(t, 1, rejected)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, time.Millisecond, zap.NewNop().Sugar())
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	<-done
}

func TestDBManagerHealthFlips(t *testing.T) {
	d := &DBManager{logger: zap.NewNop().Sugar()}
	d.healthy.Store(true)

	d.record(context.DeadlineExceeded)
	assert.False(t, d.Healthy())
	d.record(context.DeadlineExceeded)
	assert.False(t, d.Healthy())
	d.record(nil)
	assert.True(t, d.Healthy())
}
