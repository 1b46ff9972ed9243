package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusEventDecode(t *testing.T) {
	raw := `{"device_id":"cnc-2","status":"down","efficiency":"71.5","output_current":120,
		"alert_count":2,"timestamp":"2024-01-15T10:30:00Z","temperature":85}`

	var ev StatusEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	assert.Equal(t, "cnc-2", ev.EquipmentID)
	assert.Equal(t, Down, ev.Status)
	require.NotNil(t, ev.Efficiency)
	assert.Equal(t, 71.5, float64(*ev.Efficiency))
	require.NotNil(t, ev.OutputCurrent)
	assert.Equal(t, 120.0, float64(*ev.OutputCurrent))
	require.NotNil(t, ev.AlertCount)
	assert.Equal(t, 2, *ev.AlertCount)
	assert.Equal(t, 2024, ev.Timestamp.Year())
	assert.Equal(t, float64(85), ev.Data["temperature"])
}

func TestStatusEventPrefersEquipmentID(t *testing.T) {
	var ev StatusEvent
	require.NoError(t, json.Unmarshal([]byte(`{"machine_id":"m","equipment_id":"e","status":"idle"}`), &ev))
	assert.Equal(t, "e", ev.EquipmentID)
}

func TestStatusEventErrors(t *testing.T) {
	tests := map[string]string{
		"missing id":     `{"status":"running"}`,
		"missing status": `{"equipment_id":"cnc-1"}`,
		"bad status":     `{"equipment_id":"cnc-1","status":"melting"}`,
		"bad timestamp":  `{"equipment_id":"cnc-1","status":"idle","timestamp":"yesterday"}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			var ev StatusEvent
			assert.Error(t, json.Unmarshal([]byte(raw), &ev))
		})
	}

	var ev StatusEvent
	err := json.Unmarshal([]byte(`{"equipment_id":"cnc-1"}`), &ev)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestStatusEventRejectsNonFinite(t *testing.T) {
	tests := map[string]string{
		"nan efficiency":  `{"equipment_id":"line-a","status":"idle","efficiency":"NaN"}`,
		"inf output":      `{"equipment_id":"line-a","status":"idle","output_current":"Inf"}`,
		"negative inf":    `{"equipment_id":"line-a","status":"idle","efficiency":"-Infinity"}`,
		"overflow":        `{"equipment_id":"line-a","status":"idle","efficiency":"1e400"}`,
		"nan alert count": `{"equipment_id":"line-a","status":"idle","alert_count":"nan"}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			var ev StatusEvent
			assert.ErrorIs(t, json.Unmarshal([]byte(raw), &ev), ErrNonFinite)
		})
	}
}

func TestStatusEventRejectsNegativeAlertCount(t *testing.T) {
	var ev StatusEvent
	err := json.Unmarshal([]byte(`{"equipment_id":"line-a","status":"idle","alert_count":-2}`), &ev)
	assert.ErrorIs(t, err, ErrNegativeCount)

	require.NoError(t, json.Unmarshal([]byte(`{"equipment_id":"line-a","status":"idle","alert_count":"0"}`), &ev))
	require.NotNil(t, ev.AlertCount)
	assert.Equal(t, 0, *ev.AlertCount)
}

func TestStatusEventIgnoresUnparseableNumbers(t *testing.T) {
	var ev StatusEvent
	require.NoError(t, json.Unmarshal([]byte(`{"equipment_id":"line-a","status":"idle","efficiency":"n/a"}`), &ev))
	assert.Nil(t, ev.Efficiency)
}

func TestFlexFloatRejectsNonFinite(t *testing.T) {
	var f FlexFloat
	assert.ErrorIs(t, json.Unmarshal([]byte(`"NaN"`), &f), ErrNonFinite)
	assert.ErrorIs(t, json.Unmarshal([]byte(`"+Inf"`), &f), ErrNonFinite)
	assert.ErrorIs(t, json.Unmarshal([]byte(`"1e400"`), &f), ErrNonFinite)
	require.NoError(t, json.Unmarshal([]byte(`"12.5"`), &f))
	assert.Equal(t, 12.5, float64(f))
}

func TestValidateJSONDropsNonFinite(t *testing.T) {
	out, err := ValidateJSON(map[string]any{
		"temp":   math.NaN(),
		"nested": map[string]any{"rpm": math.Inf(1), "ok": 1.5},
		"list":   []any{math.Inf(-1), 2.0},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"temp":null,"nested":{"rpm":null,"ok":1.5},"list":[null,2]}`, string(out))

	out, err = ValidateJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(out))
}
