package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrNonFinite rejects NaN and infinite readings, which no card can show.
var ErrNonFinite = errors.New("non-finite number")

var ErrNegativeCount = errors.New("negative count")

// FlexFloat accepts both JSON numbers and numeric strings; PLC gateways
// send either.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = FlexFloat(n)
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("FlexFloat: cannot unmarshal %s", string(b))
	}
	n, err := strconv.ParseFloat(str, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("FlexFloat: cannot parse %q to float64", str)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("FlexFloat %q: %w", str, ErrNonFinite)
	}
	*f = FlexFloat(n)
	return nil
}

// Ptr is a convenience for optional numeric fields.
func (f FlexFloat) Ptr() *FlexFloat { return &f }

var errMissingEquipmentID = errors.New("status event: equipment_id is required")

// UnmarshalJSON resolves the equipment id from equipment_id, device_id or
// machine_id (in that order) and keeps unknown fields in Data.
func (e *StatusEvent) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*e = StatusEvent{Data: make(map[string]any)}
	var deviceID, machineID string

	for k, v := range raw {
		switch k {
		case "equipment_id":
			e.EquipmentID, _ = v.(string)
		case "device_id":
			deviceID, _ = v.(string)
		case "machine_id":
			machineID, _ = v.(string)
		case "status":
			s, _ := v.(string)
			status, err := ParseEquipmentStatus(s)
			if err != nil {
				return fmt.Errorf("status event: %w", err)
			}
			e.Status = status
		case "efficiency", "output_current":
			f, err := parseFlexFloat(v)
			if err != nil {
				return fmt.Errorf("status event: %s: %w", k, err)
			}
			if k == "efficiency" {
				e.Efficiency = f
			} else {
				e.OutputCurrent = f
			}
		case "alert_count":
			f, err := parseFlexFloat(v)
			if err != nil {
				return fmt.Errorf("status event: alert_count: %w", err)
			}
			if f != nil {
				if *f < 0 {
					return fmt.Errorf("status event: alert_count %v: %w", float64(*f), ErrNegativeCount)
				}
				n := int(*f)
				e.AlertCount = &n
			}
		case "timestamp":
			if s, ok := v.(string); ok {
				ts, err := time.Parse(time.RFC3339, s)
				if err != nil {
					return fmt.Errorf("status event: timestamp: %w", err)
				}
				e.Timestamp = ts
			}
		case "data":
			if m, ok := v.(map[string]any); ok {
				for dk, dv := range m {
					e.Data[dk] = dv
				}
			}
		default:
			e.Data[k] = v
		}
	}

	if e.EquipmentID == "" {
		e.EquipmentID = deviceID
	}
	if e.EquipmentID == "" {
		e.EquipmentID = machineID
	}
	if e.EquipmentID == "" {
		return errMissingEquipmentID
	}
	if e.Status.IsZero() {
		return fmt.Errorf("status event %s: %w", e.EquipmentID, ErrUnknownStatus)
	}
	return nil
}

// parseFlexFloat reads a number or numeric string. Unparseable values are
// treated as absent; NaN and infinities are errors.
func parseFlexFloat(v any) (*FlexFloat, error) {
	var n float64
	switch val := v.(type) {
	case float64:
		n = val
	case string:
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, nil
		}
		n = parsed
	default:
		return nil, nil
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("%v: %w", v, ErrNonFinite)
	}
	return FlexFloat(n).Ptr(), nil
}
