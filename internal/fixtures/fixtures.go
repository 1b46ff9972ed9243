// Package fixtures provides the baseline factory snapshot the dashboard
// starts from before any live source reports in.
package fixtures

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"factorypulse/internal/model"
)

//go:embed factory.yaml
var factoryYAML []byte

// Load parses the embedded baseline snapshot.
func Load() (model.Snapshot, error) {
	return Parse(bytes.NewReader(factoryYAML))
}

// LoadFile parses a snapshot from disk, for sites that ship their own.
func LoadFile(path string) (model.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a snapshot, rejecting unknown fields and statuses.
func Parse(r io.Reader) (model.Snapshot, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var snap model.Snapshot
	if err := dec.Decode(&snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := validate(snap); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// validate catches records whose status was omitted, which the decoder
// cannot see.
func validate(s model.Snapshot) error {
	check := func(where, id string, st model.EquipmentStatus) error {
		if st.IsZero() {
			return fmt.Errorf("fixtures: %s %q: %w", where, id, model.ErrUnknownStatus)
		}
		return nil
	}
	for _, r := range s.Mission.Equipment {
		if err := check("mission_control.equipment", r.ID, r.Status); err != nil {
			return err
		}
	}
	for _, r := range s.ShopFloor.Equipment {
		if err := check("shop_floor.equipment", r.ID, r.Status); err != nil {
			return err
		}
	}
	for _, r := range s.Live.Equipment {
		if err := check("live_status.equipment", r.ID, r.Status); err != nil {
			return err
		}
	}
	for _, m := range s.Live.Metrics {
		if err := check("live_status.metrics", m.Label, m.Status); err != nil {
			return err
		}
	}
	return check("live_status", "overall", s.Live.Overall)
}
