package model

import "strings"

type Output struct {
	Current float64 `json:"current" yaml:"current"`
	Target  float64 `json:"target" yaml:"target"`
	Unit    string  `json:"unit" yaml:"unit"`
}

// EquipmentRecord is one production asset as shown on an equipment card.
type EquipmentRecord struct {
	ID              string          `json:"id" yaml:"id"`
	Name            string          `json:"name" yaml:"name"`
	Line            string          `json:"line" yaml:"line"`
	Status          EquipmentStatus `json:"status" yaml:"status"`
	Efficiency      float64         `json:"efficiency" yaml:"efficiency"`
	Output          Output          `json:"output" yaml:"output"`
	LastUpdate      string          `json:"last_update" yaml:"last_update"`
	AlertCount      int             `json:"alert_count" yaml:"alerts"`
	Operator        string          `json:"operator,omitempty" yaml:"operator"`
	NextMaintenance string          `json:"next_maintenance,omitempty" yaml:"next_maintenance"`
}

// EquipmentState is what the database knows about one machine. Nil
// fields were never reported and leave the snapshot's value alone.
type EquipmentState struct {
	ID            string
	Status        EquipmentStatus
	Efficiency    *float64
	OutputCurrent *float64
	OutputTarget  *float64
	AlertCount    *int
	LastUpdate    string
}

// NormalizeID folds an equipment id so "CNC-1", "cnc_1" and "cnc1" match.
func NormalizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ', '#':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(id)))
}
