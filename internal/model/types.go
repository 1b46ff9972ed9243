package model

import "time"

// StatusEvent is one equipment status change reported by the plant floor.
type StatusEvent struct {
	EquipmentID   string          `json:"equipment_id"`
	Status        EquipmentStatus `json:"status"`
	Efficiency    *FlexFloat      `json:"efficiency,omitempty"`
	OutputCurrent *FlexFloat      `json:"output_current,omitempty"`
	AlertCount    *int            `json:"alert_count,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	Data          map[string]any  `json:"data,omitempty"`
}

// KafkaWrapper is the envelope some gateways put around the event JSON.
type KafkaWrapper struct {
	Payload string `json:"payload"`
}
