// Package widget holds the shared visual components of the dashboard:
// status indicators, metric and equipment cards, the shop-floor blueprint
// and the page chrome. Everything here is a pure function of its inputs.
package widget

import (
	"fmt"

	"factorypulse/internal/model"
)

type Size string

const (
	SizeSmall  Size = "sm"
	SizeMedium Size = "md"
	SizeLarge  Size = "lg"
)

type statusStyle struct {
	token string
	hex   string
	label string
	pulse bool
}

// statusStyles is the single palette for every status-coloured widget.
var statusStyles = map[model.EquipmentStatus]statusStyle{
	model.Running:     {token: "equipment-running", hex: "#22c55e", label: "Running", pulse: true},
	model.Idle:        {token: "equipment-idle", hex: "#eab308", label: "Idle"},
	model.Down:        {token: "equipment-down", hex: "#ef4444", label: "Down", pulse: true},
	model.Maintenance: {token: "equipment-maintenance", hex: "#8b5cf6", label: "Maintenance"},
}

func styleOf(status model.EquipmentStatus) (statusStyle, error) {
	st, ok := statusStyles[status]
	if !ok {
		return statusStyle{}, fmt.Errorf("widget: %w: %q", model.ErrUnknownStatus, status.String())
	}
	return st, nil
}

// Indicator is a status dot with an optional label.
type Indicator struct {
	Status    model.EquipmentStatus `json:"status"`
	Color     string                `json:"color"`
	Hex       string                `json:"hex"`
	Label     string                `json:"label"`
	Pulse     bool                  `json:"pulse"`
	Size      Size                  `json:"size"`
	ShowLabel bool                  `json:"show_label"`
}

// IndicatorFor maps a status to its indicator. A non-empty label replaces
// the default one.
func IndicatorFor(status model.EquipmentStatus, label string) (Indicator, error) {
	st, err := styleOf(status)
	if err != nil {
		return Indicator{}, err
	}
	if label == "" {
		label = st.label
	}
	return Indicator{
		Status:    status,
		Color:     st.token,
		Hex:       st.hex,
		Label:     label,
		Pulse:     st.pulse,
		Size:      SizeMedium,
		ShowLabel: true,
	}, nil
}

func (i Indicator) WithSize(s Size) Indicator {
	i.Size = s
	return i
}

func (i Indicator) WithoutLabel() Indicator {
	i.ShowLabel = false
	return i
}

// DotClass is the size class of the dot.
func (i Indicator) DotClass() string {
	switch i.Size {
	case SizeSmall:
		return "dot-sm"
	case SizeLarge:
		return "dot-lg"
	default:
		return "dot-md"
	}
}

// StatusLabel returns the default label of a status.
func StatusLabel(status model.EquipmentStatus) (string, error) {
	st, err := styleOf(status)
	return st.label, err
}

// StatusHex returns the palette colour of a status.
func StatusHex(status model.EquipmentStatus) (string, error) {
	st, err := styleOf(status)
	return st.hex, err
}
