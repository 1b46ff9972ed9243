package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStatus is returned for any status outside the four-way set.
var ErrUnknownStatus = errors.New("unknown equipment status")

// EquipmentStatus is the closed set of equipment states used for
// color-coding. Values can only be obtained from the package vars or
// ParseEquipmentStatus; the zero value means "unset".
type EquipmentStatus struct {
	name string
}

var (
	Running     = EquipmentStatus{name: "running"}
	Idle        = EquipmentStatus{name: "idle"}
	Down        = EquipmentStatus{name: "down"}
	Maintenance = EquipmentStatus{name: "maintenance"}
)

// AllStatuses returns the statuses in legend order.
func AllStatuses() []EquipmentStatus {
	return []EquipmentStatus{Running, Idle, Down, Maintenance}
}

func ParseEquipmentStatus(s string) (EquipmentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running":
		return Running, nil
	case "idle":
		return Idle, nil
	case "down":
		return Down, nil
	case "maintenance":
		return Maintenance, nil
	}
	return EquipmentStatus{}, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (s EquipmentStatus) String() string { return s.name }

func (s EquipmentStatus) IsZero() bool { return s.name == "" }

func (s EquipmentStatus) MarshalText() ([]byte, error) {
	return []byte(s.name), nil
}

func (s *EquipmentStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseEquipmentStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
