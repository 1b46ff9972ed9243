package widget

import (
	"fmt"
	"strconv"

	"factorypulse/internal/model"
)

// Bar is a rendered progress bar.
type Bar struct {
	Percent float64 `json:"percent"`
	Valid   bool    `json:"valid"`
	Tone    string  `json:"tone"`
}

// Width is the CSS width of the filled part.
func (b Bar) Width() string {
	return strconv.FormatFloat(b.Percent, 'f', 1, 64) + "%"
}

// NewBar turns a progress value into a bar with a neutral tone.
func NewBar(p model.Progress) Bar {
	return Bar{Percent: p.Percent, Valid: p.Valid, Tone: "bg-primary"}
}

// EfficiencyTone colours an efficiency figure: >=85 good, >=70 fair.
func EfficiencyTone(efficiency float64) string {
	switch {
	case efficiency >= 85:
		return "bg-success"
	case efficiency >= 70:
		return "bg-warning"
	default:
		return "bg-destructive"
	}
}

type EquipmentCard struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Line            string    `json:"line"`
	Indicator       Indicator `json:"indicator"`
	Efficiency      float64   `json:"efficiency"`
	EfficiencyBar   Bar       `json:"efficiency_bar"`
	OutputText      string    `json:"output_text"`
	OutputBar       Bar       `json:"output_bar"`
	LastUpdate      string    `json:"last_update"`
	AlertBadge      string    `json:"alert_badge,omitempty"`
	Operator        string    `json:"operator,omitempty"`
	NextMaintenance string    `json:"next_maintenance,omitempty"`
}

// NewEquipmentCard builds the card for one record. The output bar is
// marked invalid rather than drawn when the target is not positive.
func NewEquipmentCard(r model.EquipmentRecord) (EquipmentCard, error) {
	ind, err := IndicatorFor(r.Status, "")
	if err != nil {
		return EquipmentCard{}, fmt.Errorf("equipment %s: %w", r.ID, err)
	}

	eff := model.PercentProgress(r.Efficiency)
	effBar := NewBar(eff)
	effBar.Tone = EfficiencyTone(r.Efficiency)

	return EquipmentCard{
		ID:              r.ID,
		Name:            r.Name,
		Line:            r.Line,
		Indicator:       ind,
		Efficiency:      r.Efficiency,
		EfficiencyBar:   effBar,
		OutputText:      fmt.Sprintf("%s/%s %s", FormatNumber(r.Output.Current), FormatNumber(r.Output.Target), r.Output.Unit),
		OutputBar:       NewBar(model.NewProgress(r.Output.Current, r.Output.Target)),
		LastUpdate:      r.LastUpdate,
		AlertBadge:      AlertBadge(r.AlertCount),
		Operator:        r.Operator,
		NextMaintenance: r.NextMaintenance,
	}, nil
}

// AlertBadge pluralises the alert count; zero alerts show no badge.
func AlertBadge(n int) string {
	switch {
	case n <= 0:
		return ""
	case n == 1:
		return "1 Alert"
	default:
		return strconv.Itoa(n) + " Alerts"
	}
}
