package widget

import (
	"strconv"

	"factorypulse/internal/model"
)

// CardStyle is the accent of a metric card.
type CardStyle struct {
	Border     string `json:"border"`
	Background string `json:"background"`
}

// StyleFor returns the accent for a metric status. Anything unset is neutral.
func StyleFor(status model.MetricStatus) CardStyle {
	switch status {
	case model.MetricSuccess:
		return CardStyle{Border: "border-success", Background: "bg-success-soft"}
	case model.MetricWarning:
		return CardStyle{Border: "border-warning", Background: "bg-warning-soft"}
	case model.MetricCritical:
		return CardStyle{Border: "border-destructive", Background: "bg-destructive-soft"}
	default:
		return CardStyle{Border: "border-primary", Background: "bg-primary-soft"}
	}
}

type TrendStyle struct {
	Arrow string `json:"arrow"`
	Color string `json:"color"`
}

func TrendStyleFor(dir model.TrendDirection) TrendStyle {
	switch dir {
	case model.TrendPositive:
		return TrendStyle{Arrow: "↗", Color: "text-success"}
	case model.TrendNegative:
		return TrendStyle{Arrow: "↘", Color: "text-destructive"}
	default:
		return TrendStyle{Arrow: "→", Color: "text-muted-foreground"}
	}
}

type TrendBadge struct {
	TrendStyle
	Value string `json:"value"`
	Label string `json:"label"`
}

type MetricCard struct {
	Title string      `json:"title"`
	Value string      `json:"value"`
	Unit  string      `json:"unit,omitempty"`
	Style CardStyle   `json:"style"`
	Trend *TrendBadge `json:"trend,omitempty"`
}

func NewMetricCard(d model.MetricDisplay) MetricCard {
	card := MetricCard{
		Title: d.Title,
		Value: d.Value,
		Unit:  d.Unit,
		Style: StyleFor(d.Status),
	}
	if d.Trend != nil {
		card.Trend = &TrendBadge{
			TrendStyle: TrendStyleFor(d.Trend.Direction),
			Value:      strconv.FormatFloat(d.Trend.Value, 'f', -1, 64) + "%",
			Label:      d.Trend.Label,
		}
	}
	return card
}
