package model

import "fmt"

// MetricStatus selects the accent of a metric card.
type MetricStatus string

const (
	MetricSuccess  MetricStatus = "success"
	MetricWarning  MetricStatus = "warning"
	MetricCritical MetricStatus = "critical"
	MetricNeutral  MetricStatus = "neutral"
)

func (s *MetricStatus) UnmarshalText(b []byte) error {
	switch v := MetricStatus(b); v {
	case MetricSuccess, MetricWarning, MetricCritical, MetricNeutral:
		*s = v
	case "":
		*s = MetricNeutral
	default:
		return fmt.Errorf("unknown metric status %q", string(b))
	}
	return nil
}

// TrendDirection says whether a trend is good, bad or flat news.
type TrendDirection string

const (
	TrendPositive TrendDirection = "positive"
	TrendNegative TrendDirection = "negative"
	TrendNeutral  TrendDirection = "neutral"
)

func (d *TrendDirection) UnmarshalText(b []byte) error {
	switch v := TrendDirection(b); v {
	case TrendPositive, TrendNegative, TrendNeutral:
		*d = v
	default:
		return fmt.Errorf("unknown trend direction %q", string(b))
	}
	return nil
}

type Trend struct {
	Value     float64        `json:"value" yaml:"value"`
	Label     string         `json:"label" yaml:"label"`
	Direction TrendDirection `json:"direction" yaml:"direction"`
}

// MetricDisplay is the input of a metric card.
type MetricDisplay struct {
	Title  string       `json:"title"`
	Value  string       `json:"value"`
	Unit   string       `json:"unit,omitempty"`
	Trend  *Trend       `json:"trend,omitempty"`
	Status MetricStatus `json:"status"`
}

// StatusByThreshold grades value against two descending thresholds.
func StatusByThreshold(value, successAt, warningAt float64) MetricStatus {
	switch {
	case value >= successAt:
		return MetricSuccess
	case value >= warningAt:
		return MetricWarning
	default:
		return MetricCritical
	}
}
