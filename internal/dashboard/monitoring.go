package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"factorypulse/internal/model"
	"factorypulse/internal/widget"
)

type LiveView struct {
	Overall   widget.Indicator   `json:"overall"`
	Metrics   []LiveMetricRow    `json:"metrics"`
	Equipment []LiveEquipmentRow `json:"equipment"`
	Network   []NetworkRow       `json:"network"`
	Events    []AlertRow         `json:"events"`
}

type LiveMetricRow struct {
	Indicator widget.Indicator `json:"indicator"`
	Label     string           `json:"label"`
	Value     string           `json:"value"`
	Target    string           `json:"target"`
}

type LiveEquipmentRow struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Indicator  widget.Indicator `json:"indicator"`
	Output     string           `json:"output"`
	Efficiency string           `json:"efficiency"`
	LastPing   string           `json:"last_ping"`
	PingTone   string           `json:"ping_tone"`
}

type NetworkRow struct {
	model.NetworkDevice
	Dot   string `json:"dot"`
	Badge string `json:"badge"`
}

func LiveStatus(s model.Snapshot) (Page, error) {
	l := s.Live
	overall, err := widget.IndicatorFor(l.Overall, "System Status")
	if err != nil {
		return Page{}, fmt.Errorf("live status: %w", err)
	}
	view := LiveView{Overall: overall, Events: alertRows(l.Events)}

	for _, m := range l.Metrics {
		ind, err := widget.IndicatorFor(m.Status, "")
		if err != nil {
			return Page{}, fmt.Errorf("live status metric %s: %w", m.Label, err)
		}
		view.Metrics = append(view.Metrics, LiveMetricRow{
			Indicator: ind.WithSize(widget.SizeSmall).WithoutLabel(),
			Label:     m.Label,
			Value:     m.Value,
			Target:    m.Target,
		})
	}
	for _, e := range l.Equipment {
		ind, err := widget.IndicatorFor(e.Status, "")
		if err != nil {
			return Page{}, fmt.Errorf("live status %s: %w", e.ID, err)
		}
		view.Equipment = append(view.Equipment, LiveEquipmentRow{
			ID:         e.ID,
			Name:       e.Name,
			Indicator:  ind.WithSize(widget.SizeSmall).WithoutLabel(),
			Output:     e.Output,
			Efficiency: widget.FormatPercent(e.Efficiency),
			LastPing:   e.LastPing + " ago",
			PingTone:   PingTone(e.LastPing),
		})
	}
	for _, n := range l.Network {
		row := NetworkRow{NetworkDevice: n, Dot: "bg-destructive", Badge: "badge-outline"}
		switch n.Status {
		case "Online":
			row.Dot, row.Badge = "bg-success", "badge-default"
		case "Warning":
			row.Dot = "bg-warning"
		}
		view.Network = append(view.Network, row)
	}
	return page("status", "/status", "Live System Status",
		"Real-time monitoring of all manufacturing systems and equipment", view), nil
}

// PingTone flags pings measured in minutes or hours as stale.
func PingTone(lastPing string) string {
	if strings.ContainsAny(lastPing, "mh") {
		return "text-warning"
	}
	return "text-success"
}

// AlertFilter selects which alerts the alert list shows.
type AlertFilter string

const (
	FilterAll            AlertFilter = ""
	FilterCritical       AlertFilter = "critical"
	FilterWarning        AlertFilter = "warning"
	FilterInfo           AlertFilter = "info"
	FilterUnacknowledged AlertFilter = "unacknowledged"
)

var ErrUnknownFilter = errors.New("unknown alert filter")

func ParseAlertFilter(s string) (AlertFilter, error) {
	switch f := AlertFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterCritical, FilterWarning, FilterInfo, FilterUnacknowledged:
		return f, nil
	case "all":
		return FilterAll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

func (f AlertFilter) match(a model.Alert) bool {
	switch f {
	case FilterAll:
		return true
	case FilterUnacknowledged:
		return !a.Acknowledged
	default:
		return string(a.Severity) == string(f)
	}
}

// FilterAlerts keeps the alerts matching f, in their original order.
func FilterAlerts(items []model.Alert, f AlertFilter) []model.Alert {
	out := make([]model.Alert, 0, len(items))
	for _, a := range items {
		if f.match(a) {
			out = append(out, a)
		}
	}
	return out
}

type AlertsView struct {
	Summary        []widget.MetricCard `json:"summary"`
	Filters        []FilterTab         `json:"filters"`
	Unacknowledged int                 `json:"unacknowledged"`
	Items          []AlertItem         `json:"items"`
}

type FilterTab struct {
	Label  string      `json:"label"`
	Filter AlertFilter `json:"filter"`
	Active bool        `json:"active"`
}

type AlertItem struct {
	model.Alert
	Badge  string `json:"badge"`
	Accent string `json:"accent"`
}

func Alerts(s model.Snapshot) (Page, error) {
	return FilteredAlerts(s, FilterAll)
}

// FilteredAlerts builds the alert page showing only the alerts matching f.
func FilteredAlerts(s model.Snapshot, f AlertFilter) (Page, error) {
	if _, err := ParseAlertFilter(string(f)); err != nil {
		return Page{}, err
	}
	sum := s.Alerts.Summary
	view := AlertsView{
		Summary: []widget.MetricCard{
			metric("Critical Alerts", float64(sum.Critical), "", nil, "", model.MetricCritical),
			metric("Warning Alerts", float64(sum.Warning), "", nil, "", model.MetricWarning),
			metric("Info Alerts", float64(sum.Info), "", nil, "", model.MetricNeutral),
			metric("Total Active", float64(sum.Total), "", nil, "", model.MetricNeutral),
		},
		Unacknowledged: s.Alerts.Unacknowledged(),
	}
	for _, tab := range []FilterTab{
		{Label: fmt.Sprintf("All (%d)", sum.Total), Filter: FilterAll},
		{Label: fmt.Sprintf("Critical (%d)", sum.Critical), Filter: FilterCritical},
		{Label: fmt.Sprintf("Warnings (%d)", sum.Warning), Filter: FilterWarning},
		{Label: fmt.Sprintf("Info (%d)", sum.Info), Filter: FilterInfo},
		{Label: "Unacknowledged", Filter: FilterUnacknowledged},
	} {
		tab.Active = tab.Filter == f
		view.Filters = append(view.Filters, tab)
	}

	for _, a := range FilterAlerts(s.Alerts.Items, f) {
		item := AlertItem{Alert: a, Badge: severityBadge(a.Severity)}
		if !a.Acknowledged {
			switch a.Severity {
			case model.SeverityCritical:
				item.Accent = "border-l-destructive"
			case model.SeverityWarning:
				item.Accent = "border-l-warning"
			default:
				item.Accent = "border-l-primary"
			}
		}
		view.Items = append(view.Items, item)
	}
	return page("alerts", "/alerts", "Alert Management",
		"Real-time monitoring and alert response system", view), nil
}

// MonthlyScaleHours is the full width of a monthly downtime bar.
const MonthlyScaleHours = 25

type DowntimeView struct {
	Metrics    []widget.MetricCard `json:"metrics"`
	Events     []DowntimeRow       `json:"events"`
	Categories []DowntimeBar       `json:"categories"`
	Monthly    []MonthRow          `json:"monthly"`
	MTTR       string              `json:"mttr"`
	MTBF       string              `json:"mtbf"`
}

type DowntimeRow struct {
	model.DowntimeEvent
	Active      bool   `json:"active"`
	TypeBadge   string `json:"type_badge"`
	StatusBadge string `json:"status_badge"`
	ImpactBadge string `json:"impact_badge"`
}

type DowntimeBar struct {
	Category   string     `json:"category"`
	Hours      string     `json:"hours"`
	Percentage string     `json:"percentage"`
	Bar        widget.Bar `json:"bar"`
}

type MonthRow struct {
	Month     string     `json:"month"`
	Total     string     `json:"total"`
	Planned   string     `json:"planned"`
	Unplanned string     `json:"unplanned"`
	PlanBar   widget.Bar `json:"plan_bar"`
	UnplanBar widget.Bar `json:"unplan_bar"`
}

func Downtime(s model.Snapshot) (Page, error) {
	d := s.Downtime
	view := DowntimeView{
		Metrics: []widget.MetricCard{
			metric("Total Downtime", d.TotalHours, "hrs", d.Trends, "total", model.MetricWarning),
			metric("Planned Downtime", d.PlannedHours, "hrs", d.Trends, "planned", model.MetricNeutral),
			metric("Unplanned Downtime", d.UnplannedHours, "hrs", d.Trends, "unplanned", model.MetricCritical),
			metric("Equipment Availability", d.Availability, "%", d.Trends, "availability", model.MetricSuccess),
		},
		MTTR: widget.FormatNumber(s.Maintenance.MTTR) + " hours",
		MTBF: widget.FormatNumber(s.Maintenance.MTBF) + " hours",
	}

	for _, e := range d.Events {
		row := DowntimeRow{DowntimeEvent: e, Active: e.Status == "Active", TypeBadge: "badge-destructive", StatusBadge: "badge-secondary", ImpactBadge: "badge-secondary"}
		if e.Type == "Planned" {
			row.TypeBadge = "badge-default"
		}
		if row.Active {
			row.StatusBadge = "badge-destructive"
		}
		switch e.Impact {
		case "High":
			row.ImpactBadge = "badge-destructive"
		case "Medium":
			row.ImpactBadge = "badge-outline"
		}
		view.Events = append(view.Events, row)
	}
	for _, c := range d.Categories {
		view.Categories = append(view.Categories, DowntimeBar{
			Category:   c.Category,
			Hours:      widget.FormatNumber(c.Hours) + "h",
			Percentage: widget.FormatPercent(c.Percentage),
			Bar:        percentBar(c.Percentage, c.Tone),
		})
	}
	for _, m := range d.Monthly {
		view.Monthly = append(view.Monthly, MonthRow{
			Month:     m.Month,
			Total:     widget.FormatNumber(m.Planned+m.Unplanned) + "h total",
			Planned:   widget.FormatNumber(m.Planned) + "h",
			Unplanned: widget.FormatNumber(m.Unplanned) + "h",
			PlanBar:   ratioBar(m.Planned, MonthlyScaleHours, "bg-primary"),
			UnplanBar: ratioBar(m.Unplanned, MonthlyScaleHours, "bg-destructive"),
		})
	}
	return page("downtime", "/downtime", "Downtime Analysis",
		"Equipment downtime tracking and root cause analysis", view), nil
}
