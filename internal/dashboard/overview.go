package dashboard

import (
	"fmt"
	"strings"

	"factorypulse/internal/model"
	"factorypulse/internal/widget"
)

type MissionView struct {
	Metrics   []widget.MetricCard    `json:"metrics"`
	Equipment []widget.EquipmentCard `json:"equipment"`
	Alerts    []AlertRow             `json:"alerts"`
	Summary   SummaryView            `json:"summary"`
}

// SummaryView is the "Today's Summary" panel.
type SummaryView struct {
	ShiftBar       widget.Bar `json:"shift_bar"`
	ShiftText      string     `json:"shift_text"`
	ProductionBar  widget.Bar `json:"production_bar"`
	ProductionText string     `json:"production_text"`
	Energy         string     `json:"energy"`
	Operators      string     `json:"operators"`
	Orders         string     `json:"orders"`
}

func MissionControl(s model.Snapshot) (Page, error) {
	m := s.Mission
	prodStatus := model.MetricWarning
	if m.Production.Current >= m.Production.Target*0.9 {
		prodStatus = model.MetricSuccess
	}
	uptimeStatus := model.MetricWarning
	if m.Uptime >= 95 {
		uptimeStatus = model.MetricSuccess
	}

	equipment, err := equipmentCards(m.Equipment)
	if err != nil {
		return Page{}, fmt.Errorf("mission control: %w", err)
	}

	view := MissionView{
		Metrics: []widget.MetricCard{
			metric("Overall OEE", m.OEE, "%", m.Trends, "oee", model.StatusByThreshold(m.OEE, 85, 75)),
			metric("Production Output", m.Production.Current, m.Production.Unit, m.Trends, "production", prodStatus),
			metric("Efficiency", m.Efficiency, "%", m.Trends, "efficiency", model.MetricSuccess),
			metric("Quality Rate", m.Quality, "%", m.Trends, "quality", model.MetricSuccess),
			metric("Uptime", m.Uptime, "%", m.Trends, "uptime", uptimeStatus),
		},
		Equipment: equipment,
		Alerts:    alertRows(m.CriticalAlerts),
		Summary: SummaryView{
			ShiftBar:       ratioBar(m.Summary.ElapsedMinutes, m.Summary.LengthMinutes, ""),
			ShiftText:      fmt.Sprintf("%s / %s", minutesText(m.Summary.ElapsedMinutes), minutesText(m.Summary.LengthMinutes)),
			ProductionBar:  ratioBar(m.Production.Current, m.Production.Target, "bg-success"),
			ProductionText: fmt.Sprintf("%s / %s", widget.FormatNumber(m.Production.Current), widget.FormatNumber(m.Production.Target)),
			Energy:         widget.FormatNumber(m.Summary.EnergyKWh) + " kWh",
			Operators:      countText(m.Summary.Operators),
			Orders:         countText(m.Summary.Orders),
		},
	}
	return page("mission-control", "/", "Mission Control",
		"Real-time manufacturing overview and critical operations monitoring", view), nil
}

// minutesText renders 383 as "6h 23m" and 480 as "8h".
func minutesText(min float64) string {
	total := int(min)
	h, m := total/60, total%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

func countText(c model.Count) string {
	return fmt.Sprintf("%d / %d", c.Current, c.Total)
}

type ShopFloorView struct {
	Blueprint  widget.Blueprint       `json:"blueprint"`
	Equipment  []widget.EquipmentCard `json:"equipment"`
	WorkOrders []WorkOrderRow         `json:"work_orders"`
}

type WorkOrderRow struct {
	model.WorkOrder
	Badge string `json:"badge"`
}

func ShopFloor(s model.Snapshot) (Page, error) {
	bp, err := widget.NewBlueprint(widget.DefaultPlacements(), s.Floor)
	if err != nil {
		return Page{}, fmt.Errorf("shop floor: %w", err)
	}
	equipment, err := equipmentCards(s.ShopFloor.Equipment)
	if err != nil {
		return Page{}, fmt.Errorf("shop floor: %w", err)
	}

	orders := make([]WorkOrderRow, 0, len(s.ShopFloor.WorkOrders))
	for _, wo := range s.ShopFloor.WorkOrders {
		badge := "badge-outline"
		switch wo.Status {
		case "In Progress":
			badge = "badge-default"
		case "Completed":
			badge = "badge-secondary"
		}
		orders = append(orders, WorkOrderRow{WorkOrder: wo, Badge: badge})
	}

	view := ShopFloorView{Blueprint: bp, Equipment: equipment, WorkOrders: orders}
	return page("shop-floor", "/shop-floor", "Shop Floor Control",
		"Real-time equipment monitoring and operator interface", view), nil
}

// OEEView carries Derived, availability x performance x quality, next to
// the reported overall figure.
type OEEView struct {
	Metrics []widget.MetricCard `json:"metrics"`
	Derived float64             `json:"derived"`
	Lines   []LineOEERow        `json:"lines"`
	Reasons []ReasonRow         `json:"reasons"`
	Targets []TargetRow         `json:"targets"`
}

type LineOEERow struct {
	Name         string     `json:"name"`
	Overall      string     `json:"overall"`
	Tone         string     `json:"tone"`
	Availability widget.Bar `json:"availability"`
	Performance  widget.Bar `json:"performance"`
	Quality      widget.Bar `json:"quality"`
}

type ReasonRow struct {
	Reason  string     `json:"reason"`
	Minutes string     `json:"minutes"`
	Bar     widget.Bar `json:"bar"`
}

type TargetRow struct {
	Period  string     `json:"period"`
	Actual  string     `json:"actual"`
	Target  string     `json:"target"`
	Percent string     `json:"percent"`
	Bar     widget.Bar `json:"bar"`
}

// DerivedOEE multiplies the three OEE factors, each given in percent.
func DerivedOEE(availability, performance, quality float64) float64 {
	return availability * performance * quality / 10000
}

func OEEAnalytics(s model.Snapshot) (Page, error) {
	o := s.OEE
	passFail := func(v, at float64) model.MetricStatus {
		if v >= at {
			return model.MetricSuccess
		}
		return model.MetricWarning
	}

	view := OEEView{
		Metrics: []widget.MetricCard{
			metric("Overall OEE", o.Overall, "%", o.Trends, "overall", model.StatusByThreshold(o.Overall, 85, 75)),
			metric("Availability", o.Availability, "%", o.Trends, "availability", passFail(o.Availability, 90)),
			metric("Performance", o.Performance, "%", o.Trends, "performance", passFail(o.Performance, 85)),
			metric("Quality", o.Quality, "%", o.Trends, "quality", passFail(o.Quality, 95)),
		},
		Derived: DerivedOEE(o.Availability, o.Performance, o.Quality),
	}

	for _, l := range o.Lines {
		tone := "text-warning"
		if l.Overall >= 85 {
			tone = "text-success"
		}
		view.Lines = append(view.Lines, LineOEERow{
			Name:         l.Name,
			Overall:      widget.FormatPercent(l.Overall),
			Tone:         tone,
			Availability: percentBar(l.Availability, ""),
			Performance:  percentBar(l.Performance, ""),
			Quality:      percentBar(l.Quality, ""),
		})
	}
	for _, r := range o.DowntimeReasons {
		view.Reasons = append(view.Reasons, ReasonRow{
			Reason:  r.Reason,
			Minutes: widget.FormatNumber(r.Minutes) + " min",
			Bar:     percentBar(r.Percentage, "bg-destructive"),
		})
	}
	for _, t := range o.Targets {
		view.Targets = append(view.Targets, TargetRow{
			Period:  t.Period,
			Actual:  widget.FormatNumber(t.Actual),
			Target:  widget.FormatNumber(t.Target),
			Percent: ratioText(t.Actual, t.Target),
			Bar:     ratioBar(t.Actual, t.Target, ""),
		})
	}
	return page("oee", "/oee", "OEE Analytics",
		"Overall Equipment Effectiveness analysis and performance metrics", view), nil
}

type ProductionView struct {
	Metrics []widget.MetricCard `json:"metrics"`
	Shifts  []ShiftRow          `json:"shifts"`
	Lines   []LineRow           `json:"lines"`
	Hourly  []HourRow           `json:"hourly"`
}

type ShiftRow struct {
	Name         string     `json:"name"`
	Current      bool       `json:"current"`
	Target       string     `json:"target"`
	Actual       string     `json:"actual"`
	Variance     string     `json:"variance"`
	VarianceTone string     `json:"variance_tone"`
	Efficiency   string     `json:"efficiency"`
	Badge        string     `json:"badge"`
	Bar          widget.Bar `json:"bar"`
}

type LineRow struct {
	Line       string `json:"line"`
	Output     string `json:"output"`
	Status     string `json:"status"`
	Badge      string `json:"badge"`
	Efficiency string `json:"efficiency"`
}

type HourRow struct {
	Hour string     `json:"hour"`
	Text string     `json:"text"`
	Bar  widget.Bar `json:"bar"`
}

func DailyProduction(s model.Snapshot) (Page, error) {
	p := s.Production
	actualStatus := model.MetricWarning
	if p.Actual >= p.Target*0.9 {
		actualStatus = model.MetricSuccess
	}
	effStatus := model.MetricWarning
	if p.Efficiency >= 85 {
		effStatus = model.MetricSuccess
	}

	current, currentStatus := "None", model.MetricNeutral
	for _, sh := range p.Shifts {
		if sh.Current {
			current = strings.TrimSuffix(sh.Name, " Shift")
			currentStatus = model.MetricWarning
			if sh.Efficiency >= 85 {
				currentStatus = model.MetricSuccess
			}
		}
	}

	view := ProductionView{
		Metrics: []widget.MetricCard{
			metric("Daily Target", p.Target, "units", nil, "", model.MetricNeutral),
			metric("Actual Output", p.Actual, "units", p.Trends, "actual", actualStatus),
			metric("Overall Efficiency", p.Efficiency, "%", p.Trends, "efficiency", effStatus),
			textMetric("Current Shift", current, "", p.Trends, "shift", currentStatus),
		},
	}

	for _, sh := range p.Shifts {
		row := ShiftRow{
			Name:       sh.Name,
			Current:    sh.Current,
			Target:     widget.FormatNumber(sh.Target),
			Actual:     widget.FormatNumber(sh.Actual),
			Efficiency: widget.FormatPercent(sh.Efficiency),
			Bar:        ratioBar(sh.Actual, sh.Target, ""),
		}
		diff := sh.Actual - sh.Target
		if diff >= 0 {
			row.Variance, row.VarianceTone = "+"+widget.FormatNumber(diff), "text-success"
		} else {
			row.Variance, row.VarianceTone = widget.FormatNumber(diff), "text-destructive"
		}
		switch {
		case sh.Efficiency >= 100:
			row.Badge = "badge-default"
		case sh.Efficiency >= 85:
			row.Badge = "badge-secondary"
		default:
			row.Badge = "badge-destructive"
		}
		view.Shifts = append(view.Shifts, row)
	}

	for _, l := range p.Lines {
		badge := "badge-destructive"
		switch l.Status {
		case "Ahead":
			badge = "badge-default"
		case "On Track":
			badge = "badge-secondary"
		}
		view.Lines = append(view.Lines, LineRow{
			Line:       l.Line,
			Output:     fmt.Sprintf("%s / %s units", widget.FormatNumber(l.Actual), widget.FormatNumber(l.Target)),
			Status:     l.Status,
			Badge:      badge,
			Efficiency: widget.FormatPercent(l.Efficiency),
		})
	}

	for _, h := range p.Hourly {
		view.Hourly = append(view.Hourly, HourRow{
			Hour: h.Hour,
			Text: fmt.Sprintf("%s/%s", widget.FormatNumber(h.Actual), widget.FormatNumber(h.Target)),
			Bar:  ratioBar(h.Actual, h.Target, ""),
		})
	}
	return page("production", "/production", "Daily Production",
		"Shift performance tracking and production targets", view), nil
}
