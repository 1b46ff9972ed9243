package dashboard

import (
	"strconv"

	"factorypulse/internal/model"
	"factorypulse/internal/widget"
)

type InventoryView struct {
	Metrics    []widget.MetricCard `json:"metrics"`
	Critical   []StockRow          `json:"critical"`
	Categories []CategoryRow       `json:"categories"`
	Movements  []MovementRow       `json:"movements"`
}

// StockRow draws the stock level against the maximum, with a marker at
// the reorder minimum. Both are guarded against a zero maximum.
type StockRow struct {
	Name     string     `json:"name"`
	Location string     `json:"location"`
	Status   string     `json:"status"`
	Badge    string     `json:"badge"`
	Current  string     `json:"current"`
	Level    widget.Bar `json:"level"`
	Minimum  widget.Bar `json:"minimum"`
	Min      string     `json:"min"`
	Max      string     `json:"max"`
}

type CategoryRow struct {
	Name     string     `json:"name"`
	Count    string     `json:"count"`
	Value    string     `json:"value"`
	Turnover widget.Bar `json:"turnover"`
}

type MovementRow struct {
	model.StockMovement
	QuantityText string `json:"quantity_text"`
	Dot          string `json:"dot"`
}

func Inventory(s model.Snapshot) (Page, error) {
	inv := s.Inventory
	view := InventoryView{
		Metrics: []widget.MetricCard{
			metric("Total Items", float64(inv.TotalItems), "", inv.Trends, "total_items", model.MetricNeutral),
			metric("Low Stock Items", float64(inv.LowStock), "", inv.Trends, "low_stock", model.MetricWarning),
			metric("Out of Stock", float64(inv.OutOfStock), "", inv.Trends, "out_of_stock", model.MetricCritical),
			metric("In Transit", float64(inv.InTransit), "", inv.Trends, "in_transit", model.MetricNeutral),
		},
	}

	for _, it := range inv.Critical {
		badge := "badge-outline"
		if it.Status == "Critical" {
			badge = "badge-destructive"
		}
		view.Critical = append(view.Critical, StockRow{
			Name:     it.Name,
			Location: it.Location,
			Status:   it.Status,
			Badge:    badge,
			Current:  widget.FormatNumber(it.Current) + " units",
			Level:    ratioBar(it.Current, it.Maximum, ""),
			Minimum:  ratioBar(it.Minimum, it.Maximum, "bg-warning"),
			Min:      widget.FormatNumber(it.Minimum),
			Max:      widget.FormatNumber(it.Maximum),
		})
	}
	for _, c := range inv.Categories {
		view.Categories = append(view.Categories, CategoryRow{
			Name:     c.Name,
			Count:    strconv.Itoa(c.Count) + " items",
			Value:    widget.FormatCurrency(c.Value),
			Turnover: percentBar(c.Turnover, ""),
		})
	}
	for _, mv := range inv.Movements {
		row := MovementRow{StockMovement: mv, QuantityText: "-" + strconv.Itoa(mv.Quantity), Dot: "bg-warning"}
		if mv.Type == "IN" {
			row.QuantityText, row.Dot = "+"+strconv.Itoa(mv.Quantity), "bg-success"
		}
		view.Movements = append(view.Movements, row)
	}
	return page("inventory", "/inventory", "Inventory Management",
		"Real-time stock levels and material flow tracking", view), nil
}

type QualityView struct {
	Metrics     []widget.MetricCard `json:"metrics"`
	Tests       []TestRow           `json:"tests"`
	Defects     []DefectRow         `json:"defects"`
	Inspections []InspectionRow     `json:"inspections"`
	Compliance  []ComplianceRow     `json:"compliance"`
}

type TestRow struct {
	model.QualityTest
	Badge string     `json:"badge"`
	Bar   widget.Bar `json:"bar"`
}

type DefectRow struct {
	model.DefectCategory
	Bar       widget.Bar `json:"bar"`
	TrendText string     `json:"trend_text"`
	TrendTone string     `json:"trend_tone"`
}

type InspectionRow struct {
	model.Inspection
	Badge string `json:"badge"`
	Pass  bool   `json:"pass"`
}

type ComplianceRow struct {
	model.ComplianceCheck
	Bar widget.Bar `json:"bar"`
}

func QualityControl(s model.Snapshot) (Page, error) {
	q := s.Quality
	view := QualityView{
		Metrics: []widget.MetricCard{
			metric("First Pass Yield", q.FirstPassYield, "%", q.Trends, "first_pass_yield", model.MetricSuccess),
			metric("Defect Rate", q.DefectRate, "%", q.Trends, "defect_rate", model.MetricSuccess),
			metric("Customer Complaints", float64(q.CustomerComplaints), "", q.Trends, "customer_complaints", model.MetricSuccess),
			metric("Quality Score", q.QualityScore, "%", q.Trends, "quality_score", model.MetricSuccess),
		},
	}

	for _, t := range q.Tests {
		badge := "badge-secondary"
		if t.Status == "Excellent" {
			badge = "badge-default"
		}
		view.Tests = append(view.Tests, TestRow{QualityTest: t, Badge: badge, Bar: percentBar(t.Rate, "")})
	}
	for _, d := range q.Defects {
		row := DefectRow{DefectCategory: d, Bar: percentBar(d.Percentage, "bg-destructive"), TrendTone: "text-success"}
		row.TrendText = strconv.FormatFloat(d.Trend, 'f', -1, 64) + "%"
		if d.Trend > 0 {
			row.TrendText = "+" + row.TrendText
			row.TrendTone = "text-destructive"
		}
		view.Defects = append(view.Defects, row)
	}
	for _, in := range q.Inspections {
		row := InspectionRow{Inspection: in, Badge: "badge-destructive"}
		if in.Result == "Pass" {
			row.Badge, row.Pass = "badge-default", true
		}
		view.Inspections = append(view.Inspections, row)
	}
	for _, c := range q.Compliance {
		view.Compliance = append(view.Compliance, ComplianceRow{ComplianceCheck: c, Bar: percentBar(c.Compliance, "bg-success")})
	}
	return page("quality", "/quality", "Quality Control",
		"Quality assurance monitoring and compliance tracking", view), nil
}

type MaintenanceView struct {
	Metrics   []widget.MetricCard `json:"metrics"`
	Tasks     []TaskRow           `json:"tasks"`
	Health    []HealthRow         `json:"health"`
	Recent    []WorkRow           `json:"recent"`
	TotalCost string              `json:"total_cost"`
}

type TaskRow struct {
	model.MaintenanceTask
	StatusBadge   string `json:"status_badge"`
	PriorityBadge string `json:"priority_badge"`
}

type HealthRow struct {
	model.EquipmentHealth
	Bar        widget.Bar `json:"bar"`
	AlertBadge string     `json:"alert_badge,omitempty"`
	Overdue    bool       `json:"overdue"`
}

type WorkRow struct {
	model.WorkRecord
	CostText string `json:"cost_text"`
}

func Maintenance(s model.Snapshot) (Page, error) {
	m := s.Maintenance
	view := MaintenanceView{
		Metrics: []widget.MetricCard{
			metric("Planned Tasks", float64(m.Planned), "", m.Trends, "planned", model.MetricNeutral),
			metric("Overdue Tasks", float64(m.Overdue), "", m.Trends, "overdue", model.MetricCritical),
			metric("Upcoming (7 days)", float64(m.Upcoming), "", m.Trends, "upcoming", model.MetricWarning),
			metric("MTBF", m.MTBF, "hrs", m.Trends, "mtbf", model.MetricSuccess),
			metric("MTTR", m.MTTR, "hrs", m.Trends, "mttr", model.MetricSuccess),
		},
	}

	for _, t := range m.Tasks {
		row := TaskRow{MaintenanceTask: t, StatusBadge: "badge-outline", PriorityBadge: "badge-secondary"}
		switch t.Status {
		case "Overdue":
			row.StatusBadge = "badge-destructive"
		case "In Progress":
			row.StatusBadge = "badge-default"
		case "Scheduled":
			row.StatusBadge = "badge-secondary"
		}
		switch t.Priority {
		case "Critical":
			row.PriorityBadge = "badge-destructive"
		case "High":
			row.PriorityBadge = "badge-outline"
		}
		view.Tasks = append(view.Tasks, row)
	}
	for _, h := range m.Health {
		tone := "bg-success"
		switch {
		case h.Health < 60:
			tone = "bg-destructive"
		case h.Health < 80:
			tone = "bg-warning"
		}
		view.Health = append(view.Health, HealthRow{
			EquipmentHealth: h,
			Bar:             percentBar(h.Health, tone),
			AlertBadge:      widget.AlertBadge(h.Alerts),
			Overdue:         h.NextDue == "Overdue",
		})
	}
	var total float64
	for _, w := range m.Recent {
		total += w.Cost
		view.Recent = append(view.Recent, WorkRow{WorkRecord: w, CostText: widget.FormatCurrency(w.Cost)})
	}
	view.TotalCost = widget.FormatCurrency(total)
	return page("maintenance", "/maintenance", "Maintenance Management",
		"Preventive maintenance scheduling and equipment health monitoring", view), nil
}
