package model

import (
	"fmt"
	"maps"
	"slices"
)

// Severity grades alerts.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

func (s *Severity) UnmarshalText(b []byte) error {
	switch v := Severity(b); v {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		*s = v
	default:
		return fmt.Errorf("unknown severity %q", string(b))
	}
	return nil
}

// Count is a "current of total" pair such as 12/15 operators.
type Count struct {
	Current int `json:"current" yaml:"current"`
	Total   int `json:"total" yaml:"total"`
}

// Snapshot is everything the dashboard screens display at one moment.
type Snapshot struct {
	Site        string                     `json:"site" yaml:"site"`
	Mission     MissionControl             `json:"mission_control" yaml:"mission_control"`
	ShopFloor   ShopFloor                  `json:"shop_floor" yaml:"shop_floor"`
	OEE         OEE                        `json:"oee" yaml:"oee"`
	Production  DailyProduction            `json:"daily_production" yaml:"daily_production"`
	Inventory   Inventory                  `json:"inventory" yaml:"inventory"`
	Quality     Quality                    `json:"quality" yaml:"quality"`
	Maintenance MaintenanceBoard           `json:"maintenance" yaml:"maintenance"`
	Live        LiveStatus                 `json:"live_status" yaml:"live_status"`
	Alerts      Alerts                     `json:"alerts" yaml:"alerts"`
	Downtime    Downtime                   `json:"downtime" yaml:"downtime"`
	Floor       map[string]EquipmentStatus `json:"floor" yaml:"floor"`
}

type MissionControl struct {
	OEE            float64           `json:"oee" yaml:"oee"`
	Production     Output            `json:"production" yaml:"production"`
	Efficiency     float64           `json:"efficiency" yaml:"efficiency"`
	Quality        float64           `json:"quality" yaml:"quality"`
	Uptime         float64           `json:"uptime" yaml:"uptime"`
	Trends         map[string]Trend  `json:"trends" yaml:"trends"`
	Equipment      []EquipmentRecord `json:"equipment" yaml:"equipment"`
	CriticalAlerts []AlertNote       `json:"critical_alerts" yaml:"critical_alerts"`
	Summary        ShiftSummary      `json:"summary" yaml:"summary"`
}

type AlertNote struct {
	ID       int      `json:"id" yaml:"id"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
	Time     string   `json:"time" yaml:"time"`
}

type ShiftSummary struct {
	ElapsedMinutes float64 `json:"elapsed_minutes" yaml:"elapsed_minutes"`
	LengthMinutes  float64 `json:"length_minutes" yaml:"length_minutes"`
	EnergyKWh      float64 `json:"energy_kwh" yaml:"energy_kwh"`
	Operators      Count   `json:"operators" yaml:"operators"`
	Orders         Count   `json:"orders" yaml:"orders"`
}

type ShopFloor struct {
	Equipment  []EquipmentRecord `json:"equipment" yaml:"equipment"`
	WorkOrders []WorkOrder       `json:"work_orders" yaml:"work_orders"`
}

type WorkOrder struct {
	ID       string `json:"id" yaml:"id"`
	Product  string `json:"product" yaml:"product"`
	Quantity int    `json:"quantity" yaml:"quantity"`
	Priority string `json:"priority" yaml:"priority"`
	Status   string `json:"status" yaml:"status"`
}

type OEE struct {
	Overall         float64            `json:"overall" yaml:"overall"`
	Availability    float64            `json:"availability" yaml:"availability"`
	Performance     float64            `json:"performance" yaml:"performance"`
	Quality         float64            `json:"quality" yaml:"quality"`
	Trends          map[string]Trend   `json:"trends" yaml:"trends"`
	Lines           []LineOEE          `json:"lines" yaml:"lines"`
	DowntimeReasons []DowntimeReason   `json:"downtime_reasons" yaml:"downtime_reasons"`
	Targets         []ProductionTarget `json:"targets" yaml:"targets"`
}

type LineOEE struct {
	Name         string  `json:"name" yaml:"name"`
	Availability float64 `json:"availability" yaml:"availability"`
	Performance  float64 `json:"performance" yaml:"performance"`
	Quality      float64 `json:"quality" yaml:"quality"`
	Overall      float64 `json:"overall" yaml:"overall"`
}

type DowntimeReason struct {
	Reason     string  `json:"reason" yaml:"reason"`
	Minutes    float64 `json:"minutes" yaml:"minutes"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

type ProductionTarget struct {
	Period string  `json:"period" yaml:"period"`
	Actual float64 `json:"actual" yaml:"actual"`
	Target float64 `json:"target" yaml:"target"`
}

type DailyProduction struct {
	Target     float64          `json:"target" yaml:"target"`
	Actual     float64          `json:"actual" yaml:"actual"`
	Efficiency float64          `json:"efficiency" yaml:"efficiency"`
	Trends     map[string]Trend `json:"trends" yaml:"trends"`
	Shifts     []Shift          `json:"shifts" yaml:"shifts"`
	Lines      []LineOutput     `json:"lines" yaml:"lines"`
	Hourly     []HourlyOutput   `json:"hourly" yaml:"hourly"`
}

type Shift struct {
	Name       string  `json:"name" yaml:"name"`
	Target     float64 `json:"target" yaml:"target"`
	Actual     float64 `json:"actual" yaml:"actual"`
	Efficiency float64 `json:"efficiency" yaml:"efficiency"`
	Current    bool    `json:"current" yaml:"current"`
}

type LineOutput struct {
	Line       string  `json:"line" yaml:"line"`
	Target     float64 `json:"target" yaml:"target"`
	Actual     float64 `json:"actual" yaml:"actual"`
	Efficiency float64 `json:"efficiency" yaml:"efficiency"`
	Status     string  `json:"status" yaml:"status"`
}

type HourlyOutput struct {
	Hour   string  `json:"hour" yaml:"hour"`
	Target float64 `json:"target" yaml:"target"`
	Actual float64 `json:"actual" yaml:"actual"`
}

type Inventory struct {
	TotalItems int              `json:"total_items" yaml:"total_items"`
	LowStock   int              `json:"low_stock" yaml:"low_stock"`
	OutOfStock int              `json:"out_of_stock" yaml:"out_of_stock"`
	InTransit  int              `json:"in_transit" yaml:"in_transit"`
	Trends     map[string]Trend `json:"trends" yaml:"trends"`
	Critical   []StockItem      `json:"critical" yaml:"critical"`
	Categories []StockCategory  `json:"categories" yaml:"categories"`
	Movements  []StockMovement  `json:"movements" yaml:"movements"`
}

type StockItem struct {
	Name     string  `json:"name" yaml:"name"`
	Current  float64 `json:"current" yaml:"current"`
	Minimum  float64 `json:"minimum" yaml:"minimum"`
	Maximum  float64 `json:"maximum" yaml:"maximum"`
	Status   string  `json:"status" yaml:"status"`
	Location string  `json:"location" yaml:"location"`
}

type StockCategory struct {
	Name     string  `json:"name" yaml:"name"`
	Count    int     `json:"count" yaml:"count"`
	Value    float64 `json:"value" yaml:"value"`
	Turnover float64 `json:"turnover" yaml:"turnover"`
}

type StockMovement struct {
	Item     string `json:"item" yaml:"item"`
	Type     string `json:"type" yaml:"type"`
	Quantity int    `json:"quantity" yaml:"quantity"`
	Time     string `json:"time" yaml:"time"`
	Order    string `json:"order" yaml:"order"`
}

type Quality struct {
	FirstPassYield     float64           `json:"first_pass_yield" yaml:"first_pass_yield"`
	DefectRate         float64           `json:"defect_rate" yaml:"defect_rate"`
	CustomerComplaints int               `json:"customer_complaints" yaml:"customer_complaints"`
	QualityScore       float64           `json:"quality_score" yaml:"quality_score"`
	Trends             map[string]Trend  `json:"trends" yaml:"trends"`
	Tests              []QualityTest     `json:"tests" yaml:"tests"`
	Defects            []DefectCategory  `json:"defects" yaml:"defects"`
	Inspections        []Inspection      `json:"inspections" yaml:"inspections"`
	Compliance         []ComplianceCheck `json:"compliance" yaml:"compliance"`
}

type QualityTest struct {
	Name   string  `json:"name" yaml:"name"`
	Passed int     `json:"passed" yaml:"passed"`
	Failed int     `json:"failed" yaml:"failed"`
	Rate   float64 `json:"rate" yaml:"rate"`
	Status string  `json:"status" yaml:"status"`
}

type DefectCategory struct {
	Category   string  `json:"category" yaml:"category"`
	Count      int     `json:"count" yaml:"count"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
	Trend      float64 `json:"trend" yaml:"trend"`
}

type Inspection struct {
	Batch     string `json:"batch" yaml:"batch"`
	Product   string `json:"product" yaml:"product"`
	Inspector string `json:"inspector" yaml:"inspector"`
	Result    string `json:"result" yaml:"result"`
	Defects   int    `json:"defects" yaml:"defects"`
	Time      string `json:"time" yaml:"time"`
}

type ComplianceCheck struct {
	Standard   string  `json:"standard" yaml:"standard"`
	Compliance float64 `json:"compliance" yaml:"compliance"`
	LastAudit  string  `json:"last_audit" yaml:"last_audit"`
	Status     string  `json:"status" yaml:"status"`
}

type MaintenanceBoard struct {
	Planned  int               `json:"planned" yaml:"planned"`
	Overdue  int               `json:"overdue" yaml:"overdue"`
	Upcoming int               `json:"upcoming" yaml:"upcoming"`
	MTBF     float64           `json:"mtbf" yaml:"mtbf"`
	MTTR     float64           `json:"mttr" yaml:"mttr"`
	Trends   map[string]Trend  `json:"trends" yaml:"trends"`
	Tasks    []MaintenanceTask `json:"tasks" yaml:"tasks"`
	Health   []EquipmentHealth `json:"health" yaml:"health"`
	Recent   []WorkRecord      `json:"recent" yaml:"recent"`
}

type MaintenanceTask struct {
	Equipment     string `json:"equipment" yaml:"equipment"`
	Task          string `json:"task" yaml:"task"`
	Priority      string `json:"priority" yaml:"priority"`
	DueDate       string `json:"due_date" yaml:"due_date"`
	EstimatedTime string `json:"estimated_time" yaml:"estimated_time"`
	Technician    string `json:"technician" yaml:"technician"`
	Status        string `json:"status" yaml:"status"`
}

type EquipmentHealth struct {
	Name            string  `json:"name" yaml:"name"`
	Health          float64 `json:"health" yaml:"health"`
	LastMaintenance string  `json:"last_maintenance" yaml:"last_maintenance"`
	NextDue         string  `json:"next_due" yaml:"next_due"`
	Alerts          int     `json:"alerts" yaml:"alerts"`
}

type WorkRecord struct {
	Equipment  string  `json:"equipment" yaml:"equipment"`
	Task       string  `json:"task" yaml:"task"`
	Technician string  `json:"technician" yaml:"technician"`
	Duration   string  `json:"duration" yaml:"duration"`
	Date       string  `json:"date" yaml:"date"`
	Cost       float64 `json:"cost" yaml:"cost"`
}

type LiveStatus struct {
	Overall   EquipmentStatus `json:"overall" yaml:"overall"`
	Metrics   []LiveMetric    `json:"metrics" yaml:"metrics"`
	Equipment []LiveEquipment `json:"equipment" yaml:"equipment"`
	Network   []NetworkDevice `json:"network" yaml:"network"`
	Events    []AlertNote     `json:"events" yaml:"events"`
}

type LiveMetric struct {
	Label  string          `json:"label" yaml:"label"`
	Value  string          `json:"value" yaml:"value"`
	Status EquipmentStatus `json:"status" yaml:"status"`
	Target string          `json:"target" yaml:"target"`
}

type LiveEquipment struct {
	ID         string          `json:"id" yaml:"id"`
	Name       string          `json:"name" yaml:"name"`
	Status     EquipmentStatus `json:"status" yaml:"status"`
	Output     string          `json:"output" yaml:"output"`
	Efficiency float64         `json:"efficiency" yaml:"efficiency"`
	LastPing   string          `json:"last_ping" yaml:"last_ping"`
}

type NetworkDevice struct {
	Device  string `json:"device" yaml:"device"`
	IP      string `json:"ip" yaml:"ip"`
	Status  string `json:"status" yaml:"status"`
	Latency string `json:"latency" yaml:"latency"`
	Uptime  string `json:"uptime" yaml:"uptime"`
}

type Alerts struct {
	Summary AlertSummary `json:"summary" yaml:"summary"`
	Items   []Alert      `json:"items" yaml:"items"`
}

type AlertSummary struct {
	Critical int `json:"critical" yaml:"critical"`
	Warning  int `json:"warning" yaml:"warning"`
	Info     int `json:"info" yaml:"info"`
	Total    int `json:"total" yaml:"total"`
}

type Alert struct {
	ID           int      `json:"id" yaml:"id"`
	Severity     Severity `json:"severity" yaml:"severity"`
	Title        string   `json:"title" yaml:"title"`
	Message      string   `json:"message" yaml:"message"`
	Equipment    string   `json:"equipment" yaml:"equipment"`
	Timestamp    string   `json:"timestamp" yaml:"timestamp"`
	Acknowledged bool     `json:"acknowledged" yaml:"acknowledged"`
	AssignedTo   string   `json:"assigned_to" yaml:"assigned_to"`
}

// Unacknowledged counts alerts still waiting for a response.
func (a Alerts) Unacknowledged() int {
	n := 0
	for _, item := range a.Items {
		if !item.Acknowledged {
			n++
		}
	}
	return n
}

type Downtime struct {
	TotalHours     float64            `json:"total_hours" yaml:"total_hours"`
	PlannedHours   float64            `json:"planned_hours" yaml:"planned_hours"`
	UnplannedHours float64            `json:"unplanned_hours" yaml:"unplanned_hours"`
	Availability   float64            `json:"availability" yaml:"availability"`
	Trends         map[string]Trend   `json:"trends" yaml:"trends"`
	Events         []DowntimeEvent    `json:"events" yaml:"events"`
	Categories     []DowntimeCategory `json:"categories" yaml:"categories"`
	Monthly        []MonthlyDowntime  `json:"monthly" yaml:"monthly"`
}

type DowntimeEvent struct {
	Equipment       string `json:"equipment" yaml:"equipment"`
	Reason          string `json:"reason" yaml:"reason"`
	Type            string `json:"type" yaml:"type"`
	StartTime       string `json:"start_time" yaml:"start_time"`
	Duration        string `json:"duration" yaml:"duration"`
	Status          string `json:"status" yaml:"status"`
	Impact          string `json:"impact" yaml:"impact"`
	Technician      string `json:"technician" yaml:"technician"`
	EstimatedRepair string `json:"estimated_repair" yaml:"estimated_repair"`
}

type DowntimeCategory struct {
	Category   string  `json:"category" yaml:"category"`
	Hours      float64 `json:"hours" yaml:"hours"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
	Tone       string  `json:"tone" yaml:"tone"`
}

type MonthlyDowntime struct {
	Month     string  `json:"month" yaml:"month"`
	Planned   float64 `json:"planned" yaml:"planned"`
	Unplanned float64 `json:"unplanned" yaml:"unplanned"`
}

// Clone returns a deep copy so readers never share slices with writers.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Mission.Trends = maps.Clone(s.Mission.Trends)
	c.Mission.Equipment = slices.Clone(s.Mission.Equipment)
	c.Mission.CriticalAlerts = slices.Clone(s.Mission.CriticalAlerts)
	c.ShopFloor.Equipment = slices.Clone(s.ShopFloor.Equipment)
	c.ShopFloor.WorkOrders = slices.Clone(s.ShopFloor.WorkOrders)
	c.OEE.Trends = maps.Clone(s.OEE.Trends)
	c.OEE.Lines = slices.Clone(s.OEE.Lines)
	c.OEE.DowntimeReasons = slices.Clone(s.OEE.DowntimeReasons)
	c.OEE.Targets = slices.Clone(s.OEE.Targets)
	c.Production.Trends = maps.Clone(s.Production.Trends)
	c.Production.Shifts = slices.Clone(s.Production.Shifts)
	c.Production.Lines = slices.Clone(s.Production.Lines)
	c.Production.Hourly = slices.Clone(s.Production.Hourly)
	c.Inventory.Trends = maps.Clone(s.Inventory.Trends)
	c.Inventory.Critical = slices.Clone(s.Inventory.Critical)
	c.Inventory.Categories = slices.Clone(s.Inventory.Categories)
	c.Inventory.Movements = slices.Clone(s.Inventory.Movements)
	c.Quality.Trends = maps.Clone(s.Quality.Trends)
	c.Quality.Tests = slices.Clone(s.Quality.Tests)
	c.Quality.Defects = slices.Clone(s.Quality.Defects)
	c.Quality.Inspections = slices.Clone(s.Quality.Inspections)
	c.Quality.Compliance = slices.Clone(s.Quality.Compliance)
	c.Maintenance.Trends = maps.Clone(s.Maintenance.Trends)
	c.Maintenance.Tasks = slices.Clone(s.Maintenance.Tasks)
	c.Maintenance.Health = slices.Clone(s.Maintenance.Health)
	c.Maintenance.Recent = slices.Clone(s.Maintenance.Recent)
	c.Live.Metrics = slices.Clone(s.Live.Metrics)
	c.Live.Equipment = slices.Clone(s.Live.Equipment)
	c.Live.Network = slices.Clone(s.Live.Network)
	c.Live.Events = slices.Clone(s.Live.Events)
	c.Alerts.Items = slices.Clone(s.Alerts.Items)
	c.Downtime.Trends = maps.Clone(s.Downtime.Trends)
	c.Downtime.Events = slices.Clone(s.Downtime.Events)
	c.Downtime.Categories = slices.Clone(s.Downtime.Categories)
	c.Downtime.Monthly = slices.Clone(s.Downtime.Monthly)
	c.Floor = maps.Clone(s.Floor)
	return c
}
