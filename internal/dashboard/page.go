// Package dashboard turns a factory snapshot into the view model of each
// screen. Builders are pure: the same snapshot always yields the same page.
package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"factorypulse/internal/model"
	"factorypulse/internal/widget"
)

var ErrUnknownPage = errors.New("unknown page")

// Page is one rendered screen. Body holds the screen-specific view model.
type Page struct {
	Slug     string `json:"slug"`
	Path     string `json:"path"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Body     any    `json:"body"`
}

type Builder func(model.Snapshot) (Page, error)

type Entry struct {
	Slug  string
	Path  string
	Build Builder
}

// registry is in sidebar order.
var registry = []Entry{
	{Slug: "mission-control", Path: "/", Build: MissionControl},
	{Slug: "shop-floor", Path: "/shop-floor", Build: ShopFloor},
	{Slug: "oee", Path: "/oee", Build: OEEAnalytics},
	{Slug: "production", Path: "/production", Build: DailyProduction},
	{Slug: "inventory", Path: "/inventory", Build: Inventory},
	{Slug: "quality", Path: "/quality", Build: QualityControl},
	{Slug: "maintenance", Path: "/maintenance", Build: Maintenance},
	{Slug: "status", Path: "/status", Build: LiveStatus},
	{Slug: "alerts", Path: "/alerts", Build: Alerts},
	{Slug: "downtime", Path: "/downtime", Build: Downtime},
}

// Registry returns every screen in sidebar order.
func Registry() []Entry {
	return append([]Entry(nil), registry...)
}

func ByPath(path string) (Entry, error) {
	for _, e := range registry {
		if e.Path == path {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrUnknownPage, path)
}

func BySlug(slug string) (Entry, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, e := range registry {
		if e.Slug == slug {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrUnknownPage, slug)
}

func page(slug, path, title, subtitle string, body any) Page {
	return Page{Slug: slug, Path: path, Title: title, Subtitle: subtitle, Body: body}
}

// metric builds a card from a numeric value. A missing trend key means
// the card has no trend badge.
func metric(title string, value float64, unit string, trends map[string]model.Trend, key string, status model.MetricStatus) widget.MetricCard {
	return textMetric(title, widget.FormatNumber(value), unit, trends, key, status)
}

func textMetric(title, value, unit string, trends map[string]model.Trend, key string, status model.MetricStatus) widget.MetricCard {
	d := model.MetricDisplay{Title: title, Value: value, Unit: unit, Status: status}
	if t, ok := trends[key]; ok {
		d.Trend = &t
	}
	return widget.NewMetricCard(d)
}

// ratioBar draws current/target, marked invalid when the target is unusable.
func ratioBar(current, target float64, tone string) widget.Bar {
	b := widget.NewBar(model.NewProgress(current, target))
	if tone != "" {
		b.Tone = tone
	}
	return b
}

func percentBar(v float64, tone string) widget.Bar {
	b := widget.NewBar(model.PercentProgress(v))
	if tone != "" {
		b.Tone = tone
	}
	return b
}

// ratioText is the label next to a guarded ratio.
func ratioText(current, target float64) string {
	r, err := model.OutputRatio(current, target)
	if err != nil {
		return "n/a"
	}
	return widget.FormatPercent(r)
}

func equipmentCards(records []model.EquipmentRecord) ([]widget.EquipmentCard, error) {
	cards := make([]widget.EquipmentCard, 0, len(records))
	for _, r := range records {
		c, err := widget.NewEquipmentCard(r)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// AlertRow is a compact alert line, as in the critical alerts panel.
type AlertRow struct {
	ID       int            `json:"id"`
	Severity model.Severity `json:"severity"`
	Message  string         `json:"message"`
	Time     string         `json:"time"`
	Badge    string         `json:"badge"`
}

func alertRows(notes []model.AlertNote) []AlertRow {
	rows := make([]AlertRow, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, AlertRow{ID: n.ID, Severity: n.Severity, Message: n.Message, Time: n.Time, Badge: severityBadge(n.Severity)})
	}
	return rows
}

func severityBadge(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "badge-destructive"
	case model.SeverityWarning:
		return "badge-outline"
	default:
		return "badge-secondary"
	}
}
