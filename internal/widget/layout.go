package widget

import "time"

type NavItem struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Icon   string `json:"icon"`
	Active bool   `json:"active"`
}

type NavGroup struct {
	Label string    `json:"label"`
	Items []NavItem `json:"items"`
}

var navigation = []NavGroup{
	{Label: "Dashboards", Items: []NavItem{
		{Title: "Mission Control", URL: "/", Icon: "layout-dashboard"},
		{Title: "Shop Floor", URL: "/shop-floor", Icon: "factory"},
		{Title: "OEE Analytics", URL: "/oee", Icon: "target"},
		{Title: "Daily Production", URL: "/production", Icon: "bar-chart"},
	}},
	{Label: "Management", Items: []NavItem{
		{Title: "Inventory", URL: "/inventory", Icon: "package"},
		{Title: "Quality Control", URL: "/quality", Icon: "shield-check"},
		{Title: "Maintenance", URL: "/maintenance", Icon: "settings"},
	}},
	{Label: "Monitoring", Items: []NavItem{
		{Title: "Live Status", URL: "/status", Icon: "activity"},
		{Title: "Alerts", URL: "/alerts", Icon: "alert-triangle"},
		{Title: "Downtime", URL: "/downtime", Icon: "clock"},
	}},
}

// Sidebar returns the navigation with the item for currentPath marked
// active. At most one item matches.
func Sidebar(currentPath string) []NavGroup {
	groups := make([]NavGroup, len(navigation))
	for i, g := range navigation {
		items := make([]NavItem, len(g.Items))
		for j, item := range g.Items {
			item.Active = item.URL == currentPath
			items[j] = item
		}
		groups[i] = NavGroup{Label: g.Label, Items: items}
	}
	return groups
}

// NavURLs lists every navigable path in sidebar order.
func NavURLs() []string {
	var urls []string
	for _, g := range navigation {
		for _, item := range g.Items {
			urls = append(urls, item.URL)
		}
	}
	return urls
}

type Header struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle,omitempty"`
	Time       string `json:"time"`
	AlertCount int    `json:"alert_count"`
}

const headerTimeLayout = "1/2/2006, 3:04:05 PM"

func NewHeader(title, subtitle string, now time.Time, alerts int) Header {
	return Header{
		Title:      title,
		Subtitle:   subtitle,
		Time:       now.Format(headerTimeLayout),
		AlertCount: alerts,
	}
}
