// Package console renders the equipment status table for terminals.
package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"factorypulse/internal/model"
	"factorypulse/internal/widget"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	sepStyle    = lipgloss.NewStyle().Faint(true)
)

var headers = []string{"ID", "Equipment", "Status", "Efficiency", "Output"}

func rows(snap model.Snapshot) ([][]string, []model.EquipmentStatus) {
	var out [][]string
	var statuses []model.EquipmentStatus
	for _, list := range [][]model.EquipmentRecord{snap.Mission.Equipment, snap.ShopFloor.Equipment} {
		for _, r := range list {
			label, err := widget.StatusLabel(r.Status)
			if err != nil {
				label = "?"
			}
			out = append(out, []string{
				r.ID,
				r.Name,
				label,
				widget.FormatPercent(r.Efficiency),
				fmt.Sprintf("%s/%s %s", widget.FormatNumber(r.Output.Current), widget.FormatNumber(r.Output.Target), r.Output.Unit),
			})
			statuses = append(statuses, r.Status)
		}
	}
	return out, statuses
}

// RenderStatusTable draws every production line and station with its
// status coloured by the dashboard palette. Lines longer than width are
// cut; width <= 0 means no limit.
func RenderStatusTable(snap model.Snapshot, width int) string {
	data, statuses := rows(snap)

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = lipgloss.Width(h)
	}
	for _, row := range data {
		for i, cell := range row {
			colWidths[i] = max(colWidths[i], lipgloss.Width(cell))
		}
	}
	for i := range colWidths {
		colWidths[i] += 2
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(snap.Site + " equipment status"))
	sb.WriteString("\n")

	line := func(cells []string, style func(i int) lipgloss.Style) string {
		var lb strings.Builder
		for i, c := range cells {
			lb.WriteString(style(i).Width(colWidths[i]).Render(c))
			if i < len(cells)-1 {
				lb.WriteString(sepStyle.Render("|"))
			}
		}
		return lb.String()
	}

	lines := []string{line(headers, func(int) lipgloss.Style { return headerStyle })}
	total := len(headers) - 1
	for _, w := range colWidths {
		total += w
	}
	lines = append(lines, sepStyle.Render(strings.Repeat("-", total)))

	for r, row := range data {
		status := statuses[r]
		lines = append(lines, line(row, func(i int) lipgloss.Style {
			if i != 2 {
				return cellStyle
			}
			hex, err := widget.StatusHex(status)
			if err != nil {
				return cellStyle
			}
			return cellStyle.Foreground(lipgloss.Color(hex))
		}))
	}

	for _, l := range lines {
		if width > 0 {
			l = lipgloss.NewStyle().MaxWidth(width).Render(l)
		}
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	return sb.String()
}
