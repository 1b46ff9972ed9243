// Package report renders downloadable exports of the factory snapshot.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"factorypulse/internal/model"
)

// ratioCell is the achieved percentage, or "n/a" when the target is not
// positive.
func ratioCell(actual, target float64) any {
	ratio, err := model.OutputRatio(actual, target)
	if err != nil {
		return "n/a"
	}
	return ratio
}

type sheet struct {
	name   string
	header []any
	rows   [][]any
}

func productionSheets(p model.DailyProduction) []sheet {
	shifts := sheet{name: "Shifts", header: []any{"Shift", "Target", "Actual", "Efficiency %", "Achieved %"}}
	for _, s := range p.Shifts {
		shifts.rows = append(shifts.rows, []any{s.Name, s.Target, s.Actual, s.Efficiency, ratioCell(s.Actual, s.Target)})
	}

	lines := sheet{name: "Lines", header: []any{"Line", "Target", "Actual", "Efficiency %", "Status", "Achieved %"}}
	for _, l := range p.Lines {
		lines.rows = append(lines.rows, []any{l.Line, l.Target, l.Actual, l.Efficiency, l.Status, ratioCell(l.Actual, l.Target)})
	}

	hourly := sheet{name: "Hourly", header: []any{"Hour", "Target", "Actual", "Achieved %"}}
	for _, h := range p.Hourly {
		hourly.rows = append(hourly.rows, []any{h.Hour, h.Target, h.Actual, ratioCell(h.Actual, h.Target)})
	}
	return []sheet{shifts, lines, hourly}
}

// WriteProductionXLSX writes the daily production workbook.
func WriteProductionXLSX(w io.Writer, snap model.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F0F0F0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("xlsx header style: %w", err)
	}

	for i, sh := range productionSheets(snap.Production) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return fmt.Errorf("xlsx sheet %s: %w", sh.name, err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("xlsx sheet %s: %w", sh.name, err)
		}

		if err := f.SetSheetRow(sh.name, "A1", &sh.header); err != nil {
			return fmt.Errorf("xlsx %s header: %w", sh.name, err)
		}
		last, _ := excelize.CoordinatesToCellName(len(sh.header), 1)
		if err := f.SetCellStyle(sh.name, "A1", last, bold); err != nil {
			return fmt.Errorf("xlsx %s header style: %w", sh.name, err)
		}
		for r, row := range sh.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				return fmt.Errorf("xlsx %s row %d: %w", sh.name, r+1, err)
			}
		}
		if err := f.SetColWidth(sh.name, "A", "A", 24); err != nil {
			return fmt.Errorf("xlsx %s width: %w", sh.name, err)
		}
	}

	return f.Write(w)
}
