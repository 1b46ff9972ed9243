package widget

import (
	"fmt"
	"html/template"
	"io"

	"factorypulse/internal/model"
)

const (
	CanvasWidth  = 700
	CanvasHeight = 400
)

// Placement is one rectangle on the floor plan.
type Placement struct {
	ID     string                `json:"id"`
	Label  string                `json:"label"`
	X      float64               `json:"x"`
	Y      float64               `json:"y"`
	Width  float64               `json:"width"`
	Height float64               `json:"height"`
	Status model.EquipmentStatus `json:"status"`
}

// DefaultPlacements is the fixed production floor layout.
func DefaultPlacements() []Placement {
	return []Placement{
		{ID: "cnc1", Label: "CNC #1", X: 50, Y: 100, Width: 80, Height: 40, Status: model.Running},
		{ID: "cnc2", Label: "CNC #2", X: 200, Y: 100, Width: 80, Height: 40, Status: model.Running},
		{ID: "assembly1", Label: "Assembly #1", X: 350, Y: 80, Width: 60, Height: 80, Status: model.Running},
		{ID: "assembly2", Label: "Assembly #2", X: 450, Y: 80, Width: 60, Height: 80, Status: model.Idle},
		{ID: "qc1", Label: "QC Station", X: 580, Y: 100, Width: 70, Height: 40, Status: model.Idle},
		{ID: "packaging", Label: "Packaging", X: 400, Y: 250, Width: 120, Height: 60, Status: model.Down},
		{ID: "robot1", Label: "Robot Arm", X: 150, Y: 220, Width: 50, Height: 50, Status: model.Maintenance},
		{ID: "conveyor1", Label: "Conveyor A", X: 100, Y: 180, Width: 400, Height: 20, Status: model.Running},
		{ID: "warehouse", Label: "Raw Materials", X: 50, Y: 300, Width: 150, Height: 80, Status: model.Running},
	}
}

// PlacedEquipment is a placement with its drawing coordinates resolved.
type PlacedEquipment struct {
	Placement
	Color  string  `json:"color"`
	LabelX float64 `json:"label_x"`
	LabelY float64 `json:"label_y"`
	DotX   float64 `json:"dot_x"`
	DotY   float64 `json:"dot_y"`
	Pulse  bool    `json:"pulse"`
}

type StatusCount struct {
	Status model.EquipmentStatus `json:"status"`
	Label  string                `json:"label"`
	Color  string                `json:"color"`
	Count  int                   `json:"count"`
}

// Blueprint is the render model of the floor plan.
type Blueprint struct {
	Width   float64           `json:"width"`
	Height  float64           `json:"height"`
	Items   []PlacedEquipment `json:"items"`
	Flows   []string          `json:"flows"`
	Summary []StatusCount     `json:"summary"`
}

// materialFlows are the dashed arrows between stations.
var materialFlows = []string{
	"M 200 120 Q 275 120 350 120",
	"M 510 120 Q 545 120 580 120",
	"M 460 200 Q 460 225 460 250",
}

// NewBlueprint resolves colours and label positions. Statuses in
// overrides replace the placement's own status, matched by placement id.
func NewBlueprint(placements []Placement, overrides map[string]model.EquipmentStatus) (Blueprint, error) {
	bp := Blueprint{
		Width:  CanvasWidth,
		Height: CanvasHeight,
		Items:  make([]PlacedEquipment, 0, len(placements)),
		Flows:  append([]string(nil), materialFlows...),
	}

	counts := make(map[model.EquipmentStatus]int, 4)
	for _, p := range placements {
		if s, ok := overrides[p.ID]; ok {
			p.Status = s
		}
		st, err := styleOf(p.Status)
		if err != nil {
			return Blueprint{}, fmt.Errorf("placement %s: %w", p.ID, err)
		}
		counts[p.Status]++
		bp.Items = append(bp.Items, PlacedEquipment{
			Placement: p,
			Color:     st.hex,
			LabelX:    p.X + p.Width/2,
			LabelY:    p.Y + p.Height/2,
			DotX:      p.X + p.Width - 8,
			DotY:      p.Y + 8,
			Pulse:     st.pulse,
		})
	}

	for _, s := range model.AllStatuses() {
		st := statusStyles[s]
		bp.Summary = append(bp.Summary, StatusCount{Status: s, Label: st.label, Color: st.hex, Count: counts[s]})
	}
	return bp, nil
}

var svgTemplate = template.Must(template.New("blueprint").Parse(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 {{.Width}} {{.Height}}" class="blueprint">
<defs>
<pattern id="grid" width="20" height="20" patternUnits="userSpaceOnUse"><path d="M 20 0 L 0 0 0 20" fill="none" stroke="#e5e7eb" stroke-width="1"/></pattern>
<marker id="arrowhead" markerWidth="10" markerHeight="7" refX="9" refY="3.5" orient="auto"><polygon points="0 0, 10 3.5, 0 7" fill="#6b7280"/></marker>
</defs>
<rect width="100%" height="100%" fill="url(#grid)"/>
{{range .Items}}<g id="eq-{{.ID}}" data-status="{{.Status}}">
<rect x="{{.X}}" y="{{.Y}}" width="{{.Width}}" height="{{.Height}}" fill="{{.Color}}" fill-opacity="0.7" stroke="{{.Color}}" stroke-width="2" rx="4"/>
<text x="{{.LabelX}}" y="{{.LabelY}}" text-anchor="middle" dominant-baseline="middle" font-size="10" fill="#ffffff">{{.Label}}</text>
<circle cx="{{.DotX}}" cy="{{.DotY}}" r="4" fill="{{.Color}}"{{if .Pulse}} class="pulse"{{end}}/>
</g>
{{end}}{{range .Flows}}<path d="{{.}}" stroke="#6b7280" stroke-width="2" fill="none" marker-end="url(#arrowhead)" stroke-dasharray="5,5"/>
{{end}}</svg>
`))

// RenderSVG writes the floor plan as a standalone SVG document.
func (b Blueprint) RenderSVG(w io.Writer) error {
	return svgTemplate.Execute(w, b)
}
