package widget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factorypulse/internal/model"
)

func TestBlueprintDefaults(t *testing.T) {
	bp, err := NewBlueprint(DefaultPlacements(), nil)
	require.NoError(t, err)
	require.Len(t, bp.Items, 9)

	counts := map[model.EquipmentStatus]int{}
	for _, c := range bp.Summary {
		counts[c.Status] = c.Count
	}
	assert.Equal(t, 5, counts[model.Running])
	assert.Equal(t, 2, counts[model.Idle])
	assert.Equal(t, 1, counts[model.Down])
	assert.Equal(t, 1, counts[model.Maintenance])

	cnc := bp.Items[0]
	assert.Equal(t, 90.0, cnc.LabelX)
	assert.Equal(t, 120.0, cnc.LabelY)
	assert.Equal(t, 122.0, cnc.DotX)
	assert.Equal(t, 108.0, cnc.DotY)
	assert.Equal(t, "#22c55e", cnc.Color)
}

func TestBlueprintOverrides(t *testing.T) {
	bp, err := NewBlueprint(DefaultPlacements(), map[string]model.EquipmentStatus{"packaging": model.Running})
	require.NoError(t, err)
	assert.Equal(t, model.Running, bp.Items[5].Status)
	assert.Equal(t, 0, bp.Summary[2].Count)

	_, err = NewBlueprint([]Placement{{ID: "ghost"}}, nil)
	assert.ErrorIs(t, err, model.ErrUnknownStatus)
}

func TestBlueprintSVG(t *testing.T) {
	bp, err := NewBlueprint(DefaultPlacements(), nil)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, bp.RenderSVG(&sb))
	svg := sb.String()
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, `id="eq-cnc1"`)
	assert.Contains(t, svg, `data-status="down"`)
	assert.Contains(t, svg, "Raw Materials")
	assert.Equal(t, 3, strings.Count(svg, "marker-end"))
}
