package report

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"factorypulse/internal/fixtures"
	"factorypulse/internal/model"
)

func TestWriteProductionXLSX(t *testing.T) {
	snap, err := fixtures.Load()
	require.NoError(t, err)
	snap.Production.Hourly = append(snap.Production.Hourly, model.HourlyOutput{Hour: "23:00", Target: 0, Actual: 4})

	var buf bytes.Buffer
	require.NoError(t, WriteProductionXLSX(&buf, snap))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Shifts", "Lines", "Hourly"}, f.GetSheetList())

	rows, err := f.GetRows("Shifts")
	require.NoError(t, err)
	assert.Equal(t, []string{"Shift", "Target", "Actual", "Efficiency %", "Achieved %"}, rows[0])
	assert.Len(t, rows, len(snap.Production.Shifts)+1)

	hourly, err := f.GetRows("Hourly")
	require.NoError(t, err)
	last := hourly[len(hourly)-1]
	assert.Equal(t, "23:00", last[0])
	assert.Equal(t, "n/a", last[3])
}

func TestRatioCell(t *testing.T) {
	assert.InDelta(t, 84.7, ratioCell(847, 1000), 1e-9)
	assert.Equal(t, "n/a", ratioCell(5, 0))
	assert.Equal(t, "n/a", ratioCell(5, -1))
}

func TestWriteOEEPDF(t *testing.T) {
	snap, err := fixtures.Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteOEEPDF(&buf, snap, "FactoryPulse"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestEquipmentQR(t *testing.T) {
	b, err := EquipmentQR(EquipmentURL("http://plant.local", "cnc-1"))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, qrSize, img.Bounds().Dx())

	assert.Equal(t, "http://plant.local/shop-floor#cnc-1", EquipmentURL("http://plant.local", "cnc-1"))
}
