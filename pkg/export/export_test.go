package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Hasil Skrining ASQ-3",
		Summary: [][2]string{{"Nama Anak", "Budi"}, {"Status", "Perlu Pemantauan"}},
		Headers: []string{"Domain", "Skor", "Status"},
		Rows: []map[string]string{
			{"Domain": "Komunikasi", "Skor": "45.00", "Status": "Perkembangan Sesuai"},
			{"Domain": "Motorik Kasar", "Skor": "30.00", "Status": "Perlu Rujukan"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Nama Anak,Budi", lines[0])
	assert.Equal(t, "Domain,Skor,Status", lines[3])
	assert.Equal(t, "Motorik Kasar,30.00,Perlu Rujukan", lines[5])
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewXLSXExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(xlsxSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Hasil Skrining ASQ-3", title)

	header, err := f.GetCellValue(xlsxSheet, "A6")
	require.NoError(t, err)
	assert.Equal(t, "Domain", header)

	status, err := f.GetCellValue(xlsxSheet, "C8")
	require.NoError(t, err)
	assert.Equal(t, "Perlu Rujukan", status)
}
