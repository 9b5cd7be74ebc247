package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Email", "Department"},
		Rows: []map[string]string{
			{"Email": "a@aptiv.com", "Department": "Engineering"},
			{"Email": "b@aptiv.com", "Department": "R&D, Safety"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte(utf8BOM)))

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(out, []byte(utf8BOM)))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Email", "Department"}, records[0])
	assert.Equal(t, "R&D, Safety", records[2][1])
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "x")
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	wide := Dataset{Headers: []string{"A", "B", "C", "D", "E", "F", "G", "H"}}
	for i := 0; i < 80; i++ {
		wide.Rows = append(wide.Rows, map[string]string{"A": "Ünïcode value that is quite long and will be truncated by the exporter"})
	}
	out, err := NewPDFExporter().Render(wide, "Interns")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
}
