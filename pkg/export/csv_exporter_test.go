package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	payload, err := exporter.Render(Dataset{
		Headers: []string{"Student No", "Name", "Remarks"},
		Rows: [][]string{
			{"2024-0001", "Juan Cruz", "ok"},
			{"2024-0002", "Maria Santos", "late submission, excused"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(payload), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student No,Name,Remarks", lines[0])
	assert.Equal(t, "2024-0001,Juan Cruz,ok", lines[1])
	assert.Equal(t, `2024-0002,Maria Santos,"late submission, excused"`, lines[2])
}

func TestCSVExporterRenderPadsShortRows(t *testing.T) {
	exporter := NewCSVExporter()

	payload, err := exporter.Render(Dataset{
		Headers: []string{"A", "B", "C"},
		Rows:    [][]string{{"1"}},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(payload), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1,,", lines[1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()

	payload, err := exporter.Render(Dataset{
		Headers: []string{"Student No", "Name"},
		Rows:    [][]string{{"2024-0001", "Juan Cruz"}},
	}, "Students Report")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}
