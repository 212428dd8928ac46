package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/freightsim/core/model"
	"github.com/kilianp07/freightsim/core/report"
)

func records() []*report.RunRecord {
	return []*report.RunRecord{
		{RunID: "r1", Strategy: "fcfs", Freights: []model.FreightResult{
			{FreightID: "f1", VehicleID: "v1", PickupTarget: 0, DeliveryTarget: 3600, CompletionTime: 1234.5, DistanceKm: 10.1234, Success: true},
			model.UnassignedResult(model.Freight{ID: "f2", PickupOffset: 60, DeliveryOffset: 600}),
		}},
		{RunID: "r2", Strategy: "cost", Freights: []model.FreightResult{
			{FreightID: "f1", VehicleID: "v2", CompletionTime: 900, DistanceKm: 8, Success: true},
		}},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records()))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "run_id", rows[0][0])
	assert.Equal(t, []string{"r1", "fcfs", "f1", "v1", "0", "3600", "1234.5", "10.123", "true"}, rows[1])
	assert.Equal(t, []string{"r1", "fcfs", "f2", "unassigned", "60", "600", "-1", "0.000", "false"}, rows[2])
	assert.Equal(t, "cost", rows[3][1])
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	require.NoError(t, WriteFile(path, records()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rows []Row
	require.NoError(t, json.Unmarshal(data, &rows))
	assert.Len(t, rows, 3)

	require.NoError(t, WriteFile(filepath.Join(dir, "out.csv"), records()))
	require.NoError(t, WriteFile(filepath.Join(dir, "out.html"), records()))
	assert.Error(t, WriteFile(filepath.Join(dir, "out.xml"), records()))
}

func TestWriteChart(t *testing.T) {
	recs := records()
	recs[0].Summary.TotalDistanceKm = 12.345
	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, recs))
	html := buf.String()
	assert.Contains(t, html, "Strategy comparison")
	assert.Contains(t, html, "fcfs")
	assert.Contains(t, html, "cost")
	assert.Contains(t, html, "12.35")
}
