package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"buyerfinder/internal/domain"
	"buyerfinder/internal/engine"
)

func sampleProspects() []domain.Prospect {
	return []domain.Prospect{
		{Name: "Joe's Auto Sales", Phone: "9045550101", PhoneDisplay: "(904) 555-0101",
			Address: "12 Main St", Website: "https://joes.example.com", Category: "auto dealers",
			Type: domain.TypeAutoDealer, Score: 100,
			Sources: []domain.SourceKind{domain.SourceDirectory, domain.SourceRegistry}},
		{Name: "John Smith", Phone: "9045550202",
			Type: domain.TypeVehicleBuyer, Score: 70,
			Sources: []domain.SourceKind{domain.SourceRegistry}},
	}
}

func TestDefaultBaseName(t *testing.T) {
	at := time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC)
	assert.Equal(t, "vehicle_buyer_prospects_20260829_143005", DefaultBaseName(at))
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()

	path, err := Prospects(dir, "out", FormatCSV, sampleProspects())
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, []string{
		"Joe's Auto Sales", "(904) 555-0101", "12 Main St", "https://joes.example.com",
		"auto dealers", "Auto Dealer", "100", "directory;registry",
	}, rows[1])
	assert.Equal(t, "John Smith", rows[2][0])
	assert.Equal(t, "9045550202", rows[2][1], "digits form used when no display form exists")
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()

	path, err := Prospects(dir, "out", FormatJSON, sampleProspects())
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Joe's Auto Sales", decoded[0]["name"])
	assert.Equal(t, "Auto Dealer", decoded[0]["prospect_type"])
	assert.Equal(t, float64(100), decoded[0]["score"])
	assert.Equal(t, []any{"directory", "registry"}, decoded[0]["sources"])
}

func TestExportExcel(t *testing.T) {
	dir := t.TempDir()

	path, err := Prospects(dir, "out", FormatXLSX, sampleProspects())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Prospects")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, "Joe's Auto Sales", rows[1][0])
	assert.Equal(t, "100", rows[1][6])
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := Prospects(t.TempDir(), "out", Format("pdf"), sampleProspects())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestExportEmptyListStillWritesHeaders(t *testing.T) {
	path, err := Prospects(t.TempDir(), "out", FormatCSV, nil)
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	stats := engine.Stats{
		RawIn: 5, Rejected: 1, Merged: 1, Final: 3,
		ByType:   map[domain.ProspectType]int{domain.TypeAutoDealer: 2, domain.TypeUnknown: 1},
		BySource: map[domain.SourceKind]int{domain.SourceDirectory: 3, domain.SourceRegistry: 1},
	}

	path, err := Report(dir, "out", stats, time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded struct {
		GeneratedAt string       `json:"generated_at"`
		Stats       engine.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "2026-08-29T12:00:00Z", decoded.GeneratedAt)
	assert.Equal(t, stats, decoded.Stats)
}
