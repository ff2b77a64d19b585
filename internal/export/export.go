// Package export writes the final ranked prospect list to disk. The engine
// stays format-agnostic; every file-format concern lives here.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"buyerfinder/internal/domain"
	"buyerfinder/internal/engine"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

var headers = []string{
	"Name", "Phone", "Address", "Website", "Category", "Prospect Type", "Score", "Sources",
}

// DefaultBaseName builds the timestamped output name shared by all formats.
func DefaultBaseName(now time.Time) string {
	return "vehicle_buyer_prospects_" + now.Format("20060102_150405")
}

// Prospects writes the ranked list into dir in the requested format and
// returns the full path of the written file.
func Prospects(dir, baseName string, format Format, prospects []domain.Prospect) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, baseName+"."+string(format))
	switch format {
	case FormatCSV:
		return path, writeCSV(path, prospects)
	case FormatXLSX:
		return path, writeExcel(path, prospects)
	case FormatJSON:
		return path, writeJSON(path, prospects)
	default:
		return "", fmt.Errorf("export: unknown format %q", format)
	}
}

func row(p domain.Prospect) []string {
	phone := p.PhoneDisplay
	if phone == "" {
		phone = p.Phone
	}
	sources := make([]string, 0, len(p.Sources))
	for _, k := range p.Sources {
		sources = append(sources, string(k))
	}
	return []string{
		p.Name, phone, p.Address, p.Website, p.Category,
		string(p.Type), strconv.Itoa(p.Score), strings.Join(sources, ";"),
	}
}

func writeCSV(path string, prospects []domain.Prospect) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write(headers); err != nil {
		return fmt.Errorf("export: write headers: %w", err)
	}
	for _, p := range prospects {
		if err := w.Write(row(p)); err != nil {
			return fmt.Errorf("export: write record: %w", err)
		}
	}
	return nil
}

type jsonProspect struct {
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	PhoneDisplay string   `json:"phone_display,omitempty"`
	Address      string   `json:"address"`
	Website      string   `json:"website"`
	Category     string   `json:"category"`
	ProspectType string   `json:"prospect_type"`
	Score        int      `json:"score"`
	Sources      []string `json:"sources"`
}

func writeJSON(path string, prospects []domain.Prospect) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create file: %w", err)
	}
	defer file.Close()

	out := make([]jsonProspect, 0, len(prospects))
	for _, p := range prospects {
		sources := make([]string, 0, len(p.Sources))
		for _, k := range p.Sources {
			sources = append(sources, string(k))
		}
		out = append(out, jsonProspect{
			Name:         p.Name,
			Phone:        p.Phone,
			PhoneDisplay: p.PhoneDisplay,
			Address:      p.Address,
			Website:      p.Website,
			Category:     p.Category,
			ProspectType: string(p.Type),
			Score:        p.Score,
			Sources:      sources,
		})
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("export: encode JSON: %w", err)
	}
	return nil
}

func writeExcel(path string, prospects []domain.Prospect) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Prospects"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("export: create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("export: create header style: %w", err)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, p := range prospects {
		for colIdx, val := range row(p) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if colIdx == 6 { // score stays numeric so the column sorts
				f.SetCellValue(sheetName, cell, p.Score)
				continue
			}
			f.SetCellValue(sheetName, cell, val)
		}
	}

	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("export: drop default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save xlsx: %w", err)
	}
	return nil
}

type report struct {
	GeneratedAt string       `json:"generated_at"`
	Stats       engine.Stats `json:"stats"`
}

// Report writes the run summary next to the prospect export.
func Report(dir, baseName string, stats engine.Stats, generatedAt time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, baseName+"_report.json")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: create report: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report{
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Stats:       stats,
	}); err != nil {
		return "", fmt.Errorf("export: encode report: %w", err)
	}
	return path, nil
}
