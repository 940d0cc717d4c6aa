// Package sheet reads owner settlement spreadsheets: one sheet, a header row, then
// rows of (owner, property address, amount).
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arikb/bloxs/internal/core"
	"github.com/xuri/excelize/v2"
)

// ReadSettlementRows loads settlement rows from an .xlsx or .csv file.
func ReadSettlementRows(path string) ([]core.SettlementRow, error) {
	var (
		cells [][]string
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		cells, err = readWorkbook(path)
	case ".csv":
		cells, err = readCSVFile(path)
	default:
		return nil, fmt.Errorf("unsupported settlement file type %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return parseRows(cells)
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 {
		return nil, fmt.Errorf("expecting a single sheet, found %d", len(sheets))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()
	return readCSV(f)
}

// readCSV reads raw cells from CSV; rows may have any number of fields.
func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

// parseRows skips the header and keeps rows with exactly three cells once trailing
// empty cells are dropped.
func parseRows(cells [][]string) ([]core.SettlementRow, error) {
	if len(cells) == 0 {
		return nil, nil
	}
	var rows []core.SettlementRow
	for i, raw := range cells[1:] {
		raw = trimTrailingEmpty(raw)
		if len(raw) != 3 {
			continue
		}
		amount, err := core.ParseAmount(raw[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, core.SettlementRow{
			Owner:   strings.TrimSpace(raw[0]),
			Address: strings.TrimSpace(raw[1]),
			Amount:  amount,
		})
	}
	return rows, nil
}

func trimTrailingEmpty(row []string) []string {
	for len(row) > 0 && strings.TrimSpace(row[len(row)-1]) == "" {
		row = row[:len(row)-1]
	}
	return row
}
