package file

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"goexpect/domain/batch"
	"goexpect/domain/core"
)

// Reader resolves file-backed tables (CSV and XLSX) into batches.
type Reader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewReader creates a reader for the given file path. The format is selected
// by extension; anything that is not .xlsx is treated as CSV.
func NewReader(filePath string) *Reader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" {
		fileType = "xlsx"
	}
	return &Reader{filePath: filePath, fileType: fileType}
}

// Read materializes up to rowLimit data rows (rowLimit <= 0 reads all) in
// file order. Cells are typed: numeric text becomes float64, true/false
// becomes bool, empty cells become nil, everything else stays a string.
func (r *Reader) Read(rowLimit int) (*batch.Batch, error) {
	log.Printf("[FileReader] Reading %s file: %s (limit=%d)", r.fileType, r.filePath, rowLimit)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, core.NewSourceUnavailableError(r.filePath, fmt.Errorf("file not found"))
	}

	var raw [][]string
	var err error
	switch r.fileType {
	case "xlsx":
		raw, err = r.readXLSX()
	default:
		raw, err = r.readCSV()
	}
	if err != nil {
		return nil, core.NewSourceUnavailableError(r.filePath, err)
	}

	if len(raw) == 0 {
		return batch.Empty(), nil
	}

	headers := make([]string, len(raw[0]))
	for i, header := range raw[0] {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := raw[1:]
	if rowLimit > 0 && len(dataRows) > rowLimit {
		dataRows = dataRows[:rowLimit]
	}

	rows := make([]batch.Row, 0, len(dataRows))
	for _, record := range dataRows {
		row := make(batch.Row, len(headers))
		for j, header := range headers {
			if j < len(record) {
				row[header] = typedCell(record[j])
			} else {
				row[header] = nil
			}
		}
		rows = append(rows, row)
	}

	log.Printf("[FileReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(rows))
	return batch.New(headers, rows), nil
}

func (r *Reader) readXLSX() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	// First sheet, whatever it is named.
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	log.Printf("[FileReader] sheet %s read in %.2fms (%d rows)",
		sheets[0], float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *Reader) readCSV() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows are padded with nil later

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// typedCell converts raw cell text into a batch value.
func typedCell(cell string) batch.Value {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}
	return trimmed
}
