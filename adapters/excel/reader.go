// Package excel reads measurement columns from xlsx and csv files.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"procap/domain/core"
	"procap/ports"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is read when no sheet is configured.
const DefaultSheet = "Sheet1"

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
}

var _ ports.SampleReaderPort = (*DataReader)(nil)

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, sheet: DefaultSheet}
}

// WithSheet returns a reader for another worksheet of the same workbook.
func (r *DataReader) WithSheet(sheet string) *DataReader {
	next := *r
	if sheet != "" {
		next.sheet = sheet
	}
	return &next
}

// ReadSample reads one numeric column. The first row is the header; blank
// cells are skipped and counted, any other non-numeric cell is an error.
func (r *DataReader) ReadSample(ctx context.Context, column string) (*ports.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	return r.extractColumn(rows, column)
}

// readExcelRows reads the configured sheet
func (r *DataReader) readExcelRows() ([][]string, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", r.sheet, float64(time.Since(start).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// readCSVRows reads all CSV records; rows may have differing widths
func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// extractColumn converts the named column into floats
func (r *DataReader) extractColumn(rows [][]string, column string) (*ports.Sample, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s file must have at least a header row and one data row", core.ErrEmptySample, strings.ToUpper(r.fileType))
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	col := 0
	if column != "" {
		col = -1
		for i, h := range headers {
			if strings.EqualFold(h, column) {
				col = i
				break
			}
		}
		if col < 0 {
			return nil, fmt.Errorf("%w: column %q not found (have %s)", core.ErrInvalidInput, column, strings.Join(headers, ", "))
		}
	}
	name := ""
	if col < len(headers) {
		name = headers[col]
	}

	sample := &ports.Sample{Source: r.filePath, Column: name}
	for i, row := range rows[1:] {
		cell := ""
		if col < len(row) {
			cell = strings.TrimSpace(row[col])
		}
		if cell == "" {
			sample.Skipped++
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			// header is row 1
			return nil, fmt.Errorf("%w: row %d of column %q: %q is not a number", core.ErrInvalidSample, i+2, name, cell)
		}
		sample.Values = append(sample.Values, v)
	}
	if len(sample.Values) == 0 {
		return nil, fmt.Errorf("%w: column %q has no values", core.ErrEmptySample, name)
	}

	log.Printf("[DataReader] %s column %q: %d values, %d blank", strings.ToUpper(r.fileType), name, len(sample.Values), sample.Skipped)
	return sample, nil
}
