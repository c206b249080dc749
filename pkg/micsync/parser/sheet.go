package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GpSinghJadon/micsync-go/pkg/micsync/models"
	"github.com/xuri/excelize/v2"
)

// Options configures sheet conversion.
type Options struct {
	// Range restricts conversion to an A1-style range (e.g., "A1:F2500").
	// The first row of the range is the header row. If empty, the bounding
	// box of non-empty cells is used.
	Range string
}

// ConvertSheet opens the workbook at path and converts the named sheet.
// The sheet name must match exactly (case-sensitive). Both OOXML (.xlsx)
// and legacy BIFF (.xls) workbooks are accepted.
func ConvertSheet(path, sheetName string, opts Options) (*models.RecordSet, error) {
	legacy, err := isLegacyWorkbook(path)
	if err != nil {
		return nil, NewConversionError(path, sheetName, fmt.Errorf("%w: %v", ErrInvalidFormat, err))
	}
	if legacy {
		rs, err := convertLegacySheet(path, sheetName, opts)
		if err == nil {
			return rs, nil
		}
		if !errors.Is(err, errNoWorkbookStream) {
			return nil, NewConversionError(path, sheetName, err)
		}
		// Not BIFF: encrypted OOXML shares the container. Let excelize decide.
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, NewConversionError(path, sheetName, fmt.Errorf("%w: %v", ErrInvalidFormat, err))
	}
	defer f.Close()

	rs, err := ConvertFile(f, sheetName, opts)
	if err != nil {
		return nil, NewConversionError(path, sheetName, err)
	}
	return rs, nil
}

// ConvertFile converts the named sheet of an open workbook into a RecordSet.
// The first row of the data region supplies column names; each following
// row becomes one record with a value for every column.
func ConvertFile(f *excelize.File, sheetName string, opts Options) (*models.RecordSet, error) {
	sheets := f.GetSheetList()
	if !containsExact(sheets, sheetName) {
		return nil, sheetNotFound(sheetName, sheets)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	return project(rows, opts, func(col, row int, raw string) (interface{}, error) {
		return cellValue(f, sheetName, col, row, raw)
	})
}

// valueFunc types the raw text found at 1-based (col, row).
type valueFunc func(col, row int, raw string) (interface{}, error)

// project lays the region of rows selected by opts out as a RecordSet.
func project(rows [][]string, opts Options, value valueFunc) (*models.RecordSet, error) {
	var region models.Region
	if opts.Range != "" {
		var err error
		region, err = ParseRange(opts.Range)
		if err != nil {
			return nil, err
		}
		if region.R2 > len(rows) {
			region.R2 = len(rows)
		}
		if region.R2 < region.R1 {
			return emptyRecordSet(), nil
		}
	} else {
		var ok bool
		region, ok = dataRegion(rows)
		if !ok {
			return emptyRecordSet(), nil
		}
	}

	header := make([]string, 0, region.Width())
	for col := region.C1; col <= region.C2; col++ {
		header = append(header, cellAt(rows, col, region.R1))
	}

	rs := &models.RecordSet{
		Columns: normalizeHeaders(header),
		Records: make([]models.Record, 0, region.Height()-1),
	}
	for row := region.R1 + 1; row <= region.R2; row++ {
		rec := make(models.Record, region.Width())
		for col := region.C1; col <= region.C2; col++ {
			v, err := value(col, row, cellAt(rows, col, row))
			if err != nil {
				return nil, err
			}
			rec[col-region.C1] = v
		}
		rs.Records = append(rs.Records, rec)
	}

	return rs, nil
}

func sheetNotFound(sheetName string, sheets []string) error {
	return fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, sheetName, strings.Join(sheets, ", "))
}

// normalizeHeaders names blank headers "Unnamed: <index>" and suffixes
// repeated headers with ".1", ".2", ... so that every column name is unique.
func normalizeHeaders(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))

	for i, h := range header {
		name := h
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[name] {
			base := name
			for used[name] {
				counts[base]++
				name = fmt.Sprintf("%s.%d", base, counts[base])
			}
		}
		used[name] = true
		names[i] = name
	}

	return names
}

func containsExact(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func emptyRecordSet() *models.RecordSet {
	return &models.RecordSet{Records: []models.Record{}}
}
