// Package parser converts worksheet contents into record sets.
package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// cellValue returns the typed value of a cell given its raw text.
// Empty cells and error cells are nil, numbers are int64 or float64,
// booleans are bool, everything else is kept as the original string.
func cellValue(f *excelize.File, sheetName string, col, row int, raw string) (interface{}, error) {
	if raw == "" {
		return nil, nil
	}

	cellName, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}
	cellType, err := f.GetCellType(sheetName, cellName)
	if err != nil {
		return nil, err
	}

	switch cellType {
	case excelize.CellTypeBool:
		return parseBool(raw), nil
	case excelize.CellTypeError:
		return nil, nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		// Untyped cells hold numbers (including numeric formula results).
		if v, ok := number(raw); ok {
			return v, nil
		}
		return raw, nil
	default:
		return raw, nil
	}
}

// textValue types a cell known only by its display text: numbers become
// int64 or float64, the empty string nil.
func textValue(raw string) interface{} {
	if raw == "" {
		return nil
	}
	if v, ok := number(raw); ok {
		return v
	}
	return raw
}

// number reads s as an int64 or, failing that, a finite float64. A float
// with no fraction that fits in int64 is narrowed to int64, so 3.0 and 3
// publish identically.
func number(s string) (interface{}, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f), true
	}
	return f, true
}

func parseBool(s string) bool {
	switch strings.ToUpper(s) {
	case "1", "TRUE":
		return true
	}
	return false
}
