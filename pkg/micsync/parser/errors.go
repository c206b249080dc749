package parser

import (
	"errors"
	"fmt"
)

// ErrSheetNotFound indicates the workbook has no sheet with the requested name.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrInvalidFormat indicates the input file is not a readable xlsx or xls workbook.
var ErrInvalidFormat = errors.New("invalid workbook format")

// ConversionError represents a failure to turn a sheet into records.
type ConversionError struct {
	Path      string
	SheetName string
	Err       error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion error in sheet %q of %s: %v", e.SheetName, e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// NewConversionError creates a new ConversionError.
func NewConversionError(path, sheetName string, err error) *ConversionError {
	return &ConversionError{
		Path:      path,
		SheetName: sheetName,
		Err:       err,
	}
}
