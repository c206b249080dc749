package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/extrame/xls"

	"github.com/GpSinghJadon/micsync-go/pkg/micsync/models"
)

// cfbMagic opens every OLE2 compound file, the container of BIFF workbooks.
var cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// legacyMaxCols is the BIFF8 column limit (A..IV).
const legacyMaxCols = 256

// errNoWorkbookStream reports a compound file without a BIFF workbook stream.
var errNoWorkbookStream = errors.New("no workbook stream")

// isLegacyWorkbook reports whether the file at path is an OLE2 compound file.
func isLegacyWorkbook(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(cfbMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(head, cfbMagic), nil
}

// convertLegacySheet converts the named sheet of a BIFF (.xls) workbook.
// The reader exposes display text only, so numeric-looking text becomes a
// number and BOOLERR cells read as empty.
func convertLegacySheet(path, sheetName string, opts Options) (rs *models.RecordSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			rs, err = nil, fmt.Errorf("%w: corrupt xls: %v", ErrInvalidFormat, r)
		}
	}()

	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if wb == nil {
		return nil, errNoWorkbookStream
	}

	names := make([]string, 0, wb.NumSheets())
	var sheet *xls.WorkSheet
	for i := 0; i < wb.NumSheets(); i++ {
		s := wb.GetSheet(i)
		if s == nil {
			continue
		}
		names = append(names, s.Name)
		if sheet == nil && s.Name == sheetName {
			sheet = s
		}
	}
	if sheet == nil {
		return nil, sheetNotFound(sheetName, names)
	}

	return project(legacyRows(sheet), opts, func(_, _ int, raw string) (interface{}, error) {
		return textValue(raw), nil
	})
}

// legacyRows returns the sheet's cell text in the shape of excelize's
// GetRows: one slice per row with trailing empty cells trimmed.
func legacyRows(sheet *xls.WorkSheet) [][]string {
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := legacyRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, legacyMaxCols)
		last := -1
		for c := 0; c < legacyMaxCols; c++ {
			cells[c] = row.Col(c)
			if cells[c] != "" {
				last = c
			}
		}
		rows = append(rows, cells[:last+1])
	}

	// Trailing empty rows are not rows.
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// legacyRow returns row i, or nil when the sheet has no cells in it.
// WorkSheet.Row dereferences a missing map entry, so the panic is absorbed.
func legacyRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}
