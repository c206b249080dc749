package parser

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestCellValue(t *testing.T) {
	// Create a temporary Excel file for testing
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	// Set some test data
	f.SetCellValue(sheetName, "A1", "Header1")
	f.SetCellValue(sheetName, "B1", "00123")
	f.SetCellValue(sheetName, "A2", 100)
	f.SetCellValue(sheetName, "B2", 200.5)
	f.SetCellValue(sheetName, "C2", true)

	// Save to temp file
	tmpFile := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	// Open and read back raw values
	f2, err := excelize.OpenFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer f2.Close()

	rows, err := f2.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}

	tests := []struct {
		col, row int
		expected interface{}
	}{
		{1, 1, "Header1"},
		{2, 1, "00123"}, // string cells are never coerced to numbers
		{1, 2, int64(100)},
		{2, 2, 200.5},
		{3, 2, true},
		{3, 1, nil}, // empty
	}

	for _, tt := range tests {
		result, err := cellValue(f2, sheetName, tt.col, tt.row, cellAt(rows, tt.col, tt.row))
		if err != nil {
			t.Fatalf("cellValue(%d, %d) failed: %v", tt.col, tt.row, err)
		}
		if result != tt.expected {
			t.Errorf("cellValue(%d, %d) = %v (type: %T), expected %v (type: %T)",
				tt.col, tt.row, result, result, tt.expected, tt.expected)
		}
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
		ok       bool
	}{
		{"123", int64(123), true},
		{"123.45", 123.45, true},
		{"-100", int64(-100), true},
		{"3.0", int64(3), true},
		{"1e20", 1e20, true},
		{"NaN", nil, false},
		{"Inf", nil, false},
		{"hello", nil, false},
		{"", nil, false},
	}

	for _, tt := range tests {
		result, ok := number(tt.input)
		if ok != tt.ok || result != tt.expected {
			t.Errorf("number(%q) = %v (type: %T), %v, expected %v (type: %T), %v",
				tt.input, result, result, ok, tt.expected, tt.expected, tt.ok)
		}
	}
}

func TestTextValue(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"", nil},
		{"XNYS", "XNYS"},
		{"20050523", int64(20050523)},
		{"0.25", 0.25},
		{"A & B", "A & B"},
	}

	for _, tt := range tests {
		if result := textValue(tt.input); result != tt.expected {
			t.Errorf("textValue(%q) = %v (type: %T), expected %v (type: %T)",
				tt.input, result, result, tt.expected, tt.expected)
		}
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "TRUE", "true"} {
		if !parseBool(s) {
			t.Errorf("parseBool(%q) = false, expected true", s)
		}
	}
	for _, s := range []string{"0", "FALSE", "no"} {
		if parseBool(s) {
			t.Errorf("parseBool(%q) = true, expected false", s)
		}
	}
}
