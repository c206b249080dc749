package models

// Region represents cell coordinate bounds within a sheet.
type Region struct {
	// R1 is the start row (1-based).
	R1 int `json:"r1"`
	// C1 is the start column (1-based).
	C1 int `json:"c1"`
	// R2 is the end row (1-based, inclusive).
	R2 int `json:"r2"`
	// C2 is the end column (1-based, inclusive).
	C2 int `json:"c2"`
}

// Width returns the number of columns in the region.
func (r Region) Width() int {
	return r.C2 - r.C1 + 1
}

// Height returns the number of rows in the region.
func (r Region) Height() int {
	return r.R2 - r.R1 + 1
}
