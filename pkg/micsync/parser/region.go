package parser

import (
	"fmt"
	"strings"

	"github.com/GpSinghJadon/micsync-go/pkg/micsync/models"
	"github.com/xuri/excelize/v2"
)

// ParseRange parses an A1-style range such as "A1:D10", "$A$1:$D$10" or
// "'Sheet 1'!A1:D10" into a Region. The sheet prefix, if any, is ignored.
func ParseRange(ref string) (models.Region, error) {
	rangeStr := strings.TrimSpace(ref)
	if idx := strings.LastIndex(rangeStr, "!"); idx >= 0 {
		rangeStr = rangeStr[idx+1:]
	}

	// Remove $ signs
	rangeStr = strings.ReplaceAll(rangeStr, "$", "")

	parts := strings.Split(rangeStr, ":")
	if len(parts) != 2 {
		return models.Region{}, fmt.Errorf("invalid range %q: expected <start>:<end>", ref)
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return models.Region{}, fmt.Errorf("invalid range %q: %w", ref, err)
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return models.Region{}, fmt.Errorf("invalid range %q: %w", ref, err)
	}
	if endCol < startCol || endRow < startRow {
		return models.Region{}, fmt.Errorf("invalid range %q: end precedes start", ref)
	}

	return models.Region{
		R1: startRow,
		C1: startCol,
		R2: endRow,
		C2: endCol,
	}, nil
}

// dataRegion returns the 1-based bounding box of the non-empty cells in
// rows. ok is false when every cell is empty.
func dataRegion(rows [][]string) (region models.Region, ok bool) {
	for r, row := range rows {
		for c, cell := range row {
			if cell == "" {
				continue
			}
			if !ok {
				region = models.Region{R1: r + 1, C1: c + 1, R2: r + 1, C2: c + 1}
				ok = true
				continue
			}
			region.R2 = r + 1
			region.C1 = min(region.C1, c+1)
			region.C2 = max(region.C2, c+1)
		}
	}
	return region, ok
}

// cellAt returns the raw text at 1-based (col, row), or "" outside the data.
func cellAt(rows [][]string, col, row int) string {
	if row < 1 || row > len(rows) {
		return ""
	}
	r := rows[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}
