package parser

import (
	"testing"

	"github.com/GpSinghJadon/micsync-go/pkg/micsync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		ref      string
		expected models.Region
	}{
		{"A1:D10", models.Region{R1: 1, C1: 1, R2: 10, C2: 4}},
		{"$B$2:$C$3", models.Region{R1: 2, C1: 2, R2: 3, C2: 3}},
		{"'MICs List by CC'!A1:Q2500", models.Region{R1: 1, C1: 1, R2: 2500, C2: 17}},
		{" Sheet1!A5:A5 ", models.Region{R1: 5, C1: 1, R2: 5, C2: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			region, err := ParseRange(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, region)
		})
	}
}

func TestParseRange_Invalid(t *testing.T) {
	for _, ref := range []string{"", "A1", "A1:B2:C3", "1A:B2", "D10:A1"} {
		t.Run(ref, func(t *testing.T) {
			_, err := ParseRange(ref)
			assert.Error(t, err)
		})
	}
}

func TestDataRegion(t *testing.T) {
	rows := [][]string{
		{},
		{"", "", ""},
		{"", "MIC", "Country"},
		{"", "XNYS", "US"},
		{},
		{"", "XLON", "", "note"},
	}

	region, ok := dataRegion(rows)
	require.True(t, ok)
	assert.Equal(t, models.Region{R1: 3, C1: 2, R2: 6, C2: 4}, region)
	assert.Equal(t, 3, region.Width())
	assert.Equal(t, 4, region.Height())
}

func TestDataRegion_Empty(t *testing.T) {
	_, ok := dataRegion([][]string{{}, {"", ""}})
	assert.False(t, ok)

	_, ok = dataRegion(nil)
	assert.False(t, ok)
}

func TestCellAt(t *testing.T) {
	rows := [][]string{{"a", "b"}, {"c"}}

	assert.Equal(t, "a", cellAt(rows, 1, 1))
	assert.Equal(t, "b", cellAt(rows, 2, 1))
	assert.Equal(t, "", cellAt(rows, 2, 2))
	assert.Equal(t, "", cellAt(rows, 1, 3))
	assert.Equal(t, "", cellAt(rows, 0, 1))
}
