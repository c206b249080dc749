package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GpSinghJadon/micsync-go/pkg/micsync/models"
)

// testdata/mic.xls is a BIFF8 workbook with two sheets:
//
//	MICs List by CC: header, XNYS, XCBO (no date), a blank row, XLON
//	Notes:           one cell
const legacyFixture = "testdata/mic.xls"

func TestIsLegacyWorkbook(t *testing.T) {
	legacy, err := isLegacyWorkbook(legacyFixture)
	require.NoError(t, err)
	assert.True(t, legacy)

	xlsx := writeWorkbook(t, micSheet, [][]interface{}{{"MIC"}, {"XNYS"}})
	legacy, err = isLegacyWorkbook(xlsx)
	require.NoError(t, err)
	assert.False(t, legacy)

	short := filepath.Join(t.TempDir(), "short.xls")
	require.NoError(t, os.WriteFile(short, []byte{0xD0, 0xCF}, 0644))
	legacy, err = isLegacyWorkbook(short)
	require.NoError(t, err)
	assert.False(t, legacy)

	_, err = isLegacyWorkbook(filepath.Join(t.TempDir(), "missing.xls"))
	assert.Error(t, err)
}

func TestConvertSheet_LegacyXLS(t *testing.T) {
	rs, err := ConvertSheet(legacyFixture, micSheet, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"MIC", "COUNTRY", "NAME-INSTITUTION DESCRIPTION", "CREATION DATE"}, rs.Columns)
	assert.Equal(t, []models.Record{
		{"XNYS", "US", "NEW YORK STOCK EXCHANGE, INC.", int64(20050523)},
		{"XCBO", "US", "CBOE GLOBAL MARKETS & OPTIONS <US>", nil},
		{nil, nil, nil, nil},
		{"XLON", "GB", "LONDON STOCK EXCHANGE", 20050523.5},
	}, rs.Records)

	payload, err := rs.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"CBOE GLOBAL MARKETS & OPTIONS <US>"`)
}

func TestConvertSheet_LegacyXLSRange(t *testing.T) {
	rs, err := ConvertSheet(legacyFixture, micSheet, Options{Range: "A1:B2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"MIC", "COUNTRY"}, rs.Columns)
	assert.Equal(t, []models.Record{{"XNYS", "US"}}, rs.Records)
}

func TestConvertSheet_LegacyXLSOtherSheet(t *testing.T) {
	rs, err := ConvertSheet(legacyFixture, "Notes", Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Generated fixture"}, rs.Columns)
	assert.Empty(t, rs.Records)
}

func TestConvertSheet_LegacyXLSMissingSheet(t *testing.T) {
	_, err := ConvertSheet(legacyFixture, "MICs List by Country", Options{})

	assert.ErrorIs(t, err, ErrSheetNotFound)
	assert.ErrorContains(t, err, "MICs List by CC")
	assert.ErrorContains(t, err, "Notes")

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, legacyFixture, convErr.Path)
}

func TestConvertSheet_CompoundFileWithoutWorkbook(t *testing.T) {
	data, err := os.ReadFile(legacyFixture)
	require.NoError(t, err)

	// Rename the "Workbook" directory entry (sector 1, entry 1) to "Workboox".
	const nameOffset = 512 + 512 + 128
	require.Equal(t, byte('k'), data[nameOffset+14])
	data[nameOffset+14] = 'x'

	path := filepath.Join(t.TempDir(), "renamed.xls")
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err = ConvertSheet(path, micSheet, Options{})
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestConvertSheet_TruncatedCompoundFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.xls")
	require.NoError(t, os.WriteFile(path, cfbMagic, 0644))

	_, err := ConvertSheet(path, micSheet, Options{})
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
