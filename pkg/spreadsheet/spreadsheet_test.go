package spreadsheet

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	input := "\xef\xbb\xbfFirst Name, last_name ,EMAIL,Start Date\n" +
		"Amina,Haddad,amina@aptiv.com,2024-07-01\n" +
		",,,\n" +
		"Youssef,,youssef@aptiv.com,01/08/2024\n"

	sheet, err := Parse(strings.NewReader(input), "interns.CSV")
	require.NoError(t, err)
	assert.Equal(t, []string{"first name", "last name", "email", "start date"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, 2, sheet.Rows[0].Number)
	assert.Equal(t, "Amina", sheet.Rows[0].Get("First Name"))
	assert.Equal(t, 4, sheet.Rows[1].Number)
	assert.Equal(t, "", sheet.Rows[1].Get("last name"))
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"First Name", "Email", "Department"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Amina", "amina@aptiv.com", "Engineering"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"Omar", "omar@aptiv.com", "Finance"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	parsed, err := Parse(buf, "batch.xlsx")
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 2)
	assert.Equal(t, 2, parsed.Rows[0].Number)
	assert.Equal(t, 4, parsed.Rows[1].Number)
	assert.Equal(t, "Finance", parsed.Rows[1].Get("department"))
}

func TestParseRejectsUnknownExtension(t *testing.T) {
	_, err := Parse(strings.NewReader("x"), "interns.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-08-01", "2024/08/01", "01/08/2024", "08-01-24", "45505"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDate("next monday")
	assert.Error(t, err)
	_, err = ParseDate(" ")
	assert.Error(t, err)
}
