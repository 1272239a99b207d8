package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/street-mapper/app/models"
)

var records = []models.StreetRecord{
	{Name: "gang mawar", SubDistrict: "Ampenan", UrbanVillage: "Ampenan Selatan", Neighborhood: "Bintaro", SubUnit: "RT 002", Latitude: -8.5795, Longitude: 116.0715},
	{Name: "jalan merdeka", SubDistrict: "Ampenan", UrbanVillage: "Ampenan Selatan", Neighborhood: "Bintaro", SubUnit: "RT 001", Latitude: -8.5791, Longitude: 116.0705},
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, records))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, []string{"gang mawar", "Ampenan", "Ampenan Selatan", "Bintaro", "RT 002", "-8.5795", "116.0715"}, rows[1])
	assert.Equal(t, "jalan merdeka", rows[2][0])
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, []string{"jalan merdeka", "Ampenan", "Ampenan Selatan", "Bintaro", "RT 001", "-8.5791", "116.0705"}, rows[2])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "peta_jalan_Ampenan.xlsx", FileName("Ampenan", "xlsx"))
}
