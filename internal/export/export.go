package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/street-mapper/app/models"
)

// SheetName tên sheet trong file xlsx xuất ra
const SheetName = "Data"

// Headers cột của file xuất, theo thứ tự
var Headers = []string{
	"Nama Jalan dan Gang", "Kecamatan", "Kelurahan", "Lingkungan", "SLS", "Latitude", "Longitude",
}

// FileName tên file tải về cho một kecamatan
func FileName(subDistrict, ext string) string {
	return fmt.Sprintf("peta_jalan_%s.%s", subDistrict, ext)
}

func recordValues(r models.StreetRecord) []interface{} {
	return []interface{}{r.Name, r.SubDistrict, r.UrbanVillage, r.Neighborhood, r.SubUnit, r.Latitude, r.Longitude}
}

// WriteXLSX ghi records ra workbook một sheet "Data", mỗi record một dòng
func WriteXLSX(w io.Writer, records []models.StreetRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("lỗi đổi tên sheet: %w", err)
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("lỗi ghi header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := recordValues(r)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("lỗi ghi dòng %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("lỗi ghi xlsx: %w", err)
	}
	return nil
}

// WriteCSV ghi records ra CSV với cùng header như xlsx
func WriteCSV(w io.Writer, records []models.StreetRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Name, r.SubDistrict, r.UrbanVillage, r.Neighborhood, r.SubUnit,
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Longitude, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
