package models

// StreetRecord một jalan/gang đã chuẩn hóa, gán vào đúng một SLS.
// Duy nhất theo (Name, SLS trong cùng).
type StreetRecord struct {
	Name         string  `json:"nama_jalan"` // Tên đã chuẩn hóa
	SubDistrict  string  `json:"kecamatan"`  // Kecamatan
	UrbanVillage string  `json:"kelurahan"`  // Kelurahan / desa
	Neighborhood string  `json:"lingkungan"` // Lingkungan
	SubUnit      string  `json:"sls"`        // SLS (RT)
	Latitude     float64 `json:"latitude"`   // Vĩ độ điểm đại diện
	Longitude    float64 `json:"longitude"`  // Kinh độ điểm đại diện
}

// Summary số liệu tổng hợp của một lần mapping
type Summary struct {
	TotalStreets  int `json:"total_streets"`  // Tổng số record
	UrbanVillages int `json:"urban_villages"` // Số kelurahan phân biệt
	Neighborhoods int `json:"neighborhoods"`  // Số lingkungan phân biệt
	SubUnits      int `json:"sub_units"`      // Số SLS phân biệt
}

// Summarize đếm số đơn vị phân biệt ở từng cấp. Lingkungan và SLS được đếm
// theo cả chuỗi cha vì tên của chúng lặp lại giữa các kelurahan.
func Summarize(records []StreetRecord) Summary {
	villages := make(map[string]struct{})
	neighborhoods := make(map[string]struct{})
	subUnits := make(map[string]struct{})

	for _, r := range records {
		village := r.SubDistrict + "\x00" + r.UrbanVillage
		neighborhood := village + "\x00" + r.Neighborhood
		villages[village] = struct{}{}
		neighborhoods[neighborhood] = struct{}{}
		subUnits[neighborhood+"\x00"+r.SubUnit] = struct{}{}
	}

	return Summary{
		TotalStreets:  len(records),
		UrbanVillages: len(villages),
		Neighborhoods: len(neighborhoods),
		SubUnits:      len(subUnits),
	}
}
