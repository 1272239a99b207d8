package requests

// MapStreetsRequest request mapping jalan/gang của một kecamatan
type MapStreetsRequest struct {
	SubDistrict string `json:"sub_district" binding:"required"` // Tên kecamatan
}

// ValidateRequest request đối chiếu với sheet tham chiếu
type ValidateRequest struct {
	SubDistrict  string `json:"sub_district" binding:"required"`  // Tên kecamatan
	ReferenceURL string `json:"reference_url" binding:"required"` // Link Google Sheets public
}

// ExportQuery query string của endpoint xuất file
type ExportQuery struct {
	SubDistrict string `form:"sub_district" binding:"required"` // Tên kecamatan
	Format      string `form:"format"`                          // xlsx (mặc định) hoặc csv
}
