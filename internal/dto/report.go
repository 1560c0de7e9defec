package dto

type InputReportRow struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
	Date     string `json:"date"`
	Entity   string `json:"entity"`
}

type InputReportGroup struct {
	Product string           `json:"product"`
	Data    []InputReportRow `json:"data"`
}

type InputReport struct {
	Title  string             `json:"title"`
	Period string             `json:"period"`
	Groups []InputReportGroup `json:"groups"`
}

type ProductReportRow struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
	Info  string `json:"info"`
	Date  string `json:"date"`
}

type ProductReport struct {
	Title string             `json:"title"`
	Rows  []ProductReportRow `json:"rows"`
}
