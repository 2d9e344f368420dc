package dto

// PageMeta describes pagination of a list response.
type PageMeta struct {
	Page        int   `json:"page"`
	TotalNumber int64 `json:"total_number"`
	TotalPages  int   `json:"total_pages"`
	DisplayPage int   `json:"display_page"`
}

// RefName is a resolved lookup reference: external id plus display name.
type RefName struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
