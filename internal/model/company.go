package model

type Company struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
}

// CompanySummary is the only part of a company exposed through a share.
type CompanySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
