package model

import "time"

type Folder struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	CompanyID int64     `json:"companyId"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}
