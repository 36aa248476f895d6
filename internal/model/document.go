package model

import "time"

type Document struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	CompanyID int64     `json:"companyId"`
	FolderID  *int64    `json:"folderId,omitempty"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	FileName  string    `json:"fileName"`
	FileURL   string    `json:"fileUrl"`
	FileSize  int64     `json:"fileSize"`
	MimeType  string    `json:"mimeType"`
	CreatedAt time.Time `json:"createdAt"`
}
