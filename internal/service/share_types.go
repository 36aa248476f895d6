package service

import (
	"time"

	"github.com/xxxsen/docvault/internal/model"
)

type CreateShareInput struct {
	Visibility       model.Visibility
	OwnerUserID      int64
	TargetEmail      string
	ExpiresInMinutes *int
}

type CreateDocumentShareInput struct {
	CreateShareInput
	DocumentID int64
}

type CreateFolderShareInput struct {
	CreateShareInput
	FolderID int64
}

type CreateMultipleShareInput struct {
	CreateShareInput
	DocumentIDs []int64
}

type ShareLink struct {
	Token          string    `json:"token"`
	URL            string    `json:"url"`
	Type           string    `json:"type"`
	TargetEmail    *string   `json:"targetEmail"`
	ExpiresAt      time.Time `json:"expiresAt"`
	DocumentsCount *int      `json:"documentsCount,omitempty"`
}

type ShareInfo struct {
	Token       string    `json:"token"`
	Type        string    `json:"type"`
	ExpiresAt   time.Time `json:"expiresAt"`
	AccessCount int64     `json:"accessCount"`
	TargetEmail *string   `json:"targetEmail"`
}

type SharedDocument struct {
	ID        int64                 `json:"id"`
	Name      string                `json:"name"`
	Category  string                `json:"category"`
	FileURL   string                `json:"fileUrl"`
	MimeType  string                `json:"mimeType"`
	CreatedAt time.Time             `json:"createdAt"`
	Company   *model.CompanySummary `json:"company,omitempty"`
}

type SharedFolder struct {
	ID        int64                 `json:"id"`
	Name      string                `json:"name"`
	Category  string                `json:"category"`
	CreatedAt time.Time             `json:"createdAt"`
	Company   *model.CompanySummary `json:"company,omitempty"`
	Documents []SharedDocument      `json:"documents"`
}

// ResolvedShare carries exactly one subject, matching the share kind.
type ResolvedShare struct {
	Share     ShareInfo        `json:"share"`
	Document  *SharedDocument  `json:"document,omitempty"`
	Folder    *SharedFolder    `json:"folder,omitempty"`
	Documents []SharedDocument `json:"documents,omitempty"`
}

type ShareSender struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type ReceivedFolder struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	DocumentsCount int    `json:"documentsCount"`
}

type ReceivedShare struct {
	ID             int64           `json:"id"`
	Token          string          `json:"token"`
	Type           string          `json:"type"`
	CreatedAt      time.Time       `json:"createdAt"`
	ExpiresAt      time.Time       `json:"expiresAt"`
	AccessCount    int64           `json:"accessCount"`
	Expired        bool            `json:"expired"`
	From           ShareSender     `json:"from"`
	Document       *SharedDocument `json:"document,omitempty"`
	Folder         *ReceivedFolder `json:"folder,omitempty"`
	DocumentsCount *int            `json:"documentsCount,omitempty"`
}
