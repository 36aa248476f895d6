package model

import (
	"fmt"
	"time"
)

type ShareKind string

const (
	ShareKindDocument ShareKind = "document"
	ShareKindFolder   ShareKind = "folder"
	ShareKindMultiple ShareKind = "multiple"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func ParseVisibility(value string) (Visibility, error) {
	switch Visibility(value) {
	case VisibilityPublic, VisibilityPrivate:
		return Visibility(value), nil
	}
	return "", fmt.Errorf("unknown visibility %q", value)
}

// Share is a tokenized, expiring read capability. Exactly one subject is set
// and which one follows from Kind: DocumentID, FolderID, or DocumentIDs.
type Share struct {
	ID          int64
	Token       string
	Kind        ShareKind
	Visibility  Visibility
	UserID      int64
	TargetEmail *string
	DocumentID  *int64
	FolderID    *int64
	DocumentIDs []int64
	ExpiresAt   time.Time
	AccessCount int64
	CreatedAt   time.Time
}

// Type is the combined tag exposed to clients, e.g. "folder_private".
func (s *Share) Type() string {
	return ShareType(s.Kind, s.Visibility)
}

func (s *Share) IsPrivate() bool {
	return s.Visibility == VisibilityPrivate
}

func (s *Share) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

func ShareType(kind ShareKind, visibility Visibility) string {
	return string(kind) + "_" + string(visibility)
}
