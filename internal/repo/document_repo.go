package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/docvault/internal/model"
	"github.com/xxxsen/docvault/internal/pkg/dbutil"
	appErr "github.com/xxxsen/docvault/internal/pkg/errors"
)

var documentColumns = []string{"id", "user_id", "company_id", "folder_id", "name", "category", "file_name", "file_url", "file_size", "mime_type", "created_at"}

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) GetOwned(ctx context.Context, userID, docID int64) (*model.Document, error) {
	return r.getOne(ctx, map[string]interface{}{"id": docID, "user_id": userID})
}

func (r *DocumentRepo) GetByID(ctx context.Context, docID int64) (*model.Document, error) {
	return r.getOne(ctx, map[string]interface{}{"id": docID})
}

// ListOwned returns the documents among ids that belong to userID.
func (r *DocumentRepo) ListOwned(ctx context.Context, userID int64, ids []int64) ([]model.Document, error) {
	if len(ids) == 0 {
		return []model.Document{}, nil
	}
	return r.query(ctx, "SELECT "+columns(documentColumns)+" FROM documents WHERE user_id = ? AND id IN (?) ORDER BY id", userID, ids)
}

func (r *DocumentRepo) ListByIDs(ctx context.Context, ids []int64) ([]model.Document, error) {
	if len(ids) == 0 {
		return []model.Document{}, nil
	}
	return r.query(ctx, "SELECT "+columns(documentColumns)+" FROM documents WHERE id IN (?) ORDER BY id", ids)
}

func (r *DocumentRepo) ListByFolder(ctx context.Context, folderID int64) ([]model.Document, error) {
	return r.query(ctx, "SELECT "+columns(documentColumns)+" FROM documents WHERE folder_id = ? ORDER BY created_at, id", folderID)
}

func (r *DocumentRepo) CountByFolder(ctx context.Context, folderID int64) (int, error) {
	sqlStr, args := dbutil.Finalize("SELECT COUNT(1) FROM documents WHERE folder_id = ?", []interface{}{folderID})
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DocumentRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.Document, error) {
	sqlStr, args, err := builder.BuildSelect("documents", where, documentColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, appErr.ErrNotFound
	}
	return scanDocument(rows)
}

func (r *DocumentRepo) query(ctx context.Context, query string, args ...interface{}) ([]model.Document, error) {
	sqlStr, bound, err := dbutil.In(query, args...)
	if err != nil {
		return nil, err
	}
	sqlStr, bound = dbutil.Finalize(sqlStr, bound)
	rows, err := r.db.QueryContext(ctx, sqlStr, bound...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *doc)
	}
	return items, rows.Err()
}

func scanDocument(rows *sql.Rows) (*model.Document, error) {
	var (
		doc      model.Document
		folderID sql.NullInt64
	)
	if err := rows.Scan(&doc.ID, &doc.UserID, &doc.CompanyID, &folderID, &doc.Name, &doc.Category, &doc.FileName, &doc.FileURL, &doc.FileSize, &doc.MimeType, &doc.CreatedAt); err != nil {
		return nil, err
	}
	doc.FolderID = int64Ptr(folderID)
	return &doc, nil
}
