package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/docvault/internal/model"
	"github.com/xxxsen/docvault/internal/pkg/dbutil"
	appErr "github.com/xxxsen/docvault/internal/pkg/errors"
)

var folderColumns = []string{"id", "user_id", "company_id", "name", "category", "created_at"}

type FolderRepo struct {
	db *sql.DB
}

func NewFolderRepo(db *sql.DB) *FolderRepo {
	return &FolderRepo{db: db}
}

func (r *FolderRepo) GetOwned(ctx context.Context, userID, folderID int64) (*model.Folder, error) {
	return r.getOne(ctx, map[string]interface{}{"id": folderID, "user_id": userID})
}

func (r *FolderRepo) GetByID(ctx context.Context, folderID int64) (*model.Folder, error) {
	return r.getOne(ctx, map[string]interface{}{"id": folderID})
}

func (r *FolderRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.Folder, error) {
	sqlStr, args, err := builder.BuildSelect("folders", where, folderColumns)
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
	var folder model.Folder
	if err := rows.Scan(&folder.ID, &folder.UserID, &folder.CompanyID, &folder.Name, &folder.Category, &folder.CreatedAt); err != nil {
		return nil, err
	}
	return &folder, nil
}
