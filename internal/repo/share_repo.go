package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/docvault/internal/model"
	"github.com/xxxsen/docvault/internal/pkg/dbutil"
	appErr "github.com/xxxsen/docvault/internal/pkg/errors"
)

var shareColumns = []string{"id", "token", "kind", "visibility", "user_id", "target_email", "document_id", "folder_id", "expires_at", "access_count", "created_at"}

type ShareRepo struct {
	db *sql.DB
}

func NewShareRepo(db *sql.DB) *ShareRepo {
	return &ShareRepo{db: db}
}

// Create stores the share and, for multiple shares, its ordered document
// list in one transaction. share.ID is filled on success.
func (r *ShareRepo) Create(ctx context.Context, share *model.Share) (err error) {
	data := map[string]interface{}{
		"token":        share.Token,
		"kind":         string(share.Kind),
		"visibility":   string(share.Visibility),
		"user_id":      share.UserID,
		"target_email": nullString(share.TargetEmail),
		"document_id":  nullInt64(share.DocumentID),
		"folder_id":    nullInt64(share.FolderID),
		"expires_at":   share.ExpiresAt,
		"access_count": share.AccessCount,
		"created_at":   share.CreatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("shares", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr+" RETURNING id", args)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = tx.QueryRowContext(ctx, sqlStr, args...).Scan(&share.ID); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	if len(share.DocumentIDs) > 0 {
		rows := make([]map[string]interface{}, 0, len(share.DocumentIDs))
		for i, docID := range share.DocumentIDs {
			rows = append(rows, map[string]interface{}{
				"share_id":    share.ID,
				"document_id": docID,
				"position":    i,
			})
		}
		joinSQL, joinArgs, buildErr := builder.BuildInsert("share_documents", rows)
		if buildErr != nil {
			err = buildErr
			return err
		}
		joinSQL, joinArgs = dbutil.Finalize(joinSQL, joinArgs)
		if _, err = tx.ExecContext(ctx, joinSQL, joinArgs...); err != nil {
			return fmt.Errorf("insert share documents: %w", err)
		}
	}
	return tx.Commit()
}

func (r *ShareRepo) GetByToken(ctx context.Context, token string) (*model.Share, error) {
	sqlStr, args, err := builder.BuildSelect("shares", map[string]interface{}{"token": token}, shareColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	share, err := func() (*model.Share, error) {
		defer func() { _ = rows.Close() }()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return nil, err
			}
			return nil, appErr.ErrNotFound
		}
		return scanShare(rows)
	}()
	if err != nil {
		return nil, err
	}
	if share.Kind == model.ShareKindMultiple {
		ids, err := r.listDocumentIDs(ctx, []int64{share.ID})
		if err != nil {
			return nil, err
		}
		share.DocumentIDs = ids[share.ID]
	}
	return share, nil
}

// IncrementAccessCount bumps access_count in a single statement and returns
// the new value.
func (r *ShareRepo) IncrementAccessCount(ctx context.Context, id int64) (int64, error) {
	sqlStr, args := dbutil.Finalize("UPDATE shares SET access_count = access_count + 1 WHERE id = ? RETURNING access_count", []interface{}{id})
	var count int64
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		if err == sql.ErrNoRows {
			return 0, appErr.ErrNotFound
		}
		return 0, err
	}
	return count, nil
}

// ListPrivateByEmail returns private shares addressed to email, newest first.
// email must already be lowercase.
func (r *ShareRepo) ListPrivateByEmail(ctx context.Context, email string) ([]model.Share, error) {
	where := map[string]interface{}{
		"visibility":   string(model.VisibilityPrivate),
		"target_email": email,
		"_orderby":     "created_at desc",
	}
	sqlStr, args, err := builder.BuildSelect("shares", where, shareColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	items := make([]model.Share, 0)
	multiple := make([]int64, 0)
	err = func() error {
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			share, err := scanShare(rows)
			if err != nil {
				return err
			}
			if share.Kind == model.ShareKindMultiple {
				multiple = append(multiple, share.ID)
			}
			items = append(items, *share)
		}
		return rows.Err()
	}()
	if err != nil {
		return nil, err
	}
	if len(multiple) == 0 {
		return items, nil
	}
	ids, err := r.listDocumentIDs(ctx, multiple)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Kind == model.ShareKindMultiple {
			items[i].DocumentIDs = ids[items[i].ID]
		}
	}
	return items, nil
}

func (r *ShareRepo) listDocumentIDs(ctx context.Context, shareIDs []int64) (map[int64][]int64, error) {
	sqlStr, args, err := dbutil.In("SELECT share_id, document_id FROM share_documents WHERE share_id IN (?) ORDER BY share_id, position", shareIDs)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	result := make(map[int64][]int64, len(shareIDs))
	for rows.Next() {
		var shareID, docID int64
		if err := rows.Scan(&shareID, &docID); err != nil {
			return nil, err
		}
		result[shareID] = append(result[shareID], docID)
	}
	return result, rows.Err()
}

func scanShare(rows *sql.Rows) (*model.Share, error) {
	var (
		share       model.Share
		kind        string
		visibility  string
		targetEmail sql.NullString
		documentID  sql.NullInt64
		folderID    sql.NullInt64
	)
	if err := rows.Scan(&share.ID, &share.Token, &kind, &visibility, &share.UserID, &targetEmail, &documentID, &folderID, &share.ExpiresAt, &share.AccessCount, &share.CreatedAt); err != nil {
		return nil, err
	}
	share.Kind = model.ShareKind(kind)
	share.Visibility = model.Visibility(visibility)
	share.TargetEmail = stringPtr(targetEmail)
	share.DocumentID = int64Ptr(documentID)
	share.FolderID = int64Ptr(folderID)
	return &share, nil
}
