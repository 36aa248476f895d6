package repo

import (
	"context"
	"database/sql"

	"github.com/xxxsen/docvault/internal/model"
	"github.com/xxxsen/docvault/internal/pkg/dbutil"
)

type CompanyRepo struct {
	db *sql.DB
}

func NewCompanyRepo(db *sql.DB) *CompanyRepo {
	return &CompanyRepo{db: db}
}

func (r *CompanyRepo) ListSummaries(ctx context.Context, ids []int64) (map[int64]model.CompanySummary, error) {
	result := make(map[int64]model.CompanySummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	sqlStr, args, err := dbutil.In("SELECT id, name FROM companies WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var item model.CompanySummary
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, err
		}
		result[item.ID] = item
	}
	return result, rows.Err()
}
