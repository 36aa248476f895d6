package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/docvault/internal/model"
	appErr "github.com/xxxsen/docvault/internal/pkg/errors"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func shareRows() *sqlmock.Rows {
	return sqlmock.NewRows(shareColumns)
}

func TestShareRepoCreateMultipleWritesJoinRows(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShareRepo(db)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO shares \(.+\) VALUES \(.+\) RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(`INSERT INTO share_documents`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	share := &model.Share{
		Token:       "tok",
		Kind:        model.ShareKindMultiple,
		Visibility:  model.VisibilityPublic,
		UserID:      1,
		DocumentIDs: []int64{3, 2},
		ExpiresAt:   now.Add(time.Hour),
		CreatedAt:   now,
	}
	require.NoError(t, repo.Create(context.Background(), share))
	require.Equal(t, int64(7), share.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShareRepoCreateRollsBackOnJoinFailure(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShareRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO shares`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectExec(`INSERT INTO share_documents`).
		WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Share{
		Token:       "tok",
		Kind:        model.ShareKindMultiple,
		Visibility:  model.VisibilityPublic,
		UserID:      1,
		DocumentIDs: []int64{9},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShareRepoCreateDocumentShareSkipsJoinTable(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShareRepo(db)
	docID := int64(42)
	email := "b@x.com"

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO shares`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	share := &model.Share{
		Token:       "tok",
		Kind:        model.ShareKindDocument,
		Visibility:  model.VisibilityPrivate,
		UserID:      1,
		TargetEmail: &email,
		DocumentID:  &docID,
	}
	require.NoError(t, repo.Create(context.Background(), share))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShareRepoGetByToken(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShareRepo(db)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM shares WHERE`).
		WillReturnRows(shareRows().AddRow(5, "tok", "multiple", "private", 1, "c@x.com", nil, nil, now.Add(time.Hour), 3, now))
	mock.ExpectQuery(`SELECT share_id, document_id FROM share_documents WHERE share_id IN \(\$1\) ORDER BY share_id, position`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"share_id", "document_id"}).AddRow(5, 30).AddRow(5, 10))

	share, err := repo.GetByToken(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, model.ShareKindMultiple, share.Kind)
	require.Equal(t, "multiple_private", share.Type())
	require.NotNil(t, share.TargetEmail)
	require.Equal(t, "c@x.com", *share.TargetEmail)
	require.Nil(t, share.DocumentID)
	require.Equal(t, []int64{30, 10}, share.DocumentIDs)
	require.Equal(t, int64(3), share.AccessCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShareRepoGetByTokenNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShareRepo(db)

	mock.ExpectQuery(`SELECT (.+) FROM shares WHERE`).WillReturnRows(shareRows())

	_, err := repo.GetByToken(context.Background(), "missing")
	require.True(t, errors.Is(err, appErr.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShareRepoIncrementAccessCount(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShareRepo(db)

	mock.ExpectQuery(`UPDATE shares SET access_count = access_count \+ 1 WHERE id = \$1 RETURNING access_count`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"access_count"}).AddRow(4))
	count, err := repo.IncrementAccessCount(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, int64(4), count)

	mock.ExpectQuery(`UPDATE shares`).WithArgs(int64(6)).WillReturnError(sql.ErrNoRows)
	_, err = repo.IncrementAccessCount(context.Background(), 6)
	require.True(t, errors.Is(err, appErr.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShareRepoListPrivateByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShareRepo(db)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM shares WHERE (.+) ORDER BY created_at desc`).
		WillReturnRows(shareRows().
			AddRow(9, "t9", "multiple", "private", 2, "b@x.com", nil, nil, now, 0, now).
			AddRow(8, "t8", "document", "private", 2, "b@x.com", 42, nil, now, 1, now.Add(-time.Minute)))
	mock.ExpectQuery(`SELECT share_id, document_id FROM share_documents`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"share_id", "document_id"}).AddRow(9, 1).AddRow(9, 2))

	items, err := repo.ListPrivateByEmail(context.Background(), "b@x.com")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, []int64{1, 2}, items[0].DocumentIDs)
	require.NotNil(t, items[1].DocumentID)
	require.Equal(t, int64(42), *items[1].DocumentID)
	require.NoError(t, mock.ExpectationsWereMet())
}
