package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/docvault/internal/pkg/errors"
)

func documentRows() *sqlmock.Rows {
	return sqlmock.NewRows(documentColumns)
}

func TestDocumentRepoGetOwned(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepo(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM documents WHERE`).
		WillReturnRows(documentRows().AddRow(42, 1, 3, nil, "Invoice", "finance", "inv.pdf", "/files/inv.pdf", 100, "application/pdf", now))
	doc, err := repo.GetOwned(context.Background(), 1, 42)
	require.NoError(t, err)
	require.Equal(t, int64(42), doc.ID)
	require.Nil(t, doc.FolderID)
	require.Equal(t, "application/pdf", doc.MimeType)

	mock.ExpectQuery(`SELECT (.+) FROM documents WHERE`).WillReturnRows(documentRows())
	_, err = repo.GetOwned(context.Background(), 2, 42)
	require.True(t, errors.Is(err, appErr.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepoListOwnedExpandsIDs(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepo(db)
	now := time.Now()

	mock.ExpectQuery(`FROM documents WHERE user_id = \$1 AND id IN \(\$2, \$3\)`).
		WithArgs(int64(1), int64(10), int64(11)).
		WillReturnRows(documentRows().
			AddRow(10, 1, 3, 5, "a", "c", "a.pdf", "/a", 1, "application/pdf", now).
			AddRow(11, 1, 3, 5, "b", "c", "b.pdf", "/b", 1, "application/pdf", now))
	docs, err := repo.ListOwned(context.Background(), 1, []int64{10, 11})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.NotNil(t, docs[0].FolderID)
	require.Equal(t, int64(5), *docs[0].FolderID)

	empty, err := repo.ListOwned(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepoFolderQueries(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepo(db)

	mock.ExpectQuery(`SELECT COUNT\(1\) FROM documents WHERE folder_id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	count, err := repo.CountByFolder(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	mock.ExpectQuery(`FROM documents WHERE folder_id = \$1 ORDER BY created_at, id`).
		WithArgs(int64(5)).
		WillReturnRows(documentRows())
	docs, err := repo.ListByFolder(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, docs)
	require.NoError(t, mock.ExpectationsWereMet())
}
