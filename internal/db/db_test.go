package db

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/docvault/internal/config"
)

func TestBuildDSN(t *testing.T) {
	require.Equal(t, "postgres://given", BuildDSN(config.DatabaseConfig{DSN: "postgres://given"}))
	require.Equal(t,
		"host=db port=5432 user=u password=p dbname=vault sslmode=disable",
		BuildDSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "vault"}),
	)
}

func TestMigrationFilesSorted(t *testing.T) {
	files, err := MigrationFiles()
	require.NoError(t, err)
	require.Equal(t, []string{"001_init.sql", "002_shares.sql"}, files)
}

func TestSplitStatements(t *testing.T) {
	require.Equal(t, []string{"CREATE TABLE a (id INT)", "CREATE INDEX b ON a (id)"},
		splitStatements("CREATE TABLE a (id INT);\n\n CREATE INDEX b ON a (id);\n"))
}

func TestApplyMigrationsExecutesEveryStatement(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	files, err := MigrationFiles()
	require.NoError(t, err)
	total := 0
	for _, file := range files {
		content, err := migrationsFS.ReadFile("migrations/" + file)
		require.NoError(t, err)
		total += len(splitStatements(string(content)))
	}
	mock.MatchExpectationsInOrder(true)
	for i := 0; i < total; i++ {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, ApplyMigrations(context.Background(), conn))
	require.NoError(t, mock.ExpectationsWereMet())
}
