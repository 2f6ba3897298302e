package datasource

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fidelity-backend/internal/table"
)

func seedSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fidelity.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE patients (age INTEGER, weight REAL, ward TEXT)`,
		`INSERT INTO patients VALUES (34, 71.5, 'A'), (51, NULL, 'B'), (29, 64.25, 'A')`,
		`CREATE TABLE "odd ""name""" (x INTEGER)`,
		`INSERT INTO "odd ""name""" VALUES (1)`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}

func TestSQLiteSource(t *testing.T) {
	ctx := context.Background()
	src, err := Open(ctx, Config{Type: "sqlite", DSN: seedSQLite(t)}, nil)
	require.NoError(t, err)
	defer src.Close()

	tables, err := src.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{`odd "name"`, "patients"}, tables)

	tbl, err := src.LoadTable(ctx, "patients", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "weight", "ward"}, tbl.Headers())
	assert.Equal(t, 3, tbl.Len())

	weight, _ := tbl.Column("weight")
	assert.Equal(t, table.Numeric, weight.Kind)
	assert.Equal(t, []float64{71.5, 64.25}, weight.Values())
	ward, _ := tbl.Column("ward")
	assert.Equal(t, table.Categorical, ward.Kind)

	limited, err := src.LoadTable(ctx, "patients", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, limited.Len())

	quoted, err := src.LoadTable(ctx, `odd "name"`, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, quoted.Len())
}

func TestLoadTableRejectsUnknownNames(t *testing.T) {
	ctx := context.Background()
	src, err := Open(ctx, Config{Type: "sqlite", DSN: seedSQLite(t)}, nil)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.LoadTable(ctx, "patients; DROP TABLE patients", 0)
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestOpenUnsupportedType(t *testing.T) {
	_, err := Open(context.Background(), Config{Type: "oracle"}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestConnString(t *testing.T) {
	assert.Equal(t,
		"host=db port=5432 user=u password=p dbname=d sslmode=disable",
		connString("postgres", Config{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "d"}))
	assert.Equal(t, "file.db", connString("sqlite", Config{DBName: "file.db"}))
	assert.Equal(t, "postgres://x", connString("postgres", Config{DSN: "postgres://x"}))
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", cellString(nil))
	assert.Equal(t, "abc", cellString([]byte("abc")))
	assert.Equal(t, "42", cellString(int64(42)))
	assert.Equal(t, "0.5", cellString(0.5))
	assert.Equal(t, "true", cellString(true))
}
