package migrate

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var appliedColumns = []string{"version", "name", "applied_at", "down_sql"}

func testMigrations() []*Migration {
	return []*Migration{
		{
			Version: 1,
			Name:    "create_widgets",
			Up:      "CREATE TABLE widgets (id UUID PRIMARY KEY);",
			Down:    "DROP TABLE widgets;",
		},
		{
			Version: 2,
			Name:    "add_widget_name",
			Up:      "ALTER TABLE widgets ADD COLUMN name TEXT;",
			Down:    "ALTER TABLE widgets DROP COLUMN name;",
		},
	}
}

func TestRunner_MigrateUp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	runner := NewRunner(db, zap.NewNop())
	ctx := context.Background()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT version, name, applied_at, down_sql FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows(appliedColumns).
			AddRow(int64(1), "create_widgets", time.Now(), "DROP TABLE widgets;"))

	mock.ExpectBegin()
	mock.ExpectExec(`ALTER TABLE widgets ADD COLUMN name TEXT`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO schema_migrations`).
		WithArgs(int64(2), "add_widget_name", "ALTER TABLE widgets DROP COLUMN name;").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	count, err := runner.MigrateUp(ctx, testMigrations())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_MigrateUpNothingPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	runner := NewRunner(db, nil)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT version, name, applied_at, down_sql FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows(appliedColumns).
			AddRow(int64(1), "create_widgets", time.Now(), nil).
			AddRow(int64(2), "add_widget_name", time.Now(), nil))

	count, err := runner.MigrateUp(context.Background(), testMigrations())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_MigrateUpRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	runner := NewRunner(db, zap.NewNop())

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT version, name, applied_at, down_sql FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows(appliedColumns))

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE widgets`).
		WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	count, err := runner.MigrateUp(context.Background(), testMigrations())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create_widgets")
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_MigrateDown(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	runner := NewRunner(db, zap.NewNop())

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`ORDER BY version DESC`).
		WillReturnRows(sqlmock.NewRows(appliedColumns).
			AddRow(int64(2), "add_widget_name", time.Now(), "ALTER TABLE widgets DROP COLUMN name;"))
	mock.ExpectBegin()
	mock.ExpectExec(`ALTER TABLE widgets DROP COLUMN name`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM schema_migrations WHERE version`).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	m, err := runner.MigrateDown(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.Version)
	assert.Equal(t, "add_widget_name", m.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_MigrateDownEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	runner := NewRunner(db, zap.NewNop())

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`ORDER BY version DESC`).
		WillReturnRows(sqlmock.NewRows(appliedColumns))

	_, err = runner.MigrateDown(context.Background())
	assert.ErrorIs(t, err, ErrNothingToRollback)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_Status(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	runner := NewRunner(db, zap.NewNop())
	appliedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT version, name, applied_at, down_sql FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows(appliedColumns).
			AddRow(int64(1), "create_widgets", appliedAt, nil))

	status, err := runner.Status(context.Background(), testMigrations())
	require.NoError(t, err)

	assert.Equal(t, 2, status.Total)
	require.Len(t, status.Applied, 1)
	require.Len(t, status.Pending, 1)
	assert.True(t, status.Applied[0].Applied)
	assert.Equal(t, appliedAt, status.Applied[0].AppliedAt)
	assert.Equal(t, "add_widget_name", status.Pending[0].Name)
	assert.Equal(t, "Total: 2 migrations (1 applied, 1 pending)", status.Summary())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_add_name.up.sql":   {Data: []byte("ALTER TABLE t ADD COLUMN name TEXT;")},
		"0002_add_name.down.sql": {Data: []byte("ALTER TABLE t DROP COLUMN name;")},
		"0001_create_t.up.sql":   {Data: []byte("CREATE TABLE t (id UUID);")},
		"README.md":              {Data: []byte("ignored")},
	}

	migrations, err := Load(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, int64(1), migrations[0].Version)
	assert.Equal(t, "create_t", migrations[0].Name)
	assert.Empty(t, migrations[0].Down)
	assert.Equal(t, int64(2), migrations[1].Version)
	assert.Equal(t, "ALTER TABLE t DROP COLUMN name;", migrations[1].Down)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{
			name: "missing up file",
			fsys: fstest.MapFS{"0001_create_t.down.sql": {Data: []byte("DROP TABLE t;")}},
		},
		{
			name: "bad version",
			fsys: fstest.MapFS{"first_create_t.up.sql": {Data: []byte("SELECT 1;")}},
		},
		{
			name: "no direction",
			fsys: fstest.MapFS{"0001_create_t.sql": {Data: []byte("SELECT 1;")}},
		},
		{
			name: "version reused",
			fsys: fstest.MapFS{
				"0001_a.up.sql": {Data: []byte("SELECT 1;")},
				"0001_b.up.sql": {Data: []byte("SELECT 2;")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.fsys)
			assert.Error(t, err)
		})
	}
}

func TestEmbedded(t *testing.T) {
	migrations, err := Embedded()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i, m := range migrations {
		assert.NotEmpty(t, m.Up, m.Name)
		assert.NotEmpty(t, m.Down, m.Name)
		if i > 0 {
			assert.Greater(t, m.Version, migrations[i-1].Version)
		}
	}
}
