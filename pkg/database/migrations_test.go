package database

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadMigrations(t *testing.T) {
	tests := []struct {
		name     string
		fsys     fstest.MapFS
		versions []int
		wantErr  string
	}{
		{
			name: "sorted by version, non-sql ignored",
			fsys: fstest.MapFS{
				"010_later.sql":   {Data: []byte("SELECT 10;")},
				"002_second.sql":  {Data: []byte("SELECT 2;")},
				"001_initial.sql": {Data: []byte("SELECT 1;")},
				"README.md":       {Data: []byte("ignored")},
			},
			versions: []int{1, 2, 10},
		},
		{
			name:    "missing version prefix",
			fsys:    fstest.MapFS{"initial.sql": {Data: []byte("SELECT 1;")}},
			wantErr: "version number",
		},
		{
			name: "duplicate version",
			fsys: fstest.MapFS{
				"001_a.sql": {Data: []byte("SELECT 1;")},
				"1_b.sql":   {Data: []byte("SELECT 1;")},
			},
			wantErr: "already used",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadMigrations(tt.fsys)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			var versions []int
			for _, m := range got {
				versions = append(versions, m.Version)
				assert.Len(t, m.Checksum, 64)
			}
			assert.Equal(t, tt.versions, versions)
			assert.Equal(t, "initial", got[0].Name)
		})
	}
}

func TestBundledMigrations(t *testing.T) {
	migrations, err := LoadMigrations(BundledMigrations())
	require.NoError(t, err)
	require.Len(t, migrations, 3)
	assert.Equal(t, "001_initial_schema", migrations[0].String())
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS claims")
	assert.Contains(t, migrations[2].SQL, "p-apollo")
}

func checksumOf(t *testing.T, fsys fstest.MapFS, version int) string {
	t.Helper()
	migrations, err := LoadMigrations(fsys)
	require.NoError(t, err)
	for _, m := range migrations {
		if m.Version == version {
			return m.Checksum
		}
	}
	t.Fatalf("no migration %d", version)
	return ""
}

func TestMigrator_SkipsApplied(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	fsys := fstest.MapFS{
		"001_initial.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"002_more.sql":    {Data: []byte("CREATE TABLE b (id INTEGER);")},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version, checksum FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version", "checksum"}).AddRow(1, checksumOf(t, fsys, 1)))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE b`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO schema_migrations`).
		WithArgs(2, "more", checksumOf(t, fsys, 2)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	m := NewMigrator(Wrap(sqlDB, zap.NewNop()), zap.NewNop())
	require.NoError(t, m.Run(context.Background(), fsys))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_DetectsEditedMigration(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version, checksum FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version", "checksum"}).AddRow(1, "stale"))

	m := NewMigrator(Wrap(sqlDB, zap.NewNop()), zap.NewNop())
	err = m.Run(context.Background(), fstest.MapFS{"001_initial.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")}})
	assert.ErrorIs(t, err, ErrMigrationChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_RollsBackFailedMigration(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version, checksum FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version", "checksum"}))
	mock.ExpectBegin()
	mock.ExpectExec("BROKEN").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	m := NewMigrator(Wrap(sqlDB, zap.NewNop()), zap.NewNop())
	err = m.Run(context.Background(), fstest.MapFS{"001_bad.sql": {Data: []byte("BROKEN SQL")}})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
