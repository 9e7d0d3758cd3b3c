package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/presensi-app/attendance-backend-go/internal/pkg/database"
	"github.com/presensi-app/attendance-backend-go/migrations"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// every table. Tests are skipped when no database is configured.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.Migrate(ctx, db, migrations.FS))

	_, err = db.Exec(ctx, "TRUNCATE TABLE media, refresh_tokens, attendances, users CASCADE")
	require.NoError(t, err)

	return db
}
