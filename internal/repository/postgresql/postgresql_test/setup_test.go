package postgresql_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

var (
	testDB     *database.DB
	testDBErr  error
	testDBOnce sync.Once
)

// tables in dependency order for truncation
var tables = []string{
	"notification_preferences",
	"notifications",
	"overtime_mpl_conversions",
	"overtime_requests",
	"attendance_records",
	"overtime_config",
	"users",
}

// setupTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// every table. Tests are skipped when the variable is unset.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testDBOnce.Do(func() {
		testDB, testDBErr = database.NewPostgreSQLDB(dsn, database.PoolConfig{MaxConns: 5, MinConns: 1})
		if testDBErr == nil {
			testDBErr = postgresql.EnsureSchema(context.Background(), testDB)
		}
	})
	require.NoError(t, testDBErr)

	truncate := func() {
		for _, table := range tables {
			_, err := testDB.Exec(context.Background(), "TRUNCATE TABLE "+table+" CASCADE")
			require.NoError(t, err, table)
		}
	}
	truncate()
	t.Cleanup(truncate)

	return testDB
}

func createTestUser(t *testing.T, db *database.DB, name, role string) string {
	t.Helper()

	var id string
	err := db.QueryRow(context.Background(), `
		INSERT INTO users (full_name, email, role)
		VALUES ($1, lower(replace($1, ' ', '.')) || '@example.com', $2)
		RETURNING id
	`, name, role).Scan(&id)
	require.NoError(t, err)
	return id
}
