package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, d interface {
	Get(dest any, query string, args ...any) error
}, name string) bool {
	t.Helper()
	var count int
	require.NoError(t, d.Get(&count, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name))
	return count == 1
}

func TestOpenForTesting(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	for _, table := range []string{"users", "spots", "spot_images", "reviews", "review_images", "bookings", "wishlists"} {
		assert.True(t, tableExists(t, db, table), "table %s should exist", table)
	}
}

func TestOpenForTestingIsolated(t *testing.T) {
	a, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	b, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	_, err = a.Exec(`INSERT INTO users (first_name, last_name, username, email, hashed_password) VALUES ('A', 'B', 'alpha', 'a@example.com', 'x')`)
	require.NoError(t, err)

	var count int
	require.NoError(t, b.Get(&count, "SELECT COUNT(*) FROM users"))
	assert.Zero(t, count)
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`INSERT INTO spots (owner_id, address, city, state, country, name, description, price)
		VALUES (999, '1 Main', 'Town', 'ST', 'US', 'Nowhere', 'orphan', 10)`)
	assert.Error(t, err)
}

func TestMigrateDownAndUp(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "stayhaven.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	v, dirty, err := Version(db)
	require.NoError(t, err)
	assert.Equal(t, uint(5), v)
	assert.False(t, dirty)

	require.NoError(t, Migrate(db, Down))
	assert.False(t, tableExists(t, db, "wishlists"))

	v, _, err = Version(db)
	require.NoError(t, err)
	assert.Equal(t, uint(4), v)

	require.NoError(t, Migrate(db, Up))
	assert.True(t, tableExists(t, db, "wishlists"))

	// Re-applying with nothing pending is a no-op.
	require.NoError(t, Migrate(db, Up))
}
