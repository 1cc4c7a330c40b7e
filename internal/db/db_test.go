package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenForTesting(t *testing.T) {
	d, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	assert.NoError(t, d.Ping())
}

func TestOpenForTestingIsolated(t *testing.T) {
	first, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Close() })

	second, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	_, err = first.Exec(`INSERT INTO places (name, createdAt) VALUES ('Louvre', '2025-01-01T00:00:00.000Z')`)
	require.NoError(t, err)

	var count int
	require.NoError(t, second.Get(&count, `SELECT COUNT(*) FROM places`))
	assert.Zero(t, count)
}

func TestSchemaTablesAndIndexes(t *testing.T) {
	d, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	for _, table := range []string{"places", "trips", "trip_places", "photos"} {
		var name string
		err := d.Get(&name, "SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table)
		assert.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	for _, index := range []string{
		"idx_trip_places_tripId",
		"idx_trip_places_placeId",
		"idx_photos_entity",
		"idx_trips_current",
	} {
		var name string
		err := d.Get(&name, "SELECT name FROM sqlite_master WHERE type='index' AND name = ?", index)
		assert.NoError(t, err, index)
		assert.Equal(t, index, name)
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	d, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	assert.NoError(t, EnsureSchema(d.DB))
	assert.NoError(t, EnsureSchema(d.DB))
}

func TestEnsureSchemaAdoptsUntrackedDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	// A file created by a build that ran the DDL without tracking migrations.
	legacy, err := Open(path)
	require.NoError(t, err)
	_, err = legacy.Exec(`DROP TABLE schema_migrations`)
	require.NoError(t, err)
	_, err = legacy.Exec(`INSERT INTO trips (title, createdAt) VALUES ('Japan', '2025-01-01T00:00:00.000Z')`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, reopened.Close()) })

	var title string
	require.NoError(t, reopened.Get(&title, `SELECT title FROM trips`))
	assert.Equal(t, "Japan", title)
}

func TestOpenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gonext.db")

	d, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	assert.FileExists(t, path)
}
