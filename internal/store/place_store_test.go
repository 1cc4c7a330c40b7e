package store

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/gonext/internal/db"
	"github.com/vbonduro/gonext/internal/domain"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// closedDB returns a handle that fails every query, for asserting that an
// operation never reaches the database.
func closedDB(t *testing.T) *sqlx.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	require.NoError(t, d.Close())
	return d
}

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func float(v float64) *float64 { return &v }

func TestPlaceStoreCreateRoundTrip(t *testing.T) {
	d := openTestDB(t)
	places := NewPlaceStore(d)
	ctx := context.Background()

	input := domain.NewPlace{
		Name:        "Kinkaku-ji",
		Description: "Golden pavilion",
		VisitLater:  true,
		Liked:       false,
		Latitude:    float(35.0394),
		Longitude:   float(135.7292),
	}

	created, err := places.Create(ctx, input)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := places.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, input.Name, got.Name)
	assert.Equal(t, input.Description, got.Description)
	assert.True(t, got.VisitLater)
	assert.False(t, got.Liked)
	require.NotNil(t, got.Latitude)
	require.NotNil(t, got.Longitude)
	assert.InDelta(t, 35.0394, *got.Latitude, 1e-9)
	assert.InDelta(t, 135.7292, *got.Longitude, 1e-9)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestPlaceStoreCreateWithoutCoordinates(t *testing.T) {
	d := openTestDB(t)
	places := NewPlaceStore(d)

	created, err := places.Create(context.Background(), domain.NewPlace{Name: "Somewhere"})
	require.NoError(t, err)
	assert.Nil(t, created.Latitude)
	assert.Nil(t, created.Longitude)
	assert.Empty(t, created.Description)
}

func TestPlaceStoreCreatedAtPersistedAsISOString(t *testing.T) {
	d := openTestDB(t)
	places := NewPlaceStore(d)
	places.now = func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC) }

	created, err := places.Create(context.Background(), domain.NewPlace{Name: "Pi"})
	require.NoError(t, err)

	var raw string
	require.NoError(t, d.Get(&raw, `SELECT createdAt FROM places WHERE id = ?`, created.ID))
	assert.Equal(t, "2025-03-14T09:26:53.589Z", raw)
}

func TestPlaceStoreGetByIDNotFound(t *testing.T) {
	d := openTestDB(t)
	places := NewPlaceStore(d)

	got, err := places.GetByID(context.Background(), 99999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPlaceStoreGetByIDs(t *testing.T) {
	d := openTestDB(t)
	places := NewPlaceStore(d)
	ctx := context.Background()

	a, err := places.Create(ctx, domain.NewPlace{Name: "A"})
	require.NoError(t, err)
	b, err := places.Create(ctx, domain.NewPlace{Name: "B"})
	require.NoError(t, err)
	_, err = places.Create(ctx, domain.NewPlace{Name: "C"})
	require.NoError(t, err)

	got, err := places.GetByIDs(ctx, []int64{a.ID, b.ID, 99999})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "A", got[a.ID].Name)
	assert.Equal(t, "B", got[b.ID].Name)
}

func TestPlaceStoreGetByIDsEmptySkipsQuery(t *testing.T) {
	places := NewPlaceStore(closedDB(t))

	got, err := places.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPlaceStoreListNewestFirst(t *testing.T) {
	d := openTestDB(t)
	places := NewPlaceStore(d)
	places.now = stepClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for _, name := range []string{"First", "Second", "Third"} {
		_, err := places.Create(ctx, domain.NewPlace{Name: name})
		require.NoError(t, err)
	}

	list, err := places.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Third", list[0].Name)
	assert.Equal(t, "Second", list[1].Name)
	assert.Equal(t, "First", list[2].Name)
}

func TestPlaceStoreUpdatePartial(t *testing.T) {
	d := openTestDB(t)
	places := NewPlaceStore(d)
	ctx := context.Background()

	created, err := places.Create(ctx, domain.NewPlace{
		Name:        "Old name",
		Description: "keep me",
		Latitude:    float(1),
		Longitude:   float(2),
	})
	require.NoError(t, err)

	err = places.Update(ctx, created.ID, domain.PlaceUpdate{
		Name:  domain.Some("New name"),
		Liked: domain.Some(true),
	})
	require.NoError(t, err)

	got, err := places.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "New name", got.Name)
	assert.Equal(t, "keep me", got.Description)
	assert.True(t, got.Liked)
	assert.False(t, got.VisitLater)
	require.NotNil(t, got.Latitude)
	assert.InDelta(t, 1, *got.Latitude, 1e-9)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestPlaceStoreUpdateClearsCoordinates(t *testing.T) {
	d := openTestDB(t)
	places := NewPlaceStore(d)
	ctx := context.Background()

	created, err := places.Create(ctx, domain.NewPlace{Name: "Pin", Latitude: float(10), Longitude: float(20)})
	require.NoError(t, err)

	err = places.Update(ctx, created.ID, domain.PlaceUpdate{
		Latitude:  domain.Some[*float64](nil),
		Longitude: domain.Some[*float64](nil),
	})
	require.NoError(t, err)

	got, err := places.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Latitude)
	assert.Nil(t, got.Longitude)
}

func TestPlaceStoreUpdateEmptyIsNoOp(t *testing.T) {
	places := NewPlaceStore(closedDB(t))

	err := places.Update(context.Background(), 1, domain.PlaceUpdate{})
	assert.NoError(t, err)
}

func TestPlaceStoreUpdateNotFound(t *testing.T) {
	d := openTestDB(t)
	places := NewPlaceStore(d)

	err := places.Update(context.Background(), 99999, domain.PlaceUpdate{Name: domain.Some("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlaceStoreStorageFailureKind(t *testing.T) {
	places := NewPlaceStore(closedDB(t))

	_, err := places.List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestPlaceStoreDelete(t *testing.T) {
	d := openTestDB(t)
	places := NewPlaceStore(d)
	ctx := context.Background()

	created, err := places.Create(ctx, domain.NewPlace{Name: "Temp"})
	require.NoError(t, err)

	require.NoError(t, places.Delete(ctx, created.ID))

	got, err := places.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPlaceStoreDeleteNotFound(t *testing.T) {
	d := openTestDB(t)
	places := NewPlaceStore(d)

	err := places.Delete(context.Background(), 99999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
