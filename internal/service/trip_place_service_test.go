package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/gonext/internal/domain"
)

// fixedPhotos serves canned photos and records which ids were requested.
type fixedPhotos struct {
	recordingCleaner
	byPlace     map[int64][]*domain.Photo
	byTripPlace map[int64][]*domain.Photo
	batchCalls  int
}

func (f *fixedPhotos) GetForTripPlaceIDs(_ context.Context, ids []int64) (map[int64][]*domain.Photo, error) {
	f.batchCalls++
	out := make(map[int64][]*domain.Photo)
	for _, id := range ids {
		if p, ok := f.byTripPlace[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fixedPhotos) ListForPlace(_ context.Context, placeID int64) ([]*domain.Photo, error) {
	return f.byPlace[placeID], nil
}

func (f *fixedPhotos) ListForTripPlace(_ context.Context, id int64) ([]*domain.Photo, error) {
	return f.byTripPlace[id], nil
}

// unusedPlaces fails the test if any lookup is made.
type unusedPlaces struct{ t *testing.T }

func (u unusedPlaces) GetByID(context.Context, int64) (*domain.Place, error) {
	u.t.Error("unexpected place lookup")
	return nil, errors.New("unexpected")
}

func (u unusedPlaces) GetByIDs(context.Context, []int64) (map[int64]*domain.Place, error) {
	u.t.Error("unexpected place batch lookup")
	return nil, errors.New("unexpected")
}

func orderOf(t *testing.T, s *testStack, tripID int64) []int64 {
	t.Helper()
	list, err := s.tripPlaces.ListForTrip(context.Background(), tripID)
	require.NoError(t, err)
	ids := make([]int64, 0, len(list))
	for _, tp := range list {
		ids = append(ids, tp.ID)
	}
	return ids
}

func TestTripPlaceServiceAddPlaceAppends(t *testing.T) {
	s := newTestStack(t)
	trip := s.trip(t, "Paris", false)

	var orders []int
	for _, name := range []string{"Louvre", "Orsay", "Sacre-Coeur"} {
		orders = append(orders, s.addPlace(t, trip.ID, s.place(t, name).ID).Order)
	}
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestTripPlaceServiceRemove(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	trip := s.trip(t, "Paris", false)
	place := s.place(t, "Louvre")
	tp := s.addPlace(t, trip.ID, place.ID)

	photo, err := s.photos.AttachToTripPlace(ctx, tp.ID, "/visit.jpg")
	require.NoError(t, err)

	require.NoError(t, s.tripPlaces.Remove(ctx, trip.ID, tp.ID))

	assert.Equal(t, []string{photo.FilePath}, s.files.deleted)
	assert.Empty(t, orderOf(t, s, trip.ID))

	kept, err := s.places.Get(ctx, place.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestTripPlaceServiceRemoveFromOtherTrip(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	cleaner := &fixedPhotos{}
	svc := NewTripPlaceService(s.tpStore, s.placeStore, cleaner, slog.Default())

	paris := s.trip(t, "Paris", false)
	rome := s.trip(t, "Rome", false)
	tp := s.addPlace(t, paris.ID, s.place(t, "Louvre").ID)

	err := svc.Remove(ctx, rome.ID, tp.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, cleaner.owners)
	assert.Equal(t, []int64{tp.ID}, orderOf(t, s, paris.ID))
}

func TestTripPlaceServiceMove(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	trip := s.trip(t, "Paris", false)
	a := s.addPlace(t, trip.ID, s.place(t, "A").ID)
	b := s.addPlace(t, trip.ID, s.place(t, "B").ID)
	c := s.addPlace(t, trip.ID, s.place(t, "C").ID)

	require.NoError(t, s.tripPlaces.MoveUp(ctx, trip.ID, c.ID))
	assert.Equal(t, []int64{a.ID, c.ID, b.ID}, orderOf(t, s, trip.ID))

	require.NoError(t, s.tripPlaces.MoveDown(ctx, trip.ID, a.ID))
	assert.Equal(t, []int64{c.ID, a.ID, b.ID}, orderOf(t, s, trip.ID))

	// Ends stay put.
	require.NoError(t, s.tripPlaces.MoveUp(ctx, trip.ID, c.ID))
	require.NoError(t, s.tripPlaces.MoveDown(ctx, trip.ID, b.ID))
	assert.Equal(t, []int64{c.ID, a.ID, b.ID}, orderOf(t, s, trip.ID))

	err := s.tripPlaces.MoveUp(ctx, trip.ID, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripPlaceServiceMoveWithTiedOrders(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	trip := s.trip(t, "Paris", false)
	zero := 0
	a, err := s.tripPlaces.AddPlace(ctx, trip.ID, s.place(t, "A").ID, &zero)
	require.NoError(t, err)
	b, err := s.tripPlaces.AddPlace(ctx, trip.ID, s.place(t, "B").ID, &zero)
	require.NoError(t, err)
	require.Equal(t, []int64{a.ID, b.ID}, orderOf(t, s, trip.ID))

	require.NoError(t, s.tripPlaces.MoveUp(ctx, trip.ID, b.ID))
	assert.Equal(t, []int64{b.ID, a.ID}, orderOf(t, s, trip.ID))
}

func TestTripPlaceServiceMoveAmongThreeTied(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	trip := s.trip(t, "Paris", false)
	one := 1
	var ids []int64
	for _, name := range []string{"A", "B", "C"} {
		tp, err := s.tripPlaces.AddPlace(ctx, trip.ID, s.place(t, name).ID, &one)
		require.NoError(t, err)
		ids = append(ids, tp.ID)
	}
	a, b, c := ids[0], ids[1], ids[2]

	require.NoError(t, s.tripPlaces.MoveDown(ctx, trip.ID, a))
	assert.Equal(t, []int64{b, a, c}, orderOf(t, s, trip.ID))

	require.NoError(t, s.tripPlaces.MoveUp(ctx, trip.ID, c))
	assert.Equal(t, []int64{b, c, a}, orderOf(t, s, trip.ID))
}

func TestTripPlaceServiceMarkVisitedAndNotes(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	trip := s.trip(t, "Paris", false)
	tp := s.addPlace(t, trip.ID, s.place(t, "Louvre").ID)

	require.NoError(t, s.tripPlaces.MarkVisited(ctx, tp.ID, true))
	require.NoError(t, s.tripPlaces.SetNotes(ctx, tp.ID, "long queue"))

	got, err := s.tripPlaces.Get(ctx, tp.ID)
	require.NoError(t, err)
	assert.True(t, got.Visited)
	require.NotNil(t, got.VisitDate)
	assert.Len(t, *got.VisitDate, len("2006-01-02"))
	assert.Equal(t, "long queue", got.Notes)

	require.NoError(t, s.tripPlaces.MarkVisited(ctx, tp.ID, false))
	got, err = s.tripPlaces.Get(ctx, tp.ID)
	require.NoError(t, err)
	assert.False(t, got.Visited)
	assert.Nil(t, got.VisitDate)
}

func TestTripPlaceServiceGetWithDetails(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	trip := s.trip(t, "Paris", false)
	louvre := s.place(t, "Louvre")
	orsay := s.place(t, "Orsay")
	gone := s.place(t, "Closed")

	tpOrsay := s.addPlace(t, trip.ID, orsay.ID)
	tpGone := s.addPlace(t, trip.ID, gone.ID)
	tpLouvre := s.addPlace(t, trip.ID, louvre.ID)
	require.NoError(t, s.placeStore.Delete(ctx, gone.ID))

	photo, err := s.photos.AttachToTripPlace(ctx, tpLouvre.ID, "/visit.jpg")
	require.NoError(t, err)
	_, err = s.photos.AttachToTripPlace(ctx, tpGone.ID, "/orphan.jpg")
	require.NoError(t, err)

	details, err := s.tripPlaces.GetWithDetails(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, details, 2)

	assert.Equal(t, tpOrsay.ID, details[0].ID)
	assert.Equal(t, "Orsay", details[0].Place.Name)
	assert.Empty(t, details[0].Photos)

	assert.Equal(t, tpLouvre.ID, details[1].ID)
	assert.Equal(t, "Louvre", details[1].Place.Name)
	require.Len(t, details[1].Photos, 1)
	assert.Equal(t, photo.ID, details[1].Photos[0].ID)
}

func TestTripPlaceServiceGetWithDetailsEmptyTrip(t *testing.T) {
	s := newTestStack(t)
	photos := &fixedPhotos{}
	svc := NewTripPlaceService(s.tpStore, unusedPlaces{t: t}, photos, slog.Default())
	trip := s.trip(t, "Empty", false)

	details, err := svc.GetWithDetails(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.Zero(t, photos.batchCalls)
}

func TestTripPlaceServiceGetOneWithDetails(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	trip := s.trip(t, "Paris", false)
	place := s.place(t, "Louvre")
	tp := s.addPlace(t, trip.ID, place.ID)

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	photos := &fixedPhotos{
		byPlace: map[int64][]*domain.Photo{place.ID: {
			{ID: 1, Owner: domain.PlaceOwner(place.ID), CreatedAt: base.Add(3 * time.Hour)},
			{ID: 2, Owner: domain.PlaceOwner(place.ID), CreatedAt: base},
		}},
		byTripPlace: map[int64][]*domain.Photo{tp.ID: {
			{ID: 3, Owner: domain.TripPlaceOwner(tp.ID), CreatedAt: base.Add(5 * time.Hour)},
			{ID: 4, Owner: domain.TripPlaceOwner(tp.ID), CreatedAt: base.Add(time.Hour)},
		}},
	}
	svc := NewTripPlaceService(s.tpStore, s.placeStore, photos, slog.Default())

	got, err := svc.GetOneWithDetails(ctx, tp.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Louvre", got.Place.Name)

	ids := make([]int64, 0, len(got.Photos))
	for _, p := range got.Photos {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{3, 1, 4, 2}, ids)
}

func TestTripPlaceServiceGetOneWithDetailsMissing(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	trip := s.trip(t, "Paris", false)
	place := s.place(t, "Louvre")
	tp := s.addPlace(t, trip.ID, place.ID)

	got, err := s.tripPlaces.GetOneWithDetails(ctx, tp.ID+1)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.placeStore.Delete(ctx, place.ID))
	got, err = s.tripPlaces.GetOneWithDetails(ctx, tp.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTripPlaceServiceListPhotos(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	trip := s.trip(t, "Paris", false)
	place := s.place(t, "Louvre")
	tp := s.addPlace(t, trip.ID, place.ID)

	visit, err := s.photos.AttachToTripPlace(ctx, tp.ID, "/visit.jpg")
	require.NoError(t, err)
	_, err = s.photos.AttachToPlace(ctx, place.ID, "/place.jpg")
	require.NoError(t, err)

	photos, err := s.tripPlaces.ListPhotos(ctx, tp.ID)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, visit.ID, photos[0].ID)
}
