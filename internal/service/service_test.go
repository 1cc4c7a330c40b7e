package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/gonext/internal/db"
	"github.com/vbonduro/gonext/internal/domain"
	"github.com/vbonduro/gonext/internal/store"
)

// stubFileStore is a minimal in-memory photostore.FileStore for tests.
type stubFileStore struct {
	files     map[string][]byte
	deleted   []string
	saveErr   error
	deleteErr error
	seq       int
}

func newStubFileStore() *stubFileStore {
	return &stubFileStore{files: make(map[string][]byte)}
}

func (s *stubFileStore) Import(_ context.Context, sourceURI string) (string, error) {
	return s.Save(context.Background(), sourceURI, bytes.NewReader([]byte(sourceURI)))
}

func (s *stubFileStore) Save(_ context.Context, _ string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, _ := io.ReadAll(r)
	s.seq++
	key := fmt.Sprintf("/photos/%d.jpg", s.seq)
	s.files[key] = data
	return key, nil
}

func (s *stubFileStore) Open(_ context.Context, path string) (io.ReadCloser, string, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, "", domain.E(domain.KindNotFound, "open photo", fmt.Errorf("no file %s", path))
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (s *stubFileStore) Delete(_ context.Context, path string) error {
	s.deleted = append(s.deleted, path)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.files, path)
	return nil
}

// recordingCleaner records DeleteAllForEntity calls.
type recordingCleaner struct {
	owners []domain.OwnerRef
}

func (c *recordingCleaner) DeleteAllForEntity(_ context.Context, owner domain.OwnerRef) error {
	c.owners = append(c.owners, owner)
	return nil
}

type testStack struct {
	db         *sqlx.DB
	files      *stubFileStore
	placeStore *store.PlaceStore
	tripStore  *store.TripStore
	tpStore    *store.TripPlaceStore
	photoStore *store.PhotoStore
	photos     *PhotoService
	places     *PlaceService
	trips      *TripService
	tripPlaces *TripPlaceService
	next       *NextPlaceService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	s := &testStack{
		db:         d,
		files:      newStubFileStore(),
		placeStore: store.NewPlaceStore(d),
		tripStore:  store.NewTripStore(d),
		tpStore:    store.NewTripPlaceStore(d),
		photoStore: store.NewPhotoStore(d),
	}
	logger := slog.Default()
	s.photos = NewPhotoService(s.photoStore, s.files, logger)
	s.places = NewPlaceService(s.placeStore, s.photos, logger)
	s.trips = NewTripService(s.tripStore, s.tpStore, s.photos, logger)
	s.tripPlaces = NewTripPlaceService(s.tpStore, s.placeStore, s.photos, logger)
	s.next = NewNextPlaceService(s.trips, s.tripPlaces)
	return s
}

func (s *testStack) place(t *testing.T, name string) *domain.Place {
	t.Helper()
	p, err := s.places.Create(context.Background(), domain.NewPlace{Name: name})
	require.NoError(t, err)
	return p
}

func (s *testStack) trip(t *testing.T, title string, current bool) *domain.Trip {
	t.Helper()
	tr, err := s.trips.Create(context.Background(), domain.NewTrip{Title: title, Current: current})
	require.NoError(t, err)
	return tr
}

func (s *testStack) addPlace(t *testing.T, tripID, placeID int64) *domain.TripPlace {
	t.Helper()
	tp, err := s.tripPlaces.AddPlace(context.Background(), tripID, placeID, nil)
	require.NoError(t, err)
	return tp
}
