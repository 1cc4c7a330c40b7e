package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/gonext/internal/domain"
)

// tripRepository is the subset of store.TripStore that TripService requires.
type tripRepository interface {
	Create(ctx context.Context, t domain.NewTrip) (*domain.Trip, error)
	GetByID(ctx context.Context, id int64) (*domain.Trip, error)
	GetCurrent(ctx context.Context) (*domain.Trip, error)
	List(ctx context.Context) ([]*domain.Trip, error)
	ListWithPlaceCount(ctx context.Context) ([]*domain.TripWithPlaceCount, error)
	Update(ctx context.Context, id int64, u domain.TripUpdate) error
	SetCurrent(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// itineraryReader lists the trip places of a trip.
type itineraryReader interface {
	ListByTrip(ctx context.Context, tripID int64) ([]*domain.TripPlace, error)
	CountByTrip(ctx context.Context, tripID int64) (int, error)
}

type photoCleaner interface {
	DeleteAllForEntity(ctx context.Context, owner domain.OwnerRef) error
}

type TripService struct {
	tripStore tripRepository
	itinerary itineraryReader
	photos    photoCleaner
	logger    *slog.Logger
}

func NewTripService(tripStore tripRepository, itinerary itineraryReader, photos photoCleaner, logger *slog.Logger) *TripService {
	return &TripService{tripStore: tripStore, itinerary: itinerary, photos: photos, logger: logger}
}

// Create stores a trip. A trip created as current takes the flag from any
// other trip.
func (s *TripService) Create(ctx context.Context, t domain.NewTrip) (*domain.Trip, error) {
	return s.tripStore.Create(ctx, t)
}

func (s *TripService) List(ctx context.Context) ([]*domain.Trip, error) {
	return s.tripStore.List(ctx)
}

func (s *TripService) ListWithPlaceCount(ctx context.Context) ([]*domain.TripWithPlaceCount, error) {
	return s.tripStore.ListWithPlaceCount(ctx)
}

// Get returns nil, nil when the trip does not exist.
func (s *TripService) Get(ctx context.Context, id int64) (*domain.Trip, error) {
	return s.tripStore.GetByID(ctx, id)
}

// GetCurrent returns nil, nil when no trip is current.
func (s *TripService) GetCurrent(ctx context.Context) (*domain.Trip, error) {
	return s.tripStore.GetCurrent(ctx)
}

func (s *TripService) Update(ctx context.Context, id int64, u domain.TripUpdate) error {
	return s.tripStore.Update(ctx, id, u)
}

func (s *TripService) SetCurrent(ctx context.Context, id int64) error {
	if err := s.tripStore.SetCurrent(ctx, id); err != nil {
		return err
	}
	s.logger.Info("current trip changed", "trip_id", id)
	return nil
}

func (s *TripService) PlaceCount(ctx context.Context, tripID int64) (int, error) {
	return s.itinerary.CountByTrip(ctx, tripID)
}

// Delete removes the photos of every trip place of the trip, then the trip
// places and the trip itself. Places are not touched.
func (s *TripService) Delete(ctx context.Context, id int64) error {
	tripPlaces, err := s.itinerary.ListByTrip(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list trip places: %w", err)
	}

	for _, tp := range tripPlaces {
		if err := s.photos.DeleteAllForEntity(ctx, domain.TripPlaceOwner(tp.ID)); err != nil {
			return fmt.Errorf("failed to delete photos of trip place %d: %w", tp.ID, err)
		}
	}

	if err := s.tripStore.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("trip deleted", "trip_id", id, "trip_places", len(tripPlaces))
	return nil
}
