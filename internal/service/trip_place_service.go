package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/vbonduro/gonext/internal/domain"
)

// tripPlaceRepository is the subset of store.TripPlaceStore that
// TripPlaceService requires.
type tripPlaceRepository interface {
	Add(ctx context.Context, tripID, placeID int64, order *int) (*domain.TripPlace, error)
	GetByID(ctx context.Context, id int64) (*domain.TripPlace, error)
	ListByTrip(ctx context.Context, tripID int64) ([]*domain.TripPlace, error)
	Delete(ctx context.Context, tripID, id int64) error
	UpdateOrder(ctx context.Context, tripID, id int64, order int) error
	SwapOrder(ctx context.Context, tripID, firstID, secondID int64) error
	Move(ctx context.Context, tripID, id int64, step int) error
	SetVisited(ctx context.Context, id int64, visited bool) error
	SetNotes(ctx context.Context, id int64, notes string) error
}

type placeLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Place, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Place, error)
}

// tripPlacePhotos is the part of PhotoService an itinerary needs.
type tripPlacePhotos interface {
	DeleteAllForEntity(ctx context.Context, owner domain.OwnerRef) error
	GetForTripPlaceIDs(ctx context.Context, ids []int64) (map[int64][]*domain.Photo, error)
	ListForPlace(ctx context.Context, placeID int64) ([]*domain.Photo, error)
	ListForTripPlace(ctx context.Context, tripPlaceID int64) ([]*domain.Photo, error)
}

// TripPlaceService manages the itinerary of a trip: membership, order,
// visits and notes.
type TripPlaceService struct {
	tripPlaceStore tripPlaceRepository
	places         placeLookup
	photos         tripPlacePhotos
	logger         *slog.Logger
}

func NewTripPlaceService(tripPlaceStore tripPlaceRepository, places placeLookup, photos tripPlacePhotos, logger *slog.Logger) *TripPlaceService {
	return &TripPlaceService{tripPlaceStore: tripPlaceStore, places: places, photos: photos, logger: logger}
}

// AddPlace appends placeID to the trip's itinerary. A nil order places it
// after the last entry.
func (s *TripPlaceService) AddPlace(ctx context.Context, tripID, placeID int64, order *int) (*domain.TripPlace, error) {
	return s.tripPlaceStore.Add(ctx, tripID, placeID, order)
}

// Get returns nil, nil when the trip place does not exist.
func (s *TripPlaceService) Get(ctx context.Context, id int64) (*domain.TripPlace, error) {
	return s.tripPlaceStore.GetByID(ctx, id)
}

// Remove deletes a trip place of tripID and its visit photos. The place
// itself is kept.
func (s *TripPlaceService) Remove(ctx context.Context, tripID, id int64) error {
	tp, err := s.tripPlaceStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tp == nil || tp.TripID != tripID {
		return domain.E(domain.KindNotFound, "remove trip place", fmt.Errorf("trip %d has no trip place %d", tripID, id))
	}

	if err := s.photos.DeleteAllForEntity(ctx, domain.TripPlaceOwner(id)); err != nil {
		return fmt.Errorf("failed to delete trip place photos: %w", err)
	}
	return s.tripPlaceStore.Delete(ctx, tripID, id)
}

// UpdateOrder overwrites the order value without renumbering the others.
func (s *TripPlaceService) UpdateOrder(ctx context.Context, tripID, id int64, order int) error {
	return s.tripPlaceStore.UpdateOrder(ctx, tripID, id, order)
}

func (s *TripPlaceService) SwapOrder(ctx context.Context, tripID, firstID, secondID int64) error {
	return s.tripPlaceStore.SwapOrder(ctx, tripID, firstID, secondID)
}

// MoveUp swaps a trip place with the entry before it. The first entry stays
// where it is.
func (s *TripPlaceService) MoveUp(ctx context.Context, tripID, id int64) error {
	return s.move(ctx, tripID, id, -1)
}

// MoveDown swaps a trip place with the entry after it. The last entry stays
// where it is.
func (s *TripPlaceService) MoveDown(ctx context.Context, tripID, id int64) error {
	return s.move(ctx, tripID, id, 1)
}

func (s *TripPlaceService) move(ctx context.Context, tripID, id int64, step int) error {
	if err := s.tripPlaceStore.Move(ctx, tripID, id, step); err != nil {
		return err
	}
	s.logger.Debug("trip place moved", "trip_id", tripID, "trip_place_id", id, "step", step)
	return nil
}

// MarkVisited sets the visited flag. Visiting stamps today's UTC date,
// unvisiting clears it.
func (s *TripPlaceService) MarkVisited(ctx context.Context, id int64, visited bool) error {
	return s.tripPlaceStore.SetVisited(ctx, id, visited)
}

func (s *TripPlaceService) SetNotes(ctx context.Context, id int64, notes string) error {
	return s.tripPlaceStore.SetNotes(ctx, id, notes)
}

// ListForTrip returns the itinerary in order.
func (s *TripPlaceService) ListForTrip(ctx context.Context, tripID int64) ([]*domain.TripPlace, error) {
	return s.tripPlaceStore.ListByTrip(ctx, tripID)
}

func (s *TripPlaceService) ListPhotos(ctx context.Context, id int64) ([]*domain.Photo, error) {
	return s.photos.ListForTripPlace(ctx, id)
}

// GetWithDetails returns the itinerary of tripID with each entry's place and
// visit photos. Places and photos are each fetched in one batch. Entries
// whose place no longer exists are left out.
func (s *TripPlaceService) GetWithDetails(ctx context.Context, tripID int64) ([]*domain.TripPlaceDetails, error) {
	itinerary, err := s.tripPlaceStore.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if len(itinerary) == 0 {
		return []*domain.TripPlaceDetails{}, nil
	}

	placeIDs := make([]int64, 0, len(itinerary))
	tripPlaceIDs := make([]int64, 0, len(itinerary))
	for _, tp := range itinerary {
		placeIDs = append(placeIDs, tp.PlaceID)
		tripPlaceIDs = append(tripPlaceIDs, tp.ID)
	}

	places, err := s.places.GetByIDs(ctx, placeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load places: %w", err)
	}
	photos, err := s.photos.GetForTripPlaceIDs(ctx, tripPlaceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load trip place photos: %w", err)
	}

	details := make([]*domain.TripPlaceDetails, 0, len(itinerary))
	for _, tp := range itinerary {
		place, ok := places[tp.PlaceID]
		if !ok {
			s.logger.Debug("skipping trip place with missing place", "trip_place_id", tp.ID, "place_id", tp.PlaceID)
			continue
		}
		tpPhotos := photos[tp.ID]
		if tpPhotos == nil {
			tpPhotos = []*domain.Photo{}
		}
		details = append(details, &domain.TripPlaceDetails{TripPlace: tp, Place: place, Photos: tpPhotos})
	}
	return details, nil
}

// GetOneWithDetails returns a trip place with its place and every photo of
// either, newest first. It returns nil, nil when the trip place or its place
// is missing.
func (s *TripPlaceService) GetOneWithDetails(ctx context.Context, id int64) (*domain.TripPlaceDetails, error) {
	tp, err := s.tripPlaceStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tp == nil {
		return nil, nil
	}

	place, err := s.places.GetByID(ctx, tp.PlaceID)
	if err != nil {
		return nil, err
	}
	if place == nil {
		return nil, nil
	}

	placePhotos, err := s.photos.ListForPlace(ctx, place.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list place photos: %w", err)
	}
	visitPhotos, err := s.photos.ListForTripPlace(ctx, tp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trip place photos: %w", err)
	}

	all := make([]*domain.Photo, 0, len(placePhotos)+len(visitPhotos))
	all = append(all, placePhotos...)
	all = append(all, visitPhotos...)
	slices.SortStableFunc(all, func(a, b *domain.Photo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return &domain.TripPlaceDetails{TripPlace: tp, Place: place, Photos: all}, nil
}
