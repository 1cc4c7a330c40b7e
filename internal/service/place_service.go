package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/gonext/internal/domain"
)

// placeRepository is the subset of store.PlaceStore that PlaceService requires.
type placeRepository interface {
	Create(ctx context.Context, p domain.NewPlace) (*domain.Place, error)
	GetByID(ctx context.Context, id int64) (*domain.Place, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Place, error)
	List(ctx context.Context) ([]*domain.Place, error)
	Update(ctx context.Context, id int64, u domain.PlaceUpdate) error
	Delete(ctx context.Context, id int64) error
}

// placePhotos is the part of PhotoService a place needs.
type placePhotos interface {
	DeleteAllForEntity(ctx context.Context, owner domain.OwnerRef) error
	ListForPlace(ctx context.Context, placeID int64) ([]*domain.Photo, error)
}

type PlaceService struct {
	placeStore placeRepository
	photos     placePhotos
	logger     *slog.Logger
}

func NewPlaceService(placeStore placeRepository, photos placePhotos, logger *slog.Logger) *PlaceService {
	return &PlaceService{placeStore: placeStore, photos: photos, logger: logger}
}

func (s *PlaceService) Create(ctx context.Context, p domain.NewPlace) (*domain.Place, error) {
	return s.placeStore.Create(ctx, p)
}

// List returns all places, newest first.
func (s *PlaceService) List(ctx context.Context) ([]*domain.Place, error) {
	return s.placeStore.List(ctx)
}

// Get returns nil, nil when the place does not exist.
func (s *PlaceService) Get(ctx context.Context, id int64) (*domain.Place, error) {
	return s.placeStore.GetByID(ctx, id)
}

func (s *PlaceService) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Place, error) {
	return s.placeStore.GetByIDs(ctx, ids)
}

func (s *PlaceService) Update(ctx context.Context, id int64, u domain.PlaceUpdate) error {
	return s.placeStore.Update(ctx, id, u)
}

// Delete removes the place's photos, then the place. Trip places that
// reference it are left in place and are skipped when itineraries are read.
func (s *PlaceService) Delete(ctx context.Context, id int64) error {
	if err := s.photos.DeleteAllForEntity(ctx, domain.PlaceOwner(id)); err != nil {
		return fmt.Errorf("failed to delete place photos: %w", err)
	}
	if err := s.placeStore.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("place deleted", "place_id", id)
	return nil
}

// GetWithPhotos returns nil, nil when the place does not exist.
func (s *PlaceService) GetWithPhotos(ctx context.Context, id int64) (*domain.PlaceWithPhotos, error) {
	place, err := s.placeStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if place == nil {
		return nil, nil
	}

	photos, err := s.photos.ListForPlace(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list place photos: %w", err)
	}
	return &domain.PlaceWithPhotos{Place: place, Photos: photos}, nil
}
