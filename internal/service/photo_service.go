package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vbonduro/gonext/internal/domain"
	"github.com/vbonduro/gonext/internal/photostore"
)

// photoRepository is the subset of store.PhotoStore that PhotoService requires.
type photoRepository interface {
	Create(ctx context.Context, owner domain.OwnerRef, filePath string) (*domain.Photo, error)
	GetByID(ctx context.Context, id int64) (*domain.Photo, error)
	GetByIDAndKind(ctx context.Context, id int64, kind domain.OwnerKind) (*domain.Photo, error)
	ListByOwner(ctx context.Context, owner domain.OwnerRef) ([]*domain.Photo, error)
	ListByOwners(ctx context.Context, kind domain.OwnerKind, ids []int64) (map[int64][]*domain.Photo, error)
	Delete(ctx context.Context, id int64, kind domain.OwnerKind) error
	DeleteByOwner(ctx context.Context, owner domain.OwnerRef) (int64, error)
}

// PhotoService keeps photo rows and their image files together. File removal
// is best-effort: a file that cannot be removed is logged and never blocks the
// row deletion.
type PhotoService struct {
	photoStore photoRepository
	files      photostore.FileStore
	logger     *slog.Logger
}

func NewPhotoService(photoStore photoRepository, files photostore.FileStore, logger *slog.Logger) *PhotoService {
	return &PhotoService{photoStore: photoStore, files: files, logger: logger}
}

// Store copies the image at sourceURI into managed storage and returns the
// stored path. No metadata row is written.
func (s *PhotoService) Store(ctx context.Context, sourceURI string) (string, error) {
	return s.files.Import(ctx, sourceURI)
}

func (s *PhotoService) AttachToPlace(ctx context.Context, placeID int64, sourceURI string) (*domain.Photo, error) {
	return s.attach(ctx, domain.PlaceOwner(placeID), func() (string, error) {
		return s.files.Import(ctx, sourceURI)
	})
}

func (s *PhotoService) AttachToTripPlace(ctx context.Context, tripPlaceID int64, sourceURI string) (*domain.Photo, error) {
	return s.attach(ctx, domain.TripPlaceOwner(tripPlaceID), func() (string, error) {
		return s.files.Import(ctx, sourceURI)
	})
}

// AttachUpload stores an uploaded image stream for owner.
func (s *PhotoService) AttachUpload(ctx context.Context, owner domain.OwnerRef, filename string, r io.Reader) (*domain.Photo, error) {
	return s.attach(ctx, owner, func() (string, error) {
		return s.files.Save(ctx, filename, r)
	})
}

func (s *PhotoService) attach(ctx context.Context, owner domain.OwnerRef, save func() (string, error)) (*domain.Photo, error) {
	if !owner.Kind.Valid() {
		return nil, domain.E(domain.KindValidation, "attach photo", fmt.Errorf("unknown owner type %q", owner.Kind))
	}

	filePath, err := save()
	if err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}
	s.logger.Debug("photo stored", "owner", owner.String(), "path", filePath)

	photo, err := s.photoStore.Create(ctx, owner, filePath)
	if err != nil {
		s.discardFile(ctx, filePath)
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}
	return photo, nil
}

func (s *PhotoService) DetachFromPlace(ctx context.Context, photoID int64) error {
	return s.detach(ctx, photoID, domain.OwnerPlace)
}

func (s *PhotoService) DetachFromTripPlace(ctx context.Context, photoID int64) error {
	return s.detach(ctx, photoID, domain.OwnerTripPlace)
}

// detach deletes a photo only when it is owned by an entity of kind.
func (s *PhotoService) detach(ctx context.Context, photoID int64, kind domain.OwnerKind) error {
	photo, err := s.photoStore.GetByIDAndKind(ctx, photoID, kind)
	if err != nil {
		return fmt.Errorf("failed to get photo: %w", err)
	}
	if photo == nil {
		return domain.E(domain.KindNotFound, "detach photo", fmt.Errorf("no %s photo with id %d", kind, photoID))
	}

	s.discardFile(ctx, photo.FilePath)

	if err := s.photoStore.Delete(ctx, photoID, kind); err != nil {
		return fmt.Errorf("failed to delete photo record: %w", err)
	}
	return nil
}

// DeleteAllForEntity removes every photo of owner: each file best-effort, then
// all rows in one statement.
func (s *PhotoService) DeleteAllForEntity(ctx context.Context, owner domain.OwnerRef) error {
	photos, err := s.photoStore.ListByOwner(ctx, owner)
	if err != nil {
		return fmt.Errorf("failed to list photos: %w", err)
	}

	for _, p := range photos {
		s.discardFile(ctx, p.FilePath)
	}

	n, err := s.photoStore.DeleteByOwner(ctx, owner)
	if err != nil {
		return fmt.Errorf("failed to delete photo records: %w", err)
	}
	if n > 0 {
		s.logger.Info("photos deleted", "owner", owner.String(), "count", n)
	}
	return nil
}

// Get returns nil, nil when the photo does not exist.
func (s *PhotoService) Get(ctx context.Context, photoID int64) (*domain.Photo, error) {
	return s.photoStore.GetByID(ctx, photoID)
}

// GetForTripPlaceIDs returns the photos of each trip place, newest first.
func (s *PhotoService) GetForTripPlaceIDs(ctx context.Context, ids []int64) (map[int64][]*domain.Photo, error) {
	return s.photoStore.ListByOwners(ctx, domain.OwnerTripPlace, ids)
}

func (s *PhotoService) ListForPlace(ctx context.Context, placeID int64) ([]*domain.Photo, error) {
	return s.photoStore.ListByOwner(ctx, domain.PlaceOwner(placeID))
}

func (s *PhotoService) ListForTripPlace(ctx context.Context, tripPlaceID int64) ([]*domain.Photo, error) {
	return s.photoStore.ListByOwner(ctx, domain.TripPlaceOwner(tripPlaceID))
}

// Open returns the image of photoID and its MIME type. The caller closes the
// reader.
func (s *PhotoService) Open(ctx context.Context, photoID int64) (io.ReadCloser, string, error) {
	photo, err := s.photoStore.GetByID(ctx, photoID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get photo: %w", err)
	}
	if photo == nil {
		return nil, "", domain.E(domain.KindNotFound, "open photo", fmt.Errorf("no photo with id %d", photoID))
	}
	return s.files.Open(ctx, photo.FilePath)
}

// discardFile removes a photo file, logging instead of failing. It reports
// whether the file is gone.
func (s *PhotoService) discardFile(ctx context.Context, filePath string) bool {
	if err := s.files.Delete(ctx, filePath); err != nil {
		s.logger.Warn("failed to delete photo file", "path", filePath, "error", err)
		return false
	}
	return true
}
