package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/vbonduro/gonext/internal/domain"
)

var photoColumns = []string{"id", "entityType", "entityId", "filePath", "createdAt"}

type photoRow struct {
	ID         int64  `db:"id"`
	EntityType string `db:"entityType"`
	EntityID   int64  `db:"entityId"`
	FilePath   string `db:"filePath"`
	CreatedAt  string `db:"createdAt"`
}

func (r *photoRow) toDomain() (*domain.Photo, error) {
	kind := domain.OwnerKind(r.EntityType)
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown photo owner type %q", r.EntityType)
	}
	createdAt, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.Photo{
		ID:        r.ID,
		Owner:     domain.OwnerRef{Kind: kind, ID: r.EntityID},
		FilePath:  r.FilePath,
		CreatedAt: createdAt,
	}, nil
}

// PhotoStore keeps photo metadata rows. The image files themselves live in a
// photostore.FileStore.
type PhotoStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPhotoStore(db *sqlx.DB) *PhotoStore {
	return &PhotoStore{db: db, now: time.Now}
}

func (s *PhotoStore) Create(ctx context.Context, owner domain.OwnerRef, filePath string) (*domain.Photo, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO photos (entityType, entityId, filePath, createdAt) VALUES (?, ?, ?, ?)
	`, string(owner.Kind), owner.ID, filePath, formatTimestamp(s.now()))
	if err != nil {
		return nil, storageErr("failed to create photo", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageErr("failed to get last insert id", err)
	}

	return s.GetByID(ctx, id)
}

func (s *PhotoStore) GetByID(ctx context.Context, id int64) (*domain.Photo, error) {
	return s.getOne(ctx, sq.Eq{"id": id})
}

// GetByIDAndKind returns the photo only if it is owned by an entity of kind.
func (s *PhotoStore) GetByIDAndKind(ctx context.Context, id int64, kind domain.OwnerKind) (*domain.Photo, error) {
	return s.getOne(ctx, sq.Eq{"id": id, "entityType": string(kind)})
}

func (s *PhotoStore) getOne(ctx context.Context, where sq.Eq) (*domain.Photo, error) {
	query, args, err := sq.Select(photoColumns...).From("photos").Where(where).ToSql()
	if err != nil {
		return nil, storageErr("failed to build photo query", err)
	}

	var row photoRow
	err = s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("failed to get photo", err)
	}

	photo, err := row.toDomain()
	if err != nil {
		return nil, storageErr("failed to map photo", err)
	}
	return photo, nil
}

// ListByOwner returns the owner's photos, newest first.
func (s *PhotoStore) ListByOwner(ctx context.Context, owner domain.OwnerRef) ([]*domain.Photo, error) {
	return s.list(ctx, sq.Eq{"entityType": string(owner.Kind), "entityId": owner.ID})
}

// ListByOwners returns the photos of every entity of kind in ids, grouped by
// owner id and newest first within a group. Empty ids skip the query.
func (s *PhotoStore) ListByOwners(ctx context.Context, kind domain.OwnerKind, ids []int64) (map[int64][]*domain.Photo, error) {
	grouped := make(map[int64][]*domain.Photo, len(ids))
	if len(ids) == 0 {
		return grouped, nil
	}

	photos, err := s.list(ctx, sq.Eq{"entityType": string(kind), "entityId": ids})
	if err != nil {
		return nil, err
	}
	for _, p := range photos {
		grouped[p.Owner.ID] = append(grouped[p.Owner.ID], p)
	}
	return grouped, nil
}

func (s *PhotoStore) list(ctx context.Context, where sq.Eq) ([]*domain.Photo, error) {
	query, args, err := sq.Select(photoColumns...).From("photos").
		Where(where).
		OrderBy("createdAt DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, storageErr("failed to build photo query", err)
	}

	var rows []photoRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storageErr("failed to list photos", err)
	}

	photos := make([]*domain.Photo, 0, len(rows))
	for i := range rows {
		photo, err := rows[i].toDomain()
		if err != nil {
			return nil, storageErr("failed to map photo", err)
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

// Delete removes the photo row only if it is owned by an entity of kind.
func (s *PhotoStore) Delete(ctx context.Context, id int64, kind domain.OwnerKind) error {
	deleted, err := execAffected(ctx, s.db,
		sq.Delete("photos").Where(sq.Eq{"id": id, "entityType": string(kind)}),
		"failed to delete photo")
	if err != nil {
		return err
	}
	if !deleted {
		return notFound("delete photo")
	}
	return nil
}

// DeleteByOwner removes every photo row of owner and returns how many went.
func (s *PhotoStore) DeleteByOwner(ctx context.Context, owner domain.OwnerRef) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM photos WHERE entityType = ? AND entityId = ?
	`, string(owner.Kind), owner.ID)
	if err != nil {
		return 0, storageErr("failed to delete photos for owner", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, storageErr("failed to get rows affected", err)
	}
	return rowsAffected, nil
}
