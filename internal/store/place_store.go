package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/vbonduro/gonext/internal/domain"
)

var placeColumns = []string{
	"id",
	"name",
	"COALESCE(description, '') AS description",
	"COALESCE(visitlater, 0) AS visitlater",
	"COALESCE(liked, 0) AS liked",
	"latitude",
	"longitude",
	"createdAt",
}

type placeRow struct {
	ID          int64    `db:"id"`
	Name        string   `db:"name"`
	Description string   `db:"description"`
	VisitLater  int64    `db:"visitlater"`
	Liked       int64    `db:"liked"`
	Latitude    *float64 `db:"latitude"`
	Longitude   *float64 `db:"longitude"`
	CreatedAt   string   `db:"createdAt"`
}

func (r *placeRow) toDomain() (*domain.Place, error) {
	createdAt, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.Place{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		VisitLater:  r.VisitLater == 1,
		Liked:       r.Liked == 1,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		CreatedAt:   createdAt,
	}, nil
}

type PlaceStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPlaceStore(db *sqlx.DB) *PlaceStore {
	return &PlaceStore{db: db, now: time.Now}
}

func (s *PlaceStore) Create(ctx context.Context, p domain.NewPlace) (*domain.Place, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO places (name, description, visitlater, liked, latitude, longitude, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Name, p.Description, boolToInt(p.VisitLater), boolToInt(p.Liked), p.Latitude, p.Longitude, formatTimestamp(s.now()))
	if err != nil {
		return nil, storageErr("failed to create place", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageErr("failed to get last insert id", err)
	}

	return s.GetByID(ctx, id)
}

func (s *PlaceStore) GetByID(ctx context.Context, id int64) (*domain.Place, error) {
	query, args, err := sq.Select(placeColumns...).From("places").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, storageErr("failed to build place query", err)
	}

	var row placeRow
	err = s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("failed to get place", err)
	}

	place, err := row.toDomain()
	if err != nil {
		return nil, storageErr("failed to map place", err)
	}
	return place, nil
}

// GetByIDs returns the places found among ids keyed by id. Ids without a row
// are absent from the map.
func (s *PlaceStore) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Place, error) {
	places := make(map[int64]*domain.Place, len(ids))
	if len(ids) == 0 {
		return places, nil
	}

	query, args, err := sq.Select(placeColumns...).From("places").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, storageErr("failed to build place query", err)
	}

	var rows []placeRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storageErr("failed to get places", err)
	}

	for i := range rows {
		place, err := rows[i].toDomain()
		if err != nil {
			return nil, storageErr("failed to map place", err)
		}
		places[place.ID] = place
	}
	return places, nil
}

func (s *PlaceStore) List(ctx context.Context) ([]*domain.Place, error) {
	query, args, err := sq.Select(placeColumns...).From("places").OrderBy("createdAt DESC", "id DESC").ToSql()
	if err != nil {
		return nil, storageErr("failed to build place query", err)
	}

	var rows []placeRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storageErr("failed to list places", err)
	}

	places := make([]*domain.Place, 0, len(rows))
	for i := range rows {
		place, err := rows[i].toDomain()
		if err != nil {
			return nil, storageErr("failed to map place", err)
		}
		places = append(places, place)
	}
	return places, nil
}

// Update overwrites the fields set in u. An empty update returns immediately
// without touching the database.
func (s *PlaceStore) Update(ctx context.Context, id int64, u domain.PlaceUpdate) error {
	if u.IsEmpty() {
		return nil
	}

	set := map[string]any{}
	if u.Name.Set {
		set["name"] = u.Name.Value
	}
	if u.Description.Set {
		set["description"] = u.Description.Value
	}
	if u.VisitLater.Set {
		set["visitlater"] = boolToInt(u.VisitLater.Value)
	}
	if u.Liked.Set {
		set["liked"] = boolToInt(u.Liked.Value)
	}
	if u.Latitude.Set {
		set["latitude"] = u.Latitude.Value
	}
	if u.Longitude.Set {
		set["longitude"] = u.Longitude.Value
	}

	updated, err := execAffected(ctx, s.db, sq.Update("places").SetMap(set).Where(sq.Eq{"id": id}), "failed to update place")
	if err != nil {
		return err
	}
	if !updated {
		return notFound("update place")
	}
	return nil
}

func (s *PlaceStore) Delete(ctx context.Context, id int64) error {
	deleted, err := execAffected(ctx, s.db, sq.Delete("places").Where(sq.Eq{"id": id}), "failed to delete place")
	if err != nil {
		return err
	}
	if !deleted {
		return notFound("delete place")
	}
	return nil
}
