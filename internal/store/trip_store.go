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

var tripColumns = []string{
	"id",
	"title",
	"COALESCE(description, '') AS description",
	"startDate",
	"endDate",
	"COALESCE(current, 0) AS current",
	"createdAt",
}

type tripRow struct {
	ID          int64   `db:"id"`
	Title       string  `db:"title"`
	Description string  `db:"description"`
	StartDate   *string `db:"startDate"`
	EndDate     *string `db:"endDate"`
	Current     int64   `db:"current"`
	CreatedAt   string  `db:"createdAt"`
}

func (r *tripRow) toDomain() (*domain.Trip, error) {
	createdAt, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.Trip{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Current:     r.Current == 1,
		CreatedAt:   createdAt,
	}, nil
}

type tripCountRow struct {
	tripRow
	PlaceCount int `db:"placeCount"`
}

type TripStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewTripStore(db *sqlx.DB) *TripStore {
	return &TripStore{db: db, now: time.Now}
}

// Create inserts a trip. A trip created as current takes the flag from any
// other trip in the same transaction.
func (s *TripStore) Create(ctx context.Context, t domain.NewTrip) (*domain.Trip, error) {
	var id int64
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if t.Current {
			if err := clearCurrent(ctx, tx); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO trips (title, description, startDate, endDate, current, createdAt)
			VALUES (?, ?, ?, ?, ?, ?)
		`, t.Title, t.Description, t.StartDate, t.EndDate, boolToInt(t.Current), formatTimestamp(s.now()))
		if err != nil {
			return storageErr("failed to create trip", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return storageErr("failed to get last insert id", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

func (s *TripStore) GetByID(ctx context.Context, id int64) (*domain.Trip, error) {
	return s.getOne(ctx, sq.Eq{"id": id}, "failed to get trip")
}

// GetCurrent returns the trip flagged current, or nil when there is none.
func (s *TripStore) GetCurrent(ctx context.Context) (*domain.Trip, error) {
	return s.getOne(ctx, sq.Eq{"current": 1}, "failed to get current trip")
}

func (s *TripStore) getOne(ctx context.Context, where sq.Eq, op string) (*domain.Trip, error) {
	query, args, err := sq.Select(tripColumns...).From("trips").Where(where).OrderBy("id").Limit(1).ToSql()
	if err != nil {
		return nil, storageErr("failed to build trip query", err)
	}

	var row tripRow
	err = s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(op, err)
	}

	trip, err := row.toDomain()
	if err != nil {
		return nil, storageErr("failed to map trip", err)
	}
	return trip, nil
}

func (s *TripStore) List(ctx context.Context) ([]*domain.Trip, error) {
	query, args, err := sq.Select(tripColumns...).From("trips").OrderBy("createdAt DESC", "id DESC").ToSql()
	if err != nil {
		return nil, storageErr("failed to build trip query", err)
	}

	var rows []tripRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storageErr("failed to list trips", err)
	}

	trips := make([]*domain.Trip, 0, len(rows))
	for i := range rows {
		trip, err := rows[i].toDomain()
		if err != nil {
			return nil, storageErr("failed to map trip", err)
		}
		trips = append(trips, trip)
	}
	return trips, nil
}

// ListWithPlaceCount returns every trip with the number of its itinerary
// entries, newest first. Trips without entries report zero.
func (s *TripStore) ListWithPlaceCount(ctx context.Context) ([]*domain.TripWithPlaceCount, error) {
	var rows []tripCountRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT t.id, t.title, COALESCE(t.description, '') AS description, t.startDate, t.endDate,
			COALESCE(t.current, 0) AS current, t.createdAt, COUNT(tp.id) AS placeCount
		FROM trips t
		LEFT JOIN trip_places tp ON t.id = tp.tripId
		GROUP BY t.id
		ORDER BY t.createdAt DESC, t.id DESC
	`)
	if err != nil {
		return nil, storageErr("failed to list trips with place count", err)
	}

	trips := make([]*domain.TripWithPlaceCount, 0, len(rows))
	for i := range rows {
		trip, err := rows[i].toDomain()
		if err != nil {
			return nil, storageErr("failed to map trip", err)
		}
		trips = append(trips, &domain.TripWithPlaceCount{Trip: trip, PlaceCount: rows[i].PlaceCount})
	}
	return trips, nil
}

// Update overwrites the fields set in u. An empty update does not touch the
// database. Setting Current to true clears it on every other trip.
func (s *TripStore) Update(ctx context.Context, id int64, u domain.TripUpdate) error {
	if u.IsEmpty() {
		return nil
	}

	set := map[string]any{}
	if u.Title.Set {
		set["title"] = u.Title.Value
	}
	if u.Description.Set {
		set["description"] = u.Description.Value
	}
	if u.StartDate.Set {
		set["startDate"] = u.StartDate.Value
	}
	if u.EndDate.Set {
		set["endDate"] = u.EndDate.Value
	}
	if u.Current.Set {
		set["current"] = boolToInt(u.Current.Value)
	}

	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if u.Current.Set && u.Current.Value {
			if err := clearCurrent(ctx, tx); err != nil {
				return err
			}
		}

		updated, err := execAffected(ctx, tx, sq.Update("trips").SetMap(set).Where(sq.Eq{"id": id}), "failed to update trip")
		if err != nil {
			return err
		}
		if !updated {
			return notFound("update trip")
		}
		return nil
	})
}

// SetCurrent makes id the only current trip. Clearing and setting happen in
// one transaction; an unknown id leaves the previous current trip in place.
func (s *TripStore) SetCurrent(ctx context.Context, id int64) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := clearCurrent(ctx, tx); err != nil {
			return err
		}

		updated, err := execAffected(ctx, tx, sq.Update("trips").Set("current", 1).Where(sq.Eq{"id": id}), "failed to set current trip")
		if err != nil {
			return err
		}
		if !updated {
			return notFound("set current trip")
		}
		return nil
	})
}

func clearCurrent(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `UPDATE trips SET current = 0`); err != nil {
		return storageErr("failed to clear current trip", err)
	}
	return nil
}

// Delete removes the trip and its itinerary rows in one transaction. The
// referenced places are kept. Photo files of the itinerary rows are the
// caller's responsibility.
func (s *TripStore) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM trip_places WHERE tripId = ?`, id); err != nil {
			return storageErr("failed to delete trip places", err)
		}

		deleted, err := execAffected(ctx, tx, sq.Delete("trips").Where(sq.Eq{"id": id}), "failed to delete trip")
		if err != nil {
			return err
		}
		if !deleted {
			return notFound("delete trip")
		}
		return nil
	})
}
