package store

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/vbonduro/gonext/internal/domain"
)

var tripPlaceColumns = []string{
	"id",
	"tripId",
	"placeId",
	"order_index",
	"COALESCE(visited, 0) AS visited",
	"visitDate",
	"COALESCE(notes, '') AS notes",
}

type tripPlaceRow struct {
	ID        int64   `db:"id"`
	TripID    int64   `db:"tripId"`
	PlaceID   int64   `db:"placeId"`
	Order     int     `db:"order_index"`
	Visited   int64   `db:"visited"`
	VisitDate *string `db:"visitDate"`
	Notes     string  `db:"notes"`
}

func (r *tripPlaceRow) toDomain() *domain.TripPlace {
	return &domain.TripPlace{
		ID:        r.ID,
		TripID:    r.TripID,
		PlaceID:   r.PlaceID,
		Order:     r.Order,
		Visited:   r.Visited == 1,
		VisitDate: r.VisitDate,
		Notes:     r.Notes,
	}
}

type TripPlaceStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewTripPlaceStore(db *sqlx.DB) *TripPlaceStore {
	return &TripPlaceStore{db: db, now: time.Now}
}

// Add appends placeID to the trip's itinerary. A nil order places it after the
// current last entry (max order + 1, or 0 for an empty itinerary).
func (s *TripPlaceStore) Add(ctx context.Context, tripID, placeID int64, order *int) (*domain.TripPlace, error) {
	var id int64
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		next := 0
		if order != nil {
			next = *order
		} else {
			err := tx.GetContext(ctx, &next, `
				SELECT COALESCE(MAX(order_index), -1) + 1 FROM trip_places WHERE tripId = ?
			`, tripID)
			if err != nil {
				return storageErr("failed to compute next order", err)
			}
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO trip_places (tripId, placeId, order_index, visited, notes) VALUES (?, ?, ?, 0, '')
		`, tripID, placeID, next)
		if err != nil {
			return storageErr("failed to add place to trip", err)
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

func (s *TripPlaceStore) GetByID(ctx context.Context, id int64) (*domain.TripPlace, error) {
	query, args, err := sq.Select(tripPlaceColumns...).From("trip_places").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, storageErr("failed to build trip place query", err)
	}

	var row tripPlaceRow
	err = s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("failed to get trip place", err)
	}

	return row.toDomain(), nil
}

// ListByTrip returns the trip's itinerary in ascending order.
func (s *TripPlaceStore) ListByTrip(ctx context.Context, tripID int64) ([]*domain.TripPlace, error) {
	query, args, err := sq.Select(tripPlaceColumns...).From("trip_places").
		Where(sq.Eq{"tripId": tripID}).
		OrderBy("order_index ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, storageErr("failed to build trip place query", err)
	}

	var rows []tripPlaceRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storageErr("failed to list trip places", err)
	}

	tripPlaces := make([]*domain.TripPlace, 0, len(rows))
	for i := range rows {
		tripPlaces = append(tripPlaces, rows[i].toDomain())
	}
	return tripPlaces, nil
}

func (s *TripPlaceStore) CountByTrip(ctx context.Context, tripID int64) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM trip_places WHERE tripId = ?`, tripID); err != nil {
		return 0, storageErr("failed to count trip places", err)
	}
	return count, nil
}

// Delete removes the entry only if it belongs to tripID.
func (s *TripPlaceStore) Delete(ctx context.Context, tripID, id int64) error {
	deleted, err := execAffected(ctx, s.db,
		sq.Delete("trip_places").Where(sq.Eq{"id": id, "tripId": tripID}),
		"failed to remove place from trip")
	if err != nil {
		return err
	}
	if !deleted {
		return notFound("remove place from trip")
	}
	return nil
}

// UpdateOrder overwrites the entry's order. Neighbouring entries are not
// renumbered.
func (s *TripPlaceStore) UpdateOrder(ctx context.Context, tripID, id int64, order int) error {
	updated, err := execAffected(ctx, s.db,
		sq.Update("trip_places").Set("order_index", order).Where(sq.Eq{"id": id, "tripId": tripID}),
		"failed to update trip place order")
	if err != nil {
		return err
	}
	if !updated {
		return notFound("update trip place order")
	}
	return nil
}

// SwapOrder exchanges the order values of two entries of the same trip in one
// transaction.
func (s *TripPlaceStore) SwapOrder(ctx context.Context, tripID, firstID, secondID int64) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		query, args, err := sq.Select("id", "order_index").From("trip_places").
			Where(sq.Eq{"tripId": tripID, "id": []int64{firstID, secondID}}).
			ToSql()
		if err != nil {
			return storageErr("failed to build trip place query", err)
		}

		var rows []struct {
			ID    int64 `db:"id"`
			Order int   `db:"order_index"`
		}
		if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
			return storageErr("failed to read trip place order", err)
		}

		orders := make(map[int64]int, len(rows))
		for _, r := range rows {
			orders[r.ID] = r.Order
		}
		firstOrder, ok := orders[firstID]
		if !ok {
			return notFound("swap trip place order")
		}
		secondOrder, ok := orders[secondID]
		if !ok {
			return notFound("swap trip place order")
		}

		if _, err := tx.ExecContext(ctx, `UPDATE trip_places SET order_index = ? WHERE id = ?`, secondOrder, firstID); err != nil {
			return storageErr("failed to update trip place order", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE trip_places SET order_index = ? WHERE id = ?`, firstOrder, secondID); err != nil {
			return storageErr("failed to update trip place order", err)
		}
		return nil
	})
}

// Move shifts an entry one position earlier (step -1) or later (step 1) in
// the itinerary. The trip is renumbered to orders 0..n-1 in its current
// sequence before the two positions are exchanged, so tied orders move by
// exactly one place. Moving past either end changes nothing.
func (s *TripPlaceStore) Move(ctx context.Context, tripID, id int64, step int) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		query, args, err := sq.Select("id").From("trip_places").
			Where(sq.Eq{"tripId": tripID}).
			OrderBy("order_index ASC", "id ASC").
			ToSql()
		if err != nil {
			return storageErr("failed to build trip place query", err)
		}

		var ids []int64
		if err := tx.SelectContext(ctx, &ids, query, args...); err != nil {
			return storageErr("failed to read itinerary", err)
		}

		idx := slices.Index(ids, id)
		if idx < 0 {
			return notFound("move trip place")
		}
		neighbour := idx + step
		if neighbour < 0 || neighbour >= len(ids) {
			return nil
		}
		ids[idx], ids[neighbour] = ids[neighbour], ids[idx]

		for order, tpID := range ids {
			if _, err := tx.ExecContext(ctx, `UPDATE trip_places SET order_index = ? WHERE id = ?`, order, tpID); err != nil {
				return storageErr("failed to update trip place order", err)
			}
		}
		return nil
	})
}

// SetVisited sets the visited flag. The first transition to visited stamps
// today's UTC date and later calls keep it; clearing the flag clears the date.
func (s *TripPlaceStore) SetVisited(ctx context.Context, id int64, visited bool) error {
	b := sq.Update("trip_places").Set("visited", boolToInt(visited)).Where(sq.Eq{"id": id})
	if visited {
		today := s.now().UTC().Format(dateLayout)
		b = b.Set("visitDate", sq.Expr(
			"CASE WHEN COALESCE(visited, 0) = 1 AND visitDate IS NOT NULL THEN visitDate ELSE ? END", today))
	} else {
		b = b.Set("visitDate", nil)
	}

	updated, err := execAffected(ctx, s.db, b, "failed to mark trip place visited")
	if err != nil {
		return err
	}
	if !updated {
		return notFound("mark trip place visited")
	}
	return nil
}

func (s *TripPlaceStore) SetNotes(ctx context.Context, id int64, notes string) error {
	updated, err := execAffected(ctx, s.db,
		sq.Update("trip_places").Set("notes", notes).Where(sq.Eq{"id": id}),
		"failed to set trip place notes")
	if err != nil {
		return err
	}
	if !updated {
		return notFound("set trip place notes")
	}
	return nil
}
