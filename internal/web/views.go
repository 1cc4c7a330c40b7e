package web

import (
	"fmt"
	"time"

	"github.com/vbonduro/gonext/internal/domain"
)

// JSON views of the domain types. Timestamps are RFC 3339 UTC.

type placeView struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	VisitLater  bool        `json:"visitLater"`
	Liked       bool        `json:"liked"`
	Latitude    *float64    `json:"latitude"`
	Longitude   *float64    `json:"longitude"`
	CreatedAt   time.Time   `json:"createdAt"`
	Photos      []photoView `json:"photos,omitempty"`
}

type tripView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   *string   `json:"startDate"`
	EndDate     *string   `json:"endDate"`
	Current     bool      `json:"current"`
	CreatedAt   time.Time `json:"createdAt"`
	PlaceCount  *int      `json:"placeCount,omitempty"`
}

type tripPlaceView struct {
	ID        int64       `json:"id"`
	TripID    int64       `json:"tripId"`
	PlaceID   int64       `json:"placeId"`
	Order     int         `json:"order"`
	Visited   bool        `json:"visited"`
	VisitDate *string     `json:"visitDate"`
	Notes     string      `json:"notes"`
	Place     *placeView  `json:"place,omitempty"`
	Photos    []photoView `json:"photos,omitempty"`
}

type photoView struct {
	ID         int64     `json:"id"`
	EntityType string    `json:"entityType"`
	EntityID   int64     `json:"entityId"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"createdAt"`
}

func newPlaceView(p *domain.Place) placeView {
	return placeView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		VisitLater:  p.VisitLater,
		Liked:       p.Liked,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		CreatedAt:   p.CreatedAt.UTC(),
	}
}

func newTripView(t *domain.Trip) tripView {
	return tripView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Current:     t.Current,
		CreatedAt:   t.CreatedAt.UTC(),
	}
}

func newTripPlaceView(tp *domain.TripPlace) tripPlaceView {
	return tripPlaceView{
		ID:        tp.ID,
		TripID:    tp.TripID,
		PlaceID:   tp.PlaceID,
		Order:     tp.Order,
		Visited:   tp.Visited,
		VisitDate: tp.VisitDate,
		Notes:     tp.Notes,
	}
}

func newTripPlaceDetailsView(d *domain.TripPlaceDetails) tripPlaceView {
	v := newTripPlaceView(d.TripPlace)
	place := newPlaceView(d.Place)
	v.Place = &place
	v.Photos = newPhotoViews(d.Photos)
	return v
}

func newPhotoView(p *domain.Photo) photoView {
	return photoView{
		ID:         p.ID,
		EntityType: string(p.Owner.Kind),
		EntityID:   p.Owner.ID,
		URL:        fmt.Sprintf("/photos/%d", p.ID),
		CreatedAt:  p.CreatedAt.UTC(),
	}
}

func newPhotoViews(photos []*domain.Photo) []photoView {
	out := make([]photoView, 0, len(photos))
	for _, p := range photos {
		out = append(out, newPhotoView(p))
	}
	return out
}
