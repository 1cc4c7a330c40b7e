package domain

import "time"

type Place struct {
	ID          int64
	Name        string
	Description string
	VisitLater  bool
	Liked       bool
	Latitude    *float64
	Longitude   *float64
	CreatedAt   time.Time
}

// NewPlace holds the caller-supplied fields of a place; ID and CreatedAt are
// assigned by the store.
type NewPlace struct {
	Name        string
	Description string
	VisitLater  bool
	Liked       bool
	Latitude    *float64
	Longitude   *float64
}

type Trip struct {
	ID          int64
	Title       string
	Description string
	StartDate   *string
	EndDate     *string
	Current     bool
	CreatedAt   time.Time
}

type NewTrip struct {
	Title       string
	Description string
	StartDate   *string
	EndDate     *string
	Current     bool
}

// TripWithPlaceCount is a trip annotated with the number of its itinerary entries.
type TripWithPlaceCount struct {
	*Trip
	PlaceCount int
}

// TripPlace is the membership of a place in a trip's itinerary.
type TripPlace struct {
	ID        int64
	TripID    int64
	PlaceID   int64
	Order     int
	Visited   bool
	VisitDate *string
	Notes     string
}

// TripPlaceDetails bundles an itinerary entry with its place and photos.
type TripPlaceDetails struct {
	*TripPlace
	Place  *Place
	Photos []*Photo
}

type PlaceWithPhotos struct {
	*Place
	Photos []*Photo
}

type Photo struct {
	ID        int64
	Owner     OwnerRef
	FilePath  string
	CreatedAt time.Time
}
