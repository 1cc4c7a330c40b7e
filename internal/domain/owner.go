package domain

import "fmt"

// OwnerKind is the persisted entityType of a photo.
type OwnerKind string

const (
	OwnerPlace     OwnerKind = "place"
	OwnerTripPlace OwnerKind = "trip_place"
)

func (k OwnerKind) Valid() bool {
	return k == OwnerPlace || k == OwnerTripPlace
}

// OwnerRef identifies the single entity that owns a photo.
type OwnerRef struct {
	Kind OwnerKind
	ID   int64
}

func PlaceOwner(placeID int64) OwnerRef {
	return OwnerRef{Kind: OwnerPlace, ID: placeID}
}

func TripPlaceOwner(tripPlaceID int64) OwnerRef {
	return OwnerRef{Kind: OwnerTripPlace, ID: tripPlaceID}
}

func (o OwnerRef) String() string {
	return fmt.Sprintf("%s:%d", o.Kind, o.ID)
}
