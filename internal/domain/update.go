package domain

// Optional marks a field of a partial update. The zero value means "leave
// unchanged".
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// PlaceUpdate lists the place fields to overwrite. Latitude and Longitude may
// be set to nil to clear the coordinates.
type PlaceUpdate struct {
	Name        Optional[string]
	Description Optional[string]
	VisitLater  Optional[bool]
	Liked       Optional[bool]
	Latitude    Optional[*float64]
	Longitude   Optional[*float64]
}

func (u PlaceUpdate) IsEmpty() bool {
	return !u.Name.Set && !u.Description.Set && !u.VisitLater.Set &&
		!u.Liked.Set && !u.Latitude.Set && !u.Longitude.Set
}

type TripUpdate struct {
	Title       Optional[string]
	Description Optional[string]
	StartDate   Optional[*string]
	EndDate     Optional[*string]
	Current     Optional[bool]
}

func (u TripUpdate) IsEmpty() bool {
	return !u.Title.Set && !u.Description.Set && !u.StartDate.Set &&
		!u.EndDate.Set && !u.Current.Set
}
