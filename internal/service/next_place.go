package service

import (
	"context"

	"github.com/vbonduro/gonext/internal/domain"
)

type currentTripFinder interface {
	GetCurrent(ctx context.Context) (*domain.Trip, error)
}

type itineraryDetails interface {
	GetWithDetails(ctx context.Context, tripID int64) ([]*domain.TripPlaceDetails, error)
}

// NextPlaceService answers "where to next": the first unvisited stop of the
// current trip.
type NextPlaceService struct {
	trips     currentTripFinder
	itinerary itineraryDetails
}

func NewNextPlaceService(trips currentTripFinder, itinerary itineraryDetails) *NextPlaceService {
	return &NextPlaceService{trips: trips, itinerary: itinerary}
}

// GetNextPlace returns nil, nil when there is no current trip or every stop
// has been visited.
func (s *NextPlaceService) GetNextPlace(ctx context.Context) (*domain.TripPlaceDetails, error) {
	trip, err := s.trips.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, nil
	}

	details, err := s.itinerary.GetWithDetails(ctx, trip.ID)
	if err != nil {
		return nil, err
	}
	for _, d := range details {
		if !d.Visited {
			return d, nil
		}
	}
	return nil, nil
}
