package web

import (
	"net/http"

	"github.com/vbonduro/gonext/internal/domain"
)

type createTripRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Current     bool    `json:"current"`
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.ListWithPlaceCount(r.Context())
	if err != nil {
		s.fail(w, err, "failed to list trips")
		return
	}

	out := make([]tripView, 0, len(trips))
	for _, t := range trips {
		v := newTripView(t.Trip)
		count := t.PlaceCount
		v.PlaceCount = &count
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err, "failed to decode trip")
		return
	}
	title, ok := validName(w, req.Title, "title")
	if !ok {
		return
	}

	trip, err := s.trips.Create(r.Context(), domain.NewTrip{
		Title:       title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Current:     req.Current,
	})
	if err != nil {
		s.fail(w, err, "failed to create trip")
		return
	}
	writeJSON(w, http.StatusCreated, newTripView(trip))
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err, "invalid trip id")
		return
	}

	trip, err := s.trips.Get(r.Context(), id)
	if err != nil {
		s.fail(w, err, "failed to get trip")
		return
	}
	if trip == nil {
		writeMessage(w, http.StatusNotFound, "not found")
		return
	}

	count, err := s.trips.PlaceCount(r.Context(), id)
	if err != nil {
		s.fail(w, err, "failed to count trip places")
		return
	}
	v := newTripView(trip)
	v.PlaceCount = &count
	writeJSON(w, http.StatusOK, v)
}

// handleGetCurrentTrip answers 204 when no trip is current.
func (s *Server) handleGetCurrentTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.trips.GetCurrent(r.Context())
	if err != nil {
		s.fail(w, err, "failed to get current trip")
		return
	}
	if trip == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, newTripView(trip))
}

func (s *Server) handleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err, "invalid trip id")
		return
	}

	body, err := decodePatch(w, r, "title", "description", "startDate", "endDate", "current")
	if err != nil {
		s.fail(w, err, "failed to decode trip update")
		return
	}

	var u domain.TripUpdate
	for _, err := range []error{
		optional(body, "title", &u.Title),
		optional(body, "description", &u.Description),
		optional(body, "startDate", &u.StartDate),
		optional(body, "endDate", &u.EndDate),
		optional(body, "current", &u.Current),
	} {
		if err != nil {
			s.fail(w, err, "failed to decode trip update")
			return
		}
	}
	if u.Title.Set {
		title, ok := validName(w, u.Title.Value, "title")
		if !ok {
			return
		}
		u.Title.Value = title
	}

	if err := s.trips.Update(r.Context(), id, u); err != nil {
		s.fail(w, err, "failed to update trip")
		return
	}

	trip, err := s.trips.Get(r.Context(), id)
	if err != nil {
		s.fail(w, err, "failed to get trip")
		return
	}
	if trip == nil {
		writeMessage(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, newTripView(trip))
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err, "invalid trip id")
		return
	}

	if err := s.trips.Delete(r.Context(), id); err != nil {
		s.fail(w, err, "failed to delete trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetCurrentTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err, "invalid trip id")
		return
	}

	if err := s.trips.SetCurrent(r.Context(), id); err != nil {
		s.fail(w, err, "failed to set current trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetNextPlace answers 204 when there is nothing left to visit.
func (s *Server) handleGetNextPlace(w http.ResponseWriter, r *http.Request) {
	next, err := s.next.GetNextPlace(r.Context())
	if err != nil {
		s.fail(w, err, "failed to get next place")
		return
	}
	if next == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, newTripPlaceDetailsView(next))
}
