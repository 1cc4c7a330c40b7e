package web

import (
	"net/http"

	"github.com/vbonduro/gonext/internal/domain"
)

type addTripPlaceRequest struct {
	PlaceID int64 `json:"placeId"`
	Order   *int  `json:"order"`
}

type orderRequest struct {
	Order int `json:"order"`
}

type moveRequest struct {
	Direction string `json:"direction"`
}

type visitedRequest struct {
	Visited bool `json:"visited"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

// tripPlaceFromPath loads the {tpID} trip place and checks it belongs to the
// {id} trip. It writes the error response itself and reports false on failure.
func (s *Server) tripPlaceFromPath(w http.ResponseWriter, r *http.Request) (*domain.TripPlace, bool) {
	tripID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err, "invalid trip id")
		return nil, false
	}
	tpID, err := pathID(r, "tpID")
	if err != nil {
		s.fail(w, err, "invalid trip place id")
		return nil, false
	}

	tp, err := s.tripPlaces.Get(r.Context(), tpID)
	if err != nil {
		s.fail(w, err, "failed to get trip place")
		return nil, false
	}
	if tp == nil || tp.TripID != tripID {
		writeMessage(w, http.StatusNotFound, "not found")
		return nil, false
	}
	return tp, true
}

func (s *Server) handleListTripPlaces(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err, "invalid trip id")
		return
	}

	details, err := s.tripPlaces.GetWithDetails(r.Context(), tripID)
	if err != nil {
		s.fail(w, err, "failed to list trip places")
		return
	}

	out := make([]tripPlaceView, 0, len(details))
	for _, d := range details {
		out = append(out, newTripPlaceDetailsView(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddTripPlace(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err, "invalid trip id")
		return
	}

	var req addTripPlaceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err, "failed to decode trip place")
		return
	}

	trip, err := s.trips.Get(r.Context(), tripID)
	if err != nil {
		s.fail(w, err, "failed to get trip")
		return
	}
	if trip == nil {
		writeMessage(w, http.StatusNotFound, "trip not found")
		return
	}
	place, err := s.places.Get(r.Context(), req.PlaceID)
	if err != nil {
		s.fail(w, err, "failed to get place")
		return
	}
	if place == nil {
		writeMessage(w, http.StatusNotFound, "place not found")
		return
	}

	tp, err := s.tripPlaces.AddPlace(r.Context(), tripID, place.ID, req.Order)
	if err != nil {
		s.fail(w, err, "failed to add place to trip")
		return
	}
	writeJSON(w, http.StatusCreated, newTripPlaceView(tp))
}

func (s *Server) handleGetTripPlace(w http.ResponseWriter, r *http.Request) {
	tp, ok := s.tripPlaceFromPath(w, r)
	if !ok {
		return
	}

	details, err := s.tripPlaces.GetOneWithDetails(r.Context(), tp.ID)
	if err != nil {
		s.fail(w, err, "failed to get trip place")
		return
	}
	if details == nil {
		writeMessage(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, newTripPlaceDetailsView(details))
}

func (s *Server) handleRemoveTripPlace(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err, "invalid trip id")
		return
	}
	tpID, err := pathID(r, "tpID")
	if err != nil {
		s.fail(w, err, "invalid trip place id")
		return
	}

	if err := s.tripPlaces.Remove(r.Context(), tripID, tpID); err != nil {
		s.fail(w, err, "failed to remove trip place")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateTripPlaceOrder(w http.ResponseWriter, r *http.Request) {
	tp, ok := s.tripPlaceFromPath(w, r)
	if !ok {
		return
	}

	var req orderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err, "failed to decode order")
		return
	}

	if err := s.tripPlaces.UpdateOrder(r.Context(), tp.TripID, tp.ID, req.Order); err != nil {
		s.fail(w, err, "failed to update order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveTripPlace(w http.ResponseWriter, r *http.Request) {
	tp, ok := s.tripPlaceFromPath(w, r)
	if !ok {
		return
	}

	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err, "failed to decode move")
		return
	}

	var err error
	switch req.Direction {
	case "up":
		err = s.tripPlaces.MoveUp(r.Context(), tp.TripID, tp.ID)
	case "down":
		err = s.tripPlaces.MoveDown(r.Context(), tp.TripID, tp.ID)
	default:
		writeMessage(w, http.StatusBadRequest, `direction must be "up" or "down"`)
		return
	}
	if err != nil {
		s.fail(w, err, "failed to move trip place")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetVisited(w http.ResponseWriter, r *http.Request) {
	tp, ok := s.tripPlaceFromPath(w, r)
	if !ok {
		return
	}

	var req visitedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err, "failed to decode visited")
		return
	}

	if err := s.tripPlaces.MarkVisited(r.Context(), tp.ID, req.Visited); err != nil {
		s.fail(w, err, "failed to mark visited")
		return
	}
	s.writeTripPlace(w, r, tp.ID)
}

func (s *Server) handleSetNotes(w http.ResponseWriter, r *http.Request) {
	tp, ok := s.tripPlaceFromPath(w, r)
	if !ok {
		return
	}

	var req notesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err, "failed to decode notes")
		return
	}

	if err := s.tripPlaces.SetNotes(r.Context(), tp.ID, req.Notes); err != nil {
		s.fail(w, err, "failed to set notes")
		return
	}
	s.writeTripPlace(w, r, tp.ID)
}

func (s *Server) writeTripPlace(w http.ResponseWriter, r *http.Request, id int64) {
	tp, err := s.tripPlaces.Get(r.Context(), id)
	if err != nil {
		s.fail(w, err, "failed to get trip place")
		return
	}
	if tp == nil {
		writeMessage(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, newTripPlaceView(tp))
}
