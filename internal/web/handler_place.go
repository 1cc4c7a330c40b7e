package web

import (
	"net/http"
	"strings"

	"github.com/vbonduro/gonext/internal/domain"
)

const maxNameLen = 200

type createPlaceRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	VisitLater  bool     `json:"visitLater"`
	Liked       bool     `json:"liked"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// validName trims name and reports whether it is usable as a place name or
// trip title.
func validName(w http.ResponseWriter, name, field string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		writeMessage(w, http.StatusBadRequest, field+" required")
		return "", false
	}
	if len(name) > maxNameLen {
		writeMessage(w, http.StatusBadRequest, field+" too long")
		return "", false
	}
	return name, true
}

func (s *Server) handleListPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := s.places.List(r.Context())
	if err != nil {
		s.fail(w, err, "failed to list places")
		return
	}

	out := make([]placeView, 0, len(places))
	for _, p := range places {
		out = append(out, newPlaceView(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePlace(w http.ResponseWriter, r *http.Request) {
	var req createPlaceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err, "failed to decode place")
		return
	}
	name, ok := validName(w, req.Name, "name")
	if !ok {
		return
	}

	place, err := s.places.Create(r.Context(), domain.NewPlace{
		Name:        name,
		Description: req.Description,
		VisitLater:  req.VisitLater,
		Liked:       req.Liked,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		s.fail(w, err, "failed to create place")
		return
	}
	writeJSON(w, http.StatusCreated, newPlaceView(place))
}

func (s *Server) handleGetPlace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err, "invalid place id")
		return
	}

	place, err := s.places.GetWithPhotos(r.Context(), id)
	if err != nil {
		s.fail(w, err, "failed to get place")
		return
	}
	if place == nil {
		writeMessage(w, http.StatusNotFound, "not found")
		return
	}

	v := newPlaceView(place.Place)
	v.Photos = newPhotoViews(place.Photos)
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleUpdatePlace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err, "invalid place id")
		return
	}

	body, err := decodePatch(w, r, "name", "description", "visitLater", "liked", "latitude", "longitude")
	if err != nil {
		s.fail(w, err, "failed to decode place update")
		return
	}

	var u domain.PlaceUpdate
	for _, err := range []error{
		optional(body, "name", &u.Name),
		optional(body, "description", &u.Description),
		optional(body, "visitLater", &u.VisitLater),
		optional(body, "liked", &u.Liked),
		optional(body, "latitude", &u.Latitude),
		optional(body, "longitude", &u.Longitude),
	} {
		if err != nil {
			s.fail(w, err, "failed to decode place update")
			return
		}
	}
	if u.Name.Set {
		name, ok := validName(w, u.Name.Value, "name")
		if !ok {
			return
		}
		u.Name.Value = name
	}

	if err := s.places.Update(r.Context(), id, u); err != nil {
		s.fail(w, err, "failed to update place")
		return
	}

	place, err := s.places.Get(r.Context(), id)
	if err != nil {
		s.fail(w, err, "failed to get place")
		return
	}
	if place == nil {
		writeMessage(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, newPlaceView(place))
}

func (s *Server) handleDeletePlace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err, "invalid place id")
		return
	}

	if err := s.places.Delete(r.Context(), id); err != nil {
		s.fail(w, err, "failed to delete place")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
