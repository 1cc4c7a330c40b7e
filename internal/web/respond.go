package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vbonduro/gonext/internal/domain"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps err onto a status code by its domain kind. Anything that is not
// a missing record or bad input is logged and reported as a 500 with msg.
func (s *Server) fail(w http.ResponseWriter, err error, msg string) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		writeMessage(w, http.StatusNotFound, "not found")
	case domain.KindValidation:
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error(msg, "error", err)
		writeMessage(w, http.StatusInternalServerError, msg)
	}
}

// decodeJSON reads a single JSON object from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.E(domain.KindValidation, "decode request", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.E(domain.KindValidation, "decode request", errors.New("trailing data after JSON object"))
	}
	return nil
}

// patchBody holds the raw fields of a PATCH request so that an absent field
// can be told apart from an explicit null.
type patchBody map[string]json.RawMessage

func decodePatch(w http.ResponseWriter, r *http.Request, allowed ...string) (patchBody, error) {
	var body patchBody
	if err := decodeJSON(w, r, &body); err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		known[k] = true
	}
	for k := range body {
		if !known[k] {
			return nil, domain.E(domain.KindValidation, "decode request", fmt.Errorf("unknown field %q", k))
		}
	}
	return body, nil
}

// optional copies field key of body into dst when present.
func optional[T any](body patchBody, key string, dst *domain.Optional[T]) error {
	raw, ok := body[key]
	if !ok {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.E(domain.KindValidation, "decode request", fmt.Errorf("invalid %s: %w", key, err))
	}
	*dst = domain.Some(v)
	return nil
}

// pathID parses the int64 path variable name.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, domain.E(domain.KindValidation, "parse path", fmt.Errorf("invalid %s", name))
	}
	return id, nil
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
