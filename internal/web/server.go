package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/gonext/internal/service"
)

// Services groups the services the HTTP surface is built on.
type Services struct {
	Places     *service.PlaceService
	Trips      *service.TripService
	TripPlaces *service.TripPlaceService
	Photos     *service.PhotoService
	Next       *service.NextPlaceService
}

type Server struct {
	places     *service.PlaceService
	trips      *service.TripService
	tripPlaces *service.TripPlaceService
	photos     *service.PhotoService
	next       *service.NextPlaceService
	mux        *http.ServeMux
	logger     *slog.Logger
}

func NewServer(svc Services, logger *slog.Logger) *Server {
	s := &Server{
		places:     svc.Places,
		trips:      svc.Trips,
		tripPlaces: svc.TripPlaces,
		photos:     svc.Photos,
		next:       svc.Next,
		mux:        http.NewServeMux(),
		logger:     logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /places", s.handleListPlaces)
	s.mux.HandleFunc("POST /places", s.handleCreatePlace)
	s.mux.HandleFunc("GET /places/{id}", s.handleGetPlace)
	s.mux.HandleFunc("PATCH /places/{id}", s.handleUpdatePlace)
	s.mux.HandleFunc("DELETE /places/{id}", s.handleDeletePlace)
	s.mux.HandleFunc("POST /places/{id}/photos", s.handleUploadPlacePhoto)
	s.mux.HandleFunc("DELETE /places/{id}/photos/{photoID}", s.handleDeletePlacePhoto)

	s.mux.HandleFunc("GET /trips", s.handleListTrips)
	s.mux.HandleFunc("POST /trips", s.handleCreateTrip)
	s.mux.HandleFunc("GET /trips/current", s.handleGetCurrentTrip)
	s.mux.HandleFunc("GET /trips/{id}", s.handleGetTrip)
	s.mux.HandleFunc("PATCH /trips/{id}", s.handleUpdateTrip)
	s.mux.HandleFunc("DELETE /trips/{id}", s.handleDeleteTrip)
	s.mux.HandleFunc("PUT /trips/{id}/current", s.handleSetCurrentTrip)

	s.mux.HandleFunc("GET /trips/{id}/places", s.handleListTripPlaces)
	s.mux.HandleFunc("POST /trips/{id}/places", s.handleAddTripPlace)
	s.mux.HandleFunc("GET /trips/{id}/places/{tpID}", s.handleGetTripPlace)
	s.mux.HandleFunc("DELETE /trips/{id}/places/{tpID}", s.handleRemoveTripPlace)
	s.mux.HandleFunc("PUT /trips/{id}/places/{tpID}/order", s.handleUpdateTripPlaceOrder)
	s.mux.HandleFunc("POST /trips/{id}/places/{tpID}/move", s.handleMoveTripPlace)
	s.mux.HandleFunc("PUT /trips/{id}/places/{tpID}/visited", s.handleSetVisited)
	s.mux.HandleFunc("PUT /trips/{id}/places/{tpID}/notes", s.handleSetNotes)
	s.mux.HandleFunc("POST /trips/{id}/places/{tpID}/photos", s.handleUploadTripPlacePhoto)
	s.mux.HandleFunc("DELETE /trips/{id}/places/{tpID}/photos/{photoID}", s.handleDeleteTripPlacePhoto)

	s.mux.HandleFunc("GET /photos/{id}", s.handleGetPhoto)
	s.mux.HandleFunc("GET /next", s.handleGetNextPlace)
}

// securityHeaders sets the browser hardening headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}
