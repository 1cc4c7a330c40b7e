package web

import (
	"bytes"
	"io"
	"net/http"

	"github.com/vbonduro/gonext/internal/domain"
)

const maxPhotoSize = 50 * 1024 * 1024 // 50 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// uploadNames gives the stored file its extension from the sniffed type, not
// from the client's filename.
var uploadNames = map[string]string{
	"image/jpeg": "upload.jpg",
	"image/png":  "upload.png",
	"image/gif":  "upload.gif",
	"image/webp": "upload.webp",
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// readImage reads the multipart "image" field and checks it is a supported
// image. It writes the error response itself and reports false on failure.
func (s *Server) readImage(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "failed to parse form")
		return nil, "", false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "image file required")
		return nil, "", false
	}
	defer closeWithLog(file, "upload file", s.logger)

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("read upload failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to read file")
		return nil, "", false
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "unsupported image format")
		return nil, "", false
	}
	return imageData, mimeType, true
}

func (s *Server) attachUpload(w http.ResponseWriter, r *http.Request, owner domain.OwnerRef) {
	imageData, mimeType, ok := s.readImage(w, r)
	if !ok {
		return
	}

	photo, err := s.photos.AttachUpload(r.Context(), owner, uploadNames[mimeType], bytes.NewReader(imageData))
	if err != nil {
		s.fail(w, err, "failed to store photo")
		return
	}
	writeJSON(w, http.StatusCreated, newPhotoView(photo))
}

func (s *Server) handleUploadPlacePhoto(w http.ResponseWriter, r *http.Request) {
	placeID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err, "invalid place id")
		return
	}

	place, err := s.places.Get(r.Context(), placeID)
	if err != nil {
		s.fail(w, err, "failed to get place")
		return
	}
	if place == nil {
		writeMessage(w, http.StatusNotFound, "not found")
		return
	}

	s.attachUpload(w, r, domain.PlaceOwner(place.ID))
}

func (s *Server) handleUploadTripPlacePhoto(w http.ResponseWriter, r *http.Request) {
	tp, ok := s.tripPlaceFromPath(w, r)
	if !ok {
		return
	}
	s.attachUpload(w, r, domain.TripPlaceOwner(tp.ID))
}

// ownedPhoto loads the {photoID} photo and checks that owner holds it.
func (s *Server) ownedPhoto(w http.ResponseWriter, r *http.Request, owner domain.OwnerRef) (*domain.Photo, bool) {
	photoID, err := pathID(r, "photoID")
	if err != nil {
		s.fail(w, err, "invalid photo id")
		return nil, false
	}

	photo, err := s.photos.Get(r.Context(), photoID)
	if err != nil {
		s.fail(w, err, "failed to get photo")
		return nil, false
	}
	if photo == nil || photo.Owner != owner {
		writeMessage(w, http.StatusNotFound, "not found")
		return nil, false
	}
	return photo, true
}

func (s *Server) handleDeletePlacePhoto(w http.ResponseWriter, r *http.Request) {
	placeID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err, "invalid place id")
		return
	}
	photo, ok := s.ownedPhoto(w, r, domain.PlaceOwner(placeID))
	if !ok {
		return
	}

	if err := s.photos.DetachFromPlace(r.Context(), photo.ID); err != nil {
		s.fail(w, err, "failed to delete photo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTripPlacePhoto(w http.ResponseWriter, r *http.Request) {
	tp, ok := s.tripPlaceFromPath(w, r)
	if !ok {
		return
	}
	photo, ok := s.ownedPhoto(w, r, domain.TripPlaceOwner(tp.ID))
	if !ok {
		return
	}

	if err := s.photos.DetachFromTripPlace(r.Context(), photo.ID); err != nil {
		s.fail(w, err, "failed to delete photo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	photoID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, err, "invalid photo id")
		return
	}

	reader, mimeType, err := s.photos.Open(r.Context(), photoID)
	if err != nil {
		s.fail(w, err, "failed to open photo")
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "photo_id", photoID, "error", err)
	}
}
