package web

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/auth"
	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/photostore"
	"github.com/vbonduro/fieldtech/internal/service"
	"github.com/vbonduro/fieldtech/internal/validation"
)

// multipartOverhead allows for form fields and boundaries around the file.
const multipartOverhead = 1 << 20

// readUpload parses a multipart form and returns the contents of field.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, photostore.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(photostore.MaxUploadSize); err != nil {
		return nil, validation.Invalid(field, "must be a multipart upload of at most 50 MB")
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, validation.Invalid(field, "is required")
	}
	defer closeWithLog(file, "upload file", s.logger)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

func (s *Server) photoRoutes(r chi.Router) {
	read := s.allow(auth.ActionRead, domain.CollectionPhotos)
	write := s.allow(auth.ActionWrite, domain.CollectionPhotos)

	r.With(read).Get("/", s.handleListPhotos)
	r.With(write).Post("/", s.handleUploadPhoto)
	r.With(read).Get("/{id}", s.handleGetPhoto)
	r.With(read).Get("/{id}/blob", s.handleGetPhotoBlob)
	r.With(write).Delete("/{id}", s.handleDeletePhoto)
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	data, err := s.readUpload(w, r, "image")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	ownerID, err := uuid.FromString(r.FormValue("ownerId"))
	if err != nil {
		s.sendError(w, r, validation.Invalid("ownerId", "must be a valid id"))
		return
	}

	p, err := s.svc.Photos.Upload(r.Context(), service.UploadPhoto{
		OwnerType: domain.OwnerType(r.FormValue("ownerType")),
		OwnerID:   ownerID,
		Caption:   r.FormValue("caption"),
		Data:      data,
	})
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusCreated, p)
}

func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	ownerID, err := uuid.FromString(v.Get("ownerId"))
	if err != nil {
		s.sendError(w, r, validation.Invalid("ownerId", "must be a valid id"))
		return
	}
	photos, err := s.svc.Photos.ListByOwner(r.Context(), domain.OwnerType(v.Get("ownerType")), ownerID)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	if photos == nil {
		photos = []*domain.Photo{}
	}
	s.sendData(w, r, http.StatusOK, photos)
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	p, err := s.svc.Photos.Get(r.Context(), id)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusOK, p)
}

func (s *Server) handleGetPhotoBlob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	rc, mimeType, err := s.svc.Photos.Open(r.Context(), id)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	defer closeWithLog(rc, "photo blob", s.logger)
	s.streamBlob(w, r, rc, mimeType, "")
}

func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	if err := s.svc.Photos.Delete(r.Context(), id); err != nil {
		s.sendError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUploadManual(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	data, err := s.readUpload(w, r, "file")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	m, err := s.svc.Manuals.AttachFile(r.Context(), id, data)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusOK, m)
}

func (s *Server) handleGetManualFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	rc, mimeType, m, err := s.svc.Manuals.OpenFile(r.Context(), id)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	defer closeWithLog(rc, "manual file", s.logger)
	s.streamBlob(w, r, rc, mimeType, m.Title+photostore.Ext(mimeType))
}

// handleNameplate reads manufacturer, model and serial from a photo of an
// equipment nameplate so the client can prefill a new equipment record.
func (s *Server) handleNameplate(w http.ResponseWriter, r *http.Request) {
	data, err := s.readUpload(w, r, "image")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	mimeType, ok := photostore.DetectImage(data)
	if !ok {
		s.sendError(w, r, validation.Invalid("image", "unsupported image format"))
		return
	}
	np, err := s.svc.Equipment.ReadNameplate(r.Context(), bytes.NewReader(data), mimeType)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusOK, np)
}

// streamBlob copies a stored file to the response. A non-empty filename is
// offered as the download name.
func (s *Server) streamBlob(w http.ResponseWriter, r *http.Request, rc io.Reader, mimeType, filename string) {
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", path.Base(filename)))
	}
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to stream file", "error", err)
	}
}

func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
