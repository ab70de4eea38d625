package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/events"
	"github.com/vbonduro/fieldtech/internal/photostore"
	"github.com/vbonduro/fieldtech/internal/validation"
)

type ManualService struct {
	*Resource[domain.Manual, *domain.Manual]
	blobs photostore.Store
}

func NewManualService(store repository[domain.Manual], blobs photostore.Store, pub events.Publisher, logger *slog.Logger) *ManualService {
	s := &ManualService{
		Resource: NewResource[domain.Manual](store, pub, logger),
		blobs:    blobs,
	}
	s.preserve = func(_ context.Context, stored, incoming *domain.Manual) error {
		incoming.StorageKey = stored.StorageKey
		incoming.MimeType = stored.MimeType
		return nil
	}
	return s
}

func (s *ManualService) Create(ctx context.Context, m *domain.Manual) (*domain.Manual, error) {
	m.StorageKey = ""
	m.MimeType = ""
	return s.Resource.Create(ctx, m)
}

// AttachFile stores a PDF or image as the manual's document, replacing any
// previous file.
func (s *ManualService) AttachFile(ctx context.Context, id uuid.UUID, data []byte) (*domain.Manual, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	mimeType, ok := photostore.DetectDocument(data)
	if !ok {
		return nil, validation.Invalid("file", "must be a PDF or image")
	}

	key, err := s.blobs.Save(ctx, "manuals", mimeType, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to save manual file: %w", err)
	}
	previous := m.StorageKey
	m.StorageKey = key
	m.MimeType = mimeType
	if _, err := s.save(ctx, m); err != nil {
		if derr := s.blobs.Delete(ctx, key); derr != nil {
			s.logger.ErrorContext(ctx, "failed to remove orphaned manual file", "storage_key", key, "error", derr)
		}
		return nil, err
	}

	if previous != "" {
		if err := s.blobs.Delete(ctx, previous); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete replaced manual file", "storage_key", previous, "error", err)
		}
	}
	return m, nil
}

// OpenFile returns the attached document. The caller closes the reader.
func (s *ManualService) OpenFile(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, *domain.Manual, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", nil, err
	}
	if !m.HasFile() {
		return nil, "", nil, fmt.Errorf("manual %s has no file: %w", id, domain.ErrNotFound)
	}
	rc, mimeType, err := s.blobs.Get(ctx, m.StorageKey)
	if err != nil {
		return nil, "", nil, err
	}
	return rc, mimeType, m, nil
}

func (s *ManualService) Delete(ctx context.Context, id uuid.UUID) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Resource.Delete(ctx, id); err != nil {
		return err
	}
	if m.HasFile() {
		if err := s.blobs.Delete(ctx, m.StorageKey); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete manual file", "storage_key", m.StorageKey, "error", err)
		}
	}
	return nil
}
