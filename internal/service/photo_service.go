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

type photoRepository interface {
	repository[domain.Photo]
	ListByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) ([]*domain.Photo, error)
}

// Owners resolves the records a photo can be attached to.
type Owners struct {
	Clients     getter[domain.Client]
	Equipment   getter[domain.Equipment]
	Repairs     getter[domain.Repair]
	Inspections getter[domain.HarpInspection]
}

func (o Owners) exists(ctx context.Context, t domain.OwnerType, id uuid.UUID) error {
	var err error
	switch t {
	case domain.OwnerClient:
		_, err = mustExist(ctx, o.Clients, "ownerId", id)
	case domain.OwnerEquipment:
		_, err = mustExist(ctx, o.Equipment, "ownerId", id)
	case domain.OwnerRepair:
		_, err = mustExist(ctx, o.Repairs, "ownerId", id)
	case domain.OwnerInspection:
		_, err = mustExist(ctx, o.Inspections, "ownerId", id)
	}
	return err
}

type PhotoService struct {
	*Resource[domain.Photo, *domain.Photo]
	store  photoRepository
	blobs  photostore.Store
	owners Owners
}

func NewPhotoService(store photoRepository, blobs photostore.Store, owners Owners, pub events.Publisher, logger *slog.Logger) *PhotoService {
	s := &PhotoService{
		Resource: NewResource[domain.Photo](store, pub, logger),
		store:    store,
		blobs:    blobs,
		owners:   owners,
	}
	s.check = func(ctx context.Context, p *domain.Photo) error {
		return s.owners.exists(ctx, p.OwnerType, p.OwnerID)
	}
	s.preserve = func(_ context.Context, stored, incoming *domain.Photo) error {
		// Only the caption is editable; the blob and owner are fixed.
		caption := incoming.Caption
		*incoming = *stored
		incoming.Caption = caption
		return nil
	}
	return s
}

// UploadPhoto is a new photo for a record.
type UploadPhoto struct {
	OwnerType domain.OwnerType
	OwnerID   uuid.UUID
	Caption   string
	Data      []byte
}

// Upload sniffs the image type, stores the blob and records it against its
// owner. The blob is removed again if the record cannot be saved.
func (s *PhotoService) Upload(ctx context.Context, in UploadPhoto) (*domain.Photo, error) {
	mimeType, ok := photostore.DetectImage(in.Data)
	if !ok {
		return nil, validation.Invalid("image", "unsupported image format")
	}
	s.logger.InfoContext(ctx, "upload photo started",
		"owner_type", in.OwnerType, "owner_id", in.OwnerID, "mime_type", mimeType, "bytes", len(in.Data))

	p := &domain.Photo{
		OwnerType:  in.OwnerType,
		OwnerID:    in.OwnerID,
		Caption:    in.Caption,
		MimeType:   mimeType,
		UploadedAt: s.now().UTC(),
		// Placeholder so field validation passes before the blob is written.
		StorageKey: "pending",
	}
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}

	key, err := s.blobs.Save(ctx, "photos/"+string(in.OwnerType), mimeType, bytes.NewReader(in.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	p.StorageKey = key

	created, err := s.insert(ctx, p)
	if err != nil {
		if derr := s.blobs.Delete(ctx, key); derr != nil {
			s.logger.ErrorContext(ctx, "failed to remove orphaned photo file", "storage_key", key, "error", derr)
		}
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}
	return created, nil
}

func (s *PhotoService) ListByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) ([]*domain.Photo, error) {
	return s.store.ListByOwner(ctx, ownerType, ownerID)
}

// Open returns the image bytes of a photo. The caller closes the reader.
func (s *PhotoService) Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return s.blobs.Get(ctx, p.StorageKey)
}

// Create is not supported; photos arrive through Upload.
func (s *PhotoService) Create(context.Context, *domain.Photo) (*domain.Photo, error) {
	return nil, validation.Invalid("image", "photos must be uploaded as multipart form data")
}

// Delete removes the record and then its blob. A blob that cannot be removed
// is logged and left behind.
func (s *PhotoService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Resource.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, p.StorageKey); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete photo file", "storage_key", p.StorageKey, "error", err)
	}
	return nil
}
