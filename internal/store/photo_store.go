package store

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/domain"
)

type PhotoStore struct {
	*Table[domain.Photo, *domain.Photo]
}

func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{NewTable[domain.Photo](db, Schema[domain.Photo]{
		Table:   domain.CollectionPhotos,
		Columns: []string{"owner_type", "owner_id", "storage_key", "mime_type", "caption", "uploaded_at"},
		Values: func(p *domain.Photo) []any {
			return []any{p.OwnerType, p.OwnerID, p.StorageKey, p.MimeType, p.Caption, timeValue(p.UploadedAt)}
		},
		Fields: func(p *domain.Photo) []any {
			return []any{&p.OwnerType, &p.OwnerID, &p.StorageKey, &p.MimeType, &p.Caption, utcTime{&p.UploadedAt}}
		},
		Filters: map[string]Filter{
			"ownerType": {Column: "owner_type"},
			"ownerId":   {Column: "owner_id", Kind: FilterID},
		},
		Search:      []string{"caption"},
		DateColumn:  "uploaded_at",
		Sorts:       map[string]string{"uploadedAt": "uploaded_at"},
		DefaultSort: "uploaded_at",
		DefaultDesc: true,
	})}
}

// ListByOwner returns the photos attached to one record, newest first.
func (s *PhotoStore) ListByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) ([]*domain.Photo, error) {
	return s.query(ctx, s.selectAll().
		Where(sq.Eq{"owner_type": ownerType, "owner_id": ownerID}).
		OrderBy("uploaded_at DESC", "id"))
}
