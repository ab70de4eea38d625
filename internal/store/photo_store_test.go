package store

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fieldtech/internal/domain"
)

func TestPhotoStoreListByOwner(t *testing.T) {
	photos := NewPhotoStore(openTestDB(t))
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	other := uuid.Must(uuid.NewV4())

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []uuid.UUID{owner, owner, other} {
		p := &domain.Photo{
			OwnerType:  domain.OwnerEquipment,
			OwnerID:    id,
			StorageKey: "photos/" + id.String(),
			MimeType:   "image/jpeg",
			UploadedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, photos.Create(ctx, p))
	}

	list, err := photos.ListByOwner(ctx, domain.OwnerEquipment, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].UploadedAt.After(list[1].UploadedAt))

	list, err = photos.ListByOwner(ctx, domain.OwnerRepair, owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}
