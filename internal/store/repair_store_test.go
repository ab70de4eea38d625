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

func TestRepairStoreSetStatus(t *testing.T) {
	d := openTestDB(t)
	repairs := NewRepairStore(d)
	ctx := context.Background()
	c := createClient(t, d, "Clinic")
	e := createEquipment(t, d, c.ID)

	r := &domain.Repair{
		EquipmentID: e.ID,
		ClientID:    c.ID,
		Status:      domain.RepairInProgress,
		Priority:    domain.PriorityNormal,
		Problem:     "Tube arm drifts",
		ReportedAt:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repairs.Create(ctx, r))

	require.NoError(t, repairs.SetStatus(ctx, r.ID, domain.RepairInProgress, domain.RepairCompleted))
	got, err := repairs.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RepairCompleted, got.Status)

	err = repairs.SetStatus(ctx, r.ID, domain.RepairInProgress, domain.RepairCompleted)
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = repairs.SetStatus(ctx, uuid.Must(uuid.NewV4()), domain.RepairInProgress, domain.RepairCompleted)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
