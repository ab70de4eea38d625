package store

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fieldtech/internal/domain"
)

func createPart(t *testing.T, parts *PartStore, number string, onHand, threshold int) *domain.Part {
	t.Helper()
	p := &domain.Part{
		PartNumber:       number,
		Name:             "Part " + number,
		UnitPrice:        decimal.RequireFromString("10"),
		QuantityOnHand:   onHand,
		ReorderThreshold: threshold,
		ReorderQuantity:  5,
	}
	require.NoError(t, parts.Create(context.Background(), p))
	return p
}

func TestPartStoreAdjustStock(t *testing.T) {
	parts := NewPartStore(openTestDB(t))
	ctx := context.Background()
	p := createPart(t, parts, "FLT-1", 4, 1)

	got, err := parts.AdjustStock(ctx, p.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, got.QuantityOnHand)

	_, err = parts.AdjustStock(ctx, p.ID, -2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	unchanged, err := parts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unchanged.QuantityOnHand)

	_, err = parts.AdjustStock(ctx, uuid.Must(uuid.NewV4()), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPartStoreOrderAndReceive(t *testing.T) {
	parts := NewPartStore(openTestDB(t))
	ctx := context.Background()
	p := createPart(t, parts, "VLV-2", 0, 2)

	got, err := parts.AddOnOrder(ctx, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, got.QuantityOnOrder)

	got, err = parts.Receive(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got.QuantityOnHand)
	assert.Equal(t, 2, got.QuantityOnOrder)

	got, err = parts.Receive(ctx, p.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 13, got.QuantityOnHand)
	assert.Zero(t, got.QuantityOnOrder)
}

func TestPartStoreLowStock(t *testing.T) {
	parts := NewPartStore(openTestDB(t))
	ctx := context.Background()
	createPart(t, parts, "A", 10, 2)
	low := createPart(t, parts, "B", 2, 2)
	createPart(t, parts, "C", 3, 2)

	list, err := parts.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, low.ID, list[0].ID)
}

func TestPartStoreDuplicatePartNumber(t *testing.T) {
	parts := NewPartStore(openTestDB(t))
	createPart(t, parts, "DUP-1", 1, 0)

	err := parts.Create(context.Background(), &domain.Part{PartNumber: "dup-1", Name: "Again"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
