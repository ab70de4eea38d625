package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fieldtech/internal/domain"
)

func TestPartStockMovements(t *testing.T) {
	env := newTestEnv(t)
	p := env.part(t, "F-10", 4, 2, "9.99")

	_, err := env.svc.Parts.AdjustStock(env.ctx, p.ID, 0)
	assert.True(t, isInvalid(err))

	got, err := env.svc.Parts.AdjustStock(env.ctx, p.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, got.QuantityOnHand)

	_, err = env.svc.Parts.AdjustStock(env.ctx, p.ID, -2)
	assert.True(t, isInvalid(err), "stock never goes negative")

	got, err = env.svc.Parts.Order(env.ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, got.QuantityOnOrder, "defaults to the reorder quantity")

	got, err = env.svc.Parts.Receive(env.ctx, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, got.QuantityOnHand)
	assert.Equal(t, 6, got.QuantityOnOrder)

	got, err = env.svc.Parts.Receive(env.ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 11, got.QuantityOnHand)
	assert.Zero(t, got.QuantityOnOrder)

	_, err = env.svc.Parts.Receive(env.ctx, p.ID, 0)
	assert.True(t, isInvalid(err), "nothing left on order")
}

func TestPartLowStockNotifiesOnceUntilRestocked(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin@example.com", domain.RoleAdmin)
	low := env.part(t, "L-1", 1, 2, "5")
	env.part(t, "OK-1", 50, 2, "5")

	parts, err := env.svc.Parts.LowStock(env.ctx)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, low.ID, parts[0].ID)

	require.NoError(t, env.svc.Parts.NotifyLowStock(env.ctx))
	require.NoError(t, env.svc.Parts.NotifyLowStock(env.ctx))
	unread, err := env.svc.Notifications.UnreadCount(env.ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread, "broadcast once per part")

	_, err = env.svc.Parts.AdjustStock(env.ctx, low.ID, 10)
	require.NoError(t, err)
	unread, err = env.svc.Notifications.UnreadCount(env.ctx, admin.ID)
	require.NoError(t, err)
	assert.Zero(t, unread, "restocking clears the alert")

	_, err = env.svc.Parts.AdjustStock(env.ctx, low.ID, -10)
	require.NoError(t, err)
	require.NoError(t, env.svc.Parts.NotifyLowStock(env.ctx))
	unread, err = env.svc.Notifications.UnreadCount(env.ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread, "alerts again after dropping below the threshold")

	require.NoError(t, env.svc.Parts.Delete(env.ctx, low.ID))
	unread, err = env.svc.Notifications.UnreadCount(env.ctx, admin.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
