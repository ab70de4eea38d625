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

func TestNotificationStoreReadState(t *testing.T) {
	d := openTestDB(t)
	users := NewUserStore(d)
	notes := NewNotificationStore(d)
	ctx := context.Background()

	alice := &domain.User{Email: "alice@example.com", Name: "Alice", Role: domain.RoleOffice, Active: true}
	bob := &domain.User{Email: "bob@example.com", Name: "Bob", Role: domain.RoleTechnician, Active: true}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	direct := &domain.Notification{UserID: uuid.NullUUID{UUID: alice.ID, Valid: true}, Type: domain.NotifyInfo, Title: "for alice"}
	broadcast := &domain.Notification{Type: domain.NotifyLowStock, Title: "for everyone", Link: "/parts/1"}
	forBob := &domain.Notification{UserID: uuid.NullUUID{UUID: bob.ID, Valid: true}, Type: domain.NotifyInfo, Title: "for bob"}
	for _, n := range []*domain.Notification{direct, broadcast, forBob} {
		require.NoError(t, notes.Create(ctx, n))
	}

	count, err := notes.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	page, err := notes.ListForUser(ctx, alice.ID, domain.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	now := time.Now().UTC()
	require.NoError(t, notes.MarkRead(ctx, direct.ID, now))
	got, err := notes.Get(ctx, direct.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)
	require.NotNil(t, got.ReadAt)

	changed, err := notes.MarkAllRead(ctx, alice.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	count, err = notes.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	unread, err := notes.List(ctx, domain.ListQuery{Filters: map[string]string{"read": "false"}})
	require.NoError(t, err)
	assert.Equal(t, 1, unread.Total)

	assert.ErrorIs(t, notes.MarkRead(ctx, uuid.Must(uuid.NewV4()), now), domain.ErrNotFound)
}

func TestNotificationStoreLinkDedup(t *testing.T) {
	notes := NewNotificationStore(openTestDB(t))
	ctx := context.Background()

	exists, err := notes.ExistsForLink(ctx, domain.NotifyLowStock, "/parts/abc")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, notes.Create(ctx, &domain.Notification{Type: domain.NotifyLowStock, Title: "low", Link: "/parts/abc"}))
	exists, err = notes.ExistsForLink(ctx, domain.NotifyLowStock, "/parts/abc")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, notes.DeleteForLink(ctx, domain.NotifyLowStock, "/parts/abc"))
	exists, err = notes.ExistsForLink(ctx, domain.NotifyLowStock, "/parts/abc")
	require.NoError(t, err)
	assert.False(t, exists)
}
