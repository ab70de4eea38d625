package service

import (
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/events"
)

func TestResourceLifecycle(t *testing.T) {
	env := newTestEnv(t)

	c, err := env.svc.Clients.Create(env.ctx, &domain.Client{Meta: domain.Meta{ID: uuid.Must(uuid.NewV4())}, Name: "Maple Dental"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, domain.ClientActive, c.Status, "defaults applied")
	require.Len(t, env.events.find(domain.CollectionClients, events.ActionCreate), 1)

	created := c.CreatedAt
	c.Name = "Maple Dental Group"
	c.CreatedAt = created.AddDate(-5, 0, 0)
	updated, err := env.svc.Clients.Update(env.ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "Maple Dental Group", updated.Name)
	assert.True(t, updated.CreatedAt.Equal(created), "created timestamp cannot be rewritten")

	got, err := env.svc.Clients.Get(env.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maple Dental Group", got.Name)

	require.NoError(t, env.svc.Clients.Delete(env.ctx, c.ID))
	deleted := env.events.find(domain.CollectionClients, events.ActionDelete)
	require.Len(t, deleted, 1)
	assert.Equal(t, c.ID, deleted[0].ID)
	assert.Nil(t, deleted[0].Data)

	_, err = env.svc.Clients.Get(env.ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResourceValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Clients.Create(env.ctx, &domain.Client{Email: "not-an-email"})
	assert.True(t, isInvalid(err))
	assert.Empty(t, env.events.find(domain.CollectionClients, events.ActionCreate))

	_, err = env.svc.Clients.Update(env.ctx, &domain.Client{Meta: domain.Meta{ID: uuid.Must(uuid.NewV4())}, Name: "Ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResourceReferencesMustExist(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Equipment.Create(env.ctx, &domain.Equipment{
		ClientID: uuid.Must(uuid.NewV4()),
		Type:     domain.EquipmentChair,
	})
	require.Error(t, err)
	assert.True(t, isInvalid(err))
	assert.Contains(t, err.Error(), "does not exist")
}

func TestResourceListAndAll(t *testing.T) {
	env := newTestEnv(t)
	env.client(t, "Alpha Dental")
	env.client(t, "Beta Dental")
	env.client(t, "Gamma Ortho")

	page, err := env.svc.Clients.List(env.ctx, domain.ListQuery{Search: "Dental", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	all, err := env.svc.Clients.All(env.ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
