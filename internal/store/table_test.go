package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fieldtech/internal/db"
	"github.com/vbonduro/fieldtech/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func createClient(t *testing.T, d *sql.DB, name string) *domain.Client {
	t.Helper()
	c := &domain.Client{Name: name, Status: domain.ClientActive, City: "Springfield"}
	require.NoError(t, NewClientStore(d).Create(context.Background(), c))
	return c
}

func createEquipment(t *testing.T, d *sql.DB, clientID uuid.UUID) *domain.Equipment {
	t.Helper()
	e := &domain.Equipment{ClientID: clientID, Type: domain.EquipmentXRay, Manufacturer: "Planmeca", Status: domain.EquipmentActive}
	require.NoError(t, NewEquipmentStore(d).Create(context.Background(), e))
	return e
}

func TestTableCreateAssignsMeta(t *testing.T) {
	d := openTestDB(t)
	clients := NewClientStore(d)
	ctx := context.Background()

	c := &domain.Client{Name: "Bright Smiles", Email: "front@bright.example", Status: domain.ClientActive}
	require.NoError(t, clients.Create(ctx, c))
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)

	got, err := clients.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bright Smiles", got.Name)
	assert.Equal(t, "front@bright.example", got.Email)
	assert.Equal(t, domain.ClientActive, got.Status)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, time.UTC, got.CreatedAt.Location())
}

func TestTableGetNotFound(t *testing.T) {
	d := openTestDB(t)
	_, err := NewClientStore(d).Get(context.Background(), uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTableUpdate(t *testing.T) {
	d := openTestDB(t)
	clients := NewClientStore(d)
	ctx := context.Background()
	c := createClient(t, d, "Old Name")

	clients.now = func() time.Time { return c.CreatedAt.Add(time.Minute) }
	c.Name = "New Name"
	require.NoError(t, clients.Update(ctx, c))

	got, err := clients.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestTableUpdateMissing(t *testing.T) {
	d := openTestDB(t)
	c := &domain.Client{Name: "Ghost"}
	c.ID = uuid.Must(uuid.NewV4())
	assert.ErrorIs(t, NewClientStore(d).Update(context.Background(), c), domain.ErrNotFound)
}

func TestTableDelete(t *testing.T) {
	d := openTestDB(t)
	clients := NewClientStore(d)
	ctx := context.Background()
	c := createClient(t, d, "Gone Soon")

	require.NoError(t, clients.Delete(ctx, c.ID))
	_, err := clients.Get(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, clients.Delete(ctx, c.ID), domain.ErrNotFound)
}

func TestTableListPaginates(t *testing.T) {
	d := openTestDB(t)
	clients := NewClientStore(d)
	ctx := context.Background()
	for i := range 7 {
		createClient(t, d, fmt.Sprintf("Clinic %02d", i))
	}

	page, err := clients.List(ctx, domain.ListQuery{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.PageCount())
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Clinic 03", page.Items[0].Name)

	last, err := clients.List(ctx, domain.ListQuery{Page: 3, PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
}

func TestTableListDefaultsAndClamps(t *testing.T) {
	d := openTestDB(t)
	createClient(t, d, "Only")

	page, err := NewClientStore(d).List(context.Background(), domain.ListQuery{PageSize: 5000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, domain.MaxPageSize, page.PageSize)
}

func TestTableListFilterSearchSort(t *testing.T) {
	d := openTestDB(t)
	clients := NewClientStore(d)
	ctx := context.Background()

	for _, c := range []*domain.Client{
		{Name: "Alpha Dental", Status: domain.ClientActive},
		{Name: "Beta Ortho", Status: domain.ClientInactive},
		{Name: "Gamma Dental 100%", Status: domain.ClientActive},
	} {
		require.NoError(t, clients.Create(ctx, c))
	}

	page, err := clients.List(ctx, domain.ListQuery{Filters: map[string]string{"status": "active"}, Sort: "name", Desc: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Gamma Dental 100%", page.Items[0].Name)

	page, err = clients.List(ctx, domain.ListQuery{Search: "DENTAL"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = clients.List(ctx, domain.ListQuery{Search: "100%"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestTableListRejectsUnknownFilterAndSort(t *testing.T) {
	d := openTestDB(t)
	clients := NewClientStore(d)
	ctx := context.Background()

	_, err := clients.List(ctx, domain.ListQuery{Filters: map[string]string{"name; DROP TABLE clients": "x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = clients.List(ctx, domain.ListQuery{Sort: "password_hash"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewEquipmentStore(d).List(ctx, domain.ListQuery{Filters: map[string]string{"clientId": "not-a-uuid"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTableListDateRange(t *testing.T) {
	d := openTestDB(t)
	repairs := NewRepairStore(d)
	ctx := context.Background()
	c := createClient(t, d, "Clinic")
	e := createEquipment(t, d, c.ID)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := range 5 {
		r := &domain.Repair{EquipmentID: e.ID, ClientID: c.ID, Problem: "noise", ReportedAt: base.AddDate(0, 0, i)}
		r.Defaults()
		require.NoError(t, repairs.Create(ctx, r))
	}

	from := base.AddDate(0, 0, 1)
	to := base.AddDate(0, 0, 3)
	page, err := repairs.List(ctx, domain.ListQuery{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	_, err = NewClientStore(d).List(ctx, domain.ListQuery{From: &from})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTableAllAndCount(t *testing.T) {
	d := openTestDB(t)
	clients := NewClientStore(d)
	ctx := context.Background()
	createClient(t, d, "A")
	createClient(t, d, "B")

	all, err := clients.All(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	n, err := clients.Count(ctx, map[string]string{"status": "inactive"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTableEmptyListIsNotNil(t *testing.T) {
	d := openTestDB(t)
	page, err := NewClientStore(d).List(context.Background(), domain.ListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestNestedJSONRoundTrip(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	c := createClient(t, d, "Clinic")
	e := createEquipment(t, d, c.ID)
	repairs := NewRepairStore(d)

	completed := time.Date(2024, 5, 2, 15, 30, 0, 0, time.UTC)
	r := &domain.Repair{
		EquipmentID: e.ID,
		ClientID:    c.ID,
		Problem:     "tube arm drifts",
		PartsUsed: []domain.PartUsage{
			{PartID: uuid.Must(uuid.NewV4()), Quantity: 2, UnitPrice: decimal.RequireFromString("12.50")},
		},
		LaborHours:  decimal.RequireFromString("1.5"),
		LaborRate:   decimal.RequireFromString("95"),
		ReportedAt:  completed.Add(-48 * time.Hour),
		CompletedAt: &completed,
	}
	r.Defaults()
	require.NoError(t, repairs.Create(ctx, r))

	got, err := repairs.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, got.PartsUsed, 1)
	assert.Equal(t, 2, got.PartsUsed[0].Quantity)
	assert.True(t, got.PartsUsed[0].UnitPrice.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, got.LaborHours.Equal(decimal.RequireFromString("1.5")))
	require.NotNil(t, got.CompletedAt)
	assert.True(t, completed.Equal(*got.CompletedAt))
	assert.False(t, got.TechnicianID.Valid)
}

func TestForeignKeyErrors(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	e := &domain.Equipment{ClientID: uuid.Must(uuid.NewV4()), Type: domain.EquipmentChair}
	err := NewEquipmentStore(d).Create(ctx, e)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c := createClient(t, d, "Billed")
	inv := &domain.Invoice{Number: "INV-00001", ClientID: c.ID, Status: domain.InvoiceDraft, IssueDate: time.Now(), DueDate: time.Now()}
	require.NoError(t, NewInvoiceStore(d).Create(ctx, inv))

	err = NewClientStore(d).Delete(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDeleteClientCascadesEquipment(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	c := createClient(t, d, "Closing")
	e := createEquipment(t, d, c.ID)

	require.NoError(t, NewClientStore(d).Delete(ctx, c.ID))
	_, err := NewEquipmentStore(d).Get(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
