package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fieldtech/internal/domain"
)

func TestReminderServiceDue(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, "Maple Dental")

	soon := domain.Date(time.Now().AddDate(0, 0, 5))
	later := domain.Date(time.Now().AddDate(0, 6, 0))
	due, err := env.svc.Equipment.Create(env.ctx, &domain.Equipment{
		ClientID: c.ID, Type: domain.EquipmentCompressor, Manufacturer: "Air Techniques",
		Model: "AirStar 30", SerialNumber: "AS-30-17", NextServiceDue: &soon,
	})
	require.NoError(t, err)
	_, err = env.svc.Equipment.Create(env.ctx, &domain.Equipment{
		ClientID: c.ID, Type: domain.EquipmentCompressor, Manufacturer: "Air Techniques",
		Model: "AirStar 50", SerialNumber: "AS-50-02", NextServiceDue: &later,
	})
	require.NoError(t, err)

	n, err := env.svc.Reminders.ServiceDue(env.ctx, 14*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = env.svc.Reminders.ServiceDue(env.ctx, 14*24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n, "a due date is announced once")

	page, err := env.svc.Notifications.List(env.ctx, domain.ListQuery{
		Filters: map[string]string{"type": string(domain.NotifyServiceDue)},
	}.Normalize())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Contains(t, page.Items[0].Message, "Maple Dental")
	assert.Contains(t, page.Items[0].Link, due.ID.String())
}

func TestReminderInspectionDue(t *testing.T) {
	env := newTestEnv(t)
	h, eq := startInspection(t, env)
	s := env.svc.Inspections

	fillWizard(t, env, h, answerAll(env), goodReadings)
	_, err := s.SaveStep(env.ctx, h.ID, domain.StepReview, StepInput{SignedBy: "J. Inspector"})
	require.NoError(t, err)
	done, err := s.Complete(env.ctx, h.ID)
	require.NoError(t, err)
	require.NotNil(t, done.NextInspectionDue)

	window := time.Until(*done.NextInspectionDue) + 24*time.Hour
	n, err := env.svc.Reminders.InspectionDue(env.ctx, window)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = env.svc.Reminders.InspectionDue(env.ctx, window)
	require.NoError(t, err)
	assert.Zero(t, n)

	exists, err := env.stores.Notifications.ExistsForLink(env.ctx, domain.NotifyInspectionDue,
		dueLink(domain.CollectionEquipment, eq.ID, *done.NextInspectionDue))
	require.NoError(t, err)
	assert.True(t, exists)
}
