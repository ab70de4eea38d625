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

func TestScheduleStoreOverlapping(t *testing.T) {
	d := openTestDB(t)
	schedules := NewScheduleStore(d)
	ctx := context.Background()

	tech := &domain.User{Email: "tech@example.com", Name: "Tech", Role: domain.RoleTechnician, Active: true}
	require.NoError(t, NewUserStore(d).Create(ctx, tech))
	techID := uuid.NullUUID{UUID: tech.ID, Valid: true}

	nine := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	booked := &domain.Schedule{Title: "PM visit", TechnicianID: techID, StartAt: nine, EndAt: nine.Add(2 * time.Hour)}
	booked.Defaults()
	require.NoError(t, schedules.Create(ctx, booked))

	cancelled := &domain.Schedule{Title: "Cancelled", TechnicianID: techID, Status: domain.ScheduleCancelled, StartAt: nine.Add(3 * time.Hour), EndAt: nine.Add(4 * time.Hour)}
	cancelled.Defaults()
	require.NoError(t, schedules.Create(ctx, cancelled))

	hits, err := schedules.Overlapping(ctx, tech.ID, nine.Add(time.Hour), nine.Add(3*time.Hour+30*time.Minute), uuid.Nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, booked.ID, hits[0].ID)

	hits, err = schedules.Overlapping(ctx, tech.ID, nine.Add(2*time.Hour), nine.Add(3*time.Hour), uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, hits, "back-to-back slots do not overlap")

	hits, err = schedules.Overlapping(ctx, tech.ID, nine, nine.Add(time.Hour), booked.ID)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestScheduleStoreRange(t *testing.T) {
	schedules := NewScheduleStore(openTestDB(t))
	ctx := context.Background()

	day := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	for i := range 3 {
		s := &domain.Schedule{Title: "visit", StartAt: day.AddDate(0, 0, i), EndAt: day.AddDate(0, 0, i).Add(time.Hour)}
		s.Defaults()
		require.NoError(t, schedules.Create(ctx, s))
	}

	list, err := schedules.Range(ctx, day, day.AddDate(0, 0, 2), uuid.NullUUID{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].StartAt.Before(list[1].StartAt))
}
