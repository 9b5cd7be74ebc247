package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
)

type memoryAttendance struct {
	rows map[string]*models.Attendance
}

func (m *memoryAttendance) key(internID string, day time.Time) string {
	return internID + "|" + day.Format("2006-01-02")
}

func (m *memoryAttendance) CheckIn(_ context.Context, record *models.Attendance) (*models.Attendance, error) {
	k := m.key(record.InternID, record.AttendanceDate)
	if existing, ok := m.rows[k]; ok {
		if existing.CheckInTime == nil {
			existing.CheckInTime = record.CheckInTime
		}
		copied := *existing
		return &copied, nil
	}
	stored := *record
	stored.ID = "att-" + k
	m.rows[k] = &stored
	copied := stored
	return &copied, nil
}

func (m *memoryAttendance) CheckOut(_ context.Context, internID string, day, at time.Time) (*models.Attendance, error) {
	existing, ok := m.rows[m.key(internID, day)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	existing.CheckOutTime = &at
	copied := *existing
	return &copied, nil
}

func (m *memoryAttendance) History(_ context.Context, internID string, from, to *time.Time) ([]models.Attendance, error) {
	var out []models.Attendance
	for _, r := range m.rows {
		if r.InternID != internID {
			continue
		}
		if (from != nil && r.AttendanceDate.Before(*from)) || (to != nil && r.AttendanceDate.After(*to)) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func newAttendanceFixture() (*AttendanceService, *memoryStore, *models.User, *time.Time) {
	store := newMemoryStore()
	userID := "u-sara"
	store.seedIntern(models.Intern{ID: "i-1", UserID: &userID, FirstName: "Sara", Email: "sara@aptiv.com"})
	svc := NewAttendanceService(&memoryAttendance{rows: map[string]*models.Attendance{}}, store, nil, nil)
	clock := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	return svc, store, &models.User{ID: userID, Email: "sara@aptiv.com", Role: models.RoleIntern}, &clock
}

func TestAttendanceCheckInAndOut(t *testing.T) {
	svc, _, sara, clock := newAttendanceFixture()
	ctx := context.Background()
	first := *clock

	remarks := "on site"
	rec, err := svc.CheckIn(ctx, sara, dto.AttendanceRequest{Remarks: &remarks})
	require.NoError(t, err)
	assert.Equal(t, date("2026-10-19"), rec.AttendanceDate)
	assert.Equal(t, models.AttendancePresent, rec.Status)
	require.NotNil(t, rec.CheckInTime)
	assert.Equal(t, first, *rec.CheckInTime)

	*clock = clock.Add(time.Hour)
	again, err := svc.CheckIn(ctx, sara, dto.AttendanceRequest{})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
	assert.Equal(t, first, *again.CheckInTime, "the first check-in is kept")

	*clock = clock.Add(8 * time.Hour)
	out, err := svc.CheckOut(ctx, sara)
	require.NoError(t, err)
	require.NotNil(t, out.CheckOutTime)
	assert.Equal(t, *clock, *out.CheckOutTime)
}

func TestAttendanceCheckOutNeedsCheckInSameDay(t *testing.T) {
	svc, _, sara, clock := newAttendanceFixture()
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, sara, dto.AttendanceRequest{})
	require.NoError(t, err)

	*clock = clock.AddDate(0, 0, 1)
	_, err = svc.CheckOut(ctx, sara)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestAttendanceRejections(t *testing.T) {
	svc, store, sara, _ := newAttendanceFixture()
	ctx := context.Background()

	long := string(make([]byte, 501))
	_, err := svc.CheckIn(ctx, sara, dto.AttendanceRequest{Remarks: &long})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.CheckIn(ctx, &models.User{ID: "x", Email: "ghost@aptiv.com"}, dto.AttendanceRequest{})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	store.interns[0].Status = models.InternStatusCompleted
	_, err = svc.CheckIn(ctx, sara, dto.AttendanceRequest{})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))
	_, err = svc.CheckOut(ctx, sara)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))
}

func TestAttendanceHistory(t *testing.T) {
	svc, _, sara, clock := newAttendanceFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CheckIn(ctx, sara, dto.AttendanceRequest{})
		require.NoError(t, err)
		*clock = clock.AddDate(0, 0, 1)
	}

	from := date("2026-10-20")
	rows, err := svc.MyHistory(ctx, sara, &from, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = svc.InternHistory(ctx, "i-1", nil, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = svc.InternHistory(ctx, "nope", nil, nil)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	to := date("2026-10-01")
	_, err = svc.MyHistory(ctx, sara, &from, &to)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}
