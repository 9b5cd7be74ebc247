package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/search"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
)

type memoryActivities struct {
	items   []models.Activity
	err     error
	lastFor string
	page    search.Pageable
}

func (m *memoryActivities) Create(_ context.Context, a *models.Activity) error {
	if m.err != nil {
		return m.err
	}
	a.ID = "act-" + a.InternID
	m.items = append(m.items, *a)
	return nil
}

func (m *memoryActivities) List(_ context.Context, internID string, page search.Pageable) ([]models.Activity, int, error) {
	m.lastFor, m.page = internID, page
	var out []models.Activity
	for _, a := range m.items {
		if internID == "" || a.InternID == internID {
			out = append(out, a)
		}
	}
	return out, len(out), m.err
}

func newActivityFixture() (*ActivityService, *memoryActivities, *models.User) {
	store := newMemoryStore()
	userID := "u-sara"
	store.seedIntern(models.Intern{ID: "i-1", UserID: &userID, FirstName: "Sara", LastName: "Alaoui", Email: "sara@aptiv.com"})
	activities := &memoryActivities{}
	svc := NewActivityService(activities, store, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 23, 10, 0, 0, time.UTC) }
	return svc, activities, &models.User{ID: userID, Email: "sara@aptiv.com", Role: models.RoleIntern}
}

func TestActivityCreateStampsToday(t *testing.T) {
	svc, activities, sara := newActivityFixture()

	a, err := svc.Create(context.Background(), sara, dto.CreateActivityRequest{Description: "  Calibrated the radar test rig  "})
	require.NoError(t, err)
	assert.Equal(t, "i-1", a.InternID)
	assert.Equal(t, "Sara Alaoui", a.InternName)
	assert.Equal(t, date("2026-10-19"), a.ActivityDate)
	assert.Equal(t, "Calibrated the radar test rig", a.Description)
	assert.Len(t, activities.items, 1)
}

func TestActivityCreateRejections(t *testing.T) {
	svc, activities, sara := newActivityFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, sara, dto.CreateActivityRequest{Description: "   short    "})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.Create(ctx, &models.User{ID: "x", Email: "ghost@aptiv.com", Role: models.RoleIntern}, dto.CreateActivityRequest{Description: "Reviewed wiring diagrams"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	activities.err = errors.New("db down")
	_, err = svc.Create(ctx, sara, dto.CreateActivityRequest{Description: "Reviewed wiring diagrams"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInternal.Code))
}

func TestActivityListScopes(t *testing.T) {
	svc, activities, sara := newActivityFixture()
	activities.items = []models.Activity{{InternID: "i-1"}, {InternID: "i-2"}}
	ctx := context.Background()

	mine, pagination, err := svc.ListMine(ctx, sara, PageRequest{Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Equal(t, "i-1", activities.lastFor)
	assert.Equal(t, 1, pagination.TotalElements)

	all, _, err := svc.ListAll(ctx, PageRequest{Page: 2, Size: 500})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "", activities.lastFor)
	assert.Equal(t, search.MaxPageSize, activities.page.Size)

	_, _, err = svc.ListAll(ctx, PageRequest{Page: -1, Size: 10})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidPagination.Code))
}
