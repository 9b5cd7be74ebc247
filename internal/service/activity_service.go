package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/search"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
)

type activityStore interface {
	Create(ctx context.Context, a *models.Activity) error
	List(ctx context.Context, internID string, page search.Pageable) ([]models.Activity, int, error)
}

// ActivityService records the daily activity log of interns.
type ActivityService struct {
	activities activityStore
	interns    actorInternLookup
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewActivityService constructs an ActivityService.
func NewActivityService(activities activityStore, interns actorInternLookup, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{activities: activities, interns: interns, validator: validate, logger: logger, now: time.Now}
}

// Create logs an activity for the acting intern, dated today.
func (s *ActivityService) Create(ctx context.Context, actor *models.User, req dto.CreateActivityRequest) (*models.Activity, error) {
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "description must be between 10 and 2000 characters")
	}
	intern, err := internForActor(ctx, s.interns, actor)
	if err != nil {
		return nil, err
	}

	activity := &models.Activity{
		InternID:     intern.ID,
		InternName:   intern.FullName(),
		ActivityDate: calendarDay(s.now()),
		Description:  req.Description,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save activity")
	}
	return activity, nil
}

// ListMine pages the acting intern's activities.
func (s *ActivityService) ListMine(ctx context.Context, actor *models.User, req PageRequest) ([]models.Activity, *models.Pagination, error) {
	intern, err := internForActor(ctx, s.interns, actor)
	if err != nil {
		return nil, nil, err
	}
	return s.list(ctx, intern.ID, req)
}

// ListAll pages every intern's activities.
func (s *ActivityService) ListAll(ctx context.Context, req PageRequest) ([]models.Activity, *models.Pagination, error) {
	return s.list(ctx, "", req)
}

func (s *ActivityService) list(ctx context.Context, internID string, req PageRequest) ([]models.Activity, *models.Pagination, error) {
	page, err := search.NewPageable(req.Page, req.Size, "", "")
	if err != nil {
		return nil, nil, err
	}
	items, total, err := s.activities.List(ctx, internID, page)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	return items, models.NewPagination(page.Page, page.Size, total), nil
}
