package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/repository"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/search"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/events"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/spreadsheet"
)

type internStore interface {
	Search(ctx context.Context, spec search.Spec, page search.Pageable) ([]models.Intern, int, error)
	FindByID(ctx context.Context, id string) (*models.Intern, error)
	FindByEmail(ctx context.Context, email string) (*models.Intern, error)
	FindByUserID(ctx context.Context, userID string) (*models.Intern, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Update(ctx context.Context, intern *models.Intern) error
	UpdateStatus(ctx context.Context, id string, status models.InternStatus) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, status *models.InternStatus) (int, error)
	CountEndingBetween(ctx context.Context, from, to time.Time, status models.InternStatus) (int, error)
}

// upcomingEndWindow is how far ahead an ACTIVE internship counts as ending soon.
const upcomingEndWindow = 30

// InternService implements intern record maintenance.
type InternService struct {
	repo      internStore
	publisher events.Publisher
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewInternService constructs an InternService.
func NewInternService(repo internStore, publisher events.Publisher, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *InternService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &InternService{repo: repo, publisher: publisher, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// List pages every intern without filters.
func (s *InternService) List(ctx context.Context, req PageRequest) ([]dto.InternSummary, *models.Pagination, error) {
	page, err := search.NewPageable(req.Page, req.Size, req.SortBy, req.Direction)
	if err != nil {
		return nil, nil, err
	}
	interns, total, err := s.repo.Search(ctx, search.Spec{}, page)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list interns")
	}
	return dto.NewInternSummaries(interns), models.NewPagination(page.Page, page.Size, total), nil
}

// Get returns one intern.
func (s *InternService) Get(ctx context.Context, id string) (*models.Intern, error) {
	intern, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intern")
	}
	return intern, nil
}

// My returns the intern record of the acting INTERN user.
func (s *InternService) My(ctx context.Context, actor *models.User) (*models.Intern, error) {
	return internForActor(ctx, s.repo, actor)
}

// Update applies a partial change. Changing the email re-checks uniqueness.
func (s *InternService) Update(ctx context.Context, id string, req dto.UpdateInternRequest) (*models.Intern, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid intern payload")
	}
	intern, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	setText := func(dst *string, src *string, required bool, field string) error {
		if src == nil {
			return nil
		}
		v := strings.TrimSpace(*src)
		if required && v == "" {
			return appErrors.Clone(appErrors.ErrValidation, field+" must not be blank")
		}
		*dst = v
		return nil
	}
	for _, f := range []struct {
		dst      *string
		src      *string
		required bool
		name     string
	}{
		{&intern.FirstName, req.FirstName, true, "first name"},
		{&intern.LastName, req.LastName, false, "last name"},
		{&intern.Phone, req.Phone, false, "phone"},
		{&intern.University, req.University, false, "university"},
		{&intern.Major, req.Major, false, "major"},
		{&intern.Supervisor, req.Supervisor, false, "supervisor"},
		{&intern.Department, req.Department, true, "department"},
	} {
		if err := setText(f.dst, f.src, f.required, f.name); err != nil {
			return nil, err
		}
	}

	if req.StartDate != nil {
		if intern.StartDate, err = parseUpdateDate(*req.StartDate, "start date"); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if intern.EndDate, err = parseUpdateDate(*req.EndDate, "end date"); err != nil {
			return nil, err
		}
	}
	if intern.EndDate.Before(intern.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not be before start date")
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != intern.Email {
			exists, err := s.repo.ExistsByEmail(ctx, email, intern.ID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
			}
			if exists {
				return nil, appErrors.Clone(appErrors.ErrDuplicateIntern, "")
			}
			intern.Email = email
		}
	}

	if err := s.repo.Update(ctx, intern); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, appErrors.Wrap(err, appErrors.ErrDuplicateIntern.Code, appErrors.ErrDuplicateIntern.Status, appErrors.ErrDuplicateIntern.Message)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update intern")
	}
	s.invalidate(ctx)
	return intern, nil
}

// UpdateStatus moves an intern to another lifecycle state and announces the change.
func (s *InternService) UpdateStatus(ctx context.Context, id string, req dto.UpdateInternStatusRequest, actor *models.User) (*models.Intern, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	status := models.InternStatus(strings.ToUpper(req.Status))

	intern, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if intern.Status == status {
		return intern, nil
	}

	previous := intern.Status
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}
	intern.Status = status
	s.invalidate(ctx)

	event := events.InternStatusChanged{InternID: id, From: string(previous), To: string(status), OccurredAt: time.Now().UTC()}
	if actor != nil {
		event.ChangedBy = actor.ID
	}
	if err := s.publisher.Publish(ctx, events.RoutingInternStatus, event); err != nil {
		s.logger.Warn("failed to publish intern status event", zap.String("intern_id", id), zap.Error(err))
	}
	return intern, nil
}

// Delete removes an intern together with its login account.
func (s *InternService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete intern")
	}
	s.invalidate(ctx)
	return nil
}

// Count returns the number of interns, optionally restricted to one status.
func (s *InternService) Count(ctx context.Context, status string) (int, error) {
	var filter *models.InternStatus
	if status = strings.ToUpper(strings.TrimSpace(status)); status != "" {
		st := models.InternStatus(status)
		if !st.Valid() {
			return 0, appErrors.Clone(appErrors.ErrInvalidQuery, "unknown status "+status)
		}
		filter = &st
	}
	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count interns")
	}
	return count, nil
}

// ActiveCount returns the number of ACTIVE interns.
func (s *InternService) ActiveCount(ctx context.Context) (int, error) {
	return s.Count(ctx, string(models.InternStatusActive))
}

// UpcomingEndCount returns the number of ACTIVE interns whose internship ends between today
// and upcomingEndWindow days from now, both inclusive.
func (s *InternService) UpcomingEndCount(ctx context.Context) (int, error) {
	today := calendarDay(s.now())
	count, err := s.repo.CountEndingBetween(ctx, today, today.AddDate(0, 0, upcomingEndWindow), models.InternStatusActive)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count ending internships")
	}
	return count, nil
}

func (s *InternService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, internSearchPattern); err != nil {
		s.logger.Warn("failed to invalidate intern search cache", zap.Error(err))
	}
}

func parseUpdateDate(value, field string) (time.Time, error) {
	t, err := spreadsheet.ParseDate(value)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid "+field)
	}
	return t, nil
}
