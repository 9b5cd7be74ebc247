package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
)

type attendanceStore interface {
	CheckIn(ctx context.Context, record *models.Attendance) (*models.Attendance, error)
	CheckOut(ctx context.Context, internID string, day, at time.Time) (*models.Attendance, error)
	History(ctx context.Context, internID string, from, to *time.Time) ([]models.Attendance, error)
}

type attendanceInternStore interface {
	actorInternLookup
	FindByID(ctx context.Context, id string) (*models.Intern, error)
}

// AttendanceService coordinates daily check-in and check-out.
type AttendanceService struct {
	repo      attendanceStore
	interns   attendanceInternStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceStore, interns attendanceInternStore, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, interns: interns, validator: validate, logger: logger, now: time.Now}
}

// CheckIn marks the acting intern present today. Checking in again keeps the first time.
func (s *AttendanceService) CheckIn(ctx context.Context, actor *models.User, req dto.AttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	intern, err := s.activeIntern(ctx, actor)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	record := &models.Attendance{
		InternID:       intern.ID,
		AttendanceDate: calendarDay(now),
		CheckInTime:    &now,
		Status:         models.AttendancePresent,
		Remarks:        req.Remarks,
	}
	stored, err := s.repo.CheckIn(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check in")
	}
	return stored, nil
}

// CheckOut records when the acting intern left today. It requires a check-in the same day.
func (s *AttendanceService) CheckOut(ctx context.Context, actor *models.User) (*models.Attendance, error) {
	intern, err := s.activeIntern(ctx, actor)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	stored, err := s.repo.CheckOut(ctx, intern.ID, calendarDay(now), now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no check-in recorded today")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check out")
	}
	return stored, nil
}

// MyHistory lists the acting intern's attendance between the optional bounds.
func (s *AttendanceService) MyHistory(ctx context.Context, actor *models.User, from, to *time.Time) ([]models.Attendance, error) {
	intern, err := internForActor(ctx, s.interns, actor)
	if err != nil {
		return nil, err
	}
	return s.history(ctx, intern.ID, from, to)
}

// InternHistory lists one intern's attendance for HR.
func (s *AttendanceService) InternHistory(ctx context.Context, internID string, from, to *time.Time) ([]models.Attendance, error) {
	if _, err := s.interns.FindByID(ctx, internID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intern")
	}
	return s.history(ctx, internID, from, to)
}

func (s *AttendanceService) history(ctx context.Context, internID string, from, to *time.Time) ([]models.Attendance, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	rows, err := s.repo.History(ctx, internID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return rows, nil
}

func (s *AttendanceService) activeIntern(ctx context.Context, actor *models.User) (*models.Intern, error) {
	intern, err := internForActor(ctx, s.interns, actor)
	if err != nil {
		return nil, err
	}
	if intern.Status != models.InternStatusActive {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "internship is not active")
	}
	return intern, nil
}
