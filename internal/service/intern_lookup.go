package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
)

type actorInternLookup interface {
	FindByUserID(ctx context.Context, userID string) (*models.Intern, error)
	FindByEmail(ctx context.Context, email string) (*models.Intern, error)
}

// internForActor returns the intern record of an INTERN user, matched by account and then by email.
func internForActor(ctx context.Context, lookup actorInternLookup, actor *models.User) (*models.Intern, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "acting user is required")
	}
	intern, err := lookup.FindByUserID(ctx, actor.ID)
	if errors.Is(err, sql.ErrNoRows) {
		intern, err = lookup.FindByEmail(ctx, actor.Email)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no intern profile for this account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intern profile")
	}
	return intern, nil
}

// calendarDay truncates t to midnight UTC of the same date.
func calendarDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
