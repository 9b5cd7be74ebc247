package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/search"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
)

type notificationStore interface {
	CreateIfAbsent(ctx context.Context, n *models.Notification) (bool, error)
	ListByUser(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, id, userID string) (bool, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}

// NotificationService manages in-app notifications.
type NotificationService struct {
	repo   notificationStore
	logger *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(repo notificationStore, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger}
}

// Create stores a notification unless an identical one (recipient, intern, type, message)
// already exists. It reports whether a new row was written.
func (s *NotificationService) Create(ctx context.Context, n *models.Notification) (bool, error) {
	if n == nil || strings.TrimSpace(n.UserID) == "" {
		return false, appErrors.Clone(appErrors.ErrValidation, "notification recipient is required")
	}
	if strings.TrimSpace(n.Title) == "" || strings.TrimSpace(n.Message) == "" {
		return false, appErrors.Clone(appErrors.ErrValidation, "notification title and message are required")
	}
	if n.Type == "" {
		n.Type = models.NotificationSystem
	}

	created, err := s.repo.CreateIfAbsent(ctx, n)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notification")
	}
	if !created {
		s.logger.Debug("duplicate notification skipped", zap.String("user_id", n.UserID), zap.String("type", string(n.Type)))
	}
	return created, nil
}

// ListMine pages the acting user's notifications, newest first.
func (s *NotificationService) ListMine(ctx context.Context, actor *models.User, page, size int, unreadOnly bool) ([]models.Notification, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "acting user is required")
	}
	if size <= 0 {
		size = search.DefaultPageSize
	}
	pageable, err := search.NewPageable(page, size, "", "")
	if err != nil {
		return nil, nil, err
	}
	page, size = pageable.Page, pageable.Size

	items, total, err := s.repo.ListByUser(ctx, models.NotificationFilter{UserID: actor.ID, UnreadOnly: unreadOnly, Page: page, Size: size})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, models.NewPagination(page, size, total), nil
}

// MarkRead flags one of the acting user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string, actor *models.User) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "acting user is required")
	}
	ok, err := s.repo.MarkRead(ctx, id, actor.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notification")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return nil
}

// UnreadCount returns how many notifications the acting user has not read.
func (s *NotificationService) UnreadCount(ctx context.Context, actor *models.User) (int, error) {
	if actor == nil {
		return 0, appErrors.Clone(appErrors.ErrUnauthorized, "acting user is required")
	}
	count, err := s.repo.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	return count, nil
}
