package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/search"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/mail"
)

type messageInternStore interface {
	FindByID(ctx context.Context, id string) (*models.Intern, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Intern, error)
	FindByStatus(ctx context.Context, status models.InternStatus) ([]models.Intern, error)
	FindByUserID(ctx context.Context, userID string) (*models.Intern, error)
	FindByEmail(ctx context.Context, email string) (*models.Intern, error)
}

type messageUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type messageHistoryStore interface {
	Create(ctx context.Context, m *models.Message) error
	List(ctx context.Context, scope models.MessageScope, page search.Pageable) ([]models.Message, int, error)
	MarkRead(ctx context.Context, id string, scope models.MessageScope) (bool, error)
	CountUnread(ctx context.Context, scope models.MessageScope) (int, error)
}

// MessageService records HR and intern messages and delivers them by email and in-app
// notification.
type MessageService struct {
	interns       messageInternStore
	users         messageUserStore
	history       messageHistoryStore
	notifications notificationCreator
	mailer        mail.Sender
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	now           func() time.Time
}

// NewMessageService constructs a MessageService.
func NewMessageService(interns messageInternStore, users messageUserStore, history messageHistoryStore, notifications notificationCreator, mailer mail.Sender, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if mailer == nil {
		mailer = mail.NewLogSender(logger)
	}
	return &MessageService{
		interns:       interns,
		users:         users,
		history:       history,
		notifications: notifications,
		mailer:        mailer,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SendToIntern delivers one message. Unlike the fan-out variants a failed delivery is an error.
func (s *MessageService) SendToIntern(ctx context.Context, internID string, req dto.MessageRequest, actor *models.User) (*dto.MessageOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	intern, err := s.interns.FindByID(ctx, internID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intern")
	}

	outcome := s.deliverToIntern(ctx, intern, req, actor)
	if outcome.Status != dto.OutcomeSent {
		return &outcome, appErrors.WithDetails(appErrors.ErrDeliveryFailed, "", map[string]interface{}{"reason": outcome.Reason})
	}
	return &outcome, nil
}

// SendToMany delivers to each distinct intern id. Unknown ids are reported as failed outcomes.
func (s *MessageService) SendToMany(ctx context.Context, req dto.BatchMessageRequest, actor *models.User) (*dto.MessageBatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}

	ids := make([]string, 0, len(req.InternIDs))
	seen := make(map[string]struct{}, len(req.InternIDs))
	for _, id := range req.InternIDs {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	found, err := s.interns.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interns")
	}
	byID := make(map[string]*models.Intern, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	msg := dto.MessageRequest{Subject: req.Subject, Content: req.Content}
	outcomes := make([]dto.MessageOutcome, 0, len(ids))
	for _, id := range ids {
		intern, ok := byID[id]
		if !ok {
			outcomes = append(outcomes, dto.MessageOutcome{InternID: id, Status: dto.OutcomeFailed, Reason: "intern not found"})
			s.metrics.RecordMessageDelivery(dto.OutcomeFailed)
			continue
		}
		outcomes = append(outcomes, s.deliverToIntern(ctx, intern, msg, actor))
	}
	return dto.NewMessageBatchResult(outcomes), nil
}

// SendToAllActive broadcasts to every ACTIVE intern.
func (s *MessageService) SendToAllActive(ctx context.Context, req dto.MessageRequest, actor *models.User) (*dto.MessageBatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	interns, err := s.interns.FindByStatus(ctx, models.InternStatusActive)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active interns")
	}
	outcomes := make([]dto.MessageOutcome, 0, len(interns))
	for i := range interns {
		outcomes = append(outcomes, s.deliverToIntern(ctx, &interns[i], req, actor))
	}
	s.logger.Info("broadcast sent to active interns", zap.Int("recipients", len(interns)))
	return dto.NewMessageBatchResult(outcomes), nil
}

// SendToHR lets an intern reach the HR user who registered them. The in-app notification
// must land; the email copy is best effort.
func (s *MessageService) SendToHR(ctx context.Context, req dto.MessageRequest, actor *models.User) (*dto.MessageOutcome, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "acting user is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}

	intern, err := internForActor(ctx, s.interns, actor)
	if err != nil {
		return nil, err
	}
	if intern.HRUserID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no HR contact is assigned to this intern")
	}

	hr, err := s.users.FindByID(ctx, *intern.HRUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "HR contact not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load HR contact")
	}
	if hr.Role != models.RoleHR {
		return nil, appErrors.Clone(appErrors.ErrValidation, "recipient must be an HR user")
	}

	sentAt := s.now()
	senderID, hrID := actor.ID, hr.ID
	if err := s.history.Create(ctx, &models.Message{
		Subject:     req.Subject,
		Content:     req.Content,
		Type:        models.MessageInternToHR,
		InternID:    intern.ID,
		SenderID:    &senderID,
		RecipientID: &hrID,
		SentAt:      sentAt,
	}); err != nil {
		s.metrics.RecordMessageDelivery(dto.OutcomeFailed)
		return nil, appErrors.Wrap(err, appErrors.ErrDeliveryFailed.Code, appErrors.ErrDeliveryFailed.Status, appErrors.ErrDeliveryFailed.Message)
	}

	internID := intern.ID
	if _, err := s.notifications.Create(ctx, &models.Notification{
		Title:    req.Subject,
		Message:  req.Content,
		Type:     models.NotificationMessageFromIntern,
		UserID:   hr.ID,
		InternID: &internID,
	}); err != nil {
		s.metrics.RecordMessageDelivery(dto.OutcomeFailed)
		return nil, appErrors.Wrap(err, appErrors.ErrDeliveryFailed.Code, appErrors.ErrDeliveryFailed.Status, appErrors.ErrDeliveryFailed.Message)
	}

	body := fmt.Sprintf("%s (%s) sent you a message:\n\n%s", intern.FullName(), intern.Email, req.Content)
	if err := s.mailer.Send(ctx, hr.Email, "[Intern Message] "+req.Subject, body); err != nil {
		s.logger.Warn("failed to email HR copy", zap.String("intern_id", intern.ID), zap.String("hr_user_id", hr.ID), zap.Error(err))
	}

	s.metrics.RecordMessageDelivery(dto.OutcomeSent)
	return &dto.MessageOutcome{
		InternID:   intern.ID,
		InternName: intern.FullName(),
		Email:      hr.Email,
		Status:     dto.OutcomeSent,
		SentAt:     &sentAt,
	}, nil
}

// deliverToIntern attempts both channels and reports the result without returning an error.
func (s *MessageService) deliverToIntern(ctx context.Context, intern *models.Intern, req dto.MessageRequest, sender *models.User) dto.MessageOutcome {
	outcome := dto.MessageOutcome{
		InternID:   intern.ID,
		InternName: intern.FullName(),
		Email:      intern.Email,
		Status:     dto.OutcomeSent,
	}

	record := &models.Message{
		Subject:     req.Subject,
		Content:     req.Content,
		Type:        models.MessageHRToIntern,
		InternID:    intern.ID,
		RecipientID: intern.UserID,
		SentAt:      s.now(),
	}
	if sender != nil {
		senderID := sender.ID
		record.SenderID = &senderID
	}
	if err := s.history.Create(ctx, record); err != nil {
		outcome.Status = dto.OutcomeFailed
		outcome.Reason = "history: " + err.Error()
		s.logger.Warn("message not recorded, delivery skipped", zap.String("intern_id", intern.ID), zap.Error(err))
		s.metrics.RecordMessageDelivery(outcome.Status)
		return outcome
	}

	var reasons []string
	if err := s.mailer.Send(ctx, intern.Email, "[Internship Message] "+req.Subject, hrMessageBody(intern, req.Content, sender)); err != nil {
		reasons = append(reasons, "email: "+err.Error())
	}
	if intern.UserID == nil {
		reasons = append(reasons, "notification: intern has no login account")
	} else {
		internID := intern.ID
		if _, err := s.notifications.Create(ctx, &models.Notification{
			Title:    req.Subject,
			Message:  req.Content,
			Type:     models.NotificationMessageFromHR,
			UserID:   *intern.UserID,
			InternID: &internID,
		}); err != nil {
			reasons = append(reasons, "notification: "+err.Error())
		}
	}

	if len(reasons) > 0 {
		outcome.Status = dto.OutcomeFailed
		outcome.Reason = strings.Join(reasons, "; ")
		s.logger.Warn("message delivery failed", zap.String("intern_id", intern.ID), zap.String("reason", outcome.Reason))
	} else {
		outcome.SentAt = &record.SentAt
	}
	s.metrics.RecordMessageDelivery(outcome.Status)
	return outcome
}

// ListMine pages the acting user's message history. HR users see the messages they sent and
// the ones interns sent them; interns see their whole conversation with HR.
func (s *MessageService) ListMine(ctx context.Context, actor *models.User, req PageRequest) ([]models.Message, *models.Pagination, error) {
	scope, err := s.scopeFor(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	page, err := search.NewPageable(req.Page, req.Size, "", "")
	if err != nil {
		return nil, nil, err
	}
	items, total, err := s.history.List(ctx, scope, page)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return items, models.NewPagination(page.Page, page.Size, total), nil
}

// MarkRead flags a message the acting user received as read.
func (s *MessageService) MarkRead(ctx context.Context, actor *models.User, id string) error {
	scope, err := s.scopeFor(ctx, actor)
	if err != nil {
		return err
	}
	ok, err := s.history.MarkRead(ctx, id, scope)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark message read")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "message not found")
	}
	return nil
}

// UnreadCount counts unread messages the acting user received.
func (s *MessageService) UnreadCount(ctx context.Context, actor *models.User) (int, error) {
	scope, err := s.scopeFor(ctx, actor)
	if err != nil {
		return 0, err
	}
	count, err := s.history.CountUnread(ctx, scope)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread messages")
	}
	return count, nil
}

func (s *MessageService) scopeFor(ctx context.Context, actor *models.User) (models.MessageScope, error) {
	if actor == nil {
		return models.MessageScope{}, appErrors.Clone(appErrors.ErrUnauthorized, "acting user is required")
	}
	if actor.Role == models.RoleHR {
		return models.MessageScope{HRUserID: actor.ID}, nil
	}
	intern, err := internForActor(ctx, s.interns, actor)
	if err != nil {
		return models.MessageScope{}, err
	}
	return models.MessageScope{InternID: intern.ID}, nil
}

func hrMessageBody(intern *models.Intern, content string, sender *models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n%s\n\n", intern.FirstName, content)
	if sender != nil && sender.FirstName != "" {
		fmt.Fprintf(&b, "%s %s\n", sender.FirstName, sender.LastName)
	}
	b.WriteString("The HR team")
	return b.String()
}
