package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/repository"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/events"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/mail"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/spreadsheet"
)

// Spreadsheet column headers, compared after normalisation.
const (
	colFirstName  = "first name"
	colLastName   = "last name"
	colEmail      = "email"
	colPhone      = "phone"
	colUniversity = "university"
	colMajor      = "major"
	colStartDate  = "start date"
	colEndDate    = "end date"
	colSupervisor = "supervisor"
	colDepartment = "department"
)

type provisioningStore interface {
	FindExistingEmails(ctx context.Context, emails []string) ([]string, error)
	CreateWithUsers(ctx context.Context, users []*models.User, interns []*models.Intern) error
	FindByID(ctx context.Context, id string) (*models.Intern, error)
	MarkWelcomeSent(ctx context.Context, id string, at time.Time) error
}

type credentialResetter interface {
	ResetPassword(ctx context.Context, id, passwordHash string) error
}

type notificationCreator interface {
	Create(ctx context.Context, n *models.Notification) (bool, error)
}

// BatchOptions tunes provisioning.
type BatchOptions struct {
	MaxRecords       int
	CredentialLength int
	LoginURL         string
	HashCost         int
}

// BatchService provisions interns with paired accounts and dispatches their welcome notifications.
type BatchService struct {
	interns       provisioningStore
	users         credentialResetter
	notifications notificationCreator
	mailer        mail.Sender
	publisher     events.Publisher
	cache         *CacheService
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	opts          BatchOptions
	now           func() time.Time
	credential    func(length int) (string, error)
}

// NewBatchService wires the provisioning pipeline.
func NewBatchService(
	interns provisioningStore,
	users credentialResetter,
	notifications notificationCreator,
	mailer mail.Sender,
	publisher events.Publisher,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	opts BatchOptions,
) *BatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if mailer == nil {
		mailer = mail.NewLogSender(logger)
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	return &BatchService{
		interns:       interns,
		users:         users,
		notifications: notifications,
		mailer:        mailer,
		publisher:     publisher,
		cache:         cache,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		opts:          opts,
		now:           func() time.Time { return time.Now().UTC() },
		credential:    GenerateCredential,
	}
}

// provisioned pairs a stored intern with the plain credential it was issued and its source row.
type provisioned struct {
	row        int
	intern     *models.Intern
	credential string
}

// ImportSpreadsheet parses an uploaded .xlsx or .csv file and ingests its rows as one batch.
func (s *BatchService) ImportSpreadsheet(ctx context.Context, r io.Reader, filename string, actor *models.User) (*dto.BatchResult, error) {
	sheet, err := spreadsheet.Parse(r, filename)
	if err != nil {
		if errors.Is(err, spreadsheet.ErrUnsupportedFormat) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "only .xlsx and .csv files are supported")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read spreadsheet")
	}

	records := make([]dto.InternRecord, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		records = append(records, recordFromRow(row))
	}
	return s.CreateBatch(ctx, records, actor)
}

// CreateBatch validates every record, persists all of them atomically, then notifies each intern.
// Validation failures reject the whole batch before anything is written.
func (s *BatchService) CreateBatch(ctx context.Context, records []dto.InternRecord, actor *models.User) (*dto.BatchResult, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "acting user is required")
	}
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptyBatch, "")
	}
	if s.opts.MaxRecords > 0 && len(records) > s.opts.MaxRecords {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("batch exceeds the limit of %d records", s.opts.MaxRecords))
	}

	candidates := make([]*models.Intern, 0, len(records))
	rows := make([]int, 0, len(records))
	for i, rec := range records {
		if rec.Row == 0 {
			rec.Row = i + 1
		}
		intern, err := s.parseRecord(rec)
		if err != nil {
			s.metrics.RecordBatchRecords("rejected", len(records))
			return nil, err
		}
		candidates = append(candidates, intern)
		rows = append(rows, rec.Row)
	}

	emails := make([]string, 0, len(candidates))
	for _, c := range candidates {
		emails = append(emails, c.Email)
	}
	if dupes := duplicateEmails(emails); len(dupes) > 0 {
		s.metrics.RecordBatchRecords("rejected", len(records))
		return nil, appErrors.WithDetails(appErrors.ErrDuplicateInBatch,
			"duplicate emails in batch: "+strings.Join(dupes, ", "),
			map[string][]string{"emails": dupes})
	}

	existing, err := s.interns.FindExistingEmails(ctx, emails)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing interns")
	}
	if len(existing) > 0 {
		taken := inBatchOrder(emails, existing)
		s.metrics.RecordBatchRecords("rejected", len(records))
		return nil, appErrors.WithDetails(appErrors.ErrAlreadyExists,
			"interns already exist: "+strings.Join(taken, ", "),
			map[string][]string{"emails": taken})
	}

	batch, err := s.provision(ctx, candidates, rows, actor)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status,
				"an email in the batch was registered concurrently; no records were saved")
		}
		return nil, err
	}
	s.metrics.RecordBatchRecords("persisted", len(batch))

	result := &dto.BatchResult{Persisted: len(batch), Notifications: make([]dto.NotificationOutcome, 0, len(batch))}
	for _, p := range batch {
		outcome := s.sendWelcome(ctx, p)
		if outcome.Status == dto.OutcomeSent {
			result.Sent++
		} else {
			result.Failed++
		}
		result.Notifications = append(result.Notifications, outcome)
		s.publishProvisioned(ctx, p.intern)
	}

	s.logger.Info("intern batch ingested",
		zap.String("hr_user_id", actor.ID),
		zap.Int("persisted", result.Persisted),
		zap.Int("notifications_failed", result.Failed))
	return result, nil
}

// CreateIntern provisions one intern. Only the store is checked for duplicates.
func (s *BatchService) CreateIntern(ctx context.Context, rec dto.InternRecord, actor *models.User) (*dto.CreateInternResult, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "acting user is required")
	}
	rec.Row = 0
	intern, err := s.parseRecord(rec)
	if err != nil {
		return nil, err
	}

	existing, err := s.interns.FindExistingEmails(ctx, []string{intern.Email})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing interns")
	}
	if len(existing) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrDuplicateIntern, "", map[string]string{"email": intern.Email})
	}

	batch, err := s.provision(ctx, []*models.Intern{intern}, []int{0}, actor)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, appErrors.Wrap(err, appErrors.ErrDuplicateIntern.Code, appErrors.ErrDuplicateIntern.Status, appErrors.ErrDuplicateIntern.Message)
		}
		return nil, err
	}

	p := batch[0]
	outcome := s.sendWelcome(ctx, p)
	s.publishProvisioned(ctx, p.intern)

	return &dto.CreateInternResult{Intern: dto.NewInternSummary(*p.intern), Notification: outcome}, nil
}

// ResendWelcome issues a fresh credential and retries the welcome pair for an intern that never
// received it. Interns already welcomed are rejected so retries cannot duplicate the pair.
func (s *BatchService) ResendWelcome(ctx context.Context, internID string, actor *models.User) (*dto.NotificationOutcome, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "acting user is required")
	}
	intern, err := s.interns.FindByID(ctx, internID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intern")
	}
	if intern.WelcomeSentAt != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "welcome notification already delivered")
	}
	if intern.UserID == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "intern has no login account")
	}

	credential, hash, err := s.issueCredential()
	if err != nil {
		return nil, err
	}
	if err := s.users.ResetPassword(ctx, *intern.UserID, hash); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset credential")
	}

	outcome := s.sendWelcome(ctx, provisioned{intern: intern, credential: credential})
	return &outcome, nil
}

// provision issues credentials, builds the paired accounts and stores everything in one transaction.
func (s *BatchService) provision(ctx context.Context, candidates []*models.Intern, rows []int, actor *models.User) ([]provisioned, error) {
	users := make([]*models.User, 0, len(candidates))
	batch := make([]provisioned, 0, len(candidates))
	hrID := actor.ID

	for i, intern := range candidates {
		credential, hash, err := s.issueCredential()
		if err != nil {
			return nil, err
		}
		user := &models.User{
			ID:           uuid.NewString(),
			Email:        intern.Email,
			PasswordHash: hash,
			FirstName:    intern.FirstName,
			LastName:     intern.LastName,
			Role:         models.RoleIntern,
			Active:       true,
		}
		userID := user.ID
		intern.ID = uuid.NewString()
		intern.UserID = &userID
		intern.HRUserID = &hrID
		intern.Status = models.InternStatusActive

		users = append(users, user)
		batch = append(batch, provisioned{row: rows[i], intern: intern, credential: credential})
	}

	if err := s.interns.CreateWithUsers(ctx, users, candidates); err != nil {
		s.logger.Error("intern batch rolled back", zap.Int("records", len(candidates)), zap.Error(err))
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist interns; no records were saved")
	}
	if err := s.cache.Invalidate(ctx, internSearchPattern); err != nil {
		s.logger.Warn("failed to invalidate intern search cache", zap.Error(err))
	}
	return batch, nil
}

func (s *BatchService) issueCredential() (string, string, error) {
	credential, err := s.credential(s.opts.CredentialLength)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate credential")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), s.opts.HashCost)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash credential")
	}
	return credential, string(hash), nil
}

// sendWelcome attempts both the email and the in-app notification and never returns an error.
// The intern is marked as welcomed only when both succeed.
func (s *BatchService) sendWelcome(ctx context.Context, p provisioned) dto.NotificationOutcome {
	intern := p.intern
	outcome := dto.NotificationOutcome{Row: p.row, InternID: intern.ID, Email: intern.Email, Status: dto.OutcomeSent}

	var reasons []string
	if err := s.mailer.Send(ctx, intern.Email, "Welcome to the internship program", s.welcomeEmail(intern, p.credential)); err != nil {
		reasons = append(reasons, "email: "+err.Error())
	}

	if intern.UserID == nil {
		reasons = append(reasons, "notification: intern has no login account")
	} else {
		internID := intern.ID
		_, err := s.notifications.Create(ctx, &models.Notification{
			Title:    "Welcome to the internship program",
			Message:  welcomeMessage(intern),
			Type:     models.NotificationWelcome,
			UserID:   *intern.UserID,
			InternID: &internID,
		})
		if err != nil {
			reasons = append(reasons, "notification: "+err.Error())
		}
	}

	if len(reasons) > 0 {
		outcome.Status = dto.OutcomeFailed
		outcome.Reason = strings.Join(reasons, "; ")
		s.logger.Warn("welcome notification failed",
			zap.String("intern_id", intern.ID),
			zap.String("email", intern.Email),
			zap.Int("row", p.row),
			zap.String("reason", outcome.Reason))
	} else if err := s.interns.MarkWelcomeSent(ctx, intern.ID, s.now()); err != nil {
		s.logger.Warn("failed to mark welcome as sent", zap.String("intern_id", intern.ID), zap.Error(err))
	}

	s.metrics.RecordWelcomeNotification(outcome.Status)
	return outcome
}

func (s *BatchService) publishProvisioned(ctx context.Context, intern *models.Intern) {
	event := events.InternProvisioned{
		InternID:   intern.ID,
		Email:      intern.Email,
		Department: intern.Department,
		StartDate:  intern.StartDate,
		EndDate:    intern.EndDate,
		OccurredAt: s.now(),
	}
	if intern.UserID != nil {
		event.UserID = *intern.UserID
	}
	if intern.HRUserID != nil {
		event.HRUserID = *intern.HRUserID
	}
	if err := s.publisher.Publish(ctx, events.RoutingInternProvisioned, event); err != nil {
		s.logger.Warn("failed to publish intern provisioned event", zap.String("intern_id", intern.ID), zap.Error(err))
	}
}

func (s *BatchService) welcomeEmail(intern *models.Intern, credential string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", intern.FirstName)
	b.WriteString("Your internship account has been created.\n\n")
	fmt.Fprintf(&b, "Department: %s\n", intern.Department)
	if intern.Supervisor != "" {
		fmt.Fprintf(&b, "Supervisor: %s\n", intern.Supervisor)
	}
	fmt.Fprintf(&b, "Period: %s to %s\n\n", intern.StartDate.Format(dto.DateLayout), intern.EndDate.Format(dto.DateLayout))
	fmt.Fprintf(&b, "Login email: %s\n", intern.Email)
	fmt.Fprintf(&b, "Temporary password: %s\n", credential)
	if s.opts.LoginURL != "" {
		fmt.Fprintf(&b, "Sign in at %s and change your password.\n", s.opts.LoginURL)
	} else {
		b.WriteString("Please change your password after your first sign in.\n")
	}
	b.WriteString("\nThe HR team")
	return b.String()
}

// welcomeMessage is stable per intern so a retried notification de-duplicates.
func welcomeMessage(intern *models.Intern) string {
	return fmt.Sprintf("Welcome %s! Your internship in %s runs from %s to %s.",
		intern.FirstName, intern.Department,
		intern.StartDate.Format(dto.DateLayout), intern.EndDate.Format(dto.DateLayout))
}

// parseRecord trims and validates a candidate, reporting the first offending field.
func (s *BatchService) parseRecord(rec dto.InternRecord) (*models.Intern, error) {
	intern := &models.Intern{
		FirstName:  strings.TrimSpace(rec.FirstName),
		LastName:   strings.TrimSpace(rec.LastName),
		Email:      strings.ToLower(strings.TrimSpace(rec.Email)),
		Phone:      strings.TrimSpace(rec.Phone),
		University: strings.TrimSpace(rec.University),
		Major:      strings.TrimSpace(rec.Major),
		Supervisor: strings.TrimSpace(rec.Supervisor),
		Department: strings.TrimSpace(rec.Department),
	}

	if intern.FirstName == "" {
		return nil, malformed(rec.Row, colFirstName, "is required")
	}
	if intern.Email == "" {
		return nil, malformed(rec.Row, colEmail, "is required")
	}
	if err := s.validator.Var(intern.Email, "email"); err != nil {
		return nil, malformed(rec.Row, colEmail, "is not a valid email address")
	}

	start, err := requiredDate(rec.StartDate)
	if err != nil {
		return nil, malformed(rec.Row, colStartDate, err.Error())
	}
	end, err := requiredDate(rec.EndDate)
	if err != nil {
		return nil, malformed(rec.Row, colEndDate, err.Error())
	}
	if end.Before(start) {
		return nil, malformed(rec.Row, colEndDate, "is before the start date")
	}
	intern.StartDate, intern.EndDate = start, end

	if intern.Department == "" {
		return nil, malformed(rec.Row, colDepartment, "is required")
	}
	return intern, nil
}

func requiredDate(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, errors.New("is required")
	}
	t, err := spreadsheet.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("has an unrecognised date %q", strings.TrimSpace(value))
	}
	return t, nil
}

func malformed(row int, field, reason string) *appErrors.Error {
	details := map[string]interface{}{"field": field, "reason": reason}
	message := fmt.Sprintf("%s %s", field, reason)
	if row > 0 {
		details["row"] = row
		message = fmt.Sprintf("row %d: %s", row, message)
	}
	return appErrors.WithDetails(appErrors.ErrMalformedRecord, message, details)
}

func recordFromRow(row spreadsheet.Row) dto.InternRecord {
	return dto.InternRecord{
		Row:        row.Number,
		FirstName:  row.Get(colFirstName),
		LastName:   row.Get(colLastName),
		Email:      row.Get(colEmail),
		Phone:      row.Get(colPhone),
		University: row.Get(colUniversity),
		Major:      row.Get(colMajor),
		StartDate:  row.Get(colStartDate),
		EndDate:    row.Get(colEndDate),
		Supervisor: row.Get(colSupervisor),
		Department: row.Get(colDepartment),
	}
}

// duplicateEmails lists every email occurring more than once, once each, in first-seen order.
// Emails are expected to be lower-cased already.
func duplicateEmails(emails []string) []string {
	counts := make(map[string]int, len(emails))
	for _, e := range emails {
		counts[e]++
	}
	var dupes []string
	for _, e := range emails {
		if counts[e] > 1 {
			dupes = append(dupes, e)
			counts[e] = 0
		}
	}
	return dupes
}

func inBatchOrder(emails, subset []string) []string {
	taken := make(map[string]struct{}, len(subset))
	for _, e := range subset {
		taken[strings.ToLower(e)] = struct{}{}
	}
	ordered := make([]string, 0, len(subset))
	for _, e := range emails {
		if _, ok := taken[e]; ok {
			ordered = append(ordered, e)
			delete(taken, e)
		}
	}
	return ordered
}
