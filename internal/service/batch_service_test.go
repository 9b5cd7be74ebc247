package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/repository"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/events"
)

type batchFixture struct {
	store         *memoryStore
	mailer        *fakeMailer
	notifications *fakeNotifications
	publisher     *fakePublisher
	cache         *stubCacheRepo
	svc           *BatchService
}

func newBatchFixture() *batchFixture {
	f := &batchFixture{
		store:         newMemoryStore(),
		mailer:        &fakeMailer{failFor: map[string]error{}},
		notifications: &fakeNotifications{failFor: map[string]error{}},
		publisher:     &fakePublisher{},
		cache:         &stubCacheRepo{},
	}
	cacheSvc := NewCacheService(f.cache, nil, 0, zap.NewNop(), true)
	f.svc = NewBatchService(f.store, f.store, f.notifications, f.mailer, f.publisher, cacheSvc, NewMetricsService(), nil, zap.NewNop(), BatchOptions{
		CredentialLength: 12,
		LoginURL:         "https://interns.aptiv.test/login",
		HashCost:         bcrypt.MinCost,
	})
	return f
}

func record(first, email string) dto.InternRecord {
	return dto.InternRecord{
		FirstName:  first,
		LastName:   "Tester",
		Email:      email,
		University: "ENSA",
		Major:      "Computer Science",
		StartDate:  "2024-07-01",
		EndDate:    "2024-09-30",
		Supervisor: "Karim",
		Department: "Engineering",
	}
}

var passwordLine = regexp.MustCompile(`Temporary password: (\S+)`)

func TestCreateBatchPersistsEveryRecordWithPairedAccounts(t *testing.T) {
	f := newBatchFixture()
	records := []dto.InternRecord{record("Amine", "amine@x.com"), record("Sara", "Sara@X.com"), record("Youssef", "youssef@x.com")}

	res, err := f.svc.CreateBatch(context.Background(), records, hrActor())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Persisted)
	assert.Equal(t, 3, res.Sent)
	assert.Zero(t, res.Failed)
	require.Len(t, f.store.interns, 3)
	require.Len(t, f.store.users, 3)

	for i, in := range f.store.interns {
		user := f.store.users[i]
		assert.Equal(t, models.RoleIntern, user.Role)
		assert.True(t, user.Active)
		require.NotNil(t, in.UserID)
		assert.Equal(t, user.ID, *in.UserID)
		require.NotNil(t, in.HRUserID)
		assert.Equal(t, "hr-1", *in.HRUserID)
		assert.Equal(t, models.InternStatusActive, in.Status)
		assert.NotNil(t, in.WelcomeSentAt)
		assert.Equal(t, user.Email, in.Email)
	}
	assert.Equal(t, "sara@x.com", f.store.interns[1].Email)

	for i, outcome := range res.Notifications {
		assert.Equal(t, i+1, outcome.Row)
		assert.Equal(t, dto.OutcomeSent, outcome.Status)
		assert.Equal(t, f.store.interns[i].ID, outcome.InternID)
	}

	require.Len(t, f.mailer.sent, 3)
	for i, m := range f.mailer.sent {
		match := passwordLine.FindStringSubmatch(m.body)
		require.Len(t, match, 2)
		assert.GreaterOrEqual(t, len(match[1]), 12)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(f.store.users[i].PasswordHash), []byte(match[1])))
		assert.Contains(t, m.body, "https://interns.aptiv.test/login")
	}

	require.Len(t, f.notifications.created, 3)
	assert.Equal(t, models.NotificationWelcome, f.notifications.created[0].Type)
	require.Len(t, f.publisher.events, 3)
	assert.Equal(t, events.RoutingInternProvisioned, f.publisher.events[0].key)
	assert.Contains(t, f.cache.invalidated, internSearchPattern)
}

func TestCreateBatchRejectsIntraBatchDuplicates(t *testing.T) {
	f := newBatchFixture()
	records := []dto.InternRecord{record("A", "a@x.com"), record("B", "A@x.com")}

	res, err := f.svc.CreateBatch(context.Background(), records, hrActor())
	require.Error(t, err)
	assert.Nil(t, res)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicateInBatch.Code, appErr.Code)
	assert.Equal(t, map[string][]string{"emails": {"a@x.com"}}, appErr.Details)

	count, _ := f.store.Count(context.Background(), nil)
	assert.Zero(t, count)
	assert.Empty(t, f.store.users)
	assert.Empty(t, f.mailer.sent)
}

func TestCreateBatchListsEachDuplicateOnceInFirstSeenOrder(t *testing.T) {
	f := newBatchFixture()
	records := []dto.InternRecord{
		record("1", "b@x.com"), record("2", "a@x.com"), record("3", "b@x.com"),
		record("4", "c@x.com"), record("5", "a@x.com"), record("6", "b@x.com"),
	}

	_, err := f.svc.CreateBatch(context.Background(), records, hrActor())
	require.Error(t, err)
	assert.Equal(t, map[string][]string{"emails": {"b@x.com", "a@x.com"}}, appErrors.FromError(err).Details)
}

func TestCreateBatchRejectsPreExistingEmails(t *testing.T) {
	f := newBatchFixture()
	f.store.seedIntern(models.Intern{Email: "taken@x.com", FirstName: "Old"})
	f.store.seedUser(models.User{Email: "hr2@x.com", Role: models.RoleHR})

	records := []dto.InternRecord{record("A", "new@x.com"), record("B", "hr2@x.com"), record("C", "taken@x.com")}
	_, err := f.svc.CreateBatch(context.Background(), records, hrActor())
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAlreadyExists.Code, appErr.Code)
	assert.Equal(t, map[string][]string{"emails": {"hr2@x.com", "taken@x.com"}}, appErr.Details)
	assert.Len(t, f.store.interns, 1)
	assert.Empty(t, f.mailer.sent)
}

func TestCreateBatchEmpty(t *testing.T) {
	f := newBatchFixture()
	_, err := f.svc.CreateBatch(context.Background(), nil, hrActor())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrEmptyBatch.Code))
}

func TestCreateBatchRequiresActor(t *testing.T) {
	f := newBatchFixture()
	_, err := f.svc.CreateBatch(context.Background(), []dto.InternRecord{record("A", "a@x.com")}, nil)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))
}

func TestCreateBatchEnforcesRecordLimit(t *testing.T) {
	f := newBatchFixture()
	f.svc.opts.MaxRecords = 1
	_, err := f.svc.CreateBatch(context.Background(), []dto.InternRecord{record("A", "a@x.com"), record("B", "b@x.com")}, hrActor())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestCreateBatchMalformedRecords(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*dto.InternRecord)
		field  string
	}{
		{"missing first name", func(r *dto.InternRecord) { r.FirstName = "  " }, "first name"},
		{"missing email", func(r *dto.InternRecord) { r.Email = "" }, "email"},
		{"invalid email", func(r *dto.InternRecord) { r.Email = "not-an-email" }, "email"},
		{"missing start date", func(r *dto.InternRecord) { r.StartDate = "" }, "start date"},
		{"unparsable end date", func(r *dto.InternRecord) { r.EndDate = "next summer" }, "end date"},
		{"end before start", func(r *dto.InternRecord) { r.EndDate = "2024-06-01" }, "end date"},
		{"missing department", func(r *dto.InternRecord) { r.Department = "" }, "department"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newBatchFixture()
			bad := record("B", "b@x.com")
			tc.mutate(&bad)

			_, err := f.svc.CreateBatch(context.Background(), []dto.InternRecord{record("A", "a@x.com"), bad}, hrActor())
			require.Error(t, err)

			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrMalformedRecord.Code, appErr.Code)
			details, ok := appErr.Details.(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, 2, details["row"])
			assert.Equal(t, tc.field, details["field"])
			assert.Empty(t, f.store.interns)
		})
	}
}

func TestCreateBatchNotificationFailureIsIsolated(t *testing.T) {
	f := newBatchFixture()
	f.mailer.failFor["b@x.com"] = errors.New("smtp: mailbox unavailable")

	records := []dto.InternRecord{record("A", "a@x.com"), record("B", "b@x.com"), record("C", "c@x.com")}
	res, err := f.svc.CreateBatch(context.Background(), records, hrActor())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Persisted)
	assert.Len(t, f.store.interns, 3)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 1, res.Failed)

	statuses := []string{res.Notifications[0].Status, res.Notifications[1].Status, res.Notifications[2].Status}
	assert.Equal(t, []string{dto.OutcomeSent, dto.OutcomeFailed, dto.OutcomeSent}, statuses)
	assert.Contains(t, res.Notifications[1].Reason, "mailbox unavailable")
	assert.Equal(t, "b@x.com", res.Notifications[1].Email)

	assert.Nil(t, f.store.interns[1].WelcomeSentAt)
	assert.NotNil(t, f.store.interns[2].WelcomeSentAt)
	// the in-app half is still attempted for the failed record
	assert.Len(t, f.notifications.created, 3)
}

func TestCreateBatchInAppNotificationFailure(t *testing.T) {
	f := newBatchFixture()
	f.svc.notifications = failingNotifications{}

	records := []dto.InternRecord{record("A", "a@x.com"), record("B", "b@x.com")}
	res, err := f.svc.CreateBatch(context.Background(), records, hrActor())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Persisted)
	assert.Equal(t, 2, res.Failed)
	assert.Contains(t, res.Notifications[0].Reason, "notification:")
	assert.Len(t, f.mailer.sent, 2)
	assert.Nil(t, f.store.interns[0].WelcomeSentAt)
}

type failingNotifications struct{}

func (failingNotifications) Create(context.Context, *models.Notification) (bool, error) {
	return false, errors.New("notifications table unavailable")
}

func TestCreateBatchPersistenceFailureRollsBackEverything(t *testing.T) {
	f := newBatchFixture()
	f.store.createErr = errors.New("connection reset")

	_, err := f.svc.CreateBatch(context.Background(), []dto.InternRecord{record("A", "a@x.com"), record("B", "b@x.com")}, hrActor())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPersistence.Code))
	assert.Empty(t, f.store.interns)
	assert.Empty(t, f.mailer.sent)
	assert.Empty(t, f.publisher.events)
}

func TestCreateBatchConcurrentRegistrationSurfacesPersistenceError(t *testing.T) {
	f := newBatchFixture()
	f.store.createErr = fmt.Errorf("insert user a@x.com: %w", repository.ErrDuplicateEmail)

	_, err := f.svc.CreateBatch(context.Background(), []dto.InternRecord{record("A", "a@x.com")}, hrActor())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPersistence.Code))
	assert.Contains(t, err.Error(), "concurrently")
}

func TestCreateBatchPublishFailureIsNotFatal(t *testing.T) {
	f := newBatchFixture()
	f.publisher.err = errors.New("broker down")

	res, err := f.svc.CreateBatch(context.Background(), []dto.InternRecord{record("A", "a@x.com")}, hrActor())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
}

func TestCreateInternRejectsExistingEmail(t *testing.T) {
	f := newBatchFixture()
	f.store.seedIntern(models.Intern{Email: "a@x.com", FirstName: "Old"})

	_, err := f.svc.CreateIntern(context.Background(), record("New", "A@x.com"), hrActor())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDuplicateIntern.Code))
	assert.Len(t, f.store.interns, 1)
	assert.Empty(t, f.mailer.sent)
}

func TestCreateInternProvisionsAndWelcomes(t *testing.T) {
	f := newBatchFixture()

	res, err := f.svc.CreateIntern(context.Background(), record("Amine", "amine@x.com"), hrActor())
	require.NoError(t, err)
	assert.Equal(t, "amine@x.com", res.Intern.Email)
	assert.Equal(t, "2024-07-01", res.Intern.StartDate)
	assert.Equal(t, dto.OutcomeSent, res.Notification.Status)
	assert.Zero(t, res.Notification.Row)
	assert.Len(t, f.store.users, 1)
	assert.Len(t, f.mailer.sent, 1)
}

func TestCreateInternMalformedHasNoRow(t *testing.T) {
	f := newBatchFixture()
	rec := record("A", "a@x.com")
	rec.Department = ""

	_, err := f.svc.CreateIntern(context.Background(), rec, hrActor())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrMalformedRecord.Code, appErr.Code)
	details := appErr.Details.(map[string]interface{})
	_, hasRow := details["row"]
	assert.False(t, hasRow)
}

func TestResendWelcomeRetriesUndeliveredIntern(t *testing.T) {
	f := newBatchFixture()
	f.mailer.failFor["a@x.com"] = errors.New("timeout")

	res, err := f.svc.CreateIntern(context.Background(), record("A", "a@x.com"), hrActor())
	require.NoError(t, err)
	require.Equal(t, dto.OutcomeFailed, res.Notification.Status)

	delete(f.mailer.failFor, "a@x.com")
	outcome, err := f.svc.ResendWelcome(context.Background(), res.Intern.ID, hrActor())
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeSent, outcome.Status)

	userID := *f.store.interns[0].UserID
	require.Contains(t, f.store.resets, userID)
	match := passwordLine.FindStringSubmatch(f.mailer.sent[0].body)
	require.Len(t, match, 2)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(f.store.resets[userID]), []byte(match[1])))

	// the notification from the first attempt is not duplicated
	assert.Len(t, f.notifications.created, 1)
	assert.NotNil(t, f.store.interns[0].WelcomeSentAt)

	_, err = f.svc.ResendWelcome(context.Background(), res.Intern.ID, hrActor())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))
}

func TestCreateBatchWithMailDisabledLeavesWelcomePending(t *testing.T) {
	store := newMemoryStore()
	notifications := &fakeNotifications{failFor: map[string]error{}}
	svc := NewBatchService(store, store, notifications, nil, nil, nil, nil, nil, zap.NewNop(), BatchOptions{HashCost: bcrypt.MinCost})

	res, err := svc.CreateBatch(context.Background(), []dto.InternRecord{record("A", "a@x.com")}, hrActor())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Persisted)
	assert.Zero(t, res.Sent)
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, dto.OutcomeFailed, res.Notifications[0].Status)
	assert.Equal(t, "email: delivery disabled", res.Notifications[0].Reason)
	assert.Nil(t, store.interns[0].WelcomeSentAt)

	outcome, err := svc.ResendWelcome(context.Background(), store.interns[0].ID, hrActor())
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeFailed, outcome.Status)
	assert.Nil(t, store.interns[0].WelcomeSentAt)
}

func TestResendWelcomeUnknownIntern(t *testing.T) {
	f := newBatchFixture()
	_, err := f.svc.ResendWelcome(context.Background(), "missing", hrActor())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestImportSpreadsheetCSV(t *testing.T) {
	f := newBatchFixture()
	csv := strings.Join([]string{
		"First Name,Last Name,Email,Phone,University,Major,Start Date,End Date,Supervisor,Department",
		"Amine,Alaoui,amine@x.com,0600000000,ENSA,CS,2024-07-01,2024-09-30,Karim,Engineering",
		",,,,,,,,,",
		"Sara,Bennani,sara@x.com,,UM6P,Data,01/07/2024,30/09/2024,Karim,Quality",
	}, "\n")

	res, err := f.svc.ImportSpreadsheet(context.Background(), strings.NewReader(csv), "interns.csv", hrActor())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Persisted)
	assert.Equal(t, 2, res.Notifications[0].Row)
	assert.Equal(t, 4, res.Notifications[1].Row)
	assert.Equal(t, "Quality", f.store.interns[1].Department)
	assert.Equal(t, date("2024-09-30"), f.store.interns[1].EndDate)
}

func TestImportSpreadsheetReportsSheetRow(t *testing.T) {
	f := newBatchFixture()
	csv := "first name,email,start date,end date,department\n" +
		"Amine,amine@x.com,2024-07-01,2024-09-30,Engineering\n" +
		"Sara,sara@x.com,,2024-09-30,Engineering\n"

	_, err := f.svc.ImportSpreadsheet(context.Background(), strings.NewReader(csv), "interns.csv", hrActor())
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrMalformedRecord.Code, appErr.Code)
	assert.Equal(t, 3, appErr.Details.(map[string]interface{})["row"])
	assert.Contains(t, appErr.Message, "row 3")
}

func TestImportSpreadsheetHeaderOnlyIsEmptyBatch(t *testing.T) {
	f := newBatchFixture()
	_, err := f.svc.ImportSpreadsheet(context.Background(), strings.NewReader("first name,email\n"), "interns.csv", hrActor())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrEmptyBatch.Code))
}

func TestImportSpreadsheetRejectsUnknownFormat(t *testing.T) {
	f := newBatchFixture()
	_, err := f.svc.ImportSpreadsheet(context.Background(), strings.NewReader("x"), "interns.pdf", hrActor())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestDuplicateEmails(t *testing.T) {
	assert.Nil(t, duplicateEmails([]string{"a", "b", "c"}))
	assert.Equal(t, []string{"a"}, duplicateEmails([]string{"a", "a", "a"}))
}
