package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/search"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
)

// memoryStore is an in-memory intern and user store evaluated with search.Spec.Matches.
type memoryStore struct {
	mu        sync.Mutex
	interns   []models.Intern
	users     []models.User
	createErr error
	searchErr error
	welcomed  map[string]time.Time
	resets    map[string]string
	searches  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{welcomed: map[string]time.Time{}, resets: map[string]string{}}
}

func (m *memoryStore) seedIntern(in models.Intern) models.Intern {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Status == "" {
		in.Status = models.InternStatusActive
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	m.interns = append(m.interns, in)
	return in
}

func (m *memoryStore) seedUser(u models.User) models.User {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m.users = append(m.users, u)
	return u
}

func (m *memoryStore) FindExistingEmails(_ context.Context, emails []string) ([]string, error) {
	want := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		want[e] = struct{}{}
	}
	seen := map[string]struct{}{}
	var out []string
	add := func(e string) {
		if _, ok := want[e]; !ok {
			return
		}
		if _, dup := seen[e]; dup {
			return
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	for _, in := range m.interns {
		add(in.Email)
	}
	for _, u := range m.users {
		add(u.Email)
	}
	return out, nil
}

func (m *memoryStore) CreateWithUsers(_ context.Context, users []*models.User, interns []*models.Intern) error {
	if m.createErr != nil {
		return m.createErr
	}
	now := time.Now().UTC()
	for _, u := range users {
		u.CreatedAt, u.UpdatedAt = now, now
		m.users = append(m.users, *u)
	}
	for _, in := range interns {
		in.CreatedAt, in.UpdatedAt = now, now
		m.interns = append(m.interns, *in)
	}
	return nil
}

func (m *memoryStore) index(id string) int {
	for i := range m.interns {
		if m.interns[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *memoryStore) FindByID(_ context.Context, id string) (*models.Intern, error) {
	if i := m.index(id); i >= 0 {
		in := m.interns[i]
		return &in, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memoryStore) FindByEmail(_ context.Context, email string) (*models.Intern, error) {
	for _, in := range m.interns {
		if strings.EqualFold(in.Email, email) {
			found := in
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryStore) FindByUserID(_ context.Context, userID string) (*models.Intern, error) {
	for _, in := range m.interns {
		if in.UserID != nil && *in.UserID == userID {
			found := in
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryStore) FindByIDs(_ context.Context, ids []string) ([]models.Intern, error) {
	var out []models.Intern
	for _, id := range ids {
		if i := m.index(id); i >= 0 {
			out = append(out, m.interns[i])
		}
	}
	return out, nil
}

func (m *memoryStore) FindByStatus(_ context.Context, status models.InternStatus) ([]models.Intern, error) {
	var out []models.Intern
	for _, in := range m.interns {
		if in.Status == status {
			out = append(out, in)
		}
	}
	return out, nil
}

func (m *memoryStore) ExistsByEmail(_ context.Context, email, excludeID string) (bool, error) {
	for _, in := range m.interns {
		if in.Email == email && in.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) MarkWelcomeSent(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(id); i >= 0 && m.interns[i].WelcomeSentAt == nil {
		m.interns[i].WelcomeSentAt = &at
		m.welcomed[id] = at
	}
	return nil
}

func (m *memoryStore) ResetPassword(_ context.Context, id, hash string) error {
	m.resets[id] = hash
	return nil
}

func (m *memoryStore) Search(_ context.Context, spec search.Spec, page search.Pageable) ([]models.Intern, int, error) {
	m.searches++
	if m.searchErr != nil {
		return nil, 0, m.searchErr
	}
	items, total := search.Apply(m.interns, spec, page)
	return items, total, nil
}

func (m *memoryStore) FindAll(_ context.Context, spec search.Spec, limit int) ([]models.Intern, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	p := search.Unpaged()
	p.Size = limit
	items, _ := search.Apply(m.interns, spec, p)
	return items, nil
}

func (m *memoryStore) Update(_ context.Context, intern *models.Intern) error {
	i := m.index(intern.ID)
	if i < 0 {
		return sql.ErrNoRows
	}
	m.interns[i] = *intern
	return nil
}

func (m *memoryStore) UpdateStatus(_ context.Context, id string, status models.InternStatus) error {
	i := m.index(id)
	if i < 0 {
		return sql.ErrNoRows
	}
	m.interns[i].Status = status
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	i := m.index(id)
	if i < 0 {
		return sql.ErrNoRows
	}
	m.interns = append(m.interns[:i], m.interns[i+1:]...)
	return nil
}

func (m *memoryStore) Count(_ context.Context, status *models.InternStatus) (int, error) {
	if status == nil {
		return len(m.interns), nil
	}
	n := 0
	for _, in := range m.interns {
		if in.Status == *status {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) CountEndingBetween(_ context.Context, from, to time.Time, status models.InternStatus) (int, error) {
	n := 0
	for _, in := range m.interns {
		if in.Status == status && !in.EndDate.Before(from) && !in.EndDate.After(to) {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) fieldValues(field search.Field) []string {
	set := map[string]struct{}{}
	for _, in := range m.interns {
		var v string
		switch field {
		case search.FieldDepartment:
			v = in.Department
		case search.FieldUniversity:
			v = in.University
		case search.FieldMajor:
			v = in.Major
		case search.FieldSupervisor:
			v = in.Supervisor
		}
		if v != "" {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (m *memoryStore) DistinctValues(_ context.Context, field search.Field) ([]string, error) {
	return m.fieldValues(field), nil
}

func (m *memoryStore) Suggest(_ context.Context, field search.Field, query string, limit int) ([]string, error) {
	var out []string
	for _, v := range m.fieldValues(field) {
		if strings.Contains(strings.ToLower(v), strings.ToLower(query)) {
			out = append(out, v)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memoryStore) Statistics(_ context.Context, today time.Time) (*models.InternStatistics, error) {
	stats := &models.InternStatistics{ByStatus: map[string]int{}}
	for _, in := range m.interns {
		stats.Total++
		stats.ByStatus[string(in.Status)]++
		if in.Status == models.InternStatusActive && !in.StartDate.After(today) && !in.EndDate.Before(today) {
			stats.CurrentlyActive++
		}
	}
	return stats, nil
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent    []sentMail
	failFor map[string]error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fakeNotifications struct {
	created []models.Notification
	failFor map[string]error
}

func (f *fakeNotifications) Create(_ context.Context, n *models.Notification) (bool, error) {
	if err, ok := f.failFor[n.UserID]; ok {
		return false, err
	}
	for _, existing := range f.created {
		if existing.UserID == n.UserID && existing.Type == n.Type && existing.Message == n.Message {
			return false, nil
		}
	}
	n.ID = uuid.NewString()
	f.created = append(f.created, *n)
	return true, nil
}

type publishedEvent struct {
	key     string
	payload interface{}
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, key string, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, publishedEvent{key: key, payload: payload})
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type stubCacheRepo struct {
	store       map[string][]byte
	invalidated []string
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.invalidated = append(s.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range s.store {
		if strings.HasPrefix(key, prefix) {
			delete(s.store, key)
		}
	}
	return nil
}

func hrActor() *models.User {
	return &models.User{ID: "hr-1", Email: "hr@aptiv.com", FirstName: "Nadia", Role: models.RoleHR, Active: true}
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// memoryMessages mirrors the visibility rules of the messages table.
type memoryMessages struct {
	items     []models.Message
	createErr error
}

func (m *memoryMessages) Create(_ context.Context, msg *models.Message) error {
	if m.createErr != nil {
		return m.createErr
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	m.items = append(m.items, *msg)
	return nil
}

func (m *memoryMessages) visible(msg models.Message, scope models.MessageScope, received bool) bool {
	is := func(p *string, v string) bool { return p != nil && *p == v }
	if scope.HRUserID != "" {
		inbox := msg.Type == models.MessageInternToHR && is(msg.RecipientID, scope.HRUserID)
		if received {
			return inbox
		}
		return inbox || (msg.Type == models.MessageHRToIntern && is(msg.SenderID, scope.HRUserID))
	}
	if msg.InternID != scope.InternID {
		return false
	}
	return !received || msg.Type == models.MessageHRToIntern
}

func (m *memoryMessages) List(_ context.Context, scope models.MessageScope, page search.Pageable) ([]models.Message, int, error) {
	var out []models.Message
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.visible(m.items[i], scope, false) {
			out = append(out, m.items[i])
		}
	}
	total := len(out)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Size
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (m *memoryMessages) MarkRead(_ context.Context, id string, scope models.MessageScope) (bool, error) {
	for i := range m.items {
		if m.items[i].ID == id && m.visible(m.items[i], scope, true) {
			m.items[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryMessages) CountUnread(_ context.Context, scope models.MessageScope) (int, error) {
	n := 0
	for _, msg := range m.items {
		if !msg.IsRead && m.visible(msg, scope, true) {
			n++
		}
	}
	return n, nil
}
