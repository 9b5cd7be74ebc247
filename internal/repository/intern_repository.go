package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/search"
)

// ErrDuplicateEmail marks a write rejected by a unique email constraint.
var ErrDuplicateEmail = errors.New("email already exists")

const internColumns = `i.id, i.first_name, i.last_name, i.email, i.phone, i.university, i.major, i.start_date, i.end_date,
        i.supervisor, i.department, i.status, i.hr_user_id, i.user_id, i.welcome_sent_at, i.created_at, i.updated_at`

// suggestionFields may be used as a column in DISTINCT lookups.
var suggestionFields = map[search.Field]struct{}{
	search.FieldDepartment: {},
	search.FieldUniversity: {},
	search.FieldMajor:      {},
	search.FieldSupervisor: {},
}

// InternRepository manages persistence for intern records and their paired accounts.
type InternRepository struct {
	db *sqlx.DB
}

// NewInternRepository constructs an InternRepository.
func NewInternRepository(db *sqlx.DB) *InternRepository {
	return &InternRepository{db: db}
}

// Search returns one page of interns matching spec and the total match count.
func (r *InternRepository) Search(ctx context.Context, spec search.Spec, page search.Pageable) ([]models.Intern, int, error) {
	where, args := spec.ToSQL("i", 1)
	base := "FROM interns i WHERE " + where

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", internColumns, base, page.OrderBy("i"), page.Size, page.Offset())
	interns := []models.Intern{}
	if err := r.db.SelectContext(ctx, &interns, query, args...); err != nil {
		return nil, 0, fmt.Errorf("search interns: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count interns: %w", err)
	}
	return interns, total, nil
}

// FindAll returns up to limit interns matching spec, newest first.
func (r *InternRepository) FindAll(ctx context.Context, spec search.Spec, limit int) ([]models.Intern, error) {
	where, args := spec.ToSQL("i", 1)
	query := fmt.Sprintf("SELECT %s FROM interns i WHERE %s ORDER BY i.created_at DESC, i.id ASC LIMIT %d", internColumns, where, limit)
	interns := []models.Intern{}
	if err := r.db.SelectContext(ctx, &interns, query, args...); err != nil {
		return nil, fmt.Errorf("find interns: %w", err)
	}
	return interns, nil
}

// FindByID fetches an intern by ID.
func (r *InternRepository) FindByID(ctx context.Context, id string) (*models.Intern, error) {
	return r.findOne(ctx, "i.id = $1", id)
}

// FindByEmail fetches an intern by email.
func (r *InternRepository) FindByEmail(ctx context.Context, email string) (*models.Intern, error) {
	return r.findOne(ctx, "i.email = $1", email)
}

// FindByUserID fetches the intern paired with a user account.
func (r *InternRepository) FindByUserID(ctx context.Context, userID string) (*models.Intern, error) {
	return r.findOne(ctx, "i.user_id = $1", userID)
}

func (r *InternRepository) findOne(ctx context.Context, condition string, arg interface{}) (*models.Intern, error) {
	query := fmt.Sprintf("SELECT %s FROM interns i WHERE %s LIMIT 1", internColumns, condition)
	var intern models.Intern
	if err := r.db.GetContext(ctx, &intern, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find intern: %w", err)
	}
	return &intern, nil
}

// FindByIDs returns the interns with the given IDs. Unknown IDs are ignored.
func (r *InternRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Intern, error) {
	query := fmt.Sprintf("SELECT %s FROM interns i WHERE i.id = ANY($1)", internColumns)
	interns := []models.Intern{}
	if err := r.db.SelectContext(ctx, &interns, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find interns by ids: %w", err)
	}
	return interns, nil
}

// FindByStatus returns every intern in the given status ordered by name.
func (r *InternRepository) FindByStatus(ctx context.Context, status models.InternStatus) ([]models.Intern, error) {
	query := fmt.Sprintf("SELECT %s FROM interns i WHERE i.status = $1 ORDER BY i.last_name, i.first_name, i.id", internColumns)
	interns := []models.Intern{}
	if err := r.db.SelectContext(ctx, &interns, query, status); err != nil {
		return nil, fmt.Errorf("find interns by status: %w", err)
	}
	return interns, nil
}

// ExistsByEmail checks if an intern with the email exists, optionally excluding an ID.
func (r *InternRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM interns WHERE email = $1"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check intern email: %w", err)
	}
	return true, nil
}

// FindExistingEmails returns which of the given emails are already taken by an intern or a user account.
func (r *InternRepository) FindExistingEmails(ctx context.Context, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	const query = `SELECT email FROM interns WHERE email = ANY($1)
        UNION
        SELECT email FROM users WHERE email = ANY($1)`
	var existing []string
	if err := r.db.SelectContext(ctx, &existing, query, pq.Array(emails)); err != nil {
		return nil, fmt.Errorf("find existing emails: %w", err)
	}
	return existing, nil
}

// CreateWithUsers inserts all users and then all interns in one transaction.
func (r *InternRepository) CreateWithUsers(ctx context.Context, users []*models.User, interns []*models.Intern) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin intern batch tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const userQuery = `INSERT INTO users (id, email, password_hash, first_name, last_name, role, active, password_changed_at, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :first_name, :last_name, :role, :active, :password_changed_at, :created_at, :updated_at)`
	for _, user := range users {
		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		user.CreatedAt, user.UpdatedAt = now, now
		if _, err = tx.NamedExecContext(ctx, userQuery, user); err != nil {
			return wrapWriteError("insert user "+user.Email, err)
		}
	}

	const internQuery = `INSERT INTO interns (id, first_name, last_name, email, phone, university, major, start_date, end_date,
        supervisor, department, status, hr_user_id, user_id, welcome_sent_at, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :email, :phone, :university, :major, :start_date, :end_date,
        :supervisor, :department, :status, :hr_user_id, :user_id, :welcome_sent_at, :created_at, :updated_at)`
	for _, intern := range interns {
		if intern.ID == "" {
			intern.ID = uuid.NewString()
		}
		intern.CreatedAt, intern.UpdatedAt = now, now
		if _, err = tx.NamedExecContext(ctx, internQuery, intern); err != nil {
			return wrapWriteError("insert intern "+intern.Email, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit intern batch tx: %w", err)
	}
	return nil
}

// Update modifies an intern and keeps the paired account's email and name in sync.
func (r *InternRepository) Update(ctx context.Context, intern *models.Intern) (err error) {
	intern.UpdatedAt = time.Now().UTC()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin intern update tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE interns SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone,
        university = :university, major = :major, start_date = :start_date, end_date = :end_date, supervisor = :supervisor,
        department = :department, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, query, intern); err != nil {
		return wrapWriteError("update intern", err)
	}
	if intern.UserID != nil {
		const userQuery = `UPDATE users SET email = $2, first_name = $3, last_name = $4, updated_at = $5 WHERE id = $1`
		if _, err = tx.ExecContext(ctx, userQuery, *intern.UserID, intern.Email, intern.FirstName, intern.LastName, intern.UpdatedAt); err != nil {
			return wrapWriteError("update intern account", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit intern update tx: %w", err)
	}
	return nil
}

// UpdateStatus changes an intern's lifecycle status.
func (r *InternRepository) UpdateStatus(ctx context.Context, id string, status models.InternStatus) error {
	const query = `UPDATE interns SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update intern status: %w", err)
	}
	return nil
}

// MarkWelcomeSent records that the welcome email and notification were both delivered.
func (r *InternRepository) MarkWelcomeSent(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE interns SET welcome_sent_at = $2, updated_at = $2 WHERE id = $1 AND welcome_sent_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("mark welcome sent: %w", err)
	}
	return nil
}

// Delete removes an intern and its paired account.
func (r *InternRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin intern delete tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var userID sql.NullString
	if err = tx.GetContext(ctx, &userID, `DELETE FROM interns WHERE id = $1 RETURNING user_id`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("delete intern: %w", err)
	}
	if userID.Valid {
		if _, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID.String); err != nil {
			return fmt.Errorf("delete intern account: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit intern delete tx: %w", err)
	}
	return nil
}

// Count returns the number of interns, optionally restricted to a status.
func (r *InternRepository) Count(ctx context.Context, status *models.InternStatus) (int, error) {
	query := "SELECT COUNT(*) FROM interns"
	var args []interface{}
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, *status)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count interns: %w", err)
	}
	return total, nil
}

// CountEndingBetween counts interns in status whose end date falls within [from, to].
func (r *InternRepository) CountEndingBetween(ctx context.Context, from, to time.Time, status models.InternStatus) (int, error) {
	var total int
	const query = `SELECT COUNT(*) FROM interns WHERE status = $1 AND end_date BETWEEN $2 AND $3`
	if err := r.db.GetContext(ctx, &total, query, status, from, to); err != nil {
		return 0, fmt.Errorf("count interns ending: %w", err)
	}
	return total, nil
}

// DistinctValues lists the non-blank distinct values of a text field in alphabetical order.
func (r *InternRepository) DistinctValues(ctx context.Context, field search.Field) ([]string, error) {
	if _, ok := suggestionFields[field]; !ok {
		return nil, fmt.Errorf("distinct values: unsupported field %q", field)
	}
	query := fmt.Sprintf("SELECT DISTINCT %[1]s FROM interns WHERE %[1]s <> '' ORDER BY %[1]s", field)
	values := []string{}
	if err := r.db.SelectContext(ctx, &values, query); err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}
	return values, nil
}

// Suggest lists up to limit distinct values of a text field containing the query, case-insensitively.
func (r *InternRepository) Suggest(ctx context.Context, field search.Field, query string, limit int) ([]string, error) {
	if _, ok := suggestionFields[field]; !ok {
		return nil, fmt.Errorf("suggest: unsupported field %q", field)
	}
	where, args := search.NewBuilder().Field(field, query).Build().ToSQL("", 1)
	stmt := fmt.Sprintf("SELECT DISTINCT %[1]s FROM interns WHERE %[2]s ORDER BY %[1]s LIMIT %[3]d", field, where, limit)
	values := []string{}
	if err := r.db.SelectContext(ctx, &values, stmt, args...); err != nil {
		return nil, fmt.Errorf("suggest %s: %w", field, err)
	}
	return values, nil
}

// Statistics aggregates intern counts. Interns are currently active when their status is
// ACTIVE and today falls within their internship dates.
func (r *InternRepository) Statistics(ctx context.Context, today time.Time) (*models.InternStatistics, error) {
	stats := &models.InternStatistics{ByStatus: map[string]int{}}

	var byStatus []models.LabelCount
	if err := r.db.SelectContext(ctx, &byStatus, `SELECT status AS label, COUNT(*) AS count FROM interns GROUP BY status`); err != nil {
		return nil, fmt.Errorf("count interns by status: %w", err)
	}
	for _, s := range models.InternStatuses {
		stats.ByStatus[string(s)] = 0
	}
	for _, row := range byStatus {
		stats.ByStatus[row.Label] = row.Count
		stats.Total += row.Count
	}

	const activeQuery = `SELECT COUNT(*) FROM interns WHERE status = $1 AND start_date <= $2 AND end_date >= $2`
	if err := r.db.GetContext(ctx, &stats.CurrentlyActive, activeQuery, models.InternStatusActive, today); err != nil {
		return nil, fmt.Errorf("count currently active interns: %w", err)
	}

	stats.ByDepartment = []models.LabelCount{}
	if err := r.db.SelectContext(ctx, &stats.ByDepartment, `SELECT department AS label, COUNT(*) AS count FROM interns GROUP BY department ORDER BY count DESC, label`); err != nil {
		return nil, fmt.Errorf("count interns by department: %w", err)
	}
	stats.ByUniversity = []models.LabelCount{}
	if err := r.db.SelectContext(ctx, &stats.ByUniversity, `SELECT university AS label, COUNT(*) AS count FROM interns WHERE university <> '' GROUP BY university ORDER BY count DESC, label`); err != nil {
		return nil, fmt.Errorf("count interns by university: %w", err)
	}
	return stats, nil
}

func wrapWriteError(op string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrDuplicateEmail, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
