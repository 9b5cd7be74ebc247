package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/search"
)

const activityColumns = `a.id, a.intern_id, TRIM(i.first_name || ' ' || i.last_name) AS intern_name,
        a.activity_date, a.description, a.created_at`

// ActivityRepository persists intern activity logs.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create inserts an activity.
func (r *ActivityRepository) Create(ctx context.Context, a *models.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO activities (id, intern_id, activity_date, description, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, a.ID, a.InternID, a.ActivityDate, a.Description, a.CreatedAt); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// List pages activities, newest first. A blank internID lists every intern's activities.
func (r *ActivityRepository) List(ctx context.Context, internID string, page search.Pageable) ([]models.Activity, int, error) {
	base := "FROM activities a JOIN interns i ON i.id = a.intern_id"
	var args []interface{}
	if internID != "" {
		base += " WHERE a.intern_id = $1"
		args = append(args, internID)
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY a.activity_date DESC, a.created_at DESC, a.id LIMIT %d OFFSET %d", activityColumns, base, page.Size, page.Offset())
	items := []models.Activity{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}
	return items, total, nil
}
