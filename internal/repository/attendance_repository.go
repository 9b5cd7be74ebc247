package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
)

const attendanceColumns = `id, intern_id, attendance_date, check_in_time, check_out_time, status, remarks, created_at, updated_at`

// AttendanceRepository stores one attendance row per intern and day.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// CheckIn creates the day's row or returns the existing one. A repeated check-in keeps the
// first recorded time.
func (r *AttendanceRepository) CheckIn(ctx context.Context, record *models.Attendance) (*models.Attendance, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	query := `INSERT INTO attendance (id, intern_id, attendance_date, check_in_time, status, remarks, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (intern_id, attendance_date)
DO UPDATE SET check_in_time = COALESCE(attendance.check_in_time, EXCLUDED.check_in_time), updated_at = EXCLUDED.updated_at
RETURNING ` + attendanceColumns
	var stored models.Attendance
	if err := r.db.GetContext(ctx, &stored, query, record.ID, record.InternID, record.AttendanceDate, record.CheckInTime, record.Status, record.Remarks, record.CreatedAt, record.UpdatedAt); err != nil {
		return nil, fmt.Errorf("check in: %w", err)
	}
	return &stored, nil
}

// CheckOut stamps the check-out time on the day's row. It returns sql.ErrNoRows when the
// intern has not checked in that day.
func (r *AttendanceRepository) CheckOut(ctx context.Context, internID string, day, at time.Time) (*models.Attendance, error) {
	query := `UPDATE attendance SET check_out_time = $3, updated_at = $3
WHERE intern_id = $1 AND attendance_date = $2
RETURNING ` + attendanceColumns
	var stored models.Attendance
	if err := r.db.GetContext(ctx, &stored, query, internID, day, at); err != nil {
		return nil, fmt.Errorf("check out: %w", err)
	}
	return &stored, nil
}

// History lists an intern's attendance within the optional date bounds, newest first.
func (r *AttendanceRepository) History(ctx context.Context, internID string, from, to *time.Time) ([]models.Attendance, error) {
	where := []string{"intern_id = $1"}
	args := []interface{}{internID}
	if from != nil {
		args = append(args, *from)
		where = append(where, fmt.Sprintf("attendance_date >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		where = append(where, fmt.Sprintf("attendance_date <= $%d", len(args)))
	}
	query := fmt.Sprintf("SELECT %s FROM attendance WHERE %s ORDER BY attendance_date DESC", attendanceColumns, strings.Join(where, " AND "))
	rows := []models.Attendance{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("attendance history: %w", err)
	}
	return rows, nil
}
