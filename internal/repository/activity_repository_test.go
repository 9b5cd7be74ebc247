package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/search"
)

func TestActivityRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO activities").
		WithArgs(sqlmock.AnyArg(), "i-1", day, "Reviewed the harness test bench", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	a := &models.Activity{InternID: "i-1", ActivityDate: day, Description: "Reviewed the harness test bench"}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryListScopedToIntern(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	page, err := search.NewPageable(1, 5, "", "")
	require.NoError(t, err)
	now := time.Now()
	mock.ExpectQuery(`FROM activities a JOIN interns i ON i.id = a.intern_id WHERE a.intern_id = \$1 ORDER BY a.activity_date DESC, a.created_at DESC, a.id LIMIT 5 OFFSET 5`).
		WithArgs("i-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "intern_id", "intern_name", "activity_date", "description", "created_at"}).
			AddRow("a-1", "i-1", "Sara Alaoui", now, "Wrote unit tests for the CAN parser", now))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM activities a JOIN interns i ON i.id = a.intern_id WHERE a.intern_id = \$1`).
		WithArgs("i-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	items, total, err := repo.List(context.Background(), "i-1", page)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Sara Alaoui", items[0].InternName)
	assert.Equal(t, 6, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	page, err := search.NewPageable(0, 20, "", "")
	require.NoError(t, err)
	mock.ExpectQuery(`FROM activities a JOIN interns i ON i.id = a.intern_id ORDER BY`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "intern_id", "intern_name", "activity_date", "description", "created_at"}))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM activities a JOIN interns i ON i.id = a.intern_id$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	items, total, err := repo.List(context.Background(), "", page)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
