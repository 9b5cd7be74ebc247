package models

import "time"

// Activity is a dated work log entry written by an intern.
type Activity struct {
	ID           string    `db:"id" json:"id"`
	InternID     string    `db:"intern_id" json:"intern_id"`
	InternName   string    `db:"intern_name" json:"intern_name"`
	ActivityDate time.Time `db:"activity_date" json:"activity_date"`
	Description  string    `db:"description" json:"description"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
