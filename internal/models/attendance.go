package models

import "time"

// AttendanceStatus enumerates the states of a day of attendance.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendancePartial AttendanceStatus = "PARTIAL"
)

// Attendance is one intern's check-in and check-out for a calendar day.
type Attendance struct {
	ID             string           `db:"id" json:"id"`
	InternID       string           `db:"intern_id" json:"intern_id"`
	AttendanceDate time.Time        `db:"attendance_date" json:"attendance_date"`
	CheckInTime    *time.Time       `db:"check_in_time" json:"check_in_time,omitempty"`
	CheckOutTime   *time.Time       `db:"check_out_time" json:"check_out_time,omitempty"`
	Status         AttendanceStatus `db:"status" json:"status"`
	Remarks        *string          `db:"remarks" json:"remarks,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}
