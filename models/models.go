package models

import "time"

// DateLayout is the wire and storage format for calendar dates.
// Dates carry no time-of-day component.
const DateLayout = "2006-01-02"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type Habit struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// LogEntry records completion of one habit on one date. At most one entry
// exists per (user, habit, date); Completed is 0 or 1 and an absent entry
// counts as 0.
type LogEntry struct {
	UserID    string    `json:"user_id"`
	HabitID   string    `json:"habit_id"`
	Date      string    `json:"date"`
	Completed int       `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
}
