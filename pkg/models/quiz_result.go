package models

import "time"

// QuizResult records a completed test
type QuizResult struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	TestSlug    string    `json:"test_slug" db:"test_slug"`
	TestTitle   string    `json:"test_title" db:"test_title"`
	Outcome     string    `json:"outcome" db:"outcome"`
	Answered    int       `json:"answered" db:"answered"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}
