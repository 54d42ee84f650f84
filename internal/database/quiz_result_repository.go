package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/quizbot/pkg/models"
)

// QuizResultRepository handles database operations for completed tests
type QuizResultRepository struct {
	db *sqlx.DB
}

// NewQuizResultRepository creates a new repository instance
func NewQuizResultRepository(db *sqlx.DB) *QuizResultRepository {
	return &QuizResultRepository{db: db}
}

// Create inserts a result and fills in its ID
func (r *QuizResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now()
	}
	result.CompletedAt = result.CompletedAt.UTC()

	query := r.db.Rebind(`
		INSERT INTO quiz_results (user_id, test_slug, test_title, outcome, answered, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		result.UserID,
		result.TestSlug,
		result.TestTitle,
		result.Outcome,
		result.Answered,
		result.CompletedAt,
	).Scan(&result.ID)
	if err != nil {
		return fmt.Errorf("failed to create quiz result: %w", err)
	}
	return nil
}

// CountByUser returns how many tests a user has completed
func (r *QuizResultRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind("SELECT COUNT(*) FROM quiz_results WHERE user_id = ?"), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count quiz results: %w", err)
	}
	return count, nil
}

// RecentByUser returns the latest results of a user, newest first
func (r *QuizResultRepository) RecentByUser(ctx context.Context, userID int64, limit int) ([]models.QuizResult, error) {
	var results []models.QuizResult
	query := r.db.Rebind(`
		SELECT id, user_id, test_slug, test_title, outcome, answered, completed_at
		FROM quiz_results
		WHERE user_id = ?
		ORDER BY completed_at DESC, id DESC
		LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &results, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get quiz results: %w", err)
	}
	return results, nil
}
