package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lifehub/studycore/internal/domain"
)

const reviewLogColumns = `id, session_id, flashcard_id, rating, time_spent_seconds, reviewed_at,
	prior_stage, prior_interval_days, interval_days`

// InsertReviewLog appends a review log. Logs are never updated.
func (s *Store) InsertReviewLog(ctx context.Context, tx *sqlx.Tx, l *domain.ReviewLog) error {
	l.ID = uuid.NewString()
	l.ReviewedAt = utc(l.ReviewedAt)
	err := s.namedExec(ctx, tx, `
		INSERT INTO study_review_logs (`+reviewLogColumns+`)
		VALUES (:id, :session_id, :flashcard_id, :rating, :time_spent_seconds, :reviewed_at,
			:prior_stage, :prior_interval_days, :interval_days)
	`, l)
	if err != nil {
		return fmt.Errorf("failed to insert review log for flashcard %s: %w", l.FlashcardID, err)
	}
	return nil
}

// ListReviewLogsBySession returns a session's logs in review order.
func (s *Store) ListReviewLogsBySession(ctx context.Context, tx *sqlx.Tx, sessionID string) ([]domain.ReviewLog, error) {
	var logs []domain.ReviewLog
	err := s.selectAll(ctx, tx, &logs,
		`SELECT `+reviewLogColumns+` FROM study_review_logs WHERE session_id = ? ORDER BY reviewed_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review logs of session %s: %w", sessionID, err)
	}
	return logs, nil
}

// ListReviewLogsByCard returns a card's history across sessions in review order.
func (s *Store) ListReviewLogsByCard(ctx context.Context, tx *sqlx.Tx, flashcardID string) ([]domain.ReviewLog, error) {
	var logs []domain.ReviewLog
	err := s.selectAll(ctx, tx, &logs,
		`SELECT `+reviewLogColumns+` FROM study_review_logs WHERE flashcard_id = ? ORDER BY reviewed_at, id`, flashcardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review logs of flashcard %s: %w", flashcardID, err)
	}
	return logs, nil
}
