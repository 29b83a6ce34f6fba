package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lifehub/studycore/internal/domain"
)

const sessionColumns = `id, user_id, deck_id, algorithm_type, status, started_at, finished_at,
	total_cards, cards_reviewed, cards_correct, score`

// InsertSession stores rs, assigning its ID.
func (s *Store) InsertSession(ctx context.Context, tx *sqlx.Tx, rs *domain.ReviewSession) error {
	rs.ID = uuid.NewString()
	rs.StartedAt = utc(rs.StartedAt)
	rs.FinishedAt = utcPtr(rs.FinishedAt)
	err := s.namedExec(ctx, tx, `
		INSERT INTO study_review_sessions (`+sessionColumns+`)
		VALUES (:id, :user_id, :deck_id, :algorithm_type, :status, :started_at, :finished_at,
			:total_cards, :cards_reviewed, :cards_correct, :score)
	`, rs)
	if err != nil {
		return fmt.Errorf("failed to insert session for user %s: %w", rs.UserID, err)
	}
	return nil
}

// GetSession loads a session by id.
func (s *Store) GetSession(ctx context.Context, tx *sqlx.Tx, id string) (*domain.ReviewSession, error) {
	var rs domain.ReviewSession
	if err := s.get(ctx, tx, &rs, `SELECT `+sessionColumns+` FROM study_review_sessions WHERE id = ?`, id); err != nil {
		return nil, notFoundOr(err, "session", id)
	}
	return &rs, nil
}

// UpdateSession writes status, timestamps, counters and score of rs.
func (s *Store) UpdateSession(ctx context.Context, tx *sqlx.Tx, rs *domain.ReviewSession) error {
	rs.FinishedAt = utcPtr(rs.FinishedAt)
	res, err := s.exec(ctx, tx, `
		UPDATE study_review_sessions SET
			status = ?, finished_at = ?, cards_reviewed = ?, cards_correct = ?, score = ?
		WHERE id = ?
	`, rs.Status, rs.FinishedAt, rs.CardsReviewed, rs.CardsCorrect, rs.Score, rs.ID)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", rs.ID, err)
	}
	return expectOne(res, "session", rs.ID)
}

// ListSessions returns the user's sessions, newest first. An empty status lists all.
func (s *Store) ListSessions(ctx context.Context, tx *sqlx.Tx, userID string, status domain.SessionStatus) ([]domain.ReviewSession, error) {
	var sessions []domain.ReviewSession
	var err error
	if status == "" {
		err = s.selectAll(ctx, tx, &sessions,
			`SELECT `+sessionColumns+` FROM study_review_sessions WHERE user_id = ? ORDER BY started_at DESC, id`, userID)
	} else {
		err = s.selectAll(ctx, tx, &sessions,
			`SELECT `+sessionColumns+` FROM study_review_sessions WHERE user_id = ? AND status = ? ORDER BY started_at DESC, id`,
			userID, status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for user %s: %w", userID, err)
	}
	return sessions, nil
}

// InsertSessionCards records the due-set snapshot of a session.
func (s *Store) InsertSessionCards(ctx context.Context, tx *sqlx.Tx, cards []domain.SessionCard) error {
	for _, sc := range cards {
		_, err := s.exec(ctx, tx, `
			INSERT INTO study_session_cards (session_id, flashcard_id, position, state)
			VALUES (?, ?, ?, ?)
		`, sc.SessionID, sc.FlashcardID, sc.Position, sc.State)
		if err != nil {
			return fmt.Errorf("failed to insert session card %s: %w", sc.FlashcardID, err)
		}
	}
	return nil
}

// FindSessionCard returns the snapshot entry for a card, or nil when the card is not part of the session.
func (s *Store) FindSessionCard(ctx context.Context, tx *sqlx.Tx, sessionID, flashcardID string) (*domain.SessionCard, error) {
	var sc domain.SessionCard
	err := s.get(ctx, tx, &sc, `
		SELECT session_id, flashcard_id, position, state FROM study_session_cards
		WHERE session_id = ? AND flashcard_id = ?
	`, sessionID, flashcardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find card %s in session %s: %w", flashcardID, sessionID, err)
	}
	return &sc, nil
}

// UpdateSessionCardState moves a snapshot entry to state.
func (s *Store) UpdateSessionCardState(ctx context.Context, tx *sqlx.Tx, sessionID, flashcardID string, state domain.SessionCardState) error {
	res, err := s.exec(ctx, tx, `
		UPDATE study_session_cards SET state = ? WHERE session_id = ? AND flashcard_id = ?
	`, state, sessionID, flashcardID)
	if err != nil {
		return fmt.Errorf("failed to update card %s in session %s: %w", flashcardID, sessionID, err)
	}
	return expectOne(res, "session card", flashcardID)
}

// ListSessionCards returns the snapshot in presentation order.
func (s *Store) ListSessionCards(ctx context.Context, tx *sqlx.Tx, sessionID string) ([]domain.SessionCard, error) {
	var cards []domain.SessionCard
	err := s.selectAll(ctx, tx, &cards, `
		SELECT session_id, flashcard_id, position, state FROM study_session_cards
		WHERE session_id = ? ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards of session %s: %w", sessionID, err)
	}
	return cards, nil
}

// NextSessionCard returns the next card to present: pending cards by position, then
// requeued ones. It returns nil when nothing is left.
func (s *Store) NextSessionCard(ctx context.Context, tx *sqlx.Tx, sessionID string) (*domain.SessionCard, error) {
	var sc domain.SessionCard
	err := s.get(ctx, tx, &sc, `
		SELECT session_id, flashcard_id, position, state FROM study_session_cards
		WHERE session_id = ? AND state IN (?, ?)
		ORDER BY CASE WHEN state = ? THEN 0 ELSE 1 END, position
		LIMIT 1
	`, sessionID, domain.SessionCardPending, domain.SessionCardRequeued, domain.SessionCardPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pick next card of session %s: %w", sessionID, err)
	}
	return &sc, nil
}
