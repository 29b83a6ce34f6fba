package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lifehub/studycore/internal/apperr"
	"github.com/lifehub/studycore/internal/domain"
)

const flashcardColumns = `f.id, f.deck_id, f.front, f.back, f.context, f.content_hash, f.stage, f.next_review_at,
	f.interval_days, f.ease_factor, f.review_count, f.lapses, f.stability, f.difficulty, f.retrievability,
	f.last_review_at, f.suspended, f.created_at, f.updated_at`

// InsertFlashcard stores c, assigning its ID.
func (s *Store) InsertFlashcard(ctx context.Context, tx *sqlx.Tx, c *domain.Flashcard) error {
	c.ID = uuid.NewString()
	c.CreatedAt = utc(c.CreatedAt)
	c.UpdatedAt = c.CreatedAt
	c.NextReviewAt = utcPtr(c.NextReviewAt)
	c.LastReviewAt = utcPtr(c.LastReviewAt)
	if c.Stage == "" {
		c.Stage = domain.StageNew
	}
	err := s.namedExec(ctx, tx, `
		INSERT INTO study_flashcards (
			id, deck_id, front, back, context, content_hash, stage, next_review_at,
			interval_days, ease_factor, review_count, lapses, stability, difficulty, retrievability,
			last_review_at, suspended, created_at, updated_at
		) VALUES (
			:id, :deck_id, :front, :back, :context, :content_hash, :stage, :next_review_at,
			:interval_days, :ease_factor, :review_count, :lapses, :stability, :difficulty, :retrievability,
			:last_review_at, :suspended, :created_at, :updated_at
		)
	`, c)
	if err != nil {
		return fmt.Errorf("failed to insert flashcard %s: %w", c.ContentHash, err)
	}
	return nil
}

// GetFlashcard loads a card by id.
func (s *Store) GetFlashcard(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Flashcard, error) {
	var c domain.Flashcard
	if err := s.get(ctx, tx, &c, `SELECT `+flashcardColumns+` FROM study_flashcards f WHERE f.id = ?`, id); err != nil {
		return nil, notFoundOr(err, "flashcard", id)
	}
	return &c, nil
}

// UpdateFlashcardState writes the memory state of c. Concurrent sessions overwrite each
// other: the last write wins.
func (s *Store) UpdateFlashcardState(ctx context.Context, tx *sqlx.Tx, c *domain.Flashcard) error {
	c.UpdatedAt = time.Now().UTC()
	c.NextReviewAt = utcPtr(c.NextReviewAt)
	c.LastReviewAt = utcPtr(c.LastReviewAt)
	q := s.ext(tx)
	query, args, err := q.BindNamed(`
		UPDATE study_flashcards SET
			stage = :stage,
			next_review_at = :next_review_at,
			interval_days = :interval_days,
			ease_factor = :ease_factor,
			review_count = :review_count,
			lapses = :lapses,
			stability = :stability,
			difficulty = :difficulty,
			retrievability = :retrievability,
			last_review_at = :last_review_at,
			updated_at = :updated_at
		WHERE id = :id
	`, c)
	if err != nil {
		return fmt.Errorf("failed to bind flashcard update: %w", err)
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update flashcard %s: %w", c.ID, err)
	}
	return expectOne(res, "flashcard", c.ID)
}

// SetSuspended toggles whether a card takes part in scheduling.
func (s *Store) SetSuspended(ctx context.Context, tx *sqlx.Tx, id string, suspended bool) error {
	res, err := s.exec(ctx, tx,
		`UPDATE study_flashcards SET suspended = ?, updated_at = ? WHERE id = ?`,
		suspended, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update suspension of flashcard %s: %w", id, err)
	}
	return expectOne(res, "flashcard", id)
}

// ListFlashcardsByDeck returns every card of a deck, suspended ones included.
func (s *Store) ListFlashcardsByDeck(ctx context.Context, tx *sqlx.Tx, deckID string) ([]domain.Flashcard, error) {
	var cards []domain.Flashcard
	err := s.selectAll(ctx, tx, &cards,
		`SELECT `+flashcardColumns+` FROM study_flashcards f WHERE f.deck_id = ? ORDER BY f.created_at, f.id`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcards of deck %s: %w", deckID, err)
	}
	return cards, nil
}

// CardsInScope loads the active (not suspended) cards covered by scope in one query.
func (s *Store) CardsInScope(ctx context.Context, tx *sqlx.Tx, scope domain.Scope) ([]domain.Flashcard, error) {
	var cards []domain.Flashcard
	var err error
	switch sc := scope.(type) {
	case domain.DeckScope:
		if _, err := s.GetDeck(ctx, tx, sc.DeckID); err != nil {
			return nil, err
		}
		err = s.selectAll(ctx, tx, &cards, `
			SELECT `+flashcardColumns+` FROM study_flashcards f
			WHERE f.deck_id = ? AND f.suspended = ?
		`, sc.DeckID, false)
	case domain.AllScope:
		err = s.selectAll(ctx, tx, &cards, `
			SELECT `+flashcardColumns+` FROM study_flashcards f
			JOIN study_decks d ON d.id = f.deck_id
			WHERE d.user_id = ? AND f.suspended = ?
		`, sc.UserID, false)
	case domain.TopicScope:
		topic, terr := s.GetTopic(ctx, tx, sc.TopicID)
		if terr != nil {
			return nil, terr
		}
		if topic.Parent == nil {
			return nil, nil
		}
		err = s.selectAll(ctx, tx, &cards, `
			SELECT `+flashcardColumns+` FROM study_flashcards f
			JOIN study_decks d ON d.id = f.deck_id
			WHERE d.user_id = ? AND d.parent_type = ? AND d.parent_id = ? AND f.suspended = ?
		`, topic.UserID, string(topic.Parent.Kind()), topic.Parent.RefID(), false)
	default:
		return nil, apperr.Validationf("scope", "unsupported scope %T", scope)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cards in scope: %w", err)
	}
	return cards, nil
}

// CountNewIntroducedSince counts first reviews made by userID at or after since.
func (s *Store) CountNewIntroducedSince(ctx context.Context, tx *sqlx.Tx, userID string, since time.Time) (int, error) {
	var n int
	err := s.get(ctx, tx, &n, `
		SELECT COUNT(*) FROM study_review_logs l
		JOIN study_review_sessions rs ON rs.id = l.session_id
		WHERE rs.user_id = ? AND l.prior_stage = ? AND l.reviewed_at >= ?
	`, userID, string(domain.StageNew), since.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to count new cards introduced for user %s: %w", userID, err)
	}
	return n, nil
}
