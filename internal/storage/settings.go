package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/lifehub/studycore/internal/apperr"
	"github.com/lifehub/studycore/internal/domain"
)

var validate = validator.New()

// FindSettings returns the stored settings for userID, or nil when none were saved.
func (s *Store) FindSettings(ctx context.Context, tx *sqlx.Tx, userID string) (*domain.StudySettings, error) {
	var st domain.StudySettings
	err := s.get(ctx, tx, &st, `
		SELECT user_id, algorithm_type, new_cards_per_day, max_reviews_per_session, desired_retention, updated_at
		FROM study_settings WHERE user_id = ?
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find settings for user %s: %w", userID, err)
	}
	return &st, nil
}

// SaveSettings inserts or replaces the settings row of st.UserID. Invalid settings are
// rejected with a ValidationError.
func (s *Store) SaveSettings(ctx context.Context, tx *sqlx.Tx, st *domain.StudySettings) error {
	if err := apperr.Check(validate, st); err != nil {
		return err
	}
	st.UpdatedAt = utc(st.UpdatedAt)
	err := s.namedExec(ctx, tx, `
		INSERT INTO study_settings (user_id, algorithm_type, new_cards_per_day, max_reviews_per_session, desired_retention, updated_at)
		VALUES (:user_id, :algorithm_type, :new_cards_per_day, :max_reviews_per_session, :desired_retention, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
			algorithm_type = excluded.algorithm_type,
			new_cards_per_day = excluded.new_cards_per_day,
			max_reviews_per_session = excluded.max_reviews_per_session,
			desired_retention = excluded.desired_retention,
			updated_at = excluded.updated_at
	`, st)
	if err != nil {
		return fmt.Errorf("failed to save settings for user %s: %w", st.UserID, err)
	}
	return nil
}
