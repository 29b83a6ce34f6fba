package scheduler

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lifehub/studycore/internal/apperr"
	"github.com/lifehub/studycore/internal/domain"
	"github.com/lifehub/studycore/internal/storage"
)

// Scheduler selects due cards from storage using each user's study settings.
type Scheduler struct {
	store    *storage.Store
	defaults domain.StudySettings
}

// New returns a Scheduler. defaults apply to users without stored settings.
func New(store *storage.Store, defaults domain.StudySettings) *Scheduler {
	return &Scheduler{store: store, defaults: defaults}
}

// Settings returns the stored settings of userID, or the defaults.
func (s *Scheduler) Settings(ctx context.Context, tx *sqlx.Tx, userID string) (domain.StudySettings, error) {
	st, err := s.store.FindSettings(ctx, tx, userID)
	if err != nil {
		return domain.StudySettings{}, err
	}
	if st == nil {
		d := s.defaults
		d.UserID = userID
		return d, nil
	}
	return *st, nil
}

// DueCards returns the ordered cards due at asOf within scope. An empty result means
// nothing is due.
func (s *Scheduler) DueCards(ctx context.Context, scope domain.Scope, asOf time.Time) ([]domain.Flashcard, error) {
	var due []domain.Flashcard
	err := s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		due, err = s.DueCardsTx(ctx, tx, scope, asOf)
		return err
	})
	return due, err
}

// DueCardsTx is DueCards inside an existing transaction.
func (s *Scheduler) DueCardsTx(ctx context.Context, tx *sqlx.Tx, scope domain.Scope, asOf time.Time) ([]domain.Flashcard, error) {
	userID, err := s.owner(ctx, tx, scope)
	if err != nil {
		return nil, err
	}
	settings, err := s.Settings(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	cards, err := s.store.CardsInScope(ctx, tx, scope)
	if err != nil {
		return nil, err
	}
	introduced, err := s.store.CountNewIntroducedSince(ctx, tx, userID, DayStart(asOf))
	if err != nil {
		return nil, err
	}
	return Select(cards, asOf, Limits{
		NewCardsPerDay:  settings.NewCardsPerDay,
		IntroducedToday: introduced,
		MaxTotal:        settings.MaxReviewsPerSession,
	}), nil
}

func (s *Scheduler) owner(ctx context.Context, tx *sqlx.Tx, scope domain.Scope) (string, error) {
	switch sc := scope.(type) {
	case domain.DeckScope:
		d, err := s.store.GetDeck(ctx, tx, sc.DeckID)
		if err != nil {
			return "", err
		}
		return d.UserID, nil
	case domain.TopicScope:
		t, err := s.store.GetTopic(ctx, tx, sc.TopicID)
		if err != nil {
			return "", err
		}
		return t.UserID, nil
	case domain.AllScope:
		if sc.UserID == "" {
			return "", apperr.Validationf("user_id", "user id is required")
		}
		return sc.UserID, nil
	}
	return "", apperr.Validationf("scope", "unsupported scope %T", scope)
}

// DayStart returns UTC midnight of the day containing t.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
