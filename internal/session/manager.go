// Package session runs review sessions: a snapshot of due cards, a stream of
// responses that update card memory state, and a final score.
package session

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/lifehub/studycore/internal/apperr"
	"github.com/lifehub/studycore/internal/domain"
	"github.com/lifehub/studycore/internal/logger"
	"github.com/lifehub/studycore/internal/memory"
	"github.com/lifehub/studycore/internal/scheduler"
	"github.com/lifehub/studycore/internal/storage"
)

type Manager struct {
	store     *storage.Store
	scheduler *scheduler.Scheduler
	validate  *validator.Validate
	log       *logger.Logger
	now       func() time.Time
}

type Option func(*Manager)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store *storage.Store, sched *scheduler.Scheduler, log *logger.Logger, opts ...Option) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	m := &Manager{
		store:     store,
		scheduler: sched,
		validate:  validator.New(),
		log:       log.With("component", "session"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type startInput struct {
	UserID string  `validate:"required"`
	DeckID *string `validate:"omitempty,min=1"`
}

// Response is one learner answer to a card.
type Response struct {
	SessionID   string        `validate:"required"`
	FlashcardID string        `validate:"required"`
	Rating      domain.Rating `validate:"required,oneof=AGAIN HARD GOOD EASY"`
	TimeSpent   time.Duration `validate:"gte=0"`
}

// Start opens a session over the cards due now, for one deck or for every deck of
// the user. The due set is snapshotted: total_cards never changes afterwards.
func (m *Manager) Start(ctx context.Context, userID string, deckID *string) (*domain.ReviewSession, error) {
	if err := apperr.Check(m.validate, startInput{UserID: userID, DeckID: deckID}); err != nil {
		return nil, err
	}
	now := m.now().UTC()

	var rs *domain.ReviewSession
	err := m.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		settings, err := m.scheduler.Settings(ctx, tx, userID)
		if err != nil {
			return err
		}
		if _, err := memory.StrategyFor(settings.Algorithm, settings.DesiredRetention); err != nil {
			return err
		}

		var scope domain.Scope = domain.AllScope{UserID: userID}
		if deckID != nil {
			deck, err := m.store.GetDeck(ctx, tx, *deckID)
			if err != nil {
				return err
			}
			if deck.UserID != userID {
				return apperr.NotFoundf("deck", "deck %s not found", *deckID)
			}
			scope = domain.DeckScope{DeckID: deck.ID}
		}

		due, err := m.scheduler.DueCardsTx(ctx, tx, scope, now)
		if err != nil {
			return err
		}

		rs = &domain.ReviewSession{
			UserID:     userID,
			DeckID:     deckID,
			Algorithm:  settings.Algorithm,
			Status:     domain.SessionInProgress,
			StartedAt:  now,
			TotalCards: len(due),
		}
		if err := m.store.InsertSession(ctx, tx, rs); err != nil {
			return err
		}
		cards := make([]domain.SessionCard, len(due))
		for i, c := range due {
			cards[i] = domain.SessionCard{
				SessionID:   rs.ID,
				FlashcardID: c.ID,
				Position:    i,
				State:       domain.SessionCardPending,
			}
		}
		return m.store.InsertSessionCards(ctx, tx, cards)
	})
	if err != nil {
		return nil, err
	}

	m.log.Info("session started", "session_id", rs.ID, "user_id", userID, "algorithm", rs.Algorithm, "total_cards", rs.TotalCards)
	return rs, nil
}

// Next returns the next card to present, or nil once every card has been answered
// without AGAIN.
func (m *Manager) Next(ctx context.Context, sessionID string) (*domain.Flashcard, error) {
	var card *domain.Flashcard
	err := m.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := m.activeSession(ctx, tx, sessionID); err != nil {
			return err
		}
		sc, err := m.store.NextSessionCard(ctx, tx, sessionID)
		if err != nil || sc == nil {
			return err
		}
		card, err = m.store.GetFlashcard(ctx, tx, sc.FlashcardID)
		return err
	})
	return card, err
}

// RecordResponse applies the memory model to the card, stores the new state and
// appends a review log, all in one transaction. Only the first response to a card
// counts towards cards_reviewed and cards_correct; AGAIN puts the card back in the
// queue.
func (m *Manager) RecordResponse(ctx context.Context, r Response) (*domain.Flashcard, *domain.ReviewLog, error) {
	if err := apperr.Check(m.validate, r); err != nil {
		return nil, nil, err
	}
	now := m.now().UTC()

	var (
		updated domain.Flashcard
		entry   *domain.ReviewLog
	)
	err := m.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		rs, err := m.activeSession(ctx, tx, r.SessionID)
		if err != nil {
			return err
		}
		card, err := m.store.GetFlashcard(ctx, tx, r.FlashcardID)
		if err != nil {
			return err
		}
		sc, err := m.store.FindSessionCard(ctx, tx, rs.ID, card.ID)
		if err != nil {
			return err
		}
		if sc == nil {
			return apperr.InvalidStatef("flashcard", "flashcard %s is not in the due set of session %s", card.ID, rs.ID)
		}
		if sc.State == domain.SessionCardReviewed {
			return apperr.InvalidStatef("flashcard", "flashcard %s was already reviewed in session %s", card.ID, rs.ID)
		}

		strategy, err := m.strategy(ctx, tx, rs)
		if err != nil {
			return err
		}
		next, err := memory.Apply(strategy, memory.FromCard(*card), r.Rating, now)
		if err != nil {
			return err
		}
		updated = next.Into(*card)
		if err := m.store.UpdateFlashcardState(ctx, tx, &updated); err != nil {
			return err
		}

		entry = &domain.ReviewLog{
			SessionID:         rs.ID,
			FlashcardID:       card.ID,
			Rating:            r.Rating,
			TimeSpentSeconds:  int(r.TimeSpent / time.Second),
			ReviewedAt:        now,
			PriorStage:        card.Stage,
			PriorIntervalDays: card.IntervalDays,
			IntervalDays:      updated.IntervalDays,
		}
		if err := m.store.InsertReviewLog(ctx, tx, entry); err != nil {
			return err
		}

		if sc.State == domain.SessionCardPending {
			rs.CardsReviewed++
			if r.Rating != domain.Again {
				rs.CardsCorrect++
			}
			if err := m.store.UpdateSession(ctx, tx, rs); err != nil {
				return err
			}
		}
		state := domain.SessionCardReviewed
		if r.Rating == domain.Again {
			state = domain.SessionCardRequeued
		}
		return m.store.UpdateSessionCardState(ctx, tx, rs.ID, card.ID, state)
	})
	if err != nil {
		return nil, nil, err
	}
	return &updated, entry, nil
}

// Preview returns the state each rating would give the card, without storing anything.
func (m *Manager) Preview(ctx context.Context, sessionID string, card domain.Flashcard) (map[domain.Rating]memory.State, error) {
	var out map[domain.Rating]memory.State
	err := m.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		rs, err := m.activeSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		strategy, err := m.strategy(ctx, tx, rs)
		if err != nil {
			return err
		}
		out = memory.Preview(strategy, memory.FromCard(card), m.now())
		return nil
	})
	return out, err
}

// Finish completes the session and computes its score.
func (m *Manager) Finish(ctx context.Context, sessionID string) (*domain.ReviewSession, error) {
	rs, err := m.close(ctx, sessionID, domain.SessionCompleted)
	if err != nil {
		return nil, err
	}
	m.log.Info("session finished", "session_id", rs.ID, "reviewed", rs.CardsReviewed, "correct", rs.CardsCorrect, "score", rs.Score)
	return rs, nil
}

// Cancel abandons the session. Review logs and card updates already made are kept.
func (m *Manager) Cancel(ctx context.Context, sessionID string) (*domain.ReviewSession, error) {
	rs, err := m.close(ctx, sessionID, domain.SessionCancelled)
	if err != nil {
		return nil, err
	}
	m.log.Info("session cancelled", "session_id", rs.ID, "reviewed", rs.CardsReviewed)
	return rs, nil
}

func (m *Manager) close(ctx context.Context, sessionID string, status domain.SessionStatus) (*domain.ReviewSession, error) {
	var rs *domain.ReviewSession
	err := m.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		rs, err = m.activeSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		finished := m.now().UTC()
		rs.Status = status
		rs.FinishedAt = &finished
		if status == domain.SessionCompleted {
			rs.Score = Score(rs.CardsCorrect, rs.CardsReviewed)
		}
		return m.store.UpdateSession(ctx, tx, rs)
	})
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// Score is correct/reviewed, or 0 when nothing was reviewed.
func Score(correct, reviewed int) float64 {
	if reviewed == 0 {
		return 0
	}
	return float64(correct) / float64(reviewed)
}

func (m *Manager) Get(ctx context.Context, sessionID string) (*domain.ReviewSession, error) {
	return m.store.GetSession(ctx, nil, sessionID)
}

// List returns the user's sessions, newest first. An empty status lists all of them.
func (m *Manager) List(ctx context.Context, userID string, status domain.SessionStatus) ([]domain.ReviewSession, error) {
	return m.store.ListSessions(ctx, nil, userID, status)
}

// Logs returns the review logs of a session in review order.
func (m *Manager) Logs(ctx context.Context, sessionID string) ([]domain.ReviewLog, error) {
	var logs []domain.ReviewLog
	err := m.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := m.store.GetSession(ctx, tx, sessionID); err != nil {
			return err
		}
		var err error
		logs, err = m.store.ListReviewLogsBySession(ctx, tx, sessionID)
		return err
	})
	return logs, err
}

// Cards returns the due-set snapshot of a session in presentation order.
func (m *Manager) Cards(ctx context.Context, sessionID string) ([]domain.SessionCard, error) {
	var cards []domain.SessionCard
	err := m.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := m.store.GetSession(ctx, tx, sessionID); err != nil {
			return err
		}
		var err error
		cards, err = m.store.ListSessionCards(ctx, tx, sessionID)
		return err
	})
	return cards, err
}

// CardHistory returns every response recorded for a flashcard, across sessions, oldest first.
func (m *Manager) CardHistory(ctx context.Context, flashcardID string) ([]domain.ReviewLog, error) {
	var logs []domain.ReviewLog
	err := m.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := m.store.GetFlashcard(ctx, tx, flashcardID); err != nil {
			return err
		}
		var err error
		logs, err = m.store.ListReviewLogsByCard(ctx, tx, flashcardID)
		return err
	})
	return logs, err
}

func (m *Manager) activeSession(ctx context.Context, tx *sqlx.Tx, sessionID string) (*domain.ReviewSession, error) {
	rs, err := m.store.GetSession(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if !rs.Active() {
		return nil, apperr.InvalidStatef("session", "session %s is %s", rs.ID, rs.Status)
	}
	return rs, nil
}

// strategy uses the algorithm snapshotted at session start with the user's current retention target.
func (m *Manager) strategy(ctx context.Context, tx *sqlx.Tx, rs *domain.ReviewSession) (memory.ScheduleStrategy, error) {
	settings, err := m.scheduler.Settings(ctx, tx, rs.UserID)
	if err != nil {
		return nil, err
	}
	return memory.StrategyFor(rs.Algorithm, settings.DesiredRetention)
}
