package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lifehub/studycore/internal/apperr"
	"github.com/lifehub/studycore/internal/domain"
	"github.com/lifehub/studycore/internal/storage"
	"github.com/lifehub/studycore/internal/storage/testutil"
)

// The postgres database is shared between runs, so every test works under a fresh user.
func TestPostgresRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testutil.PostgresStore(t)
	user := "pg-" + uuid.NewString()

	v, err := s.CurrentVersion(ctx)
	if err != nil || v != storage.SchemaVersion() {
		t.Fatalf("Expected schema version %d, got %d (%v)", storage.SchemaVersion(), v, err)
	}

	subject, err := s.CreateParent(ctx, nil, domain.ParentSubject, user, "Databases")
	if err != nil {
		t.Fatalf("CreateParent failed: %v", err)
	}
	deck := &domain.Deck{UserID: user, Name: "SQL", Parent: subject}
	if err := s.CreateDeck(ctx, nil, deck); err != nil {
		t.Fatalf("CreateDeck failed: %v", err)
	}
	fresh := testutil.SeedNewCard(t, ctx, s, deck.ID, "What is MVCC?", asOf)
	due := testutil.SeedReviewedCard(t, ctx, s, deck.ID, "What is a WAL?", asOf.Add(-time.Hour), 2.1)

	topic := testutil.SeedTopic(t, ctx, s, user, "Storage engines", subject)
	cards, err := s.CardsInScope(ctx, nil, domain.TopicScope{TopicID: topic.ID})
	if err != nil {
		t.Fatalf("CardsInScope failed: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("Expected 2 cards under the topic's subject, got %d", len(cards))
	}

	got, err := s.GetFlashcard(ctx, nil, due.ID)
	if err != nil {
		t.Fatalf("GetFlashcard failed: %v", err)
	}
	if got.Stage != domain.StageReview || got.EaseFactor != 2.1 || !got.NextReviewAt.Equal(*due.NextReviewAt) {
		t.Errorf("Unexpected card after round trip: %+v", got)
	}

	st := &domain.StudySettings{UserID: user, Algorithm: domain.AlgorithmFSRS, NewCardsPerDay: 3, DesiredRetention: 0.8}
	if err := s.SaveSettings(ctx, nil, st); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	stored, err := s.FindSettings(ctx, nil, user)
	if err != nil || stored == nil || stored.Algorithm != domain.AlgorithmFSRS || stored.DesiredRetention != 0.8 {
		t.Errorf("Unexpected settings %+v (%v)", stored, err)
	}

	err = s.WithTx(ctx, func(tx *sqlx.Tx) error {
		rs := &domain.ReviewSession{UserID: user, DeckID: &deck.ID, Algorithm: domain.AlgorithmFSRS,
			Status: domain.SessionInProgress, StartedAt: asOf, TotalCards: 2}
		if err := s.InsertSession(ctx, tx, rs); err != nil {
			return err
		}
		if err := s.InsertSessionCards(ctx, tx, []domain.SessionCard{
			{SessionID: rs.ID, FlashcardID: due.ID, Position: 0, State: domain.SessionCardPending},
			{SessionID: rs.ID, FlashcardID: fresh.ID, Position: 1, State: domain.SessionCardPending},
		}); err != nil {
			return err
		}
		return s.InsertReviewLog(ctx, tx, &domain.ReviewLog{SessionID: rs.ID, FlashcardID: due.ID,
			Rating: domain.Good, ReviewedAt: asOf, PriorStage: domain.StageReview, PriorIntervalDays: 3, IntervalDays: 7})
	})
	if err != nil {
		t.Fatalf("session transaction failed: %v", err)
	}
	logs, err := s.ListReviewLogsByCard(ctx, nil, due.ID)
	if err != nil || len(logs) != 1 || logs[0].Rating != domain.Good || !logs[0].ReviewedAt.Equal(asOf) {
		t.Errorf("Unexpected card history %+v (%v)", logs, err)
	}

	if _, err := s.ResolveParent(ctx, nil, "pg-"+uuid.NewString(), subject); !apperr.IsNotFound(err) {
		t.Errorf("Expected NotFound for another user's subject, got %v", err)
	}
	if err := s.DeleteDeck(ctx, nil, deck.ID); err != nil {
		t.Fatalf("DeleteDeck failed: %v", err)
	}
	if _, err := s.GetFlashcard(ctx, nil, fresh.ID); !apperr.IsNotFound(err) {
		t.Errorf("Expected cards to cascade with the deck, got %v", err)
	}
}
