package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lifehub/studycore/internal/domain"
	"github.com/lifehub/studycore/internal/storage"
)

func SeedDeck(tb testing.TB, ctx context.Context, s *storage.Store, userID, name string) *domain.Deck {
	tb.Helper()
	d := &domain.Deck{UserID: userID, Name: name}
	if err := s.CreateDeck(ctx, nil, d); err != nil {
		tb.Fatalf("seed deck: %v", err)
	}
	return d
}

// SeedNewCard inserts an unreviewed card.
func SeedNewCard(tb testing.TB, ctx context.Context, s *storage.Store, deckID, front string, createdAt time.Time) *domain.Flashcard {
	tb.Helper()
	c := domain.NewFlashcard(deckID, domain.CardDraft{Front: front, Back: "back of " + front, Hash: "hash-" + front}, createdAt)
	if err := s.InsertFlashcard(ctx, nil, &c); err != nil {
		tb.Fatalf("seed new card: %v", err)
	}
	return &c
}

// SeedReviewedCard inserts a card in REVIEW that falls due at due.
func SeedReviewedCard(tb testing.TB, ctx context.Context, s *storage.Store, deckID, front string, due time.Time, ease float64) *domain.Flashcard {
	tb.Helper()
	last := due.Add(-3 * 24 * time.Hour)
	c := domain.NewFlashcard(deckID, domain.CardDraft{Front: front, Back: "back of " + front, Hash: "hash-" + front}, last.Add(-24*time.Hour))
	c.Stage = domain.StageReview
	c.IntervalDays = 3
	c.EaseFactor = ease
	c.ReviewCount = 2
	c.LastReviewAt = &last
	c.NextReviewAt = &due
	if err := s.InsertFlashcard(ctx, nil, &c); err != nil {
		tb.Fatalf("seed reviewed card: %v", err)
	}
	return &c
}

// SeedDueCards inserts n cards that were due a day before asOf.
func SeedDueCards(tb testing.TB, ctx context.Context, s *storage.Store, deckID string, n int, asOf time.Time) []*domain.Flashcard {
	tb.Helper()
	cards := make([]*domain.Flashcard, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, SeedReviewedCard(tb, ctx, s, deckID, fmt.Sprintf("card %d", i), asOf.Add(-24*time.Hour), 2.5))
	}
	return cards
}

func SeedTopic(tb testing.TB, ctx context.Context, s *storage.Store, userID, name string, parent domain.Parent) *domain.Topic {
	tb.Helper()
	t := &domain.Topic{UserID: userID, Name: name, Parent: parent}
	if err := s.InsertTopic(ctx, nil, t); err != nil {
		tb.Fatalf("seed topic: %v", err)
	}
	return t
}
