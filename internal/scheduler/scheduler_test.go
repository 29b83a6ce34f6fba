package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/lifehub/studycore/internal/apperr"
	"github.com/lifehub/studycore/internal/domain"
	"github.com/lifehub/studycore/internal/scheduler"
	"github.com/lifehub/studycore/internal/storage/testutil"
)

var asOf = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func defaults() domain.StudySettings {
	return domain.StudySettings{Algorithm: domain.AlgorithmLeitner, NewCardsPerDay: 2, DesiredRetention: 0.9}
}

func TestDueCardsFromStore(t *testing.T) {
	ctx := context.Background()
	s := testutil.Store(t)
	sched := scheduler.New(s, defaults())

	deck := testutil.SeedDeck(t, ctx, s, "u1", "Go")
	overdue := testutil.SeedReviewedCard(t, ctx, s, deck.ID, "overdue", asOf.Add(-72*time.Hour), 2.5)
	onTime := testutil.SeedReviewedCard(t, ctx, s, deck.ID, "on time", asOf.Add(-time.Hour), 1.8)
	testutil.SeedReviewedCard(t, ctx, s, deck.ID, "future", asOf.Add(time.Hour), 1.3)
	n1 := testutil.SeedNewCard(t, ctx, s, deck.ID, "n1", asOf.Add(-3*time.Hour))
	n2 := testutil.SeedNewCard(t, ctx, s, deck.ID, "n2", asOf.Add(-2*time.Hour))
	testutil.SeedNewCard(t, ctx, s, deck.ID, "n3", asOf.Add(-time.Hour))

	due, err := sched.DueCards(ctx, domain.DeckScope{DeckID: deck.ID}, asOf)
	if err != nil {
		t.Fatalf("DueCards failed: %v", err)
	}
	want := []string{overdue.ID, onTime.ID, n1.ID, n2.ID}
	if len(due) != len(want) {
		t.Fatalf("Expected %d due cards, got %d", len(want), len(due))
	}
	for i, c := range due {
		if c.ID != want[i] {
			t.Errorf("Position %d: expected %s, got %s (%s)", i, want[i], c.ID, c.Front)
		}
		if c.Stage != domain.StageNew && c.NextReviewAt.After(asOf) {
			t.Errorf("Card %s is not due yet", c.Front)
		}
	}

	again, err := sched.DueCards(ctx, domain.DeckScope{DeckID: deck.ID}, asOf)
	if err != nil {
		t.Fatalf("DueCards failed: %v", err)
	}
	for i := range due {
		if again[i].ID != due[i].ID {
			t.Fatalf("Expected identical sequence on repeated call")
		}
	}
}

func TestDueCardsUsesStoredSettings(t *testing.T) {
	ctx := context.Background()
	s := testutil.Store(t)
	sched := scheduler.New(s, defaults())

	deck := testutil.SeedDeck(t, ctx, s, "u1", "Go")
	testutil.SeedDueCards(t, ctx, s, deck.ID, 4, asOf)
	if err := s.SaveSettings(ctx, nil, &domain.StudySettings{
		UserID: "u1", Algorithm: domain.AlgorithmLeitner, NewCardsPerDay: 0, MaxReviewsPerSession: 3, DesiredRetention: 0.9,
	}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	due, err := sched.DueCards(ctx, domain.AllScope{UserID: "u1"}, asOf)
	if err != nil {
		t.Fatalf("DueCards failed: %v", err)
	}
	if len(due) != 3 {
		t.Errorf("Expected session cap of 3, got %d", len(due))
	}
}

func TestDueCardsCountsIntroducedToday(t *testing.T) {
	ctx := context.Background()
	s := testutil.Store(t)
	sched := scheduler.New(s, defaults())

	deck := testutil.SeedDeck(t, ctx, s, "u1", "Go")
	seen := testutil.SeedNewCard(t, ctx, s, deck.ID, "seen", asOf.Add(-5*time.Hour))
	testutil.SeedNewCard(t, ctx, s, deck.ID, "n1", asOf.Add(-4*time.Hour))
	testutil.SeedNewCard(t, ctx, s, deck.ID, "n2", asOf.Add(-3*time.Hour))

	rs := &domain.ReviewSession{UserID: "u1", Algorithm: domain.AlgorithmLeitner, Status: domain.SessionInProgress, StartedAt: asOf.Add(-2 * time.Hour), TotalCards: 1}
	if err := s.InsertSession(ctx, nil, rs); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}
	due := asOf.Add(22 * time.Hour)
	last := asOf.Add(-2 * time.Hour)
	seen.Stage = domain.StageLearning
	seen.ReviewCount = 1
	seen.IntervalDays = 1
	seen.LastReviewAt = &last
	seen.NextReviewAt = &due
	if err := s.UpdateFlashcardState(ctx, nil, seen); err != nil {
		t.Fatalf("UpdateFlashcardState failed: %v", err)
	}
	log := &domain.ReviewLog{SessionID: rs.ID, FlashcardID: seen.ID, Rating: domain.Good, ReviewedAt: last, PriorStage: domain.StageNew, IntervalDays: 1}
	if err := s.InsertReviewLog(ctx, nil, log); err != nil {
		t.Fatalf("InsertReviewLog failed: %v", err)
	}

	got, err := sched.DueCards(ctx, domain.DeckScope{DeckID: deck.ID}, asOf)
	if err != nil {
		t.Fatalf("DueCards failed: %v", err)
	}
	if len(got) != 1 || got[0].Front != "n1" {
		t.Errorf("Expected only n1 after one introduction today, got %d cards", len(got))
	}

	// The count resets on the next UTC day.
	tomorrow := scheduler.DayStart(asOf).Add(24*time.Hour + 23*time.Hour)
	got, err = sched.DueCards(ctx, domain.DeckScope{DeckID: deck.ID}, tomorrow)
	if err != nil {
		t.Fatalf("DueCards failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Expected seen card plus two new cards tomorrow, got %d", len(got))
	}
}

func TestDueCardsEmptyAndUnknownScopes(t *testing.T) {
	ctx := context.Background()
	s := testutil.Store(t)
	sched := scheduler.New(s, defaults())
	deck := testutil.SeedDeck(t, ctx, s, "u1", "Empty")

	due, err := sched.DueCards(ctx, domain.DeckScope{DeckID: deck.ID}, asOf)
	if err != nil {
		t.Fatalf("Expected empty deck to be valid, got %v", err)
	}
	if len(due) != 0 {
		t.Errorf("Expected no due cards, got %d", len(due))
	}

	if _, err := sched.DueCards(ctx, domain.DeckScope{DeckID: "missing"}, asOf); !apperr.IsNotFound(err) {
		t.Errorf("Expected NotFound for unknown deck, got %v", err)
	}
	if _, err := sched.DueCards(ctx, domain.TopicScope{TopicID: "missing"}, asOf); !apperr.IsNotFound(err) {
		t.Errorf("Expected NotFound for unknown topic, got %v", err)
	}
	if _, err := sched.DueCards(ctx, domain.AllScope{}, asOf); !apperr.IsValidation(err) {
		t.Errorf("Expected validation error for empty user, got %v", err)
	}
}
