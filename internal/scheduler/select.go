// Package scheduler decides which flashcards are due and in what order they are shown.
package scheduler

import (
	"sort"
	"time"

	"github.com/lifehub/studycore/internal/domain"
)

// Limits bounds a selection.
type Limits struct {
	// NewCardsPerDay caps NEW cards introduced per UTC day.
	NewCardsPerDay int
	// IntroducedToday is the number of NEW cards already reviewed today.
	IntroducedToday int
	// MaxTotal caps the whole selection. Zero means no cap.
	MaxTotal int
}

type class int

const (
	classDue class = iota
	classNew
)

type candidate struct {
	card  domain.Flashcard
	class class
}

// Select filters cards down to the ones due at asOf and orders them: reviewed cards
// by how long they have been overdue (earliest due time first), then NEW cards by
// creation time. Equal times break on ease factor ascending, then id.
// Suspended cards are never selected. The input slice is not modified.
func Select(cards []domain.Flashcard, asOf time.Time, limits Limits) []domain.Flashcard {
	asOf = asOf.UTC()
	candidates := make([]candidate, 0, len(cards))
	for _, c := range cards {
		if c.Suspended {
			continue
		}
		if c.Stage == domain.StageNew {
			candidates = append(candidates, candidate{card: c, class: classNew})
			continue
		}
		if c.NextReviewAt == nil || c.NextReviewAt.After(asOf) {
			continue
		}
		candidates = append(candidates, candidate{card: c, class: classDue})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return less(candidates[i], candidates[j])
	})

	newLeft := limits.NewCardsPerDay - limits.IntroducedToday
	out := make([]domain.Flashcard, 0, len(candidates))
	for _, c := range candidates {
		if c.class == classNew {
			if newLeft <= 0 {
				continue
			}
			newLeft--
		}
		out = append(out, c.card)
		if limits.MaxTotal > 0 && len(out) == limits.MaxTotal {
			break
		}
	}
	return out
}

func less(a, b candidate) bool {
	if a.class != b.class {
		return a.class < b.class
	}
	at, bt := orderTime(a.card), orderTime(b.card)
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	if a.card.EaseFactor != b.card.EaseFactor {
		return a.card.EaseFactor < b.card.EaseFactor
	}
	return a.card.ID < b.card.ID
}

// orderTime is the due time of a reviewed card, or the creation time of a NEW one.
func orderTime(c domain.Flashcard) time.Time {
	if c.NextReviewAt != nil {
		return *c.NextReviewAt
	}
	return c.CreatedAt
}
