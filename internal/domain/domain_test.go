package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseRating(t *testing.T) {
	testCases := []struct {
		input   string
		want    Rating
		wantErr bool
	}{
		{"1", Again, false},
		{"4", Easy, false},
		{"good", Good, false},
		{" HARD ", Hard, false},
		{"5", "", true},
		{"meh", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseRating(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q, got rating %q", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNewParent(t *testing.T) {
	for _, kind := range ParentKinds() {
		p, err := NewParent(kind, "abc")
		if err != nil {
			t.Fatalf("NewParent(%s) failed: %v", kind, err)
		}
		if p.Kind() != kind || p.RefID() != "abc" {
			t.Errorf("Expected %s/abc, got %s/%s", kind, p.Kind(), p.RefID())
		}
	}

	if p, err := NewParent("", ""); err != nil || p != nil {
		t.Errorf("Expected nil parent for empty columns, got %v, %v", p, err)
	}

	_, err := NewParent("PODCAST", "abc")
	if !errors.Is(err, ErrUnknownParentKind) {
		t.Errorf("Expected ErrUnknownParentKind, got %v", err)
	}

	if _, err := NewParent(ParentBook, ""); err == nil {
		t.Errorf("Expected error for missing id")
	}
}

func TestSameParent(t *testing.T) {
	if !SameParent(BookRef{BookID: "1"}, BookRef{BookID: "1"}) {
		t.Errorf("Expected equal book refs to match")
	}
	if SameParent(BookRef{BookID: "1"}, SubjectRef{SubjectID: "1"}) {
		t.Errorf("Expected refs of different kinds with the same id not to match")
	}
	if SameParent(nil, nil) {
		t.Errorf("Expected nil parents not to match")
	}
}

func TestNewFlashcardIsNew(t *testing.T) {
	c := NewFlashcard("deck", CardDraft{Front: "Q", Back: "A"}, fixedNow)
	if !c.IsNew() || c.NextReviewAt != nil {
		t.Errorf("Expected a fresh card without next review, got %+v", c)
	}
	if c.EaseFactor != DefaultEaseFactor {
		t.Errorf("Expected default ease %.1f, got %.1f", DefaultEaseFactor, c.EaseFactor)
	}
}

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
