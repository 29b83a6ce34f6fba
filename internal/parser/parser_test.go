package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lifehub/studycore/internal/contenthash"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectedCards int
		expectedFront string
		expectedBack  string
		expectedCtx   string
	}{
		{
			name:          "Simple Q&A",
			input:         "Q: What is the capital of France?\nA: Paris",
			expectedCards: 1,
			expectedFront: "What is the capital of France?",
			expectedBack:  "Paris",
		},
		{
			name:          "Q, A and C",
			input:         "Q: What does defer do?\nA: Runs a call when the function returns\nC: Go",
			expectedCards: 1,
			expectedFront: "What does defer do?",
			expectedBack:  "Runs a call when the function returns",
			expectedCtx:   "Go",
		},
		{
			name: "Multiline back",
			input: `
Q: Name the SOLID principles starting with S and O
A: Single responsibility
Open/closed

`,
			expectedCards: 1,
			expectedFront: "Name the SOLID principles starting with S and O",
			expectedBack:  "Single responsibility\nOpen/closed",
		},
		{
			name: "Two cards split by a new question",
			input: `
Q: First question
A: First answer

Q: Second question
A: Second answer
`,
			expectedCards: 2,
		},
		{
			name:          "Separator closes a card",
			input:         "Q: One\nA: 1\n---\nstray text\nQ: Two\nA: 2",
			expectedCards: 2,
		},
		{
			name:          "No cards",
			input:         "Just notes, nothing to learn here.",
			expectedCards: 0,
		},
		{
			name:          "Back without front is dropped",
			input:         "A: orphan answer\n---\nQ: kept\nA: yes",
			expectedCards: 1,
			expectedFront: "kept",
			expectedBack:  "yes",
		},
		{
			name:          "Prefixes with no space",
			input:         "Q:Question\nA:Answer",
			expectedCards: 1,
			expectedFront: "Question",
			expectedBack:  "Answer",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cards, err := Parse(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse() returned an unexpected error: %v", err)
			}
			if len(cards) != tc.expectedCards {
				t.Fatalf("Expected %d cards, but got %d", tc.expectedCards, len(cards))
			}
			for _, c := range cards {
				if c.Hash != contenthash.Hash(c) {
					t.Errorf("Expected hash of %q to be set", c.Front)
				}
			}
			if tc.expectedCards == 1 {
				card := cards[0]
				if card.Front != tc.expectedFront {
					t.Errorf("Expected front '%s', but got '%s'", tc.expectedFront, card.Front)
				}
				if card.Back != tc.expectedBack {
					t.Errorf("Expected back '%s', but got '%s'", tc.expectedBack, card.Back)
				}
				if card.Context != tc.expectedCtx {
					t.Errorf("Expected context '%s', but got '%s'", tc.expectedCtx, card.Context)
				}
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.md")
	if err := os.WriteFile(path, []byte("Q: ping\nA: pong\n"), 0o644); err != nil {
		t.Fatalf("write deck: %v", err)
	}
	cards, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(cards) != 1 || cards[0].Back != "pong" {
		t.Errorf("Unexpected cards: %+v", cards)
	}

	if _, err := ParseFile(filepath.Join(dir, "missing.md")); err == nil {
		t.Errorf("Expected an error for a missing file")
	}
}
