// Package parser reads flashcards from markdown decks.
//
// A card starts with a "Q:" line and may carry "A:" (back) and "C:" (context)
// sections. Each section runs until the next prefix; a line holding only "---"
// closes the current card.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lifehub/studycore/internal/contenthash"
	"github.com/lifehub/studycore/internal/domain"
)

const separator = "---"

type section int

const (
	noSection section = iota
	frontSection
	backSection
	contextSection
)

var prefixes = []struct {
	prefix  string
	section section
}{
	{"Q:", frontSection},
	{"A:", backSection},
	{"C:", contextSection},
}

// ParseFile parses the deck file at path.
func ParseFile(path string) ([]domain.CardDraft, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cards, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cards, nil
}

// Parse extracts cards from r. Every returned draft has its content hash set.
// Cards without a front are dropped.
func Parse(r io.Reader) ([]domain.CardDraft, error) {
	b := &builder{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		b.line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	b.finishCard()
	return b.cards, nil
}

type builder struct {
	cards   []domain.CardDraft
	current domain.CardDraft
	section section
	block   []string
}

func (b *builder) line(line string) {
	if strings.TrimSpace(line) == separator {
		b.finishCard()
		return
	}
	for _, p := range prefixes {
		if !strings.HasPrefix(line, p.prefix) {
			continue
		}
		b.flush()
		// A new question always starts a new card.
		if p.section == frontSection && b.section != noSection {
			b.finishCard()
		}
		b.section = p.section
		b.block = append(b.block, strings.TrimPrefix(line[len(p.prefix):], " "))
		return
	}
	if b.section != noSection {
		b.block = append(b.block, line)
	}
}

// flush stores the pending block in the current section.
func (b *builder) flush() {
	if len(b.block) == 0 {
		return
	}
	content := strings.TrimRight(strings.Join(b.block, "\n"), " \t\n")
	switch b.section {
	case frontSection:
		b.current.Front = content
	case backSection:
		b.current.Back = content
	case contextSection:
		b.current.Context = content
	}
	b.block = nil
}

func (b *builder) finishCard() {
	b.flush()
	if b.current.Front != "" {
		b.current.Hash = contenthash.Hash(b.current)
		b.cards = append(b.cards, b.current)
	}
	b.current = domain.CardDraft{}
	b.section = noSection
}
