// Package contenthash identifies flashcard content independently of formatting,
// so a re-imported card keeps its review history.
package contenthash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/lifehub/studycore/internal/domain"
)

// Normalize lowercases each field, unifies line endings, collapses runs of spaces
// and tabs, trims every line, and joins front, back and context with newlines.
func Normalize(card domain.CardDraft) string {
	return strings.Join([]string{
		normalizeField(card.Front),
		normalizeField(card.Back),
		normalizeField(card.Context),
	}, "\n")
}

func normalizeField(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "\r\n", "\n"))
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Hash returns the hex SHA-256 of the normalized card.
func Hash(card domain.CardDraft) string {
	sum := sha256.Sum256([]byte(Normalize(card)))
	return hex.EncodeToString(sum[:])
}
