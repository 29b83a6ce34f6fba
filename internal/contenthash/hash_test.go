package contenthash

import (
	"testing"

	"github.com/lifehub/studycore/internal/domain"
)

func TestNormalize(t *testing.T) {
	card := domain.CardDraft{
		Front:   "  What is   a\tchannel? \r\n",
		Back:    "A typed conduit.\r\nUse   <- to send.",
		Context: "Go Concurrency",
	}
	expected := "what is a channel?\na typed conduit.\nuse <- to send.\ngo concurrency"
	if got := Normalize(card); got != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, got)
	}
}

func TestHash(t *testing.T) {
	t.Run("generates correct hash", func(t *testing.T) {
		// Hash for "q\na\nc"
		expected := "eb2456c1ee4f36305069dd0f63a30e92d5443129f5e8fd9a5ec490fbc4d4d8a2"
		if got := Hash(domain.CardDraft{Front: "Q", Back: "A", Context: "C"}); got != expected {
			t.Errorf("Expected hash '%s', but got '%s'", expected, got)
		}
	})

	t.Run("formatting does not change the hash", func(t *testing.T) {
		a := domain.CardDraft{Front: "  what is go? ", Back: "A programming  language."}
		b := domain.CardDraft{Front: "What Is Go?", Back: "a programming language.\r\n"}
		if Hash(a) != Hash(b) {
			t.Error("Expected hashes to be the same after normalization")
		}
	})

	t.Run("fields are not interchangeable", func(t *testing.T) {
		a := domain.CardDraft{Front: "x", Back: "y"}
		b := domain.CardDraft{Front: "x", Context: "y"}
		if Hash(a) == Hash(b) {
			t.Error("Expected back and context to hash differently")
		}
	})

	t.Run("different cards have different hashes", func(t *testing.T) {
		if Hash(domain.CardDraft{Front: "Card 1"}) == Hash(domain.CardDraft{Front: "Card 2"}) {
			t.Error("Expected hashes for different cards to be different")
		}
	})
}
