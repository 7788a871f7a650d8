package knol

import (
	"testing"

	"github.com/conorfennell/flashbeta/internal/domain"
	"github.com/conorfennell/flashbeta/internal/parser"
)

func note(front, back, context string) parser.Note {
	return parser.Note{
		Front:   domain.Side{Type: domain.Text, Value: front},
		Back:    domain.Side{Type: domain.Text, Value: back},
		Context: context,
	}
}

func TestNormalize(t *testing.T) {
	n := note("  What is 7 x 8? \r\n", "Fifty-six.", "Times Tables")
	expected := "text\nwhat is 7 x 8?\ntext\nfifty-six.\ntimes tables"
	normalized := Normalize(n)

	if normalized != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, normalized)
	}
}

func TestHash(t *testing.T) {
	t.Run("generates correct hash", func(t *testing.T) {
		// Hash for "text\nq\ntext\na\nc"
		expectedHash := "45442e196d2cc4de2ade0029321bbcf906dbb6c44a7f9fa242ff6665dc635eae"
		hash := Hash(note("Q", "A", "C"))

		if hash != expectedHash {
			t.Errorf("Expected hash '%s', but got '%s'", expectedHash, hash)
		}
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		if Hash(note("  what is go? ", "A language.", "")) != Hash(note("What Is Go?", "A language.", "")) {
			t.Error("Expected hashes to be the same after normalization, but they were different.")
		}
	})

	t.Run("side type changes the hash", func(t *testing.T) {
		text := note("cat", "./media/cat.m4a", "")
		audio := text
		audio.Back.Type = domain.Audio
		if Hash(text) == Hash(audio) {
			t.Error("Expected text and audio sides to hash differently")
		}
	})

	t.Run("different notes have different hashes", func(t *testing.T) {
		if Hash(note("Card 1", "", "")) == Hash(note("Card 2", "", "")) {
			t.Error("Expected hashes for different notes to be different")
		}
	})
}

func TestSlug(t *testing.T) {
	slug := Slug(note("Q", "A", "C"))
	if slug != "md-45442e196d2cc4de" {
		t.Errorf("Expected slug 'md-45442e196d2cc4de', but got '%s'", slug)
	}
}
