package knol

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/flashbeta/internal/parser"
)

const slugPrefix = "md-"

// slugHexLen is how many hex characters of the hash a slug keeps.
const slugHexLen = 16

// Normalize concatenates the note's content after cleaning each part.
// It trims whitespace, lowercases, and normalizes line endings for each field
// before joining them. Side types are included so that a text and an audio
// side with the same value do not collide.
func Normalize(note parser.Note) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	parts := []string{
		string(note.Front.Type),
		normalizePart(note.Front.Value),
		string(note.Back.Type),
		normalizePart(note.Back.Value),
		normalizePart(note.Context),
	}

	// We join with a newline to ensure separation between fields,
	// preventing accidental joining of words.
	return strings.Join(parts, "\n")
}

// Hash takes a note, normalizes it, and returns its SHA-256 hash as a hex string.
func Hash(note parser.Note) string {
	normalized := Normalize(note)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}

// Slug derives the stable card slug for a note. Edits that only change case
// or surrounding whitespace keep the same slug, so saved progress survives
// them.
func Slug(note parser.Note) string {
	return slugPrefix + Hash(note)[:slugHexLen]
}
