package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/flashbeta/internal/domain"
)

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	contextPrefix  = "C:"
	audioMarker    = "audio:"
	separator      = "---"
)

// Note is a question/answer block read from a markdown file.
type Note struct {
	Front   domain.Side
	Back    domain.Side
	Context string
}

type state int

const (
	seeking state = iota
	readingQuestion
	readingAnswer
	readingContext
)

// ParseFile reads a file from the given path and extracts all notes.
func ParseFile(path string) ([]Note, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// side turns block text into a card side. A block written as
// "audio:<ref>" becomes an audio side referring to <ref>.
func side(content string) domain.Side {
	if ref, ok := strings.CutPrefix(content, audioMarker); ok && !strings.Contains(ref, "\n") {
		return domain.Side{Type: domain.Audio, Value: strings.TrimSpace(ref)}
	}
	return domain.Side{Type: domain.Text, Value: content}
}

// Parse reads from an io.Reader and extracts all notes. A note starts at a
// "Q:" line and needs a question to be kept; "---" ends a note.
func Parse(r io.Reader) ([]Note, error) {
	scanner := bufio.NewScanner(r)
	var notes []Note
	var current Note
	var block []string
	currentState := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.TrimRight(strings.Join(block, "\n"), "\n")
		switch currentState {
		case readingQuestion:
			current.Front = side(content)
		case readingAnswer:
			current.Back = side(content)
		case readingContext:
			current.Context = content
		}
		block = nil
	}

	finishNote := func() {
		flushBlock()
		if current.Front.Value != "" {
			notes = append(notes, current)
		}
		current = Note{}
		currentState = seeking
	}

	prefixes := []struct {
		prefix string
		next   state
	}{
		{questionPrefix, readingQuestion},
		{answerPrefix, readingAnswer},
		{contextPrefix, readingContext},
	}

	for scanner.Scan() {
		line := scanner.Text()

		if line == separator {
			finishNote()
			continue
		}

		matched := false
		for _, p := range prefixes {
			rest, ok := strings.CutPrefix(line, p.prefix)
			if !ok {
				continue
			}
			matched = true
			if p.next == readingQuestion && currentState != seeking {
				// A new question always starts a new note.
				finishNote()
			}
			flushBlock()
			currentState = p.next
			block = append(block, strings.TrimPrefix(rest, " "))
			break
		}

		if !matched && currentState != seeking {
			block = append(block, line)
		}
	}

	finishNote()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}
