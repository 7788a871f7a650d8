package review

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/conorfennell/flashbeta/internal/domain"
)

// errQuit ends the loop at the user's request.
var errQuit = errors.New("quit")

func show(side domain.Side) string {
	if side.Type == domain.Audio {
		return fmt.Sprintf("[audio %s]", side.Value)
	}
	return side.Value
}

// Run reviews up to limit cards, or until the user quits or input ends when
// limit <= 0. Each turn shows the prompt, waits for Enter, shows the answer
// and asks whether it was recalled. It returns the number of recorded reviews.
func Run(ctx context.Context, s *Session, in io.Reader, out io.Writer, limit int) (int, error) {
	scanner := bufio.NewScanner(in)
	readLine := func() (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	reviewed := 0
	for limit <= 0 || reviewed < limit {
		if err := ctx.Err(); err != nil {
			return reviewed, err
		}
		card, err := s.Next()
		if err != nil {
			return reviewed, err
		}

		fmt.Fprintf(out, "\n%s\n(press Enter to reveal, q to quit) ", show(card.Front))
		line, err := readLine()
		if err != nil || line == "q" {
			return reviewed, ignoreStop(err)
		}
		fmt.Fprintf(out, "%s\n", show(card.Back))

		passed, err := ask(readLine, out)
		if err != nil {
			return reviewed, ignoreStop(err)
		}
		if _, err := s.Record(ctx, card.Slug, passed); err != nil {
			return reviewed, err
		}
		reviewed++
	}
	return reviewed, nil
}

func ask(readLine func() (string, error), out io.Writer) (bool, error) {
	for {
		fmt.Fprint(out, "Did you get it? [y/n/q] ")
		line, err := readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		case "q":
			return false, errQuit
		}
	}
}

func ignoreStop(err error) error {
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, errQuit) {
		return nil
	}
	return err
}
