package simulator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// TextIO is the interactive terminal handler: bot prompts styled via
// termenv, caller input read line by line.
type TextIO struct {
	reader  *bufio.Reader
	writer  io.Writer
	profile termenv.Profile
}

// NewTextIO creates a terminal IO handler. The profile controls styling;
// pass termenv.Ascii for plain output (pipes, tests).
func NewTextIO(r io.Reader, w io.Writer, profile termenv.Profile) *TextIO {
	return &TextIO{
		reader:  bufio.NewReader(r),
		writer:  w,
		profile: profile,
	}
}

// Say prints the bot's messages.
func (t *TextIO) Say(msgs []domain.Message) error {
	for _, msg := range msgs {
		styled := termenv.String("bot> ").Foreground(t.profile.Color("6")).Bold().String()
		if _, err := fmt.Fprintf(t.writer, "%s%s\n", styled, msg.Content); err != nil {
			return err
		}
	}
	return nil
}

// Ask reads one caller line.
func (t *TextIO) Ask(ctx context.Context, prompt string) (string, error) {
	label := termenv.String(fmt.Sprintf("you (%s)> ", prompt)).Foreground(t.profile.Color("2")).String()
	if _, err := fmt.Fprint(t.writer, label); err != nil {
		return "", err
	}
	line, err := t.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Event prints an out-of-band note.
func (t *TextIO) Event(kind, detail string) error {
	styled := termenv.String(fmt.Sprintf("[%s] ", kind)).Foreground(t.profile.Color("3")).Faint().String()
	_, err := fmt.Fprintf(t.writer, "%s%s\n", styled, detail)
	return err
}
