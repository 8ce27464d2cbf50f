package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// ConfirmResponse is the outcome of a yes/no prompt.
type ConfirmResponse int

const (
	// AnswerNo is any answer other than an accepted yes.
	AnswerNo ConfirmResponse = iota
	// AnswerYes is an accepted yes.
	AnswerYes
	// NoAnswer means no prompt could be shown: input is disabled, the
	// invocation is not interactive, or stdin reached EOF.
	NoAnswer
)

// yesAnswers are the accepted affirmative replies, compared case-insensitively.
var yesAnswers = map[string]bool{"y": true, "yes": true, "true": true, "1": true, "ok": true}

// ParseConfirm interprets a reply to a yes/no prompt.
func ParseConfirm(reply string) ConfirmResponse {
	if yesAnswers[strings.ToLower(strings.TrimSpace(reply))] {
		return AnswerYes
	}
	return AnswerNo
}

// Prompter asks the user for confirmation on the terminal. It owns the
// terminal line for the duration of the prompt by pausing the progress
// indicator.
type Prompter struct {
	in          io.Reader
	out         io.Writer
	interactive bool
	progress    *Indicator
}

// NewPrompter creates a prompter. When interactive is false every prompt
// returns NoAnswer without reading input.
func NewPrompter(in io.Reader, out io.Writer, interactive bool, progress *Indicator) *Prompter {
	return &Prompter{in: in, out: out, interactive: interactive, progress: progress}
}

// Confirm shows question and waits for a reply.
func (p *Prompter) Confirm(question string) (ConfirmResponse, error) {
	if !p.interactive || p.in == nil {
		return NoAnswer, nil
	}

	if p.progress != nil {
		p.progress.Pause()
		defer p.progress.Resume()
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          StripMarkup(question) + " [y/N] ",
		Stdin:           io.NopCloser(p.in),
		Stdout:          p.out,
		Stderr:          p.out,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return NoAnswer, fmt.Errorf("failed to create prompt: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	switch {
	case errors.Is(err, readline.ErrInterrupt):
		return AnswerNo, nil
	case errors.Is(err, io.EOF):
		return NoAnswer, nil
	case err != nil:
		return NoAnswer, fmt.Errorf("failed to read answer: %w", err)
	}
	return ParseConfirm(line), nil
}
