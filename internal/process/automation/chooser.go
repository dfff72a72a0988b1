package automation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
	"github.com/lueurxax/perf-review-sync/internal/process/reportmatch"
)

const maxPromptAttempts = 3

// Chooser turns a selection result into the single report to download.
type Chooser interface {
	Choose(ctx context.Context, res reportmatch.SelectionResult) (reportmatch.Candidate, error)
}

// AutoChooser accepts a unique proposal and refuses everything else.
type AutoChooser struct{}

func (AutoChooser) Choose(_ context.Context, res reportmatch.SelectionResult) (reportmatch.Candidate, error) {
	if res.Status == reportmatch.StatusUnique && res.Proposed != nil {
		return res.Proposed.Candidate, nil
	}

	return reportmatch.Candidate{}, fmt.Errorf("%w: %q has %d matches", apperrors.ErrAmbiguousMatch, res.Query, len(res.Matches))
}

// TerminalChooser prompts an operator on a line-oriented terminal.
type TerminalChooser struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalChooser(in io.Reader, out io.Writer) *TerminalChooser {
	return &TerminalChooser{in: bufio.NewReader(in), out: out}
}

func (t *TerminalChooser) Choose(ctx context.Context, res reportmatch.SelectionResult) (reportmatch.Candidate, error) {
	switch res.Status {
	case reportmatch.StatusUnique:
		fmt.Fprintf(t.out, "Found report: %s (score %d)\n", res.Proposed.Text, res.Proposed.Score)

		answer, err := t.ask(ctx, "Use this report? [y/n]: ")
		if err != nil {
			return reportmatch.Candidate{}, err
		}

		if isYes(answer) {
			return res.Proposed.Candidate, nil
		}

		return t.pick(ctx, res, true)
	case reportmatch.StatusMultiple:
		fmt.Fprintf(t.out, "Several reports match %q:\n", res.Query)

		return t.pick(ctx, res, false)
	default:
		fmt.Fprintf(t.out, "No report matches %q.\n", res.Query)

		return t.pick(ctx, res, true)
	}
}

func (t *TerminalChooser) pick(ctx context.Context, res reportmatch.SelectionResult, fromAll bool) (reportmatch.Candidate, error) {
	t.list(res, fromAll)

	for attempt := 0; attempt < maxPromptAttempts; {
		answer, err := t.ask(ctx, t.prompt(res, fromAll))
		if err != nil {
			return reportmatch.Candidate{}, err
		}

		switch strings.ToLower(answer) {
		case "q", "quit":
			return reportmatch.Candidate{}, apperrors.ErrSelectionCancelled
		case "a", "all":
			fromAll = true
			t.list(res, fromAll)

			continue
		}

		n, convErr := strconv.Atoi(answer)
		if convErr == nil {
			c, pickErr := res.Pick(n-1, fromAll)
			if pickErr == nil {
				return c, nil
			}
		}

		attempt++

		fmt.Fprintf(t.out, "Invalid choice %q.\n", answer)
	}

	return reportmatch.Candidate{}, fmt.Errorf("%w: too many invalid answers", apperrors.ErrInvalidSelection)
}

func (t *TerminalChooser) list(res reportmatch.SelectionResult, fromAll bool) {
	if fromAll {
		fmt.Fprintln(t.out, "Available reports:")

		for i, c := range res.All {
			fmt.Fprintf(t.out, "  %d. %s\n", i+1, c.Text)
		}

		return
	}

	for i, m := range res.Matches {
		fmt.Fprintf(t.out, "  %d. %s (score %d)\n", i+1, m.Text, m.Score)
	}
}

func (t *TerminalChooser) prompt(res reportmatch.SelectionResult, fromAll bool) string {
	if fromAll {
		return fmt.Sprintf("Select 1-%d or q to quit: ", len(res.All))
	}

	return fmt.Sprintf("Select 1-%d, a to browse all, q to quit: ", len(res.Matches))
}

func (t *TerminalChooser) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprint(t.out, prompt)

	line, err := t.in.ReadString('\n')
	line = strings.TrimSpace(line)

	switch {
	case err == nil:
		return line, nil
	case errors.Is(err, io.EOF) && line != "":
		return line, nil
	case errors.Is(err, io.EOF):
		return "", apperrors.ErrSelectionCancelled
	default:
		return "", fmt.Errorf("reading answer: %w", err)
	}
}

func isYes(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Decision is an operator's answer delivered over the web API. Accept set
// answers a unique proposal; otherwise Index picks from Matches, or from All
// when FromAll is set.
type Decision struct {
	Accept  *bool
	Index   int
	FromAll bool
}

// WebChooser waits for decisions submitted through Decide.
type WebChooser struct {
	mu        sync.Mutex
	pending   *reportmatch.SelectionResult
	decisions chan reportmatch.Candidate
}

func NewWebChooser() *WebChooser {
	return &WebChooser{decisions: make(chan reportmatch.Candidate, 1)}
}

// Choose blocks until Decide delivers a candidate or ctx ends.
func (w *WebChooser) Choose(ctx context.Context, res reportmatch.SelectionResult) (reportmatch.Candidate, error) {
	w.mu.Lock()
	w.pending = &res

	// Drop any answer left over from an earlier run.
	select {
	case <-w.decisions:
	default:
	}
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.pending = nil
		w.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return reportmatch.Candidate{}, ctx.Err()
	case c := <-w.decisions:
		return c, nil
	}
}

// Pending returns the selection currently awaiting a decision.
func (w *WebChooser) Pending() (reportmatch.SelectionResult, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending == nil {
		return reportmatch.SelectionResult{}, false
	}

	return *w.pending, true
}

// Decide validates d against the pending selection and hands the chosen
// candidate to the waiting run. Declining a proposal keeps the run waiting
// for an explicit pick.
func (w *WebChooser) Decide(d Decision) (reportmatch.Candidate, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending == nil {
		return reportmatch.Candidate{}, fmt.Errorf("%w: nothing awaits a selection", apperrors.ErrNoRunInProgress)
	}

	var (
		c   reportmatch.Candidate
		err error
	)

	switch {
	case d.Accept != nil && !*d.Accept:
		return reportmatch.Candidate{}, nil
	case d.Accept != nil:
		if w.pending.Proposed == nil {
			return reportmatch.Candidate{}, fmt.Errorf("%w: no proposal to confirm", apperrors.ErrInvalidSelection)
		}

		c = w.pending.Proposed.Candidate
	default:
		c, err = w.pending.Pick(d.Index, d.FromAll)
		if err != nil {
			return reportmatch.Candidate{}, err
		}
	}

	select {
	case w.decisions <- c:
	default:
		return reportmatch.Candidate{}, fmt.Errorf("%w: a decision is already queued", apperrors.ErrInvalidInput)
	}

	return c, nil
}
