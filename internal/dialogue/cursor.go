package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	ErrInvalidChoice = errors.New("invalid choice")
	// ErrNotAwaitingChoice also matches ErrInvalidChoice.
	ErrNotAwaitingChoice = fmt.Errorf("%w: no choice is pending", ErrInvalidChoice)
)

type State int

const (
	StatePresenting State = iota
	StateAwaitingChoice
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StatePresenting:
		return "presenting"
	case StateAwaitingChoice:
		return "awaiting-choice"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Cursor walks a Graph from one branch point to the next, collecting the
// narration and the directives tagged onto it.
type Cursor struct {
	graph Graph

	state      State
	text       strings.Builder
	choices    []Choice
	directives Directives
}

func NewCursor(g Graph) *Cursor {
	return &Cursor{
		graph: g,
		state: StatePresenting,
	}
}

func (c *Cursor) State() State {
	return c.state
}

// Text returns the narration gathered by the last Advance.
func (c *Cursor) Text() string {
	return c.text.String()
}

// Choices returns a copy of the pending choices.
func (c *Cursor) Choices() []Choice {
	out := make([]Choice, len(c.choices))
	copy(out, c.choices)
	return out
}

// Directives returns the directives produced by the last Advance.
func (c *Cursor) Directives() Directives {
	return c.directives
}

// Advance pulls narration until the graph offers choices or runs out. Text and
// directives are reset first; within one advance the last tag of a kind wins.
// Malformed tags are logged and skipped.
func (c *Cursor) Advance(ctx context.Context) {
	c.text.Reset()
	c.directives = Directives{}
	c.choices = nil
	c.state = StatePresenting

	for c.graph.CanContinue() {
		c.text.WriteString(c.graph.Continue())
		c.collectTags(ctx, c.graph.CurrentTags())

		if len(c.graph.CurrentChoices()) > 0 {
			break
		}
	}

	c.choices = c.graph.CurrentChoices()
	switch {
	case len(c.choices) > 0:
		c.state = StateAwaitingChoice
	case !c.graph.CanContinue():
		c.state = StateExhausted
	}
}

// Choose follows choice i and advances to the next branch point. An invalid
// index leaves the cursor untouched.
func (c *Cursor) Choose(ctx context.Context, i int) error {
	if c.state != StateAwaitingChoice {
		return ErrNotAwaitingChoice
	}
	if i < 0 || i >= len(c.choices) {
		return fmt.Errorf("%w: index %d out of range [0,%d)", ErrInvalidChoice, i, len(c.choices))
	}

	if err := c.graph.ChooseChoiceIndex(i); err != nil {
		return fmt.Errorf("choosing %d: %w", i, err)
	}

	c.Advance(ctx)
	return nil
}

func (c *Cursor) collectTags(ctx context.Context, tags []string) {
	for _, tag := range tags {
		d, ok, err := ParseTag(tag)
		if err != nil {
			slog.WarnContext(ctx, "ignoring malformed tag", "tag", tag, "error", err)
			continue
		}
		if !ok {
			slog.DebugContext(ctx, "ignoring unknown tag", "tag", tag)
			continue
		}
		c.directives.merge(d)
	}
}
