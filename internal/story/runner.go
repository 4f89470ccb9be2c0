package story

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/pixil98/go-lantern/internal/dialogue"
)

// endKnot stands in for the current knot once the story is over.
var endKnot = &Knot{}

// Runner plays a Story. It implements dialogue.Graph.
type Runner struct {
	story *Story

	knotName string
	knot     *Knot
	pos      int
	tags     []string

	vars  map[string]float64
	flags map[string]bool
}

// NewRunner starts s at its start knot. s must have passed Validate.
func NewRunner(s *Story) *Runner {
	r := &Runner{
		story: s,
		vars:  maps.Clone(s.Variables),
		flags: maps.Clone(s.Flags),
	}
	if r.vars == nil {
		r.vars = map[string]float64{}
	}
	if r.flags == nil {
		r.flags = map[string]bool{}
	}
	r.enter(s.Start)
	return r
}

func (r *Runner) CanContinue() bool {
	return r.pos < len(r.knot.Lines)
}

func (r *Runner) Continue() string {
	if !r.CanContinue() {
		return ""
	}

	line := r.knot.Lines[r.pos]
	r.pos++
	r.tags = line.Tags

	text := r.render(line.Text)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	if !r.CanContinue() && len(r.knot.Choices) == 0 && r.knot.Divert != "" {
		r.enter(r.knot.Divert)
	}

	return text
}

func (r *Runner) CurrentTags() []string {
	return r.tags
}

func (r *Runner) CurrentChoices() []dialogue.Choice {
	if r.CanContinue() {
		return nil
	}

	var out []dialogue.Choice
	for _, c := range r.visibleChoices() {
		out = append(out, dialogue.Choice{Text: r.render(c.Text)})
	}
	return out
}

func (r *Runner) ChooseChoiceIndex(i int) error {
	if r.CanContinue() {
		return fmt.Errorf("no choices pending in knot %q", r.knotName)
	}
	visible := r.visibleChoices()
	if i < 0 || i >= len(visible) {
		return fmt.Errorf("choice %d out of range [0,%d)", i, len(visible))
	}

	c := visible[i]
	for k, v := range c.Effects {
		r.vars[k] += v
	}
	for k, v := range c.Flags {
		r.flags[k] = v
	}

	r.tags = nil
	if c.Divert == "" {
		r.knotName, r.knot, r.pos = "", endKnot, 0
		return nil
	}
	r.enter(c.Divert)
	return nil
}

// KnotName returns the knot being played, or "" once the story has ended.
func (r *Runner) KnotName() string {
	return r.knotName
}

func (r *Runner) Var(name string) float64 {
	return r.vars[name]
}

func (r *Runner) Flag(name string) bool {
	return r.flags[name]
}

func (r *Runner) Trust() float64 {
	return r.Var(VarTrust)
}

func (r *Runner) Clarity() bool {
	return r.Flag(FlagClarity)
}

// enter moves to the named knot, following diverts through knots that have
// nothing to present.
func (r *Runner) enter(name string) {
	for range len(r.story.Knots) + 1 {
		k := r.story.Knots[name]
		if k == nil {
			slog.Warn("divert to unknown knot ends the story", "knot", name)
			r.knotName, r.knot, r.pos = "", endKnot, 0
			return
		}
		r.knotName, r.knot, r.pos = name, k, 0
		if len(k.Lines) > 0 || len(k.Choices) > 0 || k.Divert == "" {
			return
		}
		name = k.Divert
	}
}

func (r *Runner) visibleChoices() []Choice {
	var out []Choice
	for _, c := range r.knot.Choices {
		if c.When == "" {
			out = append(out, c)
			continue
		}
		res, err := expandTemplate(c.When, r.data())
		if err != nil {
			slog.Warn("evaluating choice condition", "knot", r.knotName, "choice", c.Text, "error", err)
			continue
		}
		if strings.TrimSpace(res) == "true" {
			out = append(out, c)
		}
	}
	return out
}

func (r *Runner) render(text string) string {
	out, err := expandTemplate(text, r.data())
	if err != nil {
		slog.Warn("expanding narration", "knot", r.knotName, "error", err)
		return text
	}
	return out
}

func (r *Runner) data() templateData {
	return templateData{Vars: r.vars, Flags: r.flags}
}
