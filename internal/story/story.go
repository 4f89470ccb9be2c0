package story

import (
	"fmt"
	"slices"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-lantern/internal/environment"
	"github.com/pixil98/go-lantern/internal/storage"
)

// ExtVisibility is the extension key holding per-kind visibility rules.
const ExtVisibility = "visibility"

// Well known story variables read by the scene.
const (
	VarTrust    = "trust"
	FlagClarity = "clarity"
)

// Story is a branching narrative made of named knots.
type Story struct {
	Title     string             `json:"title"`
	Start     string             `json:"start"`
	Variables map[string]float64 `json:"variables,omitempty"`
	Flags     map[string]bool    `json:"flags,omitempty"`
	Knots     map[string]*Knot   `json:"knots"`

	storage.ExtensionState `json:"ext,omitempty"`
}

// Knot is a passage of lines followed by choices, a divert, or the end.
type Knot struct {
	Lines   []Line   `json:"lines"`
	Choices []Choice `json:"choices,omitempty"`
	Divert  string   `json:"divert,omitempty"`
}

// Line is one chunk of narration. Text is a template over the story state.
type Line struct {
	Text string   `json:"text"`
	Tags []string `json:"tags,omitempty"`
}

// Choice is a branch offered at the end of a knot. An empty Divert ends the story.
type Choice struct {
	Text    string             `json:"text"`
	Divert  string             `json:"divert,omitempty"`
	When    string             `json:"when,omitempty"`
	Effects map[string]float64 `json:"effects,omitempty"`
	Flags   map[string]bool    `json:"flags,omitempty"`
}

func (s *Story) Selector() string {
	return s.Title
}

func (s *Story) Validate() error {
	el := errors.NewErrorList()

	if s.Title == "" {
		el.Add(fmt.Errorf("title is required"))
	}
	if len(s.Knots) == 0 {
		el.Add(fmt.Errorf("at least one knot is required"))
	}
	if s.Start == "" {
		el.Add(fmt.Errorf("start is required"))
	} else if _, ok := s.Knots[s.Start]; !ok {
		el.Add(fmt.Errorf("start knot %q not found", s.Start))
	}

	names := make([]string, 0, len(s.Knots))
	for name := range s.Knots {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		k := s.Knots[name]
		if k == nil {
			el.Add(fmt.Errorf("knot %q is empty", name))
			continue
		}
		el.Add(s.validateKnot(name, k))
	}

	el.Add(s.validateDivertLoops(names))

	rules, err := s.VisibilityRules()
	if err != nil {
		el.Add(err)
	}
	kinds := make([]string, 0, len(rules))
	for kind := range rules {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	for _, kind := range kinds {
		if err := rules[kind].Validate(); err != nil {
			el.Add(fmt.Errorf("visibility rule %q: %w", kind, err))
		}
	}

	return el.Err()
}

// VisibilityRules returns the story's overrides of the default visibility
// rules, or nil if it has none.
func (s *Story) VisibilityRules() (map[string]environment.Rule, error) {
	rules, _, err := storage.Extension[map[string]environment.Rule](s.ExtensionState, ExtVisibility)
	return rules, err
}

func (s *Story) validateKnot(name string, k *Knot) error {
	el := errors.NewErrorList()

	if len(k.Choices) > 0 && k.Divert != "" {
		el.Add(fmt.Errorf("knot %q: cannot have both choices and a divert", name))
	}
	if k.Divert != "" {
		if _, ok := s.Knots[k.Divert]; !ok {
			el.Add(fmt.Errorf("knot %q: divert target %q not found", name, k.Divert))
		}
	}

	for i, l := range k.Lines {
		if _, err := parseTemplate(l.Text); err != nil {
			el.Add(fmt.Errorf("knot %q line %d: %w", name, i, err))
		}
	}

	for i, c := range k.Choices {
		if c.Text == "" {
			el.Add(fmt.Errorf("knot %q choice %d: text is required", name, i))
		}
		if c.Divert != "" {
			if _, ok := s.Knots[c.Divert]; !ok {
				el.Add(fmt.Errorf("knot %q choice %d: divert target %q not found", name, i, c.Divert))
			}
		}
		if _, err := parseTemplate(c.Text); err != nil {
			el.Add(fmt.Errorf("knot %q choice %d: %w", name, i, err))
		}
		if _, err := parseTemplate(c.When); err != nil {
			el.Add(fmt.Errorf("knot %q choice %d condition: %w", name, i, err))
		}
	}

	return el.Err()
}

// validateDivertLoops rejects chains of knots that divert to each other without
// ever producing a line or a choice.
func (s *Story) validateDivertLoops(names []string) error {
	el := errors.NewErrorList()

	for _, name := range names {
		seen := map[string]bool{}
		cur := name
		for {
			k := s.Knots[cur]
			if k == nil || len(k.Lines) > 0 || len(k.Choices) > 0 || k.Divert == "" {
				break
			}
			if seen[cur] {
				el.Add(fmt.Errorf("knot %q: diverts loop without narration", name))
				break
			}
			seen[cur] = true
			cur = k.Divert
		}
	}

	return el.Err()
}
