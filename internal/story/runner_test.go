package story

import (
	"context"
	"testing"

	"github.com/pixil98/go-lantern/internal/dialogue"
	"github.com/pixil98/go-testutil"
)

func hollowStory() *Story {
	return &Story{
		Title:     "The Hollow",
		Start:     "intro",
		Variables: map[string]float64{VarTrust: 1},
		Knots: map[string]*Knot{
			"intro": {
				Lines: []Line{
					{Text: "A lamp hums in the field.", Tags: []string{"position: (1,2)"}},
					{Text: "The nurse waits.", Tags: []string{"fog: 0.5"}},
				},
				Choices: []Choice{
					{Text: "Take her hand", Divert: "trusted", Effects: map[string]float64{VarTrust: 3}},
					{Text: "Walk away", Divert: "alone", Flags: map[string]bool{FlagClarity: true}},
					{Text: "Ask about the ward", Divert: "ward", When: `{{ ge .Vars.trust 4.0 }}`},
				},
			},
			"trusted": {
				Lines:   []Line{{Text: "Trust is now {{ .Vars.trust }}."}},
				Choices: []Choice{{Text: "Ask about the ward", Divert: "ward", When: `{{ ge .Vars.trust 4.0 }}`}, {Text: "Leave"}},
			},
			"alone": {
				Divert: "outro",
			},
			"ward": {
				Lines: []Line{{Text: "White corridors.", Tags: []string{"objects: hospital, lamp"}}},
			},
			"outro": {
				Lines: []Line{{Text: "{{ if .Flags.clarity }}You see clearly.{{ else }}Fog.{{ end }}"}},
			},
		},
	}
}

func TestRunner_ImplementsGraph(t *testing.T) {
	var _ dialogue.Graph = NewRunner(hollowStory())
}

func TestRunner_WithCursor(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(hollowStory())
	c := dialogue.NewCursor(r)

	c.Advance(ctx)
	testutil.AssertEqual(t, "intro text", c.Text(), "A lamp hums in the field.\nThe nurse waits.\n")
	testutil.AssertEqual(t, "intro state", c.State(), dialogue.StateAwaitingChoice)
	testutil.AssertEqual(t, "intro choices", len(c.Choices()), 2)
	d := c.Directives()
	if d.Position == nil || *d.Position != (dialogue.Position{X: 1, Z: 2}) {
		t.Errorf("position = %v, expected (1,2)", d.Position)
	}
	if d.Fog == nil || *d.Fog != 0.5 {
		t.Errorf("fog = %v, expected 0.5", d.Fog)
	}

	err := c.Choose(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "trust", r.Trust(), 4.0)
	testutil.AssertEqual(t, "trusted text", c.Text(), "Trust is now 4.\n")
	testutil.AssertEqual(t, "trusted choices", len(c.Choices()), 2)
	testutil.AssertEqual(t, "first choice", c.Choices()[0].Text, "Ask about the ward")

	err = c.Choose(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "ward text", c.Text(), "White corridors.\n")
	testutil.AssertEqual(t, "ward state", c.State(), dialogue.StateExhausted)
	if c.Directives().Objects == nil {
		t.Fatal("expected objects directive")
	}
	testutil.AssertEqual(t, "objects", len(c.Directives().Objects.Kinds), 2)
}

func TestRunner_DivertWithoutLines(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(hollowStory())
	c := dialogue.NewCursor(r)
	c.Advance(ctx)

	err := c.Choose(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "clarity", r.Clarity(), true)
	testutil.AssertEqual(t, "knot", r.KnotName(), "outro")
	testutil.AssertEqual(t, "text", c.Text(), "You see clearly.\n")
	testutil.AssertEqual(t, "state", c.State(), dialogue.StateExhausted)
}

func TestRunner_ChoiceWithoutDivertEnds(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(hollowStory())
	c := dialogue.NewCursor(r)
	c.Advance(ctx)

	if err := c.Choose(ctx, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Choose(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "knot", r.KnotName(), "")
	testutil.AssertEqual(t, "text", c.Text(), "")
	testutil.AssertEqual(t, "state", c.State(), dialogue.StateExhausted)
}

func TestRunner_ChooseChoiceIndex(t *testing.T) {
	tests := map[string]struct {
		continues int
		index     int
		expErr    string
	}{
		"narration pending": {
			continues: 1,
			index:     0,
			expErr:    `no choices pending in knot "intro"`,
		},
		"out of range": {
			continues: 2,
			index:     2,
			expErr:    "choice 2 out of range [0,2)",
		},
		"hidden choice is not selectable": {
			continues: 2,
			index:     2,
			expErr:    "out of range",
		},
		"valid": {
			continues: 2,
			index:     1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewRunner(hollowStory())
			for range tt.continues {
				r.Continue()
			}

			err := r.ChooseChoiceIndex(tt.index)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRunner_Variables(t *testing.T) {
	s := hollowStory()
	r := NewRunner(s)
	r.Continue()
	r.Continue()
	if err := r.ChooseChoiceIndex(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "runner trust", r.Trust(), 4.0)
	testutil.AssertEqual(t, "story default untouched", s.Variables[VarTrust], 1.0)
}
