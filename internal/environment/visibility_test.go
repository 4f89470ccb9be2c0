package environment

import (
	"math"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestRule_Visibility(t *testing.T) {
	tests := map[string]struct {
		rule  Rule
		state State
		index int
		exp   float64
	}{
		"constant": {
			rule:  Rule{Mode: ModeConstant},
			state: State{Trust: 0},
			exp:   1,
		},
		"ramp in at zero": {
			rule:  Rule{Mode: ModeRampIn, Factor: 2},
			state: State{Trust: 0},
			exp:   0,
		},
		"ramp in clamped": {
			rule:  Rule{Mode: ModeRampIn, Factor: 2},
			state: State{Trust: 0.5},
			exp:   1,
		},
		"ramp in halfway": {
			rule:  Rule{Mode: ModeRampIn, Factor: 2},
			state: State{Trust: 0.25},
			exp:   0.5,
		},
		"ramp out at zero": {
			rule:  Rule{Mode: ModeRampOut, Factor: 0.125},
			state: State{Trust: 0},
			exp:   1,
		},
		"ramp out halfway": {
			rule:  Rule{Mode: ModeRampOut, Factor: 0.125},
			state: State{Trust: 4},
			exp:   0.5,
		},
		"ramp out clamped": {
			rule:  Rule{Mode: ModeRampOut, Factor: 0.125},
			state: State{Trust: 20},
			exp:   0,
		},
		"negative trust": {
			rule:  Rule{Mode: ModeRampIn, Factor: 1},
			state: State{Trust: -3},
			exp:   0,
		},
		"nan trust": {
			rule:  Rule{Mode: ModeRampIn, Factor: 1},
			state: State{Trust: math.NaN()},
			exp:   0,
		},
		"gated without clarity": {
			rule:  Rule{Mode: ModeConstant, Gated: true},
			state: State{Trust: 8},
			exp:   0,
		},
		"gated with clarity": {
			rule:  Rule{Mode: ModeRampIn, Factor: 0.25, Gated: true},
			state: State{Trust: 2, Clarity: true},
			exp:   0.5,
		},
		"stagger first instance": {
			rule:  Rule{Mode: ModeRampIn, Factor: 0.5, Stagger: 1},
			state: State{Trust: 2},
			index: 0,
			exp:   1,
		},
		"stagger later instance": {
			rule:  Rule{Mode: ModeRampIn, Factor: 0.5, Stagger: 1},
			state: State{Trust: 2},
			index: 1,
			exp:   0.5,
		},
		"stagger not reached": {
			rule:  Rule{Mode: ModeRampIn, Factor: 0.5, Stagger: 1},
			state: State{Trust: 2},
			index: 3,
			exp:   0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "visibility", tt.rule.Visibility(tt.state, tt.index), tt.exp)
		})
	}
}

func TestRule_Validate(t *testing.T) {
	tests := map[string]struct {
		rule   Rule
		expErr string
	}{
		"valid":            {rule: Rule{Mode: ModeRampIn, Factor: 1}},
		"unknown mode":     {rule: Rule{Mode: "blink"}, expErr: `unknown mode "blink"`},
		"empty mode":       {rule: Rule{}, expErr: `unknown mode ""`},
		"negative factor":  {rule: Rule{Mode: ModeRampIn, Factor: -1}, expErr: "factor must be"},
		"nan factor":       {rule: Rule{Mode: ModeRampIn, Factor: math.NaN()}, expErr: "factor must be"},
		"negative stagger": {rule: Rule{Mode: ModeConstant, Stagger: -1}, expErr: "stagger must be"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestDefaultRules_Valid(t *testing.T) {
	for kind, r := range DefaultRules() {
		if err := r.Validate(); err != nil {
			t.Errorf("default rule %q invalid: %v", kind, err)
		}
	}
}

func TestBank_Visibility(t *testing.T) {
	tests := map[string]struct {
		bank  *Bank
		kind  string
		state State
		exp   float64
	}{
		"lamp always visible": {
			bank: NewBank(),
			kind: KindLamp,
			exp:  1,
		},
		"hand hidden without trust": {
			bank: NewBank(),
			kind: KindHand,
			exp:  0,
		},
		"hand ramps with trust": {
			bank:  NewBank(),
			kind:  KindHand,
			state: State{Trust: 2},
			exp:   0.5,
		},
		"hospital gated": {
			bank:  NewBank(),
			kind:  KindHospital,
			state: State{Trust: 8},
			exp:   0,
		},
		"unknown kind visible": {
			bank: NewBank(),
			kind: "lantern",
			exp:  1,
		},
		"debug forces visible": {
			bank: NewBank(WithDebug(true)),
			kind: KindHospital,
			exp:  1,
		},
		"override rule": {
			bank: NewBank(WithRules(map[string]Rule{KindLamp: {Mode: ModeRampIn, Factor: 1}})),
			kind: KindLamp,
			exp:  0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "visibility", tt.bank.Visibility(tt.kind, 0, tt.state), tt.exp)
		})
	}
}

func TestBank_With(t *testing.T) {
	base := NewBank(WithDebug(true))
	overlaid := base.With(map[string]Rule{KindHand: {Mode: ModeConstant}})

	r, ok := overlaid.Rule(KindHand)
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "overlaid mode", r.Mode, ModeConstant)
	testutil.AssertEqual(t, "debug kept", overlaid.debug, true)

	r, _ = base.Rule(KindHand)
	testutil.AssertEqual(t, "base untouched", r.Mode, ModeRampIn)
}

func TestBank_Apply(t *testing.T) {
	objs := []PlacedObject{
		{Kind: KindLight},
		{Kind: KindLamp},
		{Kind: KindLight},
		{Kind: KindLight},
	}

	NewBank().Apply(objs, State{Trust: 12})

	// light ramps in at 0.125 per trust with a stagger of 1 per instance.
	testutil.AssertEqual(t, "light 0", objs[0].Visibility, 1.0)
	testutil.AssertEqual(t, "lamp", objs[1].Visibility, 1.0)
	testutil.AssertEqual(t, "light 1", objs[2].Visibility, 1.0)
	testutil.AssertEqual(t, "light 2", objs[3].Visibility, 1.0)

	NewBank().Apply(objs, State{Trust: 4})
	testutil.AssertEqual(t, "light 0 at 4", objs[0].Visibility, 0.5)
	testutil.AssertEqual(t, "light 1 at 4", objs[2].Visibility, 0.375)
	testutil.AssertEqual(t, "light 2 at 4", objs[3].Visibility, 0.25)
}
