package environment

import (
	"fmt"
	"math"

	"github.com/pixil98/go-errors"
)

// Decoration kinds placed around the avatar.
const (
	KindLamp     = "lamp"
	KindHand     = "hand"
	KindShape    = "shape"
	KindHospital = "hospital"
	KindLight    = "light"
)

type Mode string

const (
	ModeConstant Mode = "constant"
	ModeRampIn   Mode = "ramp-in"
	ModeRampOut  Mode = "ramp-out"
)

// State is the slice of narrative state visibility depends on.
type State struct {
	Trust   float64 `json:"trust"`
	Clarity bool    `json:"clarity"`
}

// Rule describes how visible a kind of object is for a given State.
type Rule struct {
	Mode   Mode    `json:"mode"`
	Factor float64 `json:"factor,omitempty"`
	// Gated rules stay hidden until clarity is reached.
	Gated bool `json:"gated,omitempty"`
	// Stagger delays each later instance of the kind by this much trust.
	Stagger float64 `json:"stagger,omitempty"`
}

func (r Rule) Validate() error {
	el := errors.NewErrorList()

	switch r.Mode {
	case ModeConstant, ModeRampIn, ModeRampOut:
	default:
		el.Add(fmt.Errorf("unknown mode %q", r.Mode))
	}

	if r.Factor < 0 || math.IsNaN(r.Factor) || math.IsInf(r.Factor, 0) {
		el.Add(fmt.Errorf("factor must be a non-negative number"))
	}
	if r.Stagger < 0 || math.IsNaN(r.Stagger) || math.IsInf(r.Stagger, 0) {
		el.Add(fmt.Errorf("stagger must be a non-negative number"))
	}

	return el.Err()
}

// Visibility returns the visibility in [0,1] of the index'th instance of a kind.
func (r Rule) Visibility(st State, index int) float64 {
	if r.Gated && !st.Clarity {
		return 0
	}

	t := st.Trust
	if math.IsNaN(t) {
		t = 0
	}
	if index > 0 {
		t -= float64(index) * r.Stagger
	}

	var v float64
	switch r.Mode {
	case ModeRampIn:
		v = math.Min(1, t*r.Factor)
	case ModeRampOut:
		v = math.Max(0, 1-t*r.Factor)
	default:
		v = 1
	}

	return clamp01(v)
}

func DefaultRules() map[string]Rule {
	return map[string]Rule{
		KindLamp:     {Mode: ModeConstant},
		KindHand:     {Mode: ModeRampIn, Factor: 0.25},
		KindShape:    {Mode: ModeRampOut, Factor: 0.125},
		KindHospital: {Mode: ModeRampIn, Factor: 0.25, Gated: true},
		KindLight:    {Mode: ModeRampIn, Factor: 0.125, Stagger: 1},
	}
}

// Bank maps object kinds to their visibility rules. A Bank is never mutated
// after construction and is safe for concurrent use.
type Bank struct {
	rules map[string]Rule
	debug bool
}

type BankOption func(*Bank)

// WithRules replaces or adds rules for the given kinds.
func WithRules(rules map[string]Rule) BankOption {
	return func(b *Bank) {
		for k, r := range rules {
			b.rules[k] = r
		}
	}
}

// WithDebug makes every object fully visible.
func WithDebug(debug bool) BankOption {
	return func(b *Bank) {
		b.debug = debug
	}
}

func NewBank(opts ...BankOption) *Bank {
	b := &Bank{rules: DefaultRules()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// With returns a copy of the bank with rules overlaid.
func (b *Bank) With(rules map[string]Rule) *Bank {
	nb := &Bank{rules: make(map[string]Rule, len(b.rules)+len(rules)), debug: b.debug}
	for k, r := range b.rules {
		nb.rules[k] = r
	}
	for k, r := range rules {
		nb.rules[k] = r
	}
	return nb
}

func (b *Bank) Rule(kind string) (Rule, bool) {
	r, ok := b.rules[kind]
	return r, ok
}

// Visibility of the index'th object of kind. Unknown kinds are always visible.
func (b *Bank) Visibility(kind string, index int, st State) float64 {
	if b.debug {
		return 1
	}
	r, ok := b.rules[kind]
	if !ok {
		return 1
	}
	return r.Visibility(st, index)
}

// Apply recomputes the visibility of every object in place. Instances of the
// same kind are indexed in slice order.
func (b *Bank) Apply(objs []PlacedObject, st State) {
	seen := map[string]int{}
	for i := range objs {
		kind := objs[i].Kind
		objs[i].Visibility = b.Visibility(kind, seen[kind], st)
		seen[kind]++
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
