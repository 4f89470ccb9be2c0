package dialogue

import (
	"reflect"
	"testing"
)

func TestParseTag(t *testing.T) {
	tests := map[string]struct {
		tag    string
		exp    Directives
		expOk  bool
		expErr bool
	}{
		"position tuple": {
			tag:   "position: (1, 2)",
			exp:   Directives{Position: &Position{X: 1, Z: 2}},
			expOk: true,
		},
		"position tuple no spaces": {
			tag:   "position:(-3.5,4)",
			exp:   Directives{Position: &Position{X: -3.5, Z: 4}},
			expOk: true,
		},
		"position object": {
			tag:   "position: {x: 10, z: -2.25}",
			exp:   Directives{Position: &Position{X: 10, Z: -2.25}},
			expOk: true,
		},
		"position object reordered": {
			tag:   "position: {z: 7, x: 8}",
			exp:   Directives{Position: &Position{X: 8, Z: 7}},
			expOk: true,
		},
		"position tuple wrong arity": {
			tag:    "position: (1, 2, 3)",
			expOk:  true,
			expErr: true,
		},
		"position tuple not numbers": {
			tag:    "position: (north, south)",
			expOk:  true,
			expErr: true,
		},
		"position object missing z": {
			tag:    "position: {x: 1}",
			expOk:  true,
			expErr: true,
		},
		"position object unknown field": {
			tag:    "position: {x: 1, y: 2}",
			expOk:  true,
			expErr: true,
		},
		"position bare numbers": {
			tag:    "position: 1, 2",
			expOk:  true,
			expErr: true,
		},
		"fog": {
			tag:   "fog: 0.02",
			exp:   Directives{Fog: fptr(0.02)},
			expOk: true,
		},
		"fog negative": {
			tag:    "fog: -1",
			expOk:  true,
			expErr: true,
		},
		"fog nan": {
			tag:    "fog: NaN",
			expOk:  true,
			expErr: true,
		},
		"audio": {
			tag:   "audio hospital_hum.mp3",
			exp:   Directives{AudioTrack: strptr("hospital_hum.mp3")},
			expOk: true,
		},
		"audio with colon": {
			tag:   "audio: forest night.ogg",
			exp:   Directives{AudioTrack: strptr("forest night.ogg")},
			expOk: true,
		},
		"audio missing track": {
			tag:    "audio",
			expOk:  true,
			expErr: true,
		},
		"objects": {
			tag:   "objects: lamp, hand , shape",
			exp:   Directives{Objects: &ObjectList{Kinds: []string{"lamp", "hand", "shape"}}},
			expOk: true,
		},
		"objects empty": {
			tag:   "objects:",
			exp:   Directives{Objects: &ObjectList{Kinds: []string{}}},
			expOk: true,
		},
		"objects skips blanks": {
			tag:   "objects: lamp,,",
			exp:   Directives{Objects: &ObjectList{Kinds: []string{"lamp"}}},
			expOk: true,
		},
		"unknown keyword": {
			tag: "speaker: Nurse",
		},
		"keyword prefix is not a match": {
			tag: "audiobook chapter one",
		},
		"free text": {
			tag: "# just a note",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok, err := ParseTag(tt.tag)

			if ok != tt.expOk {
				t.Errorf("ok = %v, expected %v", ok, tt.expOk)
			}

			if tt.expErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !reflect.DeepEqual(got, tt.exp) {
				t.Errorf("got %+v, expected %+v", got, tt.exp)
			}
		})
	}
}
