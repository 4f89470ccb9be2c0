package dialogue

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	tagPattern      = regexp.MustCompile(`^([A-Za-z]+)(?:\s*:\s*|\s+|$)(.*)$`)
	tuplePattern    = regexp.MustCompile(`^\((.*)\)$`)
	objectPattern   = regexp.MustCompile(`^\{(.*)\}$`)
	keyValuePattern = regexp.MustCompile(`^([A-Za-z]+)\s*:\s*(.+)$`)
)

const (
	tagPosition = "position"
	tagFog      = "fog"
	tagAudio    = "audio"
	tagObjects  = "objects"
)

// ParseTag turns a narration tag into a directive. Tags that are not directives
// report ok=false. A recognized tag with a bad payload returns an error.
func ParseTag(tag string) (d Directives, ok bool, err error) {
	m := tagPattern.FindStringSubmatch(strings.TrimSpace(tag))
	if m == nil {
		return Directives{}, false, nil
	}
	keyword, payload := strings.ToLower(m[1]), strings.TrimSpace(m[2])

	switch keyword {
	case tagPosition:
		p, err := parsePosition(payload)
		if err != nil {
			return Directives{}, true, fmt.Errorf("parsing position tag %q: %w", tag, err)
		}
		return Directives{Position: &p}, true, nil

	case tagFog:
		f, err := parseFloat(payload)
		if err != nil {
			return Directives{}, true, fmt.Errorf("parsing fog tag %q: %w", tag, err)
		}
		if f < 0 {
			return Directives{}, true, fmt.Errorf("parsing fog tag %q: density must not be negative", tag)
		}
		return Directives{Fog: &f}, true, nil

	case tagAudio:
		if payload == "" {
			return Directives{}, true, fmt.Errorf("parsing audio tag %q: track name is required", tag)
		}
		return Directives{AudioTrack: &payload}, true, nil

	case tagObjects:
		return Directives{Objects: parseObjects(payload)}, true, nil

	default:
		return Directives{}, false, nil
	}
}

// parsePosition accepts "(X, Z)" and "{x: X, z: Z}".
func parsePosition(payload string) (Position, error) {
	if m := tuplePattern.FindStringSubmatch(payload); m != nil {
		parts := strings.Split(m[1], ",")
		if len(parts) != 2 {
			return Position{}, fmt.Errorf("expected 2 coordinates, got %d", len(parts))
		}
		x, err := parseFloat(parts[0])
		if err != nil {
			return Position{}, err
		}
		z, err := parseFloat(parts[1])
		if err != nil {
			return Position{}, err
		}
		return Position{X: x, Z: z}, nil
	}

	if m := objectPattern.FindStringSubmatch(payload); m != nil {
		var x, z *float64
		for _, part := range strings.Split(m[1], ",") {
			kv := keyValuePattern.FindStringSubmatch(strings.TrimSpace(part))
			if kv == nil {
				return Position{}, fmt.Errorf("malformed field %q", strings.TrimSpace(part))
			}
			v, err := parseFloat(kv[2])
			if err != nil {
				return Position{}, err
			}
			switch strings.ToLower(kv[1]) {
			case "x":
				x = &v
			case "z":
				z = &v
			default:
				return Position{}, fmt.Errorf("unknown field %q", kv[1])
			}
		}
		if x == nil || z == nil {
			return Position{}, fmt.Errorf("both x and z are required")
		}
		return Position{X: *x, Z: *z}, nil
	}

	return Position{}, fmt.Errorf("expected (x, z) or {x: X, z: Z}")
}

func parseObjects(payload string) *ObjectList {
	list := &ObjectList{Kinds: []string{}}
	for _, k := range strings.Split(payload, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			list.Kinds = append(list.Kinds, k)
		}
	}
	return list
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", strings.TrimSpace(s))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", strings.TrimSpace(s))
	}
	return f, nil
}
