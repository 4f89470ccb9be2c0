package scene

import (
	"slices"
	"time"
)

// Track is one audio resource playing in a Mixer.
type Track struct {
	Name   string  `json:"name"`
	Volume float64 `json:"volume"`
}

// Mixer crossfades between named audio tracks. It is not safe for concurrent
// use; Scene serializes access.
type Mixer struct {
	fade    time.Duration
	current *Track
	fading  []*Track
}

func NewMixer(fade time.Duration) *Mixer {
	return &Mixer{fade: fade}
}

// Current returns the name of the track fading in or playing, or "".
func (m *Mixer) Current() string {
	if m.current == nil {
		return ""
	}
	return m.current.Name
}

// Play starts fading name in and every other track out. The first track
// plays at full volume straight away. It reports false when name is already
// the current track.
func (m *Mixer) Play(name string) bool {
	if m.current != nil && m.current.Name == name {
		return false
	}

	next := &Track{Name: name}
	if i := slices.IndexFunc(m.fading, func(t *Track) bool { return t.Name == name }); i >= 0 {
		next = m.fading[i]
		m.fading = slices.Delete(m.fading, i, i+1)
	}

	if m.current != nil {
		m.fading = append(m.fading, m.current)
	} else {
		// Nothing to fade out; start at full volume.
		next.Volume = 1
	}
	m.current = next

	if m.fade <= 0 {
		m.current.Volume = 1
		m.fading = nil
	}
	return true
}

// Tick advances all fades by d and reports whether any volume changed.
func (m *Mixer) Tick(d time.Duration) bool {
	if d <= 0 {
		return false
	}

	step := 1.0
	if m.fade > 0 {
		step = float64(d) / float64(m.fade)
	}

	changed := false
	if m.current != nil && m.current.Volume < 1 {
		m.current.Volume = min(1, m.current.Volume+step)
		changed = true
	}

	kept := m.fading[:0]
	for _, t := range m.fading {
		t.Volume = max(0, t.Volume-step)
		changed = true
		if t.Volume > 0 {
			kept = append(kept, t)
		}
	}
	m.fading = kept

	return changed
}

// Tracks lists the audible tracks, current first.
func (m *Mixer) Tracks() []Track {
	var out []Track
	if m.current != nil {
		out = append(out, *m.current)
	}
	for _, t := range m.fading {
		out = append(out, *t)
	}
	return out
}
