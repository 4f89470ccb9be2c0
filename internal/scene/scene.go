package scene

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-lantern/internal/dialogue"
	"github.com/pixil98/go-lantern/internal/environment"
	"github.com/pixil98/go-lantern/internal/terrain"
)

var up = mgl32.Vec3{0, 1, 0}

// Ground is the terrain the avatar walks on.
type Ground interface {
	environment.Grounder
	NormalAt(x, z float64) mgl32.Vec3
}

// Scene is the state a story drives through directives: where the avatar
// stands, the fog, the music, and the decorations around it.
type Scene struct {
	cfg    Config
	ground Ground
	bank   *environment.Bank

	mu          sync.RWMutex
	version     uint64
	avatar      mgl32.Vec3
	fogOverride *float64
	atmosphere  environment.Atmosphere
	mixer       *Mixer
	objects     []environment.PlacedObject
	state       environment.State
}

type Option func(*Scene)

// WithTerrain grounds the scene on hf. It has no effect unless terrain is enabled.
func WithTerrain(hf *terrain.HeightField) Option {
	return func(s *Scene) {
		if hf != nil {
			s.ground = hf
		}
	}
}

// WithVisibilityRules overlays per-kind visibility rules on the defaults.
func WithVisibilityRules(rules map[string]environment.Rule) Option {
	return func(s *Scene) {
		s.bank = s.bank.With(rules)
	}
}

func New(cfg Config, opts ...Option) *Scene {
	s := &Scene{
		cfg:   cfg,
		bank:  environment.NewBank(environment.WithDebug(cfg.DebugVisibility)),
		mixer: NewMixer(cfg.FadeDuration),
	}

	for _, opt := range opts {
		opt(s)
	}

	if !cfg.EnableTerrain {
		s.ground = nil
	}

	s.avatar = mgl32.Vec3{0, float32(s.heightAt(0, 0) + cfg.AvatarHeight), 0}
	s.refresh()

	return s
}

// Apply applies directives in order: position, fog, audio, then objects.
// Visibility and the atmosphere are then recomputed from st.
func (s *Scene) Apply(ctx context.Context, d dialogue.Directives, st environment.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.Position != nil {
		y := s.heightAt(d.Position.X, d.Position.Z) + s.cfg.AvatarHeight
		s.avatar = mgl32.Vec3{float32(d.Position.X), float32(y), float32(d.Position.Z)}
		slog.DebugContext(ctx, "avatar moved", "x", d.Position.X, "z", d.Position.Z, "y", y)
	}

	if d.Fog != nil {
		if s.cfg.EnableAtmosphere {
			fog := *d.Fog
			s.fogOverride = &fog
		} else {
			slog.DebugContext(ctx, "ignoring fog directive, atmosphere disabled")
		}
	}

	if d.AudioTrack != nil {
		if s.cfg.EnableAudio {
			if s.mixer.Play(*d.AudioTrack) {
				slog.DebugContext(ctx, "crossfading audio", "track", *d.AudioTrack)
			}
		} else {
			slog.DebugContext(ctx, "ignoring audio directive, audio disabled")
		}
	}

	if d.Objects != nil {
		if s.cfg.EnableObjects {
			s.objects = environment.Layout(d.Objects.Kinds, float64(s.avatar.X()), float64(s.avatar.Z()), s.cfg.ObjectRadius, s.ground)
			slog.DebugContext(ctx, "objects replaced", "kinds", d.Objects.Kinds)
		} else {
			slog.DebugContext(ctx, "ignoring objects directive, objects disabled")
		}
	}

	s.state = st
	s.refresh()
}

// Tick advances the audio crossfade and reports whether the scene changed.
func (s *Scene) Tick(d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mixer.Tick(d) {
		return false
	}
	s.version++
	return true
}

// Version increases every time the scene changes.
func (s *Scene) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// refresh recomputes everything derived from narrative state. Callers hold mu.
func (s *Scene) refresh() {
	s.bank.Apply(s.objects, s.state)

	if s.cfg.EnableAtmosphere {
		s.atmosphere = s.cfg.Atmosphere.At(s.state.Trust)
		if s.fogOverride != nil {
			s.atmosphere.FogDensity = *s.fogOverride
		}
	} else {
		s.atmosphere = environment.Atmosphere{}
	}

	s.version++
}

func (s *Scene) heightAt(x, z float64) float64 {
	if s.ground == nil {
		return 0
	}
	return s.ground.HeightAt(x, z)
}

func (s *Scene) normalAt(x, z float64) mgl32.Vec3 {
	if s.ground == nil {
		return up
	}
	return s.ground.NormalAt(x, z)
}

// Snapshot is a point in time view of a Scene.
type Snapshot struct {
	Version      uint64                     `json:"version"`
	Avatar       mgl32.Vec3                 `json:"avatar"`
	GroundHeight float64                    `json:"ground_height"`
	GroundNormal mgl32.Vec3                 `json:"ground_normal"`
	Atmosphere   environment.Atmosphere     `json:"atmosphere"`
	Audio        []Track                    `json:"audio,omitempty"`
	Objects      []environment.PlacedObject `json:"objects"`
	State        environment.State          `json:"state"`
}

func (s *Scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	x, z := float64(s.avatar.X()), float64(s.avatar.Z())
	return Snapshot{
		Version:      s.version,
		Avatar:       s.avatar,
		GroundHeight: s.heightAt(x, z),
		GroundNormal: s.normalAt(x, z),
		Atmosphere:   s.atmosphere,
		Audio:        s.mixer.Tracks(),
		Objects:      slices.Clone(s.objects),
		State:        s.state,
	}
}
