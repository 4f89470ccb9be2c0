package scene

import (
	"time"

	"github.com/pixil98/go-lantern/internal/environment"
)

const (
	DefaultAvatarHeight = 1.8
	DefaultObjectRadius = 6.0
	DefaultFadeDuration = 2 * time.Second
)

// Config fixes which scene features are active. It is built once and shared
// by every scene.
type Config struct {
	EnableTerrain    bool
	EnableAtmosphere bool
	EnableAudio      bool
	EnableObjects    bool
	DebugVisibility  bool

	AvatarHeight float64
	ObjectRadius float64
	FadeDuration time.Duration
	Atmosphere   environment.AtmosphereConfig
}

func DefaultConfig() Config {
	return Config{
		EnableTerrain:    true,
		EnableAtmosphere: true,
		EnableAudio:      true,
		EnableObjects:    true,
		AvatarHeight:     DefaultAvatarHeight,
		ObjectRadius:     DefaultObjectRadius,
		FadeDuration:     DefaultFadeDuration,
		Atmosphere:       environment.DefaultAtmosphere(),
	}
}
