package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-lantern/internal/scene"
)

// SceneConfig toggles scene features. Unset features are enabled.
type SceneConfig struct {
	Terrain    *bool `json:"terrain,omitempty"`
	Atmosphere *bool `json:"atmosphere,omitempty"`
	Audio      *bool `json:"audio,omitempty"`
	Objects    *bool `json:"objects,omitempty"`

	DebugVisibility bool `json:"debug_visibility,omitempty"`

	AvatarHeight        *float64 `json:"avatar_height,omitempty"`
	ObjectRadius        float64  `json:"object_radius,omitempty"`
	FadeDuration        string   `json:"fade_duration,omitempty"`
	FogDensity          float64  `json:"fog_density,omitempty"`
	GroundMistRate      float64  `json:"ground_mist_rate,omitempty"`
	AtmosphericMistRate float64  `json:"atmospheric_mist_rate,omitempty"`
}

func (c *SceneConfig) validate() error {
	el := errors.NewErrorList()

	if c.FadeDuration != "" {
		d, err := time.ParseDuration(c.FadeDuration)
		if err != nil {
			el.Add(fmt.Errorf("scene: parsing fade_duration: %w", err))
		} else if d < 0 {
			el.Add(fmt.Errorf("scene: fade_duration cannot be negative"))
		}
	}
	if c.ObjectRadius < 0 {
		el.Add(fmt.Errorf("scene: object_radius cannot be negative"))
	}
	if c.FogDensity < 0 {
		el.Add(fmt.Errorf("scene: fog_density cannot be negative"))
	}
	if c.GroundMistRate < 0 || c.AtmosphericMistRate < 0 {
		el.Add(fmt.Errorf("scene: mist rates cannot be negative"))
	}

	return el.Err()
}

// BuildSceneConfig overlays the configured values on scene.DefaultConfig.
func (c *SceneConfig) BuildSceneConfig() scene.Config {
	cfg := scene.DefaultConfig()

	cfg.EnableTerrain = enabled(c.Terrain)
	cfg.EnableAtmosphere = enabled(c.Atmosphere)
	cfg.EnableAudio = enabled(c.Audio)
	cfg.EnableObjects = enabled(c.Objects)
	cfg.DebugVisibility = c.DebugVisibility

	if c.AvatarHeight != nil {
		cfg.AvatarHeight = *c.AvatarHeight
	}
	if c.ObjectRadius > 0 {
		cfg.ObjectRadius = c.ObjectRadius
	}
	if d, err := time.ParseDuration(c.FadeDuration); err == nil {
		cfg.FadeDuration = d
	}
	if c.FogDensity > 0 {
		cfg.Atmosphere.FogDensity = c.FogDensity
	}
	if c.GroundMistRate > 0 {
		cfg.Atmosphere.GroundMistRate = c.GroundMistRate
	}
	if c.AtmosphericMistRate > 0 {
		cfg.Atmosphere.AtmosphericMistRate = c.AtmosphericMistRate
	}

	return cfg
}

func enabled(b *bool) bool {
	return b == nil || *b
}
