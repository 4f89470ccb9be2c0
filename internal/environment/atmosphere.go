package environment

import "math"

// MaxTrust is the trust level at which the atmosphere is fully clear.
const MaxTrust = 8

const (
	minFogDensity = 0.002
	minEmitRate   = 20
)

// AtmosphereConfig holds the densest settings, used when trust is zero.
type AtmosphereConfig struct {
	FogDensity          float64 `json:"fog_density"`
	GroundMistRate      float64 `json:"ground_mist_rate"`
	AtmosphericMistRate float64 `json:"atmospheric_mist_rate"`
}

func DefaultAtmosphere() AtmosphereConfig {
	return AtmosphereConfig{
		FogDensity:          0.05,
		GroundMistRate:      200,
		AtmosphericMistRate: 80,
	}
}

type Atmosphere struct {
	FogDensity          float64 `json:"fog_density"`
	GroundMistRate      float64 `json:"ground_mist_rate"`
	AtmosphericMistRate float64 `json:"atmospheric_mist_rate"`
}

// At maps trust in [0, MaxTrust] onto the atmosphere. Fog thins as trust
// grows while the mist emitters speed up.
func (c AtmosphereConfig) At(trust float64) Atmosphere {
	p := trust / MaxTrust
	if math.IsNaN(p) || p < 0 {
		p = 0
	}
	p = math.Min(1, p)

	return Atmosphere{
		FogDensity:          minFogDensity + (c.FogDensity-minFogDensity)*(1-p),
		GroundMistRate:      minEmitRate + (c.GroundMistRate-minEmitRate)*p,
		AtmosphericMistRate: minEmitRate + (c.AtmosphericMistRate-minEmitRate)*p,
	}
}
