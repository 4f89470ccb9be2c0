package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-lantern/internal/terrain"
)

const (
	defaultTerrainSize         = 100
	defaultTerrainSubdivisions = 100
)

type TerrainConfig struct {
	Size         float64 `json:"size,omitempty"`
	Subdivisions int     `json:"subdivisions,omitempty"`
}

func (c *TerrainConfig) validate() error {
	el := errors.NewErrorList()

	if c.Size < 0 {
		el.Add(fmt.Errorf("terrain: size cannot be negative"))
	}
	if c.Subdivisions < 0 {
		el.Add(fmt.Errorf("terrain: subdivisions cannot be negative"))
	}

	return el.Err()
}

func (c *TerrainConfig) BuildHeightField() (*terrain.HeightField, error) {
	size := c.Size
	if size == 0 {
		size = defaultTerrainSize
	}
	subdivisions := c.Subdivisions
	if subdivisions == 0 {
		subdivisions = defaultTerrainSubdivisions
	}

	return terrain.New(size, subdivisions)
}
