package environment

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Grounder answers ground height queries.
type Grounder interface {
	HeightAt(x, z float64) float64
}

type PlacedObject struct {
	ID       string     `json:"id"`
	Kind     string     `json:"kind"`
	Position mgl32.Vec3 `json:"position"`
	// Yaw is the rotation about +Y in radians; the object's local +Z faces the center.
	Yaw        float32 `json:"yaw"`
	Visibility float64 `json:"visibility"`
}

// Layout places one object per kind evenly on a circle of radius around
// (cx, cz). Heights come from ground; a nil ground places objects at y=0.
// Visibility is left at zero for the caller to compute.
func Layout(kinds []string, cx, cz, radius float64, ground Grounder) []PlacedObject {
	if len(kinds) == 0 {
		return nil
	}

	objs := make([]PlacedObject, 0, len(kinds))
	for i, kind := range kinds {
		angle := float64(i) / float64(len(kinds)) * 2 * math.Pi
		x := cx + math.Cos(angle)*radius
		z := cz + math.Sin(angle)*radius

		var y float64
		if ground != nil {
			y = ground.HeightAt(x, z)
		}

		objs = append(objs, PlacedObject{
			ID:       uuid.New().String(),
			Kind:     kind,
			Position: mgl32.Vec3{float32(x), float32(y), float32(z)},
			Yaw:      float32(math.Atan2(cx-x, cz-z)),
		})
	}

	return objs
}
