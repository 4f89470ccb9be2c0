package terrain

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidParameter = errors.New("invalid terrain parameter")

// gridEpsilon absorbs the rounding error of converting a grid-aligned world
// coordinate back into a cell index, so exact grid points land on their own cell.
const gridEpsilon = 1e-6

// HeightField is an immutable square grid of elevation samples centered on the
// world origin.
type HeightField struct {
	size         float64
	subdivisions int
	samples      []float32

	meshOnce sync.Once
	mesh     *Mesh
}

// New generates a height field covering size x size world units with the given
// number of grid subdivisions per axis. Zero subdivisions degenerates to a single quad.
func New(size float64, subdivisions int) (*HeightField, error) {
	if subdivisions < 0 {
		return nil, fmt.Errorf("%w: subdivisions must not be negative, got %d", ErrInvalidParameter, subdivisions)
	}
	if math.IsNaN(size) || math.IsInf(size, 0) {
		return nil, fmt.Errorf("%w: size must be finite, got %v", ErrInvalidParameter, size)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %v", ErrInvalidParameter, size)
	}
	if subdivisions == 0 {
		subdivisions = 1
	}

	return &HeightField{
		size:         size,
		subdivisions: subdivisions,
		samples:      Generate(size, subdivisions),
	}, nil
}

// Generate computes the row-major (z, x) samples of the height field. It is pure:
// the same arguments always yield bit-identical output.
func Generate(size float64, subdivisions int) []float32 {
	if subdivisions < 1 {
		subdivisions = 1
	}
	stride := subdivisions + 1
	samples := make([]float32, stride*stride)

	for z := 0; z <= subdivisions; z++ {
		for x := 0; x <= subdivisions; x++ {
			samples[z*stride+x] = float32(heightFormula(
				worldCoord(x, size, subdivisions),
				worldCoord(z, size, subdivisions),
			))
		}
	}

	return samples
}

// heightFormula is a sum of rolling sinusoids plus a radial ripple, kept non-negative.
func heightFormula(xPos, zPos float64) float64 {
	h := 0.0
	h += math.Sin(xPos*0.1) * 2
	h += math.Sin(zPos*0.1) * 2
	h += math.Sin((xPos+zPos)*0.15) * 1.5
	h += math.Sin(math.Sqrt(xPos*xPos+zPos*zPos)*0.2) * 2
	return math.Max(0, h)
}

func worldCoord(i int, size float64, subdivisions int) float64 {
	return (float64(i)/float64(subdivisions) - 0.5) * size
}

func (hf *HeightField) Size() float64 {
	return hf.size
}

func (hf *HeightField) Subdivisions() int {
	return hf.subdivisions
}

// Samples returns a copy of the raw samples.
func (hf *HeightField) Samples() []float32 {
	out := make([]float32, len(hf.samples))
	copy(out, hf.samples)
	return out
}

// Sample returns the stored height of grid cell (x, z) and whether it exists.
func (hf *HeightField) Sample(x, z int) (float32, bool) {
	if x < 0 || x > hf.subdivisions || z < 0 || z > hf.subdivisions {
		return 0, false
	}
	return hf.samples[z*(hf.subdivisions+1)+x], true
}

// WorldPosition returns the world x/z of grid cell (x, z).
func (hf *HeightField) WorldPosition(x, z int) (float64, float64) {
	return worldCoord(x, hf.size, hf.subdivisions), worldCoord(z, hf.size, hf.subdivisions)
}

// HeightAt returns the height of the grid cell nearest below (x, z). This is a
// cell lookup, not an interpolation. Points off the grid report 0.
func (hf *HeightField) HeightAt(x, z float64) float64 {
	xi, ok := hf.cellIndex(x)
	if !ok {
		return 0
	}
	zi, ok := hf.cellIndex(z)
	if !ok {
		return 0
	}
	h, _ := hf.Sample(xi, zi)
	return float64(h)
}

// NormalAt averages the two face normals of the cell containing (x, z). The
// last row and column of samples belong to the preceding cell. Points off the
// grid report straight up.
func (hf *HeightField) NormalAt(x, z float64) mgl32.Vec3 {
	xi, ok := hf.cellIndex(x)
	if !ok {
		return mgl32.Vec3{0, 1, 0}
	}
	zi, ok := hf.cellIndex(z)
	if !ok {
		return mgl32.Vec3{0, 1, 0}
	}
	xi = min(xi, hf.subdivisions-1)
	zi = min(zi, hf.subdivisions-1)

	a, b, c, d := hf.cellCorners(xi, zi)
	n := faceNormal(a, b, c).Add(faceNormal(b, d, c))
	if n.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return n.Normalize()
}

func (hf *HeightField) cellIndex(c float64) (int, bool) {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0, false
	}
	half := hf.size / 2
	f := math.Floor(((c+half)/hf.size)*float64(hf.subdivisions) + gridEpsilon)
	if f < 0 || f > float64(hf.subdivisions) {
		return 0, false
	}
	return int(f), true
}

func (hf *HeightField) vertex(x, z int) mgl32.Vec3 {
	wx, wz := hf.WorldPosition(x, z)
	h, _ := hf.Sample(x, z)
	return mgl32.Vec3{float32(wx), h, float32(wz)}
}

// cellCorners returns the corners of cell (x, z) in triangulation order:
// a=(x,z) b=(x+1,z) c=(x,z+1) d=(x+1,z+1).
func (hf *HeightField) cellCorners(x, z int) (a, b, c, d mgl32.Vec3) {
	return hf.vertex(x, z), hf.vertex(x+1, z), hf.vertex(x, z+1), hf.vertex(x+1, z+1)
}
