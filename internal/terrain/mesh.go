package terrain

import "github.com/go-gl/mathgl/mgl32"

// Mesh is the triangulated surface of a HeightField in flat vertex-buffer form.
type Mesh struct {
	Positions []float32 `json:"positions"`
	Indices   []uint32  `json:"indices"`
	Normals   []float32 `json:"normals"`
	UVs       []float32 `json:"uvs"`
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// BuildMesh triangulates the height field. The mesh is derived once and shared
// by every caller, so it must not be modified.
func (hf *HeightField) BuildMesh() *Mesh {
	hf.meshOnce.Do(func() {
		hf.mesh = buildMesh(hf)
	})
	return hf.mesh
}

func buildMesh(hf *HeightField) *Mesh {
	s := hf.subdivisions
	stride := s + 1
	vertexCount := stride * stride

	m := &Mesh{
		Positions: make([]float32, 0, vertexCount*3),
		Indices:   make([]uint32, 0, 6*s*s),
		Normals:   make([]float32, vertexCount*3),
		UVs:       make([]float32, 0, vertexCount*2),
	}

	for z := 0; z <= s; z++ {
		for x := 0; x <= s; x++ {
			v := hf.vertex(x, z)
			m.Positions = append(m.Positions, v[0], v[1], v[2])
			m.UVs = append(m.UVs, float32(x)/float32(s), float32(z)/float32(s))
		}
	}

	for z := 0; z < s; z++ {
		for x := 0; x < s; x++ {
			base := uint32(z*stride + x)
			next := base + uint32(stride)
			m.Indices = append(m.Indices,
				base, base+1, next,
				base+1, next+1, next,
			)
		}
	}

	computeNormals(m)
	return m
}

// computeNormals accumulates unnormalized face normals onto each vertex, which
// weights every face by its area, then normalizes the sums.
func computeNormals(m *Mesh) {
	acc := make([]mgl32.Vec3, m.VertexCount())

	for i := 0; i+2 < len(m.Indices); i += 3 {
		ia, ib, ic := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		n := faceNormal(position(m, ia), position(m, ib), position(m, ic))
		acc[ia] = acc[ia].Add(n)
		acc[ib] = acc[ib].Add(n)
		acc[ic] = acc[ic].Add(n)
	}

	for i, n := range acc {
		if n.Len() == 0 {
			n = mgl32.Vec3{0, 1, 0}
		} else {
			n = n.Normalize()
		}
		m.Normals[i*3] = n[0]
		m.Normals[i*3+1] = n[1]
		m.Normals[i*3+2] = n[2]
	}
}

func position(m *Mesh, i uint32) mgl32.Vec3 {
	return mgl32.Vec3{m.Positions[i*3], m.Positions[i*3+1], m.Positions[i*3+2]}
}

// faceNormal returns the unnormalized normal of triangle (a, b, c); its length
// is twice the triangle's area. For the grid winding it points +Y on flat ground.
func faceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return c.Sub(a).Cross(b.Sub(a))
}
