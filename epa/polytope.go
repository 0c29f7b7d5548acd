package epa

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/dynamis/gjk"
)

// Face is one triangle of the expanding polytope: three vertices, an
// outward unit normal, and the plane's distance from the origin.
type Face struct {
	Points   [3]mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// edgeEntry counts how many visible faces share an edge. Edges seen exactly
// once form the silhouette that new faces are stitched onto; edges seen
// twice are interior to the removed region.
type edgeEntry struct {
	a, b  mgl64.Vec3
	count int
}

// polytope is the mutable hull EPA expands. Faces keep outward normals by
// orienting against the hull centroid.
type polytope struct {
	faces   []Face
	edges   []edgeEntry
	visible []int
}

// init builds the four starting faces from a GJK tetrahedron. It reports
// false when the tetrahedron is too flat to orient faces.
func (p *polytope) init(simplex gjk.Simplex) bool {
	p.faces = make([]Face, 0, 16)
	p.edges = make([]edgeEntry, 0, 16)
	p.visible = make([]int, 0, 8)

	v0, v1, v2, v3 := simplex.Points[0], simplex.Points[1], simplex.Points[2], simplex.Points[3]
	centroid := v0.Add(v1).Add(v2).Add(v3).Mul(0.25)

	for _, tri := range [4][3]mgl64.Vec3{
		{v0, v1, v2},
		{v0, v2, v3},
		{v0, v3, v1},
		{v1, v3, v2},
	} {
		if face, ok := makeFace(tri[0], tri[1], tri[2], centroid); ok {
			p.faces = append(p.faces, face)
		}
	}
	return len(p.faces) >= 3
}

// makeFace orients a triangle's normal away from the reference point
// (the hull centroid) and computes its plane distance. Zero-area triangles
// are rejected.
func makeFace(a, b, c, inside mgl64.Vec3) (Face, bool) {
	normal := b.Sub(a).Cross(c.Sub(a))
	length := normal.Len()
	if length < 1e-10 {
		return Face{}, false
	}
	normal = normal.Mul(1 / length)

	// The centroid is interior by construction, so "away from it" is
	// outward even when the face plane passes near the origin.
	if normal.Dot(a.Sub(inside)) < 0 {
		normal = normal.Mul(-1)
	}

	distance := a.Dot(normal)
	if distance < minFaceDistance {
		distance = minFaceDistance
	}

	return Face{
		Points:   [3]mgl64.Vec3{a, b, c},
		Normal:   snapNormal(normal),
		Distance: distance,
	}, true
}

// closestFace returns the index of the face nearest the origin, or -1.
func (p *polytope) closestFace() int {
	closest := -1
	for i := range p.faces {
		if closest < 0 || p.faces[i].Distance < p.faces[closest].Distance {
			closest = i
		}
	}
	return closest
}

// centroid averages all face vertices. It only serves as an interior
// reference for orienting new faces, so vertex duplication across faces
// does not matter enough to dedupe.
func (p *polytope) centroid() mgl64.Vec3 {
	var sum mgl64.Vec3
	n := 0
	for i := range p.faces {
		for _, point := range p.faces[i].Points {
			sum = sum.Add(point)
			n++
		}
	}
	if n == 0 {
		return mgl64.Vec3{}
	}
	return sum.Mul(1 / float64(n))
}

// expand stitches a new support vertex into the hull: remove every face the
// vertex sees, then fan new faces from the silhouette edges to the vertex.
// It reports false when the vertex sees nothing (the hull already contains
// it) or stitching would empty the hull.
func (p *polytope) expand(vertex mgl64.Vec3, closestIndex int) bool {
	inside := p.centroid()

	p.visible = p.visible[:0]
	for i := range p.faces {
		if vertex.Sub(p.faces[i].Points[0]).Dot(p.faces[i].Normal) > 0 {
			p.visible = append(p.visible, i)
		}
	}

	if len(p.visible) == 0 {
		return false
	}
	if len(p.visible) >= len(p.faces) {
		// Numerical noise claims every face is visible; replacing the whole
		// hull would invert it. Only split the closest face.
		p.visible = append(p.visible[:0], closestIndex)
	}

	p.collectSilhouette()
	p.removeVisible()

	grown := false
	for _, edge := range p.edges {
		if edge.count != 1 {
			continue
		}
		if face, ok := makeFace(edge.a, edge.b, vertex, inside); ok {
			p.faces = append(p.faces, face)
			grown = true
		}
	}

	return grown && len(p.faces) > 0
}

// collectSilhouette counts edge occurrences across the visible faces.
// Edges are stored with lexicographically ordered endpoints so the two
// windings of a shared edge land on the same entry.
func (p *polytope) collectSilhouette() {
	p.edges = p.edges[:0]
	for _, faceIdx := range p.visible {
		face := &p.faces[faceIdx]
		for i := 0; i < 3; i++ {
			a, b := face.Points[i], face.Points[(i+1)%3]
			if lessVec3(b, a) {
				a, b = b, a
			}
			found := false
			for j := range p.edges {
				if p.edges[j].a == a && p.edges[j].b == b {
					p.edges[j].count++
					found = true
					break
				}
			}
			if !found {
				p.edges = append(p.edges, edgeEntry{a: a, b: b, count: 1})
			}
		}
	}
}

// removeVisible deletes the visible faces, highest index first so earlier
// indices stay valid.
func (p *polytope) removeVisible() {
	for i := 0; i < len(p.visible); i++ {
		for j := i + 1; j < len(p.visible); j++ {
			if p.visible[i] < p.visible[j] {
				p.visible[i], p.visible[j] = p.visible[j], p.visible[i]
			}
		}
	}
	for _, idx := range p.visible {
		p.faces[idx] = p.faces[len(p.faces)-1]
		p.faces = p.faces[:len(p.faces)-1]
	}
}

func lessVec3(a, b mgl64.Vec3) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}
