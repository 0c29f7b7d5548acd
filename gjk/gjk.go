// Package gjk implements the Gilbert-Johnson-Keerthi intersection test for
// convex shapes described by support functions.
//
// GJK decides whether two convex shapes overlap by testing whether their
// Minkowski difference contains the origin. It builds a simplex of at most
// four difference vertices, walking it toward the origin; most queries
// converge in a handful of iterations.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance
//     Between Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/dynamis/shape"
)

// DefaultMaxIterations bounds the simplex refinement loop. The bound only
// matters on degenerate input; well-formed convex pairs converge in 3-6
// iterations.
const DefaultMaxIterations = 32

// Simplex is a set of 1-4 points in Minkowski-difference space. It grows
// point → segment → triangle → tetrahedron as GJK iterates, and on a
// positive result it is the tetrahedron EPA expands from.
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

type config struct {
	maxIterations int
	seed          mgl64.Vec3
}

// Option adjusts an Intersect call.
type Option func(*config)

// WithMaxIterations overrides the iteration bound. Values below 1 are
// ignored.
func WithMaxIterations(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.maxIterations = n
		}
	}
}

// WithSeedDirection sets the initial search direction, typically the vector
// between the two shape centers. Seeding toward the other shape saves
// iterations; a zero seed falls back to +X.
func WithSeedDirection(dir mgl64.Vec3) Option {
	return func(c *config) {
		c.seed = dir
	}
}

// Support computes one Minkowski-difference vertex:
// supportA(direction) - supportB(-direction). This is the only geometry
// query GJK and EPA ever make, which is why any convex shape can
// participate through a single callback.
func Support(supportA, supportB shape.SupportFunc, direction mgl64.Vec3) mgl64.Vec3 {
	return supportA(direction).Sub(supportB(direction.Mul(-1)))
}

// Intersect reports whether the two convex shapes overlap. On a positive
// result the returned simplex is a tetrahedron enclosing the origin,
// suitable as the starting polytope for penetration extraction.
func Intersect(supportA, supportB shape.SupportFunc, opts ...Option) (bool, Simplex) {
	cfg := config{maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(&cfg)
	}

	var simplex Simplex

	direction := cfg.seed
	if direction.LenSqr() < 1e-8 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.Points[0] = Support(supportA, supportB, direction)
	simplex.Count = 1

	// Next search direction: from the first vertex toward the origin.
	direction = simplex.Points[0].Mul(-1)
	if direction.LenSqr() < 1e-16 {
		// The first support vertex is the origin: the shapes touch.
		return true, simplex
	}

	for i := 0; i < cfg.maxIterations; i++ {
		vertex := Support(supportA, supportB, direction)

		// The new vertex does not pass the origin along the search
		// direction, so the origin is outside the Minkowski difference.
		if vertex.Dot(direction) <= 0 {
			return false, simplex
		}

		simplex.Points[simplex.Count] = vertex
		simplex.Count++

		if simplex.nearest(&direction) {
			return true, simplex
		}
	}

	// Iteration bound hit without a verdict; treat as separated.
	return false, simplex
}

// nearest reduces the simplex to the feature closest to the origin and
// points direction at the origin from that feature. It returns true only
// when a tetrahedron encloses the origin.
func (s *Simplex) nearest(direction *mgl64.Vec3) bool {
	switch s.Count {
	case 2:
		return s.line(direction)
	case 3:
		return s.triangle(direction)
	case 4:
		return s.tetrahedron(direction)
	}
	return false
}

// line reduces a segment simplex. A is the most recent vertex.
func (s *Simplex) line(direction *mgl64.Vec3) bool {
	a := s.Points[1]
	b := s.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < 1e-8 {
		// Coincident vertices; keep one.
		if ao.LenSqr() < 1e-8 {
			return true
		}
		s.Points[0] = a
		s.Count = 1
		*direction = ao
		return false
	}

	// Origin behind A: only A can be the closest feature.
	if ab.Dot(ao) <= 0 {
		s.Points[0] = a
		s.Count = 1
		*direction = ao
		return false
	}

	// Closest feature is the segment; search perpendicular to it, toward
	// the origin.
	abPerp := ab.Cross(ao).Cross(ab)
	if abPerp.LenSqr() < 1e-8 {
		// Origin lies on the segment.
		return true
	}

	*direction = abPerp
	return false
}

// triangle reduces a triangle simplex. A is the most recent vertex.
func (s *Simplex) triangle(direction *mgl64.Vec3) bool {
	a := s.Points[2]
	b := s.Points[1]
	c := s.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)
	abc := ab.Cross(ac)

	// Collinear vertices: the triangle is flat, fall back to the segment
	// case on the two most recent vertices.
	if abc.LenSqr() < 1e-10 {
		s.Points[0] = b
		s.Points[1] = a
		s.Count = 2
		return s.line(direction)
	}

	// Edge AB region.
	if ab.Cross(abc).Dot(ao) > 0 {
		s.Points[0] = b
		s.Points[1] = a
		s.Count = 2
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}

	// Edge AC region.
	if abc.Cross(ac).Dot(ao) > 0 {
		s.Points[0] = c
		s.Points[1] = a
		s.Count = 2
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	// Origin is above or below the triangle plane.
	if abc.Dot(ao) > 0 {
		*direction = abc
	} else {
		// Below: rewind the winding so the next tetrahedron is oriented.
		s.Points[0] = a
		s.Points[1] = c
		s.Points[2] = b
		*direction = abc.Mul(-1)
	}
	return false
}

// tetrahedron is the only case that can report containment. A is the most
// recent vertex; the three faces touching A are tested with outward
// normals, and the simplex drops to the triangle the origin is outside of.
func (s *Simplex) tetrahedron(direction *mgl64.Vec3) bool {
	a := s.Points[3]
	b := s.Points[2]
	c := s.Points[1]
	d := s.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	// Face normals, flipped to point away from the opposite vertex.
	abc := ab.Cross(ac)
	if abc.Dot(ad) > 0 {
		abc = abc.Mul(-1)
	}
	acd := ac.Cross(ad)
	if acd.Dot(ab) > 0 {
		acd = acd.Mul(-1)
	}
	adb := ad.Cross(ab)
	if adb.Dot(ac) > 0 {
		adb = adb.Mul(-1)
	}

	// A flat tetrahedron cannot contain the origin; retest as a triangle.
	if abc.LenSqr() < 1e-10 || acd.LenSqr() < 1e-10 || adb.LenSqr() < 1e-10 {
		s.Points[0] = c
		s.Points[1] = b
		s.Points[2] = a
		s.Count = 3
		return s.triangle(direction)
	}

	if abc.Dot(ao) > 0 {
		s.Points[0] = c
		s.Points[1] = b
		s.Points[2] = a
		s.Count = 3
		return s.triangle(direction)
	}
	if acd.Dot(ao) > 0 {
		s.Points[0] = d
		s.Points[1] = c
		s.Points[2] = a
		s.Count = 3
		return s.triangle(direction)
	}
	if adb.Dot(ao) > 0 {
		s.Points[0] = b
		s.Points[1] = d
		s.Points[2] = a
		s.Count = 3
		return s.triangle(direction)
	}

	// Inside all four faces.
	return true
}
