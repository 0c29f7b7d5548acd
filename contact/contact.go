// Package contact generates oriented contact manifolds for the supported
// primitive pairs, and composes GJK/EPA into a manifold for arbitrary
// convex shapes.
//
// Every generator follows the same contract: the manifold normal is a unit
// vector pointing from the first argument toward the second, depth is >= 0
// (zero at a tangential touch), and primitive pairs carry exactly one
// contact point. Reversing the argument order negates the normal and keeps
// depth and points identical.
package contact

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/dynamis/epa"
	"github.com/akmonengine/dynamis/gjk"
	"github.com/akmonengine/dynamis/shape"
)

// coincidentEpsilon: below this separation two centers are treated as the
// same point and the normal falls back to +X.
const coincidentEpsilon = 1e-9

// Manifold describes one overlap: a unit normal oriented from the first
// shape toward the second, the penetration depth along it, and the contact
// points. Manifolds are immutable once returned.
type Manifold struct {
	Normal mgl64.Vec3
	Depth  float64
	Points []mgl64.Vec3
}

// Reversed returns the manifold seen from the other shape's side: the
// normal flips, depth and points are unchanged.
func (m Manifold) Reversed() Manifold {
	return Manifold{Normal: m.Normal.Mul(-1), Depth: m.Depth, Points: m.Points}
}

// AABBs generates the contact between two axis-aligned boxes. The
// separation axis is the one with the smallest overlap, signed by the
// center-to-center delta (a zero delta resolves to the positive axis). The
// contact point is the center of the intersection region.
func AABBs(a, b shape.AABB) (Manifold, bool) {
	bestAxis := -1
	bestOverlap := math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		overlap := math.Min(a.Max[axis], b.Max[axis]) - math.Max(a.Min[axis], b.Min[axis])
		if overlap < 0 {
			return Manifold{}, false
		}
		if overlap < bestOverlap {
			bestAxis, bestOverlap = axis, overlap
		}
	}

	sign := 1.0
	if b.Center()[bestAxis]-a.Center()[bestAxis] < 0 {
		sign = -1
	}
	var normal mgl64.Vec3
	normal[bestAxis] = sign

	var point mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		lo := math.Max(a.Min[axis], b.Min[axis])
		hi := math.Min(a.Max[axis], b.Max[axis])
		point[axis] = (lo + hi) * 0.5
	}

	return Manifold{Normal: normal, Depth: bestOverlap, Points: []mgl64.Vec3{point}}, true
}

// Spheres generates the contact between two spheres along the
// center-difference vector. Coincident centers fall back to the +X axis
// with zero separation. The contact point is the midpoint of the two
// surface points.
func Spheres(a, b shape.Sphere) (Manifold, bool) {
	delta := b.Center.Sub(a.Center)
	distance := delta.Len()
	depth := a.Radius + b.Radius - distance
	if depth < 0 {
		return Manifold{}, false
	}

	normal := mgl64.Vec3{1, 0, 0}
	if distance > coincidentEpsilon {
		normal = delta.Mul(1 / distance)
	}

	surfaceA := a.Center.Add(normal.Mul(a.Radius))
	surfaceB := b.Center.Sub(normal.Mul(b.Radius))
	point := surfaceA.Add(surfaceB).Mul(0.5)

	return Manifold{Normal: normal, Depth: depth, Points: []mgl64.Vec3{point}}, true
}

// Capsules generates the contact between two capsules by reducing to the
// closest points of the two core segments and treating those as sphere
// centers with the capsules' radii.
func Capsules(a, b shape.Capsule) (Manifold, bool) {
	closestA, closestB, _, _ := shape.ClosestPointsSegmentSegment(a.Start, a.End, b.Start, b.End)
	return Spheres(
		shape.Sphere{Center: closestA, Radius: a.Radius},
		shape.Sphere{Center: closestB, Radius: b.Radius},
	)
}

// CapsuleSphere generates the contact between a capsule and a sphere: the
// closest point on the capsule's core segment to the sphere center acts as
// a sphere with the capsule's radius.
func CapsuleSphere(a shape.Capsule, b shape.Sphere) (Manifold, bool) {
	closest, _ := shape.ClosestPointOnSegment(b.Center, a.Start, a.End)
	return Spheres(shape.Sphere{Center: closest, Radius: a.Radius}, b)
}

// SphereCapsule is CapsuleSphere with the arguments reversed; the normal
// points from the sphere toward the capsule.
func SphereCapsule(a shape.Sphere, b shape.Capsule) (Manifold, bool) {
	m, ok := CapsuleSphere(b, a)
	if !ok {
		return Manifold{}, false
	}
	return m.Reversed(), true
}

// SphereAABB generates the contact between a sphere and a box by treating
// the sphere as a zero-length capsule.
func SphereAABB(a shape.Sphere, b shape.AABB) (Manifold, bool) {
	return CapsuleAABB(shape.Capsule{Start: a.Center, End: a.Center, Radius: a.Radius}, b)
}

// AABBSphere is SphereAABB with the arguments reversed.
func AABBSphere(a shape.AABB, b shape.Sphere) (Manifold, bool) {
	m, ok := SphereAABB(b, a)
	if !ok {
		return Manifold{}, false
	}
	return m.Reversed(), true
}

// AABBCapsule is CapsuleAABB with the arguments reversed.
func AABBCapsule(a shape.AABB, b shape.Capsule) (Manifold, bool) {
	m, ok := CapsuleAABB(b, a)
	if !ok {
		return Manifold{}, false
	}
	return m.Reversed(), true
}

// capsuleAABBRefinements: ternary-search steps when minimizing segment-to-
// box distance over the capsule parameter. The distance function is convex
// in the parameter, so the search converges geometrically; 48 steps put
// the parameter error far below the contact epsilons.
const capsuleAABBRefinements = 48

// CapsuleAABB generates the contact between a capsule and a box. The
// capsule parameter minimizing the distance to the box is found by ternary
// search; the box's closest point is the clamped projection. A core
// segment point inside the box has no gradient to follow, so the normal is
// recovered from the nearest box face.
func CapsuleAABB(a shape.Capsule, b shape.AABB) (Manifold, bool) {
	distanceAt := func(t float64) float64 {
		p := a.Start.Add(a.End.Sub(a.Start).Mul(t))
		return p.Sub(b.ClosestPoint(p)).LenSqr()
	}

	lo, hi := 0.0, 1.0
	for i := 0; i < capsuleAABBRefinements; i++ {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if distanceAt(m1) <= distanceAt(m2) {
			hi = m2
		} else {
			lo = m1
		}
	}
	t := (lo + hi) * 0.5

	// The interior optimum can lose to an endpoint when the distance
	// profile flattens; check both ends explicitly.
	if distanceAt(0) < distanceAt(t) {
		t = 0
	}
	if distanceAt(1) < distanceAt(t) {
		t = 1
	}

	onSegment := a.Start.Add(a.End.Sub(a.Start).Mul(t))
	onBox := b.ClosestPoint(onSegment)
	delta := onBox.Sub(onSegment)
	distance := delta.Len()

	if distance*distance <= coincidentEpsilon*coincidentEpsilon {
		return capsuleInsideAABB(a, b, onSegment)
	}

	depth := a.Radius - distance
	if depth < 0 {
		return Manifold{}, false
	}

	normal := delta.Mul(1 / distance)
	surface := onSegment.Add(normal.Mul(a.Radius))
	point := surface.Add(onBox).Mul(0.5)

	return Manifold{Normal: normal, Depth: depth, Points: []mgl64.Vec3{point}}, true
}

// capsuleInsideAABB resolves the degenerate case where the capsule's core
// segment runs through the box: project the deep point onto the nearest
// box face (smallest axis distance wins) to recover a direction. Pushing
// the capsule out through that face means the normal, which points from
// capsule to box, is the face's inward axis.
func capsuleInsideAABB(a shape.Capsule, b shape.AABB, inside mgl64.Vec3) (Manifold, bool) {
	bestAxis := 0
	bestSign := 1.0
	bestDist := math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		if d := inside[axis] - b.Min[axis]; d < bestDist {
			bestAxis, bestSign, bestDist = axis, -1, d
		}
		if d := b.Max[axis] - inside[axis]; d < bestDist {
			bestAxis, bestSign, bestDist = axis, 1, d
		}
	}

	var outward mgl64.Vec3
	outward[bestAxis] = bestSign
	normal := outward.Mul(-1)

	facePoint := inside
	if bestSign > 0 {
		facePoint[bestAxis] = b.Max[bestAxis]
	} else {
		facePoint[bestAxis] = b.Min[bestAxis]
	}

	// The core segment sits bestDist inside the face, so the capsule
	// surface overlaps the box by radius plus that embedding.
	depth := a.Radius + bestDist

	return Manifold{Normal: normal, Depth: depth, Points: []mgl64.Vec3{facePoint}}, true
}

// FromSupports composes GJK and EPA into a manifold for two arbitrary
// convex shapes. The single contact point is the midpoint of the two
// support witnesses along the contact normal. Options are forwarded to the
// GJK intersection pass.
func FromSupports(supportA, supportB shape.SupportFunc, opts ...gjk.Option) (Manifold, bool) {
	hit, simplex := gjk.Intersect(supportA, supportB, opts...)
	if !hit {
		return Manifold{}, false
	}

	result := epa.Penetration(supportA, supportB, simplex)

	witnessA := supportA(result.Normal)
	witnessB := supportB(result.Normal.Mul(-1))
	point := witnessA.Add(witnessB).Mul(0.5)

	return Manifold{
		Normal: result.Normal,
		Depth:  result.Depth,
		Points: []mgl64.Vec3{point},
	}, true
}
