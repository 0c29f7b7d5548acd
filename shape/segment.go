package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// segmentEpsilon treats segments shorter than this (squared) as points.
	segmentEpsilon = 1e-12

	// parallelEpsilon is the determinant threshold below which two segments
	// are handled by the parallel path.
	parallelEpsilon = 1e-10
)

// ClosestPointOnSegment returns the point on segment [a, b] closest to p
// and its clamped parametric coordinate in [0, 1].
func ClosestPointOnSegment(p, a, b mgl64.Vec3) (mgl64.Vec3, float64) {
	ab := b.Sub(a)
	lenSqr := ab.LenSqr()
	if lenSqr < segmentEpsilon {
		return a, 0
	}
	t := p.Sub(a).Dot(ab) / lenSqr
	t = clamp01(t)
	return a.Add(ab.Mul(t)), t
}

// ClosestPointsSegmentSegment returns the closest points between segments
// [p1, q1] and [p2, q2] and their parametric coordinates, both clamped to
// [0, 1].
//
// Degeneracies are resolved rather than rejected: zero-length segments
// collapse to point queries, and parallel and near-parallel pairs (the
// determinant at or below parallelEpsilon relative to the squared lengths)
// share one path that picks the midpoint of the overlapping interval, or
// the nearer end when the projected intervals are disjoint. Near-parallel
// pairs have no separate path of their own.
func ClosestPointsSegmentSegment(p1, q1, p2, q2 mgl64.Vec3) (c1, c2 mgl64.Vec3, s, t float64) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.LenSqr()
	e := d2.LenSqr()
	f := d2.Dot(r)

	switch {
	case a < segmentEpsilon && e < segmentEpsilon:
		// Both segments are points.
		return p1, p2, 0, 0
	case a < segmentEpsilon:
		// First segment is a point.
		t = clamp01(f / e)
		return p1, p2.Add(d2.Mul(t)), 0, t
	}

	c := d1.Dot(r)
	if e < segmentEpsilon {
		// Second segment is a point.
		s = clamp01(-c / a)
		return p1.Add(d1.Mul(s)), p2, s, 0
	}

	b := d1.Dot(d2)
	denom := a*e - b*b
	if denom > parallelEpsilon*a*e {
		s = clamp01((b*f - c*e) / denom)
	} else {
		// Parallel (or numerically indistinguishable from it): project the
		// second segment onto the first and take the midpoint of the
		// overlapping interval, so resting contacts stay centered.
		t0 := p2.Sub(p1).Dot(d1) / a
		t1 := q2.Sub(p1).Dot(d1) / a
		lo := math.Max(0, math.Min(t0, t1))
		hi := math.Min(1, math.Max(t0, t1))
		if lo > hi {
			// Disjoint along the shared axis; endpoint projection decides.
			s = clamp01((lo + hi) * 0.5)
		} else {
			s = (lo + hi) * 0.5
		}
	}

	t = clamp01((b*s + f) / e)

	// Clamping t may move the closest point off the infinite-line solution;
	// recompute s against the clamped t and clamp again.
	s = clamp01((b*t - c) / a)

	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t)), s, t
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
