package shape

import "github.com/go-gl/mathgl/mgl64"

// SupportFunc maps a (non-zero, not necessarily unit) direction to the
// farthest point of a convex shape in that direction. It must be pure and
// deterministic: GJK and EPA call it repeatedly and expect identical
// answers for identical directions.
type SupportFunc func(direction mgl64.Vec3) mgl64.Vec3

// AABBSupport returns the support function of an axis-aligned box: per
// axis, pick the corner coordinate matching the direction's sign.
func AABBSupport(box AABB) SupportFunc {
	return func(direction mgl64.Vec3) mgl64.Vec3 {
		point := box.Min
		for axis := 0; axis < 3; axis++ {
			if direction[axis] >= 0 {
				point[axis] = box.Max[axis]
			}
		}
		return point
	}
}

// SphereSupport returns the support function of a sphere: the center pushed
// by the radius along the normalized direction.
func SphereSupport(sphere Sphere) SupportFunc {
	return func(direction mgl64.Vec3) mgl64.Vec3 {
		lenSqr := direction.LenSqr()
		if lenSqr < 1e-16 {
			// Callers guarantee a non-zero direction; keep the result finite anyway.
			return sphere.Center.Add(mgl64.Vec3{sphere.Radius, 0, 0})
		}
		return sphere.Center.Add(direction.Mul(sphere.Radius / direction.Len()))
	}
}

// CapsuleSupport returns the support function of a capsule: the endpoint
// farthest along the direction, pushed out by the radius.
func CapsuleSupport(capsule Capsule) SupportFunc {
	segment := SphereSupport(Sphere{Radius: capsule.Radius})
	return func(direction mgl64.Vec3) mgl64.Vec3 {
		end := capsule.Start
		if capsule.End.Dot(direction) > capsule.Start.Dot(direction) {
			end = capsule.End
		}
		return end.Add(segment(direction))
	}
}

// PointsSupport returns the support function of the convex hull of a point
// cloud: the vertex with the largest projection onto the direction. Ties
// keep the earliest vertex so the result is deterministic. An empty cloud
// degenerates to the origin.
func PointsSupport(points []mgl64.Vec3) SupportFunc {
	return func(direction mgl64.Vec3) mgl64.Vec3 {
		if len(points) == 0 {
			return mgl64.Vec3{}
		}
		best := points[0]
		bestDot := best.Dot(direction)
		for _, p := range points[1:] {
			if d := p.Dot(direction); d > bestDot {
				best, bestDot = p, d
			}
		}
		return best
	}
}
