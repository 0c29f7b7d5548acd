package shape

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half-line from Origin along Dir. Dir need not be normalized but
// must be non-zero; distances reported by queries are measured along the
// unit direction.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// NewRay validates and builds a ray.
func NewRay(origin, dir mgl64.Vec3) (Ray, error) {
	if !finiteVec3(origin) || !finiteVec3(dir) {
		return Ray{}, fmt.Errorf("ray must be finite, got origin=%v dir=%v", origin, dir)
	}
	if dir.LenSqr() == 0 {
		return Ray{}, fmt.Errorf("ray direction must be non-zero")
	}
	return Ray{Origin: origin, Dir: dir}, nil
}

// At returns the point at distance t along the unit direction.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Normalize().Mul(t))
}

// RayAABB intersects a ray with a box using the slab method and returns the
// distance to the nearest hit along the unit direction. An origin inside
// the box hits at distance 0. A box entirely behind the ray misses.
func RayAABB(r Ray, box AABB) (float64, bool) {
	dir := r.Dir.Normalize()
	tmin := math.Inf(-1)
	tmax := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			// Parallel to this slab: the origin must already be inside it.
			if r.Origin[axis] < box.Min[axis] || r.Origin[axis] > box.Max[axis] {
				return 0, false
			}
			continue
		}
		inv := 1.0 / dir[axis]
		t1 := (box.Min[axis] - r.Origin[axis]) * inv
		t2 := (box.Max[axis] - r.Origin[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return 0, true
	}
	return tmin, true
}
