package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultCorrectionPercent is the fraction of remaining penetration
	// removed per positional pass. Below 1 leaves slack that damps
	// position-level jitter between frames.
	DefaultCorrectionPercent = 0.8

	// DefaultSlop is penetration the positional pass tolerates without
	// correcting, which keeps resting pairs from oscillating between
	// separated and overlapping.
	DefaultSlop = 0.001

	// tangentEpsilon: relative velocities this close to the contact normal
	// have no usable sliding direction of their own.
	tangentEpsilon = 1e-9
)

// Impulse is the accumulated contact impulse carried across frames for
// warm starting: the scalar normal impulse (>= 0) and the scalar tangent
// impulse (clamped by the friction cone each iteration).
type Impulse struct {
	Normal  float64
	Tangent float64
}

// Contact is one solvable contact between two items: the manifold normal
// (unit, pointing from A toward B), the remaining penetration depth, and
// the impulses accumulated so far this frame.
type Contact[T comparable] struct {
	A, B   T
	Normal mgl64.Vec3
	Depth  float64

	Accumulated Impulse

	tangent    mgl64.Vec3
	hasTangent bool
}

// WarmStart seeds the accumulated impulses from the previous frame's
// record and applies them to the body velocities in one shot, so the
// velocity passes start near last frame's converged state instead of from
// zero.
func (c *Contact[T]) WarmStart(adapter Body[T], warm Impulse) {
	c.Accumulated = Impulse{Normal: math.Max(0, warm.Normal), Tangent: warm.Tangent}

	invA := adapter.InverseMass(c.A)
	invB := adapter.InverseMass(c.B)
	if invA+invB <= 0 {
		return
	}

	impulse := c.Normal.Mul(c.Accumulated.Normal)
	if tangent, ok := c.tangentDirection(adapter); ok {
		impulse = impulse.Add(tangent.Mul(c.Accumulated.Tangent))
	}

	if invA > 0 {
		adapter.SetVelocity(c.A, adapter.Velocity(c.A).Sub(impulse.Mul(invA)))
	}
	if invB > 0 {
		adapter.SetVelocity(c.B, adapter.Velocity(c.B).Add(impulse.Mul(invB)))
	}
}

// SolvePosition removes a percent fraction of the penetration beyond slop,
// splitting the displacement by inverse mass. The remaining depth shrinks
// by the relative displacement, so repeated passes converge instead of
// over-correcting.
func (c *Contact[T]) SolvePosition(adapter Body[T], percent, slop float64) {
	invA := adapter.InverseMass(c.A)
	invB := adapter.InverseMass(c.B)
	invSum := invA + invB
	if invSum <= 0 {
		return
	}

	correction := math.Max(0, c.Depth-slop) * percent / invSum
	if correction <= 0 {
		return
	}

	if invA > 0 {
		adapter.SetPosition(c.A, adapter.Position(c.A).Sub(c.Normal.Mul(correction*invA)))
	}
	if invB > 0 {
		adapter.SetPosition(c.B, adapter.Position(c.B).Add(c.Normal.Mul(correction*invB)))
	}

	c.Depth = math.Max(0, c.Depth-correction*invSum)
}

// SolveVelocity runs one sequential-impulse iteration: a restitution-aware
// normal impulse accumulated with a non-negative clamp, then a friction
// impulse clamped to the Coulomb cone around the accumulated normal
// impulse. Separating contacts are left alone but keep their accumulated
// impulses for the warm-start record.
func (c *Contact[T]) SolveVelocity(adapter Body[T]) {
	invA := adapter.InverseMass(c.A)
	invB := adapter.InverseMass(c.B)
	invSum := invA + invB
	if invSum <= 0 {
		return
	}

	velA := adapter.Velocity(c.A)
	velB := adapter.Velocity(c.B)
	relative := velB.Sub(velA)
	normalSpeed := relative.Dot(c.Normal)

	if normalSpeed > 0 {
		// Already separating.
		return
	}

	restitution := math.Min(adapter.Restitution(c.A), adapter.Restitution(c.B))
	restitution = math.Min(1, math.Max(0, restitution))

	// Normal impulse, accumulated and clamped at zero so the contact can
	// only ever push.
	delta := -(1 + restitution) * normalSpeed / invSum
	accumulated := math.Max(0, c.Accumulated.Normal+delta)
	applied := accumulated - c.Accumulated.Normal
	c.Accumulated.Normal = accumulated

	impulse := c.Normal.Mul(applied)
	if invA > 0 {
		velA = velA.Sub(impulse.Mul(invA))
		adapter.SetVelocity(c.A, velA)
	}
	if invB > 0 {
		velB = velB.Add(impulse.Mul(invB))
		adapter.SetVelocity(c.B, velB)
	}

	// Friction against the post-impulse sliding direction.
	relative = velB.Sub(velA)
	tangent, ok := c.tangentDirection(adapter)
	if !ok {
		return
	}

	friction := math.Sqrt(math.Max(0, adapter.Friction(c.A)) * math.Max(0, adapter.Friction(c.B)))
	limit := friction * c.Accumulated.Normal

	deltaT := -relative.Dot(tangent) / invSum
	accumulatedT := clamp(c.Accumulated.Tangent+deltaT, -limit, limit)
	appliedT := accumulatedT - c.Accumulated.Tangent
	c.Accumulated.Tangent = accumulatedT

	impulseT := tangent.Mul(appliedT)
	if invA > 0 {
		adapter.SetVelocity(c.A, velA.Sub(impulseT.Mul(invA)))
	}
	if invB > 0 {
		adapter.SetVelocity(c.B, velB.Add(impulseT.Mul(invB)))
	}
}

// tangentDirection picks the sliding direction: the relative velocity with
// its normal component rejected. When the pair slides nowhere (velocity
// parallel to the normal) any perpendicular works, and crossing with the
// world axis of smallest normal component gives a stable one. The choice
// is cached per contact so the warm start and every iteration push along
// the same axis.
func (c *Contact[T]) tangentDirection(adapter Body[T]) (mgl64.Vec3, bool) {
	if c.hasTangent {
		return c.tangent, true
	}

	relative := adapter.Velocity(c.B).Sub(adapter.Velocity(c.A))
	tangent := relative.Sub(c.Normal.Mul(relative.Dot(c.Normal)))
	if tangent.LenSqr() > tangentEpsilon {
		c.tangent = tangent.Normalize()
		c.hasTangent = true
		return c.tangent, true
	}

	smallest := 0
	for axis := 1; axis < 3; axis++ {
		if math.Abs(c.Normal[axis]) < math.Abs(c.Normal[smallest]) {
			smallest = axis
		}
	}
	var axis mgl64.Vec3
	axis[smallest] = 1
	perpendicular := c.Normal.Cross(axis)
	if perpendicular.LenSqr() < tangentEpsilon {
		return mgl64.Vec3{}, false
	}
	c.tangent = perpendicular.Normalize()
	c.hasTangent = true
	return c.tangent, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
