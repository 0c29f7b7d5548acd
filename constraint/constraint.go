// Package constraint holds the positional constraints and the iterative
// contact solver that the world drives each frame. Bodies are treated as
// translating point masses: state is position, velocity and a scalar
// inverse mass, reached through the host-supplied Body adapter. An inverse
// mass of zero marks a kinematic body the solver never accelerates.
package constraint

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Body is the host-supplied view onto an item's dynamic state. Positions
// and velocities live in one shared world frame; all scalars must be
// finite. Restitution is clamped to [0, 1] and friction to >= 0 inside the
// solver, so sloppy adapters degrade instead of exploding.
type Body[T comparable] interface {
	Position(item T) mgl64.Vec3
	SetPosition(item T, position mgl64.Vec3)
	Velocity(item T) mgl64.Vec3
	SetVelocity(item T, velocity mgl64.Vec3)
	InverseMass(item T) float64
	Restitution(item T) float64
	Friction(item T) float64
}

// Constraint is a positional rule solved once per iteration of the world's
// constraint loop.
type Constraint[T comparable] interface {
	Solve(adapter Body[T], dt float64)
}

// Distance keeps two items at a target separation. Target must be >= 0 and
// Stiffness in [0, 1]; a stiffness of 1 removes the full error in one
// solve.
type Distance[T comparable] struct {
	A, B      T
	Target    float64
	Stiffness float64
}

// Solve moves both ends along their separation axis, split by inverse
// mass. Coincident items have no axis to correct along and are skipped.
func (c Distance[T]) Solve(adapter Body[T], dt float64) {
	invA := adapter.InverseMass(c.A)
	invB := adapter.InverseMass(c.B)
	invSum := invA + invB
	if invSum <= 0 {
		return
	}

	posA := adapter.Position(c.A)
	posB := adapter.Position(c.B)
	delta := posB.Sub(posA)
	distance := delta.Len()
	if distance < 1e-12 {
		return
	}

	normal := delta.Mul(1 / distance)
	correction := (distance - c.Target) * c.Stiffness / invSum

	if invA > 0 {
		adapter.SetPosition(c.A, posA.Add(normal.Mul(correction*invA)))
	}
	if invB > 0 {
		adapter.SetPosition(c.B, posB.Sub(normal.Mul(correction*invB)))
	}
}

// Point pulls an item toward a fixed world anchor. Stiffness in [0, 1].
type Point[T comparable] struct {
	Item      T
	Anchor    mgl64.Vec3
	Stiffness float64
}

// Solve moves the item a stiffness fraction of the way to the anchor.
// Kinematic items stay put.
func (c Point[T]) Solve(adapter Body[T], dt float64) {
	if adapter.InverseMass(c.Item) <= 0 {
		return
	}
	pos := adapter.Position(c.Item)
	adapter.SetPosition(c.Item, pos.Add(c.Anchor.Sub(pos).Mul(c.Stiffness)))
}
