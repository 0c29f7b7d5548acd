package constraint

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

// testBody is a minimal point-mass body for adapter tests.
type testBody struct {
	position    mgl64.Vec3
	velocity    mgl64.Vec3
	inverseMass float64
	restitution float64
	friction    float64
}

// testAdapter exposes testBody pointers through the Body interface.
type testAdapter struct{}

func (testAdapter) Position(b *testBody) mgl64.Vec3                 { return b.position }
func (testAdapter) SetPosition(b *testBody, position mgl64.Vec3)    { b.position = position }
func (testAdapter) Velocity(b *testBody) mgl64.Vec3                 { return b.velocity }
func (testAdapter) SetVelocity(b *testBody, velocity mgl64.Vec3)    { b.velocity = velocity }
func (testAdapter) InverseMass(b *testBody) float64                 { return b.inverseMass }
func (testAdapter) Restitution(b *testBody) float64                 { return b.restitution }
func (testAdapter) Friction(b *testBody) float64                    { return b.friction }

func TestDistanceConstraint(t *testing.T) {
	adapter := testAdapter{}

	t.Run("pulls both dynamic ends together", func(t *testing.T) {
		a := &testBody{position: mgl64.Vec3{0, 0, 0}, inverseMass: 1}
		b := &testBody{position: mgl64.Vec3{4, 0, 0}, inverseMass: 1}
		c := Distance[*testBody]{A: a, B: b, Target: 2, Stiffness: 1}

		c.Solve(adapter, 1.0/60)

		assert.InDelta(t, 1, a.position.X(), 1e-9)
		assert.InDelta(t, 3, b.position.X(), 1e-9)
	})

	t.Run("kinematic end stays put", func(t *testing.T) {
		a := &testBody{position: mgl64.Vec3{0, 0, 0}, inverseMass: 0}
		b := &testBody{position: mgl64.Vec3{4, 0, 0}, inverseMass: 1}
		c := Distance[*testBody]{A: a, B: b, Target: 2, Stiffness: 1}

		c.Solve(adapter, 1.0/60)

		assert.Equal(t, mgl64.Vec3{0, 0, 0}, a.position)
		assert.InDelta(t, 2, b.position.X(), 1e-9)
	})

	t.Run("coincident ends are skipped", func(t *testing.T) {
		a := &testBody{position: mgl64.Vec3{1, 1, 1}, inverseMass: 1}
		b := &testBody{position: mgl64.Vec3{1, 1, 1}, inverseMass: 1}
		c := Distance[*testBody]{A: a, B: b, Target: 2, Stiffness: 1}

		c.Solve(adapter, 1.0/60)

		assert.Equal(t, mgl64.Vec3{1, 1, 1}, a.position)
		assert.Equal(t, mgl64.Vec3{1, 1, 1}, b.position)
	})

	t.Run("partial stiffness removes part of the error", func(t *testing.T) {
		a := &testBody{position: mgl64.Vec3{0, 0, 0}, inverseMass: 1}
		b := &testBody{position: mgl64.Vec3{4, 0, 0}, inverseMass: 1}
		c := Distance[*testBody]{A: a, B: b, Target: 2, Stiffness: 0.5}

		c.Solve(adapter, 1.0/60)

		assert.InDelta(t, 3, b.position.Sub(a.position).Len(), 1e-9)
	})
}

func TestPointConstraint(t *testing.T) {
	adapter := testAdapter{}

	t.Run("moves toward the anchor", func(t *testing.T) {
		b := &testBody{position: mgl64.Vec3{2, 0, 0}, inverseMass: 1}
		c := Point[*testBody]{Item: b, Anchor: mgl64.Vec3{0, 0, 0}, Stiffness: 0.5}

		c.Solve(adapter, 1.0/60)

		assert.InDelta(t, 1, b.position.X(), 1e-9)
	})

	t.Run("kinematic item ignores the anchor", func(t *testing.T) {
		b := &testBody{position: mgl64.Vec3{2, 0, 0}, inverseMass: 0}
		c := Point[*testBody]{Item: b, Anchor: mgl64.Vec3{0, 0, 0}, Stiffness: 1}

		c.Solve(adapter, 1.0/60)

		assert.Equal(t, mgl64.Vec3{2, 0, 0}, b.position)
	})
}

func TestContactSolvePosition(t *testing.T) {
	adapter := testAdapter{}

	t.Run("splits correction by inverse mass", func(t *testing.T) {
		a := &testBody{position: mgl64.Vec3{0, 0, 0}, inverseMass: 1}
		b := &testBody{position: mgl64.Vec3{0, 1, 0}, inverseMass: 1}
		c := Contact[*testBody]{A: a, B: b, Normal: mgl64.Vec3{0, 1, 0}, Depth: 0.2}

		c.SolvePosition(adapter, 1.0, 0)

		assert.InDelta(t, -0.1, a.position.Y(), 1e-9)
		assert.InDelta(t, 1.1, b.position.Y(), 1e-9)
		assert.Zero(t, c.Depth)
	})

	t.Run("kinematic body absorbs nothing", func(t *testing.T) {
		floor := &testBody{position: mgl64.Vec3{0, 0, 0}, inverseMass: 0}
		box := &testBody{position: mgl64.Vec3{0, 0.9, 0}, inverseMass: 1}
		c := Contact[*testBody]{A: floor, B: box, Normal: mgl64.Vec3{0, 1, 0}, Depth: 0.1}

		c.SolvePosition(adapter, 1.0, 0)

		assert.Equal(t, mgl64.Vec3{0, 0, 0}, floor.position)
		assert.InDelta(t, 1.0, box.position.Y(), 1e-9)
	})

	t.Run("two kinematic bodies do nothing", func(t *testing.T) {
		a := &testBody{inverseMass: 0}
		b := &testBody{position: mgl64.Vec3{0, 0.5, 0}, inverseMass: 0}
		c := Contact[*testBody]{A: a, B: b, Normal: mgl64.Vec3{0, 1, 0}, Depth: 0.5}

		c.SolvePosition(adapter, 1.0, 0)

		assert.Equal(t, mgl64.Vec3{}, a.position)
		assert.Equal(t, mgl64.Vec3{0, 0.5, 0}, b.position)
	})

	t.Run("slop is tolerated", func(t *testing.T) {
		a := &testBody{inverseMass: 1}
		b := &testBody{position: mgl64.Vec3{0, 1, 0}, inverseMass: 1}
		c := Contact[*testBody]{A: a, B: b, Normal: mgl64.Vec3{0, 1, 0}, Depth: 0.0005}

		c.SolvePosition(adapter, DefaultCorrectionPercent, DefaultSlop)

		assert.Equal(t, mgl64.Vec3{}, a.position)
	})

	t.Run("repeated passes converge instead of overshooting", func(t *testing.T) {
		a := &testBody{inverseMass: 1}
		b := &testBody{position: mgl64.Vec3{0, 1, 0}, inverseMass: 1}
		c := Contact[*testBody]{A: a, B: b, Normal: mgl64.Vec3{0, 1, 0}, Depth: 0.1}

		for i := 0; i < 8; i++ {
			c.SolvePosition(adapter, 1.0, 0)
		}

		separation := b.position.Y() - a.position.Y()
		assert.InDelta(t, 1.1, separation, 1e-9)
	})
}

func TestContactSolveVelocity(t *testing.T) {
	adapter := testAdapter{}

	t.Run("head-on equal masses with full restitution swap momentum", func(t *testing.T) {
		a := &testBody{velocity: mgl64.Vec3{1, 0, 0}, inverseMass: 1, restitution: 1}
		b := &testBody{velocity: mgl64.Vec3{-1, 0, 0}, inverseMass: 1, restitution: 1}
		c := Contact[*testBody]{A: a, B: b, Normal: mgl64.Vec3{1, 0, 0}, Depth: 0.01}

		c.SolveVelocity(adapter)

		assert.InDelta(t, -1, a.velocity.X(), 1e-9)
		assert.InDelta(t, 1, b.velocity.X(), 1e-9)
	})

	t.Run("zero restitution kills the approach velocity", func(t *testing.T) {
		a := &testBody{velocity: mgl64.Vec3{2, 0, 0}, inverseMass: 1}
		b := &testBody{inverseMass: 1}
		c := Contact[*testBody]{A: a, B: b, Normal: mgl64.Vec3{1, 0, 0}, Depth: 0.01}

		c.SolveVelocity(adapter)

		relative := b.velocity.Sub(a.velocity)
		assert.InDelta(t, 0, relative.Dot(c.Normal), 1e-9)
	})

	t.Run("separating pair is untouched", func(t *testing.T) {
		a := &testBody{velocity: mgl64.Vec3{-1, 0, 0}, inverseMass: 1}
		b := &testBody{velocity: mgl64.Vec3{1, 0, 0}, inverseMass: 1}
		c := Contact[*testBody]{A: a, B: b, Normal: mgl64.Vec3{1, 0, 0}, Depth: 0.01}
		c.Accumulated = Impulse{Normal: 0.25}

		c.SolveVelocity(adapter)

		assert.Equal(t, mgl64.Vec3{-1, 0, 0}, a.velocity)
		assert.Equal(t, mgl64.Vec3{1, 0, 0}, b.velocity)
		// Accumulated impulses survive for the warm-start record.
		assert.InDelta(t, 0.25, c.Accumulated.Normal, 1e-12)
	})

	t.Run("kinematic body never accelerates", func(t *testing.T) {
		floor := &testBody{inverseMass: 0}
		box := &testBody{velocity: mgl64.Vec3{0, -3, 0}, inverseMass: 1}
		c := Contact[*testBody]{A: floor, B: box, Normal: mgl64.Vec3{0, 1, 0}, Depth: 0.01}

		c.SolveVelocity(adapter)

		assert.Equal(t, mgl64.Vec3{}, floor.velocity)
		assert.InDelta(t, 0, box.velocity.Y(), 1e-9)
	})

	t.Run("friction damps sliding", func(t *testing.T) {
		floor := &testBody{inverseMass: 0, friction: 1}
		box := &testBody{velocity: mgl64.Vec3{4, -1, 0}, inverseMass: 1, friction: 1}
		c := Contact[*testBody]{A: floor, B: box, Normal: mgl64.Vec3{0, 1, 0}, Depth: 0.01}

		c.SolveVelocity(adapter)

		assert.Less(t, box.velocity.X(), 4.0)
		assert.GreaterOrEqual(t, box.velocity.X(), 0.0)
	})

	t.Run("frictionless pair keeps its tangential velocity", func(t *testing.T) {
		floor := &testBody{inverseMass: 0}
		box := &testBody{velocity: mgl64.Vec3{4, -1, 0}, inverseMass: 1}
		c := Contact[*testBody]{A: floor, B: box, Normal: mgl64.Vec3{0, 1, 0}, Depth: 0.01}

		c.SolveVelocity(adapter)

		assert.InDelta(t, 4, box.velocity.X(), 1e-9)
	})

	t.Run("normal impulse never pulls", func(t *testing.T) {
		a := &testBody{velocity: mgl64.Vec3{0.1, 0, 0}, inverseMass: 1}
		b := &testBody{inverseMass: 1}
		c := Contact[*testBody]{A: a, B: b, Normal: mgl64.Vec3{1, 0, 0}, Depth: 0.01}

		for i := 0; i < 4; i++ {
			c.SolveVelocity(adapter)
		}

		assert.GreaterOrEqual(t, c.Accumulated.Normal, 0.0)
	})

	t.Run("restitution above one is clamped", func(t *testing.T) {
		a := &testBody{velocity: mgl64.Vec3{1, 0, 0}, inverseMass: 1, restitution: 5}
		b := &testBody{inverseMass: 1, restitution: 5}
		c := Contact[*testBody]{A: a, B: b, Normal: mgl64.Vec3{1, 0, 0}, Depth: 0.01}

		c.SolveVelocity(adapter)

		relative := b.velocity.Sub(a.velocity).Dot(c.Normal)
		assert.LessOrEqual(t, relative, 1.0+1e-9)
	})
}

func TestContactWarmStart(t *testing.T) {
	adapter := testAdapter{}

	t.Run("applies the carried impulse immediately", func(t *testing.T) {
		floor := &testBody{inverseMass: 0}
		box := &testBody{velocity: mgl64.Vec3{0, -1, 0}, inverseMass: 1}
		c := Contact[*testBody]{A: floor, B: box, Normal: mgl64.Vec3{0, 1, 0}, Depth: 0.01}

		c.WarmStart(adapter, Impulse{Normal: 0.5})

		assert.InDelta(t, -0.5, box.velocity.Y(), 1e-9)
		assert.InDelta(t, 0.5, c.Accumulated.Normal, 1e-12)
	})

	t.Run("negative carried normal impulse is clamped", func(t *testing.T) {
		a := &testBody{inverseMass: 1}
		b := &testBody{inverseMass: 1}
		c := Contact[*testBody]{A: a, B: b, Normal: mgl64.Vec3{0, 1, 0}, Depth: 0.01}

		c.WarmStart(adapter, Impulse{Normal: -3})

		assert.Zero(t, c.Accumulated.Normal)
		assert.Equal(t, mgl64.Vec3{}, a.velocity)
		assert.Equal(t, mgl64.Vec3{}, b.velocity)
	})

	t.Run("kinematic pair ignores the warm start", func(t *testing.T) {
		a := &testBody{inverseMass: 0}
		b := &testBody{inverseMass: 0}
		c := Contact[*testBody]{A: a, B: b, Normal: mgl64.Vec3{0, 1, 0}, Depth: 0.01}

		c.WarmStart(adapter, Impulse{Normal: 2, Tangent: 1})

		assert.Equal(t, mgl64.Vec3{}, a.velocity)
		assert.Equal(t, mgl64.Vec3{}, b.velocity)
	})
}
