package dynamis

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/dynamis/constraint"
	"github.com/akmonengine/dynamis/contact"
)

// Frame-loop defaults, overridable per world through options.
const (
	DefaultCellSize             = 1.0
	DefaultSolverIterations     = 4
	DefaultConstraintIterations = 4
	DefaultRetentionFrames      = 3
)

// NarrowFunc is the host-supplied narrow phase: given a filtered candidate
// pair, return the contact manifold oriented from the first item toward
// the second, or false for no contact. Hosts typically delegate to the
// contact package's primitive generators or to contact.FromSupports.
type NarrowFunc[T comparable] func(a, b T) (contact.Manifold, bool)

// Responder replaces the built-in contact solver; it is called once per
// response-enabled event, in deterministic pair order.
type Responder[T comparable] func(event Event[T])

// World runs the per-frame pipeline: broad phase, filter, narrow phase,
// event diff against the previous frame, manifold cache upkeep, and the
// contact response. One World is one logical collision domain; it is not
// safe for concurrent use, and all state mutation happens inside Update
// and Step.
type World[T comparable] struct {
	broad    BroadPhase[T]
	boundsOf BoundsFunc[T]
	filterOf FilterFunc[T]
	narrow   NarrowFunc[T]
	identity func(T) string

	adapter   constraint.Body[T]
	responder Responder[T]
	gravity   mgl64.Vec3

	solverIterations     int
	constraintIterations int
	retentionFrames      uint64
	correctionPercent    float64
	correctionSlop       float64

	cache       *ManifoldCache[T]
	constraints []constraint.Constraint[T]
	prev        *pairSet[T]
	listeners   map[EventKind][]EventListener[T]
}

// Option configures a World at construction.
type Option[T comparable] func(*World[T]) error

// WithBroadPhase replaces the default spatial hash grid.
func WithBroadPhase[T comparable](broad BroadPhase[T]) Option[T] {
	return func(w *World[T]) error {
		if broad == nil {
			return fmt.Errorf("world: nil broad phase")
		}
		w.broad = broad
		return nil
	}
}

// WithCellSize rebuilds the default grid broad phase with the given cell
// size.
func WithCellSize[T comparable](cellSize float64) Option[T] {
	return func(w *World[T]) error {
		grid, err := NewSpatialHashGrid[T](cellSize)
		if err != nil {
			return err
		}
		w.broad = grid
		return nil
	}
}

// WithFilterProvider installs the per-item collision filter lookup.
func WithFilterProvider[T comparable](filterOf FilterFunc[T]) Option[T] {
	return func(w *World[T]) error {
		if filterOf == nil {
			return fmt.Errorf("world: nil filter provider")
		}
		w.filterOf = filterOf
		return nil
	}
}

// WithBodyAdapter binds the host's dynamic-state view, enabling Step and
// the built-in solver.
func WithBodyAdapter[T comparable](adapter constraint.Body[T]) Option[T] {
	return func(w *World[T]) error {
		if adapter == nil {
			return fmt.Errorf("world: nil body adapter")
		}
		w.adapter = adapter
		return nil
	}
}

// WithResponder replaces the built-in solver with a host callback.
func WithResponder[T comparable](responder Responder[T]) Option[T] {
	return func(w *World[T]) error {
		if responder == nil {
			return fmt.Errorf("world: nil responder")
		}
		w.responder = responder
		return nil
	}
}

// WithGravity sets the acceleration Step applies to dynamic bodies.
func WithGravity[T comparable](gravity mgl64.Vec3) Option[T] {
	return func(w *World[T]) error {
		for axis := 0; axis < 3; axis++ {
			if math.IsNaN(gravity[axis]) || math.IsInf(gravity[axis], 0) {
				return fmt.Errorf("world: gravity must be finite, got %v", gravity)
			}
		}
		w.gravity = gravity
		return nil
	}
}

// WithSolverIterations sets how many positional and velocity passes the
// built-in solver runs per frame.
func WithSolverIterations[T comparable](n int) Option[T] {
	return func(w *World[T]) error {
		if n < 1 {
			return fmt.Errorf("world: solver iterations must be >= 1, got %d", n)
		}
		w.solverIterations = n
		return nil
	}
}

// WithConstraintIterations sets how many passes Step runs over the
// positional constraint list.
func WithConstraintIterations[T comparable](n int) Option[T] {
	return func(w *World[T]) error {
		if n < 1 {
			return fmt.Errorf("world: constraint iterations must be >= 1, got %d", n)
		}
		w.constraintIterations = n
		return nil
	}
}

// WithRetentionFrames sets how many frames a cache entry survives without
// being refreshed.
func WithRetentionFrames[T comparable](frames uint64) Option[T] {
	return func(w *World[T]) error {
		w.retentionFrames = frames
		return nil
	}
}

// WithCorrection tunes the positional pass: percent is the fraction of
// penetration removed per pass (0, 1], slop the tolerated penetration
// >= 0.
func WithCorrection[T comparable](percent, slop float64) Option[T] {
	return func(w *World[T]) error {
		if !(percent > 0) || percent > 1 {
			return fmt.Errorf("world: correction percent must be in (0, 1], got %v", percent)
		}
		if !(slop >= 0) {
			return fmt.Errorf("world: correction slop must be >= 0, got %v", slop)
		}
		w.correctionPercent = percent
		w.correctionSlop = slop
		return nil
	}
}

// WithIdentity installs the item identity function used to canonicalize
// pairs and order response events. It must be stable across frames for
// any given item.
func WithIdentity[T comparable](identity func(T) string) Option[T] {
	return func(w *World[T]) error {
		if identity == nil {
			return fmt.Errorf("world: nil identity function")
		}
		w.identity = identity
		return nil
	}
}

// NewWorld builds a world around the two mandatory host callbacks: the
// bounds lookup driving the broad phase and the narrow-phase contact
// function.
func NewWorld[T comparable](boundsOf BoundsFunc[T], narrow NarrowFunc[T], opts ...Option[T]) (*World[T], error) {
	if boundsOf == nil {
		return nil, fmt.Errorf("world: nil bounds provider")
	}
	if narrow == nil {
		return nil, fmt.Errorf("world: nil narrow phase")
	}

	grid, err := NewSpatialHashGrid[T](DefaultCellSize)
	if err != nil {
		return nil, err
	}

	w := &World[T]{
		broad:                grid,
		boundsOf:             boundsOf,
		narrow:               narrow,
		identity:             defaultIdentity[T],
		solverIterations:     DefaultSolverIterations,
		constraintIterations: DefaultConstraintIterations,
		retentionFrames:      DefaultRetentionFrames,
		correctionPercent:    constraint.DefaultCorrectionPercent,
		correctionSlop:       constraint.DefaultSlop,
		listeners:            make(map[EventKind][]EventListener[T]),
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	w.cache = NewManifoldCache[T](w.identity)
	w.prev = newPairSet(w.identity)

	return w, nil
}

// Cache exposes the manifold cache, mainly for inspection and tests.
func (w *World[T]) Cache() *ManifoldCache[T] {
	return w.cache
}

// AddConstraint appends a positional constraint solved by Step.
func (w *World[T]) AddConstraint(c constraint.Constraint[T]) {
	if c != nil {
		w.constraints = append(w.constraints, c)
	}
}

// ClearConstraints drops all positional constraints.
func (w *World[T]) ClearConstraints() {
	w.constraints = nil
}

// OnEvent subscribes a listener to one event kind. Listeners run after the
// response, inside Update, in subscription order.
func (w *World[T]) OnEvent(kind EventKind, listener EventListener[T]) {
	if listener != nil {
		w.listeners[kind] = append(w.listeners[kind], listener)
	}
}

// Update runs one collision frame over the items: broad phase, filter,
// narrow phase, the event diff against the previous frame, cache upkeep
// and the contact response. It returns the frame's events with all Enter
// events first, then Stay, then Exit.
func (w *World[T]) Update(items []T) ([]Event[T], error) {
	curr := newPairSet(w.identity)

	for _, pair := range w.broad.FindPotentialPairs(items, w.boundsOf) {
		candidate, ok := classifyPair(pair, w.filterOf)
		if !ok {
			continue
		}
		manifold, hit := w.narrow(pair.First, pair.Second)
		if !hit {
			continue
		}
		curr.add(pairRecord[T]{
			pair:            pair,
			responseEnabled: candidate.ResponseEnabled,
			manifold:        manifold,
		})
	}

	events := diffEvents(w.prev, curr)

	for _, key := range curr.order {
		record := curr.entries[key]
		w.cache.Put(record.pair, record.manifold)
	}

	w.respond(events)

	w.cache.NextFrame()
	w.cache.PruneStale(w.retentionFrames)
	w.prev = curr

	for _, event := range events {
		for _, listener := range w.listeners[event.Kind] {
			listener(event)
		}
	}

	return events, nil
}

// respond dispatches the frame's response-enabled events to the bound
// responder, or to the built-in solver when a body adapter is present.
func (w *World[T]) respond(events []Event[T]) {
	if w.responder != nil {
		ordered := make([]Event[T], 0, len(events))
		for _, event := range events {
			if event.ResponseEnabled {
				ordered = append(ordered, event)
			}
		}
		sortEventsByPair(ordered, w.identity)
		for _, event := range ordered {
			w.responder(event)
		}
		return
	}

	if w.adapter == nil {
		return
	}
	solver := contactSolver[T]{
		iterations: w.solverIterations,
		percent:    w.correctionPercent,
		slop:       w.correctionSlop,
	}
	solver.resolve(w.adapter, events, w.cache, w.identity)
}

// Step advances the simulation by dt seconds: gravity is added to every
// dynamic body's velocity, the positional constraint loop runs, Update
// detects and responds to contacts, and finally positions integrate by
// the post-solve velocities. Requires a body adapter.
func (w *World[T]) Step(items []T, dt float64) ([]Event[T], error) {
	if w.adapter == nil {
		return nil, fmt.Errorf("world: step requires a body adapter")
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("world: step dt must be positive and finite, got %v", dt)
	}

	kick := w.gravity.Mul(dt)
	for _, item := range items {
		if w.adapter.InverseMass(item) > 0 {
			w.adapter.SetVelocity(item, w.adapter.Velocity(item).Add(kick))
		}
	}

	for i := 0; i < w.constraintIterations; i++ {
		for _, c := range w.constraints {
			c.Solve(w.adapter, dt)
		}
	}

	events, err := w.Update(items)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if w.adapter.InverseMass(item) > 0 {
			pos := w.adapter.Position(item)
			w.adapter.SetPosition(item, pos.Add(w.adapter.Velocity(item).Mul(dt)))
		}
	}

	return events, nil
}
