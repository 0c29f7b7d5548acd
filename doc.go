// Package dynamis is a 3D collision-detection and contact-response core
// for real-time hosts: a rendering runtime supplies opaque items with
// bounds, filters and a narrow-phase contact function, and the world turns
// them into a stable Enter/Stay/Exit event stream plus an iterative,
// warm-started contact response.
//
// The frame pipeline is: broad phase (spatial hash grid or sweep and
// prune) → layer/mask filtering → host narrow phase → event diff against
// the previous frame → manifold cache upkeep → contact solver. The narrow
// phase for primitives lives in the contact package; arbitrary convex
// shapes go through the gjk and epa packages via support functions.
//
// A minimal world:
//
//	world, err := dynamis.NewWorld(boundsOf,
//		func(a, b *Body) (dynamis.Manifold, bool) {
//			return contact.AABBs(a.Box, b.Box)
//		},
//		dynamis.WithCellSize[*Body](2.0),
//		dynamis.WithBodyAdapter[*Body](adapter),
//		dynamis.WithGravity[*Body](mgl64.Vec3{0, -9.81, 0}),
//	)
//	events, err := world.Step(bodies, dt)
//
// The core is single threaded: identical inputs produce bit-identical
// event sequences, manifolds and post-step body state.
package dynamis
