// Package epa implements the Expanding Polytope Algorithm, which turns a
// GJK overlap verdict into penetration evidence: the direction of minimum
// translation and how far along it the shapes interpenetrate.
//
// Starting from the tetrahedron GJK left enclosing the origin, the polytope
// is expanded toward the surface of the Minkowski difference: find the face
// nearest the origin, push a support vertex out along its normal, and
// stitch the vertex into the hull. When a new vertex stops improving the
// nearest distance the face normal is the contact normal and its distance
// the penetration depth.
//
// Reference: Van den Bergen, "Proximity Queries and Penetration Depth
// Computation on 3D Game Objects" (2001).
package epa

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/dynamis/gjk"
	"github.com/akmonengine/dynamis/shape"
)

const (
	// MaxIterations bounds polytope expansion. Simple shape pairs converge
	// in 5-15 iterations; the bound guarantees termination on degenerate
	// geometry.
	MaxIterations = 64

	// ConvergenceTolerance: expansion stops once a new support vertex
	// improves the nearest face distance by less than this.
	ConvergenceTolerance = 1e-6

	// minFaceDistance guards against faces sitting on the origin, whose
	// plane distance carries no direction information.
	minFaceDistance = 1e-9

	// normalSnapThreshold clamps nearly-zero normal components to exactly
	// zero before renormalizing, which keeps axis-aligned stacks from
	// jittering on noise-sized tangent components.
	normalSnapThreshold = 1e-8
)

// Result is the penetration evidence for an overlapping pair: a unit
// normal pointing from the first shape toward the second, and a depth >= 0
// along it. A zero-depth result with a canonical axis signals a degenerate
// query that could not be resolved geometrically.
type Result struct {
	Normal mgl64.Vec3
	Depth  float64
}

// fallback is the canonical degenerate result.
func fallback() Result {
	return Result{Normal: mgl64.Vec3{1, 0, 0}, Depth: 0}
}

// Penetration extracts the contact normal and penetration depth for two
// overlapping convex shapes. The simplex must come from a positive
// gjk.Intersect on the same pair.
//
// Degenerate input never produces an error or a non-finite value: an
// incomplete simplex is resolved from its closest vertex, and a polytope
// that fails to converge numerically collapses to a zero-depth canonical
// axis.
func Penetration(supportA, supportB shape.SupportFunc, simplex gjk.Simplex) Result {
	if simplex.Count < 4 {
		return degenerateSimplex(simplex)
	}

	var poly polytope
	if !poly.init(simplex) {
		slog.Warn("epa: flat initial polytope, using degenerate fallback")
		return degenerateSimplex(simplex)
	}

	for i := 0; i < MaxIterations; i++ {
		closest := poly.closestFace()
		if closest < 0 {
			slog.Warn("epa: polytope lost all faces")
			return fallback()
		}
		face := poly.faces[closest]

		vertex := gjk.Support(supportA, supportB, face.Normal)
		distance := vertex.Dot(face.Normal)

		// The support vertex is no farther out than the face itself: the
		// face lies on the Minkowski-difference surface and the search is
		// over.
		if distance-face.Distance < ConvergenceTolerance {
			return Result{Normal: face.Normal, Depth: face.Distance}
		}

		if !poly.expand(vertex, closest) {
			// No face sees the new vertex, or stitching failed; the best
			// estimate so far is the answer.
			return Result{Normal: face.Normal, Depth: face.Distance}
		}
	}

	// Out of iterations: report the best face found rather than failing.
	if closest := poly.closestFace(); closest >= 0 {
		face := poly.faces[closest]
		return Result{Normal: face.Normal, Depth: face.Distance}
	}
	return fallback()
}

// degenerateSimplex resolves queries where GJK stopped before a full
// tetrahedron: the simplex vertex closest to the origin stands in for the
// nearest surface point.
func degenerateSimplex(simplex gjk.Simplex) Result {
	best := -1
	bestDist := math.Inf(1)
	for i := 0; i < simplex.Count; i++ {
		if d := simplex.Points[i].Len(); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || bestDist < normalSnapThreshold {
		// Touching at the origin itself; no direction to recover.
		return fallback()
	}
	return Result{
		Normal: snapNormal(simplex.Points[best].Mul(1 / bestDist)),
		Depth:  bestDist,
	}
}

// snapNormal clamps noise-sized components to zero and renormalizes, so
// axis-aligned contacts report exact axis normals.
func snapNormal(normal mgl64.Vec3) mgl64.Vec3 {
	for axis := 0; axis < 3; axis++ {
		if math.Abs(normal[axis]) < normalSnapThreshold {
			normal[axis] = 0
		}
	}
	length := normal.Len()
	if length < normalSnapThreshold {
		return mgl64.Vec3{1, 0, 0}
	}
	return normal.Mul(1 / length)
}
