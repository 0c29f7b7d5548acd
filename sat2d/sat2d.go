// Package sat2d provides a separating-axis overlap test for 2D convex
// polygons. It is a planar narrow-phase variant offered alongside the 3D
// core; nothing in the 3D frame loop depends on it.
package sat2d

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Polygon is a convex polygon given by its vertices in order (either
// winding). At least three vertices are required.
type Polygon struct {
	Vertices []mgl64.Vec2
}

// NewPolygon validates and builds a polygon.
func NewPolygon(vertices []mgl64.Vec2) (Polygon, error) {
	if len(vertices) < 3 {
		return Polygon{}, fmt.Errorf("polygon needs at least 3 vertices, got %d", len(vertices))
	}
	for _, v := range vertices {
		if math.IsNaN(v.X()) || math.IsInf(v.X(), 0) || math.IsNaN(v.Y()) || math.IsInf(v.Y(), 0) {
			return Polygon{}, fmt.Errorf("polygon vertices must be finite, got %v", v)
		}
	}
	return Polygon{Vertices: vertices}, nil
}

func (p Polygon) centroid() mgl64.Vec2 {
	var sum mgl64.Vec2
	for _, v := range p.Vertices {
		sum = sum.Add(v)
	}
	return sum.Mul(1 / float64(len(p.Vertices)))
}

// project returns the interval covered by the polygon on the axis.
func (p Polygon) project(axis mgl64.Vec2) (min, max float64) {
	min = p.Vertices[0].Dot(axis)
	max = min
	for _, v := range p.Vertices[1:] {
		d := v.Dot(axis)
		min = math.Min(min, d)
		max = math.Max(max, d)
	}
	return min, max
}

// Result is the minimum translation for two overlapping polygons: a unit
// normal oriented from the first polygon toward the second and the overlap
// depth along it.
type Result struct {
	Normal mgl64.Vec2
	Depth  float64
}

// Overlap tests two convex polygons against every edge normal of both. A
// single separating axis proves disjointness; otherwise the axis with the
// smallest overlap is the contact normal.
func Overlap(a, b Polygon) (Result, bool) {
	if len(a.Vertices) < 3 || len(b.Vertices) < 3 {
		return Result{}, false
	}

	best := Result{Depth: math.Inf(1)}

	for _, poly := range []Polygon{a, b} {
		n := len(poly.Vertices)
		for i := 0; i < n; i++ {
			edge := poly.Vertices[(i+1)%n].Sub(poly.Vertices[i])
			length := edge.Len()
			if length < 1e-12 {
				continue
			}
			axis := mgl64.Vec2{-edge.Y(), edge.X()}.Mul(1 / length)

			minA, maxA := a.project(axis)
			minB, maxB := b.project(axis)
			overlap := math.Min(maxA, maxB) - math.Max(minA, minB)
			if overlap < 0 {
				return Result{}, false
			}
			if overlap < best.Depth {
				best = Result{Normal: axis, Depth: overlap}
			}
		}
	}

	// Orient the normal from a toward b.
	if b.centroid().Sub(a.centroid()).Dot(best.Normal) < 0 {
		best.Normal = best.Normal.Mul(-1)
	}

	return best, true
}
