package levelset

import (
	"github.com/chewxy/math32"
	"github.com/soypat/sdfgen/internal/vecf32"
)

// PointSegmentDistance returns the Euclidean distance from p to the
// segment [a,b], clamping the projection parameter to [0,1]. Degenerate
// segments (|b-a|^2 < 1e-30) return the distance to a.
func PointSegmentDistance(p, a, b vecf32.Vec) float32 {
	d := vecf32.Sub(b, a)
	d2 := vecf32.Dot(d, d)
	if d2 < 1e-30 {
		return vecf32.Norm(vecf32.Sub(p, a))
	}
	t := vecf32.Dot(vecf32.Sub(p, a), d) / d2
	t = clamp01(t)
	proj := vecf32.Add(a, vecf32.Scale(t, d))
	return vecf32.Norm(vecf32.Sub(p, proj))
}

func clamp01(t float32) float32 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// PointTriangleDistance returns the Euclidean distance from p to the
// closest point on the (filled) triangle (a,b,c). It solves the 2x2
// barycentric system for the projection of p onto the plane of (a,b,c),
// using edges ab = a-c and cb = b-c; if the projection's barycentric
// weights are all non-negative it is inside the triangle, otherwise it
// falls back to the closer of the two triangle edges adjacent to the
// vertex with the largest barycentric weight. See DESIGN.md for the
// degenerate-case edge-selection tie-break this resolves.
func PointTriangleDistance(p, a, b, c vecf32.Vec) float32 {
	ab := vecf32.Sub(a, c)
	cb := vecf32.Sub(b, c)
	pc := vecf32.Sub(p, c)

	abab := vecf32.Dot(ab, ab)
	cbcb := vecf32.Dot(cb, cb)
	abcb := vecf32.Dot(ab, cb)
	det := abab*cbcb - abcb*abcb
	if det < 1e-30 {
		det = 1e-30
	}

	abpc := vecf32.Dot(ab, pc)
	cbpc := vecf32.Dot(cb, pc)

	s := (cbcb*abpc - abcb*cbpc) / det // weight on a
	t := (abab*cbpc - abcb*abpc) / det // weight on b
	w := 1 - s - t                     // weight on c

	if s >= 0 && t >= 0 && w >= 0 {
		// Projection falls inside the triangle.
		proj := vecf32.Add(c, vecf32.Add(vecf32.Scale(s, ab), vecf32.Scale(t, cb)))
		return vecf32.Norm(vecf32.Sub(p, proj))
	}

	// Outside: minimize over the two edges adjacent to the vertex with the
	// largest barycentric weight (that vertex's region is the closest).
	var d1, d2 float32
	switch {
	case w >= s && w >= t:
		// c has the largest weight: edges ca and cb are adjacent to c.
		d1 = PointSegmentDistance(p, c, a)
		d2 = PointSegmentDistance(p, c, b)
	case s >= t:
		// a has the largest weight: edges ab and ac are adjacent to a.
		d1 = PointSegmentDistance(p, a, b)
		d2 = PointSegmentDistance(p, a, c)
	default:
		// b has the largest weight: edges ab and bc are adjacent to b.
		d1 = PointSegmentDistance(p, a, b)
		d2 = PointSegmentDistance(p, b, c)
	}
	if d1 < d2 {
		return d1
	}
	return d2
}

// Orient2D returns the sign of the 2D cross product (x1*y2 - x2*y1) and
// twice the signed area itself. When the area is exactly zero it falls
// back to a deterministic tie-break ordering by y then x, so that an edge
// shared between two triangles is attributed a consistent, non-degenerate
// orientation by both. This is what lets PointInTriangle2D count a ray
// crossing a shared edge exactly once.
func Orient2D(x1, y1, x2, y2 float32) (sign int, area2 float32) {
	area2 = x1*y2 - x2*y1
	if area2 > 0 {
		return 1, area2
	}
	if area2 < 0 {
		return -1, area2
	}
	if y1 != y2 {
		if y1 < y2 {
			return 1, 0
		}
		return -1, 0
	}
	if x1 != x2 {
		if x1 < x2 {
			return 1, 0
		}
		return -1, 0
	}
	return 0, 0
}

// PointInTriangle2D tests whether 2D point p lies inside or on the 2D
// triangle (a,b,c), returning its barycentric coordinates (alpha for a,
// beta for b, gamma for c) and ok=true on a hit. It works by translating
// the three vertices so p is the origin and calling Orient2D on each edge:
// p is inside/on when the three edge orientations agree (or at most one is
// zero and the other two agree).
func PointInTriangle2D(px, py, ax, ay, bx, by, cx, cy float32) (alpha, beta, gamma float32, ok bool) {
	pax, pay := ax-px, ay-py
	pbx, pby := bx-px, by-py
	pcx, pcy := cx-px, cy-py

	s1, area1 := Orient2D(pax, pay, pbx, pby) // opposite c
	s2, area2 := Orient2D(pbx, pby, pcx, pcy) // opposite a
	s3, area3 := Orient2D(pcx, pcy, pax, pay) // opposite b

	nonZero := 0
	sign := 0
	for _, s := range [3]int{s1, s2, s3} {
		if s == 0 {
			continue
		}
		nonZero++
		if sign == 0 {
			sign = s
		} else if sign != s {
			return 0, 0, 0, false
		}
	}
	if nonZero == 0 {
		// Degenerate (all three vertex projections coincide); reject.
		return 0, 0, 0, false
	}

	total := area1 + area2 + area3
	if math32.Abs(total) < 1e-30 {
		return 0, 0, 0, false
	}
	alpha = area2 / total
	beta = area3 / total
	gamma = area1 / total
	return alpha, beta, gamma, true
}
