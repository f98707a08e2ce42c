// Package delaunay builds a Delaunay triangulation of scattered nodes and
// evaluates piecewise linear and natural neighbour (Sibson) interpolants
// over it.
package delaunay

import (
	"errors"
	"math"

	"github.com/fogleman/delaunay"
)

// ErrDegenerate is returned when the nodes do not span a triangle.
var ErrDegenerate = errors.New("delaunay: nodes do not span a triangle")

// Mesh is an immutable triangulation. Triangles are stored counter-clockwise
// as vertex triples; edge e of triangle t = e/3 runs from vertex tri[e] to
// vertex tri[next(e)], and adj[e] is the opposite edge in the neighbouring
// triangle or -1 on the convex hull.
type Mesh struct {
	xs, ys, zs []float64
	tri        []int
	adj        []int
	circles    []circle
}

type circle struct {
	x, y, rsq float64
	ok        bool
}

// New triangulates the nodes (xs[i], ys[i]) carrying values zs[i]. The
// slices are retained by the mesh.
func New(xs, ys, zs []float64) (*Mesh, error) {
	if len(xs) < 3 {
		return nil, ErrDegenerate
	}
	pts := make([]delaunay.Point, len(xs))
	for i := range xs {
		pts[i] = delaunay.Point{X: xs[i], Y: ys[i]}
	}
	tr, err := delaunay.Triangulate(pts)
	if err != nil || tr == nil || len(tr.Triangles) == 0 {
		return nil, ErrDegenerate
	}

	m := &Mesh{xs: xs, ys: ys, zs: zs}
	m.tri = make([]int, 0, len(tr.Triangles))
	for t := 0; t+2 < len(tr.Triangles); t += 3 {
		a, b, c := tr.Triangles[t], tr.Triangles[t+1], tr.Triangles[t+2]
		if m.orient(a, b, xs[c], ys[c]) < 0 {
			b, c = c, b
		}
		m.tri = append(m.tri, a, b, c)
	}
	m.link()

	m.circles = make([]circle, m.Len())
	for t := range m.circles {
		a, b, c := m.Triangle(t)
		x, y, ok := circumcenter(xs[a], ys[a], xs[b], ys[b], xs[c], ys[c])
		dx, dy := xs[a]-x, ys[a]-y
		m.circles[t] = circle{x: x, y: y, rsq: dx*dx + dy*dy, ok: ok}
	}
	return m, nil
}

// link computes edge adjacency from the vertex triples.
func (m *Mesh) link() {
	type edge struct{ from, to int }
	edges := make(map[edge]int, len(m.tri))
	for e := range m.tri {
		edges[edge{m.tri[e], m.tri[next(e)]}] = e
	}
	m.adj = make([]int, len(m.tri))
	for e := range m.tri {
		o, ok := edges[edge{m.tri[next(e)], m.tri[e]}]
		if !ok {
			o = -1
		}
		m.adj[e] = o
	}
}

func next(e int) int {
	if e%3 == 2 {
		return e - 2
	}
	return e + 1
}

// Len returns the number of triangles.
func (m *Mesh) Len() int { return len(m.tri) / 3 }

// Triangle returns the vertex indices of triangle t in counter-clockwise
// order.
func (m *Mesh) Triangle(t int) (a, b, c int) {
	return m.tri[3*t], m.tri[3*t+1], m.tri[3*t+2]
}

// Vertex returns the position and value of vertex i.
func (m *Mesh) Vertex(i int) (x, y, z float64) {
	return m.xs[i], m.ys[i], m.zs[i]
}

// Neighbor returns the triangle sharing edge j (0..2) of triangle t, or -1
// on the hull.
func (m *Mesh) Neighbor(t, j int) int {
	o := m.adj[3*t+j]
	if o < 0 {
		return -1
	}
	return o / 3
}

// orient returns twice the signed area of (a, b, p); positive when p lies
// left of a→b.
func (m *Mesh) orient(a, b int, px, py float64) float64 {
	return (m.xs[b]-m.xs[a])*(py-m.ys[a]) - (m.ys[b]-m.ys[a])*(px-m.xs[a])
}

// Locate returns the triangle containing (x, y), boundary included, or -1
// when the point lies outside the convex hull. The walk starts at hint,
// which callers typically set to the previous result.
func (m *Mesh) Locate(x, y float64, hint int) int {
	n := m.Len()
	t := hint
	if t < 0 || t >= n {
		t = 0
	}

walk:
	for step := range 4 * n {
		for k := range 3 {
			j := (k + step) % 3
			e := 3*t + j
			if m.orient(m.tri[e], m.tri[next(e)], x, y) < 0 {
				if t = m.Neighbor(t, j); t < 0 {
					return -1
				}
				continue walk
			}
		}
		return t
	}
	return m.scan(x, y)
}

// scan finds the containing triangle by testing every triangle.
func (m *Mesh) scan(x, y float64) int {
	for t := range m.Len() {
		if m.contains(t, x, y) {
			return t
		}
	}
	return -1
}

func (m *Mesh) contains(t int, x, y float64) bool {
	a, b, c := m.Triangle(t)
	return m.orient(a, b, x, y) >= 0 && m.orient(b, c, x, y) >= 0 && m.orient(c, a, x, y) >= 0
}

// Linear interpolates the vertex values of triangle t at (x, y) with
// barycentric weights. It reports false for a zero-area triangle.
func (m *Mesh) Linear(t int, x, y float64) (float64, bool) {
	a, b, c := m.Triangle(t)
	d := m.orient(a, b, m.xs[c], m.ys[c])
	if d == 0 {
		return 0, false
	}
	la := m.orient(b, c, x, y) / d
	lb := m.orient(c, a, x, y) / d
	lc := 1 - la - lb
	return la*m.zs[a] + lb*m.zs[b] + lc*m.zs[c], true
}

// circumcenter returns the centre of the circle through three points. It
// reports false when the points are collinear.
func circumcenter(ax, ay, bx, by, cx, cy float64) (float64, float64, bool) {
	bx, by = bx-ax, by-ay
	cx, cy = cx-ax, cy-ay
	d := 2 * (bx*cy - by*cx)
	if d == 0 {
		return 0, 0, false
	}
	bb := bx*bx + by*by
	cc := cx*cx + cy*cy
	ux := (cy*bb - by*cc) / d
	uy := (bx*cc - cx*bb) / d
	if math.IsInf(ux, 0) || math.IsInf(uy, 0) {
		return 0, 0, false
	}
	return ax + ux, ay + uy, true
}
