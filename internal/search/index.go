// Package search provides the spatial index used to select the neighbours
// of a query location.
//
// The index is a 2-d tree (gonum spatial/kdtree) built once over a point set.
// It is read-only after construction; all per-query state lives in a Cursor,
// so any number of goroutines can query one Index as long as each owns its
// cursor.
package search

import (
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// ErrTooFewPoints is returned by New when fewer than two points are given.
var ErrTooFewPoints = errors.New("search: index needs at least 2 points")

// Neighbor is a point selected by a query, together with its distance to
// the query location.
type Neighbor struct {
	Index    int // position in the indexed point set
	X, Y     float64
	Value    float64
	Distance float64
}

// Index is a read-only spatial index over a fixed point set.
type Index struct {
	tree   *kdtree.Tree
	xs, ys []float64
	values []float64
}

// New builds an index over n points. at returns the coordinates and value
// of the i-th point; it is called exactly once per point.
func New(n int, at func(i int) (x, y, value float64)) (*Index, error) {
	if n < 2 {
		return nil, ErrTooFewPoints
	}

	idx := &Index{
		xs:     make([]float64, n),
		ys:     make([]float64, n),
		values: make([]float64, n),
	}
	pts := make(sites, n)
	for i := range n {
		x, y, v := at(i)
		idx.xs[i], idx.ys[i], idx.values[i] = x, y, v
		pts[i] = site{x: x, y: y, index: i}
	}
	idx.tree = kdtree.New(pts, false)
	return idx, nil
}

// Len returns the number of indexed points.
func (idx *Index) Len() int { return len(idx.xs) }

// NewCursor returns a cursor bound to the index.
func (idx *Index) NewCursor() *Cursor {
	return &Cursor{index: idx}
}

// Nearest selects neighbours of (x, y) like Cursor.Select and returns them
// ranked nearest first. The returned slice is owned by the caller.
func (idx *Index) Nearest(x, y float64, maxPoints int, radius float64, quadrants bool) []Neighbor {
	c := idx.NewCursor()
	n := c.Select(x, y, maxPoints, radius, quadrants)
	return slices.Clone(c.results[:n])
}

// Cursor holds the result of the last query made through it. A cursor is
// not safe for concurrent use.
type Cursor struct {
	index   *Index
	keep    keeper
	results []Neighbor
}

// Select finds the points around (x, y) and returns how many were found.
//
// At most maxPoints points are selected (0 means no limit), all of them
// within radius of the query location, boundary included (0 means no
// limit). With quadrants set, up to maxPoints points are collected from each
// of the four quadrants around the query and the union is ranked.
//
// Results are ordered by distance; equal distances are ordered by point
// index. Any previous result of the cursor is overwritten.
func (c *Cursor) Select(x, y float64, maxPoints int, radius float64, quadrants bool) int {
	c.results = c.results[:0]
	if maxPoints < 0 {
		maxPoints = 0
	}
	limit := math.Inf(1)
	if radius > 0 {
		limit = radius * radius
	}

	if !quadrants {
		c.collect(x, y, maxPoints, limit, noQuadrant)
		return len(c.results)
	}

	for q := range 4 {
		c.collect(x, y, maxPoints, limit, q)
	}
	slices.SortFunc(c.results, compareNeighbors)
	return len(c.results)
}

// Count returns the number of points held by the cursor.
func (c *Cursor) Count() int { return len(c.results) }

// Point returns the i-th selected point, nearest first.
func (c *Cursor) Point(i int) (Neighbor, bool) {
	if i < 0 || i >= len(c.results) {
		return Neighbor{}, false
	}
	return c.results[i], true
}

// Neighbors returns the current selection. The slice is reused by the next
// call to Select.
func (c *Cursor) Neighbors() []Neighbor { return c.results }

func (c *Cursor) collect(x, y float64, maxPoints int, limit float64, quadrant int) {
	c.keep.reset(x, y, maxPoints, limit, quadrant)
	c.index.tree.NearestSet(&c.keep, site{x: x, y: y, index: -1})

	idx := c.index
	for _, cd := range c.keep.heap {
		s := cd.Comparable.(site)
		c.results = append(c.results, Neighbor{
			Index:    s.index,
			X:        idx.xs[s.index],
			Y:        idx.ys[s.index],
			Value:    idx.values[s.index],
			Distance: math.Sqrt(cd.Dist),
		})
	}
}

func compareNeighbors(a, b Neighbor) int {
	switch {
	case a.Distance < b.Distance:
		return -1
	case a.Distance > b.Distance:
		return 1
	}
	return a.Index - b.Index
}
