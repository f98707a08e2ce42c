package search

import (
	"container/heap"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// site is the k-d tree element: a point position and its index.
type site struct {
	x, y  float64
	index int
}

func (s site) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(site)
	if d == 0 {
		return s.x - q.x
	}
	return s.y - q.y
}

func (s site) Dims() int { return 2 }

// Distance returns the squared distance between s and c.
func (s site) Distance(c kdtree.Comparable) float64 {
	q := c.(site)
	dx, dy := s.x-q.x, s.y-q.y
	return dx*dx + dy*dy
}

type sites []site

func (p sites) Index(i int) kdtree.Comparable         { return p[i] }
func (p sites) Len() int                              { return len(p) }
func (p sites) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p sites) Pivot(d kdtree.Dim) int {
	pl := plane{dim: d, sites: p}
	return kdtree.Partition(pl, kdtree.MedianOfMedians(pl))
}

// plane sorts sites along one dimension for pivot selection.
type plane struct {
	dim kdtree.Dim
	sites
}

func (p plane) Less(i, j int) bool {
	if p.dim == 0 {
		return p.sites[i].x < p.sites[j].x
	}
	return p.sites[i].y < p.sites[j].y
}

func (p plane) Swap(i, j int) { p.sites[i], p.sites[j] = p.sites[j], p.sites[i] }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.sites = p.sites[start:end]
	return p
}

const noQuadrant = -1

// quadrant classifies the offset (dx, dy) of a point from the query location.
// Every offset, including (0, 0), falls into exactly one quadrant.
func quadrant(dx, dy float64) int {
	switch {
	case dx > 0 && dy > 0:
		return 0
	case dx > 0:
		return 1
	case dy <= 0:
		return 2
	default:
		return 3
	}
}

// keeper retains the n nearest accepted sites within a squared distance
// limit. It is a max-heap ordered by (distance, index) so that the retained
// set does not depend on the order in which the tree visits nodes.
//
// Until n sites are held, a sentinel with a nil Comparable and the limit as
// distance sits on top of the heap; it bounds the tree search and is removed
// as soon as the heap is full (or by NearestSet afterwards).
type keeper struct {
	heap     []kdtree.ComparableDist
	n        int
	found    int
	limit    float64
	qx, qy   float64
	quadrant int
}

func (k *keeper) reset(x, y float64, n int, limit float64, quadrant int) {
	k.heap = append(k.heap[:0], kdtree.ComparableDist{Dist: limit})
	k.n = n
	k.found = 0
	k.limit = limit
	k.qx, k.qy = x, y
	k.quadrant = quadrant
}

func (k *keeper) Keep(c kdtree.ComparableDist) {
	if c.Dist > k.limit {
		return
	}
	s := c.Comparable.(site)
	if k.quadrant != noQuadrant && quadrant(s.x-k.qx, s.y-k.qy) != k.quadrant {
		return
	}

	if k.n == 0 || k.found < k.n {
		heap.Push(k, c)
		k.found++
		if k.n > 0 && k.found == k.n {
			heap.Pop(k) // the sentinel
		}
		return
	}
	if greater(k.heap[0], c) {
		k.heap[0] = c
		heap.Fix(k, 0)
	}
}

func (k *keeper) Max() kdtree.ComparableDist { return k.heap[0] }
func (k *keeper) Len() int                   { return len(k.heap) }
func (k *keeper) Less(i, j int) bool         { return greater(k.heap[i], k.heap[j]) }
func (k *keeper) Swap(i, j int)              { k.heap[i], k.heap[j] = k.heap[j], k.heap[i] }
func (k *keeper) Push(x any)                 { k.heap = append(k.heap, x.(kdtree.ComparableDist)) }

func (k *keeper) Pop() any {
	last := k.heap[len(k.heap)-1]
	k.heap = k.heap[:len(k.heap)-1]
	return last
}

// greater reports whether a ranks after b. The sentinel ranks after
// everything.
func greater(a, b kdtree.ComparableDist) bool {
	if a.Comparable == nil {
		return b.Comparable != nil
	}
	if b.Comparable == nil {
		return false
	}
	if a.Dist != b.Dist {
		return a.Dist > b.Dist
	}
	return a.Comparable.(site).index > b.Comparable.(site).index
}
