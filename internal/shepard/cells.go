package shepard

import "math"

// cellGrid is a uniform nr × nr grid of cells over the node extent. Each
// cell holds a singly linked list of node indices: first[cell] is the head,
// next[node] the following node, -1 terminates. Lists are ordered by
// ascending node index.
type cellGrid struct {
	nr         int
	xmin, ymin float64
	dx, dy     float64
	first      []int
	next       []int
}

// newCellGrid places the nodes into nr × nr cells. It returns
// ErrCollinear when the nodes span no area along x or y.
func newCellGrid(x, y []float64, nr int) (*cellGrid, error) {
	xmin, xmax := x[0], x[0]
	ymin, ymax := y[0], y[0]
	for k := 1; k < len(x); k++ {
		xmin, xmax = math.Min(xmin, x[k]), math.Max(xmax, x[k])
		ymin, ymax = math.Min(ymin, y[k]), math.Max(ymax, y[k])
	}

	g := &cellGrid{
		nr:    nr,
		xmin:  xmin,
		ymin:  ymin,
		dx:    (xmax - xmin) / float64(nr),
		dy:    (ymax - ymin) / float64(nr),
		first: make([]int, nr*nr),
		next:  make([]int, len(x)),
	}
	if g.dx == 0 || g.dy == 0 {
		return nil, ErrCollinear
	}

	for i := range g.first {
		g.first[i] = -1
	}
	for k := len(x) - 1; k >= 0; k-- {
		c := g.cell(g.column(x[k]), g.row(y[k]))
		g.next[k] = g.first[c]
		g.first[c] = k
	}
	return g, nil
}

func (g *cellGrid) cell(i, j int) int { return j*g.nr + i }

// column returns the clamped cell column of world coordinate x.
func (g *cellGrid) column(x float64) int { return g.clamp(math.Floor((x - g.xmin) / g.dx)) }

// row returns the clamped cell row of world coordinate y.
func (g *cellGrid) row(y float64) int { return g.clamp(math.Floor((y - g.ymin) / g.dy)) }

func (g *cellGrid) clamp(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > float64(g.nr-1):
		return g.nr - 1
	}
	return int(v)
}

// span converts a range of fractional cell coordinates into the cell
// indices it covers. The result is empty (lo > hi) when the range misses
// the grid.
func (g *cellGrid) span(lo, hi float64) (int, int) {
	last := float64(g.nr - 1)
	lo = math.Min(math.Max(0, math.Floor(lo)), last+1)
	hi = math.Max(math.Min(last, math.Floor(hi)), -1)
	return int(lo), int(hi)
}

// nearest finds the unmarked node closest to (px, py), marks it and returns
// its index and squared distance. It returns -1 when every node is marked.
//
// The search visits rings of cells around the cell containing the point.
// Once a first candidate is found, the rings only need to cover the
// cells within the candidate's distance.
func (g *cellGrid) nearest(px, py float64, x, y []float64, marked []bool) (int, float64) {
	delx, dely := px-g.xmin, py-g.ymin
	i0, j0 := g.column(px), g.row(py)

	imin, imax := 0, g.nr-1
	jmin, jmax := 0, g.nr-1
	i1, i2, j1, j2 := i0, i0, j0, j0

	best, bestDsq := -1, 0.0
	for {
	rows:
		for j := j1; j <= j2; j++ {
			if j > jmax {
				break
			}
			if j < jmin {
				continue
			}
			for i := i1; i <= i2; i++ {
				if i > imax {
					continue rows
				}
				if i < imin {
					continue
				}
				// Only the ring boundary is new.
				if j != j1 && j != j2 && i != i1 && i != i2 {
					continue
				}
				for l := g.first[g.cell(i, j)]; l >= 0; l = g.next[l] {
					if marked[l] {
						continue
					}
					ddx, ddy := x[l]-px, y[l]-py
					dsq := ddx*ddx + ddy*ddy
					if best < 0 {
						best, bestDsq = l, dsq
						r := math.Sqrt(dsq)
						imin = g.clamp(math.Floor((delx - r) / g.dx))
						imax = g.clamp(math.Floor((delx + r) / g.dx))
						jmin = g.clamp(math.Floor((dely - r) / g.dy))
						jmax = g.clamp(math.Floor((dely + r) / g.dy))
						continue
					}
					if dsq < bestDsq {
						best, bestDsq = l, dsq
					}
				}
			}
		}
		if i1 <= imin && i2 >= imax && j1 <= jmin && j2 >= jmax {
			break
		}
		i1--
		i2++
		j1--
		j2++
	}

	if best >= 0 {
		marked[best] = true
	}
	return best, bestDsq
}
