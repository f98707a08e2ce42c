// Package shepard implements the modified quadratic Shepard method for
// bivariate interpolation of scattered data (R. J. Renka, ACM TOMS 660).
//
// Fit computes, for every node, a local quadratic that interpolates the node
// value and fits its nearest neighbours in a weighted least squares sense.
// Surface.Value blends the nodal quadratics with inverse distance weights
// that vanish outside each node's radius of influence.
package shepard

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
)

// MaxNeighbors bounds the number of nodes used for one nodal fit.
const MaxNeighbors = 40

const (
	rtol = 1e-5 // relative tolerance for equal distances
	dtol = 0.01 // conditioning threshold of the scaled system
	sf   = 1.0  // Marquardt damping factor
)

var (
	ErrTooFewNodes        = errors.New("shepard: at least 6 nodes are required")
	ErrQuadraticNeighbors = errors.New("shepard: quadratic neighbour count out of range")
	ErrWeightingNeighbors = errors.New("shepard: weighting neighbour count out of range")
	ErrCollinear          = errors.New("shepard: nodes are collinear")
	ErrDuplicateNodes     = errors.New("shepard: duplicate nodes")
	ErrIllConditioned     = errors.New("shepard: least squares system is ill-conditioned")
)

// NodeError reports the node whose nodal fit failed.
type NodeError struct {
	Node int
	Err  error
}

func (e *NodeError) Error() string { return fmt.Sprintf("%v at node %d", e.Err, e.Node) }
func (e *NodeError) Unwrap() error { return e.Err }

var logger atomic.Pointer[slog.Logger]

func init() { logger.Store(slog.New(slog.DiscardHandler)) }

// SetLogger sets the logger used for fit diagnostics. A nil logger
// disables logging.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger.Store(l)
}

// Params controls the nodal fits.
type Params struct {
	// QuadraticNeighbors is the number of nodes used in each least squares
	// fit, in [5, min(40, n-1)].
	QuadraticNeighbors int
	// WeightingNeighbors is the number of nodes within each node's radius of
	// influence, in [1, min(40, n-1)].
	WeightingNeighbors int
	// Strict makes Fit fail on the first ill-conditioned node instead of
	// reducing that node to a constant.
	Strict bool
}

// Limit returns the largest neighbour count accepted for n nodes.
func Limit(n int) int { return min(MaxNeighbors, n-1) }

// Surface is a fitted interpolant. It is immutable and safe for concurrent
// use.
type Surface struct {
	x, y, f  []float64
	cells    *cellGrid
	rsq      []float64 // squared radius of influence per node
	rmax     float64
	coef     [][5]float64
	degraded []int
}

// Fit computes the nodal functions for the nodes (x[k], y[k], f[k]). The
// slices must have equal length and hold distinct nodes; they are retained
// by the Surface and must not be modified afterwards.
func Fit(x, y, f []float64, p Params) (*Surface, error) {
	n := len(x)
	if n < 6 {
		return nil, ErrTooFewNodes
	}
	lmax := Limit(n)
	if p.QuadraticNeighbors < 5 || p.QuadraticNeighbors > lmax {
		return nil, fmt.Errorf("%w: %d not in [5, %d]", ErrQuadraticNeighbors, p.QuadraticNeighbors, lmax)
	}
	if p.WeightingNeighbors < 1 || p.WeightingNeighbors > lmax {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrWeightingNeighbors, p.WeightingNeighbors, lmax)
	}
	if collinear(x, y) {
		return nil, ErrCollinear
	}

	nr := max(1, int(math.Sqrt(float64(n)/3)))
	cells, err := newCellGrid(x, y, nr)
	if err != nil {
		return nil, err
	}
	logger.Load().Debug("shepard: cell grid", "nodes", n, "cells", nr*nr)

	s := &Surface{
		x:     x,
		y:     y,
		f:     f,
		cells: cells,
		rsq:   make([]float64, n),
		coef:  make([][5]float64, n),
	}
	ft := fitter{
		s:      s,
		nq:     p.QuadraticNeighbors,
		nw:     p.WeightingNeighbors,
		lmax:   lmax,
		marked: make([]bool, n),
	}

	var rsmx float64
	for k := range n {
		err := ft.node(k)
		switch {
		case err == nil:
		case errors.Is(err, ErrIllConditioned) && !p.Strict:
			s.coef[k] = [5]float64{}
			s.degraded = append(s.degraded, k)
		default:
			return nil, &NodeError{Node: k, Err: err}
		}
		rsmx = math.Max(rsmx, s.rsq[k])
	}
	s.rmax = math.Sqrt(rsmx)
	return s, nil
}

// Len returns the number of nodes.
func (s *Surface) Len() int { return len(s.x) }

// Degraded returns the nodes whose least squares system stayed
// ill-conditioned and which contribute their constant value only.
func (s *Surface) Degraded() []int { return s.degraded }

// Radius returns the radius of influence of node k.
func (s *Surface) Radius(k int) float64 { return math.Sqrt(s.rsq[k]) }

// Coefficients returns the quadratic coefficients of node k, in the order
// dx², dx·dy, dy², dx, dy with dx, dy the offsets from the node.
func (s *Surface) Coefficients(k int) [5]float64 { return s.coef[k] }

// Value evaluates the surface at (px, py). It reports false when no node
// has (px, py) within its radius of influence.
func (s *Surface) Value(px, py float64) (float64, bool) {
	g := s.cells
	imin, imax := g.span((px-g.xmin-s.rmax)/g.dx, (px-g.xmin+s.rmax)/g.dx)
	jmin, jmax := g.span((py-g.ymin-s.rmax)/g.dy, (py-g.ymin+s.rmax)/g.dy)
	if imin > imax || jmin > jmax {
		return 0, false
	}

	var sw, swq float64
	for j := jmin; j <= jmax; j++ {
		for i := imin; i <= imax; i++ {
			for k := g.first[g.cell(i, j)]; k >= 0; k = g.next[k] {
				delx, dely := px-s.x[k], py-s.y[k]
				dxsq, dysq := delx*delx, dely*dely
				ds := dxsq + dysq
				rs := s.rsq[k]
				if ds >= rs {
					continue
				}
				if ds == 0 {
					return s.f[k], true
				}
				rds := rs * ds
				rd := math.Sqrt(rds)
				w := (rs + ds - rd - rd) / rds
				a := &s.coef[k]
				sw += w
				swq += w * (a[0]*dxsq + a[1]*delx*dely + a[2]*dysq + a[3]*delx + a[4]*dely + s.f[k])
			}
		}
	}
	if sw == 0 {
		return 0, false
	}
	return swq / sw, true
}

// collinear reports whether all nodes lie on one line.
func collinear(x, y []float64) bool {
	// Reference direction: node 0 to the node farthest from it.
	far, farDsq := 0, 0.0
	for k := 1; k < len(x); k++ {
		dx, dy := x[k]-x[0], y[k]-y[0]
		if d := dx*dx + dy*dy; d > farDsq {
			far, farDsq = k, d
		}
	}
	if farDsq == 0 {
		return true
	}
	ux, uy := x[far]-x[0], y[far]-y[0]
	for k := 1; k < len(x); k++ {
		vx, vy := x[k]-x[0], y[k]-y[0]
		if math.Abs(ux*vy-uy*vx) > 1e-10*farDsq {
			return false
		}
	}
	return true
}
