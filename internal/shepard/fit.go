package shepard

import "math"

// fitter holds the scratch state shared by the nodal fits.
type fitter struct {
	s      *Surface
	nq, nw int
	lmax   int
	marked []bool
	npts   [MaxNeighbors]int
}

// node fits the quadratic of node k and sets its radius of influence.
func (ft *fitter) node(k int) error {
	s := ft.s
	x, y, f := s.x, s.y, s.f
	xk, yk, fk := x[k], y[k], f[k]

	ft.marked[k] = true
	lnp := 0
	defer func() {
		ft.marked[k] = false
		for _, np := range ft.npts[:lnp] {
			ft.marked[np] = false
		}
	}()

	next := func() (int, float64, error) {
		np, rs := s.cells.nearest(xk, yk, x, y, ft.marked)
		if np < 0 || rs == 0 {
			return np, rs, ErrDuplicateNodes
		}
		ft.npts[lnp] = np
		lnp++
		return np, rs, nil
	}

	// Gather nodes by increasing distance until both the weighting and the
	// least squares radii are fixed. Nodes at equal distance are taken
	// together.
	nqwmax := max(ft.nq, ft.nw)
	var rs, sum, rws, rq, avsq float64
	neq := 0
	for {
		sum += rs
		if lnp == ft.lmax {
			if rws == 0 {
				rws = 1.1 * rs
			}
			if rq == 0 {
				neq = ft.lmax
				rq = math.Sqrt(1.1 * rs)
				avsq = sum / float64(neq)
			}
			break
		}
		rsold := rs
		var err error
		if _, rs, err = next(); err != nil {
			return err
		}
		if (rs-rsold)/rs < rtol {
			continue
		}
		if rws == 0 && lnp > ft.nw {
			rws = rs
		}
		if rq == 0 && lnp > ft.nq {
			neq = lnp - 1
			rq = math.Sqrt(rs)
			avsq = sum / float64(neq)
		}
		if lnp > nqwmax {
			break
		}
	}
	s.rsq[k] = rws
	av := math.Sqrt(avsq)

	// Rows of b are the weighted equations reduced to upper triangular form
	// by Givens rotations; column 5 holds the right hand side.
	var b [6][6]float64
	i := 0
	for {
		i++
		np := ft.npts[i-1]
		irow := min(i, 6) - 1
		setup(&b[irow], xk, yk, fk, x[np], y[np], f[np], av, avsq, rq)
		if i == 1 {
			continue
		}
		for j := range irow {
			c, sn := givens(&b[j][j], &b[irow][j])
			rotate(b[j][j+1:], b[irow][j+1:], c, sn)
		}
		if i < neq {
			continue
		}

		if pivotMin(&b)*rq >= dtol {
			break
		}
		if neq == ft.lmax {
			marquardt(&b)
			if pivotMin(&b)*rq < dtol {
				return ErrIllConditioned
			}
			break
		}

		// Ill-conditioned: widen the fit by one more equation.
	widen:
		for {
			rsold := rs
			neq++
			switch {
			case neq == ft.lmax:
				rq = math.Sqrt(1.1 * rs)
				break widen
			case neq == lnp:
				var err error
				if _, rs, err = next(); err != nil {
					return err
				}
			default:
				np := ft.npts[neq]
				dx, dy := x[np]-xk, y[np]-yk
				rs = dx*dx + dy*dy
			}
			if (rs-rsold)/rs >= rtol {
				rq = math.Sqrt(rs)
				break
			}
		}
	}

	a := &s.coef[k]
	for i := 4; i >= 0; i-- {
		var t float64
		for j := i + 1; j < 5; j++ {
			t += b[i][j] * a[j]
		}
		a[i] = (b[i][5] - t) / b[i][i]
	}
	for i := range 3 {
		a[i] /= avsq
	}
	a[3] /= av
	a[4] /= av
	return nil
}

// marquardt appends the damping rows sf·I for the three quadratic terms
// and reduces the system again.
func marquardt(b *[6][6]float64) {
	for i := range 3 {
		b[5] = [6]float64{}
		b[5][i] = sf
		for j := i; j < 5; j++ {
			c, sn := givens(&b[j][j], &b[5][j])
			rotate(b[j][j+1:], b[5][j+1:], c, sn)
		}
	}
}

// pivotMin returns the smallest diagonal magnitude of the reduced system.
func pivotMin(b *[6][6]float64) float64 {
	m := math.Abs(b[0][0])
	for d := 1; d < 5; d++ {
		m = math.Min(m, math.Abs(b[d][d]))
	}
	return m
}

// setup stores the weighted equation contributed by node (xi, yi, fi) to
// the fit of node (xk, yk, fk). Nodes at or beyond radius r contribute a
// zero row. s1 and s2 scale the linear and quadratic terms.
func setup(row *[6]float64, xk, yk, fk, xi, yi, fi, s1, s2, r float64) {
	dx, dy := xi-xk, yi-yk
	dxsq, dysq := dx*dx, dy*dy
	d := math.Sqrt(dxsq + dysq)
	if d <= 0 || d >= r {
		*row = [6]float64{}
		return
	}
	w := (r - d) / r / d
	w1, w2 := w/s1, w/s2
	*row = [6]float64{dxsq * w2, dx * dy * w2, dysq * w2, dx * w1, dy * w1, (fi - fk) * w}
}

// givens computes the plane rotation that zeroes b against a. On return a
// holds the rotated value and b is overwritten.
func givens(a, b *float64) (c, s float64) {
	aa, bb := *a, *b
	switch {
	case math.Abs(aa) > math.Abs(bb):
		u := aa + aa
		v := bb / u
		r := math.Sqrt(v*v+0.25) * u
		c = aa / r
		s = v * (c + c)
		*b = s
		*a = r
	case bb != 0:
		u := bb + bb
		v := aa / u
		*a = math.Sqrt(v*v+0.25) * u
		s = bb / *a
		c = v * (s + s)
		*b = 1
		if c != 0 {
			*b = 1 / c
		}
	default:
		c, s = 1, 0
	}
	return c, s
}

// rotate applies the rotation (c, s) to the vectors x and y.
func rotate(x, y []float64, c, s float64) {
	if c == 1 && s == 0 {
		return
	}
	for i := range x {
		xi, yi := x[i], y[i]
		x[i] = c*xi + s*yi
		y[i] = -s*xi + c*yi
	}
}
