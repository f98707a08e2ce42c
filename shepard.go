package gridding

import (
	"errors"

	"github.com/gogpu/gridding/internal/shepard"
)

// initShepard fits the modified quadratic Shepard surface to the
// deduplicated points.
func (ip *Interpolator) initShepard(points *PointSet, c ShepardConfig, strict bool) error {
	const op = "shepard"
	pts := points.Deduplicate()
	n := pts.Len()
	if n < 6 {
		return inputError(op, "", ErrInsufficientPoints, "%d distinct points, need at least 6", n)
	}
	lmax := shepard.Limit(n)
	if c.QuadraticNeighbors < 5 || c.QuadraticNeighbors > lmax {
		return inputError(op, "quadratic neighbors", ErrParameterRange,
			"%d not in [5, %d]", c.QuadraticNeighbors, lmax)
	}
	if c.WeightingNeighbors < 1 || c.WeightingNeighbors > lmax {
		return inputError(op, "weighting neighbors", ErrParameterRange,
			"%d not in [1, %d]", c.WeightingNeighbors, lmax)
	}

	xs, ys, vs := pts.columns()
	s, err := shepard.Fit(xs, ys, vs, shepard.Params{
		QuadraticNeighbors: c.QuadraticNeighbors,
		WeightingNeighbors: c.WeightingNeighbors,
		Strict:             strict,
	})
	if err != nil {
		return shepardError(err, pts)
	}
	if d := s.Degraded(); len(d) > 0 {
		Logger().Warn("gridding: ill-conditioned shepard nodes reduced to constants",
			"nodes", len(d), "total", n, "first", d[0])
	}
	ip.points = pts
	ip.surface = s
	return nil
}

// shepardError translates fit failures into the package error types.
func shepardError(err error, pts *PointSet) error {
	const op = "shepard"
	var ne *shepard.NodeError
	switch {
	case errors.Is(err, shepard.ErrCollinear):
		return &GeometryError{Op: op, Err: ErrCollinear}
	case errors.Is(err, shepard.ErrDuplicateNodes):
		return &GeometryError{Op: op, Err: ErrDuplicateNodes}
	case errors.As(err, &ne) && errors.Is(err, shepard.ErrIllConditioned):
		p := pts.At(ne.Node)
		return &InstabilityError{Node: ne.Node, X: p.X, Y: p.Y, Err: ErrIllConditioned}
	case errors.Is(err, shepard.ErrTooFewNodes):
		return inputError(op, "", ErrInsufficientPoints, "%d distinct points, need at least 6", pts.Len())
	case errors.Is(err, shepard.ErrQuadraticNeighbors), errors.Is(err, shepard.ErrWeightingNeighbors):
		return &InputError{Op: op, Detail: err.Error(), Err: ErrParameterRange}
	}
	return err
}

// ShepardRadius returns the radius of influence of point k of a modified
// quadratic Shepard interpolator, with k indexing Points. It returns 0 for
// other methods.
func (ip *Interpolator) ShepardRadius(k int) float64 {
	if ip.surface == nil {
		return 0
	}
	return ip.surface.Radius(k)
}

// DegradedNodes returns the points of a modified quadratic Shepard
// interpolator whose nodal fit was reduced to a constant, as indices into
// Points.
func (ip *Interpolator) DegradedNodes() []int {
	if ip.surface == nil {
		return nil
	}
	return ip.surface.Degraded()
}
