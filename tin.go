package gridding

import (
	"errors"

	"github.com/gogpu/gridding/internal/delaunay"
)

// initMesh triangulates the deduplicated points.
func (ip *Interpolator) initMesh(points *PointSet) error {
	op := ip.method.String()
	pts := points.Deduplicate()
	if pts.Len() < 3 {
		return inputError(op, "", ErrInsufficientPoints, "%d distinct points, need at least 3", pts.Len())
	}
	xs, ys, vs := pts.columns()
	m, err := delaunay.New(xs, ys, vs)
	if errors.Is(err, delaunay.ErrDegenerate) {
		return &GeometryError{Op: op, Err: ErrDegenerateTriangle}
	}
	if err != nil {
		return err
	}
	Logger().Debug("gridding: triangulated", "points", pts.Len(), "triangles", m.Len())
	ip.points = pts
	ip.mesh = m
	return nil
}

// Triangles returns the number of triangles of a Triangulation or
// NaturalNeighbour interpolator, and 0 for other methods.
func (ip *Interpolator) Triangles() int {
	if ip.mesh == nil {
		return 0
	}
	return ip.mesh.Len()
}

// locate finds the triangle containing (x, y), walking from the previous
// result of this query.
func (q *Query) locate(x, y float64) int {
	t := q.ip.mesh.Locate(x, y, q.hint)
	if t >= 0 {
		q.hint = t
	}
	return t
}

func (q *Query) linear(x, y float64) (float64, bool) {
	t := q.locate(x, y)
	if t < 0 {
		return 0, false
	}
	return q.ip.mesh.Linear(t, x, y)
}

func (q *Query) naturalNeighbour(x, y float64) (float64, bool) {
	t := q.locate(x, y)
	if t < 0 {
		return 0, false
	}
	return q.ip.mesh.Natural(t, x, y, q.natural)
}
