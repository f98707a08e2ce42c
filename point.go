package gridding

import (
	"cmp"
	"math"
	"slices"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DuplicateEpsilon is the coordinate tolerance below which two points are
// considered to share a location.
const DuplicateEpsilon = 1e-7

// Point is a sample location carrying a scalar attribute.
type Point struct {
	X, Y  float64
	Value float64
}

// Orb returns the location of p as an orb.Point.
func (p Point) Orb() orb.Point { return orb.Point{p.X, p.Y} }

// PointSource is a read-only collection of located features, such as a
// shapefile layer or a database cursor, from which a PointSet is built.
type PointSource interface {
	Len() int
	XY(i int) (x, y float64)
	// Attribute returns the named attribute of feature i, or false when the
	// feature has no value for it.
	Attribute(i int, field string) (float64, bool)
}

// PointSet is an immutable, ordered set of points. Methods that reorder or
// filter return a new PointSet.
type PointSet struct {
	points []Point
}

// NewPointSet copies points into a new PointSet. Points with a NaN or
// infinite coordinate or value are dropped.
func NewPointSet(points []Point) *PointSet {
	s := &PointSet{points: make([]Point, 0, len(points))}
	for _, p := range points {
		if finite(p.X) && finite(p.Y) && finite(p.Value) {
			s.points = append(s.points, p)
		}
	}
	return s
}

// PointSetFrom reads the named attribute of every feature of src. Features
// without a finite value are skipped.
func PointSetFrom(src PointSource, field string) *PointSet {
	pts := make([]Point, 0, src.Len())
	for i := range src.Len() {
		v, ok := src.Attribute(i, field)
		if !ok {
			continue
		}
		x, y := src.XY(i)
		pts = append(pts, Point{X: x, Y: y, Value: v})
	}
	return NewPointSet(pts)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Len returns the number of points.
func (s *PointSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.points)
}

// At returns the i-th point.
func (s *PointSet) At(i int) Point { return s.points[i] }

// Points returns a copy of the points.
func (s *PointSet) Points() []Point { return slices.Clone(s.points) }

// Bound returns the extent of the points. The bound of an empty set is
// empty (orb.Bound.IsEmpty reports true).
func (s *PointSet) Bound() orb.Bound {
	if s.Len() == 0 {
		return orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{-1, -1}}
	}
	b := orb.Bound{Min: s.points[0].Orb(), Max: s.points[0].Orb()}
	for _, p := range s.points[1:] {
		b = b.Extend(p.Orb())
	}
	return b
}

// Stats summarizes a set of values.
type Stats struct {
	Count    int
	Min, Max float64
	Mean     float64
	StdDev   float64
}

// Stats summarizes the point values. All fields but Count are zero for an
// empty set.
func (s *PointSet) Stats() Stats {
	return summarize(s.values())
}

func summarize(v []float64) Stats {
	st := Stats{Count: len(v)}
	if len(v) == 0 {
		return st
	}
	st.Min, st.Max = floats.Min(v), floats.Max(v)
	if len(v) == 1 {
		st.Mean = v[0]
		return st
	}
	st.Mean, st.StdDev = stat.MeanStdDev(v, nil)
	return st
}

// Deduplicate returns the points sorted by y then x with every point that
// lies within DuplicateEpsilon of an earlier retained point, along both
// axes, removed. The first point of each cluster in sorted order is kept.
// Deduplicate is idempotent.
func (s *PointSet) Deduplicate() *PointSet {
	sorted := slices.Clone(s.points)
	slices.SortStableFunc(sorted, func(a, b Point) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
	})

	kept := sorted[:0]
	for _, p := range sorted {
		if !hasDuplicate(kept, p) {
			kept = append(kept, p)
		}
	}
	return &PointSet{points: slices.Clip(kept)}
}

// hasDuplicate scans back over the retained points whose y lies within
// DuplicateEpsilon of p.
func hasDuplicate(kept []Point, p Point) bool {
	for i := len(kept) - 1; i >= 0 && p.Y-kept[i].Y < DuplicateEpsilon; i-- {
		if math.Abs(p.X-kept[i].X) < DuplicateEpsilon {
			return true
		}
	}
	return false
}

// Canonical returns the points sorted by y, then x, then value. Results
// computed over a canonical set do not depend on the input order.
func (s *PointSet) Canonical() *PointSet {
	sorted := slices.Clone(s.points)
	slices.SortFunc(sorted, func(a, b Point) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X), cmp.Compare(a.Value, b.Value))
	})
	return &PointSet{points: sorted}
}

// Filter returns the points for which keep reports true, in order.
func (s *PointSet) Filter(keep func(i int, p Point) bool) *PointSet {
	out := &PointSet{}
	for i, p := range s.points {
		if keep(i, p) {
			out.points = append(out.points, p)
		}
	}
	return out
}

func (s *PointSet) values() []float64 {
	v := make([]float64, len(s.points))
	for i, p := range s.points {
		v[i] = p.Value
	}
	return v
}

// columns splits the points into coordinate and value slices.
func (s *PointSet) columns() (xs, ys, vs []float64) {
	n := len(s.points)
	xs, ys, vs = make([]float64, n), make([]float64, n), make([]float64, n)
	for i, p := range s.points {
		xs[i], ys[i], vs[i] = p.X, p.Y, p.Value
	}
	return xs, ys, vs
}
