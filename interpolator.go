package gridding

import (
	"fmt"
	"strings"

	"github.com/gogpu/gridding/internal/delaunay"
	"github.com/gogpu/gridding/internal/shepard"
)

// Method is an interpolation algorithm.
type Method int

const (
	// InverseDistance is the weighted mean of the neighbours, weighted by
	// distance.
	InverseDistance Method = iota
	// AngularDistanceWeighted is inverse distance weighting with Shepard's
	// directional correction: neighbours shadowed by closer neighbours in
	// the same direction count less.
	AngularDistanceWeighted
	// ModifiedQuadraticShepard blends local quadratic fits (ACM TOMS 660).
	ModifiedQuadraticShepard
	// Triangulation interpolates linearly within the triangles of a
	// Delaunay triangulation.
	Triangulation
	// NearestNeighbour takes the value of the closest point.
	NearestNeighbour
	// NaturalNeighbour is Sibson's area-stealing interpolation over the
	// Delaunay triangulation.
	NaturalNeighbour
)

var methodNames = [...]string{
	InverseDistance:          "inverse-distance",
	AngularDistanceWeighted:  "angular-distance",
	ModifiedQuadraticShepard: "quadratic-shepard",
	Triangulation:            "triangulation",
	NearestNeighbour:         "nearest-neighbour",
	NaturalNeighbour:         "natural-neighbour",
}

// String returns the method name accepted by ParseMethod.
func (m Method) String() string {
	if m >= 0 && int(m) < len(methodNames) {
		return methodNames[m]
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod returns the method with the given name (case-insensitive).
func ParseMethod(name string) (Method, error) {
	for m, n := range methodNames {
		if strings.EqualFold(name, n) {
			return Method(m), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// MinPoints returns the smallest point set the method can be built on.
func (m Method) MinPoints() int {
	switch m {
	case ModifiedQuadraticShepard:
		return 6
	case Triangulation, NaturalNeighbour:
		return 3
	}
	return 1
}

// Interpolator estimates values at arbitrary locations from a point set.
// It is immutable once built and safe for concurrent use; each goroutine
// evaluates through its own Query.
type Interpolator struct {
	method    Method
	points    *PointSet
	search    SearchConfig
	weighting Weighting
	index     *SpatialIndex
	surface   *shepard.Surface
	mesh      *delaunay.Mesh
}

// New builds an interpolator of the given method over points.
//
// InverseDistance, AngularDistanceWeighted and NearestNeighbour use the
// points as given and index them unless the search takes all points.
// ModifiedQuadraticShepard, Triangulation and NaturalNeighbour work on the
// deduplicated points.
//
// Errors are *InputError for too few points or out of range parameters,
// *GeometryError for point configurations the method cannot handle and,
// with WithStrictFit, *InstabilityError.
func New(method Method, points *PointSet, opts ...Option) (*Interpolator, error) {
	o := buildOptions(opts)
	ip := &Interpolator{method: method, search: o.search, weighting: o.weighting}
	if points == nil {
		points = NewPointSet(nil)
	}

	var err error
	switch method {
	case InverseDistance, AngularDistanceWeighted, NearestNeighbour:
		err = ip.initLocal(points)
	case ModifiedQuadraticShepard:
		err = ip.initShepard(points, o.shepard, o.strict)
	case Triangulation, NaturalNeighbour:
		err = ip.initMesh(points)
	default:
		return nil, inputError("interpolator", "method", ErrUnknownMethod, "%d", int(method))
	}
	if err != nil {
		return nil, err
	}
	return ip, nil
}

func (ip *Interpolator) initLocal(points *PointSet) error {
	op := ip.method.String()
	if points.Len() < 1 {
		return inputError(op, "", ErrInsufficientPoints, "no points")
	}
	if err := ip.search.Validate(); err != nil {
		return err
	}
	if ip.method != NearestNeighbour {
		if err := ip.weighting.Validate(); err != nil {
			return err
		}
	}
	ip.points = points
	if ip.search.AllPoints() {
		return nil
	}
	idx, err := NewSpatialIndex(points)
	if err != nil {
		return err
	}
	ip.index = idx
	return nil
}

// Method returns the interpolation method.
func (ip *Interpolator) Method() Method { return ip.method }

// Points returns the points the interpolator was built on, after
// deduplication where the method requires it.
func (ip *Interpolator) Points() *PointSet { return ip.points }

// Value estimates the value at (x, y). It reports false where the method
// has no value, for example when no neighbour is within the search radius
// or the location is outside the triangulation. Value allocates a Query
// per call; use NewQuery for repeated evaluation.
func (ip *Interpolator) Value(x, y float64) (float64, bool) {
	return ip.NewQuery().Value(x, y)
}

// Query evaluates an Interpolator and holds the per-caller search state.
// A Query must not be used by more than one goroutine at a time.
type Query struct {
	ip      *Interpolator
	cursor  *Cursor
	near    []Neighbor
	weights []float64
	hint    int
	natural *delaunay.Scratch
}

// NewQuery returns a query bound to ip.
func (ip *Interpolator) NewQuery() *Query {
	q := &Query{ip: ip}
	if ip.index != nil {
		q.cursor = ip.index.NewCursor()
	}
	if ip.method == NaturalNeighbour {
		q.natural = ip.mesh.NewScratch()
	}
	return q
}

// Value estimates the value at (x, y); see Interpolator.Value.
func (q *Query) Value(x, y float64) (float64, bool) {
	switch q.ip.method {
	case InverseDistance:
		return q.inverseDistance(x, y)
	case AngularDistanceWeighted:
		return q.angularDistance(x, y)
	case ModifiedQuadraticShepard:
		return q.ip.surface.Value(x, y)
	case Triangulation:
		return q.linear(x, y)
	case NearestNeighbour:
		return q.nearest(x, y)
	case NaturalNeighbour:
		return q.naturalNeighbour(x, y)
	}
	return 0, false
}
