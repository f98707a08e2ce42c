package gridding

import (
	"errors"
	"math"

	"github.com/gogpu/gridding/internal/search"
)

// SearchConfig selects the neighbours used for a local estimate.
type SearchConfig struct {
	// MaxPoints limits the number of neighbours, per quadrant when
	// Quadrants is set. 0 means no limit.
	MaxPoints int
	// Radius limits the distance of neighbours, boundary included. 0 means
	// no limit.
	Radius float64
	// Quadrants collects neighbours from each of the four quadrants around
	// the query so that a cluster on one side cannot crowd out the others.
	Quadrants bool
	// MinPoints is the number of neighbours below which a query has no
	// value.
	MinPoints int
}

// DefaultSearch returns the 20 nearest points in all directions.
func DefaultSearch() SearchConfig {
	return SearchConfig{MaxPoints: 20}
}

// AllPoints reports whether every point takes part in every estimate, in
// which case no spatial index is built.
func (c SearchConfig) AllPoints() bool {
	return c.MaxPoints <= 0 && c.Radius <= 0
}

// Validate rejects negative limits.
func (c SearchConfig) Validate() error {
	switch {
	case c.MaxPoints < 0:
		return inputError("search", "max points", ErrParameterRange, "%d is negative", c.MaxPoints)
	case c.Radius < 0 || math.IsNaN(c.Radius):
		return inputError("search", "radius", ErrParameterRange, "%g is negative", c.Radius)
	case c.MinPoints < 0:
		return inputError("search", "min points", ErrParameterRange, "%d is negative", c.MinPoints)
	}
	return nil
}

// Neighbor is a point selected by a spatial query.
type Neighbor = search.Neighbor

// Cursor holds the selection of one query at a time. Each goroutine
// querying a SpatialIndex needs its own Cursor.
type Cursor = search.Cursor

// SpatialIndex answers nearest neighbour queries over a PointSet. It is
// read-only after construction and safe for concurrent use through
// separate cursors.
type SpatialIndex struct {
	index *search.Index
}

// NewSpatialIndex indexes points. Neighbor.Index refers to positions in
// points. It fails with ErrInsufficientPoints for fewer than two points.
func NewSpatialIndex(points *PointSet) (*SpatialIndex, error) {
	idx, err := search.New(points.Len(), func(i int) (float64, float64, float64) {
		p := points.At(i)
		return p.X, p.Y, p.Value
	})
	if errors.Is(err, search.ErrTooFewPoints) {
		return nil, inputError("spatial index", "", ErrInsufficientPoints, "%d points, need at least 2", points.Len())
	}
	if err != nil {
		return nil, err
	}
	Logger().Debug("gridding: spatial index built", "points", points.Len())
	return &SpatialIndex{index: idx}, nil
}

// Len returns the number of indexed points.
func (s *SpatialIndex) Len() int { return s.index.Len() }

// NewCursor returns a cursor for queries against s.
func (s *SpatialIndex) NewCursor() *Cursor { return s.index.NewCursor() }

// Nearest returns the neighbours of (x, y) selected by cfg, nearest first.
// MinPoints is not applied.
func (s *SpatialIndex) Nearest(x, y float64, cfg SearchConfig) []Neighbor {
	return s.index.Nearest(x, y, cfg.MaxPoints, cfg.Radius, cfg.Quadrants)
}

// SuggestSearchRadius returns five times the edge of the square whose area
// is the extent area per point, rounded to one significant figure. It
// returns 0 when the points span no area.
func SuggestSearchRadius(points *PointSet) float64 {
	b := points.Bound()
	if points.Len() == 0 || b.IsEmpty() {
		return 0
	}
	area := (b.Right() - b.Left()) * (b.Top() - b.Bottom())
	if area <= 0 {
		return 0
	}
	return roundSignificant(5*math.Sqrt(area/float64(points.Len())), 1)
}

// roundSignificant rounds v to the given number of significant figures.
func roundSignificant(v float64, figures int) float64 {
	if v == 0 || figures <= 0 {
		return math.Round(v)
	}
	e := float64(figures) - math.Ceil(math.Log10(math.Abs(v)))
	if e >= 0 {
		scale := math.Pow(10, e)
		return math.Round(v*scale) / scale
	}
	scale := math.Pow(10, -e)
	return math.Round(v/scale) * scale
}
