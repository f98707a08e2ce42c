package gridding

import (
	"math"

	"github.com/paulmach/orb"
	"golang.org/x/image/math/f64"
)

// DefaultNoData is the value a new Grid uses to mark cells without data.
const DefaultNoData = -99999.0

// Grid is an in-memory raster of NX × NY cells. Cell (x, y) is centred at
// world coordinate (XMin + x·CellSize, YMin + y·CellSize); rows grow
// northwards with y.
//
// Concurrent writes to different cells are safe.
type Grid struct {
	nx, ny     int
	cellSize   float64
	xMin, yMin float64
	noData     float64
	cells      []float64
	toWorld    f64.Aff3
	toCell     f64.Aff3
}

// NewGrid creates a grid with every cell set to no-data.
func NewGrid(nx, ny int, cellSize, xMin, yMin float64) (*Grid, error) {
	switch {
	case nx < 1 || ny < 1:
		return nil, inputError("grid", "size", ErrParameterRange, "%d × %d has no cells", nx, ny)
	case !(cellSize > 0) || math.IsInf(cellSize, 0):
		return nil, inputError("grid", "cell size", ErrParameterRange, "%g is not positive", cellSize)
	case !finite(xMin) || !finite(yMin):
		return nil, inputError("grid", "origin", ErrParameterRange, "(%g, %g) is not finite", xMin, yMin)
	}

	g := &Grid{
		nx:       nx,
		ny:       ny,
		cellSize: cellSize,
		xMin:     xMin,
		yMin:     yMin,
		noData:   DefaultNoData,
		cells:    make([]float64, nx*ny),
		toWorld:  f64.Aff3{cellSize, 0, xMin, 0, cellSize, yMin},
		toCell:   f64.Aff3{1 / cellSize, 0, -xMin / cellSize, 0, 1 / cellSize, -yMin / cellSize},
	}
	g.Reset()
	return g, nil
}

// NewGridFromBound creates a grid whose cell centres span b.
func NewGridFromBound(b orb.Bound, cellSize float64) (*Grid, error) {
	if b.IsEmpty() {
		return nil, inputError("grid", "extent", ErrParameterRange, "bound is empty")
	}
	if !(cellSize > 0) {
		return nil, inputError("grid", "cell size", ErrParameterRange, "%g is not positive", cellSize)
	}
	nx := 1 + int(math.Round((b.Right()-b.Left())/cellSize))
	ny := 1 + int(math.Round((b.Top()-b.Bottom())/cellSize))
	return NewGrid(nx, ny, cellSize, b.Left(), b.Bottom())
}

// SuggestGrid returns a grid covering points with about one cell per
// point: the cell size is the edge of the square whose area is the extent
// area per point, rounded to two significant figures, and the extent is
// padded by one cell on every side.
func SuggestGrid(points *PointSet) (*Grid, error) {
	if points.Len() < 2 {
		return nil, inputError("grid", "", ErrInsufficientPoints, "%d points, need at least 2", points.Len())
	}
	b := points.Bound()
	w, h := b.Right()-b.Left(), b.Top()-b.Bottom()
	switch {
	case w == 0 && h == 0:
		b = b.Pad(1)
	case w == 0:
		b = b.Pad(h / 2)
	case h == 0:
		b = b.Pad(w / 2)
	}
	w, h = b.Right()-b.Left(), b.Top()-b.Bottom()

	size := roundSignificant(math.Sqrt(w*h/float64(points.Len())), 2)
	return NewGridFromBound(b.Pad(size), size)
}

// Size returns the number of columns and rows.
func (g *Grid) Size() (nx, ny int) { return g.nx, g.ny }

// CellSize returns the edge length of a cell in world units.
func (g *Grid) CellSize() float64 { return g.cellSize }

// Origin returns the world coordinate of the centre of cell (0, 0).
func (g *Grid) Origin() (xMin, yMin float64) { return g.xMin, g.yMin }

// Transform returns the affine map from cell to world coordinates.
func (g *Grid) Transform() f64.Aff3 { return g.toWorld }

// Bound returns the extent spanned by the cell centres.
func (g *Grid) Bound() orb.Bound {
	x, y := g.CellToWorld(float64(g.nx-1), float64(g.ny-1))
	return orb.Bound{Min: orb.Point{g.xMin, g.yMin}, Max: orb.Point{x, y}}
}

// CellToWorld maps fractional cell coordinates to world coordinates.
func (g *Grid) CellToWorld(x, y float64) (wx, wy float64) {
	return apply(g.toWorld, x, y)
}

// WorldToCell maps world coordinates to fractional cell coordinates.
func (g *Grid) WorldToCell(wx, wy float64) (x, y float64) {
	return apply(g.toCell, wx, wy)
}

func apply(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// NoDataValue returns the value that marks cells without data.
func (g *Grid) NoDataValue() float64 { return g.noData }

// SetNoDataValue changes the no-data marker. Cells holding the previous
// marker are rewritten.
func (g *Grid) SetNoDataValue(v float64) {
	for i, c := range g.cells {
		if g.isNoData(c) {
			g.cells[i] = v
		}
	}
	g.noData = v
}

// Reset marks every cell as no-data.
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = g.noData
	}
}

// Value returns the stored value of cell (x, y), which is NoDataValue for
// cells without data.
func (g *Grid) Value(x, y int) float64 { return g.cells[y*g.nx+x] }

// SetValue stores v in cell (x, y).
func (g *Grid) SetValue(x, y int, v float64) { g.cells[y*g.nx+x] = v }

// SetNoData marks cell (x, y) as holding no data.
func (g *Grid) SetNoData(x, y int) { g.cells[y*g.nx+x] = g.noData }

// IsNoData reports whether cell (x, y) holds no data. NaN counts as no
// data.
func (g *Grid) IsNoData(x, y int) bool { return g.isNoData(g.cells[y*g.nx+x]) }

func (g *Grid) isNoData(v float64) bool { return v == g.noData || math.IsNaN(v) }

// Stats summarizes the cells holding data.
func (g *Grid) Stats() Stats {
	v := make([]float64, 0, len(g.cells))
	for _, c := range g.cells {
		if !g.isNoData(c) {
			v = append(v, c)
		}
	}
	return summarize(v)
}
