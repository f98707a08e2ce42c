package raster

import "math"

// eps absorbs rounding when a triangle edge passes exactly through a cell
// centre.
const eps = 1e-9

// Vertex is a triangle corner in fractional cell coordinates: cell (x, y)
// has its centre at (x, y). Z is the value carried by the corner.
type Vertex struct {
	X, Y, Z float64
}

// Target is a grid of values written by the rasterizer (avoids import
// cycle).
type Target interface {
	Width() int
	Height() int
	// Value returns the value of cell (x, y) and false when the cell holds
	// no data.
	Value(x, y int) (float64, bool)
	SetValue(x, y int, v float64)
}

// Rasterizer scan-converts triangles onto a target. Every cell whose centre
// lies inside a triangle, boundary included, receives the linearly
// interpolated value; a cell already holding a value keeps the larger one,
// so the result does not depend on triangle order.
//
// Rows outside [rowMin, rowMax) are never touched, which lets several
// rasterizers share one target as long as their row bands are disjoint.
type Rasterizer struct {
	target         Target
	width, height  int
	rowMin, rowMax int
}

// NewRasterizer creates a rasterizer that writes to all rows of t.
func NewRasterizer(t Target) *Rasterizer {
	return &Rasterizer{
		target: t,
		width:  t.Width(),
		height: t.Height(),
		rowMax: t.Height(),
	}
}

// SetRows restricts the rasterizer to the rows [rowMin, rowMax).
func (r *Rasterizer) SetRows(rowMin, rowMax int) {
	r.rowMin = max(0, rowMin)
	r.rowMax = min(r.height, rowMax)
}

// Fill rasterizes one triangle. It returns false when the triangle was
// skipped because it has no area along x or y or lies outside the target.
func (r *Rasterizer) Fill(v [3]Vertex) bool {
	p0, p1, p2 := v[0], v[1], v[2]
	if p1.Y < p0.Y {
		p0, p1 = p1, p0
	}
	if p2.Y < p0.Y {
		p0, p2 = p2, p0
	}
	if p2.Y < p1.Y {
		p1, p2 = p2, p1
	}

	xMin := math.Min(p0.X, math.Min(p1.X, p2.X))
	xMax := math.Max(p0.X, math.Max(p1.X, p2.X))
	if p0.Y == p2.Y || xMin == xMax {
		return false
	}
	if xMax < 0 || xMin > float64(r.width-1) || p2.Y < 0 || p0.Y > float64(r.height-1) {
		return false
	}

	d0 := Vertex{p2.X - p0.X, p2.Y - p0.Y, p2.Z - p0.Z}
	d1 := Vertex{p1.X - p0.X, p1.Y - p0.Y, p1.Z - p0.Z}
	d2 := Vertex{p2.X - p1.X, p2.Y - p1.Y, p2.Z - p1.Z}

	ay := max(r.rowMin, int(math.Ceil(p0.Y-eps)))
	by := min(r.rowMax-1, int(math.Floor(p2.Y+eps)))
	for y := ay; y <= by; y++ {
		fy := float64(y)
		t := (fy - p0.Y) / d0.Y
		xa, za := p0.X+t*d0.X, p0.Z+t*d0.Z

		var xb, zb float64
		if fy <= p1.Y && d1.Y > 0 {
			t = (fy - p0.Y) / d1.Y
			xb, zb = p0.X+t*d1.X, p0.Z+t*d1.Z
		} else {
			t = (fy - p1.Y) / d2.Y
			xb, zb = p1.X+t*d2.X, p1.Z+t*d2.Z
		}
		r.line(y, xa, za, xb, zb)
	}
	return true
}

// line writes the cells of row y whose centres lie in [xa, xb].
func (r *Rasterizer) line(y int, xa, za, xb, zb float64) {
	if xb < xa {
		xa, xb = xb, xa
		za, zb = zb, za
	}
	dz := 0.0
	if xb > xa {
		dz = (zb - za) / (xb - xa)
	}

	ax := max(0, int(math.Ceil(xa-eps)))
	bx := min(r.width-1, int(math.Floor(xb+eps)))
	for x := ax; x <= bx; x++ {
		z := za + (float64(x)-xa)*dz
		if old, ok := r.target.Value(x, y); !ok || old < z {
			r.target.SetValue(x, y, z)
		}
	}
}
