package gridding

import (
	"cmp"
	"context"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gridding/internal/parallel"
	"github.com/gogpu/gridding/internal/raster"
)

// GridSink is a raster written by Rasterize. Cell (x, y) is addressed by
// column and row; CellToWorld and WorldToCell convert between fractional
// cell coordinates and world coordinates, with cell centres at integer
// cell coordinates.
//
// Rasterize writes disjoint rows from several goroutines, so
// implementations must allow concurrent writes to different rows.
// *Grid is the in-memory implementation.
type GridSink interface {
	Size() (nx, ny int)
	CellSize() float64
	Origin() (xMin, yMin float64)
	CellToWorld(x, y float64) (wx, wy float64)
	WorldToCell(wx, wy float64) (x, y float64)
	Value(x, y int) float64
	SetValue(x, y int, v float64)
	SetNoData(x, y int)
	IsNoData(x, y int) bool
}

var _ GridSink = (*Grid)(nil)

// Rasterize evaluates ip at every cell centre of g and stores the value,
// or no-data where ip has none. A nil interpolator marks every cell as
// no-data.
//
// Rows are processed in parallel (see WithWorkers). The context and the
// WithProgress callback are consulted once per row; when either stops the
// run, Rasterize returns ctx.Err() or ErrCanceled and the rows written so
// far remain valid. Triangulation interpolators are scan-converted
// triangle by triangle; cells outside the triangulation are no-data.
func Rasterize(ctx context.Context, g GridSink, ip *Interpolator, opts ...Option) error {
	o := buildOptions(opts)
	nx, ny := g.Size()
	if ip == nil {
		clearRows(g, 0, ny, nx)
		return nil
	}

	pool := parallel.NewWorkerPool(o.workers)
	defer pool.Close()

	r := &rasterRun{ctx: ctx, progress: o.progress, total: ny}
	log := Logger().With("method", ip.method.String(), "nx", nx, "ny", ny)
	log.Info("gridding: rasterize started", "workers", pool.Workers())
	start := time.Now()

	if ip.method == Triangulation {
		r.triangles(pool, g, ip)
	} else {
		r.cells(pool, g, ip)
	}

	if err := r.err(); err != nil {
		log.Warn("gridding: rasterize stopped", "rows", r.done, "err", err)
		return err
	}
	log.Info("gridding: rasterize finished", "cells", r.filled.Load(), "elapsed", time.Since(start))
	return nil
}

// rasterRun tracks the progress of one Rasterize call.
type rasterRun struct {
	ctx      context.Context
	progress func(done, total int) bool
	total    int

	mu       sync.Mutex
	done     int
	canceled atomic.Bool
	filled   atomic.Int64
}

func (r *rasterRun) stopped() bool {
	return r.canceled.Load() || r.ctx.Err() != nil
}

// rowsDone records finished rows and runs the progress callback.
func (r *rasterRun) rowsDone(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done += n
	if r.progress != nil && !r.canceled.Load() && !r.progress(r.done, r.total) {
		r.canceled.Store(true)
	}
}

func (r *rasterRun) err() error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	if r.canceled.Load() {
		return ErrCanceled
	}
	return nil
}

// cells evaluates the interpolator cell by cell. Each band of rows owns a
// Query.
func (r *rasterRun) cells(pool *parallel.WorkerPool, g GridSink, ip *Interpolator) {
	nx, ny := g.Size()
	bands := parallel.Split(ny, 4*pool.Workers())
	pool.ForBands(bands, func(b parallel.Band) {
		q := ip.NewQuery()
		var filled int64
		for y := b.Start; y < b.End; y++ {
			if r.stopped() {
				break
			}
			for x := range nx {
				wx, wy := g.CellToWorld(float64(x), float64(y))
				if v, ok := q.Value(wx, wy); ok {
					g.SetValue(x, y, v)
					filled++
				} else {
					g.SetNoData(x, y)
				}
			}
			r.rowsDone(1)
		}
		r.filled.Add(filled)
	})
}

// triangles scan-converts the triangulation. Each band walks its rows one
// at a time and rasterizes every triangle overlapping the current row into
// that row only.
func (r *rasterRun) triangles(pool *parallel.WorkerPool, g GridSink, ip *Interpolator) {
	m := ip.mesh
	tris := make([]cellTriangle, m.Len())
	for t := range tris {
		a, b, c := m.Triangle(t)
		for k, v := range [3]int{a, b, c} {
			x, y, z := m.Vertex(v)
			cx, cy := g.WorldToCell(x, y)
			tris[t].v[k] = raster.Vertex{X: cx, Y: cy, Z: z}
		}
		tris[t].yMin = math.Min(tris[t].v[0].Y, math.Min(tris[t].v[1].Y, tris[t].v[2].Y))
		tris[t].yMax = math.Max(tris[t].v[0].Y, math.Max(tris[t].v[1].Y, tris[t].v[2].Y))
	}
	slices.SortStableFunc(tris, func(a, b cellTriangle) int { return cmp.Compare(a.yMin, b.yMin) })

	nx, ny := g.Size()
	bands := parallel.Split(ny, pool.Workers())
	pool.ForBands(bands, func(b parallel.Band) {
		target := &gridTarget{sink: g, written: make([]bool, nx)}
		rz := raster.NewRasterizer(target)
		var active []cellTriangle
		next := 0
		for y := b.Start; y < b.End; y++ {
			if r.stopped() {
				break
			}
			fy := float64(y)
			for next < len(tris) && tris[next].yMin <= fy+1 {
				active = append(active, tris[next])
				next++
			}
			active = slices.DeleteFunc(active, func(t cellTriangle) bool { return t.yMax < fy-1 })

			target.startRow(y)
			clearRows(g, y, y+1, nx)
			rz.SetRows(y, y+1)
			for _, t := range active {
				rz.Fill(t.v)
			}
			r.rowsDone(1)
		}
		r.filled.Add(target.filled)
	})
}

// cellTriangle is a mesh triangle in cell coordinates with its row extent.
type cellTriangle struct {
	v          [3]raster.Vertex
	yMin, yMax float64
}

func clearRows(g GridSink, from, to, nx int) {
	for y := from; y < to; y++ {
		for x := range nx {
			g.SetNoData(x, y)
		}
	}
}

// gridTarget adapts a GridSink to the triangle rasterizer. It serves one
// row at a time and tracks which cells of that row were written, so a value
// equal to the no-data marker still counts as data.
type gridTarget struct {
	sink    GridSink
	row     int
	written []bool
	filled  int64
}

func (t *gridTarget) startRow(y int) {
	t.row = y
	clear(t.written)
}

func (t *gridTarget) Width() int {
	nx, _ := t.sink.Size()
	return nx
}

func (t *gridTarget) Height() int {
	_, ny := t.sink.Size()
	return ny
}

func (t *gridTarget) Value(x, y int) (float64, bool) {
	if y != t.row || !t.written[x] {
		return 0, false
	}
	return t.sink.Value(x, y), true
}

func (t *gridTarget) SetValue(x, y int, v float64) {
	if y != t.row {
		return
	}
	if !t.written[x] {
		t.written[x] = true
		t.filled++
	}
	t.sink.SetValue(x, y, v)
}
