package delaunay

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func plane(x, y float64) float64 { return 3 - 2*x + 0.5*y }

func randomMesh(t *testing.T, n int) *Mesh {
	t.Helper()
	r := rand.New(rand.NewPCG(9, 10))
	xs := []float64{0, 10, 10, 0}
	ys := []float64{0, 0, 10, 10}
	for range n {
		xs = append(xs, r.Float64()*10)
		ys = append(ys, r.Float64()*10)
	}
	zs := make([]float64, len(xs))
	for i := range xs {
		zs[i] = plane(xs[i], ys[i])
	}
	m, err := New(xs, ys, zs)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_Collinear(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := []float64{0, 1, 2, 3}
	zs := []float64{1, 2, 3, 4}
	if _, err := New(xs, ys, zs); !errors.Is(err, ErrDegenerate) {
		t.Errorf("New(collinear) error = %v, want ErrDegenerate", err)
	}
}

func TestNew_TooFew(t *testing.T) {
	if _, err := New([]float64{0, 1}, []float64{0, 1}, []float64{0, 1}); !errors.Is(err, ErrDegenerate) {
		t.Errorf("New(2 nodes) error = %v, want ErrDegenerate", err)
	}
}

func TestNew_CounterClockwise(t *testing.T) {
	m := randomMesh(t, 50)
	for tr := range m.Len() {
		a, b, c := m.Triangle(tr)
		if m.orient(a, b, m.xs[c], m.ys[c]) < 0 {
			t.Errorf("triangle %d is clockwise", tr)
		}
	}
}

func TestNew_Adjacency(t *testing.T) {
	m := randomMesh(t, 30)
	for tr := range m.Len() {
		for j := range 3 {
			o := m.Neighbor(tr, j)
			if o < 0 {
				continue
			}
			found := false
			for k := range 3 {
				if m.Neighbor(o, k) == tr {
					found = true
				}
			}
			if !found {
				t.Errorf("triangle %d lists %d as neighbour but not vice versa", tr, o)
			}
		}
	}
}

// =============================================================================
// Location and evaluation
// =============================================================================

func TestLocate(t *testing.T) {
	m := randomMesh(t, 40)
	r := rand.New(rand.NewPCG(1, 2))
	hint := 0
	for range 200 {
		x, y := r.Float64()*10, r.Float64()*10
		tr := m.Locate(x, y, hint)
		if tr < 0 {
			t.Fatalf("Locate(%v, %v) = -1 inside the hull", x, y)
		}
		if !m.contains(tr, x, y) {
			t.Fatalf("Locate(%v, %v) = %d which does not contain the point", x, y, tr)
		}
		hint = tr
	}
	if tr := m.Locate(-1, 5, 0); tr != -1 {
		t.Errorf("Locate(outside) = %d, want -1", tr)
	}
	if tr := m.Locate(5, 10.5, hint); tr != -1 {
		t.Errorf("Locate(outside) = %d, want -1", tr)
	}
}

func TestLinear_ReproducesPlane(t *testing.T) {
	m := randomMesh(t, 40)
	r := rand.New(rand.NewPCG(5, 6))
	for range 100 {
		x, y := r.Float64()*10, r.Float64()*10
		tr := m.Locate(x, y, 0)
		got, ok := m.Linear(tr, x, y)
		if !ok || math.Abs(got-plane(x, y)) > 1e-9 {
			t.Errorf("Linear(%v, %v) = %v, %v; want %v", x, y, got, ok, plane(x, y))
		}
	}
}

func TestNatural_ReproducesPlane(t *testing.T) {
	m := randomMesh(t, 40)
	s := m.NewScratch()
	r := rand.New(rand.NewPCG(7, 8))
	for range 100 {
		x, y := r.Float64()*10, r.Float64()*10
		tr := m.Locate(x, y, 0)
		got, ok := m.Natural(tr, x, y, s)
		if !ok || math.Abs(got-plane(x, y)) > 1e-7 {
			t.Errorf("Natural(%v, %v) = %v, %v; want %v", x, y, got, ok, plane(x, y))
		}
	}
}

func TestNatural_VertexHit(t *testing.T) {
	m := randomMesh(t, 20)
	s := m.NewScratch()
	for v := range m.xs {
		x, y, z := m.Vertex(v)
		tr := m.Locate(x, y, 0)
		got, ok := m.Natural(tr, x, y, s)
		if !ok || got != z {
			t.Errorf("Natural(vertex %d) = %v, %v; want %v", v, got, ok, z)
		}
	}
}

func TestNatural_WithinDataRange(t *testing.T) {
	xs := []float64{0, 4, 4, 0, 2, 1, 3}
	ys := []float64{0, 0, 4, 4, 2, 3, 1}
	zs := []float64{5, 1, 8, 2, 9, 4, 3}
	m, err := New(xs, ys, zs)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s := m.NewScratch()
	for _, p := range [][2]float64{{1, 1}, {2.5, 3.1}, {3.7, 0.2}, {0.5, 2}} {
		tr := m.Locate(p[0], p[1], 0)
		got, ok := m.Natural(tr, p[0], p[1], s)
		if !ok || got < 1 || got > 9 {
			t.Errorf("Natural(%v) = %v, %v; want a value in [1, 9]", p, got, ok)
		}
	}
}

func TestCircumcenter(t *testing.T) {
	x, y, ok := circumcenter(0, 0, 2, 0, 0, 2)
	if !ok || x != 1 || y != 1 {
		t.Errorf("circumcenter = (%v, %v, %v), want (1, 1, true)", x, y, ok)
	}
	if _, _, ok := circumcenter(0, 0, 1, 1, 2, 2); ok {
		t.Error("circumcenter of collinear points should fail")
	}
}
