package search

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type pt struct{ x, y, v float64 }

func build(t *testing.T, pts []pt) *Index {
	t.Helper()
	idx, err := New(len(pts), func(i int) (float64, float64, float64) {
		return pts[i].x, pts[i].y, pts[i].v
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return idx
}

func randomPoints(n int, seed uint64) []pt {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pts := make([]pt, n)
	for i := range pts {
		pts[i] = pt{x: r.Float64() * 100, y: r.Float64() * 100, v: float64(i)}
	}
	return pts
}

// bruteForce ranks every point and applies the same selection rules as the
// index.
func bruteForce(pts []pt, x, y float64, maxPoints int, radius float64, quadrants bool) []int {
	type cand struct {
		i int
		d float64
	}
	var all []cand
	for i, p := range pts {
		dx, dy := p.x-x, p.y-y
		d := dx*dx + dy*dy
		if radius > 0 && d > radius*radius {
			continue
		}
		all = append(all, cand{i, d})
	}
	slices.SortFunc(all, func(a, b cand) int {
		if a.d != b.d {
			if a.d < b.d {
				return -1
			}
			return 1
		}
		return a.i - b.i
	})

	var out []int
	if !quadrants {
		for _, c := range all {
			if maxPoints > 0 && len(out) == maxPoints {
				break
			}
			out = append(out, c.i)
		}
		return out
	}
	var perQuadrant [4]int
	for _, c := range all {
		q := quadrant(pts[c.i].x-x, pts[c.i].y-y)
		if maxPoints > 0 && perQuadrant[q] == maxPoints {
			continue
		}
		perQuadrant[q]++
		out = append(out, c.i)
	}
	return out
}

func indices(ns []Neighbor) []int {
	out := make([]int, len(ns))
	for i, n := range ns {
		out[i] = n.Index
	}
	return out
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_TooFewPoints(t *testing.T) {
	for _, n := range []int{0, 1} {
		_, err := New(n, func(int) (float64, float64, float64) { return 0, 0, 0 })
		if !errors.Is(err, ErrTooFewPoints) {
			t.Errorf("New(%d) error = %v, want ErrTooFewPoints", n, err)
		}
	}
}

func TestNew_Len(t *testing.T) {
	idx := build(t, randomPoints(37, 1))
	if idx.Len() != 37 {
		t.Errorf("Len() = %d, want 37", idx.Len())
	}
}

// =============================================================================
// Selection
// =============================================================================

func TestSelect_MatchesBruteForce(t *testing.T) {
	pts := randomPoints(500, 7)
	idx := build(t, pts)
	cur := idx.NewCursor()

	tests := []struct {
		name      string
		maxPoints int
		radius    float64
		quadrants bool
	}{
		{"nearest 1", 1, 0, false},
		{"nearest 12", 12, 0, false},
		{"radius only", 0, 8, false},
		{"radius and count", 10, 15, false},
		{"quadrants", 3, 0, true},
		{"quadrants with radius", 4, 12, true},
	}

	r := rand.New(rand.NewPCG(3, 4))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 50 {
				x, y := r.Float64()*120-10, r.Float64()*120-10
				n := cur.Select(x, y, tt.maxPoints, tt.radius, tt.quadrants)
				got := indices(cur.Neighbors())
				want := bruteForce(pts, x, y, tt.maxPoints, tt.radius, tt.quadrants)
				if n != len(want) {
					t.Fatalf("Select(%v, %v) = %d, want %d", x, y, n, len(want))
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatalf("Select(%v, %v) mismatch (-want +got):\n%s", x, y, diff)
				}
			}
		})
	}
}

func TestSelect_RadiusInclusive(t *testing.T) {
	idx := build(t, []pt{{0, 0, 1}, {3, 4, 2}, {6, 8, 3}})
	cur := idx.NewCursor()

	if n := cur.Select(0, 0, 0, 5, false); n != 2 {
		t.Errorf("Select radius 5 = %d, want 2 (boundary point included)", n)
	}
}

func TestSelect_TiesBrokenByIndex(t *testing.T) {
	// Four points at distance 1 from the origin.
	pts := []pt{{0, 1, 0}, {1, 0, 1}, {0, -1, 2}, {-1, 0, 3}, {5, 5, 4}}
	idx := build(t, pts)
	cur := idx.NewCursor()

	cur.Select(0, 0, 2, 0, false)
	if diff := cmp.Diff([]int{0, 1}, indices(cur.Neighbors())); diff != "" {
		t.Errorf("tie order mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_Quadrants(t *testing.T) {
	// Many points to the east, one far point in each other direction.
	pts := []pt{
		{1, 0.5, 0}, {2, 0.5, 1}, {3, 0.5, 2},
		{-50, 50, 3}, {-50, -50, 4}, {50, -50, 5},
	}
	idx := build(t, pts)
	cur := idx.NewCursor()

	n := cur.Select(0, 0, 1, 0, true)
	if n != 4 {
		t.Fatalf("Select with quadrants = %d, want 4", n)
	}
	first, _ := cur.Point(0)
	if first.Index != 0 {
		t.Errorf("Point(0).Index = %d, want 0", first.Index)
	}
}

func TestSelect_CursorReuse(t *testing.T) {
	idx := build(t, randomPoints(100, 11))
	cur := idx.NewCursor()

	cur.Select(50, 50, 20, 0, false)
	n := cur.Select(50, 50, 3, 0, false)
	if n != 3 || cur.Count() != 3 {
		t.Errorf("second Select = %d (Count %d), want 3", n, cur.Count())
	}
	if _, ok := cur.Point(3); ok {
		t.Error("Point(3) should be out of range after a 3 point selection")
	}
	if _, ok := cur.Point(-1); ok {
		t.Error("Point(-1) should be out of range")
	}
}

func TestNearest_Distances(t *testing.T) {
	idx := build(t, []pt{{0, 0, 10}, {3, 4, 20}})
	got := idx.Nearest(0, 0, 0, 0, false)
	want := []Neighbor{
		{Index: 0, X: 0, Y: 0, Value: 10, Distance: 0},
		{Index: 1, X: 3, Y: 4, Value: 20, Distance: 5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Nearest mismatch (-want +got):\n%s", diff)
	}
}

func TestQuadrant_Partition(t *testing.T) {
	tests := []struct {
		dx, dy float64
		want   int
	}{
		{1, 1, 0},
		{1, -1, 1},
		{1, 0, 1},
		{-1, -1, 2},
		{0, 0, 2},
		{0, -1, 2},
		{-1, 1, 3},
		{0, 1, 3},
	}
	for _, tt := range tests {
		if got := quadrant(tt.dx, tt.dy); got != tt.want {
			t.Errorf("quadrant(%v, %v) = %d, want %d", tt.dx, tt.dy, got, tt.want)
		}
	}
}

func BenchmarkSelect(b *testing.B) {
	pts := randomPoints(10000, 5)
	idx, _ := New(len(pts), func(i int) (float64, float64, float64) {
		return pts[i].x, pts[i].y, pts[i].v
	})
	cur := idx.NewCursor()
	for i := 0; b.Loop(); i++ {
		cur.Select(float64(i%100), float64(i/100%100), 12, 0, true)
	}
}
