package delaunay

// Scratch holds per-caller buffers for natural neighbour queries. A Scratch
// must not be shared between goroutines.
type Scratch struct {
	stamp   []uint32
	gen     uint32
	cavity  []int
	queue   []int
	verts   []int
	weights []float64
}

// NewScratch returns buffers sized for the mesh.
func (m *Mesh) NewScratch() *Scratch {
	return &Scratch{stamp: make([]uint32, m.Len())}
}

// Natural evaluates the natural neighbour (Sibson) interpolant at (x, y),
// where t is the triangle containing the point as returned by Locate.
//
// The natural neighbours are the vertices of the triangles whose
// circumcircle contains the point. Each neighbour is weighted by the area
// the point's Voronoi cell would take from it, computed triangle by
// triangle from circumcentres (Watson's method). When the construction
// degenerates the linear interpolant of t is returned.
func (m *Mesh) Natural(t int, x, y float64, s *Scratch) (float64, bool) {
	a, b, c := m.Triangle(t)
	for _, v := range [3]int{a, b, c} {
		if m.xs[v] == x && m.ys[v] == y {
			return m.zs[v], true
		}
	}

	m.cavity(t, x, y, s)
	s.verts = s.verts[:0]
	s.weights = s.weights[:0]

	for _, u := range s.cavity {
		cc := m.circles[u]
		if !cc.ok {
			return m.Linear(t, x, y)
		}
		v := [3]int{m.tri[3*u], m.tri[3*u+1], m.tri[3*u+2]}
		var gx, gy [3]float64
		for i := range 3 {
			j1, j2 := v[(i+1)%3], v[(i+2)%3]
			var ok bool
			gx[i], gy[i], ok = circumcenter(m.xs[j1], m.ys[j1], m.xs[j2], m.ys[j2], x, y)
			if !ok {
				return m.Linear(t, x, y)
			}
		}
		for i := range 3 {
			i1, i2 := (i+1)%3, (i+2)%3
			det := (gx[i1]-cc.x)*(gy[i2]-cc.y) - (gx[i2]-cc.x)*(gy[i1]-cc.y)
			s.add(v[i], det)
		}
	}

	var sw, swz float64
	for k, v := range s.verts {
		sw += s.weights[k]
		swz += s.weights[k] * m.zs[v]
	}
	if sw == 0 {
		return m.Linear(t, x, y)
	}
	return swz / sw, true
}

// cavity collects the triangles whose circumcircle strictly contains
// (x, y), starting from t and spreading across shared edges.
func (m *Mesh) cavity(t int, x, y float64, s *Scratch) {
	s.gen++
	if s.gen == 0 {
		clear(s.stamp)
		s.gen = 1
	}
	s.cavity = append(s.cavity[:0], t)
	s.queue = append(s.queue[:0], t)
	s.stamp[t] = s.gen

	for len(s.queue) > 0 {
		u := s.queue[len(s.queue)-1]
		s.queue = s.queue[:len(s.queue)-1]
		for j := range 3 {
			w := m.Neighbor(u, j)
			if w < 0 {
				continue
			}
			if s.stamp[w] == s.gen {
				continue
			}
			s.stamp[w] = s.gen
			cc := m.circles[w]
			dx, dy := x-cc.x, y-cc.y
			if !cc.ok || dx*dx+dy*dy < cc.rsq {
				s.cavity = append(s.cavity, w)
				s.queue = append(s.queue, w)
			}
		}
	}
}

func (s *Scratch) add(v int, w float64) {
	for k, u := range s.verts {
		if u == v {
			s.weights[k] += w
			return
		}
	}
	s.verts = append(s.verts, v)
	s.weights = append(s.weights, w)
}
