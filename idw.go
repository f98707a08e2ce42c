package gridding

import "math"

// neighbors returns the points taking part in the estimate at (x, y), or
// nil when fewer than the configured minimum are found. Without an index
// every point is returned in input order.
func (q *Query) neighbors(x, y float64) []Neighbor {
	ip := q.ip
	var nb []Neighbor
	if ip.index != nil {
		c := ip.search
		q.cursor.Select(x, y, c.MaxPoints, c.Radius, c.Quadrants)
		nb = q.cursor.Neighbors()
	} else {
		q.near = q.near[:0]
		for i, p := range ip.points.points {
			q.near = append(q.near, Neighbor{
				Index:    i,
				X:        p.X,
				Y:        p.Y,
				Value:    p.Value,
				Distance: math.Hypot(p.X-x, p.Y-y),
			})
		}
		nb = q.near
	}
	if len(nb) == 0 || len(nb) < ip.search.MinPoints {
		return nil
	}
	return nb
}

// inverseDistance returns Σ wᵢ·vᵢ / Σ wᵢ over the neighbours. A neighbour
// at distance zero, or close enough for its weight to overflow, determines
// the result.
func (q *Query) inverseDistance(x, y float64) (float64, bool) {
	nb := q.neighbors(x, y)
	if nb == nil {
		return 0, false
	}
	if hit := q.weigh(nb); hit >= 0 {
		return nb[hit].Value, true
	}
	var sw, swv float64
	for i, n := range nb {
		sw += q.weights[i]
		swv += q.weights[i] * n.Value
	}
	if sw == 0 {
		return 0, false
	}
	return swv / sw, true
}

// weigh stores the weights of nb in q.weights, scaled so the largest is 1.
// It returns the index of a neighbour that coincides with the query point
// or whose weight is infinite, the closest one if several do, and -1
// otherwise.
func (q *Query) weigh(nb []Neighbor) int {
	w := q.ip.weighting
	q.weights = q.weights[:0]
	hit, top := -1, 0.0
	for i, n := range nb {
		wi := w.Weight(n.Distance)
		if n.Distance == 0 || math.IsInf(wi, 1) {
			if hit < 0 || n.Distance < nb[hit].Distance {
				hit = i
			}
		}
		q.weights = append(q.weights, wi)
		top = max(top, wi)
	}
	if hit >= 0 {
		return hit
	}
	if top > 0 {
		for i := range q.weights {
			q.weights[i] /= top
		}
	}
	return -1
}

// angularDistance is inverse distance weighting where each weight wᵢ is
// scaled by 1 + tᵢ, with
//
//	tᵢ = Σⱼ wⱼ·(1 − cos θᵢⱼ) / Σⱼ wⱼ   (j ≠ i)
//
// and θᵢⱼ the angle at (x, y) between the directions to neighbours i and j.
// A neighbour hidden behind another in the same direction gains little; an
// isolated one gains up to twice its weight.
func (q *Query) angularDistance(x, y float64) (float64, bool) {
	nb := q.neighbors(x, y)
	if nb == nil {
		return 0, false
	}
	if hit := q.weigh(nb); hit >= 0 {
		return nb[hit].Value, true
	}

	var sw, swv float64
	for i, ni := range nb {
		var num, den float64
		for j, nj := range nb {
			if j == i {
				continue
			}
			cos := ((ni.X-x)*(nj.X-x) + (ni.Y-y)*(nj.Y-y)) / (ni.Distance * nj.Distance)
			num += q.weights[j] * (1 - cos)
			den += q.weights[j]
		}
		e := q.weights[i]
		if den > 0 {
			e *= 1 + num/den
		}
		sw += e
		swv += e * ni.Value
	}
	if sw == 0 {
		return 0, false
	}
	return swv / sw, true
}

// nearest returns the value of the closest point; ties go to the lower
// index. The search radius applies, the neighbour count does not.
func (q *Query) nearest(x, y float64) (float64, bool) {
	ip := q.ip
	if ip.index != nil {
		if q.cursor.Select(x, y, 1, ip.search.Radius, false) == 0 {
			return 0, false
		}
		n, _ := q.cursor.Point(0)
		return n.Value, true
	}
	best, bestDsq := -1, math.Inf(1)
	for i, p := range ip.points.points {
		dx, dy := p.X-x, p.Y-y
		if dsq := dx*dx + dy*dy; dsq < bestDsq {
			best, bestDsq = i, dsq
		}
	}
	if best < 0 {
		return 0, false
	}
	return ip.points.points[best].Value, true
}
