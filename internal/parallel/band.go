package parallel

// Band is a half-open range of grid rows [Start, End).
type Band struct {
	Start, End int
}

// Len returns the number of rows in the band.
func (b Band) Len() int { return b.End - b.Start }

// Split divides rows into at most parts contiguous bands of nearly equal
// size, in ascending order. It returns nil when rows is not positive.
func Split(rows, parts int) []Band {
	if rows <= 0 {
		return nil
	}
	parts = max(1, min(parts, rows))
	bands := make([]Band, parts)
	size, rest := rows/parts, rows%parts
	start := 0
	for i := range bands {
		n := size
		if i < rest {
			n++
		}
		bands[i] = Band{Start: start, End: start + n}
		start += n
	}
	return bands
}

// ForBands runs fn once per band on the pool and waits for completion.
func (p *WorkerPool) ForBands(bands []Band, fn func(b Band)) {
	tasks := make([]func(), len(bands))
	for i, b := range bands {
		tasks[i] = func() { fn(b) }
	}
	p.ExecuteAll(tasks)
}
