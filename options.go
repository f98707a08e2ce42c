package gridding

// Option configures New, Rasterize and CrossValidate. Options that do not
// apply to a call are ignored by it.
//
// Example:
//
//	ip, err := gridding.New(gridding.InverseDistance, points,
//	    gridding.WithSearch(gridding.SearchConfig{MaxPoints: 12, Quadrants: true}),
//	    gridding.WithWeighting(gridding.Weighting{Scheme: gridding.InversePower, Power: 3}),
//	)
type Option func(*options)

type options struct {
	search    SearchConfig
	weighting Weighting
	shepard   ShepardConfig
	strict    bool
	workers   int
	progress  func(done, total int) bool
}

func defaultOptions() options {
	return options{
		search:    DefaultSearch(),
		weighting: DefaultWeighting(),
		shepard:   DefaultShepard(),
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// ShepardConfig holds the neighbour counts of the modified quadratic
// Shepard method.
type ShepardConfig struct {
	// QuadraticNeighbors is the number of points used in each local
	// quadratic fit, in [5, min(40, n-1)].
	QuadraticNeighbors int
	// WeightingNeighbors is the number of points within each point's radius
	// of influence, in [1, min(40, n-1)].
	WeightingNeighbors int
}

// DefaultShepard returns 13 quadratic and 19 weighting neighbours.
func DefaultShepard() ShepardConfig {
	return ShepardConfig{QuadraticNeighbors: 13, WeightingNeighbors: 19}
}

// WithSearch sets the neighbour selection of the inverse distance, angular
// distance and nearest neighbour methods.
func WithSearch(c SearchConfig) Option {
	return func(o *options) {
		o.search = c
	}
}

// WithWeighting sets the distance weighting of the inverse distance and
// angular distance methods.
func WithWeighting(w Weighting) Option {
	return func(o *options) {
		o.weighting = w
	}
}

// WithShepard sets the neighbour counts of the modified quadratic Shepard
// method.
func WithShepard(c ShepardConfig) Option {
	return func(o *options) {
		o.shepard = c
	}
}

// WithStrictFit makes New fail with an *InstabilityError when a Shepard
// nodal fit stays ill-conditioned. By default such a node contributes its
// constant value and a warning is logged.
func WithStrictFit(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithWorkers sets the number of goroutines used by Rasterize and
// CrossValidate. Zero or a negative value means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithProgress installs a callback invoked at least once per finished grid
// row (Rasterize) or fold (CrossValidate). Returning false cancels the
// operation. Calls are serialized.
func WithProgress(fn func(done, total int) bool) Option {
	return func(o *options) {
		o.progress = fn
	}
}
