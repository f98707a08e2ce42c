package gridding

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/floats"

	"github.com/gogpu/gridding/internal/parallel"
)

// CVMode selects how CrossValidate splits the points.
type CVMode int

const (
	// CVNone disables cross validation.
	CVNone CVMode = iota
	// LeaveOneOut holds out one point at a time.
	LeaveOneOut
	// TwoFold splits the points into two folds.
	TwoFold
	// KFold splits the points into CrossValidation.Folds folds.
	KFold
)

func (m CVMode) String() string {
	switch m {
	case CVNone:
		return "none"
	case LeaveOneOut:
		return "leave-one-out"
	case TwoFold:
		return "2-fold"
	case KFold:
		return "k-fold"
	}
	return fmt.Sprintf("CVMode(%d)", int(m))
}

// CrossValidation configures CrossValidate.
type CrossValidation struct {
	Mode  CVMode
	Folds int // KFold only
}

// Residual is the prediction for one held-out point.
type Residual struct {
	X, Y      float64
	Observed  float64
	Predicted float64
	Residual  float64 // Predicted - Observed
}

// Summary holds cross validation statistics. NRMSE and R2 are percentages.
type Summary struct {
	Method  Method
	Mode    CVMode // LeaveOneOut when a fold count degenerated
	Points  int
	Folds   int
	Failed  int // folds whose interpolator could not be built
	Samples int // held-out points that received a prediction

	MSE   float64
	RMSE  float64
	NRMSE float64 // RMSE relative to the value range of all points
	R2    float64

	// Residuals lists the predicted points in canonical order (y, x,
	// value).
	Residuals []Residual
}

// CrossValidate estimates the prediction error of method on points.
//
// The points are put in canonical order first, so the result does not
// depend on input order. Point i belongs to fold i mod k. For each fold an
// interpolator is built from the other folds with opts and evaluated at
// the held-out points. A fold count below 2 or above half the points
// falls back to leave-one-out.
//
// R2 compares the spread of the predictions around the mean of each
// fold's training values (SSR) with the squared errors (SSE) as
// SSR / (SSR + SSE).
//
// CVNone returns a nil Summary. Folds whose interpolator fails to build
// are skipped; if no point receives a prediction CrossValidate returns
// ErrNoSamples. The context and the WithProgress callback are consulted
// once per fold.
func CrossValidate(ctx context.Context, points *PointSet, method Method, cv CrossValidation, opts ...Option) (*Summary, error) {
	const op = "cross validation"
	o := buildOptions(opts)

	var k int
	switch cv.Mode {
	case CVNone:
		return nil, nil
	case LeaveOneOut:
	case TwoFold:
		k = 2
	case KFold:
		k = cv.Folds
	default:
		return nil, inputError(op, "mode", ErrParameterRange, "unknown mode %d", int(cv.Mode))
	}

	pts := points.Canonical()
	n := pts.Len()
	if n < 2 {
		return nil, inputError(op, "", ErrInsufficientPoints, "%d points, need at least 2", n)
	}
	mode := cv.Mode
	if k < 2 || float64(k) > float64(n)/2 {
		k, mode = n, LeaveOneOut
	}

	values := pts.values()
	run := &cvRun{
		ctx:       ctx,
		progress:  o.progress,
		folds:     k,
		points:    pts,
		predicted: make([]float64, n),
		ok:        make([]bool, n),
		mean:      make([]float64, k),
		failed:    make([]bool, k),
	}

	pool := parallel.NewWorkerPool(o.workers)
	defer pool.Close()
	tasks := make([]func(), k)
	for f := range k {
		tasks[f] = func() { run.fold(f, method, values, opts) }
	}
	pool.ExecuteAll(tasks)
	if err := run.err(); err != nil {
		return nil, err
	}

	s := run.summarize(method, mode, values)
	if s.Failed > 0 {
		Logger().Warn("gridding: cross validation folds failed", "method", method.String(), "failed", s.Failed, "folds", k)
	}
	if s.Samples == 0 {
		return nil, fmt.Errorf("%w: %v over %d points", ErrNoSamples, method, n)
	}
	Logger().Info("gridding: cross validation", "method", method.String(), "mode", mode.String(),
		"samples", s.Samples, "rmse", s.RMSE, "r2", s.R2)
	return s, nil
}

// cvRun holds the per-fold results of one CrossValidate call. Every fold
// writes only its own entries.
type cvRun struct {
	ctx      context.Context
	progress func(done, total int) bool
	folds    int
	points   *PointSet

	predicted []float64
	ok        []bool
	mean      []float64 // training mean per fold
	failed    []bool

	mu       sync.Mutex
	done     int
	canceled atomic.Bool
}

func (r *cvRun) fold(f int, method Method, values []float64, opts []Option) {
	if r.canceled.Load() || r.ctx.Err() != nil {
		return
	}
	defer r.foldDone()

	train := r.points.Filter(func(i int, _ Point) bool { return i%r.folds != f })
	ip, err := New(method, train, opts...)
	if err != nil {
		Logger().Debug("gridding: cross validation fold skipped", "fold", f, "err", err)
		r.failed[f] = true
		return
	}
	r.mean[f] = floats.Sum(train.values()) / float64(train.Len())

	q := ip.NewQuery()
	for i := f; i < len(values); i += r.folds {
		p := r.points.At(i)
		r.predicted[i], r.ok[i] = q.Value(p.X, p.Y)
	}
}

func (r *cvRun) foldDone() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
	if r.progress != nil && !r.canceled.Load() && !r.progress(r.done, r.folds) {
		r.canceled.Store(true)
	}
}

func (r *cvRun) err() error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	if r.canceled.Load() {
		return ErrCanceled
	}
	return nil
}

// summarize reduces the fold results in point order.
func (r *cvRun) summarize(method Method, mode CVMode, values []float64) *Summary {
	s := &Summary{Method: method, Mode: mode, Points: len(values), Folds: r.folds}
	for _, failed := range r.failed {
		if failed {
			s.Failed++
		}
	}

	var sse, ssr float64
	for i, ok := range r.ok {
		if !ok {
			continue
		}
		p := r.points.At(i)
		v := r.predicted[i]
		e := v - p.Value
		d := v - r.mean[i%r.folds]
		sse += e * e
		ssr += d * d
		s.Samples++
		s.Residuals = append(s.Residuals, Residual{X: p.X, Y: p.Y, Observed: p.Value, Predicted: v, Residual: e})
	}
	if s.Samples == 0 {
		return s
	}

	s.MSE = sse / float64(s.Samples)
	s.RMSE = math.Sqrt(s.MSE)
	if span := floats.Max(values) - floats.Min(values); span > 0 {
		s.NRMSE = s.RMSE / span * 100
	}
	if sse == 0 {
		s.R2 = 100
	} else {
		s.R2 = ssr / (ssr + sse) * 100
	}
	return s
}

// Report writes a human readable summary, formatting numbers for the
// given language.
func (s *Summary) Report(w io.Writer, tag language.Tag) error {
	p := message.NewPrinter(tag)
	_, err := p.Fprintf(w, "Cross validation (%v, %v)\n"+
		"\tfolds:\t%d (%d failed)\n"+
		"\tsamples:\t%d of %d\n"+
		"\tMSE:\t%f\n"+
		"\tRMSE:\t%f\n"+
		"\tNRMSE:\t%.2f%%\n"+
		"\tR2:\t%.2f%%\n",
		s.Method, s.Mode, s.Folds, s.Failed, s.Samples, s.Points, s.MSE, s.RMSE, s.NRMSE, s.R2)
	return err
}
