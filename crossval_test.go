package gridding

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
)

func TestCrossValidate_None(t *testing.T) {
	s, err := CrossValidate(context.Background(), corners(), InverseDistance, CrossValidation{Mode: CVNone})
	if s != nil || err != nil {
		t.Errorf("CrossValidate(CVNone) = %v, %v, want nil, nil", s, err)
	}
}

func TestCrossValidate_IgnoresInputOrder(t *testing.T) {
	pts := gridPoints(6, func(x, y float64) float64 { return x*x + y })
	shuffled := pts.Points()
	rand.New(rand.NewPCG(9, 9)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	for _, cv := range []CrossValidation{{Mode: LeaveOneOut}, {Mode: KFold, Folds: 4}} {
		a, err := CrossValidate(context.Background(), pts, InverseDistance, cv)
		if err != nil {
			t.Fatalf("CrossValidate(%v) error = %v", cv.Mode, err)
		}
		b, err := CrossValidate(context.Background(), NewPointSet(shuffled), InverseDistance, cv, WithWorkers(3))
		if err != nil {
			t.Fatalf("CrossValidate(%v, shuffled) error = %v", cv.Mode, err)
		}
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("CrossValidate(%v) depends on input order (-a +b):\n%s", cv.Mode, diff)
		}
	}
}

func TestCrossValidate_Folds(t *testing.T) {
	pts := gridPoints(5, plane)
	tests := []struct {
		name      string
		cv        CrossValidation
		wantMode  CVMode
		wantFolds int
	}{
		{"leave one out", CrossValidation{Mode: LeaveOneOut}, LeaveOneOut, 25},
		{"two fold", CrossValidation{Mode: TwoFold}, TwoFold, 2},
		{"k fold", CrossValidation{Mode: KFold, Folds: 5}, KFold, 5},
		{"one fold", CrossValidation{Mode: KFold, Folds: 1}, LeaveOneOut, 25},
		{"too many folds", CrossValidation{Mode: KFold, Folds: 13}, LeaveOneOut, 25},
		{"half the points", CrossValidation{Mode: KFold, Folds: 12}, KFold, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := CrossValidate(context.Background(), pts, InverseDistance, tt.cv)
			if err != nil {
				t.Fatalf("CrossValidate() error = %v", err)
			}
			if s.Mode != tt.wantMode || s.Folds != tt.wantFolds {
				t.Errorf("Mode, Folds = %v, %d, want %v, %d", s.Mode, s.Folds, tt.wantMode, tt.wantFolds)
			}
			if s.Points != 25 || s.Samples != 25 || len(s.Residuals) != 25 {
				t.Errorf("Points, Samples, Residuals = %d, %d, %d, want 25 each", s.Points, s.Samples, len(s.Residuals))
			}
		})
	}
}

func TestCrossValidate_Residuals(t *testing.T) {
	pts := NewPointSet([]Point{
		{X: 0, Y: 0, Value: 1},
		{X: 1, Y: 0, Value: 2},
		{X: 0, Y: 1, Value: 4},
		{X: 1, Y: 1, Value: 8},
	})
	s, err := CrossValidate(context.Background(), pts, NearestNeighbour, CrossValidation{Mode: LeaveOneOut})
	if err != nil {
		t.Fatalf("CrossValidate() error = %v", err)
	}
	// Canonical order is (y, x). Without itself, each point's nearest
	// neighbour is the lowest-index point at distance 1.
	want := []Residual{
		{X: 0, Y: 0, Observed: 1, Predicted: 2, Residual: 1},
		{X: 1, Y: 0, Observed: 2, Predicted: 1, Residual: -1},
		{X: 0, Y: 1, Observed: 4, Predicted: 1, Residual: -3},
		{X: 1, Y: 1, Observed: 8, Predicted: 2, Residual: -6},
	}
	if diff := cmp.Diff(want, s.Residuals); diff != "" {
		t.Errorf("Residuals mismatch (-want +got):\n%s", diff)
	}
	// (1 + 1 + 9 + 36) / 4
	if s.MSE != 11.75 {
		t.Errorf("MSE = %v, want 11.75", s.MSE)
	}
	// RMSE relative to the range 1..8.
	if !near(s.NRMSE, s.RMSE/7*100, 1e-12) {
		t.Errorf("NRMSE = %v, want %v", s.NRMSE, s.RMSE/7*100)
	}
	if s.R2 <= 0 || s.R2 >= 100 {
		t.Errorf("R2 = %v, want within (0, 100)", s.R2)
	}
}

func TestCrossValidate_PerfectFit(t *testing.T) {
	s, err := CrossValidate(context.Background(), gridPoints(6, plane), Triangulation, CrossValidation{Mode: LeaveOneOut})
	if err != nil {
		t.Fatalf("CrossValidate() error = %v", err)
	}
	// Hull points have no value once left out.
	if s.Samples == 0 || s.Samples >= s.Points {
		t.Errorf("Samples = %d of %d, want interior points only", s.Samples, s.Points)
	}
	if s.RMSE > 1e-9 {
		t.Errorf("RMSE = %v, want 0 for a plane", s.RMSE)
	}
	if !near(s.R2, 100, 1e-6) {
		t.Errorf("R2 = %v, want 100", s.R2)
	}
}

func TestCrossValidate_NoSamples(t *testing.T) {
	_, err := CrossValidate(context.Background(), gridPoints(5, plane), NearestNeighbour,
		CrossValidation{Mode: LeaveOneOut}, WithSearch(SearchConfig{MaxPoints: 1, Radius: 0.01}))
	if !errors.Is(err, ErrNoSamples) {
		t.Errorf("CrossValidate() error = %v, want ErrNoSamples", err)
	}
}

func TestCrossValidate_FailedFolds(t *testing.T) {
	// Every leave-one-out fold trains on five points, one short of a
	// Shepard fit.
	pts := NewPointSet([]Point{
		{X: 0, Y: 0, Value: 1},
		{X: 1, Y: 0, Value: 1},
		{X: 2, Y: 0, Value: 1},
		{X: 3, Y: 0, Value: 1},
		{X: 0, Y: 1, Value: 2},
		{X: 5, Y: 5, Value: 3},
	})
	_, err := CrossValidate(context.Background(), pts, ModifiedQuadraticShepard, CrossValidation{Mode: LeaveOneOut})
	if !errors.Is(err, ErrNoSamples) {
		t.Errorf("CrossValidate(shepard, 5 training points) error = %v, want ErrNoSamples", err)
	}
}

func TestCrossValidate_Rejects(t *testing.T) {
	if _, err := CrossValidate(context.Background(), NewPointSet([]Point{{}}), InverseDistance, CrossValidation{Mode: LeaveOneOut}); !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("CrossValidate(1 point) error = %v, want ErrInsufficientPoints", err)
	}
	if _, err := CrossValidate(context.Background(), corners(), InverseDistance, CrossValidation{Mode: CVMode(7)}); !errors.Is(err, ErrParameterRange) {
		t.Errorf("CrossValidate(mode 7) error = %v, want ErrParameterRange", err)
	}
}

func TestCrossValidate_Canceled(t *testing.T) {
	pts := gridPoints(5, plane)
	_, err := CrossValidate(context.Background(), pts, InverseDistance, CrossValidation{Mode: LeaveOneOut},
		WithWorkers(1), WithProgress(func(done, total int) bool { return done < 2 }))
	if !errors.Is(err, ErrCanceled) {
		t.Errorf("CrossValidate() error = %v, want ErrCanceled", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CrossValidate(ctx, pts, InverseDistance, CrossValidation{Mode: TwoFold}); !errors.Is(err, context.Canceled) {
		t.Errorf("CrossValidate(canceled) error = %v, want context.Canceled", err)
	}
}

func TestSummary_Report(t *testing.T) {
	s := &Summary{
		Method:  InverseDistance,
		Mode:    LeaveOneOut,
		Points:  1500,
		Folds:   1500,
		Samples: 1234,
		MSE:     0.25,
		RMSE:    0.5,
		NRMSE:   1.5,
		R2:      97.126,
	}
	var buf bytes.Buffer
	if err := s.Report(&buf, language.English); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"inverse-distance", "leave-one-out", "1,234 of 1,500", "97.13%"} {
		if !strings.Contains(out, want) {
			t.Errorf("Report() = %q, want it to contain %q", out, want)
		}
	}
}
