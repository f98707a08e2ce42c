package gridding

import (
	"errors"
	"fmt"
)

// Sentinel errors. Constructors wrap them in *InputError, *GeometryError or
// *InstabilityError; test with errors.Is.
var (
	// ErrInsufficientPoints means the point set is too small for the
	// requested operation.
	ErrInsufficientPoints = errors.New("gridding: not enough points")

	// ErrParameterRange means a numeric parameter lies outside its valid
	// range.
	ErrParameterRange = errors.New("gridding: parameter out of range")

	// ErrInvalidWeighting means the distance weighting has a negative or
	// missing radius or bandwidth.
	ErrInvalidWeighting = errors.New("gridding: invalid distance weighting")

	// ErrCollinear means all points lie on one line.
	ErrCollinear = errors.New("gridding: points are collinear")

	// ErrDuplicateNodes means two points share a location.
	ErrDuplicateNodes = errors.New("gridding: duplicate nodes")

	// ErrDegenerateTriangle means no triangulation with positive area
	// exists for the points.
	ErrDegenerateTriangle = errors.New("gridding: degenerate triangulation")

	// ErrIllConditioned means a nodal least squares fit stayed
	// ill-conditioned after damping.
	ErrIllConditioned = errors.New("gridding: ill-conditioned least squares fit")

	// ErrNoSamples means cross validation evaluated no held-out point.
	ErrNoSamples = errors.New("gridding: cross validation produced no samples")

	// ErrUnknownMethod means the interpolation method is not one of the
	// defined Method values.
	ErrUnknownMethod = errors.New("gridding: unknown interpolation method")

	// ErrCanceled means a progress callback stopped the operation.
	ErrCanceled = errors.New("gridding: canceled")
)

// InputError reports a rejected input: a point set that is too small or a
// parameter outside its range.
type InputError struct {
	Op     string // operation, e.g. "shepard"
	Param  string // offending parameter; empty when the point count is at fault
	Detail string
	Err    error
}

func (e *InputError) Error() string {
	msg := e.Err.Error() + ": " + e.Op
	if e.Param != "" {
		msg += " " + e.Param
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *InputError) Unwrap() error { return e.Err }

// GeometryError reports a point configuration an algorithm cannot handle.
type GeometryError struct {
	Op  string
	Err error
}

func (e *GeometryError) Error() string { return e.Err.Error() + ": " + e.Op }
func (e *GeometryError) Unwrap() error { return e.Err }

// InstabilityError reports the node whose nodal fit failed.
type InstabilityError struct {
	Node int
	X, Y float64
	Err  error
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("%v: node %d at (%g, %g)", e.Err, e.Node, e.X, e.Y)
}

func (e *InstabilityError) Unwrap() error { return e.Err }

func inputError(op, param string, err error, format string, args ...any) *InputError {
	return &InputError{Op: op, Param: param, Detail: fmt.Sprintf(format, args...), Err: err}
}
