package gridding

import (
	"fmt"
	"math"
)

// WeightingScheme selects the function that maps a distance to a weight.
type WeightingScheme int

const (
	// InversePower weighs by distance^-Power.
	InversePower WeightingScheme = iota
	// Linear falls from 1 at distance 0 to 0 at Radius.
	Linear
	// Exponential weighs by exp(-distance/Bandwidth).
	Exponential
	// Gaussian weighs by exp(-0.5·(distance/Bandwidth)²).
	Gaussian
	// NoWeighting gives every point the weight 1.
	NoWeighting
)

// String returns the scheme name.
func (s WeightingScheme) String() string {
	switch s {
	case InversePower:
		return "inverse-power"
	case Linear:
		return "linear"
	case Exponential:
		return "exponential"
	case Gaussian:
		return "gaussian"
	case NoWeighting:
		return "none"
	default:
		return fmt.Sprintf("WeightingScheme(%d)", int(s))
	}
}

// ExactMatch is the weight InversePower returns for a zero distance. It is
// negative so it can never be mistaken for a real weight: callers use the
// coincident point's value directly.
const ExactMatch = -1.0

// Weighting maps distances to non-negative weights. It is a plain value:
// Weight never allocates and is safe for concurrent use.
type Weighting struct {
	Scheme    WeightingScheme
	Power     float64 // InversePower exponent
	Bandwidth float64 // Exponential and Gaussian
	Radius    float64 // Linear
	// Offset makes InversePower use (1 + distance)^-Power, which is finite
	// at distance 0.
	Offset bool
}

// DefaultWeighting is inverse distance squared.
func DefaultWeighting() Weighting {
	return Weighting{Scheme: InversePower, Power: 2, Bandwidth: 1}
}

// Validate reports a negative radius or bandwidth, or a zero one where the
// scheme divides by it.
func (w Weighting) Validate() error {
	switch {
	case w.Radius < 0 || math.IsNaN(w.Radius):
		return inputError("weighting", "radius", ErrInvalidWeighting, "%g is negative", w.Radius)
	case w.Bandwidth < 0 || math.IsNaN(w.Bandwidth):
		return inputError("weighting", "bandwidth", ErrInvalidWeighting, "%g is negative", w.Bandwidth)
	}
	switch w.Scheme {
	case InversePower, NoWeighting:
	case Linear:
		if w.Radius == 0 {
			return inputError("weighting", "radius", ErrInvalidWeighting, "linear decay needs a positive radius")
		}
	case Exponential, Gaussian:
		if w.Bandwidth == 0 {
			return inputError("weighting", "bandwidth", ErrInvalidWeighting, "%v needs a positive bandwidth", w.Scheme)
		}
	default:
		return inputError("weighting", "scheme", ErrInvalidWeighting, "unknown scheme %d", int(w.Scheme))
	}
	return nil
}

// Weight returns the weight of a point at distance d. Negative distances
// weigh 0. For InversePower without Offset a zero distance yields
// ExactMatch.
func (w Weighting) Weight(d float64) float64 {
	if d < 0 {
		return 0
	}
	switch w.Scheme {
	case InversePower:
		if w.Offset {
			return math.Pow(1+d, -w.Power)
		}
		if d > 0 {
			return math.Pow(d, -w.Power)
		}
		return ExactMatch
	case Linear:
		if d < w.Radius {
			return 1 - d/w.Radius
		}
		return 0
	case Exponential:
		return math.Exp(-d / w.Bandwidth)
	case Gaussian:
		d /= w.Bandwidth
		return math.Exp(-0.5 * d * d)
	case NoWeighting:
		return 1
	}
	return 0
}
