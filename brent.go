package optpricer

import (
	"fmt"
	"math"
)

const (
	kBrentXTol    = 2e-12
	kBrentMaxIter = 100
	kMachineEps   = 2.220446049250313e-16
)

// brentRoot finds a zero of f inside [lo, hi] with Brent's method, which
// mixes bisection, the secant rule and inverse quadratic interpolation. It
// needs f(lo) and f(hi) to have opposite signs and returns
// ErrUnbracketedRoot otherwise.
func brentRoot(
	f func(float64) float64,
	lo float64,
	hi float64,
	xtol float64,
	maxIter int) (float64, int, error) {

	a, b := lo, hi
	fa, fb := f(a), f(b)
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return 0, 0, fmt.Errorf("%w: objective is NaN at an endpoint", ErrUnbracketedRoot)
	}
	if fa == 0 {
		return a, 0, nil
	}
	if fb == 0 {
		return b, 0, nil
	}
	if (fa > 0) == (fb > 0) {
		return 0, 0, fmt.Errorf("%w: f(%g)=%g and f(%g)=%g have the same sign",
			ErrUnbracketedRoot, lo, fa, hi, fb)
	}

	c, fc := b, fb
	var d, e float64
	for iter := 1; iter <= maxIter; iter++ {
		if (fb > 0) == (fc > 0) {
			// Keep the root between b and c.
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol := 2*kMachineEps*math.Abs(b) + 0.5*xtol
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol || fb == 0 {
			return b, iter, nil
		}

		if math.Abs(e) >= tol && math.Abs(fa) > math.Abs(fb) {
			s := fb / fa
			var p, q float64
			if a == c {
				// Secant step.
				p = 2 * xm * s
				q = 1 - s
			} else {
				// Inverse quadratic interpolation.
				qa := fa / fc
				r := fb / fc
				p = s * (2*xm*qa*(qa-r) - (b-a)*(r-1))
				q = (qa - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			if 2*p < math.Min(3*xm*q-math.Abs(tol*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol {
			b += d
		} else {
			b += math.Copysign(tol, xm)
		}
		fb = f(b)
	}
	return b, maxIter, fmt.Errorf("%w: brent stopped after %d iterations",
		ErrNonConvergence, maxIter)
}
