package optpricer

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
)

var (
	// ErrInvalidParameter is returned for non-positive spot, strike, expiry
	// or volatility, non-positive path/step counts and unknown style names.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnbracketedRoot is raised by the bracketing solver when f(lo) and
	// f(hi) share a sign. The implied volatility solver recovers from it by
	// switching to its gradient fallback.
	ErrUnbracketedRoot = errors.New("root is not bracketed")

	// ErrNonConvergence marks a solve that ran out of iterations or gradient
	// without meeting its tolerance.
	ErrNonConvergence = errors.New("did not converge")
)

func invalidParameter(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	glog.Error(msg)
	return fmt.Errorf("%w: %s", ErrInvalidParameter, msg)
}
