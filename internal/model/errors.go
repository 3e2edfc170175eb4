package model

import "errors"

// Error kinds shared across the pipeline. Components wrap these with
// the offending values so callers can both classify (errors.Is) and
// diagnose without re-deriving intermediate state.
var (
	// ErrValidation marks malformed input: bad bar series, unsupported
	// timeframe strings, unknown instruments, out-of-range configuration.
	ErrValidation = errors.New("validation")

	// ErrInvariant marks a broken computation invariant: collapsed
	// Fibonacci range, price-ordering violation after derivation,
	// non-positive risk or reward.
	ErrInvariant = errors.New("invariant violation")

	// ErrConstraint marks a broker-constraint violation on an otherwise
	// well-formed order, e.g. realized reward:risk below the minimum.
	ErrConstraint = errors.New("constraint violation")
)
