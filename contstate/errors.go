// Package contstate defines the data model shared across the continuation
// kernel: branch points, branches, settings and the small numeric types
// (complex eigenvalues, stability labels, curve-type tags) that flow between
// packages. It is the one shared currency every other package imports.
package contstate

import "errors"

// Sentinel errors for the contstate package, matched with errors.Is.
var (
	// ErrInvalidSettings is returned by NewContinuationSettings when a field
	// cannot be clamped into a sane value (e.g. a non-positive step bound).
	ErrInvalidSettings = errors.New("contstate: invalid continuation settings")

	// ErrDimensionMismatch is returned when two vectors that must share a
	// length (e.g. a BranchPoint state and a tangent) do not.
	ErrDimensionMismatch = errors.New("contstate: dimension mismatch")

	// ErrEmptyBranch is returned by operations that require at least one
	// point already present in a Branch (e.g. extend semantics).
	ErrEmptyBranch = errors.New("contstate: branch has no points")
)
