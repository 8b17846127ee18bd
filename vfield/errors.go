package vfield

import "errors"

// ErrDimension is returned by helpers that validate a VectorField's
// reported Dim()/PDim() against vectors actually passed to it.
var ErrDimension = errors.New("vfield: dimension mismatch")
