package tree

import "errors"

var (
	// ErrEmptyInput is returned when encoding or building is attempted with
	// no headers, no rows, or no products.
	ErrEmptyInput = errors.New("empty input")

	// ErrNoFeatures is returned when every column was excluded as an
	// identifier and nothing usable remains to split on.
	ErrNoFeatures = errors.New("no usable features")

	// ErrDimensionMismatch is returned when a feature vector and a weight
	// vector disagree in length.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidNode is returned when an operation is applied to the wrong
	// node variant (descend on a leaf, products of an internal node).
	ErrInvalidNode = errors.New("invalid node for operation")

	// ErrNodeNotFound is returned when a stored node path does not resolve
	// to a node in the tree.
	ErrNodeNotFound = errors.New("node not found")
)
