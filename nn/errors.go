package nn

import "errors"

var (
	// ErrInputShape reports an input vector whose length does not match the
	// network's input size.
	ErrInputShape = errors.New("input shape mismatch")

	// ErrTargetClass reports a target class outside [0, OutputSize).
	ErrTargetClass = errors.New("target class out of range")

	// ErrLearningRate reports a non-positive or non-finite learning rate.
	ErrLearningRate = errors.New("invalid learning rate")

	// ErrNotFinite reports a NaN or Inf detected in parameters or in a
	// computed value. A pass that detects this returns no snapshot and
	// applies no updates.
	ErrNotFinite = errors.New("non-finite value in computation")
)
