package ngram

import "errors"

var (
	// ErrInvalidArgument is returned when an operation receives input it cannot use,
	// such as text that is not valid UTF-8 or an explicit gram size below 1.
	ErrInvalidArgument = errors.New("ngram: invalid argument")

	// ErrUnparseableSnapshot is returned when a textual snapshot cannot be decoded.
	ErrUnparseableSnapshot = errors.New("ngram: unparseable snapshot")

	// ErrInvalidSnapshot is returned when a decoded snapshot breaks a chain invariant.
	ErrInvalidSnapshot = errors.New("ngram: invalid snapshot")

	// ErrStalled is returned when generation reaches a token that no stored
	// window or sentence can continue from.
	ErrStalled = errors.New("ngram: generation stalled")

	// ErrStepLimit is returned when generation does not finish within the
	// configured number of walk steps.
	ErrStepLimit = errors.New("ngram: generation step limit reached")
)
