package domain

import "errors"

var (
	ErrNoInputs            = errors.New("missing inputs")
	ErrInvalidInput        = errors.New("input amount must be positive")
	ErrInputBelowChangeFee = errors.New("input sum does not cover the change output fee")

	// The following abort a decomposition: they reveal a defect in the
	// search or filtering stages.
	ErrValueCreation       = errors.New("outputs spend more than the inputs")
	ErrExcessiveLoss       = errors.New("leftover too large, aborting to avoid money loss")
	ErrVsizeBudgetExceeded = errors.New("outputs exceed the available vsize")
)
