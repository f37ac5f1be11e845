package types

import "github.com/pkg/errors"

var (
	// ErrConfiguration is fatal at construction and never recovered.
	ErrConfiguration = errors.New("configuration error")

	// ErrExhaustedGrid means no free cell is left for a target. The
	// orchestrator treats it as a won run.
	ErrExhaustedGrid = errors.New("grid exhausted")
)
