package evo

import (
	"context"
	"errors"

	"symgen/internal/model"
)

var (
	ErrNilProgram    = errors.New("program is required")
	ErrNoRandom      = errors.New("random source is required")
	ErrNoMutationSet = errors.New("no mutation choice available")
)

// Operator transforms one program. Apply never modifies its input; the result
// is a new program carrying the input's ID and version.
type Operator interface {
	Name() string
	Apply(ctx context.Context, program *model.Program) (*model.Program, error)
}

// ContextualOperator can declare whether it has anything to do on a program.
// Policies skip operators that are not applicable.
type ContextualOperator interface {
	Operator
	Applicable(program *model.Program) bool
}

// Describer is implemented by composite operators that can report what their
// most recent Apply actually did.
type Describer interface {
	Describe() string
}

// Applicable reports whether op can act on program. Operators without an
// applicability check always can.
func Applicable(op Operator, program *model.Program) bool {
	contextual, ok := op.(ContextualOperator)
	if !ok {
		return true
	}
	return contextual.Applicable(program)
}
