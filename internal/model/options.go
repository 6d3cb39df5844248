package model

import (
	"errors"
	"fmt"
)

// Options are the read-only mutation parameters shared by every operator.
type Options struct {
	NumUnary                  int      `json:"num_unary" yaml:"num_unary"`
	NumBinary                 int      `json:"num_binary" yaml:"num_binary"`
	PerturbationFactor        float64  `json:"perturbation_factor" yaml:"perturbation_factor"`
	ProbabilityNegateConstant float64  `json:"probability_negate_constant" yaml:"probability_negate_constant"`
	NodeType                  Kind     `json:"node_type" yaml:"node_type"`
	UnaryOperators            []string `json:"unary_operators,omitempty" yaml:"unary_operators,omitempty"`
	BinaryOperators           []string `json:"binary_operators,omitempty" yaml:"binary_operators,omitempty"`
}

// DefaultOptions mirrors the usual search defaults: four arithmetic binary
// operators and two unary ones.
func DefaultOptions() Options {
	return Options{
		NumUnary:                  2,
		NumBinary:                 4,
		PerturbationFactor:        0.076,
		ProbabilityNegateConstant: 0.01,
		NodeType:                  KindTree,
		UnaryOperators:            []string{"cos", "exp"},
		BinaryOperators:           []string{"+", "-", "*", "/"},
	}
}

// Validate rejects options that no operator could work with.
func (o Options) Validate() error {
	if o.NumUnary < 0 || o.NumBinary < 0 {
		return fmt.Errorf("operator counts must be >= 0: unary=%d binary=%d", o.NumUnary, o.NumBinary)
	}
	if o.NumUnary+o.NumBinary == 0 {
		return errors.New("at least one operator is required")
	}
	if len(o.UnaryOperators) > 0 && len(o.UnaryOperators) != o.NumUnary {
		return fmt.Errorf("unary operator names (%d) do not match num_unary=%d", len(o.UnaryOperators), o.NumUnary)
	}
	if len(o.BinaryOperators) > 0 && len(o.BinaryOperators) != o.NumBinary {
		return fmt.Errorf("binary operator names (%d) do not match num_binary=%d", len(o.BinaryOperators), o.NumBinary)
	}
	if o.PerturbationFactor < 0 {
		return fmt.Errorf("perturbation factor must be >= 0: %v", o.PerturbationFactor)
	}
	if o.ProbabilityNegateConstant < 0 || o.ProbabilityNegateConstant > 1 {
		return fmt.Errorf("probability_negate_constant must be in [0,1]: %v", o.ProbabilityNegateConstant)
	}
	switch o.NodeType {
	case "", KindTree, KindGraph:
	default:
		return fmt.Errorf("unsupported node type: %s", o.NodeType)
	}
	return nil
}

// OperatorName returns the configured name for an operator index, falling
// back to a positional label.
func (o Options) OperatorName(degree, op int) string {
	names := o.BinaryOperators
	if degree == 1 {
		names = o.UnaryOperators
	}
	if op >= 1 && op <= len(names) {
		return names[op-1]
	}
	if degree == 1 {
		return fmt.Sprintf("u%d", op)
	}
	return fmt.Sprintf("b%d", op)
}
