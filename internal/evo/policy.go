package evo

import (
	"fmt"
	"math/rand"

	"symgen/internal/model"
)

// WeightedMutation pairs an operator with its relative selection weight.
type WeightedMutation struct {
	Operator Operator
	Weight   float64
}

// DefaultPolicy returns every single-program operator bound to rng with the
// usual relative weights. Connection operators only apply to graph programs.
func DefaultPolicy(opts model.Options, features int, rng *rand.Rand) []WeightedMutation {
	return []WeightedMutation{
		{Operator: &MutateConstant{Rand: rng, Options: opts, Temperature: 1}, Weight: 0.0353},
		{Operator: &MutateOperator{Rand: rng, Options: opts}, Weight: 3.63},
		{Operator: &MutateFeature{Rand: rng, Features: features}, Weight: 0.1},
		{Operator: &SwapOperands{Rand: rng}, Weight: 0.00608},
		{Operator: &SwapNodes{Rand: rng}, Weight: 0.1},
		{Operator: &AppendOp{Rand: rng, Options: opts, Features: features}, Weight: 0.0771},
		{Operator: &InsertOp{Rand: rng, Options: opts, Features: features}, Weight: 2.44},
		{Operator: &PrependOp{Rand: rng, Options: opts, Features: features}, Weight: 0.1},
		{Operator: &DeleteOp{Rand: rng, Options: opts, Features: features}, Weight: 0.369},
		{Operator: &Randomize{Rand: rng, Options: opts, Features: features}, Weight: 0.00695},
		{Operator: &FormConnection{Rand: rng}, Weight: 0.5},
		{Operator: &BreakConnection{Rand: rng}, Weight: 0.1},
	}
}

// ValidatePolicy rejects policies with missing operators, negative weights, or
// no positive weight at all.
func ValidatePolicy(policy []WeightedMutation) error {
	positive := false
	for i, item := range policy {
		if item.Operator == nil {
			return fmt.Errorf("mutation policy operator is required at index %d", i)
		}
		if item.Weight < 0 {
			return fmt.Errorf("mutation policy weight must be >= 0 at index %d", i)
		}
		if item.Weight > 0 {
			positive = true
		}
	}
	if !positive {
		return fmt.Errorf("mutation policy requires at least one positive weight")
	}
	return nil
}

// ChooseMutation draws an operator proportionally to weight among those
// applicable to program.
func ChooseMutation(rng *rand.Rand, policy []WeightedMutation, program *model.Program) (Operator, error) {
	total := 0.0
	for _, item := range policy {
		if item.Weight > 0 && Applicable(item.Operator, program) {
			total += item.Weight
		}
	}
	if total <= 0 {
		return nil, ErrNoMutationSet
	}
	pick := rng.Float64() * total
	acc := 0.0
	var last Operator
	for _, item := range policy {
		if item.Weight <= 0 || !Applicable(item.Operator, program) {
			continue
		}
		acc += item.Weight
		last = item.Operator
		if pick < acc {
			return item.Operator, nil
		}
	}
	return last, nil
}
