package evo

import (
	"context"
	"fmt"
	"math/rand"

	"symgen/internal/genotype"
	"symgen/internal/model"
	"symgen/internal/mutate"
)

// prepare checks the common operator preconditions and returns a private copy
// of program for the mutation to work on.
func prepare(ctx context.Context, rng *rand.Rand, program *model.Program) (*model.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if program == nil {
		return nil, ErrNilProgram
	}
	if rng == nil {
		return nil, ErrNoRandom
	}
	return genotype.Clone(program), nil
}

// settle compacts the arena once garbage outnumbers live nodes.
func settle(program *model.Program) *model.Program {
	live := genotype.CountNodes(program)
	if len(program.Nodes)-live > live {
		genotype.Compact(program)
	}
	return program
}

func finish(name string, program *model.Program, err error) (*model.Program, error) {
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return settle(program), nil
}

// SwapNodes exchanges the contents of two unrelated nodes.
type SwapNodes struct {
	Rand *rand.Rand
}

func (o *SwapNodes) Name() string {
	return "swap_nodes"
}

func (o *SwapNodes) Applicable(program *model.Program) bool {
	return genotype.HasOperators(program)
}

func (o *SwapNodes) Apply(ctx context.Context, program *model.Program) (*model.Program, error) {
	mutated, err := prepare(ctx, o.Rand, program)
	if err != nil {
		return nil, err
	}
	mutated, err = mutate.SwapNodePair(mutated, o.Rand)
	return finish(o.Name(), mutated, err)
}

// SwapOperands exchanges the children of a random binary node.
type SwapOperands struct {
	Rand *rand.Rand
}

func (o *SwapOperands) Name() string {
	return "swap_operands"
}

func (o *SwapOperands) Applicable(program *model.Program) bool {
	return genotype.HasMatching(program, genotype.IsBinary)
}

func (o *SwapOperands) Apply(ctx context.Context, program *model.Program) (*model.Program, error) {
	mutated, err := prepare(ctx, o.Rand, program)
	if err != nil {
		return nil, err
	}
	mutated, err = mutate.SwapOperands(mutated, o.Rand)
	return finish(o.Name(), mutated, err)
}

// MutateOperator redraws the operator of a random operator node.
type MutateOperator struct {
	Rand    *rand.Rand
	Options model.Options
}

func (o *MutateOperator) Name() string {
	return "mutate_operator"
}

func (o *MutateOperator) Applicable(program *model.Program) bool {
	return genotype.HasOperators(program)
}

func (o *MutateOperator) Apply(ctx context.Context, program *model.Program) (*model.Program, error) {
	mutated, err := prepare(ctx, o.Rand, program)
	if err != nil {
		return nil, err
	}
	mutated, err = mutate.MutateOperator(mutated, o.Options, o.Rand)
	return finish(o.Name(), mutated, err)
}

// MutateConstant perturbs a random constant. Temperature scales the maximum
// multiplicative change.
type MutateConstant struct {
	Rand        *rand.Rand
	Options     model.Options
	Temperature float64
}

func (o *MutateConstant) Name() string {
	return "mutate_constant"
}

func (o *MutateConstant) Applicable(program *model.Program) bool {
	return genotype.HasConstants(program)
}

func (o *MutateConstant) Apply(ctx context.Context, program *model.Program) (*model.Program, error) {
	mutated, err := prepare(ctx, o.Rand, program)
	if err != nil {
		return nil, err
	}
	mutated, err = mutate.MutateConstant(mutated, o.Temperature, o.Options, o.Rand)
	return finish(o.Name(), mutated, err)
}

// MutateFeature points a random feature leaf at a different input column.
type MutateFeature struct {
	Rand     *rand.Rand
	Features int
}

func (o *MutateFeature) Name() string {
	return "mutate_feature"
}

func (o *MutateFeature) Applicable(program *model.Program) bool {
	return o.Features > 1 && genotype.HasMatching(program, genotype.IsFeature)
}

func (o *MutateFeature) Apply(ctx context.Context, program *model.Program) (*model.Program, error) {
	mutated, err := prepare(ctx, o.Rand, program)
	if err != nil {
		return nil, err
	}
	mutated, err = mutate.MutateFeature(mutated, o.Features, o.Rand)
	return finish(o.Name(), mutated, err)
}

// AppendOp replaces a random leaf with a new operator over fresh leaves.
// Degree 0 draws the arity weighted by operator counts; 1 or 2 forces it.
type AppendOp struct {
	Rand     *rand.Rand
	Options  model.Options
	Features int
	Degree   int
}

func (o *AppendOp) Name() string {
	switch o.Degree {
	case 1:
		return "append_unary_op"
	case 2:
		return "append_binary_op"
	default:
		return "append_op"
	}
}

func (o *AppendOp) Applicable(_ *model.Program) bool {
	switch o.Degree {
	case 1:
		return o.Options.NumUnary > 0
	case 2:
		return o.Options.NumBinary > 0
	default:
		return o.Options.NumUnary+o.Options.NumBinary > 0
	}
}

func (o *AppendOp) Apply(ctx context.Context, program *model.Program) (*model.Program, error) {
	mutated, err := prepare(ctx, o.Rand, program)
	if err != nil {
		return nil, err
	}
	if o.Degree == 0 {
		mutated, err = mutate.AppendRandomOp(mutated, o.Options, o.Features, o.Rand)
	} else {
		mutated, err = mutate.AppendRandomOpArity(mutated, o.Degree, o.Options, o.Features, o.Rand)
	}
	return finish(o.Name(), mutated, err)
}

// InsertOp wraps a random node in a new operator.
type InsertOp struct {
	Rand     *rand.Rand
	Options  model.Options
	Features int
}

func (o *InsertOp) Name() string {
	return "insert_op"
}

func (o *InsertOp) Applicable(_ *model.Program) bool {
	return o.Options.NumUnary+o.Options.NumBinary > 0
}

func (o *InsertOp) Apply(ctx context.Context, program *model.Program) (*model.Program, error) {
	mutated, err := prepare(ctx, o.Rand, program)
	if err != nil {
		return nil, err
	}
	mutated, err = mutate.InsertRandomOp(mutated, o.Options, o.Features, o.Rand)
	return finish(o.Name(), mutated, err)
}

// PrependOp makes a new operator the root, with the old root as a child.
type PrependOp struct {
	Rand     *rand.Rand
	Options  model.Options
	Features int
}

func (o *PrependOp) Name() string {
	return "prepend_op"
}

func (o *PrependOp) Applicable(_ *model.Program) bool {
	return o.Options.NumUnary+o.Options.NumBinary > 0
}

func (o *PrependOp) Apply(ctx context.Context, program *model.Program) (*model.Program, error) {
	mutated, err := prepare(ctx, o.Rand, program)
	if err != nil {
		return nil, err
	}
	mutated, err = mutate.PrependRandomOp(mutated, o.Options, o.Features, o.Rand)
	return finish(o.Name(), mutated, err)
}

// DeleteOp removes a random node, promoting one of its children.
type DeleteOp struct {
	Rand     *rand.Rand
	Options  model.Options
	Features int
}

func (o *DeleteOp) Name() string {
	return "delete_op"
}

func (o *DeleteOp) Apply(ctx context.Context, program *model.Program) (*model.Program, error) {
	mutated, err := prepare(ctx, o.Rand, program)
	if err != nil {
		return nil, err
	}
	mutated, err = mutate.DeleteRandomOp(mutated, o.Options, o.Features, o.Rand)
	return finish(o.Name(), mutated, err)
}

// Randomize replaces the whole program with a random one of the same size.
type Randomize struct {
	Rand     *rand.Rand
	Options  model.Options
	Features int
}

func (o *Randomize) Name() string {
	return "randomize"
}

func (o *Randomize) Apply(ctx context.Context, program *model.Program) (*model.Program, error) {
	mutated, err := prepare(ctx, o.Rand, program)
	if err != nil {
		return nil, err
	}
	mutated, err = mutate.RandomizeTree(mutated, o.Options, o.Features, o.Rand)
	return finish(o.Name(), mutated, err)
}

// FormConnection points a random operator slot at an existing node that is
// not one of its ancestors.
type FormConnection struct {
	Rand *rand.Rand
}

func (o *FormConnection) Name() string {
	return "form_connection"
}

func (o *FormConnection) Applicable(program *model.Program) bool {
	return program.IsGraph() && genotype.CountNodes(program) >= 5
}

func (o *FormConnection) Apply(ctx context.Context, program *model.Program) (*model.Program, error) {
	mutated, err := prepare(ctx, o.Rand, program)
	if err != nil {
		return nil, err
	}
	mutated, err = mutate.FormRandomConnection(mutated, o.Rand)
	return finish(o.Name(), mutated, err)
}

// FormConnectionOrdered adds a sharing edge chosen along a random
// topological order, so it never needs a cycle check.
type FormConnectionOrdered struct {
	Rand *rand.Rand
}

func (o *FormConnectionOrdered) Name() string {
	return "form_connection_ordered"
}

func (o *FormConnectionOrdered) Applicable(program *model.Program) bool {
	return program.IsGraph() && genotype.CountNodes(program) >= 3
}

func (o *FormConnectionOrdered) Apply(ctx context.Context, program *model.Program) (*model.Program, error) {
	mutated, err := prepare(ctx, o.Rand, program)
	if err != nil {
		return nil, err
	}
	mutated, err = mutate.FormRandomConnectionOrdered(mutated, o.Rand)
	return finish(o.Name(), mutated, err)
}

// BreakConnection replaces a child edge with a private copy of the child.
type BreakConnection struct {
	Rand *rand.Rand
}

func (o *BreakConnection) Name() string {
	return "break_connection"
}

func (o *BreakConnection) Applicable(program *model.Program) bool {
	return program.IsGraph() && genotype.HasOperators(program)
}

func (o *BreakConnection) Apply(ctx context.Context, program *model.Program) (*model.Program, error) {
	mutated, err := prepare(ctx, o.Rand, program)
	if err != nil {
		return nil, err
	}
	mutated, err = mutate.BreakRandomConnection(mutated, o.Rand)
	return finish(o.Name(), mutated, err)
}

// Crossover recombines two parents by exchanging random subtrees. It is not an
// Operator because it consumes and produces two programs.
type Crossover struct {
	Rand *rand.Rand
}

func (o *Crossover) Name() string {
	return "crossover"
}

func (o *Crossover) Apply(ctx context.Context, a, b *model.Program) (*model.Program, *model.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if a == nil || b == nil {
		return nil, nil, ErrNilProgram
	}
	if o.Rand == nil {
		return nil, nil, ErrNoRandom
	}
	childA, childB, err := mutate.CrossoverTrees(a, b, o.Rand)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", o.Name(), err)
	}
	return childA, childB, nil
}
