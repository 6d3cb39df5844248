// Package mutate implements the structural edit primitives applied to
// expression programs: point mutations, growth and shrink operators, random
// program generation, crossover, and sharing-edge rewiring for graph programs.
//
// Unless documented otherwise every operator mutates its program in place and
// returns the same handle. CrossoverTrees is the exception: it returns new
// programs and leaves its arguments untouched. No operator is safe for
// concurrent use on the same program; distinct programs with distinct random
// sources may be mutated concurrently.
package mutate

import (
	"errors"
	"fmt"
	"math/rand"

	"symgen/internal/model"
)

var ErrArityUnavailable = errors.New("no operators configured for arity")

// RandomLeaf returns, with equal probability, a constant drawn from N(0,1) or
// a feature reference drawn uniformly from [1, features]. With no features
// every leaf is a constant.
func RandomLeaf(features int, rng *rand.Rand) model.Node {
	if features <= 0 || rng.Intn(2) == 0 {
		return model.ConstantLeaf(rng.NormFloat64())
	}
	return model.FeatureLeaf(rng.Intn(features) + 1)
}

func randomOp(degree int, opts model.Options, rng *rand.Rand) (int, error) {
	count := opts.NumBinary
	if degree == 1 {
		count = opts.NumUnary
	}
	if count <= 0 {
		return 0, fmt.Errorf("%w: degree %d", ErrArityUnavailable, degree)
	}
	return rng.Intn(count) + 1, nil
}

// chooseDegree flips a coin weighted by the number of operators per arity.
func chooseDegree(opts model.Options, rng *rand.Rand) (int, error) {
	total := opts.NumUnary + opts.NumBinary
	if total <= 0 {
		return 0, fmt.Errorf("%w: no operators configured", ErrArityUnavailable)
	}
	if rng.Float64() < float64(opts.NumBinary)/float64(total) {
		return 2, nil
	}
	return 1, nil
}

// newOperator builds an operator node whose left child is left, or a fresh
// leaf when left is NoNode, and whose right child (binary only) is a fresh
// leaf. Fresh leaves are appended to p's arena.
func newOperator(p *model.Program, degree int, left model.NodeID, opts model.Options, features int, rng *rand.Rand) (model.Node, error) {
	op, err := randomOp(degree, opts, rng)
	if err != nil {
		return model.Node{}, err
	}
	if left == model.NoNode {
		left = p.Add(RandomLeaf(features, rng))
	}
	if degree == 1 {
		return model.UnaryNode(op, left), nil
	}
	right := p.Add(RandomLeaf(features, rng))
	return model.BinaryNode(op, left, right), nil
}

// install points parent's side slot at id. SideRoot rebinds the root instead.
func install(p *model.Program, parent model.NodeID, side model.Side, id model.NodeID) {
	if side == model.SideRoot {
		p.Root = id
		return
	}
	p.Node(parent).SetChild(side, id)
}
