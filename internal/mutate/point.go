package mutate

import (
	"errors"
	"math"
	"math/rand"

	"symgen/internal/genotype"
	"symgen/internal/model"
)

// SwapNodePair exchanges the contents of two distinct nodes, moving the two
// subtrees into each other's positions. The second node is drawn among nodes
// that are neither ancestors nor descendants of the first, since exchanging
// related nodes would create a cycle. No-op for single-node programs or when
// the first pick has no unrelated partner.
func SwapNodePair(p *model.Program, rng *rand.Rand) (*model.Program, error) {
	if genotype.CountNodes(p) < 2 {
		return p, nil
	}
	first, err := genotype.RandomNode(p, rng, genotype.AnyNode)
	if err != nil {
		return nil, err
	}
	related := genotype.Related(p, first)
	second, err := genotype.RandomNode(p, rng, func(id model.NodeID, _ model.Node) bool {
		return !related[id]
	})
	if errors.Is(err, genotype.ErrEmptySelection) {
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	p.Nodes[first], p.Nodes[second] = p.Nodes[second], p.Nodes[first]
	return p, nil
}

// SwapOperands exchanges the children of a random binary node. No-op without
// binary nodes.
func SwapOperands(p *model.Program, rng *rand.Rand) (*model.Program, error) {
	if !genotype.HasMatching(p, genotype.IsBinary) {
		return p, nil
	}
	id, err := genotype.RandomNode(p, rng, genotype.IsBinary)
	if err != nil {
		return nil, err
	}
	n := p.Node(id)
	n.Left, n.Right = n.Right, n.Left
	return p, nil
}

// MutateOperator redraws the operator index of a random operator node for its
// arity. The redraw may land on the current index. No-op without operators.
func MutateOperator(p *model.Program, opts model.Options, rng *rand.Rand) (*model.Program, error) {
	if !genotype.HasOperators(p) {
		return p, nil
	}
	id, err := genotype.RandomNode(p, rng, genotype.IsOperator)
	if err != nil {
		return nil, err
	}
	op, err := randomOp(p.Nodes[id].Degree, opts, rng)
	if err != nil {
		return nil, err
	}
	p.Node(id).Op = op
	return p, nil
}

// MutateConstant scales a random constant by a factor in
// [1, perturbation_factor*temperature + 1.1], multiplying or dividing with
// equal odds, then negates it with probability 1 - probability_negate_constant.
// No-op without constants.
func MutateConstant(p *model.Program, temperature float64, opts model.Options, rng *rand.Rand) (*model.Program, error) {
	if !genotype.HasConstants(p) {
		return p, nil
	}
	id, err := genotype.RandomNode(p, rng, genotype.IsConstant)
	if err != nil {
		return nil, err
	}
	n := p.Node(id)
	n.Value = perturbConstant(n.Value, temperature, opts, rng)
	return p, nil
}

func perturbConstant(value, temperature float64, opts model.Options, rng *rand.Rand) float64 {
	factor := perturbationScale(temperature, opts, rng)
	if rng.Intn(2) == 0 {
		value *= factor
	} else {
		value /= factor
	}
	// Negation fires on the complement of probability_negate_constant; kept as is.
	if rng.Float64() > opts.ProbabilityNegateConstant {
		value = -value
	}
	return value
}

func perturbationScale(temperature float64, opts model.Options, rng *rand.Rand) float64 {
	maxChange := opts.PerturbationFactor*temperature + 1 + 0.1
	return math.Pow(maxChange, rng.Float64())
}

// MutateFeature moves a random feature leaf to a different feature index.
// No-op without feature leaves or with fewer than two features.
func MutateFeature(p *model.Program, features int, rng *rand.Rand) (*model.Program, error) {
	if features < 2 || !genotype.HasMatching(p, genotype.IsFeature) {
		return p, nil
	}
	id, err := genotype.RandomNode(p, rng, genotype.IsFeature)
	if err != nil {
		return nil, err
	}
	n := p.Node(id)
	next := rng.Intn(features-1) + 1
	if next >= n.Feature {
		next++
	}
	n.Feature = next
	return p, nil
}
