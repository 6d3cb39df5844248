package mutate

import (
	"fmt"
	"math/rand"

	"symgen/internal/genotype"
	"symgen/internal/model"
)

// AppendRandomOp replaces a random leaf with an operator whose children are
// fresh leaves. The arity is binary with probability
// num_binary/(num_binary+num_unary).
func AppendRandomOp(p *model.Program, opts model.Options, features int, rng *rand.Rand) (*model.Program, error) {
	return appendRandomOp(p, 0, opts, features, rng)
}

// AppendRandomOpArity is AppendRandomOp with the arity forced to degree (1 or
// 2). Forcing an arity with no configured operators is ErrArityUnavailable.
func AppendRandomOpArity(p *model.Program, degree int, opts model.Options, features int, rng *rand.Rand) (*model.Program, error) {
	if degree != 1 && degree != 2 {
		return nil, fmt.Errorf("unsupported arity: %d", degree)
	}
	return appendRandomOp(p, degree, opts, features, rng)
}

func appendRandomOp(p *model.Program, degree int, opts model.Options, features int, rng *rand.Rand) (*model.Program, error) {
	leaf, err := genotype.RandomNode(p, rng, genotype.IsLeaf)
	if err != nil {
		return nil, err
	}
	if degree == 0 {
		if degree, err = chooseDegree(opts, rng); err != nil {
			return nil, err
		}
	}
	node, err := newOperator(p, degree, model.NoNode, opts, features, rng)
	if err != nil {
		return nil, err
	}
	genotype.Replace(p, leaf, node)
	return p, nil
}

// InsertRandomOp pushes a random node one level down: the node's contents move
// to a fresh slot that becomes the left child of a new operator installed in
// the node's former position. Binary operators get a fresh right leaf.
func InsertRandomOp(p *model.Program, opts model.Options, features int, rng *rand.Rand) (*model.Program, error) {
	id, err := genotype.RandomNode(p, rng, genotype.AnyNode)
	if err != nil {
		return nil, err
	}
	degree, err := chooseDegree(opts, rng)
	if err != nil {
		return nil, err
	}
	moved := p.Add(p.Nodes[id])
	node, err := newOperator(p, degree, moved, opts, features, rng)
	if err != nil {
		return nil, err
	}
	genotype.Replace(p, id, node)
	return p, nil
}

// PrependRandomOp installs a new root operator whose left child is the old
// root. The program handle is kept but its Root is rebound.
func PrependRandomOp(p *model.Program, opts model.Options, features int, rng *rand.Rand) (*model.Program, error) {
	if !p.Valid(p.Root) {
		return nil, genotype.ErrEmptySelection
	}
	degree, err := chooseDegree(opts, rng)
	if err != nil {
		return nil, err
	}
	node, err := newOperator(p, degree, p.Root, opts, features, rng)
	if err != nil {
		return nil, err
	}
	p.Root = p.Add(node)
	return p, nil
}
