package mutate

import (
	"fmt"
	"math/rand"

	"symgen/internal/genotype"
	"symgen/internal/model"
)

// GenRandomTree grows a program from a placeholder constant 1.0 by applying
// AppendRandomOp length times. The result usually exceeds length nodes.
func GenRandomTree(length int, opts model.Options, features int, rng *rand.Rand) (*model.Program, error) {
	p := model.NewProgram(opts.NodeType, model.ConstantLeaf(1))
	for i := 0; i < length; i++ {
		if _, err := AppendRandomOp(p, opts, features, rng); err != nil {
			return nil, fmt.Errorf("append %d/%d: %w", i+1, length, err)
		}
	}
	return p, nil
}

// GenRandomTreeFixedSize grows a program from a random leaf until it holds at
// least size nodes. When a single node is missing only a unary append is
// allowed; without unary operators generation stops one node short.
func GenRandomTreeFixedSize(size int, opts model.Options, features int, rng *rand.Rand) (*model.Program, error) {
	p := model.NewProgram(opts.NodeType, RandomLeaf(features, rng))
	current := 1
	for current < size {
		var err error
		if current == size-1 {
			if opts.NumUnary == 0 {
				break
			}
			_, err = AppendRandomOpArity(p, 1, opts, features, rng)
		} else {
			_, err = AppendRandomOp(p, opts, features, rng)
		}
		if err != nil {
			return nil, err
		}
		current = genotype.CountNodes(p)
	}
	return p, nil
}

// RandomizeTree replaces p's contents with a fresh random program of the same
// node count. ID and Kind are kept.
func RandomizeTree(p *model.Program, opts model.Options, features int, rng *rand.Rand) (*model.Program, error) {
	fresh, err := GenRandomTreeFixedSize(genotype.CountNodes(p), opts, features, rng)
	if err != nil {
		return nil, err
	}
	p.Nodes = fresh.Nodes
	p.Root = fresh.Root
	return p, nil
}
