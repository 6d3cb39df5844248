package mutate

import (
	"math/rand"

	"symgen/internal/genotype"
	"symgen/internal/model"
)

// DeleteRandomOp removes a random node. Leaves are re-rolled in place; a unary
// node is replaced by its child; a binary node is replaced by one of its two
// children chosen 50/50 and the other subtree is dropped. Removing the root
// rebinds Root.
func DeleteRandomOp(p *model.Program, opts model.Options, features int, rng *rand.Rand) (*model.Program, error) {
	pos, err := genotype.RandomPosition(p, rng, genotype.AnyNode)
	if err != nil {
		return nil, err
	}
	deleteAt(p, pos, features, rng)
	return p, nil
}

func deleteAt(p *model.Program, pos genotype.Position, features int, rng *rand.Rand) {
	n := p.Nodes[pos.Node]
	var keep model.NodeID
	switch n.Degree {
	case 0:
		genotype.Replace(p, pos.Node, RandomLeaf(features, rng))
		return
	case 1:
		keep = n.Left
	default:
		keep = n.Left
		if rng.Intn(2) == 0 {
			keep = n.Right
		}
	}
	install(p, pos.Parent, pos.Side, keep)
}
