package genotype

import (
	"errors"
	"math/rand"

	"symgen/internal/model"
)

var ErrEmptySelection = errors.New("no node matches selection predicate")

// Position locates a node together with the parent slot it was reached through.
type Position struct {
	Node   model.NodeID
	Parent model.NodeID
	Side   model.Side
}

// RandomPosition draws a uniformly random reachable node accepted by keep in a
// single reservoir-sampling pass. A nil keep accepts every node.
func RandomPosition(p *model.Program, rng *rand.Rand, keep Predicate) (Position, error) {
	var chosen Position
	seen := 0
	Walk(p, func(id, parent model.NodeID, side model.Side) bool {
		if keep != nil && !keep(id, p.Nodes[id]) {
			return true
		}
		seen++
		if rng.Intn(seen) == 0 {
			chosen = Position{Node: id, Parent: parent, Side: side}
		}
		return true
	})
	if seen == 0 {
		return Position{}, ErrEmptySelection
	}
	return chosen, nil
}

// RandomNode is RandomPosition without the parent slot.
func RandomNode(p *model.Program, rng *rand.Rand, keep Predicate) (model.NodeID, error) {
	pos, err := RandomPosition(p, rng, keep)
	if err != nil {
		return model.NoNode, err
	}
	return pos.Node, nil
}
