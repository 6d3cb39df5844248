package mutate

import (
	"errors"
	"math/rand"

	"symgen/internal/genotype"
	"symgen/internal/model"
)

const (
	connectionAttempts     = 10
	minConnectionNodes     = 5
	minOrderedConnectNodes = 3
)

// FormRandomConnection points a child slot of a random operator node at another
// random node, creating a shared sub-expression. Candidates whose subtree
// already contains the parent are rejected; after connectionAttempts
// rejections the call is a no-op, as it is for programs under five nodes.
// A successful connection turns the program into a graph.
func FormRandomConnection(p *model.Program, rng *rand.Rand) (*model.Program, error) {
	if genotype.CountNodes(p) < minConnectionNodes {
		return p, nil
	}
	for attempt := 0; attempt < connectionAttempts; attempt++ {
		parent, err := genotype.RandomNode(p, rng, genotype.IsOperator)
		if errors.Is(err, genotype.ErrEmptySelection) {
			return p, nil
		}
		if err != nil {
			return nil, err
		}
		child, err := genotype.RandomNode(p, rng, func(id model.NodeID, _ model.Node) bool {
			return id != parent
		})
		if err != nil {
			return nil, err
		}
		if genotype.Contains(p, child, parent) {
			continue
		}
		connect(p, parent, child, rng)
		return p, nil
	}
	return p, nil
}

// FormRandomConnectionOrdered draws a randomized topological order (children
// first), picks an operator at some position i >= 1 and a node at a position
// strictly before i, and installs the latter as a child of the former. The
// ordering rules out cycles, so no retries are needed. No-op under three
// reachable nodes or when no operator sits past the first position.
func FormRandomConnectionOrdered(p *model.Program, rng *rand.Rand) (*model.Program, error) {
	order := genotype.TopologicalOrder(p, rng)
	if len(order) < minOrderedConnectNodes {
		return p, nil
	}
	parentIndex := -1
	seen := 0
	for i := 1; i < len(order); i++ {
		if p.Nodes[order[i]].Degree == 0 {
			continue
		}
		seen++
		if rng.Intn(seen) == 0 {
			parentIndex = i
		}
	}
	if parentIndex < 0 {
		return p, nil
	}
	childIndex := rng.Intn(parentIndex)
	connect(p, order[parentIndex], order[childIndex], rng)
	return p, nil
}

// BreakRandomConnection replaces one child reference of a random operator node
// with a deep copy of that child, severing any sharing along that edge. Other
// parents of the child keep the original. No-op without operators.
func BreakRandomConnection(p *model.Program, rng *rand.Rand) (*model.Program, error) {
	if !genotype.HasOperators(p) {
		return p, nil
	}
	parent, err := genotype.RandomNode(p, rng, genotype.IsOperator)
	if err != nil {
		return nil, err
	}
	side := randomSlot(p.Nodes[parent], rng)
	copied := genotype.CopySubtree(p, p, p.Nodes[parent].Child(side))
	p.Node(parent).SetChild(side, copied)
	return p, nil
}

func connect(p *model.Program, parent, child model.NodeID, rng *rand.Rand) {
	side := randomSlot(p.Nodes[parent], rng)
	p.Node(parent).SetChild(side, child)
	p.Kind = model.KindGraph
}

func randomSlot(n model.Node, rng *rand.Rand) model.Side {
	if n.Degree == 2 && rng.Intn(2) == 0 {
		return model.SideRight
	}
	return model.SideLeft
}
