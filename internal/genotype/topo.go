package genotype

import (
	"math/rand"

	"symgen/internal/model"
)

// TopologicalOrder returns the reachable nodes ordered so every child precedes
// each of its parents. Ties among ready nodes are broken by rng, giving a
// uniformly randomized Kahn ordering. A nil rng takes the most recently
// readied node.
func TopologicalOrder(p *model.Program, rng *rand.Rand) []model.NodeID {
	if p == nil || !p.Valid(p.Root) {
		return nil
	}
	remaining := make([]int, len(p.Nodes))
	parents := make([][]model.NodeID, len(p.Nodes))
	ready := make([]model.NodeID, 0)
	total := 0
	Walk(p, func(id, _ model.NodeID, _ model.Side) bool {
		total++
		n := p.Nodes[id]
		remaining[id] = n.Degree
		for _, child := range n.Children() {
			parents[child] = append(parents[child], id)
		}
		if n.Degree == 0 {
			ready = append(ready, id)
		}
		return true
	})

	order := make([]model.NodeID, 0, total)
	for len(ready) > 0 {
		k := len(ready) - 1
		if rng != nil {
			k = rng.Intn(len(ready))
		}
		id := ready[k]
		ready[k] = ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		order = append(order, id)
		for _, parent := range parents[id] {
			remaining[parent]--
			if remaining[parent] == 0 {
				ready = append(ready, parent)
			}
		}
	}
	return order
}
