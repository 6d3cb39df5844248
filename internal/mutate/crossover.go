package mutate

import (
	"math/rand"

	"symgen/internal/genotype"
	"symgen/internal/model"
)

// CrossoverTrees exchanges a random subtree of a with a random subtree of b.
// Both inputs are left untouched; the returned programs are new, compact and
// carry no ID. A selection at the root replaces the whole program. Grafts keep
// any sharing they had, so when either parent is a graph both offspring are
// graphs.
func CrossoverTrees(a, b *model.Program, rng *rand.Rand) (*model.Program, *model.Program, error) {
	outA := genotype.Clone(a)
	outB := genotype.Clone(b)
	outA.ID, outB.ID = "", ""

	posA, err := genotype.RandomPosition(outA, rng, genotype.AnyNode)
	if err != nil {
		return nil, nil, err
	}
	posB, err := genotype.RandomPosition(outB, rng, genotype.AnyNode)
	if err != nil {
		return nil, nil, err
	}

	// Both grafts are copied before either slot is rewired.
	fromB := genotype.CopySubtree(outA, outB, posB.Node)
	fromA := genotype.CopySubtree(outB, outA, posA.Node)
	install(outA, posA.Parent, posA.Side, fromB)
	install(outB, posB.Parent, posB.Side, fromA)

	if a.IsGraph() || b.IsGraph() {
		outA.Kind, outB.Kind = model.KindGraph, model.KindGraph
	}
	genotype.Compact(outA)
	genotype.Compact(outB)
	return outA, outB, nil
}
