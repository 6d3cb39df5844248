package mutate

import (
	"math/rand"
	"testing"

	"symgen/internal/genotype"
	"symgen/internal/model"
)

const testFeatures = 3

func testOptions() model.Options {
	return model.DefaultOptions()
}

// binaryProgram builds x1 OP 2.0.
func binaryProgram(op int) *model.Program {
	p := &model.Program{Kind: model.KindTree}
	left := p.Add(model.FeatureLeaf(1))
	right := p.Add(model.ConstantLeaf(2.0))
	p.Root = p.Add(model.BinaryNode(op, left, right))
	return p
}

// chainProgram builds cos(cos(...(x1))) with depth unary operators.
func chainProgram(depth int) *model.Program {
	p := &model.Program{Kind: model.KindTree}
	id := p.Add(model.FeatureLeaf(1))
	for i := 0; i < depth; i++ {
		id = p.Add(model.UnaryNode(1, id))
	}
	p.Root = id
	return p
}

func randomProgram(t *testing.T, rng *rand.Rand, size int) *model.Program {
	t.Helper()
	p, err := GenRandomTreeFixedSize(size, testOptions(), testFeatures, rng)
	if err != nil {
		t.Fatalf("generate program: %v", err)
	}
	return p
}

func mustValidate(t *testing.T, p *model.Program) {
	t.Helper()
	if err := genotype.Validate(p, testOptions(), testFeatures); err != nil {
		t.Fatalf("invalid program %s: %v", genotype.Format(p, testOptions()), err)
	}
}
