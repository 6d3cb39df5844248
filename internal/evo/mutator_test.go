package evo

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"symgen/internal/genotype"
	"symgen/internal/model"
)

func TestMutatorRecordsLineage(t *testing.T) {
	rng := rand.New(rand.NewSource(41))
	opts := model.DefaultOptions()
	parent := seedProgram(t, rng, model.KindTree, 7)
	parent.ID = "parent"

	m := &Mutator{Rand: rng, Options: opts, Features: testFeatures, Count: ConstMutations{Count: 3}}
	child, record, err := m.Mutate(context.Background(), parent, "child")
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if child.ID != "child" || parent.ID != "parent" {
		t.Fatalf("unexpected ids: child=%q parent=%q", child.ID, parent.ID)
	}
	if record.ProgramID != "child" || len(record.ParentIDs) != 1 || record.ParentIDs[0] != "parent" {
		t.Fatalf("unexpected lineage: %+v", record)
	}
	if got := len(strings.Split(record.Operation, "+")); got != 3 {
		t.Fatalf("expected 3 operations, got %q", record.Operation)
	}
	if record.NodeCount != genotype.CountNodes(child) {
		t.Fatalf("node count mismatch: record=%d actual=%d", record.NodeCount, genotype.CountNodes(child))
	}
	if record.Fingerprint != genotype.ComputeProgramSignature(child, opts).Fingerprint {
		t.Fatal("fingerprint does not match child")
	}
	if err := genotype.Validate(child, opts, testFeatures); err != nil {
		t.Fatalf("invalid child: %v", err)
	}
}

func TestMutatorNoChoiceIsRecorded(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	leaf := model.NewProgram(model.KindTree, model.FeatureLeaf(1))
	m := &Mutator{
		Rand:   rng,
		Policy: []WeightedMutation{{Operator: &SwapOperands{Rand: rng}, Weight: 1}},
		Count:  ConstMutations{Count: 2},
	}
	_, record, err := m.Mutate(context.Background(), leaf, "x")
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if record.Operation != "noop(no_choice)+noop(no_choice)" {
		t.Fatalf("unexpected operation: %q", record.Operation)
	}
}

func TestMutationCountPolicies(t *testing.T) {
	rng := rand.New(rand.NewSource(43))
	program := seedProgram(t, rng, model.KindTree, 9)

	if _, err := (ConstMutations{}).MutationCount(program, rng); err == nil {
		t.Fatal("expected const count error")
	}
	if got, err := (NCountLinearMutations{Multiplier: 0.5}).MutationCount(program, rng); err != nil || got != 5 {
		t.Fatalf("linear count: got=%d err=%v", got, err)
	}
	if got, _ := (NCountLinearMutations{Multiplier: 2, MaxCount: 4}).MutationCount(program, rng); got != 4 {
		t.Fatalf("linear count must be capped, got %d", got)
	}
	for i := 0; i < 100; i++ {
		got, err := (NCountExponentialMutations{Power: 0.5}).MutationCount(program, rng)
		if err != nil {
			t.Fatalf("exponential count: %v", err)
		}
		if got < 1 || got > 3 {
			t.Fatalf("exponential count out of range: %d", got)
		}
	}
	if _, err := (NCountExponentialMutations{}).MutationCount(program, rng); err == nil {
		t.Fatal("expected exponential power error")
	}
}

func TestApplyParallelReportsPolicyChain(t *testing.T) {
	programs := batchPrograms(t, 6)
	results, err := ApplyParallel(context.Background(), programs,
		MutatorBuilder(model.DefaultOptions(), testFeatures, ConstMutations{Count: 2}),
		BatchConfig{Seed: 5, Workers: 2, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	for i, res := range results {
		if got := len(strings.Split(res.Operation, "+")); got != 2 {
			t.Fatalf("program %d: expected two-step chain, got %q", i, res.Operation)
		}
		if res.Program.ID != programs[i].ID {
			t.Fatalf("program %d: id changed to %q", i, res.Program.ID)
		}
	}
}
