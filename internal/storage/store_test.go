package storage

import (
	"context"
	"testing"

	"symgen/internal/genotype"
	"symgen/internal/model"
)

// exerciseStore runs the behavior every Store implementation must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	program := model.NewProgram(model.KindGraph, model.FeatureLeaf(1))
	leaf := program.Root
	program.Root = program.Add(model.BinaryNode(1, leaf, leaf))
	program.ID = "p1"
	if err := store.SaveProgram(ctx, program); err != nil {
		t.Fatalf("save program: %v", err)
	}

	loaded, ok, err := store.GetProgram(ctx, "p1")
	if err != nil {
		t.Fatalf("get program: %v", err)
	}
	if !ok {
		t.Fatal("expected program p1")
	}
	if loaded.ID != "p1" || loaded.Kind != model.KindGraph {
		t.Fatalf("unexpected program loaded: %+v", loaded)
	}
	if got := genotype.Format(loaded, model.DefaultOptions()); got != "(x1 + x1)" {
		t.Fatalf("unexpected expression: %s", got)
	}
	if loaded.Nodes[loaded.Root].Left != loaded.Nodes[loaded.Root].Right {
		t.Fatal("sharing lost in storage")
	}

	loaded.Nodes[0].Feature = 2
	again, _, err := store.GetProgram(ctx, "p1")
	if err != nil {
		t.Fatalf("get program: %v", err)
	}
	if again.Nodes[0].Feature != 1 {
		t.Fatal("store returned shared program memory")
	}

	if _, ok, err := store.GetProgram(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing program: ok=%v err=%v", ok, err)
	}

	second := model.NewProgram(model.KindTree, model.ConstantLeaf(2))
	second.ID = "p0"
	if err := store.SaveProgram(ctx, second); err != nil {
		t.Fatalf("save program: %v", err)
	}
	ids, err := store.ListPrograms(ctx)
	if err != nil {
		t.Fatalf("list programs: %v", err)
	}
	if len(ids) != 2 || ids[0] != "p0" || ids[1] != "p1" {
		t.Fatalf("unexpected ids: %v", ids)
	}

	anonymous := model.NewProgram(model.KindTree, model.ConstantLeaf(2))
	if err := store.SaveProgram(ctx, anonymous); err == nil {
		t.Fatal("expected missing id error")
	}

	records := []model.LineageRecord{
		{VersionedRecord: model.CurrentVersion(), ProgramID: "p1", ParentIDs: []string{"p0"}, Operation: "prepend_op", NodeCount: 3},
		{VersionedRecord: model.CurrentVersion(), ProgramID: "p2", ParentIDs: []string{"p1", "p0"}, Operation: "crossover", NodeCount: 3},
	}
	for _, record := range records {
		if err := store.SaveLineage(ctx, record); err != nil {
			t.Fatalf("save lineage: %v", err)
		}
	}
	record, ok, err := store.GetLineage(ctx, "p2")
	if err != nil || !ok {
		t.Fatalf("get lineage: ok=%v err=%v", ok, err)
	}
	if record.Operation != "crossover" || len(record.ParentIDs) != 2 {
		t.Fatalf("unexpected lineage: %+v", record)
	}

	chain, err := Ancestry(ctx, store, "p2", 0)
	if err != nil {
		t.Fatalf("ancestry: %v", err)
	}
	if len(chain) != 2 || chain[0].ProgramID != "p2" || chain[1].ProgramID != "p1" {
		t.Fatalf("unexpected ancestry: %+v", chain)
	}
	if chain, _ := Ancestry(ctx, store, "p2", 1); len(chain) != 1 {
		t.Fatalf("ancestry limit ignored: %d records", len(chain))
	}

	if err := store.DeleteProgram(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.GetProgram(ctx, "p1"); ok {
		t.Fatal("program p1 still present after delete")
	}
	if _, ok, _ := store.GetLineage(ctx, "p1"); ok {
		t.Fatal("lineage of p1 still present after delete")
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	exerciseStore(t, store)
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	program := model.NewProgram(model.KindTree, model.ConstantLeaf(1))
	program.ID = "p"
	if err := NewMemoryStore().SaveProgram(context.Background(), program); err == nil {
		t.Fatal("expected uninitialized store error")
	}
}

func TestAncestryDetectsLoops(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, pair := range [][2]string{{"a", "b"}, {"b", "a"}} {
		record := model.LineageRecord{VersionedRecord: model.CurrentVersion(), ProgramID: pair[0], ParentIDs: []string{pair[1]}}
		if err := store.SaveLineage(ctx, record); err != nil {
			t.Fatalf("save lineage: %v", err)
		}
	}
	if _, err := Ancestry(ctx, store, "a", 0); err == nil {
		t.Fatal("expected lineage loop error")
	}
}
