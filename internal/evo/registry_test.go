package evo

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"symgen/internal/model"
)

type noopOperator struct{}

func (noopOperator) Name() string { return "noop" }

func (noopOperator) Apply(_ context.Context, program *model.Program) (*model.Program, error) {
	return program, nil
}

func currentProgram() *model.Program {
	return model.NewProgram(model.KindTree, model.FeatureLeaf(1))
}

func TestRegisterAndResolveOperator(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("noop", noopOperator{}); err != nil {
		t.Fatalf("register: %v", err)
	}

	op, err := r.Resolve("noop", currentProgram())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if op.Name() != "noop" {
		t.Fatalf("unexpected operator: %s", op.Name())
	}
	if names := r.List(); len(names) != 1 || names[0] != "noop" {
		t.Fatalf("unexpected operator list: %v", names)
	}
}

func TestRegisterOperatorDuplicate(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("noop", noopOperator{}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register("noop", noopOperator{}); !errors.Is(err, ErrOperatorExists) {
		t.Fatalf("expected ErrOperatorExists, got: %v", err)
	}
}

func TestRegisterOperatorValidation(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("", noopOperator{}); err == nil {
		t.Fatal("expected empty name error")
	}
	if err := r.Register("nil", nil); err == nil {
		t.Fatal("expected nil operator error")
	}
	if err := r.RegisterWithSpec(OperatorSpec{
		Name:          "bad-version",
		Operator:      noopOperator{},
		SchemaVersion: 99,
		CodecVersion:  1,
	}); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got: %v", err)
	}
}

func TestResolveOperatorNotFound(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("missing", currentProgram())
	if !errors.Is(err, ErrOperatorNotFound) {
		t.Fatalf("expected ErrOperatorNotFound, got: %v", err)
	}
}

func TestResolveOperatorVersionMismatch(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("noop", noopOperator{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	stale := currentProgram()
	stale.SchemaVersion = 0
	if _, err := r.Resolve("noop", stale); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got: %v", err)
	}
}

func TestBuiltinRegistryGraphOperatorsRequireGraph(t *testing.T) {
	registry, err := NewBuiltinRegistry(model.DefaultOptions(), 3, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("builtin registry: %v", err)
	}

	tree := currentProgram()
	graph := currentProgram()
	graph.Kind = model.KindGraph
	for _, name := range []string{"form_connection", "form_connection_ordered", "break_connection"} {
		if _, err := registry.Resolve(name, tree); !errors.Is(err, ErrOperatorIncompatible) {
			t.Fatalf("%s on tree: expected ErrOperatorIncompatible, got %v", name, err)
		}
		if _, err := registry.Resolve(name, graph); err != nil {
			t.Fatalf("%s on graph: %v", name, err)
		}
	}

	want := []string{
		"append_binary_op", "append_op", "append_unary_op", "break_connection", "delete_op",
		"form_connection", "form_connection_ordered", "insert_op", "mutate_constant",
		"mutate_feature", "mutate_operator", "prepend_op", "randomize", "swap_nodes", "swap_operands",
	}
	got := registry.List()
	if len(got) != len(want) {
		t.Fatalf("unexpected operators: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("operator %d: got=%s want=%s", i, got[i], want[i])
		}
	}
}
