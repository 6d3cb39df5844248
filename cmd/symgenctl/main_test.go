package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"symgen/internal/genotype"
)

// capture runs the command and returns what it wrote to stdout.
func capture(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	orig := stdout
	stdout = &buf
	t.Cleanup(func() {
		stdout = orig
	})
	err := run(context.Background(), args)
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) []string {
	t.Helper()
	out, err := capture(t, args...)
	if err != nil {
		t.Fatalf("%s: %v", args[0], err)
	}
	return strings.Split(strings.TrimSpace(out), "\n")
}

func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", "fixtures", name)
}

func TestRunRejectsUnknownCommands(t *testing.T) {
	if _, err := capture(t); err == nil || !strings.Contains(err.Error(), "missing command") {
		t.Fatalf("expected missing command error, got %v", err)
	}
	if _, err := capture(t, "evolve"); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestOperatorsCommand(t *testing.T) {
	lines := mustRun(t, "operators")
	found := false
	for _, line := range lines {
		if line == "form_connection_ordered" {
			found = true
		}
	}
	if !found {
		t.Fatalf("ordered connection operator missing: %v", lines)
	}
}

func TestGenerateWritesPrograms(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gen.json")
	lines := mustRun(t, "generate", "-store", "memory", "-size", "7", "-count", "3", "-seed", "5", "-out", out)
	if len(lines) != 3 {
		t.Fatalf("expected 3 output lines, got %v", lines)
	}

	programs, err := readPrograms(out)
	if err != nil {
		t.Fatalf("read generated: %v", err)
	}
	if len(programs) != 3 {
		t.Fatalf("expected 3 programs, got %d", len(programs))
	}
	for i, p := range programs {
		if got := genotype.CountNodes(p); got != 7 {
			t.Fatalf("program %d has %d nodes", i, got)
		}
		if !strings.HasPrefix(lines[i], p.ID+"\t") {
			t.Fatalf("output line %q does not match program %s", lines[i], p.ID)
		}
	}

	again := mustRun(t, "generate", "-store", "memory", "-size", "7", "-count", "3", "-seed", "5")
	for i := range lines {
		first := strings.SplitN(lines[i], "\t", 2)[1]
		second := strings.SplitN(again[i], "\t", 2)[1]
		if first != second {
			t.Fatalf("same seed produced different expressions: %s vs %s", first, second)
		}
	}
}

func TestGenerateGraphPrograms(t *testing.T) {
	out := filepath.Join(t.TempDir(), "graph.json")
	mustRun(t, "generate", "-store", "memory", "-size", "5", "-node-type", "graph", "-out", out)
	programs, err := readPrograms(out)
	if err != nil {
		t.Fatalf("read generated: %v", err)
	}
	if !programs[0].IsGraph() {
		t.Fatalf("expected graph program, got %s", programs[0].Kind)
	}
	if _, err := capture(t, "generate", "-store", "memory", "-node-type", "forest"); err == nil {
		t.Fatal("expected node type error")
	}
}

func TestMutateFromFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "children.json")
	lines := mustRun(t, "mutate", "-store", "memory", "-in", fixture("program_tree_v1.json"), "-op", "insert_op", "-children", "4", "-workers", "2", "-out", out)
	if len(lines) != 4 {
		t.Fatalf("expected 4 children, got %v", lines)
	}
	for _, line := range lines {
		if fields := strings.Split(line, "\t"); len(fields) != 3 || fields[1] != "insert_op" {
			t.Fatalf("unexpected output line: %q", line)
		}
	}
	children, err := readPrograms(out)
	if err != nil {
		t.Fatalf("read children: %v", err)
	}
	for _, child := range children {
		if got := genotype.CountNodes(child); got < 7 {
			t.Fatalf("insert must grow the program, got %d nodes", got)
		}
	}
}

func TestMutateWithPolicy(t *testing.T) {
	lines := mustRun(t, "mutate", "-store", "memory", "-in", fixture("program_graph_v1.json"), "-steps", "3", "-seed", "9")
	if len(lines) != 1 {
		t.Fatalf("expected one child, got %v", lines)
	}
	if ops := strings.Split(strings.Split(lines[0], "\t")[1], "+"); len(ops) != 3 {
		t.Fatalf("expected three recorded operations, got %v", ops)
	}
}

func TestMutateErrors(t *testing.T) {
	if _, err := capture(t, "mutate", "-store", "memory"); err == nil {
		t.Fatal("expected missing input error")
	}
	if _, err := capture(t, "mutate", "-store", "memory", "-in", fixture("program_tree_v1.json"), "-op", "grow_wings"); err == nil {
		t.Fatal("expected unknown operator error")
	}
	if _, err := capture(t, "mutate", "-store", "memory", "-in", fixture("program_tree_v1.json"), "-op", "form_connection"); err == nil {
		t.Fatal("expected incompatible operator error on a tree")
	}
	if _, err := capture(t, "mutate", "-store", "memory", "-in", fixture("program_cycle_v1.json")); err == nil {
		t.Fatal("expected invalid program error")
	}
	if _, err := capture(t, "mutate", "-store", "memory", "-id", "absent"); err == nil {
		t.Fatal("expected missing program error")
	}
}

func TestCrossoverFromFile(t *testing.T) {
	dir := t.TempDir()
	parents := filepath.Join(dir, "parents.json")
	mustRun(t, "generate", "-store", "memory", "-size", "6", "-count", "2", "-out", parents)

	offspring := filepath.Join(dir, "offspring.json")
	lines := mustRun(t, "crossover", "-store", "memory", "-in", parents, "-out", offspring)
	if len(lines) != 2 {
		t.Fatalf("expected two offspring, got %v", lines)
	}
	children, err := readPrograms(offspring)
	if err != nil {
		t.Fatalf("read offspring: %v", err)
	}
	if total := genotype.CountNodes(children[0]) + genotype.CountNodes(children[1]); total != 12 {
		t.Fatalf("crossover changed total node count: %d", total)
	}

	if _, err := capture(t, "crossover", "-store", "memory", "-in", fixture("program_tree_v1.json")); err == nil {
		t.Fatal("expected two-parent error")
	}
	if _, err := capture(t, "crossover", "-store", "memory"); err == nil {
		t.Fatal("expected missing parents error")
	}
}

func TestShowFixture(t *testing.T) {
	out, err := capture(t, "show", "-store", "memory", "-in", fixture("program_tree_v1.json"))
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "expression=((x1 + 2.5) * cos(x2))") {
		t.Fatalf("unexpected show output: %s", out)
	}
	if !strings.Contains(out, `"total_nodes": 6`) {
		t.Fatalf("summary missing from show output: %s", out)
	}
}

func TestStoreCommandsRequireIDs(t *testing.T) {
	if _, err := capture(t, "delete", "-store", "memory"); !errors.Is(err, errMissingID) {
		t.Fatalf("expected errMissingID, got %v", err)
	}
	if _, err := capture(t, "lineage", "-store", "memory"); !errors.Is(err, errMissingID) {
		t.Fatalf("expected errMissingID, got %v", err)
	}
	if _, err := capture(t, "lineage", "-store", "memory", "-id", "absent"); err == nil {
		t.Fatal("expected no lineage error")
	}
}

func TestInitAndConfigFlags(t *testing.T) {
	lines := mustRun(t, "init", "-store", "memory", "-log-level", "debug")
	if lines[0] != "initialized store=memory" {
		t.Fatalf("unexpected init output: %v", lines)
	}
	if _, err := capture(t, "init", "-store", "postgres"); err == nil {
		t.Fatal("expected unsupported store error")
	}
	if _, err := capture(t, "init", "-store", "memory", "-log-level", "loud"); err == nil {
		t.Fatal("expected log level error")
	}
	listed := mustRun(t, "list", "-store", "memory")
	if len(listed) != 1 || listed[0] != memoryStoreNote {
		t.Fatalf("expected only the memory store note, got %v", listed)
	}
	if len(lines) != 2 || lines[1] != memoryStoreNote {
		t.Fatalf("init must mention the memory store, got %v", lines)
	}
}

func TestMutateCountPolicies(t *testing.T) {
	// The tree fixture has 6 nodes, so a 0.5 multiplier gives 3 steps.
	lines := mustRun(t, "mutate", "-store", "memory", "-in", fixture("program_tree_v1.json"),
		"-count-policy", "ncount_linear", "-count-param", "0.5")
	if ops := strings.Split(strings.Split(lines[0], "\t")[1], "+"); len(ops) != 3 {
		t.Fatalf("expected three linear-count operations, got %v", ops)
	}

	for seed := 1; seed <= 10; seed++ {
		lines := mustRun(t, "mutate", "-store", "memory", "-in", fixture("program_tree_v1.json"),
			"-count-policy", "ncount_exponential", "-count-param", "1", "-count-max", "2", "-seed", strconv.Itoa(seed))
		if ops := strings.Split(strings.Split(lines[0], "\t")[1], "+"); len(ops) < 1 || len(ops) > 2 {
			t.Fatalf("exponential count out of range: %v", ops)
		}
	}

	if _, err := capture(t, "mutate", "-store", "memory", "-in", fixture("program_tree_v1.json"), "-count-policy", "fibonacci"); err == nil {
		t.Fatal("expected unsupported policy error")
	}
	if _, err := capture(t, "mutate", "-store", "memory", "-in", fixture("program_tree_v1.json"), "-count-policy", "ncount_linear", "-count-param", "0"); err == nil {
		t.Fatal("expected parameter error")
	}
	if _, err := capture(t, "mutate", "-store", "memory", "-in", fixture("program_tree_v1.json"), "-steps", "0"); err == nil {
		t.Fatal("expected steps error")
	}
}

func TestCrossoverTreeWithGraphProducesReadableGraphs(t *testing.T) {
	tree, err := readPrograms(fixture("program_tree_v1.json"))
	if err != nil {
		t.Fatalf("read tree: %v", err)
	}
	graph, err := readPrograms(fixture("program_graph_v1.json"))
	if err != nil {
		t.Fatalf("read graph: %v", err)
	}
	dir := t.TempDir()
	parents := filepath.Join(dir, "mixed.json")
	if err := writePrograms(parents, append(tree, graph...)); err != nil {
		t.Fatalf("write parents: %v", err)
	}

	for seed := 1; seed <= 20; seed++ {
		offspring := filepath.Join(dir, "offspring.json")
		mustRun(t, "crossover", "-store", "memory", "-in", parents, "-seed", strconv.Itoa(seed), "-out", offspring)
		children, err := readPrograms(offspring)
		if err != nil {
			t.Fatalf("seed %d: offspring not readable: %v", seed, err)
		}
		for _, child := range children {
			if !child.IsGraph() {
				t.Fatalf("seed %d: expected graph offspring", seed)
			}
		}
	}
}
