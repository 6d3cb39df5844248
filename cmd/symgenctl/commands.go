package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"symgen/internal/config"
	"symgen/internal/evo"
	"symgen/internal/genotype"
	"symgen/internal/model"
	"symgen/internal/mutate"
	"symgen/internal/storage"
)

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	fmt.Fprintf(stdout, "initialized store=%s\n", e.cfg.Store.Kind)
	e.noteEphemeral()
	return nil
}

func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	common := addCommonFlags(fs)
	size := fs.Int("size", 0, "exact node count; 0 uses -length instead")
	length := fs.Int("length", 5, "number of random appends onto the placeholder constant")
	count := fs.Int("count", 1, "number of programs to generate")
	nodeType := fs.String("node-type", "", "program kind: tree|graph")
	out := fs.String("out", "", "also write the generated programs to this JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *count <= 0 {
		return fmt.Errorf("count must be > 0")
	}

	e, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	opts := e.cfg.Options
	if *nodeType != "" {
		opts.NodeType = model.Kind(*nodeType)
		if err := opts.Validate(); err != nil {
			return err
		}
	}

	programs := make([]*model.Program, 0, *count)
	for i := 0; i < *count; i++ {
		var p *model.Program
		if *size > 0 {
			p, err = mutate.GenRandomTreeFixedSize(*size, opts, e.cfg.Features, e.rng)
		} else {
			p, err = mutate.GenRandomTree(*length, opts, e.cfg.Features, e.rng)
		}
		if err != nil {
			return err
		}
		p.ID = storage.NewProgramID()
		if err := e.save(ctx, p, nil, "generate"); err != nil {
			return err
		}
		programs = append(programs, p)
		fmt.Fprintf(stdout, "%s\t%s\n", p.ID, genotype.Format(p, e.cfg.Options))
	}
	e.logger.Info("programs generated", slog.Int("count", len(programs)))

	if *out != "" {
		return writePrograms(*out, programs)
	}
	return nil
}

func runMutate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mutate", flag.ContinueOnError)
	common := addCommonFlags(fs)
	id := fs.String("id", "", "stored parent program id")
	in := fs.String("in", "", "JSON file with parent programs")
	opName := fs.String("op", "", "operator name; empty draws from the weighted policy")
	steps := fs.Int("steps", 1, "mutations per child for count-policy=const")
	countPolicy := fs.String("count-policy", "const", "mutation count policy: const|ncount_linear|ncount_exponential")
	countParam := fs.Float64("count-param", 0.5, "policy parameter (multiplier/power) for ncount policies")
	countMax := fs.Int("count-max", 8, "maximum mutation count for ncount policies (<=0 disables cap)")
	children := fs.Int("children", 1, "children per parent")
	workers := fs.Int("workers", 0, "parallel workers; 0 uses the config")
	out := fs.String("out", "", "also write the children to this JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *children <= 0 {
		return fmt.Errorf("children must be > 0")
	}
	counter, err := countPolicyFromFlags(*countPolicy, *steps, *countParam, *countMax)
	if err != nil {
		return err
	}

	e, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	parents, err := e.loadPrograms(ctx, *id, *in)
	if err != nil {
		return err
	}

	batch := make([]*model.Program, 0, len(parents)*(*children))
	for _, parent := range parents {
		for c := 0; c < *children; c++ {
			batch = append(batch, parent)
		}
	}

	build := evo.MutatorBuilder(e.cfg.Options, e.cfg.Features, counter)
	if *opName != "" {
		build = evo.NamedBuilder(*opName, e.cfg.Options, e.cfg.Features)
	}
	cfg := evo.BatchConfig{Seed: e.cfg.Seed, Workers: e.cfg.Workers, Logger: e.logger}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	results, err := evo.ApplyParallel(ctx, batch, build, cfg)
	if err != nil {
		return err
	}

	written := make([]*model.Program, 0, len(results))
	for i, res := range results {
		child := res.Program
		child.ID = storage.NewProgramID()
		if err := e.save(ctx, child, []string{batch[i].ID}, res.Operation); err != nil {
			return err
		}
		written = append(written, child)
		fmt.Fprintf(stdout, "%s\t%s\t%s\n", child.ID, res.Operation, genotype.Format(child, e.cfg.Options))
	}

	if *out != "" {
		return writePrograms(*out, written)
	}
	return nil
}

func runCrossover(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("crossover", flag.ContinueOnError)
	common := addCommonFlags(fs)
	idA := fs.String("a", "", "first stored parent id")
	idB := fs.String("b", "", "second stored parent id")
	in := fs.String("in", "", "JSON file holding exactly two parents")
	out := fs.String("out", "", "also write the offspring to this JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	var a, b *model.Program
	switch {
	case *in != "":
		parents, err := readPrograms(*in)
		if err != nil {
			return err
		}
		if len(parents) != 2 {
			return fmt.Errorf("crossover needs exactly 2 parents, file has %d", len(parents))
		}
		a, b = parents[0], parents[1]
	case *idA != "" && *idB != "":
		if a, err = e.getProgram(ctx, *idA); err != nil {
			return err
		}
		if b, err = e.getProgram(ctx, *idB); err != nil {
			return err
		}
	default:
		return fmt.Errorf("crossover requires -a and -b, or -in")
	}

	op := &evo.Crossover{Rand: e.rng}
	childA, childB, err := op.Apply(ctx, a, b)
	if err != nil {
		return err
	}
	childA.ID = storage.NewProgramID()
	childB.ID = storage.NewProgramID()
	if err := e.save(ctx, childA, []string{a.ID, b.ID}, op.Name()); err != nil {
		return err
	}
	if err := e.save(ctx, childB, []string{b.ID, a.ID}, op.Name()); err != nil {
		return err
	}
	for _, child := range []*model.Program{childA, childB} {
		fmt.Fprintf(stdout, "%s\t%s\n", child.ID, genotype.Format(child, e.cfg.Options))
	}

	if *out != "" {
		return writePrograms(*out, []*model.Program{childA, childB})
	}
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	common := addCommonFlags(fs)
	id := fs.String("id", "", "stored program id")
	in := fs.String("in", "", "JSON file with programs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	programs, err := e.loadPrograms(ctx, *id, *in)
	if err != nil {
		return err
	}
	for _, p := range programs {
		sig := genotype.ComputeProgramSignature(p, e.cfg.Options)
		fmt.Fprintf(stdout, "id=%s kind=%s fingerprint=%s\n", p.ID, p.Kind, sig.Fingerprint)
		fmt.Fprintf(stdout, "expression=%s\n", genotype.Format(p, e.cfg.Options))
		summary, err := json.MarshalIndent(sig.Summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\n", summary)
	}
	return nil
}

func runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	e.noteEphemeral()
	ids, err := e.store.ListPrograms(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		p, err := e.getProgram(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\t%d\t%s\n", id, genotype.CountNodes(p), genotype.Format(p, e.cfg.Options))
	}
	return nil
}

func runDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	common := addCommonFlags(fs)
	id := fs.String("id", "", "stored program id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errMissingID
	}

	e, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.store.DeleteProgram(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "deleted %s\n", *id)
	return nil
}

func runLineage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lineage", flag.ContinueOnError)
	common := addCommonFlags(fs)
	id := fs.String("id", "", "stored program id")
	limit := fs.Int("limit", 0, "maximum ancestors to show; 0 shows all")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errMissingID
	}

	e, err := common.open(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	chain, err := storage.Ancestry(ctx, e.store, *id, *limit)
	if err != nil {
		return err
	}
	if len(chain) == 0 {
		return fmt.Errorf("no lineage recorded for %s", *id)
	}
	for _, record := range chain {
		fmt.Fprintf(stdout, "%s\t%s\tparents=%s\tnodes=%d\tfingerprint=%s\n",
			record.ProgramID,
			record.Operation,
			strings.Join(record.ParentIDs, ","),
			record.NodeCount,
			record.Fingerprint,
		)
	}
	return nil
}

func runOperators(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("operators", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file (yaml or json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	registry, err := evo.NewBuiltinRegistry(cfg.Options, cfg.Features, nil)
	if err != nil {
		return err
	}
	for _, name := range registry.List() {
		fmt.Fprintln(stdout, name)
	}
	return nil
}

func countPolicyFromFlags(name string, steps int, param float64, maxCount int) (evo.MutationCountPolicy, error) {
	switch name {
	case "const":
		if steps <= 0 {
			return nil, fmt.Errorf("steps must be > 0 for const policy")
		}
		return evo.ConstMutations{Count: steps}, nil
	case "ncount_linear":
		if param <= 0 {
			return nil, fmt.Errorf("count-param must be > 0 for ncount_linear policy")
		}
		return evo.NCountLinearMutations{Multiplier: param, MaxCount: maxCount}, nil
	case "ncount_exponential":
		if param <= 0 {
			return nil, fmt.Errorf("count-param must be > 0 for ncount_exponential policy")
		}
		return evo.NCountExponentialMutations{Power: param, MaxCount: maxCount}, nil
	default:
		return nil, fmt.Errorf("unsupported mutation count policy: %s", name)
	}
}

// noteEphemeral warns that a memory store starts empty on every invocation.
func (e *env) noteEphemeral() {
	if e.cfg.Store.Kind == "memory" {
		fmt.Fprintln(stdout, memoryStoreNote)
	}
}

// save stores p and the lineage record describing where it came from.
func (e *env) save(ctx context.Context, p *model.Program, parents []string, operation string) error {
	if err := e.store.SaveProgram(ctx, p); err != nil {
		return err
	}
	sig := genotype.ComputeProgramSignature(p, e.cfg.Options)
	kept := make([]string, 0, len(parents))
	for _, parent := range parents {
		if parent != "" {
			kept = append(kept, parent)
		}
	}
	return e.store.SaveLineage(ctx, model.LineageRecord{
		VersionedRecord: model.CurrentVersion(),
		ProgramID:       p.ID,
		ParentIDs:       kept,
		Operation:       operation,
		NodeCount:       sig.Summary.TotalNodes,
		Fingerprint:     sig.Fingerprint,
	})
}

func (e *env) getProgram(ctx context.Context, id string) (*model.Program, error) {
	p, ok, err := e.store.GetProgram(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("program not found: %s", id)
	}
	return p, nil
}

// loadPrograms gathers programs named by id and/or contained in the file at
// path. Loaded programs are checked against the configured options.
func (e *env) loadPrograms(ctx context.Context, id, path string) ([]*model.Program, error) {
	var programs []*model.Program
	if id != "" {
		p, err := e.getProgram(ctx, id)
		if err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	if path != "" {
		fromFile, err := readPrograms(path)
		if err != nil {
			return nil, err
		}
		programs = append(programs, fromFile...)
	}
	if len(programs) == 0 {
		return nil, fmt.Errorf("no programs given: use -id or -in")
	}
	for _, p := range programs {
		if err := genotype.Validate(p, e.cfg.Options, e.cfg.Features); err != nil {
			return nil, fmt.Errorf("program %s: %w", p.ID, err)
		}
	}
	return programs, nil
}

func writePrograms(path string, programs []*model.Program) error {
	raw := make([]json.RawMessage, 0, len(programs))
	for _, p := range programs {
		data, err := storage.EncodeProgram(p)
		if err != nil {
			return err
		}
		raw = append(raw, data)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// readPrograms accepts either a single program object or an array of them.
func readPrograms(path string) ([]*model.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		raw = []json.RawMessage{data}
	}
	programs := make([]*model.Program, 0, len(raw))
	for i, item := range raw {
		p, err := storage.DecodeProgram(item)
		if err != nil {
			return nil, fmt.Errorf("%s: program %d: %w", path, i, err)
		}
		programs = append(programs, p)
	}
	return programs, nil
}
