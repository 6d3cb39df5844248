package evo

import (
	"context"
	"errors"
	"math/rand"
	"strings"

	"symgen/internal/genotype"
	"symgen/internal/model"
)

// Mutator derives a child from a parent by applying a policy-chosen sequence
// of operators. The sequence length comes from Count.
type Mutator struct {
	Rand     *rand.Rand
	Options  model.Options
	Features int
	Policy   []WeightedMutation
	Count    MutationCountPolicy

	last string
}

func (m *Mutator) Name() string {
	return "policy"
}

// Describe returns the operation chain of the most recent Mutate call.
func (m *Mutator) Describe() string {
	if m.last == "" {
		return m.Name()
	}
	return m.last
}

// Apply makes Mutator usable wherever a single Operator is expected.
func (m *Mutator) Apply(ctx context.Context, program *model.Program) (*model.Program, error) {
	if program == nil {
		return nil, ErrNilProgram
	}
	child, _, err := m.Mutate(ctx, program, program.ID)
	return child, err
}

// Mutate returns the child program, stamped with childID, together with the
// lineage record describing how it was derived.
func (m *Mutator) Mutate(ctx context.Context, parent *model.Program, childID string) (*model.Program, model.LineageRecord, error) {
	if parent == nil {
		return nil, model.LineageRecord{}, ErrNilProgram
	}
	if m.Rand == nil {
		return nil, model.LineageRecord{}, ErrNoRandom
	}
	policy := m.Policy
	if len(policy) == 0 {
		policy = DefaultPolicy(m.Options, m.Features, m.Rand)
	}
	if err := ValidatePolicy(policy); err != nil {
		return nil, model.LineageRecord{}, err
	}
	counter := m.Count
	if counter == nil {
		counter = ConstMutations{Count: 1}
	}
	steps, err := counter.MutationCount(parent, m.Rand)
	if err != nil {
		return nil, model.LineageRecord{}, err
	}

	mutated := genotype.Clone(parent)
	names := make([]string, 0, steps)
	for step := 0; step < steps; step++ {
		op, err := ChooseMutation(m.Rand, policy, mutated)
		if errors.Is(err, ErrNoMutationSet) {
			names = append(names, "noop(no_choice)")
			continue
		}
		if err != nil {
			return nil, model.LineageRecord{}, err
		}
		next, err := op.Apply(ctx, mutated)
		if err != nil {
			return nil, model.LineageRecord{}, err
		}
		mutated = next
		names = append(names, op.Name())
	}
	mutated.ID = childID
	m.last = strings.Join(names, "+")

	sig := genotype.ComputeProgramSignature(mutated, m.Options)
	return mutated, model.LineageRecord{
		VersionedRecord: model.CurrentVersion(),
		ProgramID:       childID,
		ParentIDs:       []string{parent.ID},
		Operation:       m.last,
		NodeCount:       sig.Summary.TotalNodes,
		Fingerprint:     sig.Fingerprint,
	}, nil
}

// MutatorBuilder gives every program its own Mutator over DefaultPolicy.
func MutatorBuilder(opts model.Options, features int, count MutationCountPolicy) BuildFunc {
	return func(_ int, _ *model.Program, rng *rand.Rand) (Operator, error) {
		return &Mutator{Rand: rng, Options: opts, Features: features, Count: count}, nil
	}
}
