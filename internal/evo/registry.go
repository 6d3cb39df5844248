package evo

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"symgen/internal/model"
)

const (
	SupportedSchemaVersion = model.SchemaVersion
	SupportedCodecVersion  = model.CodecVersion
)

var (
	ErrOperatorExists       = errors.New("operator already registered")
	ErrOperatorNotFound     = errors.New("operator not found")
	ErrOperatorIncompatible = errors.New("operator incompatible with program")
	ErrVersionMismatch      = errors.New("operator version mismatch")
)

type CompatibilityFn func(program *model.Program) error

type OperatorSpec struct {
	Name          string
	Operator      Operator
	SchemaVersion int
	CodecVersion  int
	Compatible    CompatibilityFn
}

type registeredOperator struct {
	operator      Operator
	schemaVersion int
	codecVersion  int
	compatible    CompatibilityFn
}

// Registry maps operator names to operators with their version and
// compatibility metadata. It is safe for concurrent use.
type Registry struct {
	mu sync.RWMutex
	m  map[string]registeredOperator
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[string]registeredOperator)}
}

// Register registers an operator with default schema and codec versions.
func (r *Registry) Register(name string, op Operator) error {
	return r.RegisterWithSpec(OperatorSpec{
		Name:          name,
		Operator:      op,
		SchemaVersion: SupportedSchemaVersion,
		CodecVersion:  SupportedCodecVersion,
	})
}

// RegisterWithSpec registers an operator with explicit versioning and compatibility metadata.
func (r *Registry) RegisterWithSpec(spec OperatorSpec) error {
	if spec.Name == "" {
		return errors.New("operator name is required")
	}
	if spec.Operator == nil {
		return errors.New("operator is required")
	}
	if spec.SchemaVersion != SupportedSchemaVersion || spec.CodecVersion != SupportedCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, spec.SchemaVersion, spec.CodecVersion)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.m[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrOperatorExists, spec.Name)
	}

	r.m[spec.Name] = registeredOperator{
		operator:      spec.Operator,
		schemaVersion: spec.SchemaVersion,
		codecVersion:  spec.CodecVersion,
		compatible:    spec.Compatible,
	}
	return nil
}

// Resolve returns a registered operator only if program versions and compatibility checks pass.
func (r *Registry) Resolve(name string, program *model.Program) (Operator, error) {
	r.mu.RLock()
	entry, ok := r.m[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOperatorNotFound, name)
	}
	if program == nil {
		return nil, ErrNilProgram
	}
	if program.SchemaVersion != entry.schemaVersion || program.CodecVersion != entry.codecVersion {
		return nil, fmt.Errorf("%w: operator=%s expected(schema=%d codec=%d) got(schema=%d codec=%d)",
			ErrVersionMismatch,
			name,
			entry.schemaVersion,
			entry.codecVersion,
			program.SchemaVersion,
			program.CodecVersion,
		)
	}
	if entry.compatible != nil {
		if err := entry.compatible(program); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrOperatorIncompatible, name, err)
		}
	}
	return entry.operator, nil
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.m))
	for name := range r.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RequireGraph is the compatibility check for operators that create or remove
// shared sub-expressions.
func RequireGraph(program *model.Program) error {
	if !program.IsGraph() {
		return fmt.Errorf("program kind %q does not allow shared nodes", program.Kind)
	}
	return nil
}

// NewBuiltinRegistry returns a registry holding every built-in single-program
// operator under its own name, bound to opts, features and rng. The operators
// share rng and are not safe for concurrent use.
func NewBuiltinRegistry(opts model.Options, features int, rng *rand.Rand) (*Registry, error) {
	registry := NewRegistry()
	ops := []Operator{
		&AppendOp{Rand: rng, Options: opts, Features: features, Degree: 1},
		&AppendOp{Rand: rng, Options: opts, Features: features, Degree: 2},
		&FormConnectionOrdered{Rand: rng},
	}
	for _, item := range DefaultPolicy(opts, features, rng) {
		ops = append(ops, item.Operator)
	}
	for _, op := range ops {
		spec := OperatorSpec{
			Name:          op.Name(),
			Operator:      op,
			SchemaVersion: SupportedSchemaVersion,
			CodecVersion:  SupportedCodecVersion,
		}
		switch op.(type) {
		case *FormConnection, *FormConnectionOrdered, *BreakConnection:
			spec.Compatible = RequireGraph
		}
		if err := registry.RegisterWithSpec(spec); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
