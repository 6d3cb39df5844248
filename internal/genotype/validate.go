package genotype

import (
	"errors"
	"fmt"

	"symgen/internal/model"
)

var ErrInvalidProgram = errors.New("invalid program")

// Validate checks the structural invariants every operator must preserve:
// child count matches degree, leaves hold exactly one of value or feature,
// operator indexes fit their arity, the program is acyclic, and tree programs
// give every node at most one parent. features <= 0 skips the feature bound.
func Validate(p *model.Program, opts model.Options, features int) error {
	return validate(p, bounds{unary: opts.NumUnary, binary: opts.NumBinary, features: features})
}

// ValidateShape checks the same invariants as Validate except operator and
// feature index bounds, which depend on options the caller may not have.
func ValidateShape(p *model.Program) error {
	return validate(p, bounds{unary: -1, binary: -1, features: 0})
}

// bounds caps operator indexes per arity; a negative cap means unbounded.
type bounds struct {
	unary    int
	binary   int
	features int
}

func validate(p *model.Program, limits bounds) error {
	if p == nil {
		return fmt.Errorf("%w: nil program", ErrInvalidProgram)
	}
	if !p.Valid(p.Root) {
		return fmt.Errorf("%w: root %d out of range", ErrInvalidProgram, p.Root)
	}

	const (
		unvisited = iota
		active
		done
	)
	state := make([]uint8, len(p.Nodes))
	refs := make([]int, len(p.Nodes))

	var visit func(id model.NodeID) error
	visit = func(id model.NodeID) error {
		switch state[id] {
		case active:
			return fmt.Errorf("%w: cycle through node %d", ErrInvalidProgram, id)
		case done:
			return nil
		}
		state[id] = active
		n := p.Nodes[id]
		if err := checkNode(p, id, n, limits); err != nil {
			return err
		}
		for _, child := range n.Children() {
			refs[child]++
			if err := visit(child); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}
	if err := visit(p.Root); err != nil {
		return err
	}

	if p.Kind != model.KindGraph {
		for id, count := range refs {
			if count > 1 {
				return fmt.Errorf("%w: tree node %d has %d parents", ErrInvalidProgram, id, count)
			}
		}
		if refs[p.Root] != 0 {
			return fmt.Errorf("%w: root %d is referenced as a child", ErrInvalidProgram, p.Root)
		}
	}
	return nil
}

func checkNode(p *model.Program, id model.NodeID, n model.Node, limits bounds) error {
	switch n.Degree {
	case 0:
		if n.Left != model.NoNode || n.Right != model.NoNode {
			return fmt.Errorf("%w: leaf %d has child references", ErrInvalidProgram, id)
		}
		if n.Constant {
			if n.Feature != 0 {
				return fmt.Errorf("%w: constant %d also carries feature %d", ErrInvalidProgram, id, n.Feature)
			}
			return nil
		}
		if n.Value != 0 {
			return fmt.Errorf("%w: feature leaf %d also carries value %v", ErrInvalidProgram, id, n.Value)
		}
		if n.Feature < 1 || (limits.features > 0 && n.Feature > limits.features) {
			return fmt.Errorf("%w: feature leaf %d index %d out of range", ErrInvalidProgram, id, n.Feature)
		}
		return nil
	case 1:
		if !p.Valid(n.Left) || n.Right != model.NoNode {
			return fmt.Errorf("%w: unary node %d has bad children (%d, %d)", ErrInvalidProgram, id, n.Left, n.Right)
		}
		if n.Op < 1 || (limits.unary >= 0 && n.Op > limits.unary) {
			return fmt.Errorf("%w: unary node %d operator %d outside [1,%d]", ErrInvalidProgram, id, n.Op, limits.unary)
		}
		return nil
	case 2:
		if !p.Valid(n.Left) || !p.Valid(n.Right) {
			return fmt.Errorf("%w: binary node %d has bad children (%d, %d)", ErrInvalidProgram, id, n.Left, n.Right)
		}
		if n.Op < 1 || (limits.binary >= 0 && n.Op > limits.binary) {
			return fmt.Errorf("%w: binary node %d operator %d outside [1,%d]", ErrInvalidProgram, id, n.Op, limits.binary)
		}
		return nil
	default:
		return fmt.Errorf("%w: node %d has degree %d", ErrInvalidProgram, id, n.Degree)
	}
}
