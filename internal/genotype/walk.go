package genotype

import (
	"symgen/internal/model"
)

// Predicate filters nodes during traversal and sampling.
type Predicate func(id model.NodeID, n model.Node) bool

func AnyNode(model.NodeID, model.Node) bool { return true }

func IsLeaf(_ model.NodeID, n model.Node) bool { return n.Degree == 0 }

func IsOperator(_ model.NodeID, n model.Node) bool { return n.Degree >= 1 }

func IsUnary(_ model.NodeID, n model.Node) bool { return n.Degree == 1 }

func IsBinary(_ model.NodeID, n model.Node) bool { return n.Degree == 2 }

func IsConstant(_ model.NodeID, n model.Node) bool { return n.Degree == 0 && n.Constant }

func IsFeature(_ model.NodeID, n model.Node) bool { return n.Degree == 0 && !n.Constant }

// Walk visits every node reachable from the root exactly once in pre-order.
// parent is NoNode and side is SideRoot for the root; for shared nodes the
// parent is the one the node was first reached through. Returning false from
// fn stops the walk.
func Walk(p *model.Program, fn func(id, parent model.NodeID, side model.Side) bool) {
	if p == nil {
		return
	}
	walkFrom(p, p.Root, fn)
}

func walkFrom(p *model.Program, start model.NodeID, fn func(id, parent model.NodeID, side model.Side) bool) {
	if !p.Valid(start) {
		return
	}
	type frame struct {
		id     model.NodeID
		parent model.NodeID
		side   model.Side
	}
	visited := make([]bool, len(p.Nodes))
	stack := []frame{{id: start, parent: model.NoNode, side: model.SideRoot}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[f.id] {
			continue
		}
		visited[f.id] = true
		if !fn(f.id, f.parent, f.side) {
			return
		}
		n := p.Nodes[f.id]
		if n.Degree == 2 && p.Valid(n.Right) {
			stack = append(stack, frame{id: n.Right, parent: f.id, side: model.SideRight})
		}
		if n.Degree >= 1 && p.Valid(n.Left) {
			stack = append(stack, frame{id: n.Left, parent: f.id, side: model.SideLeft})
		}
	}
}

// CountMatching counts reachable nodes accepted by keep.
func CountMatching(p *model.Program, keep Predicate) int {
	count := 0
	Walk(p, func(id, _ model.NodeID, _ model.Side) bool {
		if keep == nil || keep(id, p.Nodes[id]) {
			count++
		}
		return true
	})
	return count
}

// HasMatching reports whether any reachable node is accepted by keep.
func HasMatching(p *model.Program, keep Predicate) bool {
	found := false
	Walk(p, func(id, _ model.NodeID, _ model.Side) bool {
		if keep(id, p.Nodes[id]) {
			found = true
			return false
		}
		return true
	})
	return found
}

// CountNodes counts distinct reachable nodes; shared nodes count once.
func CountNodes(p *model.Program) int {
	return CountMatching(p, nil)
}

func CountConstants(p *model.Program) int {
	return CountMatching(p, IsConstant)
}

func HasConstants(p *model.Program) bool {
	return HasMatching(p, IsConstant)
}

func HasOperators(p *model.Program) bool {
	return HasMatching(p, IsOperator)
}

// CountDepth returns the number of nodes on the longest root-to-leaf path.
func CountDepth(p *model.Program) int {
	if p == nil || !p.Valid(p.Root) {
		return 0
	}
	memo := make(map[model.NodeID]int)
	var depth func(id model.NodeID) int
	depth = func(id model.NodeID) int {
		if d, ok := memo[id]; ok {
			return d
		}
		n := p.Nodes[id]
		d := 1
		if n.Degree >= 1 {
			d = 1 + depth(n.Left)
		}
		if n.Degree == 2 {
			d = max(d, 1+depth(n.Right))
		}
		memo[id] = d
		return d
	}
	return depth(p.Root)
}

// Contains reports whether target is reachable from start, including
// start == target.
func Contains(p *model.Program, start, target model.NodeID) bool {
	found := false
	walkFrom(p, start, func(id, _ model.NodeID, _ model.Side) bool {
		if id == target {
			found = true
			return false
		}
		return true
	})
	return found
}

// Parents returns, for every arena slot, how many reachable edges point at it.
func Parents(p *model.Program) []int {
	refs := make([]int, len(p.Nodes))
	Walk(p, func(id, _ model.NodeID, _ model.Side) bool {
		for _, child := range p.Nodes[id].Children() {
			if p.Valid(child) {
				refs[child]++
			}
		}
		return true
	})
	return refs
}

// Related marks every node that is an ancestor or a descendant of id,
// including id itself. Unreachable slots stay false.
func Related(p *model.Program, id model.NodeID) []bool {
	related := make([]bool, len(p.Nodes))
	walkFrom(p, id, func(desc, _ model.NodeID, _ model.Side) bool {
		related[desc] = true
		return true
	})
	reaches := make([]bool, len(p.Nodes))
	reaches[id] = true
	for _, node := range TopologicalOrder(p, nil) {
		for _, child := range p.Nodes[node].Children() {
			if reaches[child] {
				reaches[node] = true
			}
		}
		if reaches[node] {
			related[node] = true
		}
	}
	return related
}
