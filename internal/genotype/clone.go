package genotype

import (
	"symgen/internal/model"
)

// CopySubtree deep-copies the subtree of src rooted at id into dst's arena and
// returns the new root. Sharing inside the subtree is preserved. dst may be
// src.
func CopySubtree(dst, src *model.Program, id model.NodeID) model.NodeID {
	memo := make(map[model.NodeID]model.NodeID)
	return copyNode(dst, src, id, memo)
}

func copyNode(dst, src *model.Program, id model.NodeID, memo map[model.NodeID]model.NodeID) model.NodeID {
	if copied, ok := memo[id]; ok {
		return copied
	}
	out := src.Nodes[id]
	if out.Degree >= 1 {
		out.Left = copyNode(dst, src, out.Left, memo)
	}
	if out.Degree == 2 {
		out.Right = copyNode(dst, src, out.Right, memo)
	}
	copied := dst.Add(out)
	memo[id] = copied
	return copied
}

// Clone returns an independent compact copy holding only reachable nodes.
func Clone(p *model.Program) *model.Program {
	out := &model.Program{
		VersionedRecord: p.VersionedRecord,
		ID:              p.ID,
		Kind:            p.Kind,
		Root:            model.NoNode,
		Nodes:           make([]model.Node, 0, len(p.Nodes)),
	}
	if p.Valid(p.Root) {
		out.Root = CopySubtree(out, p, p.Root)
	}
	return out
}

// Compact drops unreachable arena slots in place. Node identifiers change.
func Compact(p *model.Program) {
	c := Clone(p)
	p.Nodes = c.Nodes
	p.Root = c.Root
}

// Garbage returns the number of arena slots not reachable from the root.
func Garbage(p *model.Program) int {
	return len(p.Nodes) - CountNodes(p)
}

// Replace overwrites the contents of id while keeping its position, so every
// parent referencing id sees the new contents.
func Replace(p *model.Program, id model.NodeID, n model.Node) {
	p.Nodes[id] = n
}
