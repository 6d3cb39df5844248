package genotype

import (
	"strconv"
	"strings"
	"unicode"

	"symgen/internal/model"
)

// Format renders a program as an infix expression using the operator names in
// opts. Shared nodes are expanded at every reference.
func Format(p *model.Program, opts model.Options) string {
	if p == nil || !p.Valid(p.Root) {
		return ""
	}
	var b strings.Builder
	writeNode(&b, p, p.Root, opts)
	return b.String()
}

func writeNode(b *strings.Builder, p *model.Program, id model.NodeID, opts model.Options) {
	n := p.Nodes[id]
	switch n.Degree {
	case 0:
		if n.Constant {
			b.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
			return
		}
		b.WriteString("x")
		b.WriteString(strconv.Itoa(n.Feature))
	case 1:
		b.WriteString(opts.OperatorName(1, n.Op))
		b.WriteByte('(')
		writeNode(b, p, n.Left, opts)
		b.WriteByte(')')
	default:
		name := opts.OperatorName(2, n.Op)
		if isSymbol(name) {
			b.WriteByte('(')
			writeNode(b, p, n.Left, opts)
			b.WriteString(" " + name + " ")
			writeNode(b, p, n.Right, opts)
			b.WriteByte(')')
			return
		}
		b.WriteString(name)
		b.WriteByte('(')
		writeNode(b, p, n.Left, opts)
		b.WriteString(", ")
		writeNode(b, p, n.Right, opts)
		b.WriteByte(')')
	}
}

func isSymbol(name string) bool {
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return name != ""
}
