package genotype

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"symgen/internal/model"
)

type ShapeSummary struct {
	TotalNodes           int            `json:"total_nodes"`
	Depth                int            `json:"depth"`
	TotalConstants       int            `json:"total_constants"`
	TotalFeatures        int            `json:"total_features"`
	TotalUnary           int            `json:"total_unary"`
	TotalBinary          int            `json:"total_binary"`
	SharedNodes          int            `json:"shared_nodes"`
	OperatorDistribution map[string]int `json:"operator_distribution"`
}

type ProgramSignature struct {
	Fingerprint string       `json:"fingerprint"`
	Summary     ShapeSummary `json:"summary"`
}

// ComputeProgramSignature summarizes a program's shape. The fingerprint
// hashes the structure with constant values masked, so programs differing only
// in constants share it.
func ComputeProgramSignature(p *model.Program, opts model.Options) ProgramSignature {
	summary := ShapeSummary{
		TotalNodes:           CountNodes(p),
		Depth:                CountDepth(p),
		OperatorDistribution: make(map[string]int),
	}
	for _, refs := range Parents(p) {
		if refs > 1 {
			summary.SharedNodes++
		}
	}
	Walk(p, func(id, _ model.NodeID, _ model.Side) bool {
		n := p.Nodes[id]
		switch {
		case n.Degree == 1:
			summary.TotalUnary++
			summary.OperatorDistribution[opts.OperatorName(1, n.Op)]++
		case n.Degree == 2:
			summary.TotalBinary++
			summary.OperatorDistribution[opts.OperatorName(2, n.Op)]++
		case n.Constant:
			summary.TotalConstants++
		default:
			summary.TotalFeatures++
		}
		return true
	})

	parts := []string{
		fmt.Sprintf("n=%d", summary.TotalNodes),
		fmt.Sprintf("d=%d", summary.Depth),
		fmt.Sprintf("sh=%d", summary.SharedNodes),
		"e=" + structure(p, opts),
	}
	keys := make([]string, 0, len(summary.OperatorDistribution))
	for k := range summary.OperatorDistribution {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("op:%s=%d", k, summary.OperatorDistribution[k]))
	}

	digest := sha1.Sum([]byte(strings.Join(parts, "|")))
	return ProgramSignature{
		Fingerprint: hex.EncodeToString(digest[:8]),
		Summary:     summary,
	}
}

// structure renders p in prefix form with every constant written as "c".
func structure(p *model.Program, opts model.Options) string {
	if p == nil || !p.Valid(p.Root) {
		return ""
	}
	var b strings.Builder
	var write func(id model.NodeID)
	write = func(id model.NodeID) {
		n := p.Nodes[id]
		switch {
		case n.Degree == 0 && n.Constant:
			b.WriteString("c")
		case n.Degree == 0:
			fmt.Fprintf(&b, "x%d", n.Feature)
		default:
			b.WriteString(opts.OperatorName(n.Degree, n.Op))
			b.WriteByte('(')
			for i, child := range n.Children() {
				if i > 0 {
					b.WriteByte(',')
				}
				write(child)
			}
			b.WriteByte(')')
		}
	}
	write(p.Root)
	return b.String()
}
