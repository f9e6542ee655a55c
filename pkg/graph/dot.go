package graph

import (
	"bytes"
	"fmt"
	"strings"
)

// DOTOptions configures ToDOT.
type DOTOptions struct {
	// Positions pins placed nodes at their coordinates (pos="x,y!"), so
	// Graphviz renders the computed layout instead of its own.
	Positions bool

	// Detailed adds level and company lines to node labels.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT.
//
// One-way links become directed edges; bidirectional links are drawn with
// dir=none. Dashed links keep their dash style, and the focal node is drawn
// larger with a bold outline.
func ToDOT(r *Result, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fontname=\"Helvetica\", fontcolor=white, fixedsize=true, width=0.5];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=9];\n")
	buf.WriteString("\n")

	for _, n := range r.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, l := range r.Links {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", l.Source, l.Target, strings.Join(linkAttrs(l), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n Node, opts DOTOptions) []string {
	label := n.DisplayName()
	if opts.Detailed {
		label += fmt.Sprintf("\nlevel: %d", n.Level)
		if n.Company != "" {
			label += "\n" + n.Company
		}
	}
	attrs := []string{
		fmt.Sprintf("label=%q", n.Initial()),
		fmt.Sprintf("xlabel=%q", label),
		fmt.Sprintf("fillcolor=%q", n.Color),
	}
	if n.IsFocal() {
		attrs = append(attrs, "width=0.8", "penwidth=3")
	}
	if opts.Positions && n.Placed {
		// Graphviz positions are in points with y growing upwards.
		attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.X, -n.Y))
	}
	return attrs
}

func linkAttrs(l Link) []string {
	info := TypeInfo(l.Type)
	attrs := []string{
		fmt.Sprintf("color=%q", info.Color),
		fmt.Sprintf("tooltip=%q", fmt.Sprintf("%s (%.0f%%)", info.Label, l.Confidence*100)),
		fmt.Sprintf("penwidth=%d", StrengthWidth(l.Strength)),
	}
	if l.Style == StyleDashed {
		attrs = append(attrs, "style=dashed")
	}
	if l.IsBidirectional() {
		attrs = append(attrs, "dir=none")
	}
	return attrs
}

// StrengthWidth returns the base line width of a link strength.
func StrengthWidth(strength string) int {
	switch strength {
	case StrengthStrong:
		return 3
	case StrengthWeak:
		return 1
	default:
		return 2
	}
}

// StrengthAlpha returns the line opacity of a link strength.
func StrengthAlpha(strength string) float64 {
	switch strength {
	case StrengthStrong:
		return 0.9
	case StrengthWeak:
		return 0.35
	default:
		return 0.6
	}
}
