package compiler

import (
	"fmt"
	"strings"
)

// Dump returns a human-readable listing of an instruction tree. It is used
// by the CLI's debug dump and has no effect on program semantics.
func Dump(program []Node) string {
	return DumpWithName(program, "")
}

// DumpWithName returns a listing with a name header.
func DumpWithName(program []Node, name string) string {
	var sb strings.Builder

	if name != "" {
		fmt.Fprintf(&sb, "; === %s ===\n", name)
	}
	fmt.Fprintf(&sb, "; tapemill instruction tree\n")
	fmt.Fprintf(&sb, "; nodes: %d (%d with loop bodies)\n\n", countNodes(program), len(program))

	dumpSeq(&sb, program, 0)
	return sb.String()
}

func dumpSeq(sb *strings.Builder, nodes []Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		switch n.Op {
		case OpLoop:
			fmt.Fprintf(sb, "%s%-6s %s\n", indent, n.Op, n.Kind)
			dumpSeq(sb, n.Body, depth+1)
		case OpInc, OpDec, OpMoveLeft, OpMoveRight:
			fmt.Fprintf(sb, "%s%-6s x%d\n", indent, n.Op, n.Count)
		case OpJumpOut:
			fmt.Fprintf(sb, "%s%-6s %+d\n", indent, n.Op, n.Delta)
		case OpOffset, OpOffsetZero:
			fmt.Fprintf(sb, "%s%-6s @%+d %+d\n", indent, n.Op, n.Offset, n.Delta)
		default:
			fmt.Fprintf(sb, "%s%s\n", indent, n.Op)
		}
	}
}

// countNodes counts the whole tree, loop bodies included.
func countNodes(nodes []Node) int {
	total := 0
	for _, n := range nodes {
		total++
		if n.Op == OpLoop {
			total += countNodes(n.Body)
		}
	}
	return total
}
