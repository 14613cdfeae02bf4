package ast

import (
	"fmt"
	"strings"
)

// Print renders the subtree rooted at ref as an indented dump, one
// node per line, children beneath their parent.
func Print(arena *Arena, ref Ref) string {
	var b strings.Builder
	printNode(&b, arena, ref, 0)
	return b.String()
}

func printNode(b *strings.Builder, arena *Arena, ref Ref, depth int) {
	indent := strings.Repeat("  ", depth)
	if ref == NoRef {
		fmt.Fprintf(b, "%s<none>\n", indent)
		return
	}
	n := arena.Get(ref)

	switch n.Kind {
	case KindLiteral:
		fmt.Fprintf(b, "%sLiteral(%s)\n", indent, n.Lit.String())
	case KindVariable:
		fmt.Fprintf(b, "%sVariable(%s)\n", indent, n.Name)
	case KindAssign:
		fmt.Fprintf(b, "%sAssign(%s)\n", indent, n.Name)
		printNode(b, arena, n.Left, depth+1)
	case KindUnary:
		fmt.Fprintf(b, "%sUnary(%s)\n", indent, n.Op)
		printNode(b, arena, n.Left, depth+1)
	case KindBinary:
		fmt.Fprintf(b, "%sBinary(%s)\n", indent, n.Op)
		printNode(b, arena, n.Left, depth+1)
		printNode(b, arena, n.Right, depth+1)
	case KindLogical:
		fmt.Fprintf(b, "%sLogical(%s)\n", indent, n.Op)
		printNode(b, arena, n.Left, depth+1)
		printNode(b, arena, n.Right, depth+1)
	case KindGrouping:
		fmt.Fprintf(b, "%sGrouping\n", indent)
		printNode(b, arena, n.Left, depth+1)
	case KindBlock:
		fmt.Fprintf(b, "%sBlock\n", indent)
		for _, stmt := range n.Body {
			printNode(b, arena, stmt, depth+1)
		}
	case KindIfElse:
		fmt.Fprintf(b, "%sIfElse\n", indent)
		printNode(b, arena, n.Left, depth+1)
		printNode(b, arena, n.Right, depth+1)
		printNode(b, arena, n.Else, depth+1)
	case KindWhile:
		fmt.Fprintf(b, "%sWhile\n", indent)
		printNode(b, arena, n.Left, depth+1)
		printNode(b, arena, n.Right, depth+1)
		printNode(b, arena, n.Else, depth+1)
	case KindFor:
		fmt.Fprintf(b, "%sFor(%s)\n", indent, n.Name)
		printNode(b, arena, n.Left, depth+1)
		printNode(b, arena, n.Right, depth+1)
		printNode(b, arena, n.Else, depth+1)
	case KindSpecial:
		fmt.Fprintf(b, "%sSpecial(%s)\n", indent, n.Op)
	default:
		fmt.Fprintf(b, "%s<unknown kind %d>\n", indent, n.Kind)
	}
}
