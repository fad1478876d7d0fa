package tree

import "strings"

const (
	branchConnector = "├─"
	lastConnector   = "└─ "
	branchPadding   = "│    "
	lastPadding     = "    "
)

// Format renders the first root of the forest and its visible descendants as a text
// diagram:
//
//	src
//	├─app
//	│    └─ layout.tsx
//	└─ components
//	    └─ Button.tsx
//
// The root line is always emitted. Further roots are not rendered; see FormatAll.
func Format(forest []*Node, vis *Visibility) string {
	if len(forest) == 0 {
		return ""
	}
	var sb strings.Builder
	writeRoot(&sb, forest[0], vis)
	return sb.String()
}

// FormatAll renders every root of the forest one after another.
func FormatAll(forest []*Node, vis *Visibility) string {
	var sb strings.Builder
	for _, root := range forest {
		writeRoot(&sb, root, vis)
	}
	return sb.String()
}

func writeRoot(sb *strings.Builder, root *Node, vis *Visibility) {
	sb.WriteString(root.Name)
	sb.WriteString("\n")
	render(sb, root.Children, "", vis)
}

func render(sb *strings.Builder, nodes []*Node, prefix string, vis *Visibility) {
	visible := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if vis.IsVisible(n.Path) {
			visible = append(visible, n)
		}
	}

	for i, n := range visible {
		connector, padding := branchConnector, branchPadding
		if i == len(visible)-1 {
			connector, padding = lastConnector, lastPadding
		}
		sb.WriteString(prefix)
		sb.WriteString(connector)
		sb.WriteString(n.Name)
		sb.WriteString("\n")

		if n.IsDir() && len(n.Children) > 0 {
			render(sb, n.Children, prefix+padding, vis)
		}
	}
}
