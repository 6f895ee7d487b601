// Package document defines the ordered content tree produced by format
// parsers and consumed by the downstream ingestion stages.
package document

// Kind classifies a content tree node.
type Kind string

const (
	// KindCandidate marks a node the parser believes may be a heading,
	// based on declared style metadata. The heading detector confirms or
	// demotes it.
	KindCandidate Kind = "candidate"
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindTable     Kind = "table"
	KindRow       Kind = "row"
	KindCell      Kind = "cell"
)

// Zone identifies the region of the source document a node came from.
type Zone string

const (
	ZoneBody     Zone = "body"
	ZoneHeader   Zone = "header"
	ZoneFooter   Zone = "footer"
	ZoneAppendix Zone = "appendix"
)

// Style carries formatting metadata preserved from the source format.
// Fields are zero-valued when the format does not expose them.
type Style struct {
	Name     string  // declared paragraph style, e.g. "Heading1"
	FontSize float64 // points
	Bold     bool
}

// Node is one element of the parsed content tree. Children are populated
// for tables (rows) and rows (cells); all other kinds are leaves.
type Node struct {
	Kind     Kind
	Text     string
	Style    Style
	Zone     Zone
	Level    int      // heading level, assigned by the heading detector
	Section  []string // enclosing section path, assigned by the heading detector
	Children []*Node
}

// Tree is the ordered content tree for one document version.
type Tree struct {
	Lang  string
	Nodes []*Node
}

// Walk visits every node in source order, depth first.
func (t *Tree) Walk(visit func(n *Node)) {
	for _, n := range t.Nodes {
		walk(n, visit)
	}
}

func walk(n *Node, visit func(n *Node)) {
	visit(n)
	for _, child := range n.Children {
		walk(child, visit)
	}
}

// Tables returns the table nodes in source order.
func (t *Tree) Tables() []*Node {
	var tables []*Node
	t.Walk(func(n *Node) {
		if n.Kind == KindTable {
			tables = append(tables, n)
		}
	})
	return tables
}

// Rows returns the row children of a table node.
func (n *Node) Rows() []*Node {
	if n.Kind != KindTable {
		return nil
	}
	return n.Children
}

// Cells returns the cell children of a row node.
func (n *Node) Cells() []*Node {
	if n.Kind != KindRow {
		return nil
	}
	return n.Children
}
