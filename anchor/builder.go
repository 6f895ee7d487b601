package anchor

import (
	"strings"

	"github.com/viant/docanchor/document"
	"github.com/viant/docanchor/normalize"
)

// Builder walks an annotated content tree and emits anchors with
// deterministic identifiers. Ordinals count per (section path, content
// type) in source order, so unchanged structure reproduces identical
// identifiers run after run. Create one Builder per run.
type Builder struct {
	versionID string
	lang      string
	counters  map[string]int
}

// NewBuilder creates a Builder for one document version.
func NewBuilder(versionID, lang string) *Builder {
	if lang == "" {
		lang = "en"
	}
	return &Builder{
		versionID: versionID,
		lang:      lang,
		counters:  make(map[string]int),
	}
}

// Build emits anchors for every leaf node: headings, paragraphs, table
// containers and their cells.
func (b *Builder) Build(tree *document.Tree) Anchors {
	var anchors Anchors
	for _, n := range tree.Nodes {
		switch n.Kind {
		case document.KindHeading:
			anchors = append(anchors, b.emit(n, ContentHeading, n.Text))
		case document.KindParagraph:
			anchors = append(anchors, b.emit(n, ContentParagraph, n.Text))
		case document.KindTable:
			anchors = append(anchors, b.table(n)...)
		}
	}
	return anchors
}

// table emits the table container anchor followed by one anchor per cell.
// Cells inherit the table's section path and record their grid position.
func (b *Builder) table(n *document.Node) Anchors {
	container := b.emit(n, ContentTable, tableText(n))
	anchors := Anchors{container}
	tableID := container.ID
	for rowIdx, row := range n.Rows() {
		for colIdx, cell := range row.Cells() {
			a := b.emit(cell, ContentCell, cell.Text)
			a.Table = &tableID
			a.Row = rowIdx
			a.Col = colIdx
			anchors = append(anchors, a)
		}
	}
	return anchors
}

func (b *Builder) emit(n *document.Node, contentType ContentType, text string) *Anchor {
	normalized, hash := normalize.TextHash(text, b.lang)
	key := counterKey(n.Section, contentType)
	ordinal := b.counters[key]
	b.counters[key]++
	return &Anchor{
		ID: ID{
			VersionID: b.versionID,
			Section:   n.Section,
			Type:      contentType,
			Ordinal:   ordinal,
			Hash:      hash,
		},
		Text:       text,
		Normalized: normalized,
		Zone:       n.Zone,
		Lang:       b.lang,
	}
}

func counterKey(section []string, contentType ContentType) string {
	var b strings.Builder
	for _, seg := range section {
		b.WriteString(seg)
		b.WriteByte(0)
	}
	b.WriteString(string(contentType))
	return b.String()
}

// tableText flattens a table for hashing: cells joined by tabs, rows by
// newlines.
func tableText(n *document.Node) string {
	var b strings.Builder
	for i, row := range n.Rows() {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, cell := range row.Cells() {
			if j > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(cell.Text)
		}
	}
	return b.String()
}
