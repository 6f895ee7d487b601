package parser

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/viant/docanchor/document"
)

const docxNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func TestDocxParser_HeadingsAndParagraphs(t *testing.T) {
	data := buildDOCX(t, map[string]string{
		"word/document.xml": `<w:document ` + docxNS + `><w:body>` +
			`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Introduction</w:t></w:r></w:p>` +
			`<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Objectives</w:t></w:r></w:p>` +
			`<w:p><w:r><w:rPr><w:b/><w:sz w:val="24"/></w:rPr><w:t>First paragraph.</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>` +
			`</w:body></w:document>`,
	})
	tree, err := Parse("protocol.docx", data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tree.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(tree.Nodes))
	}
	if tree.Nodes[0].Kind != document.KindCandidate || tree.Nodes[0].Text != "Introduction" {
		t.Fatalf("node 0: %+v", tree.Nodes[0])
	}
	if tree.Nodes[0].Style.Name != "Heading1" {
		t.Fatalf("node 0 style: %+v", tree.Nodes[0].Style)
	}
	if tree.Nodes[1].Kind != document.KindCandidate || tree.Nodes[1].Style.Name != "Heading2" {
		t.Fatalf("node 1: %+v", tree.Nodes[1])
	}
	if tree.Nodes[2].Kind != document.KindParagraph || !tree.Nodes[2].Style.Bold || tree.Nodes[2].Style.FontSize != 12 {
		t.Fatalf("node 2: %+v", tree.Nodes[2])
	}
	if tree.Nodes[3].Text != "Second paragraph." {
		t.Fatalf("node 3 text: %q", tree.Nodes[3].Text)
	}
}

func TestDocxParser_Table(t *testing.T) {
	data := buildDOCX(t, map[string]string{
		"word/document.xml": `<w:document ` + docxNS + `><w:body>` +
			`<w:tbl>` +
			`<w:tr><w:tc><w:p><w:r><w:t></w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Day 1</w:t></w:r></w:p></w:tc></w:tr>` +
			`<w:tr><w:tc><w:p><w:r><w:t>ECG</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>X</w:t></w:r></w:p></w:tc></w:tr>` +
			`</w:tbl>` +
			`</w:body></w:document>`,
	})
	tree, err := Parse("protocol.docx", data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tables := tree.Tables()
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	rows := tables[0].Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	cells := rows[0].Cells()
	if len(cells) != 2 || cells[0].Text != "" || cells[1].Text != "Day 1" {
		t.Fatalf("header row cells: %+v", cells)
	}
	if rows[1].Cells()[0].Text != "ECG" {
		t.Fatalf("row 1 cell 0: %q", rows[1].Cells()[0].Text)
	}
}

func TestDocxParser_HeaderFooterZones(t *testing.T) {
	data := buildDOCX(t, map[string]string{
		"word/document.xml": `<w:document ` + docxNS + `><w:body><w:p><w:r><w:t>Body text</w:t></w:r></w:p></w:body></w:document>`,
		"word/header1.xml":  `<w:hdr ` + docxNS + `><w:p><w:r><w:t>Protocol ABC-123</w:t></w:r></w:p></w:hdr>`,
		"word/footer1.xml":  `<w:ftr ` + docxNS + `><w:p><w:r><w:t>Confidential</w:t></w:r></w:p></w:ftr>`,
	})
	tree, err := Parse("protocol.docx", data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tree.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(tree.Nodes))
	}
	if tree.Nodes[0].Zone != document.ZoneHeader {
		t.Fatalf("node 0 zone: %v", tree.Nodes[0].Zone)
	}
	if tree.Nodes[1].Zone != document.ZoneBody {
		t.Fatalf("node 1 zone: %v", tree.Nodes[1].Zone)
	}
	if tree.Nodes[2].Zone != document.ZoneFooter {
		t.Fatalf("node 2 zone: %v", tree.Nodes[2].Zone)
	}
}

func TestDocxParser_Corrupt(t *testing.T) {
	_, err := Parse("broken.docx", []byte("not a zip archive"))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestDetect_UnsupportedLegacyDoc(t *testing.T) {
	_, err := Detect("protocol.doc")
	var unsupported *FormatUnsupportedError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected FormatUnsupportedError, got %v", err)
	}
	if unsupported.Ext != ".doc" {
		t.Fatalf("ext: %q", unsupported.Ext)
	}
}

func buildDOCX(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}
