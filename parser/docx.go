package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/viant/docanchor/document"
)

// docxParser reads word/document.xml plus header/footer parts from the
// DOCX archive with a streaming XML token walk.
type docxParser struct{}

func (p *docxParser) Parse(data []byte) (*document.Tree, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Format: FormatDOCX, Err: err}
	}
	var body *zip.File
	var headers, footers []*zip.File
	for _, f := range r.File {
		name := strings.ToLower(f.Name)
		switch {
		case name == "word/document.xml":
			body = f
		case strings.HasPrefix(name, "word/header") && strings.HasSuffix(name, ".xml"):
			headers = append(headers, f)
		case strings.HasPrefix(name, "word/footer") && strings.HasSuffix(name, ".xml"):
			footers = append(footers, f)
		}
	}
	if body == nil {
		return nil, &ParseError{Format: FormatDOCX, Err: fmt.Errorf("word/document.xml not found in archive")}
	}
	sortZipFiles(headers)
	sortZipFiles(footers)

	tree := &document.Tree{}
	for _, f := range headers {
		nodes, err := parseWordPart(f, document.ZoneHeader)
		if err != nil {
			return nil, &ParseError{Format: FormatDOCX, Err: err}
		}
		tree.Nodes = append(tree.Nodes, nodes...)
	}
	nodes, err := parseWordPart(body, document.ZoneBody)
	if err != nil {
		return nil, &ParseError{Format: FormatDOCX, Err: err}
	}
	tree.Nodes = append(tree.Nodes, nodes...)
	for _, f := range footers {
		nodes, err := parseWordPart(f, document.ZoneFooter)
		if err != nil {
			return nil, &ParseError{Format: FormatDOCX, Err: err}
		}
		tree.Nodes = append(tree.Nodes, nodes...)
	}
	return tree, nil
}

func sortZipFiles(files []*zip.File) {
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
}

func parseWordPart(f *zip.File, zone document.Zone) ([]*document.Node, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return parseWordXML(rc, zone), nil
}

// parseWordXML walks WordprocessingML tokens, emitting paragraph and
// heading-candidate nodes plus one table node per top-level w:tbl.
// Tables nested inside cells are flattened into the enclosing cell text.
func parseWordXML(r io.Reader, zone document.Zone) []*document.Node {
	dec := xml.NewDecoder(r)
	var (
		nodes      []*document.Node
		table      *document.Node
		row        *document.Node
		cell       *strings.Builder
		tableDepth int

		para   strings.Builder
		style  document.Style
		inPara bool
	)
	flushPara := func() {
		text := strings.TrimSpace(para.String())
		para.Reset()
		if text == "" {
			return
		}
		if cell != nil {
			if cell.Len() > 0 {
				cell.WriteByte('\n')
			}
			cell.WriteString(text)
			return
		}
		kind := document.KindParagraph
		if isHeadingStyle(style.Name) {
			kind = document.KindCandidate
		}
		nodes = append(nodes, &document.Node{Kind: kind, Text: text, Style: style, Zone: zone})
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				para.Reset()
				style = document.Style{}
			case "pStyle":
				if inPara {
					style.Name = xmlAttr(t, "val")
				}
			case "b":
				if inPara {
					if v := xmlAttr(t, "val"); v != "0" && v != "false" {
						style.Bold = true
					}
				}
			case "sz":
				if inPara {
					if v, err := strconv.ParseFloat(xmlAttr(t, "val"), 64); err == nil {
						style.FontSize = v / 2 // w:sz is half-points
					}
				}
			case "t", "instrText":
				var text string
				if err := dec.DecodeElement(&text, &t); err == nil {
					para.WriteString(text)
				}
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					table = &document.Node{Kind: document.KindTable, Zone: zone}
				}
			case "tr":
				if tableDepth == 1 {
					row = &document.Node{Kind: document.KindRow, Zone: zone}
				}
			case "tc":
				if tableDepth == 1 {
					cell = &strings.Builder{}
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inPara {
					flushPara()
					inPara = false
				}
			case "tc":
				if tableDepth == 1 && row != nil && cell != nil {
					row.Children = append(row.Children, &document.Node{
						Kind: document.KindCell,
						Text: strings.TrimSpace(cell.String()),
						Zone: zone,
					})
					cell = nil
				}
			case "tr":
				if tableDepth == 1 && table != nil && row != nil {
					table.Children = append(table.Children, row)
					row = nil
				}
			case "tbl":
				if tableDepth == 1 && table != nil {
					nodes = append(nodes, table)
					table = nil
				}
				if tableDepth > 0 {
					tableDepth--
				}
			}
		}
	}
	return nodes
}

func xmlAttr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// isHeadingStyle reports whether a declared paragraph style marks a
// heading candidate. Level assignment stays with the heading detector.
func isHeadingStyle(style string) bool {
	lower := strings.ToLower(style)
	if lower == "title" || lower == "subtitle" {
		return true
	}
	for _, prefix := range []string{"heading", "titre", "überschrift"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
