package parser

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/viant/docanchor/document"
)

// pdfParser extracts text rows per page, keeping font size so the heading
// detector can promote large or isolated lines. Digital PDFs only; scanned
// pages simply yield no text.
type pdfParser struct{}

func (p *pdfParser) Parse(data []byte) (tree *document.Tree, err error) {
	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			tree = nil
			err = &ParseError{Format: FormatPDF, Err: fmt.Errorf("pdf reader: %v", r)}
		}
	}()
	if len(data) == 0 {
		return nil, &ParseError{Format: FormatPDF, Err: fmt.Errorf("empty file")}
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Format: FormatPDF, Err: err}
	}
	tree = &document.Tree{}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		tree.Nodes = append(tree.Nodes, pdfPageNodes(page)...)
	}
	if len(tree.Nodes) == 0 {
		tree.Nodes = pdfFallbackNodes(reader, data)
	}
	return tree, nil
}

type pdfLine struct {
	y    float64
	size float64
	text string
}

func pdfPageNodes(page pdf.Page) []*document.Node {
	rows, err := page.GetTextByRow()
	if err != nil || len(rows) == 0 {
		return nil
	}
	lines := make([]pdfLine, 0, len(rows))
	for _, row := range rows {
		line := joinRow(row.Content)
		if line.text == "" {
			continue
		}
		line.y = float64(row.Position)
		lines = append(lines, line)
	}
	// Top of page first.
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })
	return mergeLines(lines)
}

func joinRow(texts []pdf.Text) pdfLine {
	sort.SliceStable(texts, func(i, j int) bool { return texts[i].X < texts[j].X })
	var b strings.Builder
	var line pdfLine
	var prevEnd float64
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		if b.Len() > 0 && t.X > prevEnd+1 {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
		if t.FontSize > line.size {
			line.size = t.FontSize
		}
	}
	line.text = strings.TrimSpace(b.String())
	return line
}

// mergeLines groups consecutive lines of one paragraph: same font size and
// vertical gaps under roughly two line heights. A font size change starts
// a new node so heading lines stay isolated.
func mergeLines(lines []pdfLine) []*document.Node {
	var nodes []*document.Node
	var block strings.Builder
	var blockSize, prevY float64
	flush := func() {
		text := strings.TrimSpace(block.String())
		block.Reset()
		if text == "" {
			return
		}
		nodes = append(nodes, &document.Node{
			Kind:  document.KindParagraph,
			Text:  text,
			Style: document.Style{FontSize: blockSize},
			Zone:  document.ZoneBody,
		})
	}
	for i, line := range lines {
		gap := prevY - line.y
		sizeChanged := blockSize != 0 && abs(line.size-blockSize) > 0.5
		if i > 0 && (sizeChanged || gap > maxf(line.size, blockSize)*1.8) {
			flush()
		}
		if block.Len() > 0 {
			block.WriteByte(' ')
		} else {
			blockSize = line.size
		}
		block.WriteString(line.text)
		prevY = line.y
	}
	flush()
	return nodes
}

func pdfFallbackNodes(reader *pdf.Reader, data []byte) []*document.Node {
	var text []byte
	if reader != nil {
		if rc, err := reader.GetPlainText(); err == nil {
			if out, err := io.ReadAll(rc); err == nil {
				text = out
			}
		}
	}
	if len(text) == 0 {
		text = printableText(data)
	}
	return paragraphNodes(string(text))
}

// paragraphNodes splits plain text into paragraph nodes on blank lines.
func paragraphNodes(text string) []*document.Node {
	var nodes []*document.Node
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		nodes = append(nodes, &document.Node{Kind: document.KindParagraph, Text: block, Zone: document.ZoneBody})
	}
	return nodes
}

func printableText(in []byte) []byte {
	var out bytes.Buffer
	for len(in) > 0 {
		r, size := utf8.DecodeRune(in)
		if r == utf8.RuneError && size == 1 {
			b := in[0]
			if b == '\n' || b == '\r' || b == '\t' || (b >= 32 && b < 127) {
				out.WriteByte(b)
			}
			in = in[1:]
			continue
		}
		in = in[size:]
		if r == '\n' || r == '\r' || r == '\t' || r >= 32 {
			out.WriteRune(r)
		}
	}
	return out.Bytes()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
