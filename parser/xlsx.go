package parser

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"github.com/viant/docanchor/document"
)

// xlsxParser emits one heading candidate per sheet followed by the sheet
// as a table node. Rows are padded to the widest row so downstream table
// consumers see a rectangular grid.
type xlsxParser struct{}

func (p *xlsxParser) Parse(data []byte) (*document.Tree, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: FormatXLSX, Err: err}
	}
	defer func() { _ = f.Close() }()

	tree := &document.Tree{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		tree.Nodes = append(tree.Nodes,
			&document.Node{
				Kind:  document.KindCandidate,
				Text:  sheet,
				Style: document.Style{Name: "Sheet"},
				Zone:  document.ZoneBody,
			},
			gridNode(rows))
	}
	return tree, nil
}

// gridNode builds a table node from string rows, padded rectangular.
func gridNode(rows [][]string) *document.Node {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	table := &document.Node{Kind: document.KindTable, Zone: document.ZoneBody}
	for _, row := range rows {
		rowNode := &document.Node{Kind: document.KindRow, Zone: document.ZoneBody}
		for col := 0; col < width; col++ {
			text := ""
			if col < len(row) {
				text = row[col]
			}
			rowNode.Children = append(rowNode.Children, &document.Node{
				Kind: document.KindCell,
				Text: text,
				Zone: document.ZoneBody,
			})
		}
		table.Children = append(table.Children, rowNode)
	}
	return table
}
