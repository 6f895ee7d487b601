package parser

import (
	"bytes"
	"strconv"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/structure"

	"github.com/viant/docanchor/document"
)

// xlsParser handles legacy binary workbooks the same way as xlsxParser:
// one heading candidate plus one rectangular table node per sheet.
type xlsParser struct{}

func (p *xlsParser) Parse(data []byte) (*document.Tree, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: FormatXLS, Err: err}
	}
	tree := &document.Tree{}
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		rows := sheet.GetRows()
		if len(rows) == 0 {
			continue
		}
		grid := make([][]string, 0, len(rows))
		for _, row := range rows {
			grid = append(grid, xlsRowValues(row.GetCols()))
		}
		tree.Nodes = append(tree.Nodes,
			&document.Node{
				Kind:  document.KindCandidate,
				Text:  sheet.GetName(),
				Style: document.Style{Name: "Sheet"},
				Zone:  document.ZoneBody,
			},
			gridNode(grid))
	}
	return tree, nil
}

func xlsRowValues(cols []structure.CellData) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		val := col.GetString()
		if val == "" {
			if num := col.GetFloat64(); num != 0 {
				val = strconv.FormatFloat(num, 'f', -1, 64)
			} else if in := col.GetInt64(); in != 0 {
				val = strconv.FormatInt(in, 10)
			}
		}
		out = append(out, val)
	}
	return out
}
