package soa

import (
	"regexp"
	"strings"

	"github.com/viant/docanchor/anchor"
)

// minHeaderRatio is the fraction of header labels that must look like
// visits (header row) and procedures (header column) for a table to
// qualify as a schedule candidate.
const minHeaderRatio = 0.5

// Extractor scans table anchors for schedule candidates and promotes the
// single best one per document version.
type Extractor struct {
	minRatio float64
}

// NewExtractor creates an Extractor with default thresholds.
func NewExtractor() *Extractor {
	return &Extractor{minRatio: minHeaderRatio}
}

// Extract reconstructs cell grids from the run's anchors, scores every
// table and returns the best-scoring schedule. Ties prefer the larger
// table, then the earliest in document order.
func (e *Extractor) Extract(anchors anchor.Anchors) Matrix {
	grids := collectGrids(anchors)
	var (
		bestGrid  *grid
		bestScore float64
		bestCells int
		maxScore  float64
	)
	for _, g := range grids {
		score := e.score(g)
		if score > maxScore {
			maxScore = score
		}
		if score < e.minRatio*e.minRatio {
			continue
		}
		cells := g.cellCount()
		if bestGrid == nil || score > bestScore || (score == bestScore && cells > bestCells) {
			bestGrid, bestScore, bestCells = g, score, cells
		}
	}
	if bestGrid == nil {
		return Matrix{Confidence: maxScore}
	}
	m := bestGrid.matrix()
	m.Confidence = bestScore
	return m
}

// grid is one table reconstructed from cell anchors.
type grid struct {
	tableID anchor.ID
	rows    [][]*anchor.Anchor
}

func (g *grid) cellCount() int {
	count := 0
	for _, row := range g.rows {
		count += len(row)
	}
	return count
}

// collectGrids groups cell anchors under their owning table, keeping
// document order.
func collectGrids(anchors anchor.Anchors) []*grid {
	var grids []*grid
	byTable := map[string]*grid{}
	for _, a := range anchors {
		switch a.ID.Type {
		case anchor.ContentTable:
			g := &grid{tableID: a.ID}
			grids = append(grids, g)
			byTable[a.ID.String()] = g
		case anchor.ContentCell:
			if a.Table == nil {
				continue
			}
			g, ok := byTable[a.Table.String()]
			if !ok {
				continue
			}
			for len(g.rows) <= a.Row {
				g.rows = append(g.rows, nil)
			}
			for len(g.rows[a.Row]) <= a.Col {
				g.rows[a.Row] = append(g.rows[a.Row], nil)
			}
			g.rows[a.Row][a.Col] = a
		}
	}
	return grids
}

// score rates how schedule-like a table's headers are: the fraction of
// visit-like labels in the header row times the fraction of
// procedure-like labels in the header column.
func (e *Extractor) score(g *grid) float64 {
	if len(g.rows) < 2 || len(g.rows[0]) < 2 {
		return 0
	}
	header := g.rows[0]
	visitLike, visitTotal := 0, 0
	for _, cell := range header[1:] {
		if cell == nil || cell.Normalized == "" {
			continue
		}
		visitTotal++
		if isVisitLabel(cell.Normalized) {
			visitLike++
		}
	}
	procLike, procTotal := 0, 0
	for _, row := range g.rows[1:] {
		if len(row) == 0 || row[0] == nil || row[0].Normalized == "" {
			continue
		}
		procTotal++
		if !isVisitLabel(row[0].Normalized) {
			procLike++
		}
	}
	if visitTotal == 0 || procTotal == 0 {
		return 0
	}
	return float64(visitLike) / float64(visitTotal) * float64(procLike) / float64(procTotal)
}

// matrix materializes the schedule: header row → visits, header column →
// procedures, interior cells → row-major entries.
func (g *grid) matrix() Matrix {
	m := Matrix{Found: true, TableID: &g.tableID}
	header := g.rows[0]
	for _, cell := range header[1:] {
		m.Visits = append(m.Visits, cellLabel(cell))
	}
	for _, row := range g.rows[1:] {
		if len(row) == 0 || cellLabel(row[0]) == "" {
			continue
		}
		procedure := cellLabel(row[0])
		m.Procedures = append(m.Procedures, procedure)
		for col := 1; col < len(header); col++ {
			var cell *anchor.Anchor
			if col < len(row) {
				cell = row[col]
			}
			if cell == nil {
				continue
			}
			m.Entries = append(m.Entries, Entry{
				Visit:     m.Visits[col-1],
				Procedure: procedure,
				Value:     ParseCellValue(cell.Normalized),
				AnchorID:  cell.ID,
			})
		}
	}
	return m
}

func cellLabel(a *anchor.Anchor) string {
	if a == nil {
		return ""
	}
	return strings.TrimSpace(a.Text)
}

var (
	visitTokenExpr = regexp.MustCompile(`^(?:day|week|month|year|visit|cycle|d|w|v|c)\s*-?\d+[a-z]?$`)
	visitNames     = map[string]bool{
		"screening":     true,
		"baseline":      true,
		"randomization": true,
		"randomisation": true,
		"follow-up":     true,
		"follow up":     true,
		"unscheduled":   true,
		"eos":           true,
		"eot":           true,
		"end of study":  true,
		"end of treatment": true,
		"early termination": true,
	}
)

// isVisitLabel reports whether normalized text looks like a visit column
// label ("day 1", "week 4", "screening", "v3").
func isVisitLabel(normalized string) bool {
	normalized = strings.TrimSpace(normalized)
	if visitNames[normalized] {
		return true
	}
	return visitTokenExpr.MatchString(normalized)
}

// ParseCellValue maps normalized schedule cell content to its value:
// checkmarks and X markers mean performed, blank and dash mean not
// performed. Everything else, footnote markers and conditional phrasing
// included, is conservatively conditional.
func ParseCellValue(normalized string) Value {
	s := strings.TrimSpace(normalized)
	switch s {
	case "", "-", "–", "—", "n/a", "na":
		return ValueNotPerformed
	case "x", "xx", "✓", "✔", "√", "•", "yes":
		return ValuePerformed
	}
	return ValueConditional
}
