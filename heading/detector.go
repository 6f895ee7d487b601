// Package heading assigns heading levels to content tree nodes and derives
// every node's section path. Detection is layered: declared style metadata
// is trusted when present; otherwise numbering, casing, boldness and font
// size heuristics apply.
package heading

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/viant/docanchor/document"
)

// RootSection is the flat section path used when a document has no
// detectable headings and for content preceding the first heading.
const RootSection = "document"

// DefaultMaxLevel caps assigned heading levels.
const DefaultMaxLevel = 6

// Result reports detection quality for the run report.
type Result struct {
	Count      int
	Confidence float64
	Degraded   bool
}

// Detector annotates content trees. It holds configuration only; all
// traversal state lives in a per-call tracker, so one Detector may be
// shared across concurrent runs.
type Detector struct {
	maxLevel int
}

// New creates a Detector.
func New() *Detector {
	return &Detector{maxLevel: DefaultMaxLevel}
}

// Annotate assigns Kind/Level to heading nodes and Section to every node
// in the tree, in source order. A tree without headings degrades to the
// flat root section.
func (d *Detector) Annotate(tree *document.Tree) Result {
	styled := hasStyledHeadings(tree)
	body := bodyFontSize(tree)

	var result Result
	numbered := 0
	tr := &tracker{}
	for _, n := range tree.Nodes {
		level := 0
		switch n.Kind {
		case document.KindCandidate:
			level = d.candidateLevel(n)
		case document.KindParagraph:
			if !styled {
				level = d.heuristicLevel(n, body)
			}
		}
		if level > 0 {
			if level > d.maxLevel {
				level = d.maxLevel
			}
			n.Kind = document.KindHeading
			n.Level = level
			tr.push(level, strings.TrimSpace(n.Text))
			result.Count++
			if numberingLevel(n.Text) > 0 {
				numbered++
			}
		} else if n.Kind == document.KindCandidate {
			n.Kind = document.KindParagraph
		}
		n.Section = tr.path()
		annotateZone(n, tr)
		for _, child := range n.Children {
			propagate(child, n)
		}
	}

	result.Confidence = confidence(styled, result.Count, numbered)
	result.Degraded = result.Count == 0
	return result
}

// propagate copies section path and zone onto table rows and cells.
func propagate(n *document.Node, parent *document.Node) {
	n.Section = parent.Section
	if n.Zone == document.ZoneBody {
		n.Zone = parent.Zone
	}
	for _, child := range n.Children {
		propagate(child, n)
	}
}

func confidence(styled bool, count, numbered int) float64 {
	if count == 0 {
		return 0
	}
	if styled {
		return 0.9
	}
	c := 0.4 + 0.5*float64(numbered)/float64(count)
	if c > 0.9 {
		c = 0.9
	}
	return c
}

func (d *Detector) candidateLevel(n *document.Node) int {
	if level := StyleLevel(n.Style.Name); level > 0 {
		return level
	}
	if level := numberingLevel(n.Text); level > 0 {
		return level
	}
	return 1
}

func (d *Detector) heuristicLevel(n *document.Node, body float64) int {
	text := strings.TrimSpace(n.Text)
	if text == "" || len([]rune(text)) > 120 {
		return 0
	}
	words := len(strings.Fields(text))
	if level := numberingLevel(text); level > 0 && words <= 12 {
		return level
	}
	if strings.HasSuffix(text, ".") {
		return 0
	}
	if isAllCaps(text) && len(text) >= 4 && words <= 12 {
		return 1
	}
	if body > 0 && n.Style.FontSize >= body*1.5 {
		return 1
	}
	if body > 0 && n.Style.Bold && n.Style.FontSize >= body*1.15 && words <= 12 {
		return 2
	}
	return 0
}

// StyleLevel maps a declared paragraph style name to a heading level,
// 0 when the style is not a heading style. Localized Word style prefixes
// are recognized alongside the English ones.
func StyleLevel(style string) int {
	lower := strings.ToLower(style)
	switch lower {
	case "":
		return 0
	case "title", "sheet":
		return 1
	case "subtitle":
		return 2
	}
	for _, prefix := range []string{"heading", "titre", "überschrift"} {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		rest := strings.TrimSpace(lower[len(prefix):])
		if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '9' {
			return int(rest[0] - '0')
		}
	}
	return 0
}

var (
	numberingExpr = regexp.MustCompile(`^\d+(\.\d+)*$`)
	appendixExpr  = regexp.MustCompile(`^(?i)(appendix|annex)\s+[a-z0-9]+`)
)

// numberingLevel returns the depth of a decimal numbering prefix
// ("4.2.1 Design" is level 3), or 1 for appendix-style headings.
// Measurement-like lines ("1.5 mg dose") do not count: the word after the
// prefix must look like a title, or the prefix must carry its own
// terminating punctuation.
func numberingLevel(text string) int {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) < 2 {
		if appendixExpr.MatchString(text) {
			return 1
		}
		return 0
	}
	prefix := fields[0]
	terminated := strings.HasSuffix(prefix, ".") || strings.HasSuffix(prefix, ")")
	prefix = strings.TrimRight(prefix, ".)")
	if !numberingExpr.MatchString(prefix) {
		if appendixExpr.MatchString(text) {
			return 1
		}
		return 0
	}
	level := strings.Count(prefix, ".") + 1
	first, _ := firstRune(fields[1])
	titled := unicode.IsUpper(first) || unicode.IsDigit(first)
	if level == 1 && !terminated && !titled {
		return 0
	}
	if level > 1 && !titled {
		return 0
	}
	return level
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}

func isAllCaps(text string) bool {
	letters := 0
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			letters++
		}
	}
	return letters >= 2
}

func hasStyledHeadings(tree *document.Tree) bool {
	for _, n := range tree.Nodes {
		if n.Kind == document.KindCandidate && StyleLevel(n.Style.Name) > 0 {
			return true
		}
	}
	return false
}

// bodyFontSize estimates the dominant paragraph font size, 0 when the
// format exposes none.
func bodyFontSize(tree *document.Tree) float64 {
	var sizes []float64
	for _, n := range tree.Nodes {
		if n.Kind == document.KindParagraph && n.Style.FontSize > 0 {
			sizes = append(sizes, n.Style.FontSize)
		}
	}
	if len(sizes) == 0 {
		return 0
	}
	sort.Float64s(sizes)
	return sizes[len(sizes)/2]
}

func annotateZone(n *document.Node, tr *tracker) {
	if n.Zone == document.ZoneBody && tr.inAppendix() {
		n.Zone = document.ZoneAppendix
	}
}

// tracker holds the stack of currently open headings for one traversal.
type tracker struct {
	open []openHeading
}

type openHeading struct {
	level int
	title string
}

// push opens a heading at the given level, closing all headings at the
// same or deeper level first.
func (t *tracker) push(level int, title string) {
	for len(t.open) > 0 && t.open[len(t.open)-1].level >= level {
		t.open = t.open[:len(t.open)-1]
	}
	t.open = append(t.open, openHeading{level: level, title: title})
}

// path returns the currently open section titles, root first. An empty
// stack yields the flat root section.
func (t *tracker) path() []string {
	if len(t.open) == 0 {
		return []string{RootSection}
	}
	out := make([]string, len(t.open))
	for i, h := range t.open {
		out[i] = h.title
	}
	return out
}

func (t *tracker) inAppendix() bool {
	return len(t.open) > 0 && appendixExpr.MatchString(t.open[0].title)
}
