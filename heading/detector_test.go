package heading

import (
	"reflect"
	"testing"

	"github.com/viant/docanchor/document"
)

func styledTree() *document.Tree {
	return &document.Tree{Nodes: []*document.Node{
		{Kind: document.KindCandidate, Text: "Introduction", Style: document.Style{Name: "Heading1"}, Zone: document.ZoneBody},
		{Kind: document.KindCandidate, Text: "Objectives", Style: document.Style{Name: "Heading2"}, Zone: document.ZoneBody},
		{Kind: document.KindParagraph, Text: "Primary objective text.", Zone: document.ZoneBody},
		{Kind: document.KindParagraph, Text: "Secondary objective text.", Zone: document.ZoneBody},
	}}
}

func TestAnnotate_StyledHeadings(t *testing.T) {
	tree := styledTree()
	result := New().Annotate(tree)
	if result.Count != 2 || result.Degraded {
		t.Fatalf("result: %+v", result)
	}
	if result.Confidence < 0.8 {
		t.Fatalf("confidence: %v", result.Confidence)
	}
	if tree.Nodes[0].Kind != document.KindHeading || tree.Nodes[0].Level != 1 {
		t.Fatalf("node 0: %+v", tree.Nodes[0])
	}
	if !reflect.DeepEqual(tree.Nodes[0].Section, []string{"Introduction"}) {
		t.Fatalf("node 0 section: %v", tree.Nodes[0].Section)
	}
	want := []string{"Introduction", "Objectives"}
	for i := 2; i <= 3; i++ {
		if !reflect.DeepEqual(tree.Nodes[i].Section, want) {
			t.Fatalf("node %d section: %v", i, tree.Nodes[i].Section)
		}
	}
}

func TestAnnotate_SiblingHeadingPopsStack(t *testing.T) {
	tree := &document.Tree{Nodes: []*document.Node{
		{Kind: document.KindCandidate, Text: "Background", Style: document.Style{Name: "Heading1"}, Zone: document.ZoneBody},
		{Kind: document.KindCandidate, Text: "Rationale", Style: document.Style{Name: "Heading2"}, Zone: document.ZoneBody},
		{Kind: document.KindCandidate, Text: "Risks", Style: document.Style{Name: "Heading2"}, Zone: document.ZoneBody},
		{Kind: document.KindParagraph, Text: "Risk details.", Zone: document.ZoneBody},
	}}
	New().Annotate(tree)
	want := []string{"Background", "Risks"}
	if !reflect.DeepEqual(tree.Nodes[3].Section, want) {
		t.Fatalf("section: %v", tree.Nodes[3].Section)
	}
}

func TestAnnotate_HeuristicNumbering(t *testing.T) {
	tree := &document.Tree{Nodes: []*document.Node{
		{Kind: document.KindParagraph, Text: "4. Study Design", Zone: document.ZoneBody},
		{Kind: document.KindParagraph, Text: "4.2 Randomization", Zone: document.ZoneBody},
		{Kind: document.KindParagraph, Text: "Subjects are randomized 1:1 to treatment arms using a central system.", Zone: document.ZoneBody},
	}}
	result := New().Annotate(tree)
	if result.Count != 2 {
		t.Fatalf("count: %d", result.Count)
	}
	if tree.Nodes[0].Level != 1 || tree.Nodes[1].Level != 2 {
		t.Fatalf("levels: %d, %d", tree.Nodes[0].Level, tree.Nodes[1].Level)
	}
	want := []string{"4. Study Design", "4.2 Randomization"}
	if !reflect.DeepEqual(tree.Nodes[2].Section, want) {
		t.Fatalf("section: %v", tree.Nodes[2].Section)
	}
}

func TestAnnotate_AllCapsHeading(t *testing.T) {
	tree := &document.Tree{Nodes: []*document.Node{
		{Kind: document.KindParagraph, Text: "INCLUSION CRITERIA", Zone: document.ZoneBody},
		{Kind: document.KindParagraph, Text: "Age 18 or older.", Zone: document.ZoneBody},
	}}
	result := New().Annotate(tree)
	if result.Count != 1 {
		t.Fatalf("count: %d", result.Count)
	}
	if !reflect.DeepEqual(tree.Nodes[1].Section, []string{"INCLUSION CRITERIA"}) {
		t.Fatalf("section: %v", tree.Nodes[1].Section)
	}
}

func TestAnnotate_NoHeadingsDegraded(t *testing.T) {
	tree := &document.Tree{Nodes: []*document.Node{
		{Kind: document.KindParagraph, Text: "Plain text without any structure.", Zone: document.ZoneBody},
		{Kind: document.KindParagraph, Text: "More plain text in the same flow.", Zone: document.ZoneBody},
	}}
	result := New().Annotate(tree)
	if !result.Degraded || result.Count != 0 || result.Confidence != 0 {
		t.Fatalf("result: %+v", result)
	}
	for i, n := range tree.Nodes {
		if !reflect.DeepEqual(n.Section, []string{RootSection}) {
			t.Fatalf("node %d section: %v", i, n.Section)
		}
	}
}

func TestAnnotate_TableInheritsSection(t *testing.T) {
	table := &document.Node{Kind: document.KindTable, Zone: document.ZoneBody, Children: []*document.Node{
		{Kind: document.KindRow, Zone: document.ZoneBody, Children: []*document.Node{
			{Kind: document.KindCell, Text: "ECG", Zone: document.ZoneBody},
		}},
	}}
	tree := &document.Tree{Nodes: []*document.Node{
		{Kind: document.KindCandidate, Text: "Schedule of Activities", Style: document.Style{Name: "Heading1"}, Zone: document.ZoneBody},
		table,
	}}
	New().Annotate(tree)
	want := []string{"Schedule of Activities"}
	cell := table.Children[0].Children[0]
	if !reflect.DeepEqual(cell.Section, want) {
		t.Fatalf("cell section: %v", cell.Section)
	}
}

func TestAnnotate_AppendixZone(t *testing.T) {
	tree := &document.Tree{Nodes: []*document.Node{
		{Kind: document.KindCandidate, Text: "Appendix A Laboratory Values", Style: document.Style{Name: "Heading1"}, Zone: document.ZoneBody},
		{Kind: document.KindParagraph, Text: "Reference ranges.", Zone: document.ZoneBody},
	}}
	New().Annotate(tree)
	if tree.Nodes[1].Zone != document.ZoneAppendix {
		t.Fatalf("zone: %v", tree.Nodes[1].Zone)
	}
}

func TestStyleLevel(t *testing.T) {
	cases := map[string]int{
		"Heading1":      1,
		"heading3":      3,
		"Titre2":        2,
		"Überschrift1":  1,
		"Title":         1,
		"Subtitle":      2,
		"BodyText":      0,
		"":              0,
		"Heading 2":     2,
	}
	for style, want := range cases {
		if got := StyleLevel(style); got != want {
			t.Fatalf("StyleLevel(%q) = %d, want %d", style, got, want)
		}
	}
}

func TestNumberingLevel(t *testing.T) {
	cases := map[string]int{
		"1. Introduction":        1,
		"4.2 Randomization":      2,
		"10.1.3 Sample Handling": 3,
		"Appendix B Schedule":    1,
		"Plain sentence here":    0,
		"1.5 mg dose":            0,
	}
	for text, want := range cases {
		if got := numberingLevel(text); got != want {
			t.Fatalf("numberingLevel(%q) = %d, want %d", text, got, want)
		}
	}
}
