// Package soa locates the Schedule-of-Activities table among a run's
// table anchors and extracts it as a visits × procedures matrix. Every
// matrix entry cites the exact source cell anchor.
package soa

import (
	"github.com/viant/docanchor/anchor"
)

// Value classifies a schedule cell.
type Value string

const (
	ValuePerformed    Value = "performed"
	ValueNotPerformed Value = "not_performed"
	ValueConditional  Value = "conditional"
)

// Entry is one (visit, procedure) matrix cell.
type Entry struct {
	Visit     string
	Procedure string
	Value     Value
	AnchorID  anchor.ID
}

// Matrix is the extracted schedule. Found is false when no table passed
// the header heuristics; Confidence then carries the best score seen so
// the run report can explain how close the candidates came.
type Matrix struct {
	Found      bool
	Confidence float64
	TableID    *anchor.ID
	Visits     []string
	Procedures []string
	Entries    []Entry
}
