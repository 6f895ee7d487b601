package facts

import (
	"github.com/viant/docanchor/anchor"
)

// Coverage summarizes extraction yield for run quality reporting.
type Coverage struct {
	AnchorsScanned int
	AnchorsMatched int
	Facts          int
}

// GapRate is the fraction of scanned anchors that produced no fact.
func (c Coverage) GapRate() float64 {
	if c.AnchorsScanned == 0 {
		return 0
	}
	return 1 - float64(c.AnchorsMatched)/float64(c.AnchorsScanned)
}

// Extractor applies an ordered rule list over anchors. Extraction never
// fails; conflicting matches across anchors are all retained for
// downstream disambiguation.
type Extractor struct {
	rules []Rule
}

// NewExtractor creates an Extractor; with no rules given, the built-in
// clinical rule set applies.
func NewExtractor(rules ...Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// Extract scans heading, paragraph and cell anchors in order. Duplicate
// (key, value, unit) matches are collapsed within a single anchor scan
// only, never across anchors.
func (e *Extractor) Extract(anchors anchor.Anchors) ([]Fact, Coverage) {
	var facts []Fact
	var cov Coverage
	for _, a := range anchors {
		if !a.ID.Type.Chunkable() || a.Normalized == "" {
			continue
		}
		cov.AnchorsScanned++
		seen := map[factKey]bool{}
		matched := false
		for _, rule := range e.rules {
			for _, c := range rule.Match(a.Normalized) {
				key := factKey{rule.Key(), c.Value, c.Unit}
				if seen[key] {
					continue
				}
				seen[key] = true
				matched = true
				facts = append(facts, Fact{
					Key:        rule.Key(),
					Value:      c.Value,
					Unit:       c.Unit,
					Confidence: c.Confidence,
					AnchorID:   a.ID,
				})
			}
		}
		if matched {
			cov.AnchorsMatched++
		}
	}
	cov.Facts = len(facts)
	return facts, cov
}

type factKey struct {
	key, value, unit string
}
