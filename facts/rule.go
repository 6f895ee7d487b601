// Package facts extracts structured (key, value, unit) tuples from anchor
// text with an ordered list of independent rule matchers. Rules-first: no
// fact exists without a satisfying rule, and a non-match is never an error.
package facts

import (
	"regexp"
	"strings"

	"github.com/viant/docanchor/anchor"
)

// Fact is one extracted value with its source anchor.
type Fact struct {
	Key        string
	Value      string
	Unit       string
	Confidence float64
	AnchorID   anchor.ID
}

// Candidate is a single rule match within one anchor.
type Candidate struct {
	Value      string
	Unit       string
	Confidence float64
}

// Rule matches one fact pattern against normalized anchor text. Rules are
// independent; each carries its own confidence weight.
type Rule interface {
	Key() string
	Match(normalized string) []Candidate
}

// regexRule extracts value (and optionally unit) capture groups. An exact
// pattern carries more confidence than a proximity rule for the same key.
type regexRule struct {
	key        string
	expr       *regexp.Regexp
	valueGroup int
	unitGroup  int
	units      map[string]bool
	confidence float64
}

func (r *regexRule) Key() string { return r.key }

func (r *regexRule) Match(normalized string) []Candidate {
	matches := r.expr.FindAllStringSubmatch(normalized, -1)
	if len(matches) == 0 {
		return nil
	}
	var out []Candidate
	for _, m := range matches {
		if r.valueGroup >= len(m) {
			continue
		}
		value := strings.TrimSpace(m[r.valueGroup])
		if value == "" {
			continue
		}
		unit := ""
		if r.unitGroup > 0 && r.unitGroup < len(m) {
			unit = canonicalUnit(m[r.unitGroup])
			if len(r.units) > 0 && !r.units[unit] {
				continue
			}
		}
		out = append(out, Candidate{Value: value, Unit: unit, Confidence: r.confidence})
	}
	return out
}

// proximityRule matches a value pattern within a character window after
// any of its keywords. Fuzzier than a regexRule, so it scores lower.
type proximityRule struct {
	key        string
	keywords   []string
	value      *regexp.Regexp
	unit       string
	window     int
	confidence float64
}

func (r *proximityRule) Key() string { return r.key }

func (r *proximityRule) Match(normalized string) []Candidate {
	var out []Candidate
	for _, kw := range r.keywords {
		offset := 0
		for {
			idx := strings.Index(normalized[offset:], kw)
			if idx < 0 {
				break
			}
			start := offset + idx + len(kw)
			end := start + r.window
			if end > len(normalized) {
				end = len(normalized)
			}
			if m := r.value.FindStringSubmatch(normalized[start:end]); m != nil {
				value := m[0]
				if len(m) > 1 {
					value = m[1]
				}
				out = append(out, Candidate{Value: strings.TrimSpace(value), Unit: r.unit, Confidence: r.confidence})
			}
			offset = start
		}
	}
	return out
}

var unitAliases = map[string]string{
	"mcg":    "µg",
	"day":    "days",
	"week":   "weeks",
	"month":  "months",
	"year":   "years",
}

func canonicalUnit(unit string) string {
	unit = strings.TrimSpace(strings.ToLower(unit))
	if canonical, ok := unitAliases[unit]; ok {
		return canonical
	}
	return unit
}
