package facts

import "regexp"

// Fact keys produced by the built-in rule set.
const (
	KeySampleSize        = "sample_size"
	KeyAgeRange          = "age_range"
	KeyTreatmentDuration = "treatment_duration"
	KeyArms              = "arm_count"
	KeyVisits            = "visit_count"
	KeyDose              = "dose"
	KeyPrimaryEndpoint   = "primary_endpoint"
)

// DefaultRules returns the built-in clinical-protocol rule set, ordered by
// specificity. Patterns are written against normalized (lower-cased,
// whitespace-collapsed) text.
func DefaultRules() []Rule {
	return []Rule{
		&regexRule{
			key:        KeySampleSize,
			expr:       regexp.MustCompile(`\bn\s*=\s*(\d{1,6})\b`),
			valueGroup: 1,
			confidence: 0.9,
		},
		&proximityRule{
			key:        KeySampleSize,
			keywords:   []string{"enroll", "randomize", "randomise"},
			value:      regexp.MustCompile(`(\d{2,6})\s*(?:participants|subjects|patients)`),
			window:     60,
			confidence: 0.6,
		},
		&regexRule{
			key:        KeyAgeRange,
			expr:       regexp.MustCompile(`\b(\d{1,3}\s*(?:to|-|–)\s*\d{1,3})\s*(years)\b`),
			valueGroup: 1,
			unitGroup:  2,
			units:      map[string]bool{"years": true},
			confidence: 0.85,
		},
		&regexRule{
			key:        KeyTreatmentDuration,
			expr:       regexp.MustCompile(`\b(?:duration|treatment period|treated)\D{0,20}?\b(\d{1,3})\s*(days?|weeks?|months?|years?)\b`),
			valueGroup: 1,
			unitGroup:  2,
			units:      map[string]bool{"days": true, "weeks": true, "months": true, "years": true},
			confidence: 0.8,
		},
		&regexRule{
			key:        KeyArms,
			expr:       regexp.MustCompile(`\b(\d{1,2})\s*(?:treatment\s+)?arms\b`),
			valueGroup: 1,
			confidence: 0.8,
		},
		&regexRule{
			key:        KeyVisits,
			expr:       regexp.MustCompile(`\b(\d{1,3})\s*(?:scheduled\s+)?visits\b`),
			valueGroup: 1,
			confidence: 0.7,
		},
		&regexRule{
			key:        KeyDose,
			expr:       regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(mg|µg|mcg|g|ml|iu)\b`),
			valueGroup: 1,
			unitGroup:  2,
			units:      map[string]bool{"mg": true, "µg": true, "g": true, "ml": true, "iu": true},
			confidence: 0.8,
		},
		&regexRule{
			key:        KeyPrimaryEndpoint,
			expr:       regexp.MustCompile(`primary endpoint\s*(?:is|:|,)?\s*([^.;]{3,120})`),
			valueGroup: 1,
			confidence: 0.7,
		},
	}
}
