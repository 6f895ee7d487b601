package facts

import (
	"testing"

	"github.com/viant/docanchor/anchor"
	"github.com/viant/docanchor/document"
	"github.com/viant/docanchor/normalize"
)

func textAnchor(ordinal int, text string) *anchor.Anchor {
	normalized, hash := normalize.TextHash(text, "en")
	return &anchor.Anchor{
		ID: anchor.ID{
			VersionID: "v1",
			Section:   []string{"document"},
			Type:      anchor.ContentParagraph,
			Ordinal:   ordinal,
			Hash:      hash,
		},
		Text:       text,
		Normalized: normalized,
		Zone:       document.ZoneBody,
		Lang:       "en",
	}
}

func factsByKey(facts []Fact, key string) []Fact {
	var out []Fact
	for _, f := range facts {
		if f.Key == key {
			out = append(out, f)
		}
	}
	return out
}

func TestExtract_SampleSize(t *testing.T) {
	facts, cov := NewExtractor().Extract(anchor.Anchors{
		textAnchor(0, "A total of N=120 subjects will be included."),
	})
	got := factsByKey(facts, KeySampleSize)
	if len(got) != 1 {
		t.Fatalf("sample_size facts: %+v", facts)
	}
	if got[0].Value != "120" || got[0].Confidence != 0.9 {
		t.Fatalf("fact: %+v", got[0])
	}
	if cov.AnchorsMatched != 1 || cov.GapRate() != 0 {
		t.Fatalf("coverage: %+v", cov)
	}
}

func TestExtract_ProximityLowerConfidence(t *testing.T) {
	facts, _ := NewExtractor().Extract(anchor.Anchors{
		textAnchor(0, "The study will enroll approximately 240 participants across sites."),
	})
	got := factsByKey(facts, KeySampleSize)
	if len(got) != 1 {
		t.Fatalf("facts: %+v", facts)
	}
	if got[0].Value != "240" {
		t.Fatalf("value: %q", got[0].Value)
	}
	if got[0].Confidence >= 0.9 {
		t.Fatalf("proximity match must score below exact match: %v", got[0].Confidence)
	}
}

func TestExtract_DoseUnitWhitelist(t *testing.T) {
	facts, _ := NewExtractor().Extract(anchor.Anchors{
		textAnchor(0, "Subjects receive 50 mg twice daily and 10 mcg as booster."),
		textAnchor(1, "Background noise of 30 kg does not match."),
	})
	got := factsByKey(facts, KeyDose)
	if len(got) != 2 {
		t.Fatalf("dose facts: %+v", got)
	}
	if got[0].Value != "50" || got[0].Unit != "mg" {
		t.Fatalf("fact 0: %+v", got[0])
	}
	if got[1].Unit != "µg" {
		t.Fatalf("mcg should canonicalize to µg: %+v", got[1])
	}
}

func TestExtract_RepeatedMentionsAcrossAnchorsKept(t *testing.T) {
	facts, _ := NewExtractor().Extract(anchor.Anchors{
		textAnchor(0, "Sample size: n=80."),
		textAnchor(1, "As stated, n=80 subjects complete the study."),
	})
	got := factsByKey(facts, KeySampleSize)
	if len(got) != 2 {
		t.Fatalf("cross-anchor repeats must be retained: %+v", got)
	}
}

func TestExtract_DedupWithinSingleAnchor(t *testing.T) {
	facts, _ := NewExtractor().Extract(anchor.Anchors{
		textAnchor(0, "n=80 in part A and n=80 in part B."),
	})
	got := factsByKey(facts, KeySampleSize)
	if len(got) != 1 {
		t.Fatalf("identical matches within one anchor collapse: %+v", got)
	}
}

func TestExtract_NoMatchIsNotAnError(t *testing.T) {
	facts, cov := NewExtractor().Extract(anchor.Anchors{
		textAnchor(0, "This section describes general background only."),
	})
	if len(facts) != 0 {
		t.Fatalf("facts: %+v", facts)
	}
	if cov.AnchorsScanned != 1 || cov.AnchorsMatched != 0 {
		t.Fatalf("coverage: %+v", cov)
	}
	if cov.GapRate() != 1 {
		t.Fatalf("gap rate: %v", cov.GapRate())
	}
}

func TestExtract_AgeRangeAndDuration(t *testing.T) {
	facts, _ := NewExtractor().Extract(anchor.Anchors{
		textAnchor(0, "Eligible patients are 18 to 65 years of age."),
		textAnchor(1, "The treatment period is 12 weeks in both arms."),
	})
	age := factsByKey(facts, KeyAgeRange)
	if len(age) != 1 || age[0].Unit != "years" {
		t.Fatalf("age facts: %+v", age)
	}
	duration := factsByKey(facts, KeyTreatmentDuration)
	if len(duration) != 1 || duration[0].Value != "12" || duration[0].Unit != "weeks" {
		t.Fatalf("duration facts: %+v", duration)
	}
}

func TestExtract_PrimaryEndpoint(t *testing.T) {
	facts, _ := NewExtractor().Extract(anchor.Anchors{
		textAnchor(0, "The primary endpoint is change from baseline in HbA1c at week 24."),
	})
	got := factsByKey(facts, KeyPrimaryEndpoint)
	if len(got) != 1 {
		t.Fatalf("endpoint facts: %+v", facts)
	}
	if got[0].Value == "" {
		t.Fatalf("empty endpoint value")
	}
}
