package chunk

import (
	"math"
	"reflect"
	"testing"
)

func TestEmbed_Deterministic(t *testing.T) {
	e := NewEmbedder(128)
	a := e.Embed("blood draw at screening visit")
	b := e.Embed("blood draw at screening visit")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("embedding not deterministic")
	}
	if len(a) != 128 {
		t.Fatalf("dim: %d", len(a))
	}
}

func TestEmbed_Normalized(t *testing.T) {
	v := NewEmbedder(64).Embed("randomization schedule for part a")
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Fatalf("norm^2 = %v, want 1", sum)
	}
}

func TestEmbed_SimilarTextsScoreHigher(t *testing.T) {
	e := NewEmbedder(256)
	query := e.Embed("ecg at every visit")
	near := e.Embed("ecg recorded at every visit day")
	far := e.Embed("statistical analysis population definitions")
	if Cosine(query, near) <= Cosine(query, far) {
		t.Fatalf("similar text should score higher: near=%v far=%v",
			Cosine(query, near), Cosine(query, far))
	}
}

func TestEmbed_EmptyText(t *testing.T) {
	v := NewEmbedder(32).Embed("")
	for i, x := range v {
		if x != 0 {
			t.Fatalf("index %d: %v", i, x)
		}
	}
}

func TestCosine_Bounds(t *testing.T) {
	e := NewEmbedder(64)
	v := e.Embed("follow-up window")
	if got := Cosine(v, v); math.Abs(float64(got)-1) > 1e-5 {
		t.Fatalf("self similarity: %v", got)
	}
	if got := Cosine(v, make([]float32, 64)); got != 0 {
		t.Fatalf("zero vector similarity: %v", got)
	}
	if got := Cosine(v, make([]float32, 8)); got != 0 {
		t.Fatalf("length mismatch similarity: %v", got)
	}
}

func TestVectorCodecRoundTrip(t *testing.T) {
	in := NewEmbedder(96).Embed("visit schedule matrix")
	data, err := EncodeVector(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeVector(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch")
	}
}
