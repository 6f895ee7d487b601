package chunk

import (
	"math"
	"strings"
)

// DefaultDim is the default embedding dimensionality.
const DefaultDim = 256

// Embedder computes fixed-dimension vectors with a hashed bag-of-tokens
// feature scheme. Deterministic, local, no model involved; suitable for
// approximate nearest-neighbor retrieval over chunks.
type Embedder struct {
	dim int
}

// NewEmbedder creates an Embedder with the given dimensionality.
func NewEmbedder(dim int) *Embedder {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &Embedder{dim: dim}
}

// Dim returns the vector dimensionality.
func (e *Embedder) Dim() int { return e.dim }

// Embed maps text to an L2-normalized feature vector. Each token hashes
// to three signed positions.
func (e *Embedder) Embed(text string) []float32 {
	v := make([]float32, e.dim)
	for _, token := range strings.Fields(text) {
		var h uint32 = 2166136261
		for i := 0; i < len(token); i++ {
			h = h*16777619 ^ uint32(token[i])
		}
		seed := h
		for probe := 0; probe < 3; probe++ {
			seed = seed*1664525 + 1013904223
			idx := int(seed % uint32(e.dim))
			if seed&0x80000000 != 0 {
				v[idx]--
			} else {
				v[idx]++
			}
		}
	}
	normalizeL2(v)
	return v
}

func normalizeL2(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}

// Cosine returns the cosine similarity of two vectors of equal length.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
