// Package chunk groups anchors into retrieval units and computes their
// embedding vectors.
package chunk

import (
	"strings"

	"github.com/viant/docanchor/anchor"
	"github.com/viant/docanchor/document"
)

// DefaultMaxChars is the default character budget per chunk.
const DefaultMaxChars = 2048

// Chunk is a retrieval unit spanning contiguous anchors of one section.
type Chunk struct {
	VersionID string
	Seq       int
	Section   []string
	Zone      document.Zone
	Lang      string
	Text      string
	Vector    []float32
	AnchorIDs []anchor.ID
}

// Chunker partitions chunkable anchors into contiguous, section-bounded
// runs under a character budget. Every heading, paragraph and cell anchor
// lands in exactly one chunk.
type Chunker struct {
	maxChars int
}

// NewChunker creates a Chunker with the given character budget.
func NewChunker(maxChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Chunker{maxChars: maxChars}
}

// Chunk builds the chunk set for one run. Anchors must be in source order.
func (c *Chunker) Chunk(versionID string, anchors anchor.Anchors) []*Chunk {
	var chunks []*Chunk
	var cur *Chunk
	var text strings.Builder
	zones := map[document.Zone]int{}

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = text.String()
		cur.Zone = dominantZone(zones)
		chunks = append(chunks, cur)
		cur = nil
		text.Reset()
		zones = map[document.Zone]int{}
	}

	for _, a := range anchors {
		if !a.ID.Type.Chunkable() {
			continue
		}
		if cur != nil && (!samePath(cur.Section, a.ID.Section) || text.Len()+len(a.Normalized)+1 > c.maxChars) {
			flush()
		}
		if cur == nil {
			cur = &Chunk{
				VersionID: versionID,
				Seq:       len(chunks),
				Section:   a.ID.Section,
				Lang:      a.Lang,
			}
		}
		if text.Len() > 0 {
			text.WriteByte('\n')
		}
		text.WriteString(a.Normalized)
		cur.AnchorIDs = append(cur.AnchorIDs, a.ID)
		zones[a.Zone]++
	}
	flush()
	return chunks
}

func samePath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func dominantZone(zones map[document.Zone]int) document.Zone {
	best := document.ZoneBody
	bestCount := -1
	// Deterministic preference order on ties.
	for _, z := range []document.Zone{document.ZoneBody, document.ZoneAppendix, document.ZoneHeader, document.ZoneFooter} {
		if count := zones[z]; count > bestCount {
			best = z
			bestCount = count
		}
	}
	return best
}
