// Package anchor assigns every leaf of an annotated content tree a
// deterministic, addressable identifier. Identifiers are structured
// tuples internally; the documented string form exists only at the
// interface boundary.
package anchor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/docanchor/document"
)

// ContentType classifies what an anchor points at.
type ContentType string

const (
	ContentHeading   ContentType = "h"
	ContentParagraph ContentType = "p"
	ContentCell      ContentType = "cell"
	ContentTable     ContentType = "tbl"
)

// Chunkable reports whether anchors of this type participate in chunking.
func (c ContentType) Chunkable() bool {
	return c == ContentHeading || c == ContentParagraph || c == ContentCell
}

// ID identifies an anchor. Equal content at an equal position always
// produces an equal ID, across runs and processes.
type ID struct {
	VersionID string
	Section   []string
	Type      ContentType
	Ordinal   int
	Hash      uint64
}

// String serializes the ID to the documented form
// {version}:{section-path}:{type}:{ordinal}:{hash}. Section segments are
// joined with '/'; delimiter characters inside segments are escaped so
// the form stays parseable for any section title.
func (id ID) String() string {
	var b strings.Builder
	b.WriteString(escapeSegment(id.VersionID))
	b.WriteByte(':')
	for i, seg := range id.Section {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(escapeSegment(seg))
	}
	b.WriteByte(':')
	b.WriteString(string(id.Type))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(id.Ordinal))
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(id.Hash, 16))
	return b.String()
}

// ParseID is the inverse of String.
func ParseID(s string) (ID, error) {
	parts := splitEscaped(s, ':')
	if len(parts) != 5 {
		return ID{}, fmt.Errorf("anchor id %q: expected 5 segments, got %d", s, len(parts))
	}
	var id ID
	id.VersionID = unescapeSegment(parts[0])
	if parts[1] != "" {
		for _, seg := range splitEscaped(parts[1], '/') {
			id.Section = append(id.Section, unescapeSegment(seg))
		}
	}
	id.Type = ContentType(parts[2])
	switch id.Type {
	case ContentHeading, ContentParagraph, ContentCell, ContentTable:
	default:
		return ID{}, fmt.Errorf("anchor id %q: unknown content type %q", s, parts[2])
	}
	ordinal, err := strconv.Atoi(parts[3])
	if err != nil || ordinal < 0 {
		return ID{}, fmt.Errorf("anchor id %q: bad ordinal %q", s, parts[3])
	}
	id.Ordinal = ordinal
	hash, err := strconv.ParseUint(parts[4], 16, 64)
	if err != nil {
		return ID{}, fmt.Errorf("anchor id %q: bad hash %q", s, parts[4])
	}
	id.Hash = hash
	return id, nil
}

// EncodePath serializes a section path with the identifier escaping, for
// storage and query matching.
func EncodePath(section []string) string {
	var b strings.Builder
	for i, seg := range section {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(escapeSegment(seg))
	}
	return b.String()
}

// DecodePath is the inverse of EncodePath.
func DecodePath(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, seg := range splitEscaped(s, '/') {
		out = append(out, unescapeSegment(seg))
	}
	return out
}

func escapeSegment(s string) string {
	if !strings.ContainsAny(s, `\:/`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', ':', '/':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func unescapeSegment(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for i := 0; i < len(s); i++ {
		if !escaped && s[i] == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteByte(s[i])
	}
	return b.String()
}

// splitEscaped splits on sep, honoring backslash escapes. Escapes are
// preserved in the returned parts for unescapeSegment.
func splitEscaped(s string, sep byte) []string {
	var parts []string
	var cur strings.Builder
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			cur.WriteByte(c)
			escaped = false
			continue
		}
		switch c {
		case '\\':
			cur.WriteByte(c)
			escaped = true
		case sep:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

// Anchor is the atomic addressable unit of content. For cells, Table
// references the owning table anchor and Row/Col give the grid position.
type Anchor struct {
	ID         ID
	Text       string
	Normalized string
	Zone       document.Zone
	Lang       string
	Table      *ID
	Row        int
	Col        int
}

// Anchors is an ordered anchor collection.
type Anchors []*Anchor

// OfType returns anchors of one content type, preserving order.
func (a Anchors) OfType(t ContentType) Anchors {
	var out Anchors
	for _, an := range a {
		if an.ID.Type == t {
			out = append(out, an)
		}
	}
	return out
}

// IDSet returns the serialized identifiers of all anchors.
func (a Anchors) IDSet() map[string]bool {
	out := make(map[string]bool, len(a))
	for _, an := range a {
		out[an.ID.String()] = true
	}
	return out
}
