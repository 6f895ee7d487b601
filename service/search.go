package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/viant/docanchor/chunk"
)

// SearchRequest asks for chunks similar to a query text.
type SearchRequest struct {
	VersionID string
	Query     string
	Limit     int
	MinScore  float64
}

// SearchResult is one ranked chunk.
type SearchResult struct {
	Seq       int
	Score     float32
	Section   []string
	Text      string
	AnchorIDs []string
}

// Search ranks the version's chunks by cosine similarity to the query.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	if req.VersionID == "" || req.Query == "" {
		return nil, fmt.Errorf("version id and query are required")
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}
	chunks, err := s.store.Chunks(ctx, req.VersionID)
	if err != nil {
		return nil, err
	}
	qvec := s.embedder.Embed(req.Query)

	var out []SearchResult
	for _, c := range chunks {
		score := chunk.Cosine(qvec, c.Vector)
		if float64(score) < req.MinScore {
			continue
		}
		ids := make([]string, len(c.AnchorIDs))
		for i, id := range c.AnchorIDs {
			ids[i] = id.String()
		}
		out = append(out, SearchResult{
			Seq:       c.Seq,
			Score:     score,
			Section:   c.Section,
			Text:      c.Text,
			AnchorIDs: ids,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out, nil
}
