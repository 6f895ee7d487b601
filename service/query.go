package service

import (
	"context"

	"github.com/viant/docanchor/anchor"
	"github.com/viant/docanchor/facts"
	"github.com/viant/docanchor/soa"
	"github.com/viant/docanchor/store"
)

// Anchors returns a version's anchors, narrowed by the query.
func (s *Service) Anchors(ctx context.Context, query store.AnchorQuery) (anchor.Anchors, error) {
	return s.store.Anchors(ctx, query)
}

// Facts returns a version's extracted facts, optionally by key.
func (s *Service) Facts(ctx context.Context, versionID, key string) ([]facts.Fact, error) {
	return s.store.Facts(ctx, versionID, key)
}

// Matrix returns a version's schedule matrix.
func (s *Service) Matrix(ctx context.Context, versionID string) (soa.Matrix, error) {
	return s.store.Matrix(ctx, versionID)
}

// Runs returns a version's run history, most recent first.
func (s *Service) Runs(ctx context.Context, versionID string) ([]*store.Run, error) {
	return s.store.ListRuns(ctx, versionID)
}

// Version returns a document version's record.
func (s *Service) Version(ctx context.Context, versionID string) (*store.Version, error) {
	return s.store.GetVersion(ctx, versionID)
}
