// Package service orchestrates document ingestion: parsing, heading
// detection, anchoring, chunking, fact and schedule extraction, and
// persistence of the produced artifacts with their run report.
package service

import (
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/docanchor/chunk"
	"github.com/viant/docanchor/facts"
	"github.com/viant/docanchor/heading"
	"github.com/viant/docanchor/soa"
	"github.com/viant/docanchor/store"
)

// PipelineVersion tags every run with the code revision that produced it.
const PipelineVersion = "1.0.0"

// Option configures the Service.
type Option func(*Service)

// WithStore sets an existing store.
func WithStore(st *store.Store) Option {
	return func(s *Service) { s.store = st }
}

// WithDSN sets the SQLite DSN used when opening a store.
func WithDSN(dsn string) Option {
	return func(s *Service) { s.dsn = dsn }
}

// WithConfig sets the ingestion configuration.
func WithConfig(cfg Config) Option {
	return func(s *Service) { s.config = cfg }
}

// WithFS sets the file service used to load source documents.
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// Service exposes ingestion and query operations over one store.
type Service struct {
	fs     afs.Service
	store  *store.Store
	dsn    string
	config Config

	detector  *heading.Detector
	embedder  *chunk.Embedder
	facts     *facts.Extractor
	scheduler *soa.Extractor
}

// New creates a Service.
func New(opts ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	s.config.applyDefaults()
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.store == nil {
		if s.dsn == "" && s.config.DB != "" {
			s.dsn = s.config.DB
		}
		if s.dsn == "" {
			return nil, fmt.Errorf("service: store or dsn required")
		}
		st, err := store.New(store.WithDSN(s.dsn))
		if err != nil {
			return nil, err
		}
		s.store = st
	}
	s.detector = heading.New()
	s.embedder = chunk.NewEmbedder(s.config.EmbedDim)
	s.facts = facts.NewExtractor()
	s.scheduler = soa.NewExtractor()
	return s, nil
}

// Close releases an owned store connection (if any).
func (s *Service) Close() error {
	if s.store != nil && s.dsn != "" {
		return s.store.Close()
	}
	return nil
}

// Store exposes the underlying store.
func (s *Service) Store() *store.Store { return s.store }
