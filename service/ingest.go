package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/viant/docanchor/anchor"
	"github.com/viant/docanchor/chunk"
	"github.com/viant/docanchor/parser"
	"github.com/viant/docanchor/store"
	"golang.org/x/sync/errgroup"
)

// IngestRequest asks for one document version to be ingested.
type IngestRequest struct {
	VersionID string
	SourceURL string
	Lang      string
	Data      []byte // optional preloaded payload; SourceURL still names the file
	Force     bool   // re-ingest even when the version is already ready
	Logf      func(format string, args ...any)
}

// IngestResponse reports the run outcome.
type IngestResponse struct {
	RunID     string
	VersionID string
	Status    string
	Skipped   bool
	Summary   Summary
	Quality   Quality
	Warnings  []string
}

// Summary counts what a run produced.
type Summary struct {
	Anchors       int  `json:"anchors"`
	Headings      int  `json:"headings"`
	Paragraphs    int  `json:"paragraphs"`
	Tables        int  `json:"tables"`
	Cells         int  `json:"cells"`
	Chunks        int  `json:"chunks"`
	Facts         int  `json:"facts"`
	ScheduleFound bool `json:"scheduleFound"`
}

// Quality carries the signals that routed the run to ready or
// needs_review.
type Quality struct {
	HeadingCount       int     `json:"headingCount"`
	HeadingConfidence  float64 `json:"headingConfidence"`
	HeadingDegraded    bool    `json:"headingDegraded"`
	FactGapRate        float64 `json:"factGapRate"`
	ScheduleFound      bool    `json:"scheduleFound"`
	ScheduleConfidence float64 `json:"scheduleConfidence"`
}

// Ingest runs the full pipeline for one document version. Validation
// failures reject the version before any run starts; a concurrent run on
// the same version fails fast with store.ErrRunConflict.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*IngestResponse, error) {
	if req.VersionID == "" || req.SourceURL == "" {
		return nil, fmt.Errorf("version id and source url are required")
	}
	logf := req.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	lang := req.Lang
	if lang == "" {
		lang = "en"
	}

	format, err := parser.Detect(req.SourceURL)
	if err != nil {
		// Rejected at validation: the version never enters processing, and
		// a version that already finished successfully keeps its status.
		if v, getErr := s.store.GetVersion(ctx, req.VersionID); getErr == nil &&
			(v == nil || (v.Status != store.StatusReady && v.Status != store.StatusNeedsReview)) {
			_ = s.store.UpsertVersion(ctx, &store.Version{
				ID: req.VersionID, SourceURI: req.SourceURL, Lang: lang,
				Status: store.StatusFailed,
			})
		}
		return nil, err
	}

	if !req.Force {
		if resp, ok, err := s.reuseExisting(ctx, req.VersionID); err != nil {
			return nil, err
		} else if ok {
			logf("ingest version=%s skipped status=%s", req.VersionID, resp.Status)
			return resp, nil
		}
	}

	owner := uuid.New().String()
	ttl := time.Duration(s.config.LeaseTTLSec) * time.Second
	if err := s.store.AcquireLease(ctx, req.VersionID, owner, ttl); err != nil {
		return nil, err
	}
	defer func() { _ = s.store.ReleaseLease(context.WithoutCancel(ctx), req.VersionID, owner) }()

	if err := s.store.UpsertVersion(ctx, &store.Version{
		ID: req.VersionID, SourceURI: req.SourceURL, Format: string(format), Lang: lang,
		Status: store.StatusProcessing,
	}); err != nil {
		return nil, err
	}
	run := &store.Run{
		ID:              uuid.New().String(),
		VersionID:       req.VersionID,
		Status:          store.StatusProcessing,
		PipelineVersion: PipelineVersion,
		ConfigHash:      s.config.Hash(),
		StartedAt:       time.Now(),
	}
	if err := s.store.InsertRun(ctx, run); err != nil {
		return nil, err
	}
	logf("ingest start version=%s run=%s format=%s", req.VersionID, run.ID, format)

	resp, err := s.runPipeline(ctx, req, run, format, lang, logf)
	if err != nil {
		s.finishFailed(ctx, run, err)
		return nil, err
	}
	return resp, nil
}

// reuseExisting returns the latest run when the version already finished
// with the same pipeline and configuration.
func (s *Service) reuseExisting(ctx context.Context, versionID string) (*IngestResponse, bool, error) {
	v, err := s.store.GetVersion(ctx, versionID)
	if err != nil || v == nil {
		return nil, false, err
	}
	if v.Status != store.StatusReady && v.Status != store.StatusNeedsReview {
		return nil, false, nil
	}
	run, err := s.store.LatestRun(ctx, versionID)
	if err != nil || run == nil {
		return nil, false, err
	}
	if run.PipelineVersion != PipelineVersion || run.ConfigHash != s.config.Hash() {
		return nil, false, nil
	}
	resp := &IngestResponse{
		RunID:     run.ID,
		VersionID: versionID,
		Status:    v.Status,
		Skipped:   true,
		Warnings:  run.Warnings,
	}
	_ = json.Unmarshal(run.Summary, &resp.Summary)
	_ = json.Unmarshal(run.Quality, &resp.Quality)
	return resp, true, nil
}

func (s *Service) runPipeline(ctx context.Context, req IngestRequest, run *store.Run, format parser.Format, lang string, logf func(string, ...any)) (*IngestResponse, error) {
	data := req.Data
	if len(data) == 0 {
		var err error
		if data, err = s.fs.DownloadWithURL(ctx, req.SourceURL); err != nil {
			return nil, fmt.Errorf("load source: %w", err)
		}
	}
	p, err := parser.New(format)
	if err != nil {
		return nil, err
	}
	tree, err := p.Parse(data)
	if err != nil {
		return nil, err
	}
	if tree.Lang == "" {
		tree.Lang = lang
	}

	var warnings []string
	headings := s.detector.Annotate(tree)
	if headings.Degraded {
		warnings = append(warnings, "no headings detected, using flat section fallback")
	}
	if format == parser.FormatPDF && len(tree.Tables()) == 0 {
		warnings = append(warnings, "pdf layout reconstruction is heuristic and exposes no tables")
	}

	anchors := anchor.NewBuilder(req.VersionID, lang).Build(tree)
	chunks := chunk.NewChunker(s.config.ChunkMaxChars).Chunk(req.VersionID, anchors)
	var g errgroup.Group
	g.SetLimit(s.config.EmbedWorkers)
	for _, c := range chunks {
		c := c
		g.Go(func() error {
			c.Vector = s.embedder.Embed(c.Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	factList, coverage := s.facts.Extract(anchors)
	matrix := s.scheduler.Extract(anchors)
	if !matrix.Found {
		warnings = append(warnings, fmt.Sprintf("schedule of activities not found (best score %.2f)", matrix.Confidence))
	}

	quality := Quality{
		HeadingCount:       headings.Count,
		HeadingConfidence:  headings.Confidence,
		HeadingDegraded:    headings.Degraded,
		FactGapRate:        coverage.GapRate(),
		ScheduleFound:      matrix.Found,
		ScheduleConfidence: matrix.Confidence,
	}
	summary := Summary{
		Anchors:       len(anchors),
		Headings:      len(anchors.OfType(anchor.ContentHeading)),
		Paragraphs:    len(anchors.OfType(anchor.ContentParagraph)),
		Tables:        len(anchors.OfType(anchor.ContentTable)),
		Cells:         len(anchors.OfType(anchor.ContentCell)),
		Chunks:        len(chunks),
		Facts:         len(factList),
		ScheduleFound: matrix.Found,
	}
	status := s.resolveStatus(quality)

	if err := s.store.ReplaceResults(ctx, req.VersionID, run.ID, &store.RunResults{
		Anchors: anchors,
		Chunks:  chunks,
		Facts:   factList,
		Matrix:  matrix,
	}); err != nil {
		return nil, err
	}

	run.Status = status
	run.Warnings = warnings
	run.FinishedAt = time.Now()
	run.Duration = run.FinishedAt.Sub(run.StartedAt)
	if run.Summary, err = json.Marshal(summary); err != nil {
		return nil, err
	}
	if run.Quality, err = json.Marshal(quality); err != nil {
		return nil, err
	}
	if err := s.store.FinishRun(ctx, run); err != nil {
		return nil, err
	}
	if err := s.store.SetVersionStatus(ctx, req.VersionID, status); err != nil {
		return nil, err
	}
	logf("ingest done version=%s run=%s status=%s anchors=%d chunks=%d facts=%d schedule=%t duration=%s",
		req.VersionID, run.ID, status, summary.Anchors, summary.Chunks, summary.Facts, matrix.Found, run.Duration)

	return &IngestResponse{
		RunID:     run.ID,
		VersionID: req.VersionID,
		Status:    status,
		Summary:   summary,
		Quality:   quality,
		Warnings:  warnings,
	}, nil
}

// resolveStatus routes a completed run by its quality signals.
func (s *Service) resolveStatus(q Quality) string {
	switch {
	case q.HeadingDegraded,
		q.HeadingConfidence < s.config.Quality.MinHeadingConfidence,
		q.FactGapRate > s.config.Quality.MaxFactGapRate,
		s.config.Quality.RequireSchedule && !q.ScheduleFound:
		return store.StatusNeedsReview
	default:
		return store.StatusReady
	}
}

// finishFailed records a pipeline error on both the run and the version.
// The source context may already be canceled, so a detached one is used.
func (s *Service) finishFailed(ctx context.Context, run *store.Run, cause error) {
	ctx = context.WithoutCancel(ctx)
	run.Status = store.StatusFailed
	run.Errors = append(run.Errors, cause.Error())
	run.FinishedAt = time.Now()
	run.Duration = run.FinishedAt.Sub(run.StartedAt)
	_ = s.store.FinishRun(ctx, run)
	_ = s.store.SetVersionStatus(ctx, run.VersionID, store.StatusFailed)
}
