package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Version lifecycle statuses.
const (
	StatusPending     = "pending"
	StatusProcessing  = "processing"
	StatusReady       = "ready"
	StatusNeedsReview = "needs_review"
	StatusFailed      = "failed"
)

// Version is one immutable document version under ingestion.
type Version struct {
	ID        string
	SourceURI string
	Format    string
	Lang      string
	Status    string
	UpdatedAt time.Time
}

// Run records one ingestion attempt over a version.
type Run struct {
	ID              string
	VersionID       string
	Status          string
	PipelineVersion string
	ConfigHash      string
	Summary         json.RawMessage
	Quality         json.RawMessage
	Warnings        []string
	Errors          []string
	StartedAt       time.Time
	FinishedAt      time.Time
	Duration        time.Duration
}

// UpsertVersion inserts or refreshes a document version row.
func (s *Store) UpsertVersion(ctx context.Context, v *Version) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO doc_version(id, source_uri, format, lang, status, updated_at)
		VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			source_uri = excluded.source_uri,
			format     = excluded.format,
			lang       = excluded.lang,
			status     = excluded.status,
			updated_at = CURRENT_TIMESTAMP`,
		v.ID, v.SourceURI, v.Format, v.Lang, v.Status)
	return err
}

// SetVersionStatus advances the version lifecycle state.
func (s *Store) SetVersionStatus(ctx context.Context, versionID, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE doc_version SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, status, versionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: unknown version %q", versionID)
	}
	return nil
}

// GetVersion loads one document version.
func (s *Store) GetVersion(ctx context.Context, versionID string) (*Version, error) {
	v := &Version{}
	err := s.db.QueryRowContext(ctx, `SELECT id, source_uri, format, lang, status, updated_at
		FROM doc_version WHERE id = ?`, versionID).
		Scan(&v.ID, &v.SourceURI, &v.Format, &v.Lang, &v.Status, &v.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// InsertRun records the start of an ingestion run.
func (s *Store) InsertRun(ctx context.Context, run *Run) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO ingestion_run(id, version_id, status, pipeline_version, config_hash, started_at)
		VALUES(?, ?, ?, ?, ?, ?)`,
		run.ID, run.VersionID, run.Status, run.PipelineVersion, run.ConfigHash, run.StartedAt.UTC())
	return err
}

// FinishRun stores the run outcome, report payloads included.
func (s *Store) FinishRun(ctx context.Context, run *Run) error {
	warnings, err := json.Marshal(run.Warnings)
	if err != nil {
		return err
	}
	errs, err := json.Marshal(run.Errors)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE ingestion_run SET
			status      = ?,
			summary     = ?,
			quality     = ?,
			warnings    = ?,
			errors      = ?,
			finished_at = ?,
			duration_ms = ?
		WHERE id = ?`,
		run.Status, string(run.Summary), string(run.Quality), string(warnings), string(errs),
		run.FinishedAt.UTC(), run.Duration.Milliseconds(), run.ID)
	return err
}

// ListRuns returns a version's runs, most recent first.
func (s *Store) ListRuns(ctx context.Context, versionID string) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, version_id, status, pipeline_version, config_hash,
			COALESCE(summary, ''), COALESCE(quality, ''), COALESCE(warnings, ''), COALESCE(errors, ''),
			started_at, COALESCE(finished_at, started_at), duration_ms
		FROM ingestion_run WHERE version_id = ?
		ORDER BY started_at DESC, id DESC`, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Run
	for rows.Next() {
		run := &Run{}
		var summary, quality, warnings, errs string
		var durationMS int64
		if err := rows.Scan(&run.ID, &run.VersionID, &run.Status, &run.PipelineVersion, &run.ConfigHash,
			&summary, &quality, &warnings, &errs,
			&run.StartedAt, &run.FinishedAt, &durationMS); err != nil {
			return nil, err
		}
		run.Summary = json.RawMessage(summary)
		run.Quality = json.RawMessage(quality)
		run.Duration = time.Duration(durationMS) * time.Millisecond
		if warnings != "" {
			if err := json.Unmarshal([]byte(warnings), &run.Warnings); err != nil {
				return nil, err
			}
		}
		if errs != "" {
			if err := json.Unmarshal([]byte(errs), &run.Errors); err != nil {
				return nil, err
			}
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// LatestRun returns the most recent run for a version, nil when none ran.
func (s *Store) LatestRun(ctx context.Context, versionID string) (*Run, error) {
	runs, err := s.ListRuns(ctx, versionID)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return runs[0], nil
}
