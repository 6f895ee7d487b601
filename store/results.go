package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/viant/docanchor/anchor"
	"github.com/viant/docanchor/chunk"
	"github.com/viant/docanchor/document"
	"github.com/viant/docanchor/facts"
	"github.com/viant/docanchor/soa"
)

// RunResults bundles everything a successful run produced for a version.
type RunResults struct {
	Anchors anchor.Anchors
	Chunks  []*chunk.Chunk
	Facts   []facts.Fact
	Matrix  soa.Matrix
}

// ReplaceResults atomically supersedes the version's prior anchors and
// swaps in the new run's artifacts. Anchor rows from earlier runs stay
// behind with superseded=1; derived artifacts are replaced wholesale.
func (s *Store) ReplaceResults(ctx context.Context, versionID, runID string, results *RunResults) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE anchor SET superseded = 1 WHERE version_id = ? AND superseded = 0`, versionID); err != nil {
		return err
	}
	for _, table := range []string{"chunk", "fact", "soa_entry", "soa_matrix"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE version_id = ?`, versionID); err != nil {
			return err
		}
	}
	if err := insertAnchors(ctx, tx, versionID, runID, results.Anchors); err != nil {
		return err
	}
	if err := insertChunks(ctx, tx, versionID, runID, results.Chunks); err != nil {
		return err
	}
	if err := insertFacts(ctx, tx, versionID, runID, results.Facts); err != nil {
		return err
	}
	if err := insertMatrix(ctx, tx, versionID, runID, results.Matrix); err != nil {
		return err
	}
	return tx.Commit()
}

func insertAnchors(ctx context.Context, tx *sql.Tx, versionID, runID string, anchors anchor.Anchors) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO anchor(version_id, run_id, id, section_path, content_type,
			ordinal, hash, content, normalized, zone, lang, table_id, row_idx, col_idx, superseded)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,0)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, a := range anchors {
		var tableID any
		if a.Table != nil {
			tableID = a.Table.String()
		}
		if _, err := stmt.ExecContext(ctx, versionID, runID, a.ID.String(),
			anchor.EncodePath(a.ID.Section), string(a.ID.Type), a.ID.Ordinal,
			strconv.FormatUint(a.ID.Hash, 16), a.Text, a.Normalized,
			string(a.Zone), a.Lang, tableID, a.Row, a.Col); err != nil {
			return err
		}
	}
	return nil
}

func insertChunks(ctx context.Context, tx *sql.Tx, versionID, runID string, chunks []*chunk.Chunk) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunk(version_id, run_id, seq, section_path, zone, lang, content, embedding, anchor_ids)
		VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range chunks {
		blob, err := chunk.EncodeVector(c.Vector)
		if err != nil {
			return err
		}
		ids := make([]string, len(c.AnchorIDs))
		for i, id := range c.AnchorIDs {
			ids[i] = id.String()
		}
		idsJSON, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, versionID, runID, c.Seq,
			anchor.EncodePath(c.Section), string(c.Zone), c.Lang, c.Text, blob, string(idsJSON)); err != nil {
			return err
		}
	}
	return nil
}

func insertFacts(ctx context.Context, tx *sql.Tx, versionID, runID string, factList []facts.Fact) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO fact(version_id, run_id, pos, key, value, unit, confidence, anchor_id)
		VALUES(?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, f := range factList {
		if _, err := stmt.ExecContext(ctx, versionID, runID, i, f.Key, f.Value, f.Unit, f.Confidence, f.AnchorID.String()); err != nil {
			return err
		}
	}
	return nil
}

func insertMatrix(ctx context.Context, tx *sql.Tx, versionID, runID string, m soa.Matrix) error {
	visits, err := json.Marshal(m.Visits)
	if err != nil {
		return err
	}
	procedures, err := json.Marshal(m.Procedures)
	if err != nil {
		return err
	}
	var tableAnchor any
	if m.TableID != nil {
		tableAnchor = m.TableID.String()
	}
	found := 0
	if m.Found {
		found = 1
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO soa_matrix(version_id, run_id, found, confidence, table_anchor, visits, procedures)
		VALUES(?,?,?,?,?,?,?)`,
		versionID, runID, found, m.Confidence, tableAnchor, string(visits), string(procedures)); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO soa_entry(version_id, run_id, pos, visit, procedure, value, anchor_id)
		VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, entry := range m.Entries {
		if _, err := stmt.ExecContext(ctx, versionID, runID, i,
			entry.Visit, entry.Procedure, string(entry.Value), entry.AnchorID.String()); err != nil {
			return err
		}
	}
	return nil
}

// AnchorQuery narrows an anchor lookup. Zero fields match everything for
// that dimension; SectionPrefix matches at segment boundaries.
type AnchorQuery struct {
	VersionID         string
	Type              anchor.ContentType
	Zone              document.Zone
	SectionPrefix     []string
	IncludeSuperseded bool
}

// Anchors loads the version's anchors in identifier order.
func (s *Store) Anchors(ctx context.Context, query AnchorQuery) (anchor.Anchors, error) {
	var (
		where = []string{"version_id = ?"}
		args  = []any{query.VersionID}
	)
	if !query.IncludeSuperseded {
		where = append(where, "superseded = 0")
	}
	if query.Type != "" {
		where = append(where, "content_type = ?")
		args = append(args, string(query.Type))
	}
	if query.Zone != "" {
		where = append(where, "zone = ?")
		args = append(args, string(query.Zone))
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, content, COALESCE(normalized, ''), zone, lang, table_id, row_idx, col_idx
		FROM anchor WHERE `+strings.Join(where, " AND ")+`
		ORDER BY rowid`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out anchor.Anchors
	for rows.Next() {
		var (
			idText  string
			zone    string
			tableID sql.NullString
			a       anchor.Anchor
		)
		if err := rows.Scan(&idText, &a.Text, &a.Normalized, &zone, &a.Lang, &tableID, &a.Row, &a.Col); err != nil {
			return nil, err
		}
		if a.ID, err = anchor.ParseID(idText); err != nil {
			return nil, err
		}
		a.Zone = document.Zone(zone)
		if tableID.Valid {
			table, err := anchor.ParseID(tableID.String)
			if err != nil {
				return nil, err
			}
			a.Table = &table
		}
		if !hasSectionPrefix(a.ID.Section, query.SectionPrefix) {
			continue
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func hasSectionPrefix(section, prefix []string) bool {
	if len(prefix) > len(section) {
		return false
	}
	for i := range prefix {
		if section[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Chunks loads the version's chunks in sequence order, vectors decoded.
func (s *Store) Chunks(ctx context.Context, versionID string) ([]*chunk.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT seq, section_path, zone, lang, content, embedding, anchor_ids
		FROM chunk WHERE version_id = ? ORDER BY seq`, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*chunk.Chunk
	for rows.Next() {
		var (
			c           chunk.Chunk
			sectionPath string
			zone        string
			blob        []byte
			idsJSON     string
		)
		if err := rows.Scan(&c.Seq, &sectionPath, &zone, &c.Lang, &c.Text, &blob, &idsJSON); err != nil {
			return nil, err
		}
		c.VersionID = versionID
		c.Section = anchor.DecodePath(sectionPath)
		c.Zone = document.Zone(zone)
		if c.Vector, err = chunk.DecodeVector(blob); err != nil {
			return nil, err
		}
		var ids []string
		if err := json.Unmarshal([]byte(idsJSON), &ids); err != nil {
			return nil, err
		}
		for _, raw := range ids {
			id, err := anchor.ParseID(raw)
			if err != nil {
				return nil, err
			}
			c.AnchorIDs = append(c.AnchorIDs, id)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Facts loads the version's extracted facts, optionally narrowed by key.
func (s *Store) Facts(ctx context.Context, versionID, key string) ([]facts.Fact, error) {
	query := `SELECT key, value, COALESCE(unit, ''), confidence, anchor_id FROM fact WHERE version_id = ?`
	args := []any{versionID}
	if key != "" {
		query += ` AND key = ?`
		args = append(args, key)
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY pos`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []facts.Fact
	for rows.Next() {
		var f facts.Fact
		var anchorID string
		if err := rows.Scan(&f.Key, &f.Value, &f.Unit, &f.Confidence, &anchorID); err != nil {
			return nil, err
		}
		if f.AnchorID, err = anchor.ParseID(anchorID); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Matrix loads the version's schedule matrix. A zero Matrix with
// Found=false means the run saw no qualifying table.
func (s *Store) Matrix(ctx context.Context, versionID string) (soa.Matrix, error) {
	var (
		m           soa.Matrix
		found       int
		tableAnchor sql.NullString
		visits      string
		procedures  string
	)
	err := s.db.QueryRowContext(ctx, `SELECT found, confidence, table_anchor, COALESCE(visits, ''), COALESCE(procedures, '')
		FROM soa_matrix WHERE version_id = ?`, versionID).
		Scan(&found, &m.Confidence, &tableAnchor, &visits, &procedures)
	if err == sql.ErrNoRows {
		return soa.Matrix{}, nil
	}
	if err != nil {
		return soa.Matrix{}, err
	}
	m.Found = found != 0
	if tableAnchor.Valid {
		id, err := anchor.ParseID(tableAnchor.String)
		if err != nil {
			return soa.Matrix{}, err
		}
		m.TableID = &id
	}
	if visits != "" {
		if err := json.Unmarshal([]byte(visits), &m.Visits); err != nil {
			return soa.Matrix{}, err
		}
	}
	if procedures != "" {
		if err := json.Unmarshal([]byte(procedures), &m.Procedures); err != nil {
			return soa.Matrix{}, err
		}
	}
	rows, err := s.db.QueryContext(ctx, `SELECT visit, procedure, value, anchor_id
		FROM soa_entry WHERE version_id = ? ORDER BY pos`, versionID)
	if err != nil {
		return soa.Matrix{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var entry soa.Entry
		var value, anchorID string
		if err := rows.Scan(&entry.Visit, &entry.Procedure, &value, &anchorID); err != nil {
			return soa.Matrix{}, err
		}
		entry.Value = soa.Value(value)
		if entry.AnchorID, err = anchor.ParseID(anchorID); err != nil {
			return soa.Matrix{}, err
		}
		m.Entries = append(m.Entries, entry)
	}
	return m, rows.Err()
}
