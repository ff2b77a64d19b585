package store

import (
	"context"
	"strings"
	"time"

	"buyerfinder/internal/domain"
	"buyerfinder/internal/engine"
	"buyerfinder/internal/source/util"
)

// SaveRun records one consolidation run and its full prospect list, keyed by
// identity key so re-saving the same run's output cannot duplicate rows.
func (d *DB) SaveRun(ctx context.Context, startedAt time.Time, stats engine.Stats, prospects []domain.Prospect) (int64, error) {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO runs(started_at, raw_in, rejected, merged, final)
VALUES(?,?,?,?,?);`,
		startedAt.UTC().Format(time.RFC3339),
		stats.RawIn, stats.Rejected, stats.Merged, stats.Final,
	)
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, p := range prospects {
		sources := make([]string, 0, len(p.Sources))
		for _, k := range p.Sources {
			sources = append(sources, string(k))
		}

		_, err = tx.ExecContext(ctx, `
INSERT OR IGNORE INTO prospects(run_id, identity_key, name, phone, phone_display, address, website, category, prospect_type, score, sources)
VALUES(?,?,?,?,?,?,?,?,?,?,?);`,
			runID,
			util.HashString(engine.IdentityKey(p)),
			p.Name,
			p.Phone,
			p.PhoneDisplay,
			p.Address,
			p.Website,
			p.Category,
			string(p.Type),
			p.Score,
			strings.Join(sources, ","),
		)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// ListTop returns the highest-scoring prospects of a run, ties in insertion
// order (which is the pipeline's first-seen order).
func (d *DB) ListTop(ctx context.Context, runID int64, limit int) ([]domain.Prospect, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT name, phone, phone_display, address, website, category, prospect_type, score, sources
FROM prospects
WHERE run_id = ?
ORDER BY score DESC, id ASC
LIMIT ?;`, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Prospect
	for rows.Next() {
		var p domain.Prospect
		var ptype, sources string
		if err := rows.Scan(&p.Name, &p.Phone, &p.PhoneDisplay, &p.Address, &p.Website,
			&p.Category, &ptype, &p.Score, &sources); err != nil {
			return nil, err
		}
		p.Type = domain.ProspectType(ptype)
		for _, s := range strings.Split(sources, ",") {
			if s != "" {
				p.Sources = append(p.Sources, domain.SourceKind(s))
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
