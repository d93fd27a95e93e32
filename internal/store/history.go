package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// historyLayout is fixed-width so that timestamps sort lexically.
const historyLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RecordFetch appends a download cycle to the history and returns its ID.
func (r *Repository) RecordFetch(ctx context.Context, rec FetchRecord) (int64, error) {
	var errText sql.NullString
	if rec.Error != "" {
		errText = sql.NullString{String: rec.Error, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO fetch_history
		(started_at, finished_at, source, schools_count, sat_count, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.StartedAt.UTC().Format(historyLayout), rec.FinishedAt.UTC().Format(historyLayout),
		rec.Source, rec.Schools, rec.SATScores, string(rec.Status), errText)
	if err != nil {
		return 0, fmt.Errorf("insert fetch history: %w", err)
	}
	return res.LastInsertId()
}

// ListFetchHistory returns up to limit history rows, newest first. A limit of
// zero or less returns every row.
func (r *Repository) ListFetchHistory(ctx context.Context, limit int) ([]FetchRecord, error) {
	q := `SELECT id, started_at, finished_at, source, schools_count, sat_count, status, error
		FROM fetch_history ORDER BY started_at DESC, id DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []FetchRecord
	for rows.Next() {
		var rec FetchRecord
		var started, finished, status string
		var errText sql.NullString
		if err := rows.Scan(&rec.ID, &started, &finished, &rec.Source, &rec.Schools, &rec.SATScores, &status, &errText); err != nil {
			return nil, err
		}
		rec.StartedAt, _ = time.Parse(historyLayout, started)
		rec.FinishedAt, _ = time.Parse(historyLayout, finished)
		rec.Status = FetchStatus(status)
		rec.Error = errText.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LastFetch returns the most recent successful or partial fetch, or nil when
// none has completed yet.
func (r *Repository) LastFetch(ctx context.Context) (*FetchRecord, error) {
	hist, err := r.ListFetchHistory(ctx, 0)
	if err != nil {
		return nil, err
	}
	for _, rec := range hist {
		if rec.Status != FetchFailed {
			rec := rec
			return &rec, nil
		}
	}
	return nil, nil
}
