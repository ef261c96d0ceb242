package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/uwu/internal/errors"
	"github.com/hpungsan/uwu/internal/record"
)

const recordColumns = `
	id, input_hash, input, output, input_chars, output_chars,
	options_json, source, markdown, fallback, created_at`

// Insert stores a new record in the database.
func Insert(ctx context.Context, db *sql.DB, r *record.Record) error {
	query := `INSERT INTO transforms (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.ExecContext(ctx, query,
		r.ID, r.InputHash, r.Input, r.Output, r.InputChars, r.OutputChars,
		r.Options, r.Source, r.Markdown, r.Fallback, r.CreatedAt,
	)
	if err != nil {
		return errors.NewIO(err)
	}
	return nil
}

// GetByID retrieves a record by its ULID.
func GetByID(ctx context.Context, db *sql.DB, id string) (*record.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM transforms WHERE id = ?`

	r, err := scanRecord(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewIO(err)
	}
	return r, nil
}

// ListFilters narrows List results. Zero values match everything.
type ListFilters struct {
	Source    string
	InputHash string
}

func (f ListFilters) where() (string, []any) {
	clause := " WHERE 1=1"
	var args []any
	if f.Source != "" {
		clause += " AND source = ?"
		args = append(args, f.Source)
	}
	if f.InputHash != "" {
		clause += " AND input_hash = ?"
		args = append(args, f.InputHash)
	}
	return clause, args
}

// List returns record summaries, newest first, plus the total matching count.
func List(ctx context.Context, db *sql.DB, filters ListFilters, limit, offset int) ([]record.Summary, int, error) {
	where, args := filters.where()

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transforms`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewIO(err)
	}

	query := `SELECT ` + recordColumns + ` FROM transforms` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewIO(err)
	}
	defer rows.Close()

	var summaries []record.Summary
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, errors.NewIO(err)
		}
		summaries = append(summaries, r.ToSummary())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewIO(err)
	}

	return summaries, total, nil
}

// Purge permanently deletes records. When olderThanDays is set only records
// created before (now - N days) are removed. Returns the number deleted.
func Purge(ctx context.Context, db *sql.DB, olderThanDays *int) (int, error) {
	query := `DELETE FROM transforms`
	var args []any
	if olderThanDays != nil {
		cutoff := time.Now().Add(-time.Duration(*olderThanDays) * 24 * time.Hour).Unix()
		query += ` WHERE created_at < ?`
		args = append(args, cutoff)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewIO(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewIO(err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a single row into a Record struct.
func scanRecord(row scanner) (*record.Record, error) {
	var r record.Record
	err := row.Scan(
		&r.ID, &r.InputHash, &r.Input, &r.Output, &r.InputChars, &r.OutputChars,
		&r.Options, &r.Source, &r.Markdown, &r.Fallback, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
