package journal

import (
	"context"
	"database/sql"
	"fmt"
)

const entryColumns = `seq, id, path, kind, position, old_byte, new_byte,
	original_size, new_size, chunks, prefix_checksum, suffix_checksum, status, error`

// List returns all entries for a path, ordered by seq.
func (j *Journal) List(ctx context.Context, path string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM mutations
		WHERE path = ?
		ORDER BY seq ASC, id ASC
	`, path)
	if err != nil {
		return nil, fmt.Errorf("list mutations: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// All returns every entry in the journal, ordered by seq.
func (j *Journal) All(ctx context.Context) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM mutations
		ORDER BY seq ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list mutations: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// LastSeq returns the highest assigned seq, or 0 for an empty journal.
func (j *Journal) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := j.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM mutations`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var oldByte, newByte int64
		if err := rows.Scan(
			&e.Seq,
			&e.ID,
			&e.Path,
			&e.Kind,
			&e.Position,
			&oldByte,
			&newByte,
			&e.OriginalSize,
			&e.NewSize,
			&e.Chunks,
			&e.PrefixChecksum,
			&e.SuffixChecksum,
			&e.Status,
			&e.Error,
		); err != nil {
			return nil, fmt.Errorf("scan mutation row: %w", err)
		}
		e.OldByte = byte(oldByte)
		e.NewByte = byte(newByte)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mutation rows: %w", err)
	}
	return entries, nil
}
