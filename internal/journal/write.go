package journal

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lineality/bytesurgeon/internal/mutate"
)

// Status values for journal entries.
const (
	StatusApplied = "applied"
	StatusFailed  = "failed"
)

// Entry is one mutation audit record.
type Entry struct {
	// ID is a UUIDv7. Record assigns one when empty.
	ID string

	// Seq is the database-assigned logical order. Zero until recorded.
	Seq int64

	Path     string
	Kind     string
	Position int64

	// OldByte and NewByte are the observed/written values; which of the
	// two is meaningful depends on Kind.
	OldByte byte
	NewByte byte

	OriginalSize int64
	NewSize      int64
	Chunks       int64

	// PrefixChecksum and SuffixChecksum are the verification digests,
	// rendered as 16-digit hex.
	PrefixChecksum string
	SuffixChecksum string

	// Status is StatusApplied or StatusFailed.
	Status string

	// Error holds the failure text when Status is StatusFailed.
	Error string
}

// NewEntryID returns a fresh UUIDv7. UUIDv7 embeds a timestamp in the
// most significant bits, so ids sort roughly by creation time.
func NewEntryID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FromReceipt builds an applied entry from a pipeline receipt.
func FromReceipt(r *mutate.Receipt) Entry {
	return Entry{
		Path:           r.Path,
		Kind:           string(r.Kind),
		Position:       r.Position,
		OldByte:        r.OldByte,
		NewByte:        r.NewByte,
		OriginalSize:   r.OriginalSize,
		NewSize:        r.NewSize,
		Chunks:         r.Chunks,
		PrefixChecksum: fmt.Sprintf("%016X", r.PrefixChecksum),
		SuffixChecksum: fmt.Sprintf("%016X", r.SuffixChecksum),
		Status:         StatusApplied,
	}
}

// FromFailure builds a failed entry from a request that did not complete.
func FromFailure(req mutate.Request, opErr error) Entry {
	e := Entry{
		Path:     req.Path,
		Kind:     string(req.Op.Kind),
		Position: req.Position,
		Status:   StatusFailed,
	}
	if req.Op.Kind != mutate.KindRemove {
		e.NewByte = req.Op.Value
	}
	if opErr != nil {
		e.Error = opErr.Error()
	}
	return e
}

// Record inserts an entry and returns its assigned seq.
// Duplicate ids are silently ignored (idempotent); in that case the
// existing row's seq is returned.
func (j *Journal) Record(ctx context.Context, e Entry) (int64, error) {
	if e.ID == "" {
		e.ID = NewEntryID()
	}

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO mutations
		(id, path, kind, position, old_byte, new_byte, original_size, new_size,
		 chunks, prefix_checksum, suffix_checksum, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		e.Path,
		e.Kind,
		e.Position,
		int64(e.OldByte),
		int64(e.NewByte),
		e.OriginalSize,
		e.NewSize,
		e.Chunks,
		e.PrefixChecksum,
		e.SuffixChecksum,
		e.Status,
		e.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("record mutation: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("record mutation: rows affected: %w", err)
	}

	if affected > 0 {
		seq, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("record mutation: last insert id: %w", err)
		}
		return seq, nil
	}

	// Conflict: the id was already recorded; return the existing seq.
	var seq int64
	err = j.db.QueryRowContext(ctx, `SELECT seq FROM mutations WHERE id = ?`, e.ID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("record mutation: select existing: %w", err)
	}
	return seq, nil
}
