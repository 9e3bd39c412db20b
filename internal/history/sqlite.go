package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// SQLiteRepository implements Repository using SQLite.
//
// It stores transitions in the power_transitions table created by the
// embedded migrations.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite transition history repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteRepository: Repository instance ready for use
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts a new transition history entry.
func (r *SQLiteRepository) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" || entry.Device == "" {
		return fmt.Errorf("%w: id and device are required", ErrInvalidEntry)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO power_transitions
		 (id, device, from_state, to_state, action, duration_ms, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Device,
		entry.FromState,
		entry.ToState,
		entry.Action,
		entry.Duration.Milliseconds(),
		nullableError(entry.Error),
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting power transition: %w", err)
	}

	return nil
}

// List returns recent transitions for one device, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - device: Unique device identifier
//   - limit: Maximum entries to return (default 50, max 200)
func (r *SQLiteRepository) List(ctx context.Context, device string, limit int) ([]Entry, error) {
	if device == "" {
		return nil, fmt.Errorf("%w: device is required", ErrInvalidEntry)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device, from_state, to_state, action, duration_ms, error, created_at
		 FROM power_transitions
		 WHERE device = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		device,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("querying power transitions: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListAll returns recent transitions across all devices, newest first.
func (r *SQLiteRepository) ListAll(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device, from_state, to_state, action, duration_ms, error, created_at
		 FROM power_transitions
		 ORDER BY created_at DESC
		 LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("querying power transitions: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Prune deletes entries older than the given duration.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - olderThan: Duration to retain (entries older than now-olderThan are deleted)
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM power_transitions WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting power transitions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var entry Entry
		var durationMS int64
		var errMsg sql.NullString
		var createdAt string

		if err := rows.Scan(
			&entry.ID,
			&entry.Device,
			&entry.FromState,
			&entry.ToState,
			&entry.Action,
			&durationMS,
			&errMsg,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning power transition: %w", err)
		}

		entry.Duration = time.Duration(durationMS) * time.Millisecond
		if errMsg.Valid {
			entry.Error = errMsg.String
		}

		timestamp, err := parseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = timestamp

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating power transitions: %w", err)
	}

	return entries, nil
}

func nullableError(msg string) interface{} {
	if msg == "" {
		return nil
	}
	return msg
}

// parseTimestamp parses a timestamp stored in SQLite.
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("created_at is empty")
	}

	timestamp, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return timestamp, nil
	}

	fallback, fallbackErr := time.Parse("2006-01-02T15:04:05Z", value)
	if fallbackErr == nil {
		return fallback, nil
	}

	return time.Time{}, fmt.Errorf("parsing created_at: %w", err)
}
