package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/koru-wellness/koru/internal/domain"
)

// ReadRecord returns the stored record, or domain.ErrRecordNotFound.
func (s *Store) ReadRecord(ctx context.Context, collection, id string) (domain.Record, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM records WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeBody(body)
}

// WriteRecord stores a record. With merge=true, fields absent from data keep
// their stored values instead of being clobbered.
func (s *Store) WriteRecord(ctx context.Context, collection, id string, data domain.Record, merge bool) error {
	if !merge {
		return s.upsert(ctx, s.db, collection, id, data)
	}
	return s.UpdateRecord(ctx, collection, id, func(current domain.Record) (domain.Record, error) {
		if current == nil {
			return data, nil
		}
		for k, v := range data {
			current[k] = v
		}
		return current, nil
	})
}

// UpdateRecord applies fn to the current record (nil if absent) and writes
// the result back in one transaction. With a single connection in the pool,
// concurrent read-modify-write cycles serialize here instead of racing.
func (s *Store) UpdateRecord(ctx context.Context, collection, id string, fn func(domain.Record) (domain.Record, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var current domain.Record
	var body string
	err = tx.QueryRowContext(ctx,
		`SELECT body FROM records WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&body)
	switch {
	case err == sql.ErrNoRows:
		current = nil
	case err != nil:
		return err
	default:
		if current, err = decodeBody(body); err != nil {
			return err
		}
	}

	updated, err := fn(current)
	if err != nil {
		return err
	}
	if updated == nil {
		return tx.Commit() // fn declined to write
	}

	if err := s.upsert(ctx, tx, collection, id, updated); err != nil {
		return err
	}
	return tx.Commit()
}

// AppendRecord adds a record to an append-only collection under a generated
// UUID and returns that ID.
func (s *Store) AppendRecord(ctx context.Context, collection string, data domain.Record) (string, error) {
	id := uuid.NewString()
	if err := s.upsert(ctx, s.db, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// QueryRecords returns records matching the query, in query order.
// Filters and ordering address JSON fields of the record body.
func (s *Store) QueryRecords(ctx context.Context, collection string, q domain.Query) ([]domain.Record, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT id, body FROM records WHERE collection = ?`)
	args := []any{collection}

	for _, f := range q.Filters {
		op, err := filterOp(f.Op)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&sb, ` AND json_extract(body, '$.%s') %s ?`, f.Field, op)
		args = append(args, f.Value)
	}

	if q.OrderBy != "" {
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, ` ORDER BY json_extract(body, '$.%s') %s`, q.OrderBy, dir)
	}
	if q.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		rec, err := decodeBody(body)
		if err != nil {
			return nil, err
		}
		rec["id"] = id
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// execer covers *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) upsert(ctx context.Context, e execer, collection, id string, data domain.Record) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	now := time.Now().Unix()
	_, err = e.ExecContext(ctx,
		`INSERT INTO records (collection, id, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(collection, id) DO UPDATE SET body=excluded.body, updated_at=excluded.updated_at`,
		collection, id, string(body), now, now,
	)
	return err
}

func decodeBody(body string) (domain.Record, error) {
	var rec domain.Record
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func filterOp(op string) (string, error) {
	switch op {
	case "==", "=":
		return "=", nil
	case ">=", "<=", ">", "<":
		return op, nil
	default:
		return "", fmt.Errorf("unsupported filter op %q", op)
	}
}
