package clips

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/clips"
	"github.com/dmitrijs2005/clipkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db    *sql.DB
	retry dbx.RetryPolicy
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, retry: dbx.DefaultRetryPolicy}
}

const upsertQuery = `
	INSERT INTO clips (id, type, plain_text, rich_text, html_text, data_uri, captured_at, position)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		type = excluded.type,
		plain_text = excluded.plain_text,
		rich_text = excluded.rich_text,
		html_text = excluded.html_text,
		data_uri = excluded.data_uri,
		captured_at = excluded.captured_at,
		position = excluded.position
`

func upsert(ctx context.Context, db dbx.DBTX, e clips.Entry) error {
	c := e.Clip
	_, err := db.ExecContext(ctx, upsertQuery,
		c.ID, string(c.Type), c.PlainText, c.RichText, c.HTMLText, c.DataURI,
		c.CapturedAt.UnixNano(), e.Rank)
	return err
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]clips.Clip, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, plain_text, rich_text, html_text, data_uri, captured_at
		FROM clips ORDER BY position DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select clips: %w", err)
	}
	defer rows.Close()

	var result []clips.Clip
	for rows.Next() {
		var (
			c        clips.Clip
			typ      string
			captured int64
		)
		if err := rows.Scan(&c.ID, &typ, &c.PlainText, &c.RichText, &c.HTMLText, &c.DataURI, &captured); err != nil {
			return nil, fmt.Errorf("failed to scan clip row: %w", err)
		}
		c.Type = clips.Type(typ)
		c.CapturedAt = time.Unix(0, captured).UTC()
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clip rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, e clips.Entry) error {
	err := dbx.Retry(ctx, r.retry, func() error {
		return upsert(ctx, r.db, e)
	})
	if err != nil {
		return fmt.Errorf("failed to upsert clip %s: %w", e.Clip.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	var n int64
	err := dbx.Retry(ctx, r.retry, func() error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM clips WHERE id IN (`+placeholders+`)`, args...)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete clips: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := dbx.Retry(ctx, r.retry, func() error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM clips WHERE captured_at <= ?`, cutoff.UnixNano())
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired clips: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, entries []clips.Entry) error {
	err := dbx.Retry(ctx, r.retry, func() error {
		return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			if _, err := tx.ExecContext(ctx, `DELETE FROM clips`); err != nil {
				return err
			}
			for _, e := range entries {
				if err := upsert(ctx, tx, e); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("failed to replace clips: %w", err)
	}
	return nil
}
