package conversations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// LogItem is one entry of a thread's message log.
type LogItem struct {
	// UserID is nil for events. uuid.Nil marks the companion's own messages.
	UserID    *uuid.UUID
	UserName  string
	Content   string
	CreatedAt time.Time
}

// IsEvent reports whether the item is an event rather than a message.
func (i LogItem) IsEvent() bool {
	return i.UserID == nil
}

// IsOwnMessage reports whether the companion wrote the message.
func (i LogItem) IsOwnMessage() bool {
	return i.UserID != nil && *i.UserID == uuid.Nil
}

// Store reads thread message logs. Writing them is the chat service's job.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ThreadExists reports whether a thread with the given id exists.
func (s *Store) ThreadExists(ctx context.Context, threadID string) (bool, error) {
	query := sq.Select("1").
		From("threads").
		Where(sq.Eq{"id": threadID}).
		Limit(1)

	queryStr, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, queryStr, args...).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query thread %s: %w", threadID, err)
	default:
		return true, nil
	}
}

// RecentMessages returns up to limit log items of a thread, newest first.
// A limit of zero or less returns the whole thread.
func (s *Store) RecentMessages(ctx context.Context, threadID string, limit int) ([]LogItem, error) {
	query := sq.Select("m.user_id", "COALESCE(u.name, '')", "m.content", "m.created_at").
		From("messages m").
		LeftJoin("users u ON u.id = m.user_id").
		Where(sq.Eq{"m.thread_id": threadID}).
		OrderBy("m.created_at DESC", "m.rowid DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	queryStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, queryStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages of thread %s: %w", threadID, err)
	}
	defer rows.Close() //nolint:errcheck // rows.Err is checked below

	var items []LogItem
	for rows.Next() {
		var (
			userID    sql.NullString
			item      LogItem
			createdAt int64
		)
		if err := rows.Scan(&userID, &item.UserName, &item.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if userID.Valid {
			id, err := uuid.Parse(userID.String)
			if err != nil {
				return nil, fmt.Errorf("message has invalid user id %q: %w", userID.String, err)
			}
			item.UserID = &id
		}
		item.CreatedAt = time.Unix(createdAt, 0).UTC()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read messages of thread %s: %w", threadID, err)
	}
	return items, nil
}
