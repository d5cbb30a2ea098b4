package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"parley/internal/domain"
)

type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Upsert caches the latest record for a thread. The whole row is
// replaced on conflict: the incoming record is the newest state the
// platform gave us, so the latest write wins.
func (r *ConversationRepo) Upsert(ctx context.Context, c domain.Conversation) error {
	threadKey := domain.ThreadKeyFor(c)
	if threadKey == "" {
		return errors.New("conversation has no thread identity")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversations(thread_key, message_key, group_id, contact_id, is_group, title, preview, direction, unread, muted_until, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(thread_key) DO UPDATE SET
			message_key = excluded.message_key,
			group_id = excluded.group_id,
			contact_id = excluded.contact_id,
			is_group = excluded.is_group,
			title = excluded.title,
			preview = excluded.preview,
			direction = excluded.direction,
			unread = excluded.unread,
			muted_until = excluded.muted_until,
			created_at = excluded.created_at
	`, threadKey, c.Key, c.GroupID, c.ContactID, boolToInt(c.IsGroup), c.Title, c.Preview, int(c.Direction), c.Unread, toUnixMillis(c.MutedUntil), toUnixMillis(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}

	return nil
}

// ListRecent returns up to limit cached records, newest first, rows
// without a timestamp last.
func (r *ConversationRepo) ListRecent(ctx context.Context, limit int) ([]domain.Conversation, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT message_key, group_id, contact_id, is_group, title, preview, direction, unread, muted_until, created_at
		FROM conversations
		ORDER BY CASE WHEN created_at > 0 THEN 0 ELSE 1 END, created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Conversation, 0)
	for rows.Next() {
		var (
			conv         domain.Conversation
			isGroupInt   int
			directionInt int
			mutedMs      int64
			createdMs    int64
		)
		if err := rows.Scan(&conv.Key, &conv.GroupID, &conv.ContactID, &isGroupInt, &conv.Title, &conv.Preview, &directionInt, &conv.Unread, &mutedMs, &createdMs); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		conv.IsGroup = isGroupInt != 0
		conv.Direction = domain.Direction(directionInt)
		conv.MutedUntil = fromUnixMillis(mutedMs)
		conv.CreatedAt = fromUnixMillis(createdMs)
		out = append(out, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}

	return out, nil
}

func (r *ConversationRepo) Delete(ctx context.Context, threadKey string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE thread_key = ?`, threadKey); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}

	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}

	return 0
}
