package storage

import (
	"context"

	"github.com/mileshkin/companion-bot/internal/models"
)

// Storage guarantees thread continuity per (user, mode) and keeps an
// append-only transcript of every exchange.
type Storage interface {
	// GetThreadID returns the stored thread id for the pair, or "" when the
	// pair has no thread yet.
	GetThreadID(ctx context.Context, userID int64, mode models.Mode) (string, error)

	// GetOrCreateThread atomically stores threadID for the pair and returns
	// the stored id. If a thread already exists, the existing id is returned
	// and threadID is discarded; the stored id is never replaced.
	GetOrCreateThread(ctx context.Context, userID int64, mode models.Mode, threadID string) (string, error)

	// TouchThread updates the pair's last-used timestamp.
	TouchThread(ctx context.Context, userID int64, mode models.Mode) error

	// AddMessage appends one transcript entry. No validation beyond a
	// non-empty thread id is performed.
	AddMessage(ctx context.Context, threadID string, role models.MessageRole, content string) error

	// RecentMessages returns up to limit transcript entries for the thread in
	// chronological order.
	RecentMessages(ctx context.Context, threadID string, limit int) ([]models.ThreadMessage, error)

	Close() error
}
