package storage

import (
	"context"
	"sync"
	"time"

	"github.com/mileshkin/companion-bot/internal/models"
)

type threadKey struct {
	userID int64
	mode   models.Mode
}

// MemoryStorage is an in-memory Storage used for tests and for running the
// bot without a database (config: database.use_in_memory).
type MemoryStorage struct {
	mu       sync.RWMutex
	threads  map[threadKey]*models.Thread
	messages map[string][]models.ThreadMessage
	nextID   int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		threads:  make(map[threadKey]*models.Thread),
		messages: make(map[string][]models.ThreadMessage),
	}
}

func (s *MemoryStorage) GetThreadID(ctx context.Context, userID int64, mode models.Mode) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if thread, exists := s.threads[threadKey{userID, mode}]; exists {
		return thread.ThreadID, nil
	}
	return "", nil
}

func (s *MemoryStorage) GetOrCreateThread(ctx context.Context, userID int64, mode models.Mode, threadID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := threadKey{userID, mode}
	if thread, exists := s.threads[key]; exists {
		thread.LastUsedAt = time.Now()
		return thread.ThreadID, nil
	}

	now := time.Now()
	s.threads[key] = &models.Thread{
		UserID:     userID,
		Mode:       mode,
		ThreadID:   threadID,
		CreatedAt:  now,
		LastUsedAt: now,
	}
	return threadID, nil
}

func (s *MemoryStorage) TouchThread(ctx context.Context, userID int64, mode models.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if thread, exists := s.threads[threadKey{userID, mode}]; exists {
		thread.LastUsedAt = time.Now()
	}
	return nil
}

func (s *MemoryStorage) AddMessage(ctx context.Context, threadID string, role models.MessageRole, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.messages[threadID] = append(s.messages[threadID], models.ThreadMessage{
		ID:        s.nextID,
		ThreadID:  threadID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *MemoryStorage) RecentMessages(ctx context.Context, threadID string, limit int) ([]models.ThreadMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.messages[threadID]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}

	out := make([]models.ThreadMessage, len(all))
	copy(out, all)
	return out, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
