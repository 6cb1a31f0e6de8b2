package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/mileshkin/companion-bot/internal/models"
	"go.uber.org/zap"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func (s *PostgresStorage) GetThreadID(ctx context.Context, userID int64, mode models.Mode) (string, error) {
	query := `
		SELECT thread_id
		FROM threads
		WHERE user_id = $1 AND mode = $2`

	var threadID string
	err := s.db.QueryRowContext(ctx, query, userID, mode).Scan(&threadID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error querying thread: %w", err)
	}

	return threadID, nil
}

// GetOrCreateThread relies on the (user_id, mode) primary key: the upsert
// either inserts the new mapping or returns the already stored thread id, so
// two near-simultaneous first contacts cannot create two threads for one pair.
func (s *PostgresStorage) GetOrCreateThread(ctx context.Context, userID int64, mode models.Mode, threadID string) (string, error) {
	query := `
		INSERT INTO threads (user_id, mode, thread_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, mode) DO UPDATE SET last_used_at = now()
		RETURNING thread_id`

	var stored string
	if err := s.db.QueryRowContext(ctx, query, userID, mode, threadID).Scan(&stored); err != nil {
		return "", fmt.Errorf("error creating thread: %w", err)
	}

	return stored, nil
}

func (s *PostgresStorage) TouchThread(ctx context.Context, userID int64, mode models.Mode) error {
	query := `
		UPDATE threads
		SET last_used_at = now()
		WHERE user_id = $1 AND mode = $2`

	if _, err := s.db.ExecContext(ctx, query, userID, mode); err != nil {
		return fmt.Errorf("error touching thread: %w", err)
	}

	return nil
}

func (s *PostgresStorage) AddMessage(ctx context.Context, threadID string, role models.MessageRole, content string) error {
	query := `
		INSERT INTO thread_messages (thread_id, role, content)
		VALUES ($1, $2, $3)`

	if _, err := s.db.ExecContext(ctx, query, threadID, role, content); err != nil {
		return fmt.Errorf("error appending message: %w", err)
	}

	return nil
}

func (s *PostgresStorage) RecentMessages(ctx context.Context, threadID string, limit int) ([]models.ThreadMessage, error) {
	query := `
		SELECT id, thread_id, role, content, created_at
		FROM thread_messages
		WHERE thread_id = $1
		ORDER BY id DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, threadID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ThreadMessage
	for rows.Next() {
		var msg models.ThreadMessage
		if err := rows.Scan(&msg.ID, &msg.ThreadID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	// Newest-first from the query; flip to chronological.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
