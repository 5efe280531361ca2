package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/huddle/internal/domain"
)

// GlobalMessageRepo stores the messages of the global chat room.
type GlobalMessageRepo struct {
	pool *pgxpool.Pool
}

func NewGlobalMessageRepo(pool *pgxpool.Pool) *GlobalMessageRepo {
	return &GlobalMessageRepo{pool: pool}
}

// Create inserts msg and fills in the generated id and timestamp.
func (r *GlobalMessageRepo) Create(ctx context.Context, msg *domain.GlobalMessage) error {
	query := `
		INSERT INTO global_chat (email, body)
		VALUES ($1, $2)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, msg.Email, msg.Body).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *GlobalMessageRepo) ListRecent(ctx context.Context, limit int) ([]domain.GlobalMessage, error) {
	query := `
		SELECT id, email, body, created_at
		FROM global_chat
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.GlobalMessage
	for rows.Next() {
		var msg domain.GlobalMessage
		if err := rows.Scan(&msg.ID, &msg.Email, &msg.Body, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reverse(messages)
	return messages, nil
}

// reverse flips a newest-first page into chronological order.
func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
