package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/huddle/internal/domain"
)

type PrivateChatRepo struct {
	pool *pgxpool.Pool
}

func NewPrivateChatRepo(pool *pgxpool.Pool) *PrivateChatRepo {
	return &PrivateChatRepo{pool: pool}
}

// CreateChat inserts chat and fills in the generated id and timestamp. A
// second chat for the same pair fails with repository.ErrDuplicate.
func (r *PrivateChatRepo) CreateChat(ctx context.Context, chat *domain.PrivateChat) error {
	query := `
		INSERT INTO private_chats (user_id1, user_id2)
		VALUES ($1, $2)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, chat.UserID1, chat.UserID2).Scan(&chat.ID, &chat.CreatedAt)
	return mapError(err)
}

func (r *PrivateChatRepo) GetChatByUsers(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.PrivateChat, error) {
	query := `
		SELECT id, user_id1, user_id2, created_at
		FROM private_chats
		WHERE user_id1 = $1 AND user_id2 = $2`
	return scanChat(r.pool.QueryRow(ctx, query, user1ID, user2ID))
}

func (r *PrivateChatRepo) GetChatByID(ctx context.Context, id int64) (*domain.PrivateChat, error) {
	query := `
		SELECT id, user_id1, user_id2, created_at
		FROM private_chats
		WHERE id = $1`
	return scanChat(r.pool.QueryRow(ctx, query, id))
}

func scanChat(row pgx.Row) (*domain.PrivateChat, error) {
	var chat domain.PrivateChat
	err := row.Scan(&chat.ID, &chat.UserID1, &chat.UserID2, &chat.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *PrivateChatRepo) CreateMessage(ctx context.Context, msg *domain.PrivateMessage) error {
	query := `
		INSERT INTO private_messages (chat_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, msg.ChatID, msg.SenderID, msg.Body).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *PrivateChatRepo) ListMessages(ctx context.Context, chatID int64, limit int) ([]domain.PrivateMessage, error) {
	query := `
		SELECT id, chat_id, sender_id, body, created_at
		FROM private_messages
		WHERE chat_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.PrivateMessage
	for rows.Next() {
		var msg domain.PrivateMessage
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Body, &msg.CreatedAt); err != nil {
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
