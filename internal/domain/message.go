package domain

import (
	"time"

	"github.com/google/uuid"
)

// Table names, as used by the realtime change feed.
const (
	TableGlobalChat      = "global_chat"
	TablePrivateChats    = "private_chats"
	TablePrivateMessages = "private_messages"
	TableUserProfiles    = "user_profiles"
)

type GlobalMessage struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type PrivateMessage struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
