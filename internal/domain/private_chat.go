package domain

import (
	"time"

	"github.com/google/uuid"
)

// PrivateChat is the conversation between exactly two users. UserID1 is always
// the lexicographically smaller id (see CanonicalPair).
type PrivateChat struct {
	ID        int64     `json:"id"`
	UserID1   uuid.UUID `json:"user_id1"`
	UserID2   uuid.UUID `json:"user_id2"`
	CreatedAt time.Time `json:"created_at"`
}

// HasParticipant reports whether userID is one of the two chat members.
func (c *PrivateChat) HasParticipant(userID uuid.UUID) bool {
	return c.UserID1 == userID || c.UserID2 == userID
}

// CanonicalPair sorts two ids so that the first one is the smaller by string
// form. The order is the one stored in private_chats.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}
