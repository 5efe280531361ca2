package restclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/vedran77/huddle/internal/domain"
)

func (c *Client) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	return c.do(ctx, request{method: http.MethodPost, path: apiPrefix + "/profiles", body: profile}, profile)
}

func (c *Client) GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	err := c.do(ctx, request{method: http.MethodGet, path: apiPrefix + "/profiles/" + id.String()}, &profile)
	if isStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch) error {
	return c.do(ctx, request{method: http.MethodPatch, path: apiPrefix + "/profiles/" + id.String(), body: patch}, nil)
}

type messageInput struct {
	Body string `json:"body"`
}

func (c *Client) ListGlobalMessages(ctx context.Context, limit int) ([]domain.GlobalMessage, error) {
	var msgs []domain.GlobalMessage
	err := c.do(ctx, request{method: http.MethodGet, path: apiPrefix + "/global-messages", query: limitQuery(limit)}, &msgs)
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) InsertGlobalMessage(ctx context.Context, body string) (*domain.GlobalMessage, error) {
	var msg domain.GlobalMessage
	if err := c.do(ctx, request{method: http.MethodPost, path: apiPrefix + "/global-messages", body: messageInput{Body: body}}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) FindPrivateChat(ctx context.Context, user1, user2 uuid.UUID) (*domain.PrivateChat, error) {
	q := url.Values{}
	q.Set("user_id1", user1.String())
	q.Set("user_id2", user2.String())

	var chat domain.PrivateChat
	err := c.do(ctx, request{method: http.MethodGet, path: apiPrefix + "/private-chats", query: q}, &chat)
	if isStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (c *Client) CreatePrivateChat(ctx context.Context, user1, user2 uuid.UUID) (*domain.PrivateChat, error) {
	input := struct {
		UserID1 uuid.UUID `json:"user_id1"`
		UserID2 uuid.UUID `json:"user_id2"`
	}{user1, user2}

	var chat domain.PrivateChat
	if err := c.do(ctx, request{method: http.MethodPost, path: apiPrefix + "/private-chats", body: input}, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (c *Client) ListPrivateMessages(ctx context.Context, chatID int64, limit int) ([]domain.PrivateMessage, error) {
	var msgs []domain.PrivateMessage
	err := c.do(ctx, request{method: http.MethodGet, path: chatMessagesPath(chatID), query: limitQuery(limit)}, &msgs)
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) InsertPrivateMessage(ctx context.Context, chatID int64, body string) (*domain.PrivateMessage, error) {
	var msg domain.PrivateMessage
	if err := c.do(ctx, request{method: http.MethodPost, path: chatMessagesPath(chatID), body: messageInput{Body: body}}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func chatMessagesPath(chatID int64) string {
	return apiPrefix + "/private-chats/" + strconv.FormatInt(chatID, 10) + "/messages"
}
