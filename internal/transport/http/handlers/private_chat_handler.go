package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vedran77/huddle/internal/service"
	"github.com/vedran77/huddle/internal/transport/http/middleware"
	"github.com/vedran77/huddle/pkg/validator"
)

type PrivateChatHandler struct {
	chatService *service.PrivateChatService
	log         *logrus.Entry
}

func NewPrivateChatHandler(chatService *service.PrivateChatService, log *logrus.Entry) *PrivateChatHandler {
	return &PrivateChatHandler{chatService: chatService, log: log}
}

type pairInput struct {
	UserID1 uuid.UUID `json:"user_id1"`
	UserID2 uuid.UUID `json:"user_id2"`
}

// Find looks a chat up by ?user_id1=&user_id2=, in either order.
func (h *PrivateChatHandler) Find(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	u1, err1 := uuid.Parse(r.URL.Query().Get("user_id1"))
	u2, err2 := uuid.Parse(r.URL.Query().Get("user_id2"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "user_id1 and user_id2 must be valid IDs")
		return
	}

	chat, err := h.chatService.Find(r.Context(), userID, u1, u2)
	if err != nil {
		h.writeServiceError(w, "find private chat", err)
		return
	}
	if chat == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Private chat not found")
		return
	}

	writeJSON(w, http.StatusOK, chat)
}

func (h *PrivateChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input pairInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.UserID1 == uuid.Nil || input.UserID2 == uuid.Nil {
		writeError(w, http.StatusBadRequest, "MISSING_USER_ID", "user_id1 and user_id2 are required")
		return
	}

	chat, err := h.chatService.Create(r.Context(), userID, input.UserID1, input.UserID2)
	if err != nil {
		h.writeServiceError(w, "create private chat", err)
		return
	}

	writeJSON(w, http.StatusCreated, chat)
}

func (h *PrivateChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	chatID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid chat ID")
		return
	}

	messages, err := h.chatService.ListMessages(r.Context(), userID, chatID, queryLimit(r))
	if err != nil {
		h.writeServiceError(w, "list private messages", err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *PrivateChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	chatID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid chat ID")
		return
	}

	var input messageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateMessage(input.Body); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := h.chatService.SendMessage(r.Context(), userID, chatID, input.Body)
	if err != nil {
		h.writeServiceError(w, "send private message", err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *PrivateChatHandler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrCannotChatSelf):
		writeError(w, http.StatusBadRequest, "CANNOT_CHAT_SELF", "Cannot start a private chat with yourself")
	case errors.Is(err, service.ErrNotParticipant):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not a participant of this chat")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrChatNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Private chat not found")
	case errors.Is(err, service.ErrChatExists):
		writeError(w, http.StatusConflict, "CHAT_EXISTS", "Private chat already exists")
	default:
		internalError(w, h.log, op, err)
	}
}
