package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vedran77/huddle/internal/service"
	"github.com/vedran77/huddle/internal/transport/http/middleware"
	"github.com/vedran77/huddle/pkg/validator"
)

type GlobalChatHandler struct {
	chatService *service.GlobalChatService
	log         *logrus.Entry
}

func NewGlobalChatHandler(chatService *service.GlobalChatService, log *logrus.Entry) *GlobalChatHandler {
	return &GlobalChatHandler{chatService: chatService, log: log}
}

type messageInput struct {
	Body string `json:"body"`
}

func (h *GlobalChatHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatService.List(r.Context(), queryLimit(r))
	if err != nil {
		internalError(w, h.log, "list global messages", err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *GlobalChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input messageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateMessage(input.Body); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := h.chatService.Send(r.Context(), userID, input.Body)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "USER_NOT_FOUND", "The account no longer exists")
		} else {
			internalError(w, h.log, "send global message", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}
