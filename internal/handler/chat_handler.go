package handler

import (
	"errors"
	"net/http"

	"vinoteca/internal/chat"
	"vinoteca/internal/model"

	"github.com/rs/zerolog"
)

// ChatRequest is the payload for POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant's answer, or the fallback text.
type ChatResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// ChatHandler relays customer questions to the chat backend.
type ChatHandler struct {
	responder chat.Responder
	logger    zerolog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(responder chat.Responder, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		responder: responder,
		logger:    logger.With().Str("handler", "chat").Logger(),
	}
}

// Chat handles POST /api/chat requests.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	answer, err := h.responder.Respond(r.Context(), req.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "message is required", h.logger)
	case err != nil:
		h.logger.Warn().Err(err).Msg("chat backend failed, sending fallback")
		writeJSON(w, http.StatusServiceUnavailable, ChatResponse{
			Response: chat.FallbackResponse,
			Error:    model.ErrCodeServiceUnavailable,
		})
	default:
		writeJSON(w, http.StatusOK, ChatResponse{Response: answer})
	}
}
