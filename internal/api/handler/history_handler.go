package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/neonchat/chat-server/internal/core/domain"
	"github.com/neonchat/chat-server/internal/core/ports"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type HistoryHandler struct {
	chat ports.ChatService
}

func NewHistoryHandler(chat ports.ChatService) *HistoryHandler {
	return &HistoryHandler{chat: chat}
}

type historyResponse struct {
	Messages []domain.Message `json:"messages"`
}

// Recent returns the most recent chat messages, newest first.
//
// @Summary      Recent messages
// @Tags         chat
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of messages (default 50, max 200)"
// @Success      200    {object}  historyResponse
// @Failure      401    {object}  map[string]string
// @Security     BearerAuth
// @Router       /messages [get]
func (h *HistoryHandler) Recent(c echo.Context) error {
	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	msgs, err := h.chat.History(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}

	return c.JSON(http.StatusOK, historyResponse{Messages: msgs})
}
