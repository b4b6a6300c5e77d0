package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gopherchat/internal/app"
	"gopherchat/internal/transport/http/middleware"
	"gopherchat/internal/transport/http/response"
)

const (
	defaultSkip  = 0
	defaultLimit = 100
)

type ChatHandler struct {
	chatService *app.ChatService
}

type CreateChatRequest struct {
	Title string `json:"title" binding:"required,max=128"`
}

type CreateMessageRequest struct {
	Role    string `json:"role" binding:"required,max=16"`
	Content string `json:"content" binding:"required"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) CreateChat(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Could not validate credentials")
		return
	}

	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	chat, err := h.chatService.CreateChat(app.CreateChatInput{
		UserID: caller.ID,
		Title:  req.Title,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "create chat failed")
		}
		return
	}

	c.JSON(http.StatusOK, chat)
}

func (h *ChatHandler) ListChats(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Could not validate credentials")
		return
	}

	skip, limit := paginationParams(c)
	chats, err := h.chatService.ListChats(caller.ID, skip, limit)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "list chats failed")
		}
		return
	}

	c.JSON(http.StatusOK, chats)
}

// CreateMessage stores the caller's message, relays the transcript to the
// completion provider and returns the stored assistant reply. A provider
// failure is a 500; the caller's message stays committed.
func (h *ChatHandler) CreateMessage(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Could not validate credentials")
		return
	}

	chatID, ok := chatIDParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid chat id")
		return
	}

	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		UserID:  caller.ID,
		ChatID:  chatID,
		Role:    req.Role,
		Content: req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrMessageEmpty):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, app.ErrChatNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, message)
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Could not validate credentials")
		return
	}

	chatID, ok := chatIDParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid chat id")
		return
	}

	skip, limit := paginationParams(c)
	messages, err := h.chatService.ListMessages(c.Request.Context(), caller.ID, chatID, skip, limit)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, app.ErrChatNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "list messages failed")
		}
		return
	}

	c.JSON(http.StatusOK, messages)
}

func chatIDParam(c *gin.Context) (uint, bool) {
	chatID64, err := strconv.ParseUint(c.Param("chat_id"), 10, 32)
	if err != nil || chatID64 == 0 {
		return 0, false
	}
	return uint(chatID64), true
}

func paginationParams(c *gin.Context) (skip, limit int) {
	skip = defaultSkip
	limit = defaultLimit
	if raw := c.Query("skip"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			skip = parsed
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			limit = parsed
		}
	}
	return skip, limit
}
