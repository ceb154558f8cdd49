package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"martapp/kiosk/internal/service"
	"martapp/kiosk/pkg/response"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) History(c *gin.Context) {
	response.Success(c, h.chatService.History())
}

type ChatRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *ChatHandler) Send(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	reply, err := h.chatService.Send(c.Request.Context(), req.Content)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, reply)
}
