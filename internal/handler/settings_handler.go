package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"martapp/kiosk/internal/model"
	"martapp/kiosk/internal/service"
	"martapp/kiosk/pkg/response"
)

type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) GetLabels(c *gin.Context) {
	response.Success(c, h.settingsService.Labels())
}

func (h *SettingsHandler) SetLabels(c *gin.Context) {
	var labels model.CustomLabels
	if err := c.ShouldBindJSON(&labels); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	h.settingsService.SetLabels(labels)
	response.Success(c, h.settingsService.Labels())
}

func (h *SettingsHandler) GetTheme(c *gin.Context) {
	response.Success(c, gin.H{"theme": h.settingsService.Theme()})
}

type ThemeRequest struct {
	Theme model.AppTheme `json:"theme" binding:"required"`
}

func (h *SettingsHandler) SetTheme(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.settingsService.SetTheme(req.Theme); err != nil {
		if errors.Is(err, service.ErrUnknownTheme) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"theme": h.settingsService.Theme()})
}
