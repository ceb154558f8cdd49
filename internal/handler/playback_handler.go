package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"martapp/kiosk/internal/player"
	"martapp/kiosk/internal/repository"
	"martapp/kiosk/pkg/response"
)

type PlaybackHandler struct {
	coordinator *player.Coordinator
}

func NewPlaybackHandler(coordinator *player.Coordinator) *PlaybackHandler {
	return &PlaybackHandler{coordinator: coordinator}
}

type PlayRequest struct {
	Slot string `json:"slot" binding:"required"`
}

type StopRequest struct {
	FadeMillis int `json:"fade_ms"`
}

type VolumeRequest struct {
	Volume *float64 `json:"volume" binding:"required"`
}

func (h *PlaybackHandler) AmbientPlay(c *gin.Context) {
	var req PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.coordinator.PlayAmbient(c.Request.Context(), req.Slot); err != nil {
		playbackError(c, err)
		return
	}
	response.Success(c, h.coordinator.ChannelStates())
}

// AmbientStop stops immediately, or with a linear fade when fade_ms is set.
func (h *PlaybackHandler) AmbientStop(c *gin.Context) {
	var req StopRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if req.FadeMillis > 0 {
		h.coordinator.StopAmbientWithFade(time.Duration(req.FadeMillis) * time.Millisecond)
	} else {
		h.coordinator.StopAmbient()
	}
	response.Success(c, h.coordinator.ChannelStates())
}

func (h *PlaybackHandler) AmbientVolume(c *gin.Context) {
	var req VolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	h.coordinator.SetAmbientVolume(*req.Volume)
	response.Success(c, h.coordinator.ChannelStates())
}

func (h *PlaybackHandler) SpotPlay(c *gin.Context) {
	var req PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.coordinator.PlaySpot(c.Request.Context(), req.Slot); err != nil {
		playbackError(c, err)
		return
	}
	response.Success(c, h.coordinator.ChannelStates())
}

func (h *PlaybackHandler) SpotStop(c *gin.Context) {
	h.coordinator.StopSpot()
	response.Success(c, h.coordinator.ChannelStates())
}

func (h *PlaybackHandler) SpotVolume(c *gin.Context) {
	var req VolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	h.coordinator.SetSpotVolume(*req.Volume)
	response.Success(c, h.coordinator.ChannelStates())
}

func (h *PlaybackHandler) State(c *gin.Context) {
	response.Success(c, h.coordinator.ChannelStates())
}

// playbackError maps playback no-ops to client errors. None of these crash
// a channel; the state machine is untouched.
func playbackError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, player.ErrEmptyPlaylist),
		errors.Is(err, player.ErrNoSpotAssigned):
		response.Conflict(c, err.Error())
	case errors.Is(err, player.ErrUnknownSpotSlot):
		response.BadRequest(c, err.Error())
	case errors.Is(err, repository.ErrBlobMissing):
		response.NotFound(c, "audio not available")
	default:
		response.InternalError(c, "playback failed")
	}
}
