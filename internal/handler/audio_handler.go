package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"martapp/kiosk/internal/model"
	"martapp/kiosk/internal/player"
	"martapp/kiosk/internal/repository"
	"martapp/kiosk/internal/service"
	"martapp/kiosk/pkg/response"
)

// maxAudioUpload caps a single uploaded file at 32 MiB.
const maxAudioUpload = 32 << 20

type AudioHandler struct {
	audioService service.AudioService
	coordinator  *player.Coordinator
}

func NewAudioHandler(audioService service.AudioService, coordinator *player.Coordinator) *AudioHandler {
	return &AudioHandler{audioService: audioService, coordinator: coordinator}
}

func (h *AudioHandler) List(c *gin.Context) {
	response.Success(c, h.audioService.ListFiles())
}

func (h *AudioHandler) Upload(c *gin.Context) {
	name, mimeType, data, ok := readUpload(c)
	if !ok {
		return
	}

	file, err := h.audioService.Upload(c.Request.Context(), name, mimeType, data)
	if err != nil {
		storageError(c, err)
		return
	}
	response.Success(c, file)
}

func (h *AudioHandler) Delete(c *gin.Context) {
	if err := h.audioService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrAudioNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		storageError(c, err)
		return
	}
	response.Success(c, nil)
}

type AssignSlotsRequest struct {
	Slots []string `json:"slots"`
}

func (h *AudioHandler) AssignSlots(c *gin.Context) {
	var req AssignSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.audioService.AssignSlots(c.Param("id"), req.Slots); err != nil {
		if errors.Is(err, service.ErrAudioNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, h.audioService.Playlists())
}

// Preview toggles playback of a library file on the spot channel without
// journaling an interaction.
func (h *AudioHandler) Preview(c *gin.Context) {
	id := c.Param("id")
	var file *model.AudioFile
	for _, f := range h.audioService.ListFiles() {
		if f.ID == id {
			file = &f
			break
		}
	}
	if file == nil {
		response.NotFound(c, service.ErrAudioNotFound.Error())
		return
	}

	if err := h.coordinator.PreviewSpot(c.Request.Context(), *file); err != nil {
		playbackError(c, err)
		return
	}
	response.Success(c, h.coordinator.ChannelStates())
}

func (h *AudioHandler) Playlists(c *gin.Context) {
	response.Success(c, h.audioService.Playlists())
}

func (h *AudioHandler) SpotAssignments(c *gin.Context) {
	response.Success(c, h.audioService.SpotAssignments())
}

func (h *AudioHandler) SetSpotAudio(c *gin.Context) {
	name, mimeType, data, ok := readUpload(c)
	if !ok {
		return
	}

	file, err := h.audioService.SetSpotAudio(c.Request.Context(), c.Param("slot"), name, mimeType, data)
	if err != nil {
		if errors.Is(err, service.ErrUnknownSpotSlot) {
			response.BadRequest(c, err.Error())
			return
		}
		storageError(c, err)
		return
	}
	response.Success(c, file)
}

func (h *AudioHandler) RemoveSpotAudio(c *gin.Context) {
	if err := h.audioService.RemoveSpotAudio(c.Request.Context(), c.Param("slot")); err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownSpotSlot):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrSpotSlotEmpty):
			response.NotFound(c, err.Error())
		default:
			storageError(c, err)
		}
		return
	}
	response.Success(c, nil)
}

// readUpload pulls the "file" part from a multipart form. It replies on
// failure and reports ok=false so callers can just return.
func readUpload(c *gin.Context) (name, mimeType string, data []byte, ok bool) {
	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file: "+err.Error())
		return "", "", nil, false
	}
	if header.Size > maxAudioUpload {
		response.BadRequest(c, "file too large")
		return "", "", nil, false
	}

	f, err := header.Open()
	if err != nil {
		response.InternalError(c, "failed to read upload")
		return "", "", nil, false
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		response.InternalError(c, "failed to read upload")
		return "", "", nil, false
	}
	return header.Filename, header.Header.Get("Content-Type"), data, true
}

// storageError maps persistence failures onto the response envelope.
func storageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrQuotaExceeded):
		response.StorageFull(c, "storage quota exceeded")
	case errors.Is(err, repository.ErrNotAvailable):
		response.InternalError(c, "storage not available")
	case errors.Is(err, repository.ErrBlobMissing):
		response.NotFound(c, "blob not found")
	default:
		response.InternalError(c, err.Error())
	}
}
