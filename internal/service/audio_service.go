package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"martapp/kiosk/internal/binding"
	"martapp/kiosk/internal/blob"
	"martapp/kiosk/internal/model"
	"martapp/kiosk/internal/repository"
)

// AudioService manages the uploaded audio library and its assignments to
// ambient playlists and spot slots.
type AudioService interface {
	Load(ctx context.Context)
	Close()

	ListFiles() []model.AudioFile
	Upload(ctx context.Context, name, mimeType string, data []byte) (model.AudioFile, error)
	Delete(ctx context.Context, fileID string) error
	AssignSlots(fileID string, slots []string) error

	Playlists() model.PlaylistMap
	SpotAssignments() model.SpotSlotMap
	SetSpotAudio(ctx context.Context, slot, name, mimeType string, data []byte) (model.AudioFile, error)
	RemoveSpotAudio(ctx context.Context, slot string) error

	// PlaylistCell and SpotCell expose the live assignment cells so the
	// playback coordinator reads the same state the admin flows mutate.
	PlaylistCell() *binding.Cell[model.PlaylistMap]
	SpotCell() *binding.Cell[model.SpotSlotMap]
}

type audioService struct {
	blobs    repository.BlobStore
	resolver *blob.Resolver
	logger   *zap.Logger

	files     *binding.Cell[[]model.AudioFile]
	playlists *binding.Cell[model.PlaylistMap]
	spots     *binding.Cell[model.SpotSlotMap]
}

func NewAudioService(kv repository.KVStore, blobs repository.BlobStore, resolver *blob.Resolver, logger *zap.Logger) AudioService {
	return &audioService{
		blobs:     blobs,
		resolver:  resolver,
		logger:    logger,
		files:     binding.New[[]model.AudioFile](kv, logger, "audioFiles", nil),
		playlists: binding.New(kv, logger, "audioMap", model.PlaylistMap{}),
		spots:     binding.New(kv, logger, "spotAudioMap", model.EmptySpotSlotMap()),
	}
}

func (s *audioService) Load(ctx context.Context) {
	s.files.Load(ctx)
	s.playlists.Load(ctx)
	s.spots.Load(ctx)
}

func (s *audioService) Close() {
	s.files.Close()
	s.playlists.Close()
	s.spots.Close()
}

func (s *audioService) ListFiles() []model.AudioFile { return s.files.Get() }

func (s *audioService) Upload(ctx context.Context, name, mimeType string, data []byte) (model.AudioFile, error) {
	// Timestamp plus a random suffix keeps upload keys collision-free.
	key := fmt.Sprintf("audio_%d_%s", time.Now().UnixMilli(), uuid.NewString())
	record := &model.BlobRecord{Key: key, Name: name, MIMEType: mimeType, Data: data}
	if err := s.blobs.Put(ctx, record); err != nil {
		return model.AudioFile{}, fmt.Errorf("store audio blob: %w", err)
	}

	file := model.AudioFile{ID: key, Name: name}
	s.files.Update(func(files []model.AudioFile) []model.AudioFile {
		return append(append([]model.AudioFile(nil), files...), file)
	})
	return file, nil
}

// Delete removes the blob, its transient handle, the descriptor, and every
// playlist reference, so nothing can resurrect the deleted audio.
func (s *audioService) Delete(ctx context.Context, fileID string) error {
	found := false
	for _, f := range s.files.Get() {
		if f.ID == fileID {
			found = true
			break
		}
	}
	if !found {
		return ErrAudioNotFound
	}

	if err := s.blobs.Delete(ctx, fileID); err != nil {
		return fmt.Errorf("delete audio blob: %w", err)
	}
	s.resolver.Release(fileID)

	s.files.Update(func(files []model.AudioFile) []model.AudioFile {
		out := make([]model.AudioFile, 0, len(files))
		for _, f := range files {
			if f.ID != fileID {
				out = append(out, f)
			}
		}
		return out
	})
	s.playlists.Update(func(m model.PlaylistMap) model.PlaylistMap {
		return removeFromPlaylists(m, fileID)
	})
	return nil
}

// AssignSlots replaces the file's entire playlist membership: the file ends
// up in exactly the given slots, keeping its position where it already was.
func (s *audioService) AssignSlots(fileID string, slots []string) error {
	var file *model.AudioFile
	for _, f := range s.files.Get() {
		if f.ID == fileID {
			f := f
			file = &f
			break
		}
	}
	if file == nil {
		return ErrAudioNotFound
	}

	wanted := make(map[string]struct{}, len(slots))
	for _, slot := range slots {
		wanted[slot] = struct{}{}
	}

	s.playlists.Update(func(m model.PlaylistMap) model.PlaylistMap {
		out := make(model.PlaylistMap, len(m)+len(wanted))
		for slot, list := range m {
			_, keep := wanted[slot]
			filtered := make([]model.AudioFile, 0, len(list))
			for _, f := range list {
				if f.ID != fileID || keep {
					filtered = append(filtered, f)
				}
			}
			out[slot] = filtered
			if keep {
				delete(wanted, slot)
				if !containsFile(filtered, fileID) {
					out[slot] = append(filtered, *file)
				}
			}
		}
		for slot := range wanted {
			out[slot] = []model.AudioFile{*file}
		}
		return out
	})
	return nil
}

func (s *audioService) Playlists() model.PlaylistMap { return s.playlists.Get() }

func (s *audioService) SpotAssignments() model.SpotSlotMap { return s.spots.Get() }

// SetSpotAudio stores the uploaded bytes under a fresh key and assigns them
// to the slot, deleting the previously assigned blob.
func (s *audioService) SetSpotAudio(ctx context.Context, slot, name, mimeType string, data []byte) (model.AudioFile, error) {
	if !model.ValidSpotSlot(slot) {
		return model.AudioFile{}, ErrUnknownSpotSlot
	}

	key := fmt.Sprintf("spot_%s_%d_%s", strings.ReplaceAll(slot, " ", "_"), time.Now().UnixMilli(), uuid.NewString())
	record := &model.BlobRecord{Key: key, Name: name, MIMEType: mimeType, Data: data}
	if err := s.blobs.Put(ctx, record); err != nil {
		return model.AudioFile{}, fmt.Errorf("store spot blob: %w", err)
	}

	file := model.AudioFile{ID: key, Name: name}
	previous := s.spots.Get()[slot]
	s.spots.Update(func(m model.SpotSlotMap) model.SpotSlotMap {
		out := copySpotMap(m)
		out[slot] = &file
		return out
	})

	if previous != nil {
		if err := s.blobs.Delete(ctx, previous.ID); err != nil {
			s.logger.Warn("failed to delete replaced spot blob",
				zap.String("key", previous.ID), zap.Error(err))
		}
		s.resolver.Release(previous.ID)
	}
	return file, nil
}

func (s *audioService) RemoveSpotAudio(ctx context.Context, slot string) error {
	if !model.ValidSpotSlot(slot) {
		return ErrUnknownSpotSlot
	}

	previous := s.spots.Get()[slot]
	if previous == nil {
		return ErrSpotSlotEmpty
	}

	if err := s.blobs.Delete(ctx, previous.ID); err != nil {
		s.logger.Warn("failed to delete spot blob",
			zap.String("key", previous.ID), zap.Error(err))
	}
	s.resolver.Release(previous.ID)

	s.spots.Update(func(m model.SpotSlotMap) model.SpotSlotMap {
		out := copySpotMap(m)
		out[slot] = nil
		return out
	})
	return nil
}

func (s *audioService) PlaylistCell() *binding.Cell[model.PlaylistMap] { return s.playlists }

func (s *audioService) SpotCell() *binding.Cell[model.SpotSlotMap] { return s.spots }

func containsFile(list []model.AudioFile, fileID string) bool {
	for _, f := range list {
		if f.ID == fileID {
			return true
		}
	}
	return false
}

func removeFromPlaylists(m model.PlaylistMap, fileID string) model.PlaylistMap {
	out := make(model.PlaylistMap, len(m))
	for slot, list := range m {
		filtered := make([]model.AudioFile, 0, len(list))
		for _, f := range list {
			if f.ID != fileID {
				filtered = append(filtered, f)
			}
		}
		out[slot] = filtered
	}
	return out
}

func copySpotMap(m model.SpotSlotMap) model.SpotSlotMap {
	out := make(model.SpotSlotMap, len(m))
	for slot, file := range m {
		out[slot] = file
	}
	return out
}
