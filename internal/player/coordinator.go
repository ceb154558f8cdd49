package player

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"martapp/kiosk/internal/binding"
	"martapp/kiosk/internal/blob"
	"martapp/kiosk/internal/model"
)

// originPreview marks spot plays that must not be journaled.
const originPreview = "preview"

var (
	// ErrEmptyPlaylist means the requested ambient slot has no audio
	// assigned; the channel is left untouched.
	ErrEmptyPlaylist = errors.New("no audio assigned to slot")

	// ErrNoSpotAssigned means the requested spot slot is empty.
	ErrNoSpotAssigned = errors.New("no audio assigned to spot")

	// ErrUnknownSpotSlot means the slot name is not one of the three fixed
	// spot slots.
	ErrUnknownSpotSlot = errors.New("unknown spot slot")
)

// Resolver yields playable handles for stored audio blobs.
type Resolver interface {
	Resolve(ctx context.Context, key string) (*blob.Handle, error)
}

// Recorder receives interaction events for successful plays.
type Recorder interface {
	Record(t model.InteractionType, key string)
}

// Coordinator drives the two kiosk playback channels. The channels are
// fully independent; neither blocks or observes the other.
type Coordinator struct {
	ambient  *Channel
	spot     *Channel
	resolver Resolver
	recorder Recorder
	logger   *zap.Logger

	playlists *binding.Cell[model.PlaylistMap]
	spots     *binding.Cell[model.SpotSlotMap]

	fadeDuration time.Duration

	// pick selects a playlist index; replaced in tests.
	pick func(n int) int
}

// NewCoordinator wires the two channels to the audio assignments and the
// interaction journal.
func NewCoordinator(
	ambient, spot *Channel,
	resolver Resolver,
	recorder Recorder,
	playlists *binding.Cell[model.PlaylistMap],
	spots *binding.Cell[model.SpotSlotMap],
	fadeDuration time.Duration,
	logger *zap.Logger,
) *Coordinator {
	if fadeDuration <= 0 {
		fadeDuration = time.Second
	}
	return &Coordinator{
		ambient:      ambient,
		spot:         spot,
		resolver:     resolver,
		recorder:     recorder,
		logger:       logger,
		playlists:    playlists,
		spots:        spots,
		fadeDuration: fadeDuration,
		pick:         rand.IntN,
	}
}

// PlayAmbient picks one entry uniformly at random from the slot's playlist
// and starts it on the ambient channel. An empty slot is a no-op.
func (c *Coordinator) PlayAmbient(ctx context.Context, slot string) error {
	list := c.playlists.Get()[slot]
	if len(list) == 0 {
		c.logger.Warn("no audio assigned to ambient slot", zap.String("slot", slot))
		return ErrEmptyPlaylist
	}
	file := list[c.pick(len(list))]
	return c.play(ctx, c.ambient, file, slot, "", "")
}

// PlaySpot starts the file assigned to the given spot slot and records a
// spot interaction. An unassigned slot is a no-op.
func (c *Coordinator) PlaySpot(ctx context.Context, slot string) error {
	if !model.ValidSpotSlot(slot) {
		return ErrUnknownSpotSlot
	}
	file := c.spots.Get()[slot]
	if file == nil {
		c.logger.Warn("no audio assigned to spot slot", zap.String("slot", slot))
		return ErrNoSpotAssigned
	}
	return c.play(ctx, c.spot, *file, slot, model.InteractionSpots, slot)
}

// PreviewSpot toggles preview playback of an arbitrary library file on the
// spot channel. Previews never reach the journal.
func (c *Coordinator) PreviewSpot(ctx context.Context, file model.AudioFile) error {
	if current, playing := c.spot.NowPlaying(); playing && current == file.ID {
		c.spot.Stop()
		return nil
	}
	return c.play(ctx, c.spot, file, originPreview, "", "")
}

// StopAmbient halts the ambient channel immediately.
func (c *Coordinator) StopAmbient() { c.ambient.Stop() }

// StopAmbientWithFade ramps the ambient channel down over d (the
// configured default when d is zero) and then stops it.
func (c *Coordinator) StopAmbientWithFade(d time.Duration) {
	if d <= 0 {
		d = c.fadeDuration
	}
	c.ambient.StopWithFade(d)
}

// StopSpot halts the spot channel immediately.
func (c *Coordinator) StopSpot() { c.spot.Stop() }

// SetAmbientVolume adjusts the ambient channel level, clamped to [0,1].
func (c *Coordinator) SetAmbientVolume(level float64) { c.ambient.SetVolume(level) }

// SetSpotVolume adjusts the spot channel level, clamped to [0,1].
func (c *Coordinator) SetSpotVolume(level float64) { c.spot.SetVolume(level) }

// ChannelStates reports both channel snapshots.
func (c *Coordinator) ChannelStates() map[string]State {
	return map[string]State{
		"ambient": c.ambient.State(),
		"spot":    c.spot.State(),
	}
}

// Close shuts both channels down.
func (c *Coordinator) Close() {
	if err := c.ambient.Close(); err != nil {
		c.logger.Warn("failed to close ambient channel", zap.Error(err))
	}
	if err := c.spot.Close(); err != nil {
		c.logger.Warn("failed to close spot channel", zap.Error(err))
	}
}

// play resolves the file's handle and hands it to the channel. Resolution
// failure is a warned no-op; the channel's state machine is untouched. A
// successful play with a tracked origin emits one interaction event.
func (c *Coordinator) play(ctx context.Context, ch *Channel, file model.AudioFile, slot string, record model.InteractionType, recordKey string) error {
	handle, err := c.resolver.Resolve(ctx, file.ID)
	if err != nil {
		c.logger.Warn("failed to resolve audio blob",
			zap.String("file_id", file.ID), zap.Error(err))
		return err
	}
	path, err := handle.Path()
	if err != nil {
		c.logger.Warn("audio handle no longer valid",
			zap.String("file_id", file.ID), zap.Error(err))
		return err
	}

	if err := ch.Play(file, path, slot); err != nil {
		return err
	}
	if record != "" {
		c.recorder.Record(record, recordKey)
	}
	return nil
}
