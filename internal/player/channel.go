package player

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"martapp/kiosk/internal/model"
)

// Phase is the playback state of one channel.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhasePlaying Phase = "playing"
	PhaseFading  Phase = "fading"
)

const fadeSteps = 20

// State is a point-in-time snapshot of a channel.
type State struct {
	Phase         Phase   `json:"phase"`
	CurrentFileID string  `json:"current_file_id,omitempty"`
	CurrentSlot   string  `json:"current_slot,omitempty"`
	Volume        float64 `json:"volume"`
}

// Channel is one independent playback lane over a single sink. Both kiosk
// channels (ambient and spot) are instances of this type, so they obey
// identical transition rules: idle -> loading -> playing -> idle, with
// playing -> fading -> idle on a timed fade-out.
type Channel struct {
	name   string
	sink   Sink
	logger *zap.Logger

	mu      sync.Mutex
	phase   Phase
	fileID  string
	slot    string
	volume  float64
	fadeSeq int // bumping this invalidates any running fade
}

// NewChannel wraps sink as a playback channel and starts watching it for
// natural end-of-track events.
func NewChannel(name string, sink Sink, logger *zap.Logger) *Channel {
	c := &Channel{
		name:   name,
		sink:   sink,
		logger: logger,
		phase:  PhaseIdle,
		volume: 1,
	}
	go c.watchEvents()
	return c
}

// Play starts the given file from position zero. Requesting the file that
// is already playing restarts it; any other request replaces the source.
// A fade in progress is canceled first.
func (c *Channel) Play(file model.AudioFile, path, slot string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelFadeLocked()

	if c.phase == PhasePlaying && c.fileID == file.ID {
		if err := c.sink.Restart(); err != nil {
			c.logger.Error("failed to restart track",
				zap.String("channel", c.name), zap.String("file_id", file.ID), zap.Error(err))
			return err
		}
	} else {
		c.phase = PhaseLoading
		if err := c.sink.Load(path); err != nil {
			c.phase = PhaseIdle
			c.fileID, c.slot = "", ""
			c.logger.Error("failed to load track",
				zap.String("channel", c.name), zap.String("file_id", file.ID), zap.Error(err))
			return err
		}
	}

	if err := c.sink.SetVolume(c.volume); err != nil {
		c.logger.Warn("failed to set volume", zap.String("channel", c.name), zap.Error(err))
	}
	if err := c.sink.Play(); err != nil {
		c.phase = PhaseIdle
		c.fileID, c.slot = "", ""
		c.logger.Error("failed to start playback",
			zap.String("channel", c.name), zap.String("file_id", file.ID), zap.Error(err))
		return err
	}

	c.phase = PhasePlaying
	c.fileID = file.ID
	c.slot = slot
	return nil
}

// Stop halts playback immediately, releasing the current source. A fade in
// progress is canceled.
func (c *Channel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelFadeLocked()
	c.stopLocked()
}

// StopWithFade linearly ramps the volume to zero over d, then stops and
// restores the configured volume for the next play. A later Play or Stop
// cancels the fade synchronously; a canceled fade never applies another
// step.
func (c *Channel) StopWithFade(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhasePlaying {
		return
	}
	c.cancelFadeLocked()
	c.phase = PhaseFading
	seq := c.fadeSeq

	interval := d / fadeSteps
	if interval <= 0 {
		interval = time.Millisecond
	}
	step := c.volume / fadeSteps
	current := c.volume

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			c.mu.Lock()
			if c.fadeSeq != seq {
				// Canceled; the canceler already restored the volume.
				c.mu.Unlock()
				return
			}
			current -= step
			if current > 0 {
				if err := c.sink.SetVolume(current); err != nil {
					c.logger.Warn("fade step failed", zap.String("channel", c.name), zap.Error(err))
				}
				c.mu.Unlock()
				continue
			}
			c.fadeSeq++
			c.stopLocked()
			c.mu.Unlock()
			return
		}
	}()
}

// SetVolume clamps level to [0,1], applies it to the sink immediately, and
// remembers it for subsequent plays.
func (c *Channel) SetVolume(level float64) {
	if level < 0 {
		level = 0
	} else if level > 1 {
		level = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = level
	if err := c.sink.SetVolume(level); err != nil {
		c.logger.Warn("failed to set volume", zap.String("channel", c.name), zap.Error(err))
	}
}

// State returns a snapshot of the channel.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Phase:         c.phase,
		CurrentFileID: c.fileID,
		CurrentSlot:   c.slot,
		Volume:        c.volume,
	}
}

// NowPlaying reports the current file ID and whether the channel is in the
// playing phase.
func (c *Channel) NowPlaying() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fileID, c.phase == PhasePlaying
}

// Close stops playback and shuts the sink down.
func (c *Channel) Close() error {
	c.Stop()
	return c.sink.Close()
}

// cancelFadeLocked invalidates a running fade and restores the configured
// volume. The fade goroutine checks fadeSeq under the same mutex, so
// cancellation is synchronous: no step fires after this returns.
func (c *Channel) cancelFadeLocked() {
	if c.phase != PhaseFading {
		return
	}
	c.fadeSeq++
	c.phase = PhasePlaying
	if err := c.sink.SetVolume(c.volume); err != nil {
		c.logger.Warn("failed to restore volume", zap.String("channel", c.name), zap.Error(err))
	}
}

func (c *Channel) stopLocked() {
	if err := c.sink.Stop(); err != nil {
		c.logger.Warn("failed to stop sink", zap.String("channel", c.name), zap.Error(err))
	}
	if err := c.sink.SetVolume(c.volume); err != nil {
		c.logger.Warn("failed to restore volume", zap.String("channel", c.name), zap.Error(err))
	}
	c.phase = PhaseIdle
	c.fileID = ""
	c.slot = ""
}

// watchEvents consumes sink notifications; a natural end returns the
// channel to idle without touching the sink.
func (c *Channel) watchEvents() {
	for ev := range c.sink.Events() {
		if ev != EventEnded {
			continue
		}
		c.mu.Lock()
		if c.phase == PhasePlaying {
			c.phase = PhaseIdle
			c.fileID = ""
			c.slot = ""
		}
		c.mu.Unlock()
	}
}
