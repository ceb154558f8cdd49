package player

// Event is a notification emitted by a media sink.
type Event int

const (
	// EventEnded fires when the current source played through to its end
	// without user action.
	EventEnded Event = iota
)

// Sink is one playable media output. Each channel owns exactly one sink;
// the coordinator sets its source to a resolved blob handle and issues
// transport commands against it.
type Sink interface {
	// Load replaces the current source. Playback position resets to zero.
	Load(path string) error
	// Play starts or resumes playback of the loaded source.
	Play() error
	// Stop halts playback and releases the current source.
	Stop() error
	// Restart rewinds the current source to position zero.
	Restart() error
	// SetVolume applies a level in [0,1] to the output.
	SetVolume(v float64) error
	// Events delivers end-of-track notifications. The channel is closed
	// when the sink shuts down.
	Events() <-chan Event
	Close() error
}
