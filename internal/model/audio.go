package model

// AudioFile is a lightweight descriptor for an uploaded audio blob.
// Its lifecycle is tied to the BlobRecord it references: deleting the blob
// orphans the descriptor, so callers remove both together.
type AudioFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlaylistMap assigns ambient slot names to ordered lists of audio files.
// Insertion order is display order; playback picks uniformly at random.
type PlaylistMap map[string][]AudioFile

// Spot slot names are fixed. A slot holds at most one audio file.
const (
	SpotSlot1 = "Spot 1"
	SpotSlot2 = "Spot 2"
	SpotSlot3 = "Spot 3"
)

// SpotSlotMap maps each of the three spot slots to its assigned file, if any.
type SpotSlotMap map[string]*AudioFile

// SpotSlots lists the valid spot slot names in display order.
func SpotSlots() []string {
	return []string{SpotSlot1, SpotSlot2, SpotSlot3}
}

// ValidSpotSlot reports whether name is one of the three fixed spot slots.
func ValidSpotSlot(name string) bool {
	switch name {
	case SpotSlot1, SpotSlot2, SpotSlot3:
		return true
	}
	return false
}

// EmptySpotSlotMap returns a SpotSlotMap with every slot unassigned.
func EmptySpotSlotMap() SpotSlotMap {
	return SpotSlotMap{SpotSlot1: nil, SpotSlot2: nil, SpotSlot3: nil}
}
