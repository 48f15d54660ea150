package models

// RoomSettings captures the host-configurable parameters of a room. Field
// names match the wire payloads of updateRoomSettings / roomSettingsUpdated.
type RoomSettings struct {
	// MaxPlayers caps the live member count for joinRoom.
	MaxPlayers int `json:"maxPlayers"`

	// RoundTime is the drawing phase duration in seconds.
	RoundTime int `json:"roundTime"`

	// Rounds is the total number of rounds in a game; a round is one full
	// pass through the player order.
	Rounds int `json:"rounds"`

	// WordOptions is how many candidate words the drawer gets to pick from.
	WordOptions int `json:"wordOptions"`
}

// DefaultRoomSettings mirrors the defaults applied when createRoom omits
// settings.
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		MaxPlayers:  8,
		RoundTime:   60,
		Rounds:      3,
		WordOptions: 3,
	}
}

// Merge overlays the non-zero fields of partial onto s and returns the result.
// Zero values are treated as "not provided", matching the partial-update wire
// contract.
func (s RoomSettings) Merge(partial RoomSettings) RoomSettings {
	out := s
	if partial.MaxPlayers > 0 {
		out.MaxPlayers = partial.MaxPlayers
	}
	if partial.RoundTime > 0 {
		out.RoundTime = partial.RoundTime
	}
	if partial.Rounds > 0 {
		out.Rounds = partial.Rounds
	}
	if partial.WordOptions > 0 {
		out.WordOptions = partial.WordOptions
	}
	return out
}
