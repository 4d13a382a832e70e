package stream

import "github.com/softrender/softrender/internal/engine"

// Message is a text frame on the stream socket. Rendered frames travel
// as binary PNG messages instead.
type Message struct {
	Type  string                `json:"type"`
	Frame *int                  `json:"frame,omitempty"`
	State *engine.PlaybackState `json:"state,omitempty"`
	Error string                `json:"error,omitempty"`
}

const (
	// Client to server
	TypePlay   = "play"
	TypePause  = "pause"
	TypeToggle = "toggle"
	TypeSeek   = "seek"

	// Server to client
	TypeState = "state"
	TypeError = "error"
)
