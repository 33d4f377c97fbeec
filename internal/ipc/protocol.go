// Package ipc provides the unix-socket control protocol for a running bot.
package ipc

// Request is one control command: "status" or "stop".
type Request struct {
	Command string `json:"command"`
}

// Response reports the outcome and a snapshot of the bot's state.
type Response struct {
	OK        bool   `json:"ok"`
	State     string `json:"state,omitempty"`
	Active    int    `json:"active,omitempty"`
	Processed uint64 `json:"processed,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}
