package chat

import "time"

// Session captures a transient anonymous conversation held by the service.
// The id is chosen by the client.
type Session struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"personaId"`
	CreatedAt time.Time `json:"createdAt"`
}
