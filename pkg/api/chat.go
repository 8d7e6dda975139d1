// Package api holds the JSON contract of the chat endpoint shared by the
// service and its clients.
package api

// ChatPath is the single chat endpoint.
const ChatPath = "/chat"

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Persona   string `json:"persona"`
}

// ChatResponse is the success body of POST /chat. Response is a pointer so a
// body without the field can be told apart from an empty reply.
type ChatResponse struct {
	Response *string `json:"response"`
}

// ErrorBody is returned with any non-2xx status.
type ErrorBody struct {
	Detail string `json:"detail"`
}
