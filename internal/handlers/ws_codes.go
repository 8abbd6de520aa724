// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the lobby feed.
// These provide more specific reasons for closure than standard codes.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	InvalidMessageError = 3001 // Client sent a frame the feed does not understand.
)
