package handlers

import (
	"github.com/rs/zerolog"

	"kust-server/support-api/internal/domain/chat"
)

// Provider bundles all HTTP handlers for route registration.
type Provider struct {
	Chat *ChatHandler
}

// NewProvider constructs every handler.
func NewProvider(service ChatService, sessions chat.Store, log zerolog.Logger) *Provider {
	return &Provider{
		Chat: NewChatHandler(service, sessions, log),
	}
}
