package routes

import (
	"github.com/gin-gonic/gin"

	"kust-server/support-api/internal/interfaces/httpserver/handlers"
)

// Provider coordinates all route registrations.
type Provider struct {
	handlers *handlers.Provider
}

// NewProvider constructs the route provider.
func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{handlers: handlerProvider}
}

// Register attaches the chat API routes to the gin engine.
func (p *Provider) Register(engine *gin.Engine) {
	engine.POST("/chat/stream", p.handlers.Chat.Stream)

	api := engine.Group("/api")
	api.POST("/reset", p.handlers.Chat.Reset)
}
