package admin

import "github.com/spedigo-next/internal/provider"

// Handler serves the ops API: operator auth plus read access to the
// processing state the webhooks produce.
type Handler struct {
	*provider.Container
}

// New creates the ops handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
