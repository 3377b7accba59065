package page

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/framewise/resolve-mcp/internal/fault"
	"github.com/framewise/resolve-mcp/internal/host"
	"github.com/framewise/resolve-mcp/internal/respond"
)

// Guard ensures a required page is active while an operation runs and
// restores the previous page afterward, on every exit path. One guard
// serves the whole catalog: its mutex serializes guarded operations, since
// page switches are global host state and the host's scripting interface is
// not safe under concurrent mutation.
type Guard struct {
	handle *host.Handle
	log    *log.Logger
	mu     sync.Mutex
}

// NewGuard builds a guard over the shared host handle.
func NewGuard(h *host.Handle, logger *log.Logger) *Guard {
	return &Guard{handle: h, log: logger}
}

// Ensure switches to required if needed, runs fn, and switches back if a
// switch happened. fn's envelope is returned unchanged; a restore failure
// is logged as a warning and never overrides it. If the initial switch
// fails, fn is never invoked and an error envelope is returned.
func (g *Guard) Ensure(required Page, fn func() respond.Envelope) respond.Envelope {
	g.mu.Lock()
	defer g.mu.Unlock()

	h := g.handle.Get()
	if h == nil {
		return respond.Error("Not connected to DaVinci Resolve", string(fault.CodeConnection), nil)
	}

	current, err := h.CurrentPage()
	if err != nil {
		g.log.Error("could not read current page", "err", err)
		return respond.Error("DaVinci Resolve connection error: "+err.Error(), string(fault.CodeConnection), nil)
	}

	if !host.SamePage(current, string(required)) {
		if err := h.OpenPage(string(required)); err != nil {
			g.log.Error("page switch failed", "to", required, "err", err)
			return respond.Error(fmt.Sprintf("Failed to switch to %s page", required), string(fault.CodeOperation), nil)
		}
		g.log.Debug("switched page", "from", current, "to", required)

		// Restore runs whether fn returns or panics.
		defer func() {
			if err := h.OpenPage(current); err != nil {
				g.log.Warn("failed to restore page", "to", current, "err", err)
				return
			}
			g.log.Debug("restored page", "to", current)
		}()
	}

	return fn()
}

// Exclusive runs fn while holding the execution gate without touching
// pages. Handle republication (reconnect) goes through here so a new host
// is never published while a guarded operation is in flight.
func (g *Guard) Exclusive(fn func() respond.Envelope) respond.Envelope {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn()
}
