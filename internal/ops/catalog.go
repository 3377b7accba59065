// Package ops is the operation catalog: one file per domain group, each
// registering its resources (read-only queries) and tools (state-changing
// actions) with the dispatcher. Handlers validate inputs first, then walk
// the host graph through the accessor helpers; they hold no state between
// calls.
package ops

import (
	"github.com/framewise/resolve-mcp/internal/dispatch"
	"github.com/framewise/resolve-mcp/internal/host"
	"github.com/framewise/resolve-mcp/internal/page"
)

// Catalog wires the domain groups to the shared host handle.
type Catalog struct {
	handle  *host.Handle
	connect host.Connector
	guard   *page.Guard

	// legacy selects the plain-string response encoding for the
	// operation groups that historically returned strings.
	legacy bool
}

// New builds a catalog over the shared handle. connect is used by the
// reconnect operation; guard gates handle republication.
func New(handle *host.Handle, connect host.Connector, guard *page.Guard, legacy bool) *Catalog {
	return &Catalog{handle: handle, connect: connect, guard: guard, legacy: legacy}
}

// Register adds every domain group to the registry.
func (c *Catalog) Register(r *dispatch.Registry) {
	c.registerCore(r)
	c.registerProject(r)
	c.registerTimeline(r)
	c.registerMedia(r)
	c.registerColor(r)
	c.registerDelivery(r)
	c.registerFusion(r)
	c.registerFairlight(r)
	c.registerCache(r)
	c.registerKeyframe(r)
	c.registerInspect(r)
}

// host returns the connected host or a connection fault.
func (c *Catalog) host() (host.Host, error) {
	return host.Connected(c.handle)
}
