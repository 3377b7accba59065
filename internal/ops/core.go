package ops

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/framewise/resolve-mcp/internal/dispatch"
	"github.com/framewise/resolve-mcp/internal/fault"
	"github.com/framewise/resolve-mcp/internal/page"
	"github.com/framewise/resolve-mcp/internal/respond"
)

// SwitchPageArgs selects a page by name.
type SwitchPageArgs struct {
	Page string `json:"page" jsonschema:"The page to switch to: media, cut, edit, fusion, color, fairlight or deliver"`
}

func (c *Catalog) registerCore(r *dispatch.Registry) {
	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://version",
		Name:        "version",
		Description: "DaVinci Resolve product and version information.",
		MIMEType:    "application/json",
	}, page.None, func(ctx context.Context) (respond.Envelope, error) {
		h, err := c.host()
		if err != nil {
			return respond.Envelope{}, err
		}
		version := fmt.Sprintf("%s %s", h.ProductName(), h.Version())
		return respond.Success(version, map[string]any{
			"product": h.ProductName(),
			"version": h.Version(),
		}), nil
	})

	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://current-page",
		Name:        "current-page",
		Description: "The page currently open in DaVinci Resolve (edit, color, fusion, ...).",
		MIMEType:    "application/json",
	}, page.None, func(ctx context.Context) (respond.Envelope, error) {
		h, err := c.host()
		if err != nil {
			return respond.Envelope{}, err
		}
		current, err := h.CurrentPage()
		if err != nil {
			return respond.Envelope{}, fault.Connection("DaVinci Resolve connection error: %v", err)
		}
		return respond.Success(current, map[string]any{"page": current}), nil
	})

	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://connection/status",
		Name:        "connection-status",
		Description: "Whether the server is connected to a running DaVinci Resolve instance.",
		MIMEType:    "application/json",
	}, page.None, func(ctx context.Context) (respond.Envelope, error) {
		h := c.handle.Get()
		if h == nil {
			return respond.Error("Not connected to DaVinci Resolve", string(fault.CodeConnection), nil,
				respond.Field{Key: "connected", Value: false}), nil
		}
		current, err := h.CurrentPage()
		if err != nil {
			return respond.Error("Connection error: "+err.Error(), string(fault.CodeConnection), nil,
				respond.Field{Key: "connected", Value: false}), nil
		}
		return respond.Success("Connected", map[string]any{
			"product_name": h.ProductName(),
			"version":      h.Version(),
			"current_page": current,
		}, respond.Field{Key: "connected", Value: true}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "switch_page",
		Description: "Switch DaVinci Resolve to a specific page. Valid pages: media, cut, edit, fusion, color, fairlight, deliver.",
	}, page.None, false, func(ctx context.Context, args SwitchPageArgs) (respond.Envelope, error) {
		h, err := c.host()
		if err != nil {
			return respond.Envelope{}, err
		}
		target, err := page.Parse(args.Page)
		if err != nil {
			return respond.Envelope{}, err
		}
		if err := h.OpenPage(string(target)); err != nil {
			return respond.Envelope{}, fault.Operation("Failed to switch to %s page", target)
		}
		return respond.Success(fmt.Sprintf("Switched to %s page", target), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "get_product_info",
		Description: "Get DaVinci Resolve product name and version.",
	}, page.None, false, func(ctx context.Context, args struct{}) (respond.Envelope, error) {
		h, err := c.host()
		if err != nil {
			return respond.Envelope{}, err
		}
		return respond.Success(fmt.Sprintf("Product: %s, Version: %s", h.ProductName(), h.Version()), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "reconnect",
		Description: "Probe for a running DaVinci Resolve instance and replace the connection. Safe to call when already connected.",
	}, page.None, false, func(ctx context.Context, args struct{}) (respond.Envelope, error) {
		if c.connect == nil {
			return respond.Envelope{}, fault.Connection("No connector configured")
		}
		// The swap must never land while a guarded operation is in
		// flight, so it happens under the execution gate.
		return c.guard.Exclusive(func() respond.Envelope {
			h, err := c.connect()
			if err != nil {
				return respond.Error("Failed to reconnect. Is DaVinci Resolve running?",
					string(fault.CodeConnection), err.Error())
			}
			c.handle.Publish(h)
			return respond.Success(fmt.Sprintf("Reconnected to %s %s", h.ProductName(), h.Version()), nil)
		}), nil
	})
}
