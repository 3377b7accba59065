package ops

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/framewise/resolve-mcp/internal/dispatch"
	"github.com/framewise/resolve-mcp/internal/fault"
	"github.com/framewise/resolve-mcp/internal/host"
	"github.com/framewise/resolve-mcp/internal/page"
	"github.com/framewise/resolve-mcp/internal/respond"
	"github.com/framewise/resolve-mcp/internal/validate"
)

var markerColors = []string{
	"Blue", "Cyan", "Green", "Yellow", "Red", "Pink",
	"Purple", "Fuchsia", "Rose", "Lavender", "Sky", "Mint",
	"Lemon", "Sand", "Cocoa", "Cream",
}

// TimelineNameArgs addresses a timeline by name.
type TimelineNameArgs struct {
	Name string `json:"name" jsonschema:"Name of the timeline"`
}

// AddMarkerArgs places a marker on the current timeline.
type AddMarkerArgs struct {
	Frame    int    `json:"frame" jsonschema:"Frame to place the marker at"`
	Color    string `json:"color,omitempty" jsonschema:"Marker color (default Blue)"`
	Name     string `json:"name,omitempty" jsonschema:"Marker name"`
	Note     string `json:"note,omitempty" jsonschema:"Marker note text"`
	Duration int    `json:"duration,omitempty" jsonschema:"Marker duration in frames (default 1)"`
}

func (c *Catalog) registerTimeline(r *dispatch.Registry) {
	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://timelines",
		Name:        "timelines",
		Description: "All timelines in the current project.",
		MIMEType:    "application/json",
	}, page.None, func(ctx context.Context) (respond.Envelope, error) {
		p, err := c.currentProject()
		if err != nil {
			return respond.Envelope{}, err
		}
		names := make([]string, 0, p.TimelineCount())
		for i := 1; i <= p.TimelineCount(); i++ {
			if t := p.TimelineByIndex(i); t != nil {
				names = append(names, t.Name())
			}
		}
		return respond.Success(fmt.Sprintf("%d timelines", len(names)), names), nil
	})

	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://current-timeline",
		Name:        "current-timeline",
		Description: "The active timeline: name, frame range and track counts.",
		MIMEType:    "application/json",
	}, page.None, func(ctx context.Context) (respond.Envelope, error) {
		t, err := c.currentTimeline()
		if err != nil {
			return respond.Envelope{}, err
		}
		return respond.Success(t.Name(), map[string]any{
			"name":         t.Name(),
			"start_frame":  t.StartFrame(),
			"end_frame":    t.EndFrame(),
			"video_tracks": t.TrackCount("video"),
			"audio_tracks": t.TrackCount("audio"),
		}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "create_timeline",
		Description: "Create a new empty timeline in the current project and make it current.",
	}, page.None, false, func(ctx context.Context, args TimelineNameArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.Name, "name"); err != nil {
			return respond.Envelope{}, err
		}
		pool, err := c.pool()
		if err != nil {
			return respond.Envelope{}, err
		}
		if pool.CreateEmptyTimeline(args.Name) == nil {
			return respond.Envelope{}, fault.Operation("Failed to create timeline '%s'", args.Name)
		}
		return respond.Success(fmt.Sprintf("Created timeline '%s'", args.Name), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "set_current_timeline",
		Description: "Make the named timeline the active one.",
	}, page.None, false, func(ctx context.Context, args TimelineNameArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.Name, "name"); err != nil {
			return respond.Envelope{}, err
		}
		p, err := c.currentProject()
		if err != nil {
			return respond.Envelope{}, err
		}
		var target host.Timeline
		for i := 1; i <= p.TimelineCount(); i++ {
			if t := p.TimelineByIndex(i); t != nil && t.Name() == args.Name {
				target = t
				break
			}
		}
		if target == nil {
			return respond.Envelope{}, fault.Operation("Timeline '%s' not found", args.Name)
		}
		if !p.SetCurrentTimeline(target) {
			return respond.Envelope{}, fault.Operation("Failed to switch to timeline '%s'", args.Name)
		}
		return respond.Success(fmt.Sprintf("Switched to timeline '%s'", args.Name), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "add_marker",
		Description: "Add a marker to the current timeline at the given frame.",
	}, page.None, false, func(ctx context.Context, args AddMarkerArgs) (respond.Envelope, error) {
		color := args.Color
		if color == "" {
			color = "Blue"
		}
		color, err := validate.Choice(color, markerColors, "color")
		if err != nil {
			return respond.Envelope{}, err
		}
		duration := args.Duration
		if duration == 0 {
			duration = 1
		}
		if err := validate.PositiveInt(duration, "duration"); err != nil {
			return respond.Envelope{}, err
		}
		t, err := c.currentTimeline()
		if err != nil {
			return respond.Envelope{}, err
		}
		if err := validate.Range(float64(args.Frame), float64(t.StartFrame()), float64(t.EndFrame()), "frame"); err != nil {
			return respond.Envelope{}, err
		}
		if !t.AddMarker(args.Frame, color, args.Name, args.Note, duration) {
			return respond.Envelope{}, fault.Operation("Failed to add marker at frame %d", args.Frame)
		}
		return respond.Success(fmt.Sprintf("Added %s marker at frame %d", color, args.Frame), nil), nil
	})
}

func (c *Catalog) currentTimeline() (host.Timeline, error) {
	h, err := c.host()
	if err != nil {
		return nil, err
	}
	return host.CurrentTimeline(h)
}

func (c *Catalog) pool() (host.MediaPool, error) {
	h, err := c.host()
	if err != nil {
		return nil, err
	}
	return host.Pool(h)
}
