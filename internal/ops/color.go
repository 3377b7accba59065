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

var (
	colorWheels      = []string{"Lift", "Gamma", "Gain", "Offset"}
	colorWheelParams = []string{"Red", "Green", "Blue", "Master"}
)

// ColorItemArgs addresses a graded timeline item.
type ColorItemArgs struct {
	ItemName string `json:"item_name" jsonschema:"Name of the timeline item to grade"`
}

// ColorWheelArgs adjusts one color wheel channel on a grade node.
type ColorWheelArgs struct {
	ItemName string  `json:"item_name" jsonschema:"Name of the timeline item to grade"`
	Node     int     `json:"node" jsonschema:"1-based grade node index"`
	Wheel    string  `json:"wheel" jsonschema:"Color wheel: Lift, Gamma, Gain or Offset"`
	Param    string  `json:"param" jsonschema:"Channel: Red, Green, Blue or Master"`
	Value    float64 `json:"value" jsonschema:"Channel value between -1.0 and 1.0"`
}

func (c *Catalog) registerColor(r *dispatch.Registry) {
	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://color/current-grade",
		Name:        "current-grade",
		Description: "Grade node summary for the first clip on the current timeline.",
		MIMEType:    "application/json",
	}, page.Color, func(ctx context.Context) (respond.Envelope, error) {
		item, err := c.firstVideoItem()
		if err != nil {
			return respond.Envelope{}, err
		}
		return respond.Success(item.Name(), map[string]any{
			"item":  item.Name(),
			"nodes": item.ColorNodeCount(),
		}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "add_serial_node",
		Description: "Append a serial grade node to a timeline item.",
	}, page.Color, false, func(ctx context.Context, args ColorItemArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.ItemName, "item_name"); err != nil {
			return respond.Envelope{}, err
		}
		item, err := c.videoItem(args.ItemName)
		if err != nil {
			return respond.Envelope{}, err
		}
		index := item.AddColorNode()
		if index == 0 {
			return respond.Envelope{}, fault.Operation("Failed to add node to '%s'", args.ItemName)
		}
		return respond.Success(fmt.Sprintf("Added node %d to '%s'", index, args.ItemName),
			map[string]any{"node": index}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "set_color_wheel_param",
		Description: "Set one color wheel channel on a grade node of a timeline item.",
	}, page.Color, false, func(ctx context.Context, args ColorWheelArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.ItemName, "item_name"); err != nil {
			return respond.Envelope{}, err
		}
		if err := validate.PositiveInt(args.Node, "node"); err != nil {
			return respond.Envelope{}, err
		}
		wheel, err := validate.Choice(args.Wheel, colorWheels, "wheel")
		if err != nil {
			return respond.Envelope{}, err
		}
		param, err := validate.Choice(args.Param, colorWheelParams, "param")
		if err != nil {
			return respond.Envelope{}, err
		}
		if err := validate.Range(args.Value, -1.0, 1.0, "value"); err != nil {
			return respond.Envelope{}, err
		}
		item, err := c.videoItem(args.ItemName)
		if err != nil {
			return respond.Envelope{}, err
		}
		if !item.SetColorWheelParam(args.Node, wheel, param, args.Value) {
			return respond.Envelope{}, fault.Operation("Failed to set %s %s on node %d of '%s'",
				wheel, param, args.Node, args.ItemName)
		}
		return respond.Success(fmt.Sprintf("Set %s %s to %v on node %d", wheel, param, args.Value, args.Node), nil), nil
	})
}

func (c *Catalog) videoItem(name string) (host.TimelineItem, error) {
	t, err := c.currentTimeline()
	if err != nil {
		return nil, err
	}
	item := host.ItemByName(t, name, "video")
	if item == nil {
		return nil, fault.ItemNotFound(name)
	}
	return item, nil
}

func (c *Catalog) firstVideoItem() (host.TimelineItem, error) {
	t, err := c.currentTimeline()
	if err != nil {
		return nil, err
	}
	items := t.ItemsInTrack("video", 1)
	if len(items) == 0 {
		return nil, fault.Operation("No clips on the current timeline")
	}
	return items[0], nil
}
