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
	keyframeProperties = []string{
		"Pan", "Tilt", "ZoomX", "ZoomY", "Rotation", "AnchorPointX", "AnchorPointY",
		"Pitch", "Yaw", "Opacity", "CropLeft", "CropRight", "CropTop", "CropBottom",
		"Volume",
	}
	interpolationTypes = []string{"Linear", "Bezier", "Ease-In", "Ease-Out"}
	keyframeModes      = []string{"All", "Color", "Sizing"}
)

// KeyframeListArgs lists the keyframes on one item property.
type KeyframeListArgs struct {
	TimelineItemID string `json:"timeline_item_id" jsonschema:"ID or name of the timeline item"`
	PropertyName   string `json:"property_name" jsonschema:"Keyframeable property name"`
}

// KeyframeArgs places a keyframe on an item property.
type KeyframeArgs struct {
	TimelineItemID string  `json:"timeline_item_id" jsonschema:"ID or name of the timeline item"`
	PropertyName   string  `json:"property_name" jsonschema:"Keyframeable property name, e.g. ZoomX or Opacity"`
	Frame          int     `json:"frame" jsonschema:"Frame position for the keyframe"`
	Value          float64 `json:"value" jsonschema:"Property value at the keyframe"`
}

// ModifyKeyframeArgs changes the value or position of an existing keyframe.
type ModifyKeyframeArgs struct {
	TimelineItemID string   `json:"timeline_item_id" jsonschema:"ID or name of the timeline item"`
	PropertyName   string   `json:"property_name" jsonschema:"Keyframeable property name"`
	Frame          int      `json:"frame" jsonschema:"Current frame position of the keyframe"`
	NewValue       *float64 `json:"new_value,omitempty" jsonschema:"New value for the keyframe"`
	NewFrame       *int     `json:"new_frame,omitempty" jsonschema:"New frame position for the keyframe"`
}

// DeleteKeyframeArgs removes a keyframe from an item property.
type DeleteKeyframeArgs struct {
	TimelineItemID string `json:"timeline_item_id" jsonschema:"ID or name of the timeline item"`
	PropertyName   string `json:"property_name" jsonschema:"Keyframeable property name"`
	Frame          int    `json:"frame" jsonschema:"Frame position of the keyframe to delete"`
}

// InterpolationArgs changes the interpolation of an existing keyframe.
type InterpolationArgs struct {
	TimelineItemID    string `json:"timeline_item_id" jsonschema:"ID or name of the timeline item"`
	PropertyName      string `json:"property_name" jsonschema:"Keyframeable property name"`
	Frame             int    `json:"frame" jsonschema:"Frame position of the keyframe"`
	InterpolationType string `json:"interpolation_type" jsonschema:"Interpolation: Linear, Bezier, Ease-In or Ease-Out"`
}

// KeyframeModeArgs enables a keyframe editing mode on an item.
type KeyframeModeArgs struct {
	TimelineItemID string `json:"timeline_item_id" jsonschema:"ID or name of the timeline item"`
	KeyframeMode   string `json:"keyframe_mode,omitempty" jsonschema:"Mode: All, Color or Sizing (default All)"`
}

func (c *Catalog) registerKeyframe(r *dispatch.Registry) {
	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "get_timeline_item_keyframes",
		Description: "List the keyframes on one property of a timeline item.",
	}, page.None, false, func(ctx context.Context, args KeyframeListArgs) (respond.Envelope, error) {
		prop, err := validate.Choice(args.PropertyName, keyframeProperties, "property_name")
		if err != nil {
			return respond.Envelope{}, err
		}
		item, err := c.itemByID(args.TimelineItemID)
		if err != nil {
			return respond.Envelope{}, err
		}
		frames := item.Keyframes(prop)
		return respond.Success(fmt.Sprintf("%d keyframes on %s", len(frames), prop), map[string]any{
			"item":      item.Name(),
			"property":  prop,
			"keyframes": frames,
		}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "add_keyframe",
		Description: "Add a keyframe to a timeline item property at a frame.",
	}, page.None, c.legacy, func(ctx context.Context, args KeyframeArgs) (respond.Envelope, error) {
		prop, err := validate.Choice(args.PropertyName, keyframeProperties, "property_name")
		if err != nil {
			return respond.Envelope{}, err
		}
		if err := validate.PositiveInt(args.Frame, "frame"); err != nil {
			return respond.Envelope{}, err
		}
		item, err := c.itemByID(args.TimelineItemID)
		if err != nil {
			return respond.Envelope{}, err
		}
		if !item.AddKeyframe(prop, args.Frame, args.Value) {
			return respond.Envelope{}, fault.Operation("Failed to add keyframe for %s at frame %d", prop, args.Frame)
		}
		return respond.Success(fmt.Sprintf("Added keyframe for %s at frame %d with value %v",
			prop, args.Frame, args.Value), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "modify_keyframe",
		Description: "Change the value or frame position of an existing keyframe.",
	}, page.None, c.legacy, func(ctx context.Context, args ModifyKeyframeArgs) (respond.Envelope, error) {
		prop, err := validate.Choice(args.PropertyName, keyframeProperties, "property_name")
		if err != nil {
			return respond.Envelope{}, err
		}
		if args.NewValue == nil && args.NewFrame == nil {
			return respond.Envelope{}, fault.Operation("Must specify at least one of new_value or new_frame")
		}
		item, err := c.itemByID(args.TimelineItemID)
		if err != nil {
			return respond.Envelope{}, err
		}
		existing, found := keyframeAt(item, prop, args.Frame)
		if !found {
			return respond.Envelope{}, fault.Operation("No keyframe found at frame %d for property '%s'",
				args.Frame, prop)
		}
		if args.NewFrame != nil {
			value := existing.Value
			if args.NewValue != nil {
				value = *args.NewValue
			}
			if !item.DeleteKeyframe(prop, args.Frame) || !item.AddKeyframe(prop, *args.NewFrame, value) {
				return respond.Envelope{}, fault.Operation("Failed to move keyframe for %s", prop)
			}
			return respond.Success(fmt.Sprintf("Moved keyframe for %s from frame %d to %d",
				prop, args.Frame, *args.NewFrame), nil), nil
		}
		if !item.ModifyKeyframe(prop, args.Frame, *args.NewValue) {
			return respond.Envelope{}, fault.Operation("Failed to update keyframe value for %s", prop)
		}
		return respond.Success(fmt.Sprintf("Updated keyframe value for %s at frame %d to %v",
			prop, args.Frame, *args.NewValue), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "delete_keyframe",
		Description: "Delete the keyframe at a frame on a timeline item property.",
	}, page.None, c.legacy, func(ctx context.Context, args DeleteKeyframeArgs) (respond.Envelope, error) {
		prop, err := validate.Choice(args.PropertyName, keyframeProperties, "property_name")
		if err != nil {
			return respond.Envelope{}, err
		}
		item, err := c.itemByID(args.TimelineItemID)
		if err != nil {
			return respond.Envelope{}, err
		}
		if _, found := keyframeAt(item, prop, args.Frame); !found {
			return respond.Envelope{}, fault.Operation("No keyframe found at frame %d for property '%s'",
				args.Frame, prop)
		}
		if !item.DeleteKeyframe(prop, args.Frame) {
			return respond.Envelope{}, fault.Operation("Failed to delete keyframe for %s at frame %d",
				prop, args.Frame)
		}
		return respond.Success(fmt.Sprintf("Deleted keyframe for %s at frame %d", prop, args.Frame), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "set_keyframe_interpolation",
		Description: "Set the interpolation type of an existing keyframe.",
	}, page.None, c.legacy, func(ctx context.Context, args InterpolationArgs) (respond.Envelope, error) {
		prop, err := validate.Choice(args.PropertyName, keyframeProperties, "property_name")
		if err != nil {
			return respond.Envelope{}, err
		}
		mode, err := validate.Choice(args.InterpolationType, interpolationTypes, "interpolation_type")
		if err != nil {
			return respond.Envelope{}, err
		}
		item, err := c.itemByID(args.TimelineItemID)
		if err != nil {
			return respond.Envelope{}, err
		}
		if _, found := keyframeAt(item, prop, args.Frame); !found {
			return respond.Envelope{}, fault.Operation("No keyframe found at frame %d for property '%s'",
				args.Frame, prop)
		}
		if !item.SetKeyframeInterpolation(prop, args.Frame, mode) {
			return respond.Envelope{}, fault.Operation("Failed to set interpolation for %s at frame %d",
				prop, args.Frame)
		}
		return respond.Success(fmt.Sprintf("Set interpolation for %s keyframe at frame %d to %s",
			prop, args.Frame, mode), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "enable_keyframes",
		Description: "Enable a keyframe editing mode on a timeline item.",
	}, page.None, c.legacy, func(ctx context.Context, args KeyframeModeArgs) (respond.Envelope, error) {
		mode := args.KeyframeMode
		if mode == "" {
			mode = "All"
		}
		mode, err := validate.Choice(mode, keyframeModes, "keyframe_mode")
		if err != nil {
			return respond.Envelope{}, err
		}
		item, err := c.itemByID(args.TimelineItemID)
		if err != nil {
			return respond.Envelope{}, err
		}
		if !item.SetKeyframeMode(mode) {
			return respond.Envelope{}, fault.Operation("Failed to enable %s keyframe mode for timeline item '%s'",
				mode, item.Name())
		}
		return respond.Success(fmt.Sprintf("Enabled %s keyframe mode for timeline item '%s'",
			mode, item.Name()), nil), nil
	})
}

func (c *Catalog) itemByID(id string) (host.TimelineItem, error) {
	if err := validate.NonEmpty(id, "timeline_item_id"); err != nil {
		return nil, err
	}
	t, err := c.currentTimeline()
	if err != nil {
		return nil, err
	}
	item := host.ItemByID(t, id)
	if item == nil {
		return nil, fault.ItemNotFound(id)
	}
	return item, nil
}

func keyframeAt(item host.TimelineItem, property string, frame int) (host.Keyframe, bool) {
	for _, kf := range item.Keyframes(property) {
		if kf.Frame == frame {
			return kf, true
		}
	}
	return host.Keyframe{}, false
}
