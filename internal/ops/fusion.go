package ops

import (
	"context"
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/framewise/resolve-mcp/internal/dispatch"
	"github.com/framewise/resolve-mcp/internal/fault"
	"github.com/framewise/resolve-mcp/internal/host"
	"github.com/framewise/resolve-mcp/internal/page"
	"github.com/framewise/resolve-mcp/internal/respond"
	"github.com/framewise/resolve-mcp/internal/validate"
)

// fusionNodeTypes groups the node types the catalog will create, keyed by
// category. The flattened list doubles as the allow-list for add_fusion_node.
var fusionNodeTypes = map[string][]string{
	"generators":       {"Background", "Checkerboard", "Ellipse", "Noise", "Plasma", "Rectangle", "Text+", "TextPlus"},
	"color_correction": {"BrightnessContrast", "ChannelBooleans", "ColorCorrector", "ColorCurves", "Gamma", "Hue", "Saturation"},
	"composite":        {"AlphaMultiply", "AlphaDivide", "Merge", "Over", "Under"},
	"transform":        {"Transform", "DVE", "Resize", "Crop"},
	"filters":          {"Blur", "Sharpen", "Glow", "Erode", "Dilate"},
	"keying":           {"DeltaKeyer", "LumaKeyer", "ChromaKeyer"},
	"tracking":         {"Tracker", "PlanarTracker"},
}

// mergeBlendModes maps blend mode names to the Merge node's Operator value.
var mergeBlendModes = map[string]int{
	"Normal":     0,
	"Add":        1,
	"Multiply":   2,
	"Screen":     3,
	"Overlay":    4,
	"SoftLight":  5,
	"HardLight":  6,
	"Darken":     7,
	"Lighten":    8,
	"Difference": 9,
}

// FusionNodeArgs creates a node of an arbitrary allowed type.
type FusionNodeArgs struct {
	NodeType string  `json:"node_type" jsonschema:"Node type, as listed by resolve://fusion/available-nodes"`
	Name     string  `json:"name,omitempty" jsonschema:"Optional custom name for the node"`
	PosX     float64 `json:"pos_x,omitempty" jsonschema:"Flow view X position"`
	PosY     float64 `json:"pos_y,omitempty" jsonschema:"Flow view Y position"`
}

// MergeNodeArgs creates a Merge node for compositing.
type MergeNodeArgs struct {
	Name      string   `json:"name,omitempty" jsonschema:"Optional custom name for the node"`
	BlendMode string   `json:"blend_mode,omitempty" jsonschema:"Blend mode: Normal, Add, Multiply, Screen, Overlay, SoftLight, HardLight, Darken, Lighten or Difference"`
	Opacity   *float64 `json:"opacity,omitempty" jsonschema:"Blend amount between 0.0 and 1.0 (default 1.0)"`
}

// TextNodeArgs creates a Text+ node.
type TextNodeArgs struct {
	Name string   `json:"name,omitempty" jsonschema:"Optional custom name for the node"`
	Text string   `json:"text" jsonschema:"Text content"`
	Font string   `json:"font,omitempty" jsonschema:"Font name (default Arial)"`
	Size *float64 `json:"size,omitempty" jsonschema:"Text size between 0.01 and 1.0 (default 0.1)"`
}

// TransformNodeArgs creates a Transform node with initial geometry.
type TransformNodeArgs struct {
	Name    string   `json:"name,omitempty" jsonschema:"Optional custom name for the node"`
	CenterX *float64 `json:"center_x,omitempty" jsonschema:"X center position between 0.0 and 1.0 (default 0.5)"`
	CenterY *float64 `json:"center_y,omitempty" jsonschema:"Y center position between 0.0 and 1.0 (default 0.5)"`
	Angle   float64  `json:"angle,omitempty" jsonschema:"Rotation angle in degrees"`
	Size    *float64 `json:"size,omitempty" jsonschema:"Scale factor between 0.1 and 10.0 (default 1.0)"`
}

// BackgroundNodeArgs creates a Background generator node.
type BackgroundNodeArgs struct {
	Name  string    `json:"name,omitempty" jsonschema:"Optional custom name for the node"`
	Color []float64 `json:"color,omitempty" jsonschema:"RGBA color components between 0.0 and 1.0 (default opaque black)"`
}

// RenderCompArgs renders the current composition over a frame range.
type RenderCompArgs struct {
	StartFrame *int `json:"start_frame,omitempty" jsonschema:"First frame to render (composition start when omitted)"`
	EndFrame   *int `json:"end_frame,omitempty" jsonschema:"Last frame to render (composition end when omitted)"`
}

// FusionClipArgs converts a timeline item into a Fusion clip.
type FusionClipArgs struct {
	TimelineItemName string `json:"timeline_item_name" jsonschema:"Name of the timeline item to convert"`
}

// ConnectNodesArgs connects two nodes in the composition.
type ConnectNodesArgs struct {
	SourceNode  string `json:"source_node" jsonschema:"Name of the source node"`
	TargetNode  string `json:"target_node" jsonschema:"Name of the target node"`
	TargetInput string `json:"target_input,omitempty" jsonschema:"Input connector on the target (default Input)"`
}

// NodeNameArgs addresses a node by name.
type NodeNameArgs struct {
	NodeName string `json:"node_name" jsonschema:"Name of the node"`
}

// NodeParamArgs sets one input on a node.
type NodeParamArgs struct {
	NodeName  string `json:"node_name" jsonschema:"Name of the node"`
	Parameter string `json:"parameter" jsonschema:"Input name to set"`
	Value     any    `json:"value" jsonschema:"Value to assign to the input"`
}

func (c *Catalog) registerFusion(r *dispatch.Registry) {
	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://fusion/composition",
		Name:        "fusion-composition",
		Description: "Frame range and node count of the current Fusion composition.",
		MIMEType:    "application/json",
	}, page.Fusion, func(ctx context.Context) (respond.Envelope, error) {
		comp, err := c.comp()
		if err != nil {
			return respond.Envelope{}, err
		}
		start, end := comp.FrameRange()
		return respond.Success("Current composition", map[string]any{
			"start_frame": start,
			"end_frame":   end,
			"node_count":  len(comp.Tools()),
		}), nil
	})

	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://fusion/nodes",
		Name:        "fusion-nodes",
		Description: "Nodes in the current Fusion composition.",
		MIMEType:    "application/json",
	}, page.Fusion, func(ctx context.Context) (respond.Envelope, error) {
		comp, err := c.comp()
		if err != nil {
			return respond.Envelope{}, err
		}
		nodes := make([]map[string]any, 0)
		for _, n := range comp.Tools() {
			x, y := n.Position()
			nodes = append(nodes, map[string]any{
				"name": n.Name(),
				"type": n.Type(),
				"x":    x,
				"y":    y,
			})
		}
		return respond.Success(fmt.Sprintf("%d nodes", len(nodes)),
			map[string]any{"nodes": nodes}), nil
	})

	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://fusion/available-nodes",
		Name:        "fusion-available-nodes",
		Description: "Fusion node types the catalog can create, grouped by category.",
		MIMEType:    "application/json",
	}, page.None, func(ctx context.Context) (respond.Envelope, error) {
		return respond.Info("Available Fusion node types", fusionNodeTypes), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "add_fusion_node",
		Description: "Add a node of the given type to the current composition.",
	}, page.Fusion, false, func(ctx context.Context, args FusionNodeArgs) (respond.Envelope, error) {
		nodeType, err := validate.Choice(args.NodeType, allFusionNodeTypes(), "node_type")
		if err != nil {
			return respond.Envelope{}, err
		}
		comp, err := c.comp()
		if err != nil {
			return respond.Envelope{}, err
		}
		node := comp.AddTool(nodeType, args.PosX, args.PosY)
		if node == nil {
			return respond.Envelope{}, fault.Operation("Failed to create node of type '%s'", nodeType)
		}
		name := c.finishNode(node, args.Name)
		return respond.Success(fmt.Sprintf("Added %s node: %s", nodeType, name),
			map[string]any{"node_name": name, "node_type": nodeType}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "add_merge_node",
		Description: "Add a Merge node for compositing layers.",
	}, page.Fusion, false, func(ctx context.Context, args MergeNodeArgs) (respond.Envelope, error) {
		mode := args.BlendMode
		if mode == "" {
			mode = "Normal"
		}
		mode, err := validate.Choice(mode, blendModeNames(), "blend_mode")
		if err != nil {
			return respond.Envelope{}, err
		}
		opacity := 1.0
		if args.Opacity != nil {
			if err := validate.Range(*args.Opacity, 0.0, 1.0, "opacity"); err != nil {
				return respond.Envelope{}, err
			}
			opacity = *args.Opacity
		}
		comp, err := c.comp()
		if err != nil {
			return respond.Envelope{}, err
		}
		merge := comp.AddTool("Merge", 0, 0)
		if merge == nil {
			return respond.Envelope{}, fault.Operation("Failed to create Merge node")
		}
		merge.SetInput("Operator", mergeBlendModes[mode])
		merge.SetInput("Blend", opacity)
		name := c.finishNode(merge, args.Name)
		return respond.Success(fmt.Sprintf("Added Merge node: %s", name),
			map[string]any{"node_name": name, "blend_mode": mode, "opacity": opacity}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "add_text_node",
		Description: "Add a Text+ node with content, font and size.",
	}, page.Fusion, false, func(ctx context.Context, args TextNodeArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.Text, "text"); err != nil {
			return respond.Envelope{}, err
		}
		size := 0.1
		if args.Size != nil {
			if err := validate.Range(*args.Size, 0.01, 1.0, "size"); err != nil {
				return respond.Envelope{}, err
			}
			size = *args.Size
		}
		font := args.Font
		if font == "" {
			font = "Arial"
		}
		comp, err := c.comp()
		if err != nil {
			return respond.Envelope{}, err
		}
		node := comp.AddTool("Text+", 0, 0)
		if node == nil {
			return respond.Envelope{}, fault.Operation("Failed to create Text+ node")
		}
		node.SetInput("StyledText", args.Text)
		node.SetInput("Font", font)
		node.SetInput("Size", size)
		name := c.finishNode(node, args.Name)
		return respond.Success(fmt.Sprintf("Added Text+ node: %s", name), map[string]any{
			"node_name": name,
			"text":      args.Text,
			"font":      font,
			"size":      size,
		}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "add_transform_node",
		Description: "Add a Transform node with center, angle and scale.",
	}, page.Fusion, false, func(ctx context.Context, args TransformNodeArgs) (respond.Envelope, error) {
		centerX, centerY := 0.5, 0.5
		if args.CenterX != nil {
			if err := validate.Range(*args.CenterX, 0.0, 1.0, "center_x"); err != nil {
				return respond.Envelope{}, err
			}
			centerX = *args.CenterX
		}
		if args.CenterY != nil {
			if err := validate.Range(*args.CenterY, 0.0, 1.0, "center_y"); err != nil {
				return respond.Envelope{}, err
			}
			centerY = *args.CenterY
		}
		size := 1.0
		if args.Size != nil {
			if err := validate.Range(*args.Size, 0.1, 10.0, "size"); err != nil {
				return respond.Envelope{}, err
			}
			size = *args.Size
		}
		comp, err := c.comp()
		if err != nil {
			return respond.Envelope{}, err
		}
		transform := comp.AddTool("Transform", 0, 0)
		if transform == nil {
			return respond.Envelope{}, fault.Operation("Failed to create Transform node")
		}
		transform.SetInput("Center", []float64{centerX, centerY})
		transform.SetInput("Angle", args.Angle)
		transform.SetInput("Size", size)
		name := c.finishNode(transform, args.Name)
		return respond.Success(fmt.Sprintf("Added Transform node: %s", name), map[string]any{
			"node_name": name,
			"center":    []float64{centerX, centerY},
			"angle":     args.Angle,
			"size":      size,
		}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "add_background_node",
		Description: "Add a Background generator node with an RGBA fill color.",
	}, page.Fusion, false, func(ctx context.Context, args BackgroundNodeArgs) (respond.Envelope, error) {
		color := args.Color
		if len(color) == 0 {
			color = []float64{0.0, 0.0, 0.0, 1.0}
		}
		if len(color) != 4 {
			return respond.Envelope{}, fault.Operation("Color must be a list of 4 values [R, G, B, A]")
		}
		for i, component := range color {
			if err := validate.Range(component, 0.0, 1.0, fmt.Sprintf("color[%d]", i)); err != nil {
				return respond.Envelope{}, err
			}
		}
		comp, err := c.comp()
		if err != nil {
			return respond.Envelope{}, err
		}
		background := comp.AddTool("Background", 0, 0)
		if background == nil {
			return respond.Envelope{}, fault.Operation("Failed to create Background node")
		}
		background.SetInput("TopLeftColor", color)
		name := c.finishNode(background, args.Name)
		return respond.Success(fmt.Sprintf("Added Background node: %s", name), map[string]any{
			"node_name": name,
			"color":     color,
		}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "render_fusion_composition",
		Description: "Render the current Fusion composition over a frame range.",
	}, page.Fusion, false, func(ctx context.Context, args RenderCompArgs) (respond.Envelope, error) {
		comp, err := c.comp()
		if err != nil {
			return respond.Envelope{}, err
		}
		start, end := comp.FrameRange()
		if args.StartFrame != nil {
			start = *args.StartFrame
		}
		if args.EndFrame != nil {
			end = *args.EndFrame
		}
		if end < start {
			return respond.Envelope{}, &validate.Error{
				Param:      "end_frame",
				Constraint: fmt.Sprintf("must not be before start frame %d", start),
			}
		}
		if !comp.Render(start, end) {
			return respond.Envelope{}, fault.Operation("Failed to render Fusion composition")
		}
		return respond.Success(fmt.Sprintf("Started rendering Fusion composition from frame %d to %d", start, end),
			map[string]any{"render_start": start, "render_end": end}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "create_fusion_clip",
		Description: "Convert a timeline item into a Fusion clip.",
	}, page.Fusion, false, func(ctx context.Context, args FusionClipArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.TimelineItemName, "timeline_item_name"); err != nil {
			return respond.Envelope{}, err
		}
		t, err := c.currentTimeline()
		if err != nil {
			return respond.Envelope{}, err
		}
		item := host.ItemByName(t, args.TimelineItemName, "video")
		if item == nil {
			return respond.Envelope{}, fault.ItemNotFound(args.TimelineItemName)
		}
		if !t.CreateFusionClip([]host.TimelineItem{item}) {
			return respond.Envelope{}, fault.Operation("Failed to create Fusion clip")
		}
		return respond.Success(fmt.Sprintf("Created Fusion clip from '%s'", args.TimelineItemName), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "connect_fusion_nodes",
		Description: "Connect the output of one node to an input of another.",
	}, page.Fusion, false, func(ctx context.Context, args ConnectNodesArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.SourceNode, "source_node"); err != nil {
			return respond.Envelope{}, err
		}
		if err := validate.NonEmpty(args.TargetNode, "target_node"); err != nil {
			return respond.Envelope{}, err
		}
		input := args.TargetInput
		if input == "" {
			input = "Input"
		}
		comp, err := c.comp()
		if err != nil {
			return respond.Envelope{}, err
		}
		source := comp.FindTool(args.SourceNode)
		if source == nil {
			return respond.Envelope{}, fault.NodeNotFound(args.SourceNode)
		}
		target := comp.FindTool(args.TargetNode)
		if target == nil {
			return respond.Envelope{}, fault.NodeNotFound(args.TargetNode)
		}
		if !target.ConnectInput(input, source) {
			return respond.Envelope{}, fault.Operation("Failed to connect '%s' to '%s'",
				args.SourceNode, args.TargetNode)
		}
		return respond.Success(fmt.Sprintf("Connected '%s' to '%s'", args.SourceNode, args.TargetNode), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "delete_fusion_node",
		Description: "Delete a node from the current composition.",
	}, page.Fusion, false, func(ctx context.Context, args NodeNameArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.NodeName, "node_name"); err != nil {
			return respond.Envelope{}, err
		}
		comp, err := c.comp()
		if err != nil {
			return respond.Envelope{}, err
		}
		node := comp.FindTool(args.NodeName)
		if node == nil {
			return respond.Envelope{}, fault.NodeNotFound(args.NodeName)
		}
		if !node.Delete() {
			return respond.Envelope{}, fault.Operation("Failed to delete node '%s'", args.NodeName)
		}
		return respond.Success(fmt.Sprintf("Deleted node: %s", args.NodeName), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "set_node_parameter",
		Description: "Set one input value on a node in the current composition.",
	}, page.Fusion, false, func(ctx context.Context, args NodeParamArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.NodeName, "node_name"); err != nil {
			return respond.Envelope{}, err
		}
		if err := validate.NonEmpty(args.Parameter, "parameter"); err != nil {
			return respond.Envelope{}, err
		}
		comp, err := c.comp()
		if err != nil {
			return respond.Envelope{}, err
		}
		node := comp.FindTool(args.NodeName)
		if node == nil {
			return respond.Envelope{}, fault.NodeNotFound(args.NodeName)
		}
		if !node.SetInput(args.Parameter, args.Value) {
			return respond.Envelope{}, fault.Operation("Failed to set parameter '%s' on node '%s'",
				args.Parameter, args.NodeName)
		}
		return respond.Success(fmt.Sprintf("Set %s = %v on node '%s'", args.Parameter, args.Value, args.NodeName), nil), nil
	})
}

func (c *Catalog) comp() (host.Comp, error) {
	h, err := c.host()
	if err != nil {
		return nil, err
	}
	return host.FusionComp(h)
}

func (c *Catalog) finishNode(node host.Node, name string) string {
	if name != "" {
		node.SetAttrs(map[string]any{"TOOLS_Name": name})
		return name
	}
	return node.Name()
}

func allFusionNodeTypes() []string {
	var out []string
	for _, group := range fusionNodeTypes {
		out = append(out, group...)
	}
	sort.Strings(out)
	return out
}

func blendModeNames() []string {
	out := make([]string, 0, len(mergeBlendModes))
	for name := range mergeBlendModes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
