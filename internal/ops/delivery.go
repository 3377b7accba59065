package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/framewise/resolve-mcp/internal/dispatch"
	"github.com/framewise/resolve-mcp/internal/fault"
	"github.com/framewise/resolve-mcp/internal/page"
	"github.com/framewise/resolve-mcp/internal/respond"
	"github.com/framewise/resolve-mcp/internal/validate"
)

// RenderJobArgs configures and queues a render job.
type RenderJobArgs struct {
	Preset    string `json:"preset" jsonschema:"Render preset name, as listed by resolve://render-presets"`
	TargetDir string `json:"target_dir" jsonschema:"Directory to render into; must exist"`
	Name      string `json:"name,omitempty" jsonschema:"Optional custom name for the rendered file"`
}

func (c *Catalog) registerDelivery(r *dispatch.Registry) {
	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://render-presets",
		Name:        "render-presets",
		Description: "Render presets available in the current project.",
		MIMEType:    "application/json",
	}, page.None, func(ctx context.Context) (respond.Envelope, error) {
		p, err := c.currentProject()
		if err != nil {
			return respond.Envelope{}, err
		}
		presets := p.RenderPresets()
		return respond.Success(fmt.Sprintf("%d render presets", len(presets)),
			map[string]any{"presets": presets}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "add_render_job",
		Description: "Configure render settings and add a job to the render queue.",
	}, page.Deliver, false, func(ctx context.Context, args RenderJobArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.Preset, "preset"); err != nil {
			return respond.Envelope{}, err
		}
		if err := validate.DirPath(args.TargetDir, true, "target_dir"); err != nil {
			return respond.Envelope{}, err
		}
		p, err := c.currentProject()
		if err != nil {
			return respond.Envelope{}, err
		}
		presets := p.RenderPresets()
		if !contains(presets, args.Preset) {
			return respond.Envelope{}, fault.Operation("Preset '%s' not found. Available presets: %s",
				args.Preset, strings.Join(presets, ", "))
		}
		settings := map[string]any{
			"SelectAllFrames": true,
			"TargetDir":       args.TargetDir,
		}
		if args.Name != "" {
			settings["CustomName"] = args.Name
		}
		if !p.SetRenderSettings(settings) {
			return respond.Envelope{}, fault.Operation("Failed to apply render settings")
		}
		jobID := p.AddRenderJob()
		if jobID == "" {
			return respond.Envelope{}, fault.Operation("Failed to add render job")
		}
		return respond.Success(fmt.Sprintf("Added render job '%s'", jobID),
			map[string]any{"job_id": jobID}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "start_render",
		Description: "Start rendering the queued jobs.",
	}, page.Deliver, false, func(ctx context.Context, args struct{}) (respond.Envelope, error) {
		p, err := c.currentProject()
		if err != nil {
			return respond.Envelope{}, err
		}
		if !p.StartRendering() {
			return respond.Envelope{}, fault.Operation("Failed to start rendering. Is the render queue empty?")
		}
		return respond.Success("Rendering started", nil), nil
	})
}
