package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/framewise/resolve-mcp/internal/dispatch"
	"github.com/framewise/resolve-mcp/internal/fault"
	"github.com/framewise/resolve-mcp/internal/host"
	"github.com/framewise/resolve-mcp/internal/page"
	"github.com/framewise/resolve-mcp/internal/respond"
	"github.com/framewise/resolve-mcp/internal/validate"
)

// Object inspection walks the scripting object graph along a dotted path of
// accessor names. The path interpreter is a fixed allow-list keyed on the
// host API's accessor names; anything outside it is rejected rather than
// resolved dynamically.

// InspectArgs names a dotted accessor path rooted at the application object.
type InspectArgs struct {
	ObjectPath string `json:"object_path" jsonschema:"Dot-separated accessor path, e.g. GetProjectManager.GetCurrentProject"`
}

// inspectSteps maps an accessor name to the transition it performs. Each
// transition checks that the current object is of the right kind before
// stepping.
var inspectSteps = map[string]func(obj any) (any, error){
	"GetProjectManager": func(obj any) (any, error) {
		h, ok := obj.(host.Host)
		if !ok {
			return nil, fault.Operation("GetProjectManager is only available on the application object")
		}
		return host.Manager(h)
	},
	"GetCurrentProject": func(obj any) (any, error) {
		pm, ok := obj.(host.ProjectManager)
		if !ok {
			return nil, fault.Operation("GetCurrentProject is only available on the project manager")
		}
		p := pm.CurrentProject()
		if p == nil {
			return nil, fault.Operation("No project currently open")
		}
		return p, nil
	},
	"GetMediaPool": func(obj any) (any, error) {
		p, ok := obj.(host.Project)
		if !ok {
			return nil, fault.Operation("GetMediaPool is only available on a project")
		}
		mp := p.MediaPool()
		if mp == nil {
			return nil, fault.Operation("Failed to get Media Pool")
		}
		return mp, nil
	},
	"GetCurrentTimeline": func(obj any) (any, error) {
		p, ok := obj.(host.Project)
		if !ok {
			return nil, fault.Operation("GetCurrentTimeline is only available on a project")
		}
		t := p.CurrentTimeline()
		if t == nil {
			return nil, fault.Operation("No timeline currently active")
		}
		return t, nil
	},
	"GetRootFolder": func(obj any) (any, error) {
		mp, ok := obj.(host.MediaPool)
		if !ok {
			return nil, fault.Operation("GetRootFolder is only available on the media pool")
		}
		return mp.RootFolder(), nil
	},
	"Fusion": func(obj any) (any, error) {
		h, ok := obj.(host.Host)
		if !ok {
			return nil, fault.Operation("Fusion is only available on the application object")
		}
		fu := h.Fusion()
		if fu == nil {
			return nil, fault.Operation("Failed to access Fusion")
		}
		return fu, nil
	},
	"GetCurrentComp": func(obj any) (any, error) {
		fu, ok := obj.(host.Fusion)
		if !ok {
			return nil, fault.Operation("GetCurrentComp is only available on the Fusion object")
		}
		comp := fu.CurrentComp()
		if comp == nil {
			return nil, fault.Operation("No Fusion composition active")
		}
		return comp, nil
	},
}

func (c *Catalog) registerInspect(r *dispatch.Registry) {
	inspectResource := func(uri, name string, walk func(h host.Host) (any, string, error)) {
		dispatch.RegisterQuery(r, &mcp.Resource{
			URI:         uri,
			Name:        name,
			Description: "Surface description of the " + name + " object.",
			MIMEType:    "application/json",
		}, page.None, func(ctx context.Context) (respond.Envelope, error) {
			h, err := c.host()
			if err != nil {
				return respond.Envelope{}, err
			}
			obj, label, err := walk(h)
			if err != nil {
				return respond.Envelope{}, err
			}
			return respond.Success(label, describeObject(obj, label)), nil
		})
	}

	inspectResource("resolve://inspect/resolve", "resolve", func(h host.Host) (any, string, error) {
		return h, "Resolve", nil
	})
	inspectResource("resolve://inspect/project-manager", "project-manager", func(h host.Host) (any, string, error) {
		pm, err := host.Manager(h)
		return pm, "ProjectManager", err
	})
	inspectResource("resolve://inspect/current-project", "current-project", func(h host.Host) (any, string, error) {
		p, err := host.CurrentProject(h)
		return p, "Project", err
	})
	inspectResource("resolve://inspect/media-pool", "media-pool", func(h host.Host) (any, string, error) {
		mp, err := host.Pool(h)
		return mp, "MediaPool", err
	})
	inspectResource("resolve://inspect/current-timeline", "current-timeline", func(h host.Host) (any, string, error) {
		t, err := host.CurrentTimeline(h)
		return t, "Timeline", err
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "inspect_custom_object",
		Description: "Inspect the object at the end of a dotted accessor path.",
	}, page.None, false, func(ctx context.Context, args InspectArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.ObjectPath, "object_path"); err != nil {
			return respond.Envelope{}, err
		}
		h, err := c.host()
		if err != nil {
			return respond.Envelope{}, err
		}
		var obj any = h
		for _, part := range strings.Split(args.ObjectPath, ".") {
			step, ok := inspectSteps[part]
			if !ok {
				return respond.Envelope{}, fault.Operation("'%s' not found in object path", part)
			}
			obj, err = step(obj)
			if err != nil {
				return respond.Envelope{}, err
			}
		}
		return respond.Success(args.ObjectPath, describeObject(obj, args.ObjectPath)), nil
	})
}

// describeObject reports the object's kind, a live state summary, and the
// accessor names that inspect paths may take from it.
func describeObject(obj any, label string) map[string]any {
	out := map[string]any{"object": label}
	switch o := obj.(type) {
	case host.Host:
		out["type"] = "Resolve"
		out["state"] = map[string]any{"product": o.ProductName(), "version": o.Version()}
		out["accessors"] = []string{"GetProjectManager", "Fusion"}
	case host.ProjectManager:
		out["type"] = "ProjectManager"
		out["state"] = map[string]any{"projects": o.ListProjects()}
		out["accessors"] = []string{"GetCurrentProject"}
	case host.Project:
		out["type"] = "Project"
		out["state"] = map[string]any{"name": o.Name(), "timeline_count": o.TimelineCount()}
		out["accessors"] = []string{"GetMediaPool", "GetCurrentTimeline"}
	case host.MediaPool:
		out["type"] = "MediaPool"
		out["state"] = map[string]any{"clip_count": len(host.AllClips(o))}
		out["accessors"] = []string{"GetRootFolder"}
	case host.Folder:
		clips := make([]map[string]any, 0, len(o.Clips()))
		for _, cl := range o.Clips() {
			clips = append(clips, map[string]any{"name": cl.Name(), "file_path": cl.Property("File Path")})
		}
		out["type"] = "Folder"
		out["state"] = map[string]any{"name": o.Name(), "clips": clips, "subfolder_count": len(o.SubFolders())}
		out["accessors"] = []string{}
	case host.Timeline:
		out["type"] = "Timeline"
		out["state"] = map[string]any{
			"name":         o.Name(),
			"start_frame":  o.StartFrame(),
			"end_frame":    o.EndFrame(),
			"video_tracks": o.TrackCount("video"),
			"audio_tracks": o.TrackCount("audio"),
		}
		out["accessors"] = []string{}
	case host.Fusion:
		out["type"] = "Fusion"
		out["accessors"] = []string{"GetCurrentComp"}
	case host.Comp:
		start, end := o.FrameRange()
		out["type"] = "Composition"
		out["state"] = map[string]any{"start_frame": start, "end_frame": end, "node_count": len(o.Tools())}
		out["accessors"] = []string{}
	default:
		out["type"] = fmt.Sprintf("%T", obj)
	}
	return out
}
