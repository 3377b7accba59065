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

// ImportMediaArgs imports a file into the media pool.
type ImportMediaArgs struct {
	FilePath string `json:"file_path" jsonschema:"Absolute path of the media file to import"`
}

// CreateBinArgs creates a media pool bin.
type CreateBinArgs struct {
	Name   string `json:"name" jsonschema:"Name of the new bin"`
	Parent string `json:"parent,omitempty" jsonschema:"Parent bin name (root when omitted)"`
}

// ClipToTimelineArgs appends a media pool clip to the current timeline.
type ClipToTimelineArgs struct {
	ClipName string `json:"clip_name" jsonschema:"Name of the media pool clip to append"`
}

// MoveClipArgs moves a clip between bins.
type MoveClipArgs struct {
	ClipName string `json:"clip_name" jsonschema:"Name of the clip to move"`
	BinName  string `json:"bin_name" jsonschema:"Destination bin name"`
}

func (c *Catalog) registerMedia(r *dispatch.Registry) {
	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://media-pool/clips",
		Name:        "media-pool-clips",
		Description: "Every clip in the media pool, searched recursively from the root bin.",
		MIMEType:    "application/json",
	}, page.None, func(ctx context.Context) (respond.Envelope, error) {
		pool, err := c.pool()
		if err != nil {
			return respond.Envelope{}, err
		}
		clips := host.AllClips(pool)
		names := make([]string, len(clips))
		for i, clip := range clips {
			names[i] = clip.Name()
		}
		return respond.Success(fmt.Sprintf("%d clips", len(names)), names), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "import_media",
		Description: "Import a media file into the media pool root bin.",
	}, page.None, false, func(ctx context.Context, args ImportMediaArgs) (respond.Envelope, error) {
		if err := validate.FilePath(args.FilePath, true, "file_path"); err != nil {
			return respond.Envelope{}, err
		}
		pool, err := c.pool()
		if err != nil {
			return respond.Envelope{}, err
		}
		clips := pool.ImportMedia([]string{args.FilePath})
		if len(clips) == 0 {
			return respond.Envelope{}, fault.Operation("Failed to import '%s'", args.FilePath)
		}
		return respond.Success(fmt.Sprintf("Imported '%s'", clips[0].Name()),
			map[string]any{"clip": clips[0].Name()}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "add_clip_to_timeline",
		Description: "Append a media pool clip to the end of the current timeline.",
	}, page.None, false, func(ctx context.Context, args ClipToTimelineArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.ClipName, "clip_name"); err != nil {
			return respond.Envelope{}, err
		}
		pool, err := c.pool()
		if err != nil {
			return respond.Envelope{}, err
		}
		clip := host.FindClip(pool, args.ClipName)
		if clip == nil {
			return respond.Envelope{}, fault.Operation("Clip '%s' not found in media pool", args.ClipName)
		}
		if !pool.AppendToTimeline([]host.Clip{clip}) {
			return respond.Envelope{}, fault.Operation("Failed to add clip '%s' to timeline", args.ClipName)
		}
		return respond.Success(fmt.Sprintf("Added clip '%s' to timeline", args.ClipName), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "create_bin",
		Description: "Create a bin in the media pool, optionally inside a named parent bin.",
	}, page.None, false, func(ctx context.Context, args CreateBinArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.Name, "name"); err != nil {
			return respond.Envelope{}, err
		}
		pool, err := c.pool()
		if err != nil {
			return respond.Envelope{}, err
		}
		parent := pool.RootFolder()
		if args.Parent != "" {
			parent = host.FindFolder(pool, args.Parent)
			if parent == nil {
				return respond.Envelope{}, fault.Operation("Bin '%s' not found", args.Parent)
			}
		}
		if pool.AddSubFolder(parent, args.Name) == nil {
			return respond.Envelope{}, fault.Operation("Failed to create bin '%s'", args.Name)
		}
		return respond.Success(fmt.Sprintf("Created bin '%s'", args.Name), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "move_clip_to_bin",
		Description: "Move a named clip into a named bin.",
	}, page.None, false, func(ctx context.Context, args MoveClipArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.ClipName, "clip_name"); err != nil {
			return respond.Envelope{}, err
		}
		if err := validate.NonEmpty(args.BinName, "bin_name"); err != nil {
			return respond.Envelope{}, err
		}
		pool, err := c.pool()
		if err != nil {
			return respond.Envelope{}, err
		}
		clip := host.FindClip(pool, args.ClipName)
		if clip == nil {
			return respond.Envelope{}, fault.Operation("Clip '%s' not found in media pool", args.ClipName)
		}
		bin := host.FindFolder(pool, args.BinName)
		if bin == nil {
			return respond.Envelope{}, fault.Operation("Bin '%s' not found", args.BinName)
		}
		if !pool.MoveClips([]host.Clip{clip}, bin) {
			return respond.Envelope{}, fault.Operation("Failed to move clip '%s' to bin '%s'", args.ClipName, args.BinName)
		}
		return respond.Success(fmt.Sprintf("Moved clip '%s' to bin '%s'", args.ClipName, args.BinName), nil), nil
	})
}
