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

// ProjectNameArgs addresses a project by name.
type ProjectNameArgs struct {
	Name string `json:"name" jsonschema:"Name of the project"`
}

func (c *Catalog) registerProject(r *dispatch.Registry) {
	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://projects",
		Name:        "projects",
		Description: "All projects in the current project database.",
		MIMEType:    "application/json",
	}, page.None, func(ctx context.Context) (respond.Envelope, error) {
		pm, err := c.manager()
		if err != nil {
			return respond.Envelope{}, err
		}
		names := pm.ListProjects()
		return respond.Success(fmt.Sprintf("%d projects", len(names)), names), nil
	})

	dispatch.RegisterQuery(r, &mcp.Resource{
		URI:         "resolve://current-project",
		Name:        "current-project",
		Description: "The name of the currently open project.",
		MIMEType:    "application/json",
	}, page.None, func(ctx context.Context) (respond.Envelope, error) {
		p, err := c.currentProject()
		if err != nil {
			return respond.Envelope{}, err
		}
		return respond.Success(p.Name(), map[string]any{"name": p.Name()}), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "open_project",
		Description: "Open a project by name.",
	}, page.None, c.legacy, func(ctx context.Context, args ProjectNameArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.Name, "name"); err != nil {
			return respond.Envelope{}, err
		}
		pm, err := c.manager()
		if err != nil {
			return respond.Envelope{}, err
		}
		names := pm.ListProjects()
		if !contains(names, args.Name) {
			return respond.Envelope{}, fault.Operation("Project '%s' not found. Available projects: %s",
				args.Name, strings.Join(names, ", "))
		}
		if pm.LoadProject(args.Name) == nil {
			return respond.Envelope{}, fault.Operation("Failed to open project '%s'", args.Name)
		}
		return respond.Success(fmt.Sprintf("Opened project '%s'", args.Name), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "create_project",
		Description: "Create a new project with the given name.",
	}, page.None, c.legacy, func(ctx context.Context, args ProjectNameArgs) (respond.Envelope, error) {
		if err := validate.NonEmpty(args.Name, "name"); err != nil {
			return respond.Envelope{}, err
		}
		pm, err := c.manager()
		if err != nil {
			return respond.Envelope{}, err
		}
		if contains(pm.ListProjects(), args.Name) {
			return respond.Envelope{}, fault.Operation("Project '%s' already exists", args.Name)
		}
		if pm.CreateProject(args.Name) == nil {
			return respond.Envelope{}, fault.Operation("Failed to create project '%s'", args.Name)
		}
		return respond.Success(fmt.Sprintf("Created project '%s'", args.Name), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "save_project",
		Description: "Save the current project.",
	}, page.None, c.legacy, func(ctx context.Context, args struct{}) (respond.Envelope, error) {
		p, err := c.currentProject()
		if err != nil {
			return respond.Envelope{}, err
		}
		pm, err := c.manager()
		if err != nil {
			return respond.Envelope{}, err
		}
		if !pm.SaveProject() {
			return respond.Envelope{}, fault.Operation("Failed to save project '%s'", p.Name())
		}
		return respond.Success(fmt.Sprintf("Saved project '%s'", p.Name()), nil), nil
	})

	dispatch.RegisterAction(r, &mcp.Tool{
		Name:        "close_project",
		Description: "Close the current project.",
	}, page.None, c.legacy, func(ctx context.Context, args struct{}) (respond.Envelope, error) {
		p, err := c.currentProject()
		if err != nil {
			return respond.Envelope{}, err
		}
		pm, err := c.manager()
		if err != nil {
			return respond.Envelope{}, err
		}
		name := p.Name()
		if !pm.CloseProject(p) {
			return respond.Envelope{}, fault.Operation("Failed to close project '%s'", name)
		}
		return respond.Success(fmt.Sprintf("Closed project '%s'", name), nil), nil
	})
}

func (c *Catalog) manager() (host.ProjectManager, error) {
	h, err := c.host()
	if err != nil {
		return nil, err
	}
	return host.Manager(h)
}

func (c *Catalog) currentProject() (host.Project, error) {
	h, err := c.host()
	if err != nil {
		return nil, err
	}
	return host.CurrentProject(h)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
