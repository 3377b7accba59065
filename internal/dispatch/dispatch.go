// Package dispatch maintains the operation descriptor table and binds it
// onto the MCP server. Queries (read-only operations) become resources,
// Actions become tools. Every handler runs inside the error classifier and,
// when the operation declares a required page, inside the page guard —
// guard around classifier around handler.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/framewise/resolve-mcp/internal/fault"
	"github.com/framewise/resolve-mcp/internal/page"
	"github.com/framewise/resolve-mcp/internal/respond"
)

// Kind distinguishes read-only queries from state-changing actions.
type Kind int

const (
	// Query operations are addressed as hierarchical resource paths and,
	// by advisory contract, do not mutate host state.
	Query Kind = iota
	// Action operations are named tools taking validated arguments.
	Action
)

// Descriptor is one entry in the operation table.
type Descriptor struct {
	Name         string
	Kind         Kind
	RequiredPage page.Page
	Legacy       bool

	bind   func(s *mcp.Server)
	invoke func(ctx context.Context, args json.RawMessage) respond.Envelope
}

// Registry aggregates all domain groups into one addressable namespace.
// Names must be unique across the entire catalog; a duplicate is a
// configuration error reported at Bind time, not a runtime failure.
type Registry struct {
	guard *page.Guard
	log   *log.Logger

	order  []string
	byName map[string]*Descriptor
	err    error
}

// NewRegistry builds an empty registry around the shared guard.
func NewRegistry(guard *page.Guard, logger *log.Logger) *Registry {
	return &Registry{
		guard:  guard,
		log:    logger,
		byName: map[string]*Descriptor{},
	}
}

// Descriptors returns the registered operations in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.byName[name])
	}
	return out
}

// Bind registers every operation with the MCP server. It fails if any
// registration recorded a configuration error.
func (r *Registry) Bind(s *mcp.Server) error {
	if r.err != nil {
		return r.err
	}
	for _, name := range r.order {
		r.byName[name].bind(s)
	}
	return nil
}

func (r *Registry) add(d *Descriptor) bool {
	if _, dup := r.byName[d.Name]; dup {
		if r.err == nil {
			r.err = fmt.Errorf("duplicate operation name %q", d.Name)
		}
		return false
	}
	r.byName[d.Name] = d
	r.order = append(r.order, d.Name)
	return true
}

// run applies the wrapper stack to one invocation.
func (r *Registry) run(name string, pg page.Page, fn func() (respond.Envelope, error)) respond.Envelope {
	classified := func() respond.Envelope {
		return fault.Run(r.log, name, fn)
	}
	if pg != page.None {
		return r.guard.Ensure(pg, classified)
	}
	return classified()
}

// RegisterAction adds a state-changing operation as an MCP tool. When
// legacy is set the result is emitted in the plain-string encoding instead
// of the structured envelope; both come from the same envelope value.
func RegisterAction[In any](r *Registry, tool *mcp.Tool, pg page.Page, legacy bool, fn func(ctx context.Context, in In) (respond.Envelope, error)) {
	d := &Descriptor{Name: tool.Name, Kind: Action, RequiredPage: pg, Legacy: legacy}
	if !r.add(d) {
		return
	}
	d.invoke = func(ctx context.Context, args json.RawMessage) respond.Envelope {
		return r.run(d.Name, pg, func() (respond.Envelope, error) {
			var in In
			if len(args) > 0 {
				if err := json.Unmarshal(args, &in); err != nil {
					return respond.Envelope{}, fault.Operation("Malformed arguments for '%s': %v", d.Name, err)
				}
			}
			return fn(ctx, in)
		})
	}
	d.bind = func(s *mcp.Server) {
		mcp.AddTool(s, tool, func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
			env := r.run(d.Name, pg, func() (respond.Envelope, error) {
				return fn(ctx, in)
			})
			if legacy {
				return &mcp.CallToolResult{
					Content: []mcp.Content{&mcp.TextContent{Text: respond.Legacy(env)}},
				}, nil, nil
			}
			return nil, env, nil
		})
	}
}

// RegisterQuery adds a read-only operation as an MCP resource. The
// envelope is served as JSON resource contents under the resource URI.
func RegisterQuery(r *Registry, res *mcp.Resource, pg page.Page, fn func(ctx context.Context) (respond.Envelope, error)) {
	d := &Descriptor{Name: res.URI, Kind: Query, RequiredPage: pg}
	if !r.add(d) {
		return
	}
	d.invoke = func(ctx context.Context, _ json.RawMessage) respond.Envelope {
		return r.run(d.Name, pg, func() (respond.Envelope, error) {
			return fn(ctx)
		})
	}
	d.bind = func(s *mcp.Server) {
		s.AddResource(res, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			env := r.run(d.Name, pg, func() (respond.Envelope, error) {
				return fn(ctx)
			})
			body, err := json.Marshal(env)
			if err != nil {
				return nil, err
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{{
					URI:      res.URI,
					MIMEType: "application/json",
					Text:     string(body),
				}},
			}, nil
		})
	}
}

// Dispatch resolves an operation by name and invokes it with the given
// JSON arguments, outside the MCP transport. Unknown names yield a
// not-found classified error envelope. The doctor command and the test
// suites use this to exercise the catalog directly.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) respond.Envelope {
	d, ok := r.byName[name]
	if !ok {
		return respond.Error(fmt.Sprintf("Unknown operation '%s'", name), string(fault.CodeOperation), nil)
	}
	return d.invoke(ctx, args)
}
