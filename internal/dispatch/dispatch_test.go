package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/framewise/resolve-mcp/internal/host"
	"github.com/framewise/resolve-mcp/internal/page"
	"github.com/framewise/resolve-mcp/internal/respond"
)

type markerArgs struct {
	Frame int    `json:"frame"`
	Color string `json:"color"`
}

func newRegistry(sim *host.Sim) *Registry {
	logger := log.New(io.Discard)
	guard := page.NewGuard(host.NewHandle(sim), logger)
	return NewRegistry(guard, logger)
}

func TestDispatch_Action(t *testing.T) {
	r := newRegistry(host.NewSim())
	RegisterAction(r, &mcp.Tool{Name: "add_marker"}, page.None, false,
		func(ctx context.Context, in markerArgs) (respond.Envelope, error) {
			return respond.Success("marked", map[string]any{"frame": in.Frame, "color": in.Color}), nil
		})

	env := r.Dispatch(context.Background(), "add_marker", json.RawMessage(`{"frame": 42, "color": "Blue"}`))
	if !env.Success {
		t.Fatalf("envelope = %+v", env)
	}
	data := env.Data.(map[string]any)
	if data["frame"] != 42 || data["color"] != "Blue" {
		t.Errorf("data = %v", data)
	}
}

func TestDispatch_MalformedArguments(t *testing.T) {
	r := newRegistry(host.NewSim())
	RegisterAction(r, &mcp.Tool{Name: "add_marker"}, page.None, false,
		func(ctx context.Context, in markerArgs) (respond.Envelope, error) {
			return respond.Success("marked", nil), nil
		})

	env := r.Dispatch(context.Background(), "add_marker", json.RawMessage(`{"frame": "forty-two"}`))
	if env.Success {
		t.Fatal("expected error envelope")
	}
	if env.ErrorCode != "OPERATION_ERROR" {
		t.Errorf("code = %q", env.ErrorCode)
	}
	if !strings.HasPrefix(env.Message, "Malformed arguments for 'add_marker'") {
		t.Errorf("message = %q", env.Message)
	}
}

func TestDispatch_UnknownOperation(t *testing.T) {
	r := newRegistry(host.NewSim())
	env := r.Dispatch(context.Background(), "vanish", nil)
	if env.Success {
		t.Fatal("expected error envelope")
	}
	if env.Message != "Unknown operation 'vanish'" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestDispatch_GuardedActionRestoresPage(t *testing.T) {
	sim := host.NewSim()
	r := newRegistry(sim)
	var during string
	RegisterAction(r, &mcp.Tool{Name: "add_serial_node"}, page.Color, false,
		func(ctx context.Context, in struct{}) (respond.Envelope, error) {
			during = sim.Page()
			return respond.Success("added", nil), nil
		})

	env := r.Dispatch(context.Background(), "add_serial_node", nil)
	if !env.Success {
		t.Fatalf("envelope = %+v", env)
	}
	if during != "color" {
		t.Errorf("page during handler = %q", during)
	}
	if sim.Page() != "edit" {
		t.Errorf("page after handler = %q", sim.Page())
	}
}

func TestDispatch_GuardedPanicRestoresPage(t *testing.T) {
	sim := host.NewSim()
	r := newRegistry(sim)
	RegisterAction(r, &mcp.Tool{Name: "add_blur_node"}, page.Fusion, false,
		func(ctx context.Context, in struct{}) (respond.Envelope, error) {
			panic("comp gone")
		})

	env := r.Dispatch(context.Background(), "add_blur_node", nil)
	if env.Success {
		t.Fatal("expected error envelope")
	}
	if env.ErrorCode != "INTERNAL_ERROR" {
		t.Errorf("code = %q", env.ErrorCode)
	}
	if sim.Page() != "edit" {
		t.Errorf("page after panic = %q", sim.Page())
	}
}

func TestDispatch_SequentialGuardedPages(t *testing.T) {
	sim := host.NewSim()
	r := newRegistry(sim)
	pages := map[string]string{}
	RegisterAction(r, &mcp.Tool{Name: "add_serial_node"}, page.Color, false,
		func(ctx context.Context, in struct{}) (respond.Envelope, error) {
			pages["add_serial_node"] = sim.Page()
			return respond.Success("added", nil), nil
		})
	RegisterAction(r, &mcp.Tool{Name: "add_audio_track"}, page.Fairlight, false,
		func(ctx context.Context, in struct{}) (respond.Envelope, error) {
			pages["add_audio_track"] = sim.Page()
			return respond.Success("added", nil), nil
		})

	for _, name := range []string{"add_serial_node", "add_audio_track"} {
		if env := r.Dispatch(context.Background(), name, nil); !env.Success {
			t.Fatalf("%s: envelope = %+v", name, env)
		}
		if sim.Page() != "edit" {
			t.Fatalf("%s: page after call = %q", name, sim.Page())
		}
	}
	if pages["add_serial_node"] != "color" || pages["add_audio_track"] != "fairlight" {
		t.Errorf("pages during handlers = %v", pages)
	}
}

func TestDispatch_HandlerPanicClassified(t *testing.T) {
	r := newRegistry(host.NewSim())
	RegisterAction(r, &mcp.Tool{Name: "explode"}, page.None, false,
		func(ctx context.Context, in struct{}) (respond.Envelope, error) {
			panic("boom")
		})

	env := r.Dispatch(context.Background(), "explode", nil)
	if env.Success {
		t.Fatal("expected error envelope")
	}
	if env.ErrorCode != "INTERNAL_ERROR" {
		t.Errorf("code = %q", env.ErrorCode)
	}
}

func TestDispatch_Query(t *testing.T) {
	r := newRegistry(host.NewSim())
	RegisterQuery(r, &mcp.Resource{URI: "resolve://version"}, page.None,
		func(ctx context.Context) (respond.Envelope, error) {
			return respond.Success("version", map[string]any{"version": "19.1.0"}), nil
		})

	env := r.Dispatch(context.Background(), "resolve://version", nil)
	if !env.Success {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestDescriptors_RegistrationOrder(t *testing.T) {
	r := newRegistry(host.NewSim())
	noop := func(ctx context.Context, in struct{}) (respond.Envelope, error) {
		return respond.Success("ok", nil), nil
	}
	RegisterAction(r, &mcp.Tool{Name: "first"}, page.None, false, noop)
	RegisterAction(r, &mcp.Tool{Name: "second"}, page.Edit, true, noop)
	RegisterQuery(r, &mcp.Resource{URI: "resolve://third"}, page.None,
		func(ctx context.Context) (respond.Envelope, error) {
			return respond.Success("ok", nil), nil
		})

	ds := r.Descriptors()
	if len(ds) != 3 {
		t.Fatalf("len = %d", len(ds))
	}
	if ds[0].Name != "first" || ds[1].Name != "second" || ds[2].Name != "resolve://third" {
		t.Errorf("order = %s, %s, %s", ds[0].Name, ds[1].Name, ds[2].Name)
	}
	if ds[1].RequiredPage != page.Edit || !ds[1].Legacy {
		t.Errorf("descriptor metadata lost: %+v", ds[1])
	}
	if ds[0].Kind != Action || ds[2].Kind != Query {
		t.Error("kind mismatch")
	}
}

func TestBind_LegacyActionEmitsText(t *testing.T) {
	r := newRegistry(host.NewSim())
	RegisterAction(r, &mcp.Tool{Name: "save_project", Description: "Save the current project"}, page.None, true,
		func(ctx context.Context, in struct{}) (respond.Envelope, error) {
			return respond.Success("Project saved", nil), nil
		})

	s := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	if err := r.Bind(s); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	serverT, clientT := mcp.NewInMemoryTransports()
	if _, err := s.Connect(ctx, serverT, nil); err != nil {
		t.Fatal(err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "save_project", Arguments: map[string]any{}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Content) != 1 {
		t.Fatalf("content = %v", res.Content)
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T", res.Content[0])
	}
	if text.Text != "Success: Project saved" {
		t.Errorf("text = %q", text.Text)
	}
}

func TestBind_DuplicateName(t *testing.T) {
	r := newRegistry(host.NewSim())
	noop := func(ctx context.Context, in struct{}) (respond.Envelope, error) {
		return respond.Success("ok", nil), nil
	}
	RegisterAction(r, &mcp.Tool{Name: "twin"}, page.None, false, noop)
	RegisterAction(r, &mcp.Tool{Name: "twin"}, page.None, false, noop)

	s := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	err := r.Bind(s)
	if err == nil {
		t.Fatal("expected duplicate-name error")
	}
	if !strings.Contains(err.Error(), "twin") {
		t.Errorf("err = %v", err)
	}
}
