package ops

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/framewise/resolve-mcp/internal/dispatch"
	"github.com/framewise/resolve-mcp/internal/host"
	"github.com/framewise/resolve-mcp/internal/page"
	"github.com/framewise/resolve-mcp/internal/respond"
)

// rig is a full catalog over a simulator, dispatched directly.
type rig struct {
	registry *dispatch.Registry
	sim      *host.Sim
}

func newRig(t *testing.T) *rig {
	t.Helper()
	sim := host.NewSim()
	logger := log.New(io.Discard)
	handle := host.NewHandle(sim)
	guard := page.NewGuard(handle, logger)
	r := dispatch.NewRegistry(guard, logger)
	New(handle, nil, guard, false).Register(r)
	return &rig{registry: r, sim: sim}
}

func (rg *rig) call(t *testing.T, name, args string) respond.Envelope {
	t.Helper()
	var raw json.RawMessage
	if args != "" {
		raw = json.RawMessage(args)
	}
	return rg.registry.Dispatch(context.Background(), name, raw)
}

func (rg *rig) expectOK(t *testing.T, name, args, message string) respond.Envelope {
	t.Helper()
	env := rg.call(t, name, args)
	if !env.Success {
		t.Fatalf("%s failed: %+v", name, env)
	}
	if message != "" && env.Message != message {
		t.Errorf("%s message = %q, want %q", name, env.Message, message)
	}
	return env
}

func (rg *rig) expectError(t *testing.T, name, args, code string) respond.Envelope {
	t.Helper()
	env := rg.call(t, name, args)
	if env.Success {
		t.Fatalf("%s succeeded, expected %s", name, code)
	}
	if env.ErrorCode != code {
		t.Errorf("%s code = %q, want %q (message %q)", name, env.ErrorCode, code, env.Message)
	}
	return env
}

func TestVersionResource(t *testing.T) {
	rg := newRig(t)
	env := rg.expectOK(t, "resolve://version", "", "DaVinci Resolve (simulator) 19.1.0")
	data := env.Data.(map[string]any)
	if data["product"] != "DaVinci Resolve (simulator)" {
		t.Errorf("product = %v", data["product"])
	}
}

func TestSwitchPage(t *testing.T) {
	rg := newRig(t)
	rg.expectOK(t, "switch_page", `{"page": "color"}`, "Switched to color page")
	if rg.sim.Page() != "color" {
		t.Errorf("page = %q", rg.sim.Page())
	}

	env := rg.expectError(t, "switch_page", `{"page": "settings"}`, "VALIDATION_ERROR")
	d := env.Details.(map[string]any)
	if d["parameter"] != "page" {
		t.Errorf("details = %v", d)
	}
}

func TestConnectionStatus(t *testing.T) {
	rg := newRig(t)
	env := rg.expectOK(t, "resolve://connection/status", "", "Connected")
	if env.AsMap()["connected"] != true {
		t.Error("connected flag missing")
	}
}

func TestProjectLifecycle(t *testing.T) {
	rg := newRig(t)

	rg.expectError(t, "create_project", `{"name": "Demo Project"}`, "OPERATION_ERROR")
	rg.expectOK(t, "create_project", `{"name": "Short Film"}`, "Created project 'Short Film'")
	rg.expectOK(t, "open_project", `{"name": "Demo Project"}`, "Opened project 'Demo Project'")

	env := rg.expectError(t, "open_project", `{"name": "Ghost"}`, "OPERATION_ERROR")
	if !strings.Contains(env.Message, "Available projects:") {
		t.Errorf("message = %q", env.Message)
	}

	rg.expectOK(t, "save_project", "", "Saved project 'Demo Project'")
	rg.expectOK(t, "close_project", "", "Closed project 'Demo Project'")

	env = rg.call(t, "resolve://current-project", "")
	if env.Success || env.Message != "No project currently open" {
		t.Errorf("after close: %+v", env)
	}
}

func TestTimelines(t *testing.T) {
	rg := newRig(t)

	rg.expectOK(t, "create_timeline", `{"name": "Cutdown"}`, "Created timeline 'Cutdown'")
	rg.expectError(t, "create_timeline", `{"name": "Timeline 1"}`, "OPERATION_ERROR")
	rg.expectOK(t, "set_current_timeline", `{"name": "Timeline 1"}`, "Switched to timeline 'Timeline 1'")
	rg.expectError(t, "set_current_timeline", `{"name": "Ghost"}`, "OPERATION_ERROR")

	env := rg.expectOK(t, "resolve://timelines", "", "2 timelines")
	names := env.Data.([]string)
	if len(names) != 2 || names[0] != "Timeline 1" || names[1] != "Cutdown" {
		t.Errorf("timelines = %v", names)
	}
}

func TestAddMarker(t *testing.T) {
	rg := newRig(t)

	rg.expectOK(t, "add_marker", `{"frame": 100}`, "Added Blue marker at frame 100")
	rg.expectOK(t, "add_marker", `{"frame": 10, "color": "red"}`, "Added Red marker at frame 10")
	// Frame outside the timeline range.
	rg.expectError(t, "add_marker", `{"frame": 500}`, "VALIDATION_ERROR")
	rg.expectError(t, "add_marker", `{"frame": 10, "color": "Chartreuse"}`, "VALIDATION_ERROR")
}

func TestMediaPool(t *testing.T) {
	rg := newRig(t)
	tmp := t.TempDir()
	file := filepath.Join(tmp, "broll.mov")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	rg.expectOK(t, "import_media", `{"file_path": `+quote(file)+`}`, "Imported 'broll.mov'")
	rg.expectError(t, "import_media", `{"file_path": "/no/such/file.mov"}`, "VALIDATION_ERROR")

	rg.expectOK(t, "create_bin", `{"name": "B-Roll"}`, "Created bin 'B-Roll'")
	rg.expectOK(t, "move_clip_to_bin", `{"clip_name": "broll.mov", "bin_name": "B-Roll"}`,
		"Moved clip 'broll.mov' to bin 'B-Roll'")
	rg.expectError(t, "move_clip_to_bin", `{"clip_name": "Ghost", "bin_name": "B-Roll"}`, "OPERATION_ERROR")

	env := rg.expectOK(t, "resolve://media-pool/clips", "", "2 clips")
	names := env.Data.([]string)
	if len(names) != 2 {
		t.Errorf("clips = %v", names)
	}
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestAddClipToTimeline(t *testing.T) {
	rg := newRig(t)

	rg.expectOK(t, "add_clip_to_timeline", `{"clip_name": "Clip 1"}`,
		"Added clip 'Clip 1' to timeline")

	t1, err := host.CurrentTimeline(rg.sim)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(t1.ItemsInTrack("video", 1)); got != 2 {
		t.Errorf("video items = %d, want 2", got)
	}

	rg.expectError(t, "add_clip_to_timeline", `{"clip_name": "Ghost"}`, "OPERATION_ERROR")
	rg.expectError(t, "add_clip_to_timeline", "", "VALIDATION_ERROR")
}

func TestColorGrade(t *testing.T) {
	rg := newRig(t)

	rg.expectOK(t, "add_serial_node", `{"item_name": "Clip 1"}`, "Added node 1 to 'Clip 1'")
	if rg.sim.Page() != "edit" {
		t.Errorf("page not restored, got %q", rg.sim.Page())
	}

	rg.expectOK(t, "set_color_wheel_param",
		`{"item_name": "Clip 1", "node": 1, "wheel": "lift", "param": "red", "value": 0.2}`,
		"Set Lift Red to 0.2 on node 1")

	rg.expectError(t, "set_color_wheel_param",
		`{"item_name": "Clip 1", "node": 1, "wheel": "Lift", "param": "Red", "value": 2.0}`,
		"VALIDATION_ERROR")
	rg.expectError(t, "add_serial_node", `{"item_name": "Ghost"}`, "ITEM_NOT_FOUND")
}

func TestDelivery(t *testing.T) {
	rg := newRig(t)
	tmp := t.TempDir()

	// Queue is empty at first.
	rg.expectError(t, "start_render", "", "OPERATION_ERROR")

	env := rg.expectError(t, "add_render_job",
		`{"preset": "Ghost Preset", "target_dir": `+quote(tmp)+`}`, "OPERATION_ERROR")
	if !strings.Contains(env.Message, "Available presets:") {
		t.Errorf("message = %q", env.Message)
	}

	rg.expectOK(t, "add_render_job",
		`{"preset": "YouTube 1080p", "target_dir": `+quote(tmp)+`}`, "Added render job 'job-1'")
	rg.expectOK(t, "start_render", "", "Rendering started")
}

func TestRenderPresetsResource(t *testing.T) {
	rg := newRig(t)
	env := rg.expectOK(t, "resolve://render-presets", "", "3 render presets")
	presets := env.Data.(map[string]any)["presets"].([]string)
	if len(presets) != 3 || presets[0] != "YouTube 1080p" {
		t.Errorf("presets = %v", presets)
	}
}

func TestFusionNodes(t *testing.T) {
	rg := newRig(t)

	env := rg.expectOK(t, "add_fusion_node", `{"node_type": "blur"}`, "Added Blur node: Blur1")
	if rg.sim.Page() != "edit" {
		t.Errorf("page not restored, got %q", rg.sim.Page())
	}
	data := env.Data.(map[string]any)
	if data["node_name"] != "Blur1" || data["node_type"] != "Blur" {
		t.Errorf("data = %v", data)
	}

	rg.expectError(t, "add_fusion_node", `{"node_type": "Quantum"}`, "VALIDATION_ERROR")

	rg.expectOK(t, "connect_fusion_nodes",
		`{"source_node": "Background1", "target_node": "Blur1"}`,
		"Connected 'Background1' to 'Blur1'")
	rg.expectError(t, "connect_fusion_nodes",
		`{"source_node": "Ghost1", "target_node": "Blur1"}`, "NODE_NOT_FOUND")

	rg.expectOK(t, "delete_fusion_node", `{"node_name": "Blur1"}`, "Deleted node: Blur1")
	rg.expectError(t, "delete_fusion_node", `{"node_name": "Blur1"}`, "NODE_NOT_FOUND")
}

func TestMergeNode(t *testing.T) {
	rg := newRig(t)

	env := rg.expectOK(t, "add_merge_node", `{"blend_mode": "Screen", "opacity": 0.5}`,
		"Added Merge node: Merge1")
	data := env.Data.(map[string]any)
	if data["blend_mode"] != "Screen" || data["opacity"] != 0.5 {
		t.Errorf("data = %v", data)
	}

	merge, ok := rg.sim.Fusion().CurrentComp().FindTool("Merge1").(*host.SimNode)
	if !ok {
		t.Fatal("Merge1 not in composition")
	}
	if merge.Input("Operator") != 3 {
		t.Errorf("Operator = %v, want 3", merge.Input("Operator"))
	}
	if merge.Input("Blend") != 0.5 {
		t.Errorf("Blend = %v", merge.Input("Blend"))
	}

	rg.expectError(t, "add_merge_node", `{"opacity": 1.5}`, "VALIDATION_ERROR")
}

func TestTextNode(t *testing.T) {
	rg := newRig(t)

	// The seeded composition already has a Text+ node, so the new one is
	// numbered 2.
	env := rg.expectOK(t, "add_text_node", `{"text": "Lower Third"}`, "Added Text+ node: Text+2")
	data := env.Data.(map[string]any)
	if data["font"] != "Arial" || data["size"] != 0.1 {
		t.Errorf("defaults = %v", data)
	}

	node, ok := rg.sim.Fusion().CurrentComp().FindTool("Text+2").(*host.SimNode)
	if !ok {
		t.Fatal("Text+2 not in composition")
	}
	if node.Input("StyledText") != "Lower Third" {
		t.Errorf("StyledText = %v", node.Input("StyledText"))
	}

	rg.expectError(t, "add_text_node", `{"text": ""}`, "VALIDATION_ERROR")
	rg.expectError(t, "add_text_node", `{"text": "x", "size": 2.0}`, "VALIDATION_ERROR")
}

func TestSetNodeParameter(t *testing.T) {
	rg := newRig(t)
	rg.expectOK(t, "set_node_parameter",
		`{"node_name": "Background1", "parameter": "TopLeftRed", "value": 1}`,
		"Set TopLeftRed = 1 on node 'Background1'")
	rg.expectError(t, "set_node_parameter",
		`{"node_name": "Ghost1", "parameter": "X", "value": 0}`, "NODE_NOT_FOUND")
}

func TestNamedFusionNode(t *testing.T) {
	rg := newRig(t)
	rg.expectOK(t, "add_fusion_node", `{"node_type": "Glow", "name": "HeroGlow"}`,
		"Added Glow node: HeroGlow")
	if rg.sim.Fusion().CurrentComp().FindTool("HeroGlow") == nil {
		t.Error("custom name was not applied")
	}
}

func TestTransformNode(t *testing.T) {
	rg := newRig(t)

	env := rg.expectOK(t, "add_transform_node", "", "Added Transform node: Transform1")
	if rg.sim.Page() != "edit" {
		t.Errorf("page not restored, got %q", rg.sim.Page())
	}
	data := env.Data.(map[string]any)
	if data["size"] != 1.0 {
		t.Errorf("data = %v", data)
	}

	node := rg.sim.Fusion().CurrentComp().FindTool("Transform1")
	if node == nil {
		t.Fatal("Transform1 not in composition")
	}
	center := node.(*host.SimNode).Input("Center").([]float64)
	if center[0] != 0.5 || center[1] != 0.5 {
		t.Errorf("center = %v", center)
	}

	rg.expectError(t, "add_transform_node", `{"center_x": 1.5}`, "VALIDATION_ERROR")
	rg.expectError(t, "add_transform_node", `{"size": 20}`, "VALIDATION_ERROR")
}

func TestBackgroundNode(t *testing.T) {
	rg := newRig(t)

	// The seeded composition already has one Background node.
	env := rg.expectOK(t, "add_background_node", "", "Added Background node: Background2")
	if env.Data.(map[string]any)["color"].([]float64)[3] != 1.0 {
		t.Errorf("data = %v", env.Data)
	}

	rg.expectOK(t, "add_background_node", `{"color": [1, 0.5, 0, 1], "name": "Orange"}`,
		"Added Background node: Orange")

	rg.expectError(t, "add_background_node", `{"color": [1, 0, 0]}`, "OPERATION_ERROR")
	rg.expectError(t, "add_background_node", `{"color": [1, 0, 0, 1.2]}`, "VALIDATION_ERROR")
}

func TestRenderFusionComposition(t *testing.T) {
	rg := newRig(t)

	env := rg.expectOK(t, "render_fusion_composition", "",
		"Started rendering Fusion composition from frame 0 to 240")
	if env.Data.(map[string]any)["render_end"] != 240 {
		t.Errorf("data = %v", env.Data)
	}
	if rg.sim.Page() != "edit" {
		t.Errorf("page not restored, got %q", rg.sim.Page())
	}

	rg.expectOK(t, "render_fusion_composition", `{"start_frame": 10, "end_frame": 50}`,
		"Started rendering Fusion composition from frame 10 to 50")

	env = rg.expectError(t, "render_fusion_composition", `{"start_frame": 50, "end_frame": 10}`,
		"VALIDATION_ERROR")
	if env.Details.(map[string]any)["parameter"] != "end_frame" {
		t.Errorf("details = %v", env.Details)
	}
}

func TestCreateFusionClip(t *testing.T) {
	rg := newRig(t)

	rg.expectOK(t, "create_fusion_clip", `{"timeline_item_name": "Clip 1"}`,
		"Created Fusion clip from 'Clip 1'")
	if rg.sim.Page() != "edit" {
		t.Errorf("page not restored, got %q", rg.sim.Page())
	}

	rg.expectError(t, "create_fusion_clip", `{"timeline_item_name": "Ghost"}`, "ITEM_NOT_FOUND")
	rg.expectError(t, "create_fusion_clip", "", "VALIDATION_ERROR")
}

func TestFairlight(t *testing.T) {
	rg := newRig(t)

	env := rg.expectOK(t, "add_audio_track", "", "Added mono audio track: Audio 2")
	if rg.sim.Page() != "edit" {
		t.Errorf("page not restored, got %q", rg.sim.Page())
	}
	data := env.Data.(map[string]any)
	if data["track_type"] != "mono" {
		t.Errorf("data = %v", data)
	}

	rg.expectError(t, "add_audio_track", `{"track_type": "quad"}`, "VALIDATION_ERROR")

	rg.expectError(t, "set_audio_levels", `{"volume_db": -6}`, "OPERATION_ERROR")
	rg.expectError(t, "set_audio_levels", `{"track_index": 9, "volume_db": -6}`, "OPERATION_ERROR")
	rg.expectError(t, "set_audio_levels", `{"clip_name": "Ghost", "volume_db": -6}`, "ITEM_NOT_FOUND")
	rg.expectError(t, "set_audio_levels", `{"track_index": 1, "volume_db": 40}`, "VALIDATION_ERROR")

	rg.expectOK(t, "set_audio_levels", `{"clip_name": "Interview Audio", "volume_db": -6, "pan": 0.5}`,
		"Set audio levels for 'Interview Audio': Volume=-6dB, Pan=0.5")

	// The track added above is empty; addressing it by index alone is a
	// lookup miss, not a missing named item.
	env = rg.expectError(t, "set_audio_levels", `{"track_index": 2, "volume_db": -6}`, "OPERATION_ERROR")
	if env.Message != "No audio clip found on track 2" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestApplyAudioEffect(t *testing.T) {
	rg := newRig(t)

	rg.expectOK(t, "apply_audio_effect", `{"clip_name": "Interview Audio"}`,
		"Applied EQ effect to 'Interview Audio'")
	if rg.sim.Page() != "edit" {
		t.Errorf("page not restored, got %q", rg.sim.Page())
	}

	env := rg.expectOK(t, "apply_audio_effect",
		`{"track_index": 1, "effect_name": "reverb", "effect_settings": {"wet": 0.3}}`, "")
	if !strings.HasPrefix(env.Message, "Applied Reverb effect to 'Interview Audio' with settings:") {
		t.Errorf("message = %q", env.Message)
	}

	rg.expectError(t, "apply_audio_effect", `{"clip_name": "Interview Audio", "effect_name": "Chorus"}`,
		"VALIDATION_ERROR")
	rg.expectError(t, "apply_audio_effect", `{"effect_name": "EQ"}`, "OPERATION_ERROR")
	rg.expectError(t, "apply_audio_effect", `{"clip_name": "Ghost"}`, "ITEM_NOT_FOUND")
}

func TestAutoSyncAudio(t *testing.T) {
	rg := newRig(t)

	rg.expectOK(t, "auto_sync_audio",
		`{"video_clip_name": "Clip 1", "audio_clip_name": "Interview Audio"}`,
		"Synced audio clip 'Interview Audio' with video clip 'Clip 1' using waveform method")

	rg.expectOK(t, "auto_sync_audio",
		`{"video_clip_name": "Clip 1", "audio_clip_name": "Interview Audio", "sync_method": "TIMECODE"}`,
		"Synced audio clip 'Interview Audio' with video clip 'Clip 1' using timecode method")

	rg.expectError(t, "auto_sync_audio",
		`{"video_clip_name": "Clip 1", "audio_clip_name": "Interview Audio", "sync_method": "guess"}`,
		"VALIDATION_ERROR")
	rg.expectError(t, "auto_sync_audio",
		`{"video_clip_name": "Ghost", "audio_clip_name": "Interview Audio"}`, "ITEM_NOT_FOUND")
	rg.expectError(t, "auto_sync_audio",
		`{"video_clip_name": "Clip 1", "audio_clip_name": "Ghost"}`, "ITEM_NOT_FOUND")
}

func TestAudioMeters(t *testing.T) {
	rg := newRig(t)

	rg.expectOK(t, "set_audio_levels", `{"track_index": 1, "volume_db": -12, "pan": -0.25}`, "")

	env := rg.expectOK(t, "resolve://fairlight/audio-meters", "", "Timeline 1")
	data := env.Data.(map[string]any)
	if data["track_count"] != 1 {
		t.Errorf("track_count = %v", data["track_count"])
	}
	tracks := data["tracks"].([]map[string]any)
	if len(tracks) != 1 {
		t.Fatalf("tracks = %v", tracks)
	}
	if tracks[0]["volume_db"] != -12.0 || tracks[0]["pan"] != -0.25 {
		t.Errorf("track 1 = %v", tracks[0])
	}
}

func TestAvailableAudioEffects(t *testing.T) {
	rg := newRig(t)
	env := rg.expectOK(t, "resolve://fairlight/available-effects", "", "Available audio effects")
	catalog := env.Data.(map[string][]string)
	if len(catalog["dynamics"]) == 0 || len(catalog["eq_filters"]) == 0 {
		t.Errorf("catalog = %v", catalog)
	}
}

func TestExportAudioMixdown(t *testing.T) {
	rg := newRig(t)
	out := filepath.Join(t.TempDir(), "mix.wav")

	rg.expectOK(t, "export_audio_mixdown", `{"output_path": `+quote(out)+`}`,
		"Exported audio mixdown to '"+out+"' as WAV (48000Hz, 24-bit)")

	rg.expectError(t, "export_audio_mixdown",
		`{"output_path": `+quote(out)+`, "format": "flac"}`, "VALIDATION_ERROR")
	rg.expectError(t, "export_audio_mixdown",
		`{"output_path": `+quote(out)+`, "sample_rate": 22050}`, "OPERATION_ERROR")
}

func TestCacheSettings(t *testing.T) {
	rg := newRig(t)

	rg.expectOK(t, "set_cache_mode", `{"mode": "auto"}`, "Set cache mode to Auto")
	rg.expectOK(t, "set_optimized_media_mode", `{"mode": "On"}`, "Set optimized media mode to On")
	rg.expectOK(t, "set_proxy_mode", `{"mode": "Off"}`, "Set proxy mode to Off")
	rg.expectOK(t, "set_proxy_quality", `{"quality": "Full Resolution"}`, "Set proxy quality to Full Resolution")
	rg.expectError(t, "set_cache_mode", `{"mode": "Sometimes"}`, "VALIDATION_ERROR")

	env := rg.expectOK(t, "resolve://cache/settings", "", "Cache settings")
	data := env.Data.(map[string]any)
	if data["optimized_media_mode"] != "On" || data["proxy_quality"] != "Full Resolution" {
		t.Errorf("settings = %v", data)
	}
}

func TestOptimizedMedia(t *testing.T) {
	rg := newRig(t)

	rg.expectOK(t, "generate_optimized_media", "", "Started optimized media generation for all clips in project")
	env := rg.expectOK(t, "generate_optimized_media", `{"clip_names": ["Clip 1", "Ghost"]}`,
		"Started optimized media generation for 1 clips")
	if env.Data.(map[string]any)["clip_count"] != 1 {
		t.Errorf("data = %v", env.Data)
	}
	rg.expectOK(t, "delete_optimized_media", `{"clip_names": ["Clip 1"]}`,
		"Deleted optimized media for 1 clips")
	rg.expectOK(t, "clear_render_cache", "", "Cleared render cache for current project")
}

func TestCacheDiskUsage(t *testing.T) {
	rg := newRig(t)

	env := rg.expectOK(t, "resolve://cache/disk-usage", "", "Cache usage for 'Demo Project'")
	data := env.Data.(map[string]any)
	if data["clip_count"] != 1 || data["render_cache_size_mb"] != 256 {
		t.Errorf("data = %v", data)
	}

	// Usage scales with the pool.
	media := filepath.Join(t.TempDir(), "broll.mov")
	if err := os.WriteFile(media, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	rg.expectOK(t, "import_media", `{"file_path": `+quote(media)+`}`, "")
	env = rg.expectOK(t, "resolve://cache/disk-usage", "", "")
	if env.Data.(map[string]any)["clip_count"] != 2 {
		t.Errorf("data = %v", env.Data)
	}
}

func TestKeyframes(t *testing.T) {
	rg := newRig(t)

	rg.expectOK(t, "enable_keyframes", `{"timeline_item_id": "item-1"}`,
		"Enabled All keyframe mode for timeline item 'Clip 1'")

	// Property names are case-insensitive and canonicalized.
	rg.expectOK(t, "add_keyframe",
		`{"timeline_item_id": "item-1", "property_name": "zoomx", "frame": 10, "value": 1.5}`,
		"Added keyframe for ZoomX at frame 10 with value 1.5")
	// Duplicate frame.
	rg.expectError(t, "add_keyframe",
		`{"timeline_item_id": "item-1", "property_name": "ZoomX", "frame": 10, "value": 2.0}`,
		"OPERATION_ERROR")
	rg.expectError(t, "add_keyframe",
		`{"timeline_item_id": "item-1", "property_name": "ZoomX", "frame": 0, "value": 1.0}`,
		"VALIDATION_ERROR")
	rg.expectError(t, "add_keyframe",
		`{"timeline_item_id": "Ghost", "property_name": "ZoomX", "frame": 10, "value": 1.0}`,
		"ITEM_NOT_FOUND")

	env := rg.expectOK(t, "get_timeline_item_keyframes",
		`{"timeline_item_id": "Clip 1", "property_name": "ZoomX"}`, "1 keyframes on ZoomX")
	kfs := env.Data.(map[string]any)["keyframes"].([]host.Keyframe)
	if len(kfs) != 1 || kfs[0].Frame != 10 || kfs[0].Value != 1.5 {
		t.Errorf("keyframes = %v", kfs)
	}

	rg.expectError(t, "modify_keyframe",
		`{"timeline_item_id": "item-1", "property_name": "ZoomX", "frame": 10}`, "OPERATION_ERROR")

	rg.expectOK(t, "modify_keyframe",
		`{"timeline_item_id": "item-1", "property_name": "ZoomX", "frame": 10, "new_value": 1.8}`,
		"Updated keyframe value for ZoomX at frame 10 to 1.8")
	rg.expectOK(t, "modify_keyframe",
		`{"timeline_item_id": "item-1", "property_name": "ZoomX", "frame": 10, "new_frame": 20}`,
		"Moved keyframe for ZoomX from frame 10 to 20")

	env = rg.expectError(t, "set_keyframe_interpolation",
		`{"timeline_item_id": "item-1", "property_name": "ZoomX", "frame": 99, "interpolation_type": "Bezier"}`,
		"OPERATION_ERROR")
	if env.Message != "No keyframe found at frame 99 for property 'ZoomX'" {
		t.Errorf("message = %q", env.Message)
	}
	rg.expectOK(t, "set_keyframe_interpolation",
		`{"timeline_item_id": "item-1", "property_name": "ZoomX", "frame": 20, "interpolation_type": "Bezier"}`,
		"Set interpolation for ZoomX keyframe at frame 20 to Bezier")

	rg.expectOK(t, "delete_keyframe",
		`{"timeline_item_id": "item-1", "property_name": "ZoomX", "frame": 20}`,
		"Deleted keyframe for ZoomX at frame 20")
	rg.expectOK(t, "get_timeline_item_keyframes",
		`{"timeline_item_id": "item-1", "property_name": "ZoomX"}`, "0 keyframes on ZoomX")
}

func TestInspect(t *testing.T) {
	rg := newRig(t)

	env := rg.expectOK(t, "inspect_custom_object",
		`{"object_path": "GetProjectManager.GetCurrentProject"}`, "GetProjectManager.GetCurrentProject")
	data := env.Data.(map[string]any)
	if data["type"] != "Project" {
		t.Errorf("type = %v", data["type"])
	}
	state := data["state"].(map[string]any)
	if state["name"] != "Demo Project" {
		t.Errorf("state = %v", state)
	}

	env = rg.expectError(t, "inspect_custom_object", `{"object_path": "GetGhost"}`, "OPERATION_ERROR")
	if env.Message != "'GetGhost' not found in object path" {
		t.Errorf("message = %q", env.Message)
	}

	// A valid accessor applied to the wrong object is a pathing mistake,
	// not an internal failure.
	env = rg.expectError(t, "inspect_custom_object", `{"object_path": "GetCurrentProject"}`, "OPERATION_ERROR")
	if env.Message != "GetCurrentProject is only available on the project manager" {
		t.Errorf("message = %q", env.Message)
	}

	env = rg.expectOK(t, "inspect_custom_object",
		`{"object_path": "GetProjectManager.GetCurrentProject.GetMediaPool.GetRootFolder"}`,
		"GetProjectManager.GetCurrentProject.GetMediaPool.GetRootFolder")
	data = env.Data.(map[string]any)
	if data["type"] != "Folder" {
		t.Errorf("type = %v", data["type"])
	}
	clips := data["state"].(map[string]any)["clips"].([]map[string]any)
	if len(clips) != 1 || clips[0]["name"] != "Clip 1" {
		t.Errorf("clips = %v", clips)
	}

	env = rg.expectOK(t, "resolve://inspect/current-timeline", "", "Timeline")
	data = env.Data.(map[string]any)
	if data["type"] != "Timeline" {
		t.Errorf("type = %v", data["type"])
	}
}

func TestDisconnected(t *testing.T) {
	logger := log.New(io.Discard)
	handle := host.NewHandle(nil)
	guard := page.NewGuard(handle, logger)
	r := dispatch.NewRegistry(guard, logger)
	New(handle, nil, guard, false).Register(r)

	// An unguarded operation.
	env := r.Dispatch(context.Background(), "get_product_info", nil)
	if env.Success || env.ErrorCode != "CONNECTION_ERROR" {
		t.Errorf("unguarded: %+v", env)
	}
	// A guarded operation.
	env = r.Dispatch(context.Background(), "add_serial_node", json.RawMessage(`{"item_name": "Clip 1"}`))
	if env.Success || env.ErrorCode != "CONNECTION_ERROR" {
		t.Errorf("guarded: %+v", env)
	}
}

func TestReconnect(t *testing.T) {
	logger := log.New(io.Discard)
	handle := host.NewHandle(nil)
	guard := page.NewGuard(handle, logger)
	r := dispatch.NewRegistry(guard, logger)

	attempts := 0
	connect := func() (host.Host, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("not running")
		}
		return host.NewSim(), nil
	}
	New(handle, connect, guard, false).Register(r)

	env := r.Dispatch(context.Background(), "reconnect", nil)
	if env.Success {
		t.Fatal("first attempt should fail")
	}
	if env.Message != "Failed to reconnect. Is DaVinci Resolve running?" {
		t.Errorf("message = %q", env.Message)
	}
	if handle.Get() != nil {
		t.Error("failed reconnect must not publish a host")
	}

	env = r.Dispatch(context.Background(), "reconnect", nil)
	if !env.Success {
		t.Fatalf("second attempt: %+v", env)
	}
	if env.Message != "Reconnected to DaVinci Resolve (simulator) 19.1.0" {
		t.Errorf("message = %q", env.Message)
	}

	env = r.Dispatch(context.Background(), "get_product_info", nil)
	if !env.Success {
		t.Errorf("operation after reconnect: %+v", env)
	}
}
