// Package host models the editing application's scripting object graph as
// an opaque capability provider. Everything the operation catalog touches is
// reached through these interfaces; the package takes no position on how a
// concrete host is obtained beyond the Connector hook.
package host

import "sync/atomic"

// Host is the root of the object graph.
type Host interface {
	ProductName() string
	Version() string

	// CurrentPage returns the active page name; it fails when the host
	// process has gone away.
	CurrentPage() (string, error)
	// OpenPage activates the named page. Switching pages is a global side
	// effect visible to every caller of the host.
	OpenPage(name string) error

	// ProjectManager returns nil when the manager is unavailable.
	ProjectManager() ProjectManager
	// Fusion returns nil when the Fusion surface is unavailable.
	Fusion() Fusion
}

// ProjectManager manages the project database.
type ProjectManager interface {
	ListProjects() []string
	// CurrentProject returns nil when no project is open.
	CurrentProject() Project
	LoadProject(name string) Project
	CreateProject(name string) Project
	SaveProject() bool
	CloseProject(p Project) bool
}

// Project is an open project.
type Project interface {
	Name() string
	// MediaPool returns nil when the pool is unavailable.
	MediaPool() MediaPool
	// CurrentTimeline returns nil when no timeline is active.
	CurrentTimeline() Timeline
	TimelineCount() int
	// TimelineByIndex is 1-based, matching the host API.
	TimelineByIndex(i int) Timeline
	SetCurrentTimeline(t Timeline) bool

	Setting(key string) string
	SetSetting(key, value string) bool

	RenderPresets() []string
	SetRenderSettings(settings map[string]any) bool
	// AddRenderJob returns the job id, or "" on failure.
	AddRenderJob() string
	StartRendering() bool
}

// MediaPool is a project's media pool.
type MediaPool interface {
	RootFolder() Folder
	AddSubFolder(parent Folder, name string) Folder
	ImportMedia(paths []string) []Clip
	MoveClips(clips []Clip, target Folder) bool
	CreateEmptyTimeline(name string) Timeline
	AppendToTimeline(clips []Clip) bool
}

// Folder is a media pool bin.
type Folder interface {
	Name() string
	Clips() []Clip
	SubFolders() []Folder
}

// Clip is a media pool clip.
type Clip interface {
	Name() string
	Property(key string) string
}

// Timeline is an editing timeline.
type Timeline interface {
	Name() string
	StartFrame() int
	EndFrame() int
	// TrackCount counts tracks of the given type ("video" or "audio").
	TrackCount(trackType string) int
	// ItemsInTrack is 1-based, matching the host API.
	ItemsInTrack(trackType string, index int) []TimelineItem
	AddTrack(trackType, subType string) bool
	AddMarker(frame int, color, name, note string, duration int) bool
	// CreateFusionClip converts the given items into a Fusion clip.
	CreateFusionClip(items []TimelineItem) bool
}

// TimelineItem is a clip instance on a timeline track.
type TimelineItem interface {
	ID() string
	Name() string
	Property(name string) (float64, bool)
	SetProperty(name string, value float64) bool

	AddKeyframe(property string, frame int, value float64) bool
	ModifyKeyframe(property string, frame int, value float64) bool
	DeleteKeyframe(property string, frame int) bool
	SetKeyframeInterpolation(property string, frame int, mode string) bool
	SetKeyframeMode(mode string) bool
	Keyframes(property string) []Keyframe

	// Color grade surface.
	AddColorNode() int
	ColorNodeCount() int
	SetColorWheelParam(node int, wheel, param string, value float64) bool
}

// Keyframe is one keyframed value on a timeline item property.
type Keyframe struct {
	Frame int     `json:"frame"`
	Value float64 `json:"value"`
}

// Fusion is the Fusion surface of the host.
type Fusion interface {
	// CurrentComp returns nil when no composition is active.
	CurrentComp() Comp
}

// Comp is a Fusion composition.
type Comp interface {
	// FindTool returns nil when no node has the given name.
	FindTool(name string) Node
	AddTool(nodeType string, x, y float64) Node
	Tools() []Node
	FrameRange() (start, end int)
	Render(start, end int) bool
}

// Node is a Fusion node.
type Node interface {
	Name() string
	Type() string
	Attrs() map[string]any
	SetAttrs(attrs map[string]any) bool
	SetInput(name string, value any) bool
	ConnectInput(input string, source Node) bool
	Delete() bool
	Position() (x, y float64)
}

// Connector obtains a live host. It is called once at startup and again on
// explicit reconnect requests.
type Connector func() (Host, error)

// Handle is the process-lifetime shared reference to the host. It is nil
// until a connector succeeds, and only ever replaced wholesale via Publish —
// never mutated in place.
type Handle struct {
	ref atomic.Pointer[hostRef]
}

type hostRef struct {
	h Host
}

// NewHandle wraps h, which may be nil for a disconnected handle.
func NewHandle(h Host) *Handle {
	hd := &Handle{}
	hd.ref.Store(&hostRef{h: h})
	return hd
}

// Get returns the current host, or nil when disconnected.
func (hd *Handle) Get() Host {
	return hd.ref.Load().h
}

// Publish atomically replaces the host observed by subsequent operations.
// Callers that can race with in-flight operations must hold the execution
// gate while publishing.
func (hd *Handle) Publish(h Host) {
	hd.ref.Store(&hostRef{h: h})
}
