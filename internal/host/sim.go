package host

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
)

// Sim is an in-memory host graph. It backs `serve --simulate`, the doctor
// command's connectivity probe, and the test suites — the real host is only
// reachable through its vendor scripting runtime.
type Sim struct {
	mu     sync.Mutex
	page   string
	pm     *SimProjectManager
	fusion *simFusion

	// OpenPageHook, when set, intercepts page switches. Tests use it to
	// inject switch and restore failures.
	OpenPageHook func(name string) error
	// PageErr, when set, is returned by CurrentPage.
	PageErr error
}

// NewSim builds a simulator with one open project, one timeline carrying a
// video and an audio clip, and an active Fusion composition.
func NewSim() *Sim {
	s := &Sim{page: "edit"}

	item := &SimItem{
		id:   "item-1",
		name: "Clip 1",
		props: map[string]float64{
			"ZoomX":   1.0,
			"ZoomY":   1.0,
			"Pan":     0.0,
			"Tilt":    0.0,
			"Opacity": 100.0,
		},
		keyframes: map[string][]Keyframe{},
		interp:    map[string]string{},
	}
	audioItem := &SimItem{
		id:        "item-2",
		name:      "Interview Audio",
		props:     map[string]float64{},
		keyframes: map[string][]Keyframe{},
		interp:    map[string]string{},
	}
	tl := &SimTimeline{
		name:     "Timeline 1",
		endFrame: 240,
		tracks: map[string][][]*SimItem{
			"video": {{item}},
			"audio": {{audioItem}},
		},
	}
	clip := &SimClip{name: "Clip 1", props: map[string]string{"Type": "Video"}}
	pool := &SimPool{root: &SimFolder{name: "Master", clips: []*SimClip{clip}}}

	project := &SimProject{
		name: "Demo Project",
		settings: map[string]string{
			"optimizedMediaOn":   "Auto",
			"proxyOn":            "Auto",
			"proxyQuality":       "Half Resolution",
			"cacheModeClipColor": "Auto",
		},
		timelines: []*SimTimeline{tl},
		current:   tl,
		pool:      pool,
		presets:   []string{"YouTube 1080p", "H.264 Master", "ProRes 422 HQ"},
	}
	project.pool.project = project

	s.pm = &SimProjectManager{
		projects: map[string]*SimProject{project.name: project},
		current:  project,
	}

	comp := &simComp{start: 0, end: 240}
	comp.add("Background", 0, 0)
	comp.add("Text+", 1, 0)
	s.fusion = &simFusion{comp: comp}
	return s
}

func (s *Sim) ProductName() string { return "DaVinci Resolve (simulator)" }
func (s *Sim) Version() string     { return "19.1.0" }

func (s *Sim) CurrentPage() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PageErr != nil {
		return "", s.PageErr
	}
	return s.page, nil
}

func (s *Sim) OpenPage(name string) error {
	if s.OpenPageHook != nil {
		if err := s.OpenPageHook(name); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = name
	return nil
}

func (s *Sim) ProjectManager() ProjectManager { return s.pm }
func (s *Sim) Fusion() Fusion                 { return s.fusion }

// Page returns the simulator's active page without the error plumbing,
// for assertions.
func (s *Sim) Page() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SimProjectManager implements ProjectManager.
type SimProjectManager struct {
	mu       sync.Mutex
	projects map[string]*SimProject
	current  *SimProject
}

func (pm *SimProjectManager) ListProjects() []string {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	names := make([]string, 0, len(pm.projects))
	for name := range pm.projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (pm *SimProjectManager) CurrentProject() Project {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.current == nil {
		return nil
	}
	return pm.current
}

func (pm *SimProjectManager) LoadProject(name string) Project {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	p, ok := pm.projects[name]
	if !ok {
		return nil
	}
	pm.current = p
	return p
}

func (pm *SimProjectManager) CreateProject(name string) Project {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if _, exists := pm.projects[name]; exists {
		return nil
	}
	p := &SimProject{
		name:     name,
		settings: map[string]string{},
		pool:     &SimPool{root: &SimFolder{name: "Master"}},
	}
	p.pool.project = p
	pm.projects[name] = p
	pm.current = p
	return p
}

func (pm *SimProjectManager) SaveProject() bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.current != nil
}

func (pm *SimProjectManager) CloseProject(p Project) bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.current == nil || p == nil || pm.current.name != p.Name() {
		return false
	}
	pm.current = nil
	return true
}

// SimProject implements Project.
type SimProject struct {
	mu        sync.Mutex
	name      string
	settings  map[string]string
	timelines []*SimTimeline
	current   *SimTimeline
	pool      *SimPool
	presets   []string
	renderSeq int
	rendering bool
}

func (p *SimProject) Name() string { return p.name }

func (p *SimProject) MediaPool() MediaPool { return p.pool }

func (p *SimProject) CurrentTimeline() Timeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	return p.current
}

func (p *SimProject) TimelineCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.timelines)
}

func (p *SimProject) TimelineByIndex(i int) Timeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 1 || i > len(p.timelines) {
		return nil
	}
	return p.timelines[i-1]
}

func (p *SimProject) SetCurrentTimeline(t Timeline) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, tl := range p.timelines {
		if t != nil && tl.name == t.Name() {
			p.current = tl
			return true
		}
	}
	return false
}

func (p *SimProject) Setting(key string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings[key]
}

func (p *SimProject) SetSetting(key, value string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings[key] = value
	return true
}

func (p *SimProject) RenderPresets() []string {
	return append([]string(nil), p.presets...)
}

func (p *SimProject) SetRenderSettings(settings map[string]any) bool {
	return settings != nil
}

func (p *SimProject) AddRenderJob() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renderSeq++
	return fmt.Sprintf("job-%d", p.renderSeq)
}

func (p *SimProject) StartRendering() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.renderSeq == 0 {
		return false
	}
	p.rendering = true
	return true
}

// SimPool implements MediaPool.
type SimPool struct {
	mu      sync.Mutex
	root    *SimFolder
	project *SimProject
}

func (mp *SimPool) RootFolder() Folder { return mp.root }

func (mp *SimPool) AddSubFolder(parent Folder, name string) Folder {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	target := mp.root
	if parent != nil {
		if sf, ok := parent.(*SimFolder); ok {
			target = sf
		}
	}
	f := &SimFolder{name: name}
	target.subs = append(target.subs, f)
	return f
}

func (mp *SimPool) ImportMedia(paths []string) []Clip {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	clips := make([]Clip, 0, len(paths))
	for _, path := range paths {
		c := &SimClip{name: filepath.Base(path), props: map[string]string{"File Path": path}}
		mp.root.clips = append(mp.root.clips, c)
		clips = append(clips, c)
	}
	return clips
}

func (mp *SimPool) MoveClips(clips []Clip, target Folder) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	dest, ok := target.(*SimFolder)
	if !ok {
		return false
	}
	for _, c := range clips {
		sc, ok := c.(*SimClip)
		if !ok {
			return false
		}
		mp.root.remove(sc)
		dest.clips = append(dest.clips, sc)
	}
	return true
}

func (mp *SimPool) CreateEmptyTimeline(name string) Timeline {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if mp.project == nil {
		return nil
	}
	for _, tl := range mp.project.timelines {
		if tl.name == name {
			return nil
		}
	}
	tl := &SimTimeline{
		name:   name,
		tracks: map[string][][]*SimItem{"video": {{}}, "audio": {{}}},
	}
	mp.project.timelines = append(mp.project.timelines, tl)
	mp.project.current = tl
	return tl
}

func (mp *SimPool) AppendToTimeline(clips []Clip) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if mp.project == nil || mp.project.current == nil {
		return false
	}
	tl := mp.project.current
	for i, c := range clips {
		item := &SimItem{
			id:        fmt.Sprintf("%s-item-%d", tl.name, len(tl.tracks["video"][0])+i+1),
			name:      c.Name(),
			props:     map[string]float64{},
			keyframes: map[string][]Keyframe{},
			interp:    map[string]string{},
		}
		tl.tracks["video"][0] = append(tl.tracks["video"][0], item)
	}
	return true
}

// SimFolder implements Folder.
type SimFolder struct {
	name  string
	clips []*SimClip
	subs  []*SimFolder
}

func (f *SimFolder) Name() string { return f.name }

func (f *SimFolder) Clips() []Clip {
	out := make([]Clip, len(f.clips))
	for i, c := range f.clips {
		out[i] = c
	}
	return out
}

func (f *SimFolder) SubFolders() []Folder {
	out := make([]Folder, len(f.subs))
	for i, s := range f.subs {
		out[i] = s
	}
	return out
}

func (f *SimFolder) remove(target *SimClip) {
	for i, c := range f.clips {
		if c == target {
			f.clips = append(f.clips[:i], f.clips[i+1:]...)
			return
		}
	}
	for _, sub := range f.subs {
		sub.remove(target)
	}
}

// SimClip implements Clip.
type SimClip struct {
	name  string
	props map[string]string
}

func (c *SimClip) Name() string { return c.name }

func (c *SimClip) Property(key string) string { return c.props[key] }

// SimTimeline implements Timeline.
type SimTimeline struct {
	mu          sync.Mutex
	name        string
	startFrame  int
	endFrame    int
	tracks      map[string][][]*SimItem
	markers     []simMarker
	fusionClips int
}

type simMarker struct {
	frame    int
	color    string
	name     string
	note     string
	duration int
}

func (t *SimTimeline) Name() string    { return t.name }
func (t *SimTimeline) StartFrame() int { return t.startFrame }
func (t *SimTimeline) EndFrame() int   { return t.endFrame }

func (t *SimTimeline) TrackCount(trackType string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tracks[trackType])
}

func (t *SimTimeline) ItemsInTrack(trackType string, index int) []TimelineItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	lanes := t.tracks[trackType]
	if index < 1 || index > len(lanes) {
		return nil
	}
	items := make([]TimelineItem, len(lanes[index-1]))
	for i, item := range lanes[index-1] {
		items[i] = item
	}
	return items
}

func (t *SimTimeline) AddTrack(trackType, subType string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if trackType != "video" && trackType != "audio" {
		return false
	}
	t.tracks[trackType] = append(t.tracks[trackType], []*SimItem{})
	return true
}

func (t *SimTimeline) CreateFusionClip(items []TimelineItem) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(items) == 0 {
		return false
	}
	// The real host replaces the items with a generated Fusion clip; the
	// simulator only verifies they live on this timeline.
	for _, item := range items {
		found := false
		for _, lane := range t.tracks["video"] {
			for _, it := range lane {
				if it == item {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	t.fusionClips++
	return true
}

func (t *SimTimeline) AddMarker(frame int, color, name, note string, duration int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if frame < t.startFrame || (t.endFrame > 0 && frame > t.endFrame) {
		return false
	}
	t.markers = append(t.markers, simMarker{frame, color, name, note, duration})
	return true
}

// SimItem implements TimelineItem.
type SimItem struct {
	mu         sync.Mutex
	id         string
	name       string
	props      map[string]float64
	keyframes  map[string][]Keyframe
	interp     map[string]string
	kfMode     string
	colorNodes int
}

func (it *SimItem) ID() string   { return it.id }
func (it *SimItem) Name() string { return it.name }

func (it *SimItem) Property(name string) (float64, bool) {
	it.mu.Lock()
	defer it.mu.Unlock()
	v, ok := it.props[name]
	return v, ok
}

func (it *SimItem) SetProperty(name string, value float64) bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.props[name] = value
	return true
}

func (it *SimItem) AddKeyframe(property string, frame int, value float64) bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	for _, kf := range it.keyframes[property] {
		if kf.Frame == frame {
			return false
		}
	}
	kfs := append(it.keyframes[property], Keyframe{Frame: frame, Value: value})
	sort.Slice(kfs, func(i, j int) bool { return kfs[i].Frame < kfs[j].Frame })
	it.keyframes[property] = kfs
	return true
}

func (it *SimItem) ModifyKeyframe(property string, frame int, value float64) bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	for i, kf := range it.keyframes[property] {
		if kf.Frame == frame {
			it.keyframes[property][i].Value = value
			return true
		}
	}
	return false
}

func (it *SimItem) DeleteKeyframe(property string, frame int) bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	kfs := it.keyframes[property]
	for i, kf := range kfs {
		if kf.Frame == frame {
			it.keyframes[property] = append(kfs[:i], kfs[i+1:]...)
			return true
		}
	}
	return false
}

func (it *SimItem) SetKeyframeInterpolation(property string, frame int, mode string) bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	for _, kf := range it.keyframes[property] {
		if kf.Frame == frame {
			it.interp[fmt.Sprintf("%s@%d", property, frame)] = mode
			return true
		}
	}
	return false
}

func (it *SimItem) SetKeyframeMode(mode string) bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.kfMode = mode
	return true
}

func (it *SimItem) Keyframes(property string) []Keyframe {
	it.mu.Lock()
	defer it.mu.Unlock()
	return append([]Keyframe(nil), it.keyframes[property]...)
}

func (it *SimItem) AddColorNode() int {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.colorNodes++
	return it.colorNodes
}

func (it *SimItem) ColorNodeCount() int {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.colorNodes
}

func (it *SimItem) SetColorWheelParam(node int, wheel, param string, value float64) bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	if node < 1 || node > it.colorNodes {
		return false
	}
	it.props[fmt.Sprintf("node%d.%s.%s", node, wheel, param)] = value
	return true
}

type simFusion struct {
	comp *simComp
}

func (f *simFusion) CurrentComp() Comp {
	if f.comp == nil {
		return nil
	}
	return f.comp
}

type simComp struct {
	mu     sync.Mutex
	nodes  []*SimNode
	seq    map[string]int
	start  int
	end    int
	didRun bool
}

func (c *simComp) add(nodeType string, x, y float64) *SimNode {
	if c.seq == nil {
		c.seq = map[string]int{}
	}
	c.seq[nodeType]++
	n := &SimNode{
		comp:   c,
		name:   fmt.Sprintf("%s%d", nodeType, c.seq[nodeType]),
		typ:    nodeType,
		attrs:  map[string]any{},
		inputs: map[string]any{},
		links:  map[string]Node{},
		x:      x,
		y:      y,
	}
	c.nodes = append(c.nodes, n)
	return n
}

func (c *simComp) FindTool(name string) Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.nodes {
		if n.name == name {
			return n
		}
	}
	return nil
}

func (c *simComp) AddTool(nodeType string, x, y float64) Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.add(nodeType, x, y)
}

func (c *simComp) Tools() []Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Node, len(c.nodes))
	for i, n := range c.nodes {
		out[i] = n
	}
	return out
}

func (c *simComp) FrameRange() (int, int) { return c.start, c.end }

func (c *simComp) Render(start, end int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if end < start {
		return false
	}
	c.didRun = true
	return true
}

func (c *simComp) remove(target *SimNode) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.nodes {
		if n == target {
			c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)
			return true
		}
	}
	return false
}

// SimNode implements Node.
type SimNode struct {
	mu     sync.Mutex
	comp   *simComp
	name   string
	typ    string
	attrs  map[string]any
	inputs map[string]any
	links  map[string]Node
	x, y   float64
}

func (n *SimNode) Name() string { return n.name }
func (n *SimNode) Type() string { return n.typ }

func (n *SimNode) Attrs() map[string]any {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := map[string]any{
		"TOOLS_Name":         n.name,
		"TOOLS_RegID":        n.typ,
		"TOOLNT_Position_X":  n.x,
		"TOOLNT_Position_Y":  n.y,
	}
	for k, v := range n.attrs {
		out[k] = v
	}
	return out
}

func (n *SimNode) SetAttrs(attrs map[string]any) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for k, v := range attrs {
		if k == "TOOLS_Name" {
			if s, ok := v.(string); ok {
				n.name = s
				continue
			}
		}
		n.attrs[k] = v
	}
	return true
}

func (n *SimNode) SetInput(name string, value any) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inputs[name] = value
	return true
}

// Input returns the last value set for an input, for assertions.
func (n *SimNode) Input(name string) any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.inputs[name]
}

func (n *SimNode) ConnectInput(input string, source Node) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if source == nil {
		return false
	}
	n.links[input] = source
	return true
}

func (n *SimNode) Delete() bool {
	return n.comp.remove(n)
}

func (n *SimNode) Position() (float64, float64) { return n.x, n.y }
