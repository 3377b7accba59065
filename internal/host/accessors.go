package host

import (
	"strings"

	"github.com/framewise/resolve-mcp/internal/fault"
)

// The accessor helpers walk the fixed chains into the object graph and turn
// any nil intermediate into a classified fault naming the accessor that
// failed.

// Connected returns the live host behind hd, or a connection fault when the
// handle is empty.
func Connected(hd *Handle) (Host, error) {
	h := hd.Get()
	if h == nil {
		return nil, fault.Connection("Not connected to DaVinci Resolve")
	}
	return h, nil
}

// Manager resolves the project manager.
func Manager(h Host) (ProjectManager, error) {
	pm := h.ProjectManager()
	if pm == nil {
		return nil, fault.Operation("Failed to get Project Manager")
	}
	return pm, nil
}

// CurrentProject resolves the open project.
func CurrentProject(h Host) (Project, error) {
	pm, err := Manager(h)
	if err != nil {
		return nil, err
	}
	p := pm.CurrentProject()
	if p == nil {
		return nil, fault.Operation("No project currently open")
	}
	return p, nil
}

// CurrentTimeline resolves the active timeline of the open project.
func CurrentTimeline(h Host) (Timeline, error) {
	p, err := CurrentProject(h)
	if err != nil {
		return nil, err
	}
	t := p.CurrentTimeline()
	if t == nil {
		return nil, fault.Operation("No timeline currently active")
	}
	return t, nil
}

// Pool resolves the media pool of the open project.
func Pool(h Host) (MediaPool, error) {
	p, err := CurrentProject(h)
	if err != nil {
		return nil, err
	}
	mp := p.MediaPool()
	if mp == nil {
		return nil, fault.Operation("Failed to get Media Pool")
	}
	return mp, nil
}

// FusionComp resolves the active Fusion composition.
func FusionComp(h Host) (Comp, error) {
	fu := h.Fusion()
	if fu == nil {
		return nil, fault.Operation("Failed to access Fusion")
	}
	comp := fu.CurrentComp()
	if comp == nil {
		return nil, fault.Operation("No Fusion composition active")
	}
	return comp, nil
}

// FindClip searches the media pool recursively for a clip by name.
func FindClip(pool MediaPool, name string) Clip {
	return findClipIn(pool.RootFolder(), name)
}

func findClipIn(folder Folder, name string) Clip {
	if folder == nil {
		return nil
	}
	for _, c := range folder.Clips() {
		if c.Name() == name {
			return c
		}
	}
	for _, sub := range folder.SubFolders() {
		if c := findClipIn(sub, name); c != nil {
			return c
		}
	}
	return nil
}

// FindFolder searches the media pool recursively for a bin by name.
func FindFolder(pool MediaPool, name string) Folder {
	return findFolderIn(pool.RootFolder(), name)
}

func findFolderIn(folder Folder, name string) Folder {
	if folder == nil {
		return nil
	}
	if folder.Name() == name {
		return folder
	}
	for _, sub := range folder.SubFolders() {
		if f := findFolderIn(sub, name); f != nil {
			return f
		}
	}
	return nil
}

// ItemByName searches the tracks of the given type for an item by name.
func ItemByName(t Timeline, name, trackType string) TimelineItem {
	for track := 1; track <= t.TrackCount(trackType); track++ {
		for _, item := range t.ItemsInTrack(trackType, track) {
			if item.Name() == name {
				return item
			}
		}
	}
	return nil
}

// ItemByID searches video then audio tracks for an item by id. Item names
// are accepted as a fallback so callers can address items either way.
func ItemByID(t Timeline, id string) TimelineItem {
	for _, trackType := range []string{"video", "audio"} {
		for track := 1; track <= t.TrackCount(trackType); track++ {
			for _, item := range t.ItemsInTrack(trackType, track) {
				if item.ID() == id || item.Name() == id {
					return item
				}
			}
		}
	}
	return nil
}

// AllClips collects every clip in the pool, depth-first.
func AllClips(pool MediaPool) []Clip {
	var out []Clip
	var walk func(Folder)
	walk = func(f Folder) {
		if f == nil {
			return
		}
		out = append(out, f.Clips()...)
		for _, sub := range f.SubFolders() {
			walk(sub)
		}
	}
	walk(pool.RootFolder())
	return out
}

// SamePage reports whether two page names refer to the same page,
// ignoring case.
func SamePage(a, b string) bool {
	return strings.EqualFold(a, b)
}
