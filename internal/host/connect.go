package host

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/framewise/resolve-mcp/internal/fault"
)

// ScriptLibPath returns the expected location of the application's
// scripting support library, honoring the RESOLVE_SCRIPT_LIB override the
// application documents.
func ScriptLibPath() string {
	if p := os.Getenv("RESOLVE_SCRIPT_LIB"); p != "" {
		return p
	}
	switch runtime.GOOS {
	case "darwin":
		return "/Applications/DaVinci Resolve/DaVinci Resolve.app/Contents/Libraries/Fusion/fusionscript.so"
	case "windows":
		return filepath.Join(os.Getenv("PROGRAMFILES"), "Blackmagic Design", "DaVinci Resolve", "fusionscript.dll")
	default:
		return "/opt/resolve/libs/Fusion/fusionscript.so"
	}
}

// Detect probes for a reachable DaVinci Resolve instance. The scripting
// bridge is driven through the application's embedded script host, which
// this process cannot load directly, so Detect reports what is missing
// rather than silently succeeding; the Connector seam is where a native
// bridge plugs in. Until one is connected the server keeps serving and
// every operation answers with a connection error, matching the behavior
// when the application is simply not running.
func Detect() (Host, error) {
	lib := ScriptLibPath()
	if _, err := os.Stat(lib); err != nil {
		return nil, fault.Connection("DaVinci Resolve scripting support not found at %s. Is DaVinci Resolve installed?", lib)
	}
	return nil, fault.Connection("DaVinci Resolve is not reachable from this process. Is DaVinci Resolve running?")
}
