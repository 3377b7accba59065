// Package page owns the host's page vocabulary and the guard that keeps
// page-switching operations from leaking global UI state.
package page

import "github.com/framewise/resolve-mcp/internal/validate"

// Page is one of the host's mutually exclusive work modes.
type Page string

const (
	Media     Page = "media"
	Cut       Page = "cut"
	Edit      Page = "edit"
	Fusion    Page = "fusion"
	Color     Page = "color"
	Fairlight Page = "fairlight"
	Deliver   Page = "deliver"
)

// None marks an operation that does not require a particular page.
const None Page = ""

// All lists the closed page set in host order.
func All() []Page {
	return []Page{Media, Cut, Edit, Fusion, Color, Fairlight, Deliver}
}

// Names returns the page names as strings.
func Names() []string {
	pages := All()
	names := make([]string, len(pages))
	for i, p := range pages {
		names[i] = string(p)
	}
	return names
}

// Parse validates a page name, case-insensitively, against the closed set.
func Parse(name string) (Page, error) {
	canonical, err := validate.Choice(name, Names(), "page")
	if err != nil {
		return "", err
	}
	return Page(canonical), nil
}
