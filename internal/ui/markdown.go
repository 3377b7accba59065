package ui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// RenderMarkdown pretty-prints md to stdout. The raw text is printed when
// the renderer cannot be built, so the guide stays readable over pipes.
func RenderMarkdown(md string) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(96)}
	if plain {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		fmt.Println(md)
		return
	}
	out, err := renderer.Render(md)
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
