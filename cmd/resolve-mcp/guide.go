package main

// usageGuide is rendered by `resolve-mcp guide`.
const usageGuide = `# resolve-mcp

An MCP server for DaVinci Resolve. Tools mutate the host; resources answer
read-only queries under ` + "`resolve://`" + ` URIs.

## Getting started

1. Start DaVinci Resolve, then run the server:

   ` + "```" + `
   resolve-mcp serve
   ` + "```" + `

   Without a running application the server still starts; every operation
   answers with a connection error until ` + "`reconnect`" + ` succeeds.

2. No application at hand? Serve the built-in simulator:

   ` + "```" + `
   resolve-mcp serve --simulate
   ` + "```" + `

3. Register the server with your MCP client as a stdio command.

## Operations

Tools cover projects, timelines, media, grading, Fusion compositing,
Fairlight audio, delivery, cache management and keyframes. Read-only state
is published as resources, for example:

- ` + "`resolve://version`" + ` — product and version
- ` + "`resolve://current-timeline`" + ` — active timeline summary
- ` + "`resolve://fusion/nodes`" + ` — nodes in the current composition
- ` + "`resolve://cache/settings`" + ` — cache and proxy modes

Operations that need a specific page (color, fusion, fairlight, deliver)
switch to it for the duration of the call and restore the page you were on
afterwards, even when the operation fails.

## Configuration

` + "`resolve-mcp config init`" + ` writes defaults to
` + "`~/.resolve-mcp/config.yaml`" + ` (override the location with
` + "`RESOLVE_MCP_HOME`" + `). ` + "`resolve-mcp doctor`" + ` checks the
configuration, the operation catalog and host connectivity.

## Response encodings

Structured envelopes carry ` + "`success`" + `, ` + "`message`" + `, and
optional ` + "`data`" + `/` + "`error_code`" + `/` + "`details`" + ` keys.
` + "`serve --legacy`" + ` switches the operations that historically
returned plain strings to the ` + "`Success: ...`" + `/` + "`Error: ...`" + `
encoding.
`
