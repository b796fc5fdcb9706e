// Package webui embeds the static chat widget served at the root path.
package webui

import _ "embed"

// IndexPage is the single-page chat client consuming the SSE protocol.
//
//go:embed index.html
var IndexPage []byte
