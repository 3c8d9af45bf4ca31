// Package mapty embeds the browser page served by the mapty service.
package mapty

import "embed"

// WebFS holds the page: index.html, app.js and style.css under web/.
//
//go:embed web
var WebFS embed.FS
