// Package templates holds the HTML pages of the blog, embedded into the
// binary so tests and the server parse the same files.
package templates

import "embed"

//go:embed *.html
var FS embed.FS
