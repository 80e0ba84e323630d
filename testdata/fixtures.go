// Package testdata holds fixtures shared by end-to-end tests.
package testdata

import (
	"bytes"
	_ "embed"
	"io"
)

// templatesJSON is an exported library with three templates: open_palm,
// fist and 2_fingers, recorded from the detector's preset poses.
//
//go:embed templates.json
var templatesJSON []byte

// TemplateCount is the number of templates in the export fixture.
const TemplateCount = 3

// Templates returns a reader over the template export fixture.
func Templates() io.Reader {
	return bytes.NewReader(templatesJSON)
}

// TemplatesJSON returns a copy of the template export fixture.
func TemplatesJSON() []byte {
	return bytes.Clone(templatesJSON)
}
