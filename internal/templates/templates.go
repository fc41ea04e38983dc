// Package templates renders the client's page views from embedded
// text/template files.
//
// Every template receives a Data map. A key missing from the map renders
// as the empty string; a present key renders as its value.
package templates

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed tmpl/*.tmpl
var files embed.FS

// Data is the substitution map passed to a template.
type Data map[string]string

type Set struct {
	t *template.Template
}

// Load parses the embedded templates.
func Load() (*Set, error) {
	t, err := template.New("views").Option("missingkey=zero").ParseFS(files, "tmpl/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Set{t: t}, nil
}

// MustLoad is Load for package initialisation; the templates are embedded
// so a parse failure is a build defect.
func MustLoad() *Set {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
}

// Has reports whether a template called name exists.
func (s *Set) Has(name string) bool {
	return s.t.Lookup(name) != nil
}

// Render executes the named template with data. A nil map is treated as empty.
func (s *Set) Render(name string, data Data) (string, error) {
	t := s.t.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("template not found: %s", name)
	}
	if data == nil {
		data = Data{}
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return b.String(), nil
}

// RenderList renders name once per item and concatenates the results.
// An empty list renders as "".
func (s *Set) RenderList(name string, items []Data) (string, error) {
	var b strings.Builder
	for _, item := range items {
		out, err := s.Render(name, item)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}
