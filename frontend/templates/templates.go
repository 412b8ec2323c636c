// Package templates embeds the page templates and static assets of the UI.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
)

const (
	baseTemplate     = "base.html"
	partialsTemplate = "partials.html"
)

//go:embed *.html
var pages embed.FS

//go:embed static
var static embed.FS

// Static is the asset tree served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func sub(a, b int) int { return a - b }
func add(a, b int) int { return a + b }

func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("invalid dict call: number of arguments must be even")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}

func deref(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}

var funcs = template.FuncMap{
	"sub":   sub,
	"add":   add,
	"dict":  dict,
	"deref": deref,
	"lower": strings.ToLower,
}

// Load parses every page together with the base layout and the partials.
func Load() (map[string]*template.Template, error) {
	return load(pages)
}

func load(fsys fs.FS) (map[string]*template.Template, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*template.Template)
	for _, e := range entries {
		name := e.Name()
		if path.Ext(name) != ".html" || name == baseTemplate || name == partialsTemplate {
			continue
		}
		tmpl, err := template.New(baseTemplate).Funcs(funcs).ParseFS(fsys, baseTemplate, name, partialsTemplate)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		out[name] = tmpl
	}
	return out, nil
}

func MustLoad() map[string]*template.Template {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}
