// Package site renders the chapter pages and the index page of the story and
// writes them to disk.
package site

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/hesusruiz/htmlizer/sliceedit"
)

//go:embed templates/*.html
var templatesFS embed.FS

var ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")

// A placeholder looks like {#chapter.title}
var rePlaceholder = regexp.MustCompile(`\{#([a-zA-Z0-9_.-]+)\}`)

// Vars are the values of the placeholders, keyed by name without the braces
type Vars map[string]string

// Template is an HTML text with named placeholders.
// Substitution is a single pass over the original text, so values are never
// searched for placeholders.
type Template struct {
	name string
	src  []byte
}

// ParseTemplate creates a template from its text. name is for messages.
func ParseTemplate(name string, text []byte) *Template {
	return &Template{name: name, src: text}
}

// LoadTemplate reads a template from a file
func LoadTemplate(path string) (*Template, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	return ParseTemplate(path, text), nil
}

func builtinTemplate(name string) *Template {
	text, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		// The templates are compiled into the binary
		panic(err)
	}
	return ParseTemplate(name, text)
}

// DefaultPageTemplate returns the built-in chapter page template
func DefaultPageTemplate() *Template {
	return builtinTemplate("page.html")
}

// DefaultIndexTemplate returns the built-in index page template
func DefaultIndexTemplate() *Template {
	return builtinTemplate("index.html")
}

// Name returns the name given when creating the template
func (t *Template) Name() string {
	return t.name
}

// Placeholders returns the names of the placeholders in order of first appearance
func (t *Template) Placeholders() []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range rePlaceholder.FindAllSubmatch(t.src, -1) {
		name := string(m[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Execute replaces every placeholder by its value. A placeholder without a value
// is an error; values for names not in the template are ignored.
func (t *Template) Execute(vars Vars) ([]byte, error) {
	buf := sliceedit.NewBuffer(t.src)

	var missing []string
	var pairs []string
	for _, name := range t.Placeholders() {
		value, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		pairs = append(pairs, "{#"+name+"}", value)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", t.name, ErrUnresolvedPlaceholder, strings.Join(missing, ", "))
	}

	buf.ReplacePairs(pairs...)

	return buf.Bytes(), nil
}
