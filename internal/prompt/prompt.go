// Package prompt holds the prompt templates notekeeper offers hosts next to
// its tools. Each template renders a single user message from named string
// arguments.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingArgument is returned by Render when a required argument is absent.
var ErrMissingArgument = errors.New("missing required argument")

// ErrUnknownPrompt is returned by Catalog.Render for unregistered names.
var ErrUnknownPrompt = errors.New("unknown prompt")

// Argument describes one template parameter. All arguments are required.
type Argument struct {
	Name        string
	Description string
}

// Template is a named prompt with a text/placeholder body. Placeholders are
// written as {name}.
type Template struct {
	Name        string
	Description string
	Arguments   []Argument
	Body        string
}

// Render substitutes args into the body.
func (t Template) Render(args map[string]string) (string, error) {
	pairs := make([]string, 0, len(t.Arguments)*2)
	for _, a := range t.Arguments {
		v, ok := args[a.Name]
		if !ok {
			return "", fmt.Errorf("prompt %s: %w: %s", t.Name, ErrMissingArgument, a.Name)
		}
		pairs = append(pairs, "{"+a.Name+"}", v)
	}
	// A single pass keeps placeholder text inside argument values literal.
	return strings.NewReplacer(pairs...).Replace(t.Body), nil
}

// Prompt names.
const (
	CreateFile   = "prompt_create_file"
	AppendToFile = "prompt_append_to_file"
	ReadFile     = "prompt_read_file"
)

// Defaults returns the built-in templates.
func Defaults() []Template {
	return []Template{
		{
			Name:        CreateFile,
			Description: "Generate a prompt to create a new file with the given content.",
			Arguments: []Argument{
				{Name: "filename", Description: "Name of the file to create (e.g., 'todo.txt')."},
				{Name: "content", Description: "Initial content to write to the file."},
			},
			Body: "Create a file named '{filename}' with the following content:\n\n{content}",
		},
		{
			Name:        AppendToFile,
			Description: "Generate a prompt to append content to an existing file.",
			Arguments: []Argument{
				{Name: "filename", Description: "Name of the file to append to."},
				{Name: "new_content", Description: "Content to be appended."},
			},
			Body: "Append the following text to the file '{filename}':\n\n{new_content}",
		},
		{
			Name:        ReadFile,
			Description: "Generate a prompt to read the contents of a file.",
			Arguments: []Argument{
				{Name: "filename", Description: "Name of the file to read."},
			},
			Body: "Read and display the contents of the file named '{filename}'.",
		},
	}
}

// Catalog indexes templates by name.
type Catalog struct {
	order     []string
	templates map[string]Template
}

// NewCatalog builds a catalog from templates. Later duplicates replace
// earlier ones.
func NewCatalog(templates ...Template) *Catalog {
	c := &Catalog{templates: make(map[string]Template, len(templates))}
	for _, t := range templates {
		if _, ok := c.templates[t.Name]; !ok {
			c.order = append(c.order, t.Name)
		}
		c.templates[t.Name] = t
	}
	return c
}

// Templates returns the templates in registration order.
func (c *Catalog) Templates() []Template {
	out := make([]Template, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.templates[name])
	}
	return out
}

// Render renders the named template.
func (c *Catalog) Render(name string, args map[string]string) (string, error) {
	t, ok := c.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPrompt, name)
	}
	return t.Render(args)
}
