package mcp

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/text/message"

	"github.com/n0roo/todo-mcp/internal/task"
)

// Tool names
const (
	ToolAddTodo      = "add_todo"
	ToolListTodos    = "list_todos"
	ToolCompleteTodo = "complete_todo"
	ToolDeleteTodo   = "delete_todo"
)

// ResourceAllURI is the resource holding every task as JSON
const ResourceAllURI = "todo://all"

const jsonMIMEType = "application/json"

// Registry is the static catalog of tools and resources. It is built once
// and never mutated afterwards.
type Registry struct {
	tools     []*sdk.Tool
	toolIndex map[string]*sdk.Tool
	schemas   map[string]*jsonschema.Resolved
	resources []*sdk.Resource
}

// NewRegistry builds the catalog with descriptions rendered by p.
func NewRegistry(p *message.Printer) (*Registry, error) {
	r := &Registry{
		toolIndex: make(map[string]*sdk.Tool),
		schemas:   make(map[string]*jsonschema.Resolved),
	}

	tools := []struct {
		name   string
		desc   string
		schema *jsonschema.Schema
	}{
		{ToolAddTodo, p.Sprintf("tool.add_todo.description"), addTodoSchema(p)},
		{ToolListTodos, p.Sprintf("tool.list_todos.description"), listTodosSchema(p)},
		{ToolCompleteTodo, p.Sprintf("tool.complete_todo.description"), idSchema(p)},
		{ToolDeleteTodo, p.Sprintf("tool.delete_todo.description"), idSchema(p)},
	}

	for _, t := range tools {
		resolved, err := t.schema.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("resolve %s schema: %w", t.name, err)
		}
		tool := &sdk.Tool{
			Name:        t.name,
			Description: t.desc,
			InputSchema: t.schema,
		}
		r.tools = append(r.tools, tool)
		r.toolIndex[t.name] = tool
		r.schemas[t.name] = resolved
	}

	r.resources = []*sdk.Resource{
		{
			URI:         ResourceAllURI,
			Name:        p.Sprintf("resource.all.name"),
			Description: p.Sprintf("resource.all.description"),
			MIMEType:    jsonMIMEType,
		},
	}

	return r, nil
}

func addTodoSchema(p *message.Printer) *jsonschema.Schema {
	minLen := 1
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"title": {
				Type:        "string",
				Description: p.Sprintf("tool.add_todo.arg.title"),
				MinLength:   &minLen,
			},
			"description": {
				Type:        "string",
				Description: p.Sprintf("tool.add_todo.arg.description"),
			},
		},
		Required: []string{"title"},
	}
}

func listTodosSchema(p *message.Printer) *jsonschema.Schema {
	filters := task.Filters()
	enum := make([]any, len(filters))
	for i, f := range filters {
		enum[i] = string(f)
	}
	def, _ := json.Marshal(string(task.FilterAll))

	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"filter": {
				Type:        "string",
				Description: p.Sprintf("tool.list_todos.arg.filter"),
				Enum:        enum,
				Default:     def,
			},
		},
	}
}

func idSchema(p *message.Printer) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id": {
				Type:        "string",
				Description: p.Sprintf("tool.arg.id"),
			},
		},
		Required: []string{"id"},
	}
}

// Tools returns the tool descriptors in declaration order
func (r *Registry) Tools() []*sdk.Tool {
	out := make([]*sdk.Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Tool looks up a tool by name
func (r *Registry) Tool(name string) (*sdk.Tool, bool) {
	t, ok := r.toolIndex[name]
	return t, ok
}

// ToolNames returns the registered tool names, sorted
func (r *Registry) ToolNames() []string {
	names := make([]string, 0, len(r.toolIndex))
	for name := range r.toolIndex {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resources returns the resource descriptors
func (r *Registry) Resources() []*sdk.Resource {
	out := make([]*sdk.Resource, len(r.resources))
	copy(out, r.resources)
	return out
}

// Resource looks up a resource by URI
func (r *Registry) Resource(uri string) (*sdk.Resource, bool) {
	for _, res := range r.resources {
		if res.URI == uri {
			return res, true
		}
	}
	return nil, false
}

// Validate checks decoded arguments against the tool's input schema
func (r *Registry) Validate(name string, args map[string]any) error {
	resolved, ok := r.schemas[name]
	if !ok {
		return fmt.Errorf("no schema for tool %s", name)
	}
	return resolved.Validate(args)
}
