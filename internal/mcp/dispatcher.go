package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/text/message"

	"github.com/n0roo/todo-mcp/internal/task"
)

// Dispatcher executes tool calls and resource reads against a task store.
// It keeps no state between calls apart from the store it wraps.
type Dispatcher struct {
	store    task.Store
	registry *Registry
	printer  *message.Printer
	logger   *slog.Logger
	handlers map[string]toolHandler
}

type toolHandler func(ctx context.Context, args json.RawMessage) (outcome, error)

// outcome is the typed result of a tool handler, rendered to text only
// when the response is built.
type outcome interface {
	render(p *message.Printer) string
}

type addOutcome struct {
	task task.Task
}

func (o addOutcome) render(p *message.Printer) string {
	return p.Sprintf("result.added", o.task.Title, o.task.ID)
}

type listOutcome struct {
	filter task.Filter
	tasks  []task.Task
}

func (o listOutcome) render(p *message.Printer) string {
	var b strings.Builder
	b.WriteString(p.Sprintf("result.list_header", string(o.filter)))
	b.WriteString("\n\n")
	if len(o.tasks) == 0 {
		b.WriteString(p.Sprintf("result.empty"))
		return b.String()
	}
	for i, t := range o.tasks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(formatEntry(t))
	}
	return b.String()
}

// formatEntry renders one task line: status glyph, id, title and an
// optional description line.
func formatEntry(t task.Task) string {
	glyph := "⏳"
	if t.Completed {
		glyph = "✅"
	}
	entry := fmt.Sprintf("%s [%s] %s", glyph, t.ID, t.Title)
	if t.Description != "" {
		entry += "\n   📝 " + t.Description
	}
	return entry
}

type completeOutcome struct {
	task task.Task
}

func (o completeOutcome) render(p *message.Printer) string {
	return p.Sprintf("result.completed", o.task.Title)
}

type deleteOutcome struct {
	task task.Task
}

func (o deleteOutcome) render(p *message.Printer) string {
	return p.Sprintf("result.deleted", o.task.Title)
}

// NewDispatcher wires the store and registry. A nil logger discards output.
func NewDispatcher(store task.Store, registry *Registry, printer *message.Printer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &Dispatcher{
		store:    store,
		registry: registry,
		printer:  printer,
		logger:   logger,
	}
	d.handlers = map[string]toolHandler{
		ToolAddTodo:      d.addTodo,
		ToolListTodos:    d.listTodos,
		ToolCompleteTodo: d.completeTodo,
		ToolDeleteTodo:   d.deleteTodo,
	}
	return d
}

// ListTools returns every tool descriptor
func (d *Dispatcher) ListTools() *sdk.ListToolsResult {
	return &sdk.ListToolsResult{Tools: d.registry.Tools()}
}

// ListResources returns every resource descriptor
func (d *Dispatcher) ListResources() *sdk.ListResourcesResult {
	return &sdk.ListResourcesResult{Resources: d.registry.Resources()}
}

// CallTool runs the named tool. Unknown tools are a *ProtocolError; every
// other failure comes back as a normal result whose text starts with "Error: ".
func (d *Dispatcher) CallTool(ctx context.Context, name string, arguments json.RawMessage) (*sdk.CallToolResult, error) {
	handler, ok := d.handlers[name]
	if _, known := d.registry.Tool(name); !ok || !known {
		return nil, &ProtocolError{
			Code:    CodeMethodNotFound,
			Message: fmt.Sprintf("Unknown tool: %s", name),
		}
	}

	d.logger.Info("tool_call", slog.String("tool", name), slog.String("args", string(arguments)))

	args, err := d.decodeArguments(name, arguments)
	var out outcome
	if err == nil {
		out, err = handler(ctx, args)
	}
	if err != nil {
		d.logger.Info("tool_error", slog.String("tool", name), slog.Any("error", err))
		return textResult("Error: " + d.errorMessage(err)), nil
	}
	return textResult(out.render(d.printer)), nil
}

// decodeArguments normalizes absent or null arguments to an empty object and
// validates them against the tool schema.
func (d *Dispatcher) decodeArguments(name string, raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	var args map[string]any
	if err := json.Unmarshal(trimmed, &args); err != nil {
		return nil, &ArgumentError{Tool: name, Err: err}
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := d.registry.Validate(name, args); err != nil {
		return nil, &ArgumentError{Tool: name, Err: err}
	}
	return trimmed, nil
}

func (d *Dispatcher) errorMessage(err error) string {
	var notFound *task.NotFoundError
	var argErr *ArgumentError
	switch {
	case errors.As(err, &notFound):
		return d.printer.Sprintf("error.not_found", notFound.ID)
	case errors.As(err, &argErr):
		return d.printer.Sprintf("error.invalid_arguments", argErr.Tool, argErr.Err.Error())
	default:
		return err.Error()
	}
}

// ReadResource returns the contents of a known resource. Unknown URIs are a
// *ProtocolError.
func (d *Dispatcher) ReadResource(_ context.Context, uri string) (*sdk.ReadResourceResult, error) {
	res, ok := d.registry.Resource(uri)
	if !ok {
		return nil, &ProtocolError{
			Code:    CodeInvalidRequest,
			Message: fmt.Sprintf("Unknown resource: %s", uri),
		}
	}

	tasks, err := d.store.List(task.FilterAll)
	if err != nil {
		return nil, &ProtocolError{
			Code:    CodeInternalError,
			Message: fmt.Sprintf("read %s: %v", uri, err),
		}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, &ProtocolError{
			Code:    CodeInternalError,
			Message: fmt.Sprintf("marshal %s: %v", uri, err),
		}
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      res.URI,
				MIMEType: res.MIMEType,
				Text:     string(data),
			},
		},
	}, nil
}

func textResult(text string) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: text}},
	}
}

// Tool handlers

type addTodoArgs struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (d *Dispatcher) addTodo(_ context.Context, raw json.RawMessage) (outcome, error) {
	var args addTodoArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, &ArgumentError{Tool: ToolAddTodo, Err: err}
	}
	t, err := d.store.Create(args.Title, args.Description)
	if err != nil {
		return nil, err
	}
	return addOutcome{task: t}, nil
}

type listTodosArgs struct {
	Filter string `json:"filter"`
}

func (d *Dispatcher) listTodos(_ context.Context, raw json.RawMessage) (outcome, error) {
	var args listTodosArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, &ArgumentError{Tool: ToolListTodos, Err: err}
	}
	filter, err := task.ParseFilter(args.Filter)
	if err != nil {
		return nil, &ArgumentError{Tool: ToolListTodos, Err: err}
	}
	tasks, err := d.store.List(filter)
	if err != nil {
		return nil, err
	}
	return listOutcome{filter: filter, tasks: tasks}, nil
}

type idArgs struct {
	ID string `json:"id"`
}

func (d *Dispatcher) completeTodo(_ context.Context, raw json.RawMessage) (outcome, error) {
	var args idArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, &ArgumentError{Tool: ToolCompleteTodo, Err: err}
	}
	t, err := d.store.Complete(args.ID)
	if err != nil {
		return nil, err
	}
	return completeOutcome{task: t}, nil
}

func (d *Dispatcher) deleteTodo(_ context.Context, raw json.RawMessage) (outcome, error) {
	var args idArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, &ArgumentError{Tool: ToolDeleteTodo, Err: err}
	}
	t, err := d.store.Delete(args.ID)
	if err != nil {
		return nil, err
	}
	return deleteOutcome{task: t}, nil
}
