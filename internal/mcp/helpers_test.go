package mcp

import (
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/n0roo/todo-mcp/internal/i18n"
	"github.com/n0roo/todo-mcp/internal/task"
)

func testPrinter(t *testing.T, tag language.Tag) *message.Printer {
	t.Helper()
	bundle, err := i18n.Load()
	if err != nil {
		t.Fatalf("failed to load catalogs: %v", err)
	}
	return bundle.Printer(tag)
}

func newTestDispatcher(t *testing.T, tag language.Tag, opts ...task.Option) (*Dispatcher, task.Store) {
	t.Helper()
	p := testPrinter(t, tag)
	registry, err := NewRegistry(p)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	store := task.NewMemoryStore(opts...)
	t.Cleanup(func() { store.Close() })
	return NewDispatcher(store, registry, p, nil), store
}

func resultText(t *testing.T, res *sdk.CallToolResult) string {
	t.Helper()
	if res == nil {
		t.Fatal("nil result")
	}
	if len(res.Content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(*sdk.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}
