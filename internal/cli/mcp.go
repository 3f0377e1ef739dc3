package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/n0roo/todo-mcp/internal/mcp"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	var sf storeFlags

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Long: `Serve the Model Context Protocol over stdin/stdout until stdin closes.

Logs go to stderr; stdout carries only protocol messages.

Claude Desktop (claude_desktop_config.json):
{
  "mcpServers": {
    "todo": {
      "command": "todo",
      "args": ["mcp"]
    }
  }
}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			sf.apply(cmd, cfg)

			a, err := newApp(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			info := &sdk.Implementation{Name: cfg.Server.Name, Version: cfg.Server.Version}
			server := mcp.NewServer(info, a.dispatcher, cmd.InOrStdin(), cmd.OutOrStdout(), a.logger)
			if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
	sf.register(cmd)

	cmd.AddCommand(newMCPConfigCmd(opts))
	return cmd
}

type mcpServerEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

type mcpClientConfig struct {
	MCPServers map[string]mcpServerEntry `json:"mcpServers"`
}

func newMCPConfigCmd(opts *rootOptions) *cobra.Command {
	var sf storeFlags

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print an MCP client configuration",
		Long:  "Print the mcpServers entry an MCP client needs to launch this server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := os.Executable()
			if err != nil {
				bin = "todo"
			}

			serverArgs := []string{"mcp"}
			if opts.configPath != "" {
				serverArgs = append(serverArgs, "--config="+opts.configPath)
			}
			serverArgs = append(serverArgs, sf.args(cmd)...)

			snippet := mcpClientConfig{
				MCPServers: map[string]mcpServerEntry{
					"todo": {Command: bin, Args: serverArgs},
				},
			}
			data, err := json.MarshalIndent(snippet, "", "  ")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintln(out, "Claude Desktop (claude_desktop_config.json):")
			fmt.Fprintln(out)
			fmt.Fprintln(out, string(data))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Config file location:")
			fmt.Fprintln(out, "  macOS: ~/Library/Application Support/Claude/claude_desktop_config.json")
			fmt.Fprintln(out, "  Windows: %APPDATA%\\Claude\\claude_desktop_config.json")
			fmt.Fprintln(out, "  Linux: ~/.config/Claude/claude_desktop_config.json")
			return nil
		},
	}
	sf.register(cmd)
	return cmd
}
