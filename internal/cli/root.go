package cli

import (
	"github.com/spf13/cobra"

	"github.com/n0roo/todo-mcp/internal/config"
)

type rootOptions struct {
	configPath string
	verbose    bool
	jsonOut    bool
}

// NewRootCmd builds the todo command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Todo list MCP server",
		Long: `todo - a task list exposed over the Model Context Protocol

An MCP client (Claude Desktop, an IDE agent, ...) launches "todo mcp" and
talks JSON-RPC over stdin/stdout to add, list, complete and delete tasks.
Tasks live in memory for the lifetime of the process.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ~/.todo-mcp/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "JSON output")

	cmd.AddCommand(
		newMCPCmd(opts),
		newToolsCmd(opts),
		newConfigCmd(opts),
		newTUICmd(opts),
		newVersionCmd(opts),
	)

	return cmd
}

// Execute runs the command tree
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads the config file and environment; --verbose forces debug logs.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// storeFlags are the per-command overrides shared by mcp, tools and tui
type storeFlags struct {
	lang     string
	backend  string
	idPolicy string
	seed     bool
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.lang, "lang", "", "display language (en, th)")
	cmd.Flags().StringVar(&f.backend, "store", "", "store backend (memory, sqlite, duckdb)")
	cmd.Flags().StringVar(&f.idPolicy, "id-policy", "", "task id policy (sequence, length, uuid)")
	cmd.Flags().BoolVar(&f.seed, "seed", false, "start with demo tasks")
}

// apply overrides cfg with the flags set on cmd
func (f *storeFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("lang") {
		cfg.Language = f.lang
	}
	if flags.Changed("store") {
		cfg.Store.Backend = f.backend
	}
	if flags.Changed("id-policy") {
		cfg.Store.IDPolicy = f.idPolicy
	}
	if flags.Changed("seed") {
		cfg.Store.Seed = f.seed
	}
}

// args returns the changed flags as command-line arguments
func (f *storeFlags) args(cmd *cobra.Command) []string {
	var out []string
	flags := cmd.Flags()
	for _, name := range []string{"lang", "store", "id-policy", "seed"} {
		if !flags.Changed(name) {
			continue
		}
		out = append(out, "--"+name+"="+flags.Lookup(name).Value.String())
	}
	return out
}
