package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/n0roo/todo-mcp/internal/config"
)

// Build information, set with -ldflags "-X".
var (
	Version = "0.1.0"
	Commit  = "unknown"
	Date    = "unknown"
)

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]interface{}{
				"version": Version,
				"commit":  Commit,
				"date":    Date,
				"go":      runtime.Version(),
				"os":      runtime.GOOS,
				"arch":    runtime.GOARCH,
				"config":  config.DefaultPath(),
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return json.NewEncoder(out).Encode(info)
			}

			fmt.Fprintf(out, "todo %s\n", Version)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Commit:    %s\n", Commit)
			fmt.Fprintf(out, "  Built:     %s\n", Date)
			fmt.Fprintf(out, "  Go:        %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(out, "  Config:    %s\n", config.DefaultPath())
			return nil
		},
	}
}
