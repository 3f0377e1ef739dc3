package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/n0roo/todo-mcp/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	var sf storeFlags

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive task console",
		Long:  `Run a terminal task console backed by an in-process store.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			sf.apply(cmd, cfg)

			// 화면과 섞이지 않도록 로그는 버린다
			a, err := newApp(cfg, io.Discard)
			if err != nil {
				return err
			}
			defer a.Close()

			return tui.Run(a.dispatcher)
		},
	}
	sf.register(cmd)
	return cmd
}
