package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	nameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

type catalogOutput struct {
	Tools     []*sdk.Tool     `json:"tools"`
	Resources []*sdk.Resource `json:"resources"`
}

// schemaSummary is the part of a tool input schema printed by "todo tools"
type schemaSummary struct {
	Properties map[string]struct {
		Type        string `json:"type"`
		Description string `json:"description"`
		Enum        []any  `json:"enum"`
	} `json:"properties"`
	Required []string `json:"required"`
}

func newToolsCmd(opts *rootOptions) *cobra.Command {
	var sf storeFlags

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool and resource catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			sf.apply(cmd, cfg)

			_, registry, err := newCatalog(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(catalogOutput{
					Tools:     registry.Tools(),
					Resources: registry.Resources(),
				})
			}

			fmt.Fprintln(out, headingStyle.Render("Tools"))
			for _, tool := range registry.Tools() {
				fmt.Fprintf(out, "  %s  %s\n", nameStyle.Render(tool.Name), tool.Description)
				for _, line := range describeArgs(tool) {
					fmt.Fprintf(out, "      %s\n", line)
				}
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, headingStyle.Render("Resources"))
			for _, res := range registry.Resources() {
				fmt.Fprintf(out, "  %s  %s %s\n", nameStyle.Render(res.URI), res.Description, mutedStyle.Render("("+res.MIMEType+")"))
			}
			return nil
		},
	}
	sf.register(cmd)
	return cmd
}

// describeArgs renders one line per input property, required ones marked with *
func describeArgs(tool *sdk.Tool) []string {
	data, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return nil
	}
	var schema schemaSummary
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		prop := schema.Properties[name]
		label := name
		if required[name] {
			label += "*"
		}
		line := fmt.Sprintf("%s %s  %s", label, mutedStyle.Render(prop.Type), prop.Description)
		if len(prop.Enum) > 0 {
			values := make([]string, len(prop.Enum))
			for i, v := range prop.Enum {
				values[i] = fmt.Sprint(v)
			}
			line += mutedStyle.Render(" [" + strings.Join(values, "|") + "]")
		}
		lines = append(lines, line)
	}
	return lines
}
