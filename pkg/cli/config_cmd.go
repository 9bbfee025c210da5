package cli

import (
	"fmt"
	"sort"

	"github.com/getmockd/htmlgen/pkg/cli/internal/output"
	"github.com/getmockd/htmlgen/pkg/cliconfig"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ConfigOutput is the JSON form of the config command.
type ConfigOutput struct {
	Config  *cliconfig.CLIConfig `json:"config"`
	Sources map[string]string    `json:"sources"`
	Files   []string             `json:"searchPaths"`
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long: `Show the effective configuration after merging defaults, config files,
environment variables and flags, and where each value came from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, nil)
			if err != nil {
				return err
			}

			paths := cliconfig.GetGlobalConfigSearchPaths()
			paths = append(paths, cliconfig.LocalConfigFileNames...)

			if opts.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), ConfigOutput{Config: cfg, Sources: cfg.Sources, Files: paths})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "# Resolved htmlgen configuration")
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			if _, err := w.Write(data); err != nil {
				return err
			}

			keys := make([]string, 0, len(cfg.Sources))
			for k := range cfg.Sources {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			fmt.Fprintln(w)
			tw := output.Table(w)
			fmt.Fprintln(tw, "KEY\tSOURCE")
			for _, k := range keys {
				fmt.Fprintf(tw, "%s\t%s\n", k, cfg.Sources[k])
			}
			return tw.Flush()
		},
	}
}
