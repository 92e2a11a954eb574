package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"extractd/internal/generate"
	"extractd/internal/registry"
)

func newModelsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List *.gguf models found in the models directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := o.load(cmd)
			if err != nil {
				return err
			}
			models, err := registry.LoadDir(cfg.ModelsDir)
			if err != nil {
				return fmt.Errorf("load models: %w", err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSIZE\tPATH")
			for _, m := range models {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID, humanBytes(m.SizeBytes), m.Path)
			}
			return tw.Flush()
		},
	}
}

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List built-in generation profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMODEL\tMAX_TOKENS\tTEMPERATURE\tDETERMINISTIC\tMARKER")
			for _, name := range generate.ProfileNames() {
				p, _ := generate.LookupProfile(name)
				model := p.Model
				if model == "" {
					model = "-"
				}
				marker := p.ResponseMarker
				if marker == "" {
					marker = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%g\t%t\t%s\n", p.Name, model,
					p.Options.MaxNewTokens, p.Options.Temperature, p.Options.Deterministic, marker)
			}
			return tw.Flush()
		},
	}
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
