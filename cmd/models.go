package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/earnings-cli/internal/ai"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show known models with context size and illustrative pricing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tablewriter.NewWriter(cmd.OutOrStdout())
		w.SetHeader([]string{"model", "context", "input $/1K", "output $/1K"})
		w.SetAutoFormatHeaders(false)
		w.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		w.SetCenterSeparator("|")
		for _, mi := range ai.Catalog() {
			w.Append([]string{
				mi.Name,
				fmt.Sprintf("%d", mi.ContextTokens),
				fmt.Sprintf("%.5f", mi.InputPerK),
				fmt.Sprintf("%.5f", mi.OutputPerK),
			})
		}
		w.Render()
		if cfg != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "\nconfigured: %s via %s\n", cfg.Model, cfg.Provider)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
