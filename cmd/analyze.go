package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/earnings-cli/internal/analysis"
	"github.com/KaramelBytes/earnings-cli/internal/assistant"
	"github.com/KaramelBytes/earnings-cli/internal/utils"
)

var anaOutputPath string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <action>",
	Short: "Run one aggregation locally and print its result (no LLM call)",
	Example: `  earnings analyze by_region
  earnings analyze salary_vs_rating --output rating.md`,
	Args: cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var names []string
		for _, spec := range assistant.Actions() {
			names = append(names, string(spec.Name))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		spec, ok := assistant.Lookup(assistant.ParseAction(args[0]))
		if !ok {
			return fmt.Errorf("unknown action %q (see 'earnings actions')", args[0])
		}
		table, err := loadTable(c)
		if err != nil {
			return err
		}
		result, err := spec.Analyzer(table)
		if err != nil {
			return fmt.Errorf("%s: %w", spec.Name, err)
		}
		out := renderResult(result)
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(out)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%s) to %s\n", spec.Name, analysis.Describe(result), anaOutputPath)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s: %s (%s)\n\n", spec.Name, spec.Description, analysis.Describe(result))
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

// renderResult uses the aligned table renderer when possible.
func renderResult(r analysis.Result) string {
	var s string
	if t, ok := r.(*analysis.Table); ok {
		s = analysis.RenderTable(t)
	} else {
		s = r.String()
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the rendered result to a file")
}
