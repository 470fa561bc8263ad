package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/earnings-cli/internal/assistant"
)

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Answer a single question and exit",
	Example: `  earnings ask "Which payment method earns the most?"
  earnings ask --data ./data/freelancer_earnings.csv how do ratings affect earnings`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		question := assistant.CleanInput(strings.Join(args, " "))
		if question == "" {
			return errors.New("question is empty")
		}
		table, err := loadTable(c)
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(cmd.OutOrStdout(), "Data file not found: %s\n", c.DataPath)
			return nil
		}
		if err != nil {
			return err
		}
		log := newLogger(c)
		chat, err := newChat(c, log)
		if err != nil {
			return err
		}
		sess := assistant.NewSession(chat, table, assistant.SessionOptions{SampleRows: c.SampleRows, Log: log})
		answer, err := sess.Answer(cmd.Context(), question)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
