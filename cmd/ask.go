package cmd

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/sqlask/internal/pipeline"
)

var showSQL bool

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Answer one question against the database",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return cmd.Help()
		}

		ctx := cmd.Context()
		a, err := openApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Thinking...")
		answer := a.pipeline.Ask(ctx, question)
		if spinner != nil {
			_ = spinner.Stop()
		}

		printAnswer(answer)
		return nil
	},
}

func printAnswer(a pipeline.Answer) {
	if showSQL && a.SQL != "" {
		pterm.DefaultSection.WithLevel(2).Println("SQL")
		pterm.Println(a.SQL)
		pterm.Println()
	}
	switch a.Outcome {
	case pipeline.OutcomeRejected:
		pterm.Warning.Println(a.Text)
	case pipeline.OutcomeFailed:
		pterm.Error.Println(a.Text)
	default:
		pterm.Println(a.Text)
	}
}

func init() {
	askCmd.Flags().BoolVar(&showSQL, "show-sql", false, "print the generated SQL before the answer")
	rootCmd.AddCommand(askCmd)
}
