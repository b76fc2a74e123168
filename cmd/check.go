package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/sqlask/internal/llm"
	"github.com/JonMunkholm/sqlask/internal/sqlguard"
)

var checkCmd = &cobra.Command{
	Use:   "check [sql...]",
	Short: "Extract and validate SQL without touching the database",
	Long: `check runs model output through the same extraction and safety rules as ask.
With no arguments the text is read from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := strings.Join(args, " ")
		if len(args) == 0 {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			raw = string(b)
		}
		return runCheck(cmd.OutOrStdout(), raw)
	},
}

func runCheck(w io.Writer, raw string) error {
	stmt, verdict, err := sqlguard.Check(llm.StripCodeFence(raw))
	if err != nil {
		fmt.Fprintf(w, "rejected: %s\n", verdict)
		return nil
	}
	fmt.Fprintln(w, stmt)
	if verdict.Safe {
		fmt.Fprintln(w, "safe")
		return nil
	}
	fmt.Fprintf(w, "rejected: %s\n", verdict)
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
