package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the schema description given to the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		text, err := a.schema.SchemaText(ctx)
		if err != nil {
			return err
		}
		pterm.Println(text)
		pterm.Info.Printfln("%d tables", a.schema.TableCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
