package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/sqlask/internal/pipeline"
	"github.com/JonMunkholm/sqlask/internal/server"
)

var (
	serveAddr   string
	enableQuery bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question pipeline over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := a.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		var exec pipeline.Executor
		if enableQuery {
			exec = a.exec
		}
		// Two model calls and one query per question.
		askTimeout := 2*a.cfg.LLM.Timeout + a.cfg.Database.QueryTimeout
		srv := server.New(a.pipeline, a.schema, exec, askTimeout, a.log.Named("server"))

		pterm.Info.Printfln("Listening on %s", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&enableQuery, "enable-query", false, "expose POST /query for hand-written SELECT statements")
	rootCmd.AddCommand(serveCmd)
}
