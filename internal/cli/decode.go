package cli

import (
	"bufio"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ib-trader/internal/broker"
	"ib-trader/internal/decoder"
	"ib-trader/internal/store"
)

func newDecodeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <capture>",
		Short: "Replay a captured session through the decoder",
		Long: `Replay a capture file written with [capture] enabled. Every decoded callback
is printed, one line each; --json prints JSON lines. With --record the
executions and commission reports of the capture are written to the database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var w zerolog.Logger
			if output.IsJSON() {
				w = zerolog.New(cmd.OutOrStdout())
			} else {
				w = zerolog.New(zerolog.ConsoleWriter{
					Out:        cmd.OutOrStdout(),
					NoColor:    !output.colorEnabled,
					TimeFormat: time.TimeOnly,
					PartsExclude: []string{
						zerolog.TimestampFieldName,
					},
				})
			}
			w = w.Level(zerolog.DebugLevel)

			var wrapper decoder.Wrapper = broker.NewLoggingWrapper(w)
			if record, _ := cmd.Flags().GetBool("record"); record {
				st, err := app.openStore()
				if err != nil {
					return err
				}
				defer st.Close()
				wrapper = store.NewRecorder(st, wrapper, app.Logger)
			}

			n, err := broker.Replay(bufio.NewReader(f), wrapper, app.Logger)
			if err != nil {
				return err
			}
			if !output.IsJSON() {
				output.Dim("%d messages decoded", n)
			}
			return nil
		},
	}
	cmd.Flags().Bool("record", false, "store decoded executions and commission reports")
	return cmd
}
