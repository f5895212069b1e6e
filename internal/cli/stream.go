package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ib-trader/internal/broker"
	"ib-trader/internal/errors"
	"ib-trader/internal/models"
	"ib-trader/internal/stream"
	"ib-trader/pkg/utils"
)

// Stream modes and the request each one sends.
const (
	modeMarket   = "mkt"
	modeBars     = "bars"
	modeLast     = "last"
	modeAllLast  = "alllast"
	modeBidAsk   = "bidask"
	modeMidPoint = "midpoint"
)

func newStreamCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream <symbol>",
		Short: "Stream market data to the terminal and websocket clients",
		Long: `Stream market data for one contract. Modes:

  mkt       top of book ticks (REQ_MKT_DATA)
  bars      5 second real-time bars
  last      tick-by-tick last trades
  alllast   tick-by-tick trades including odd lots
  bidask    tick-by-tick bid/ask
  midpoint  tick-by-tick midpoint

With --addr the events are also served on ws://<addr>/ws?req=<id>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			mode, _ := cmd.Flags().GetString("mode")
			addr, _ := cmd.Flags().GetString("addr")
			limit, _ := cmd.Flags().GetInt("limit")
			contract := contractFromFlags(cmd, args[0])

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hub := stream.NewHub(app.Logger)
			hub.Start(ctx)
			defer hub.Stop()
			events := hub.Subscribe(stream.AllRequests)

			downstream := stream.NewTickWrapper(hub, broker.NewLoggingWrapper(app.Logger))
			sess, err := app.connect(ctx, downstream)
			if err != nil {
				return err
			}
			defer sess.Close()

			if app.Config.API.MarketDataType != 1 {
				if err := sess.client().ReqMarketDataType(ctx, app.Config.API.MarketDataType); err != nil {
					return err
				}
			}

			reqID := sess.client().NextReqID()
			cancelReq, err := startStream(ctx, sess.client(), reqID, contract, mode)
			if err != nil {
				return err
			}
			defer cancelReq()

			if addr != "" {
				srv := serveWS(addr, stream.NewWSBridge(hub, app.Logger), app)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					srv.Shutdown(shutdownCtx)
				}()
				output.Info("Serving ws://%s/ws?req=%d", addr, reqID)
			}

			if !output.IsJSON() {
				output.Dim("Streaming %s %s (req %d), Ctrl-C to stop", contract.Symbol, mode, reqID)
			}

			seen := 0
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					printEvent(output, ev)
					seen++
					if limit > 0 && seen >= limit {
						return nil
					}
				}
			}
		},
	}
	contractFlags(cmd)
	cmd.Flags().String("mode", modeMarket, "mkt, bars, last, alllast, bidask or midpoint")
	cmd.Flags().String("addr", "", "serve events over websocket on this address (e.g. 127.0.0.1:8765)")
	cmd.Flags().Int("limit", 0, "stop after this many events")
	return cmd
}

// startStream sends the subscription for mode and returns its cancel.
func startStream(ctx context.Context, c *broker.Client, reqID int64, contract *models.Contract, mode string) (func(), error) {
	bg := context.WithoutCancel(ctx)
	switch strings.ToLower(mode) {
	case modeMarket:
		if err := c.ReqMktData(ctx, reqID, contract, "", false, false); err != nil {
			return nil, err
		}
		return func() { c.CancelMktData(bg, reqID) }, nil
	case modeBars:
		if err := c.ReqRealTimeBars(ctx, reqID, contract, 5, "TRADES", false); err != nil {
			return nil, err
		}
		return func() { c.CancelRealTimeBars(bg, reqID) }, nil
	case modeLast, modeAllLast, modeBidAsk, modeMidPoint:
		tickType := map[string]string{
			modeLast:     "Last",
			modeAllLast:  "AllLast",
			modeBidAsk:   "BidAsk",
			modeMidPoint: "MidPoint",
		}[strings.ToLower(mode)]
		if err := c.ReqTickByTickData(ctx, reqID, contract, tickType, 0, false); err != nil {
			return nil, err
		}
		return func() { c.CancelTickByTickData(bg, reqID) }, nil
	}
	return nil, errors.NewValidationError("mode", mode, "unknown stream mode")
}

func serveWS(addr string, bridge *stream.WSBridge, app *App) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", bridge)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Error().Err(err).Str("addr", addr).Msg("Websocket server failed")
		}
	}()
	return srv
}

// formatEvent renders one event as a terminal line without the kind label.
func formatEvent(ev models.TickEvent) string {
	ts := ev.Timestamp.Format("15:04:05.000")
	switch ev.Kind {
	case models.TickKindPrice:
		return fmt.Sprintf("%s req=%d %s %s", ts, ev.ReqID, ev.TickType, utils.FormatPrice(ev.Price))
	case models.TickKindSize:
		return fmt.Sprintf("%s req=%d %s %s", ts, ev.ReqID, ev.TickType, utils.FormatQuantity(ev.Size))
	case models.TickKindBidAsk:
		return fmt.Sprintf("%s req=%d %s x %s  %s / %s", ts, ev.ReqID,
			utils.FormatQuantity(ev.BidSize), utils.FormatPrice(ev.BidPrice),
			utils.FormatPrice(ev.AskPrice), utils.FormatQuantity(ev.AskSize))
	case models.TickKindRealTime:
		if ev.Bar != nil {
			return fmt.Sprintf("%s req=%d O %s H %s L %s C %s V %s", ts, ev.ReqID,
				utils.FormatPrice(ev.Bar.Open), utils.FormatPrice(ev.Bar.High),
				utils.FormatPrice(ev.Bar.Low), utils.FormatPrice(ev.Bar.Close),
				utils.FormatQuantity(ev.Bar.Volume))
		}
	}
	s := fmt.Sprintf("%s req=%d %s", ts, ev.ReqID, utils.FormatPrice(ev.Price))
	if !models.IsUnsetDecimal(ev.Size) {
		s += " x " + utils.FormatQuantity(ev.Size)
	}
	return s
}

func printEvent(output *Output, ev models.TickEvent) {
	if output.IsJSON() {
		output.JSONLine(stream.NewWSEvent(ev))
		return
	}
	output.Printf("%s %s\n", output.Kind(ev.Kind), formatEvent(ev))
}
