package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"ib-trader/internal/broker"
	"ib-trader/internal/errors"
	"ib-trader/internal/models"
	"ib-trader/internal/store"
	"ib-trader/pkg/utils"
)

const defaultSummaryTags = "NetLiquidation,TotalCashValue,BuyingPower,AvailableFunds,GrossPositionValue,UnrealizedPnL,RealizedPnL"

func addSessionCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newConnectCmd(app))
	rootCmd.AddCommand(newTimeCmd(app))
	rootCmd.AddCommand(newContractCmd(app))
	rootCmd.AddCommand(newQuoteCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newPositionsCmd(app))
	rootCmd.AddCommand(newSummaryCmd(app))
	rootCmd.AddCommand(newOrdersCmd(app))
	rootCmd.AddCommand(newExecutionsCmd(app))
}

// contractFlags adds the flags that describe a contract besides its symbol.
func contractFlags(cmd *cobra.Command) {
	cmd.Flags().String("sec-type", "STK", "security type (STK, FUT, OPT, CASH, IND ...)")
	cmd.Flags().String("exchange", "SMART", "exchange")
	cmd.Flags().String("primary-exchange", "", "primary exchange, to disambiguate SMART routed stocks")
	cmd.Flags().String("currency", "USD", "currency")
	cmd.Flags().String("expiry", "", "last trade date or contract month (YYYYMM[DD])")
	cmd.Flags().Int64("con-id", 0, "contract id")
}

func contractFromFlags(cmd *cobra.Command, symbol string) *models.Contract {
	c := &models.Contract{Symbol: strings.ToUpper(symbol)}
	c.SecType, _ = cmd.Flags().GetString("sec-type")
	c.Exchange, _ = cmd.Flags().GetString("exchange")
	c.PrimaryExchange, _ = cmd.Flags().GetString("primary-exchange")
	c.Currency, _ = cmd.Flags().GetString("currency")
	c.LastTradeDateOrContractMonth, _ = cmd.Flags().GetString("expiry")
	c.ConID, _ = cmd.Flags().GetInt64("con-id")
	c.SecType = strings.ToUpper(c.SecType)
	return c
}

func newConnectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect, print session details and disconnect",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			sess, err := app.connect(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			accounts, err := sess.sync.ManagedAccounts(ctx)
			if err != nil {
				return err
			}
			nextID, err := sess.sync.NextValidID(ctx)
			if err != nil {
				return err
			}

			info := map[string]interface{}{
				"host":            app.Config.Connection.Host,
				"port":            app.Config.Connection.Port,
				"client_id":       app.Config.Connection.ClientID,
				"server_version":  sess.client().ServerVersion(),
				"connection_time": sess.client().ConnectionTime(),
				"accounts":        strings.Split(strings.Trim(accounts, ","), ","),
				"next_order_id":   nextID,
			}
			if output.IsJSON() {
				return output.JSON(info)
			}

			output.Success("Connected to %s:%d", app.Config.Connection.Host, app.Config.Connection.Port)
			output.Printf("  Server version:  %d\n", sess.client().ServerVersion())
			output.Printf("  Connection time: %s\n", sess.client().ConnectionTime())
			output.Printf("  Accounts:        %s\n", strings.Trim(accounts, ","))
			output.Printf("  Next order id:   %d\n", nextID)
			return nil
		},
	}
}

func newTimeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Print the server clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			sess, err := app.connect(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			millis, _ := cmd.Flags().GetBool("millis")
			t, err := sess.sync.CurrentTime(ctx)
			if millis {
				t, err = sess.sync.CurrentTimeInMillis(ctx)
			}
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"time": t, "unix_ms": t.UnixMilli()})
			}
			output.Println(t.Format("2006-01-02 15:04:05.000 MST"))
			return nil
		},
	}
	cmd.Flags().Bool("millis", false, "request millisecond precision (server version 197+)")
	return cmd
}

func newContractCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract <symbol>",
		Short: "Look up contract details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			sess, err := app.connect(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			details, err := sess.sync.ContractDetails(ctx, contractFromFlags(cmd, args[0]))
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(details)
			}
			if len(details) == 0 {
				output.Warning("No contracts found for %s", args[0])
				return nil
			}

			table := NewTable(output, "CON ID", "SYMBOL", "TYPE", "EXPIRY", "EXCHANGE", "PRIMARY", "CCY", "MIN TICK", "NAME")
			for _, d := range details {
				c := d.Contract
				table.AddRow(
					fmt.Sprintf("%d", c.ConID),
					c.Symbol,
					c.SecType,
					c.LastTradeDateOrContractMonth,
					c.Exchange,
					c.PrimaryExchange,
					c.Currency,
					utils.FormatPrice(d.MinTick),
					utils.TruncateString(d.LongName, 32),
				)
			}
			table.Render()
			return nil
		},
	}
	contractFlags(cmd)
	return cmd
}

func newQuoteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote <symbol>",
		Short: "Take a market data snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			sess, err := app.connect(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			if app.Config.API.MarketDataType != 1 {
				if err := sess.client().ReqMarketDataType(ctx, app.Config.API.MarketDataType); err != nil {
					return err
				}
			}
			snap, err := sess.sync.Snapshot(ctx, contractFromFlags(cmd, args[0]))
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(snapshotJSON(snap))
			}
			table := NewTable(output, "TICK", "VALUE")
			for _, row := range snapshotRows(snap) {
				table.AddRow(row[0], row[1])
			}
			table.Render()
			return nil
		},
	}
	contractFlags(cmd)
	return cmd
}

// snapshotRows flattens a snapshot into sorted name/value rows.
func snapshotRows(snap broker.Snapshot) [][2]string {
	var rows [][2]string
	for tt, v := range snap.Prices {
		rows = append(rows, [2]string{tt.String(), utils.FormatPrice(v)})
	}
	for tt, v := range snap.Sizes {
		rows = append(rows, [2]string{tt.String(), utils.FormatQuantity(v)})
	}
	for tt, v := range snap.Generics {
		rows = append(rows, [2]string{tt.String(), fmt.Sprintf("%g", v)})
	}
	for tt, v := range snap.Strings {
		rows = append(rows, [2]string{tt.String(), v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	return rows
}

func snapshotJSON(snap broker.Snapshot) map[string]string {
	out := make(map[string]string)
	for _, row := range snapshotRows(snap) {
		out[row[0]] = row[1]
	}
	return out
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <symbol>",
		Short: "Fetch historical bars",
		Long: `Fetch historical bars. When storage is enabled the bars are also written to
the SQLite database; --stored reads them back without connecting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			req := broker.HistoricalDataRequest{FormatDate: 1}
			req.EndDateTime, _ = cmd.Flags().GetString("end")
			req.Duration, _ = cmd.Flags().GetString("duration")
			req.BarSize, _ = cmd.Flags().GetString("bar-size")
			req.WhatToShow, _ = cmd.Flags().GetString("what")
			req.UseRTH, _ = cmd.Flags().GetBool("rth")
			contract := contractFromFlags(cmd, args[0])

			var bars []models.BarData
			if stored, _ := cmd.Flags().GetBool("stored"); stored {
				rows, err := app.storedBars(cmd, contract.Symbol, req.BarSize)
				if err != nil {
					return err
				}
				for _, r := range rows {
					bars = append(bars, r.BarData)
				}
			} else {
				sess, err := app.connect(cmd.Context(), nil)
				if err != nil {
					return err
				}
				defer sess.Close()

				ctx, cancel := app.requestContext(cmd)
				defer cancel()

				reqID := sess.client().NextReqID()
				if sess.recorder != nil {
					sess.recorder.Track(reqID, contract.Symbol, req.BarSize, false)
					defer sess.recorder.Untrack(reqID)
				}
				bars, err = sess.sync.HistoricalDataWithID(ctx, reqID, contract, req)
				if err != nil {
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(bars)
			}
			table := NewTable(output, "DATE", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME", "WAP", "COUNT")
			for _, b := range bars {
				table.AddRow(
					b.Date,
					utils.FormatPrice(b.Open),
					utils.FormatPrice(b.High),
					utils.FormatPrice(b.Low),
					utils.FormatPrice(b.Close),
					utils.FormatQuantity(b.Volume),
					utils.FormatQuantity(b.WAP),
					utils.FormatInt(b.BarCount),
				)
			}
			table.Render()
			output.Dim("%d bars", len(bars))
			return nil
		},
	}
	contractFlags(cmd)
	cmd.Flags().String("end", "", "end date time (yyyyMMdd HH:mm:ss TZ), empty for now")
	cmd.Flags().String("duration", "1 D", "duration (e.g. 1 D, 2 W, 1 Y)")
	cmd.Flags().String("bar-size", "1 hour", "bar size (e.g. 1 min, 5 mins, 1 day)")
	cmd.Flags().String("what", "TRADES", "what to show (TRADES, MIDPOINT, BID, ASK ...)")
	cmd.Flags().Bool("rth", true, "regular trading hours only")
	cmd.Flags().Bool("stored", false, "read bars from the local database instead of TWS")
	return cmd
}

func (a *App) openStore() (*store.Store, error) {
	if !a.Config.Storage.Enabled {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "storage is disabled in config")
	}
	return store.NewStore(a.Config.Storage.DBPath)
}

func (a *App) storedBars(cmd *cobra.Command, symbol, barSize string) ([]store.Bar, error) {
	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.GetBars(cmd.Context(), symbol, barSize)
}

func newPositionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "List positions across accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			sess, err := app.connect(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			positions, err := sess.sync.Positions(ctx)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(positions)
			}
			if len(positions) == 0 {
				output.Info("No positions")
				return nil
			}

			table := NewTable(output, "ACCOUNT", "SYMBOL", "TYPE", "CCY", "POSITION", "AVG COST")
			for _, p := range positions {
				table.AddRow(
					p.Account,
					p.Contract.Symbol,
					p.Contract.SecType,
					p.Contract.Currency,
					utils.FormatQuantity(p.Position),
					utils.FormatPrice(p.AvgCost),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newSummaryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show account summary values",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			group, _ := cmd.Flags().GetString("group")
			tags, _ := cmd.Flags().GetString("tags")
			account, _ := cmd.Flags().GetString("pnl-account")

			sess, err := app.connect(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			values, err := sess.sync.AccountSummary(ctx, group, tags)
			if err != nil {
				return err
			}

			var pnl *broker.PnLValue
			if account != "" {
				v, err := sess.sync.PnL(ctx, account, "")
				if err != nil {
					return err
				}
				pnl = &v
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"values": values, "pnl": pnl})
			}
			table := NewTable(output, "ACCOUNT", "TAG", "VALUE", "CCY")
			for _, v := range values {
				table.AddRow(v.Account, v.Tag, v.Value, v.Currency)
			}
			table.Render()
			if pnl != nil {
				output.Println()
				output.Printf("Daily P&L:      %s\n", output.FormatPnL(pnl.Daily))
				output.Printf("Unrealized P&L: %s\n", output.FormatPnL(pnl.Unrealized))
				output.Printf("Realized P&L:   %s\n", output.FormatPnL(pnl.Realized))
			}
			return nil
		},
	}
	cmd.Flags().String("group", "All", "account group")
	cmd.Flags().String("tags", defaultSummaryTags, "comma separated summary tags")
	cmd.Flags().String("pnl-account", "", "also show daily P&L for this account")
	return cmd
}

func newOrdersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List open (or completed) orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			completed, _ := cmd.Flags().GetBool("completed")

			sess, err := app.connect(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			var orders []broker.OrderRecord
			if completed {
				orders, err = sess.sync.CompletedOrders(ctx, false)
			} else {
				orders, err = sess.sync.OpenOrders(ctx)
			}
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(orders)
			}

			table := NewTable(output, "ORDER", "PERM", "ACCOUNT", "SYMBOL", "ACTION", "QTY", "TYPE", "LIMIT", "STATUS")
			for _, o := range orders {
				table.AddRow(
					utils.FormatInt(o.Order.OrderID),
					utils.FormatInt(o.Order.PermID),
					o.Order.Account,
					o.Contract.Symbol,
					o.Order.Action,
					utils.FormatQuantity(o.Order.TotalQuantity),
					o.Order.OrderType,
					utils.FormatPrice(o.Order.LmtPrice),
					o.State.Status,
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().Bool("completed", false, "list completed orders instead")
	return cmd
}

func newExecutionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "executions",
		Short: "List executions",
		Long: `List today's executions from TWS, or with --stored the executions and
commission reports recorded in the local database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol, _ := cmd.Flags().GetString("symbol")
			symbol = strings.ToUpper(symbol)

			if stored, _ := cmd.Flags().GetBool("stored"); stored {
				return app.printStoredExecutions(cmd, output, symbol)
			}

			filter := models.NewExecutionFilter()
			filter.Symbol = symbol
			filter.AcctCode, _ = cmd.Flags().GetString("account")
			if days, _ := cmd.Flags().GetInt64("days"); days > 0 {
				filter.LastNDays = days
			}

			sess, err := app.connect(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			execs, err := sess.sync.Executions(ctx, filter)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(execs)
			}

			table := NewTable(output, "TIME", "EXEC ID", "ACCOUNT", "SYMBOL", "SIDE", "SHARES", "PRICE", "EXCHANGE")
			for _, e := range execs {
				table.AddRow(
					e.Execution.Time,
					e.Execution.ExecID,
					e.Execution.AcctNumber,
					e.Contract.Symbol,
					e.Execution.Side,
					utils.FormatQuantity(e.Execution.Shares),
					utils.FormatPrice(e.Execution.Price),
					e.Execution.Exchange,
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().String("symbol", "", "filter by symbol")
	cmd.Flags().String("account", "", "filter by account")
	cmd.Flags().Int64("days", 0, "executions of the last N days (server version 200+)")
	cmd.Flags().Bool("stored", false, "read recorded executions from the local database")
	cmd.Flags().Int("limit", 100, "maximum rows with --stored")
	return cmd
}

func (a *App) printStoredExecutions(cmd *cobra.Command, output *Output, symbol string) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	account, _ := cmd.Flags().GetString("account")
	rows, err := st.GetExecutions(cmd.Context(), store.ExecutionQuery{Symbol: symbol, Account: account, Limit: limit})
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(rows)
	}

	table := NewTable(output, "TIME", "EXEC ID", "SYMBOL", "SIDE", "SHARES", "PRICE", "COMMISSION", "REALIZED")
	for _, r := range rows {
		commission, realized := utils.Placeholder, utils.Placeholder
		if r.HasCommission {
			commission = utils.FormatMoney(r.Commission, r.Currency)
			realized = output.FormatPnL(r.RealizedPNL)
		}
		table.AddRow(
			r.Execution.Time,
			r.Execution.ExecID,
			r.Symbol,
			r.Execution.Side,
			utils.FormatQuantity(r.Execution.Shares),
			utils.FormatPrice(r.Execution.Price),
			commission,
			realized,
		)
	}
	table.Render()
	return nil
}
