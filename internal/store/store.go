// Package store persists decoded historical bars, executions and commission
// reports in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"ib-trader/internal/errors"
	"ib-trader/internal/models"
)

// Bar is a stored historical bar.
type Bar struct {
	Symbol  string
	BarSize string
	models.BarData
}

// ExecutionRow is a stored fill with its commission report, if one arrived.
type ExecutionRow struct {
	ConID     int64
	Symbol    string
	SecType   string
	Currency  string
	Execution models.Execution

	HasCommission bool
	Commission    float64
	RealizedPNL   float64
}

// ExecutionQuery filters GetExecutions. Zero values match everything.
type ExecutionQuery struct {
	Symbol  string
	Account string
	Limit   int
}

// Store is a SQLite backed recorder.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens (or creates) the database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("open %s: %v", path, err))
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		bar_size TEXT NOT NULL,
		date TEXT NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume TEXT,
		wap TEXT,
		bar_count INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, bar_size, date)
	);

	CREATE TABLE IF NOT EXISTS executions (
		exec_id TEXT PRIMARY KEY,
		time TEXT NOT NULL,
		account TEXT,
		con_id INTEGER,
		symbol TEXT NOT NULL,
		sec_type TEXT,
		currency TEXT,
		exchange TEXT,
		side TEXT NOT NULL,
		shares TEXT NOT NULL,
		price REAL NOT NULL,
		perm_id INTEGER,
		client_id INTEGER,
		order_id INTEGER,
		cum_qty TEXT,
		avg_price REAL,
		order_ref TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS commission_reports (
		exec_id TEXT PRIMARY KEY,
		commission REAL NOT NULL,
		currency TEXT,
		realized_pnl REAL,
		yield REAL,
		yield_redemption_date INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_bars_symbol ON bars(symbol, bar_size, date);
	CREATE INDEX IF NOT EXISTS idx_executions_symbol ON executions(symbol, time);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("create schema: %v", err))
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBars upserts bars for symbol and barSize, keyed by bar date.
func (s *Store) SaveBars(ctx context.Context, symbol, barSize string, bars []models.BarData) error {
	if len(bars) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError("begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO bars (symbol, bar_size, date, open, high, low, close, volume, wap, bar_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return dbError("prepare bar insert", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		_, err := stmt.ExecContext(ctx, symbol, barSize, b.Date, b.Open, b.High, b.Low, b.Close,
			nullDecimal(b.Volume), nullDecimal(b.WAP), b.BarCount)
		if err != nil {
			return dbError("insert bar", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return dbError("commit bars", err)
	}
	return nil
}

// GetBars returns the bars of symbol and barSize ordered by date.
func (s *Store) GetBars(ctx context.Context, symbol, barSize string) ([]Bar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, open, high, low, close, volume, wap, bar_count
		FROM bars
		WHERE symbol = ? AND bar_size = ?
		ORDER BY date ASC
	`, symbol, barSize)
	if err != nil {
		return nil, dbError("query bars", err)
	}
	defer rows.Close()

	var bars []Bar
	for rows.Next() {
		var (
			b           = Bar{Symbol: symbol, BarSize: barSize}
			volume, wap sql.NullString
		)
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &volume, &wap, &b.BarCount); err != nil {
			return nil, dbError("scan bar", err)
		}
		b.Volume = parseDecimal(volume)
		b.WAP = parseDecimal(wap)
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("iterate bars", err)
	}
	return bars, nil
}

// SaveExecution stores a fill. Corrections reuse the exec id and replace the row.
func (s *Store) SaveExecution(ctx context.Context, contract *models.Contract, exec *models.Execution) error {
	if exec == nil || exec.ExecID == "" {
		return errors.NewValidationError("exec_id", "", "execution id is required")
	}
	var c models.Contract
	if contract != nil {
		c = *contract
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO executions (exec_id, time, account, con_id, symbol, sec_type, currency, exchange, side, shares, price, perm_id, client_id, order_id, cum_qty, avg_price, order_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, exec.ExecID, exec.Time, exec.AcctNumber, c.ConID, c.Symbol, c.SecType, c.Currency, exec.Exchange,
		exec.Side, exec.Shares.String(), exec.Price, exec.PermID, exec.ClientID, exec.OrderID,
		exec.CumQty.String(), exec.AvgPrice, exec.OrderRef)
	if err != nil {
		return dbError("save execution", err)
	}
	return nil
}

// SaveCommissionReport stores the commission report of a fill.
func (s *Store) SaveCommissionReport(ctx context.Context, report models.CommissionAndFeesReport) error {
	if report.ExecID == "" {
		return errors.NewValidationError("exec_id", "", "execution id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO commission_reports (exec_id, commission, currency, realized_pnl, yield, yield_redemption_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`, report.ExecID, report.CommissionAndFees, report.Currency, report.RealizedPNL, report.Yield, report.YieldRedemptionDate)
	if err != nil {
		return dbError("save commission report", err)
	}
	return nil
}

// GetExecutions returns stored fills, newest first, joined with their
// commission reports.
func (s *Store) GetExecutions(ctx context.Context, q ExecutionQuery) ([]ExecutionRow, error) {
	query := `
		SELECT e.exec_id, e.time, e.account, e.con_id, e.symbol, e.sec_type, e.currency, e.exchange,
			e.side, e.shares, e.price, e.perm_id, e.client_id, e.order_id, e.cum_qty, e.avg_price, e.order_ref,
			c.commission, c.realized_pnl
		FROM executions e
		LEFT JOIN commission_reports c ON c.exec_id = e.exec_id
		WHERE 1=1`
	args := []interface{}{}

	if q.Symbol != "" {
		query += " AND e.symbol = ?"
		args = append(args, q.Symbol)
	}
	if q.Account != "" {
		query += " AND e.account = ?"
		args = append(args, q.Account)
	}
	query += " ORDER BY e.time DESC, e.exec_id ASC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("query executions", err)
	}
	defer rows.Close()

	var out []ExecutionRow
	for rows.Next() {
		var (
			r                    ExecutionRow
			shares, cumQty       sql.NullString
			account, secType     sql.NullString
			currency, exchange   sql.NullString
			orderRef             sql.NullString
			commission, realized sql.NullFloat64
			avgPrice             sql.NullFloat64
		)
		e := &r.Execution
		if err := rows.Scan(&e.ExecID, &e.Time, &account, &r.ConID, &r.Symbol, &secType, &currency, &exchange,
			&e.Side, &shares, &e.Price, &e.PermID, &e.ClientID, &e.OrderID, &cumQty, &avgPrice, &orderRef,
			&commission, &realized); err != nil {
			return nil, dbError("scan execution", err)
		}
		e.AcctNumber = account.String
		e.Exchange = exchange.String
		e.OrderRef = orderRef.String
		e.AvgPrice = avgPrice.Float64
		e.Shares = parseDecimal(shares)
		e.CumQty = parseDecimal(cumQty)
		r.SecType = secType.String
		r.Currency = currency.String
		if commission.Valid {
			r.HasCommission = true
			r.Commission = commission.Float64
			r.RealizedPNL = realized.Float64
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("iterate executions", err)
	}
	return out, nil
}

func dbError(op string, err error) error {
	return errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("%s: %v", op, err))
}

// nullDecimal stores the unset sentinel as NULL.
func nullDecimal(d decimal.Decimal) sql.NullString {
	if models.IsUnsetDecimal(d) {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseDecimal(s sql.NullString) decimal.Decimal {
	if !s.Valid || s.String == "" {
		return models.UnsetDecimal
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return models.UnsetDecimal
	}
	return d
}
