// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	domainerrors "paper-trader/internal/errors"
	"paper-trader/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Paper-trading accounts
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		cash_balance TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Open positions per account
	CREATE TABLE IF NOT EXISTS positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		avg_price TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(account_id, symbol),
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	);

	-- Instrument master: equities and option contracts
	CREATE TABLE IF NOT EXISTS instruments (
		symbol TEXT PRIMARY KEY,
		class TEXT NOT NULL,
		name TEXT,
		underlying TEXT,
		option_type TEXT,
		strike TEXT,
		expiry DATETIME
	);

	-- Reference quotes (test data), latest row per symbol wins
	CREATE TABLE IF NOT EXISTS quotes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		price TEXT,
		bid TEXT,
		ask TEXT,
		quote_date DATETIME NOT NULL,
		underlying_symbol TEXT,
		underlying_price TEXT,
		iv REAL,
		has_greeks INTEGER DEFAULT 0,
		delta REAL,
		gamma REAL,
		theta REAL,
		vega REAL,
		rho REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_quotes_symbol_date ON quotes(symbol, quote_date DESC);

	-- Orders; multi-leg orders persist as one synthetic row
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		order_type TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		price TEXT NOT NULL,
		status TEXT NOT NULL,
		leg_count INTEGER DEFAULT 0,
		created_at DATETIME NOT NULL,
		filled_at DATETIME,
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	);
	CREATE INDEX IF NOT EXISTS idx_orders_account ON orders(account_id, created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateAccount inserts a new account.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		return domainerrors.NewConversionError("account", "id", nil)
	}
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, owner, cash_balance, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		account.ID, account.Owner, account.CashBalance.String(), now, now)
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}
	account.CreatedAt = now
	account.UpdatedAt = now
	return nil
}

// GetAccount fetches an account by ID.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, cash_balance, created_at, updated_at FROM accounts WHERE id = ?`, id)

	var account models.Account
	var cash string
	if err := row.Scan(&account.ID, &account.Owner, &cash, &account.CreatedAt, &account.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("fetching account: %w", err)
	}

	balance, err := decimal.NewFromString(cash)
	if err != nil {
		return nil, domainerrors.NewConversionError("account", "cash_balance", err)
	}
	account.CashBalance = balance
	return &account, nil
}

// ListAccounts returns all accounts.
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, cash_balance, created_at, updated_at FROM accounts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		var cash string
		if err := rows.Scan(&account.ID, &account.Owner, &cash, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, err
		}
		balance, err := decimal.NewFromString(cash)
		if err != nil {
			return nil, domainerrors.NewConversionError("account", "cash_balance", err)
		}
		account.CashBalance = balance
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// UpdateCashBalance sets the cash balance for an account.
func (s *SQLiteStore) UpdateCashBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET cash_balance = ?, updated_at = ? WHERE id = ?`,
		balance.String(), time.Now(), id)
	if err != nil {
		return fmt.Errorf("updating cash balance: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domainerrors.ErrAccountNotFound
	}
	return nil
}

// UpsertPosition inserts or replaces a position. A zero-quantity upsert
// removes the row.
func (s *SQLiteStore) UpsertPosition(ctx context.Context, position *models.Position) error {
	if position.AccountID == "" {
		return domainerrors.NewConversionError("position", "account_id", nil)
	}
	if position.Quantity == 0 {
		return s.DeletePosition(ctx, position.AccountID, position.Symbol)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO positions (account_id, symbol, quantity, avg_price, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(account_id, symbol) DO UPDATE SET
			quantity = excluded.quantity,
			avg_price = excluded.avg_price,
			updated_at = excluded.updated_at`,
		position.AccountID, position.Symbol, position.Quantity, position.AvgPrice.String(), time.Now())
	if err != nil {
		return fmt.Errorf("upserting position: %w", err)
	}
	return nil
}

// GetPositions returns all positions for an account.
func (s *SQLiteStore) GetPositions(ctx context.Context, accountID string) ([]models.Position, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT account_id, symbol, quantity, avg_price, updated_at FROM positions WHERE account_id = ? ORDER BY symbol`,
		accountID)
	if err != nil {
		return nil, fmt.Errorf("fetching positions: %w", err)
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		var p models.Position
		var avg string
		if err := rows.Scan(&p.AccountID, &p.Symbol, &p.Quantity, &avg, &p.UpdatedAt); err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(avg)
		if err != nil {
			return nil, domainerrors.NewConversionError("position", "avg_price", err)
		}
		p.AvgPrice = price
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// GetPosition fetches a single position.
func (s *SQLiteStore) GetPosition(ctx context.Context, accountID, symbol string) (*models.Position, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT account_id, symbol, quantity, avg_price, updated_at FROM positions WHERE account_id = ? AND symbol = ?`,
		accountID, symbol)

	var p models.Position
	var avg string
	if err := row.Scan(&p.AccountID, &p.Symbol, &p.Quantity, &avg, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.ErrPositionNotFound
		}
		return nil, fmt.Errorf("fetching position: %w", err)
	}
	price, err := decimal.NewFromString(avg)
	if err != nil {
		return nil, domainerrors.NewConversionError("position", "avg_price", err)
	}
	p.AvgPrice = price
	return &p, nil
}

// DeletePosition removes a position row.
func (s *SQLiteStore) DeletePosition(ctx context.Context, accountID, symbol string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM positions WHERE account_id = ? AND symbol = ?`, accountID, symbol)
	if err != nil {
		return fmt.Errorf("deleting position: %w", err)
	}
	return nil
}

// SaveInstrument inserts or replaces an instrument row.
func (s *SQLiteStore) SaveInstrument(ctx context.Context, instrument models.Instrument) error {
	switch inst := instrument.(type) {
	case models.Equity:
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO instruments (symbol, class, name) VALUES (?, ?, ?)`,
			inst.Symbol, string(models.ClassEquity), inst.Name)
		if err != nil {
			return fmt.Errorf("saving equity: %w", err)
		}
		return nil
	case models.Option:
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO instruments (symbol, class, underlying, option_type, strike, expiry)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			inst.Symbol, string(models.ClassOption), inst.Underlying, string(inst.Type), inst.Strike.String(), inst.Expiry)
		if err != nil {
			return fmt.Errorf("saving option: %w", err)
		}
		return nil
	default:
		return domainerrors.NewConversionError("instrument", "class", nil)
	}
}

// GetInstrument fetches an instrument by symbol, returning the concrete
// variant of the union.
func (s *SQLiteStore) GetInstrument(ctx context.Context, symbol string) (models.Instrument, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT symbol, class, name, underlying, option_type, strike, expiry FROM instruments WHERE symbol = ?`,
		symbol)

	var (
		sym, class            string
		name, underlying      sql.NullString
		optionType, strikeStr sql.NullString
		expiry                sql.NullTime
	)
	if err := row.Scan(&sym, &class, &name, &underlying, &optionType, &strikeStr, &expiry); err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.ErrSymbolNotFound
		}
		return nil, fmt.Errorf("fetching instrument: %w", err)
	}

	switch models.InstrumentClass(class) {
	case models.ClassEquity:
		return models.Equity{Symbol: sym, Name: name.String}, nil
	case models.ClassOption:
		if !strikeStr.Valid || !expiry.Valid || !optionType.Valid {
			return nil, domainerrors.NewConversionError("instrument", "option fields", nil)
		}
		strike, err := decimal.NewFromString(strikeStr.String)
		if err != nil {
			return nil, domainerrors.NewConversionError("instrument", "strike", err)
		}
		return models.Option{
			Symbol:     sym,
			Underlying: underlying.String,
			Type:       models.OptionType(optionType.String),
			Strike:     strike,
			Expiry:     expiry.Time,
		}, nil
	default:
		return nil, domainerrors.NewConversionError("instrument", "class", nil)
	}
}

// SaveQuote inserts a reference quote row.
func (s *SQLiteStore) SaveQuote(ctx context.Context, quote *models.Quote) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quotes (symbol, price, bid, ask, quote_date) VALUES (?, ?, ?, ?, ?)`,
		quote.Symbol, nullDecimal(quote.Price), nullDecimal(quote.Bid), nullDecimal(quote.Ask), quote.QuoteDate)
	if err != nil {
		return fmt.Errorf("saving quote: %w", err)
	}
	return nil
}

// SaveOptionQuote inserts a reference option quote row with Greeks.
func (s *SQLiteStore) SaveOptionQuote(ctx context.Context, quote *models.OptionQuote) error {
	hasGreeks := 0
	var delta, gamma, theta, vega, rho interface{}
	if quote.Greeks != nil {
		hasGreeks = 1
		delta, gamma, theta, vega, rho = quote.Greeks.Delta, quote.Greeks.Gamma, quote.Greeks.Theta, quote.Greeks.Vega, quote.Greeks.Rho
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quotes (symbol, price, bid, ask, quote_date, underlying_symbol, underlying_price, iv, has_greeks, delta, gamma, theta, vega, rho)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quote.Symbol, nullDecimal(quote.Price), nullDecimal(quote.Bid), nullDecimal(quote.Ask), quote.QuoteDate,
		quote.UnderlyingSymbol, nullDecimal(quote.UnderlyingPrice), quote.IV, hasGreeks, delta, gamma, theta, vega, rho)
	if err != nil {
		return fmt.Errorf("saving option quote: %w", err)
	}
	return nil
}

// GetLatestQuote returns the most recent reference quote for a symbol.
func (s *SQLiteStore) GetLatestQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT symbol, price, bid, ask, quote_date FROM quotes WHERE symbol = ? ORDER BY quote_date DESC LIMIT 1`,
		symbol)

	var q models.Quote
	var price, bid, ask sql.NullString
	if err := row.Scan(&q.Symbol, &price, &bid, &ask, &q.QuoteDate); err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.ErrSymbolNotFound
		}
		return nil, fmt.Errorf("fetching quote: %w", err)
	}

	var err error
	if q.Price, err = scanNullDecimal(price); err != nil {
		return nil, domainerrors.NewConversionError("quote", "price", err)
	}
	if q.Bid, err = scanNullDecimal(bid); err != nil {
		return nil, domainerrors.NewConversionError("quote", "bid", err)
	}
	if q.Ask, err = scanNullDecimal(ask); err != nil {
		return nil, domainerrors.NewConversionError("quote", "ask", err)
	}
	return &q, nil
}

// GetLatestOptionQuote returns the most recent option quote for a contract.
func (s *SQLiteStore) GetLatestOptionQuote(ctx context.Context, symbol string) (*models.OptionQuote, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT symbol, price, bid, ask, quote_date, underlying_symbol, underlying_price, iv, has_greeks, delta, gamma, theta, vega, rho
		 FROM quotes WHERE symbol = ? ORDER BY quote_date DESC LIMIT 1`,
		symbol)

	var q models.OptionQuote
	var price, bid, ask, underSym, underPrice sql.NullString
	var iv sql.NullFloat64
	var hasGreeks int
	var delta, gamma, theta, vega, rho sql.NullFloat64
	if err := row.Scan(&q.Symbol, &price, &bid, &ask, &q.QuoteDate, &underSym, &underPrice, &iv, &hasGreeks,
		&delta, &gamma, &theta, &vega, &rho); err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.ErrSymbolNotFound
		}
		return nil, fmt.Errorf("fetching option quote: %w", err)
	}

	var err error
	if q.Price, err = scanNullDecimal(price); err != nil {
		return nil, domainerrors.NewConversionError("quote", "price", err)
	}
	if q.Bid, err = scanNullDecimal(bid); err != nil {
		return nil, domainerrors.NewConversionError("quote", "bid", err)
	}
	if q.Ask, err = scanNullDecimal(ask); err != nil {
		return nil, domainerrors.NewConversionError("quote", "ask", err)
	}
	if q.UnderlyingPrice, err = scanNullDecimal(underPrice); err != nil {
		return nil, domainerrors.NewConversionError("quote", "underlying_price", err)
	}
	q.UnderlyingSymbol = underSym.String
	q.IV = iv.Float64
	if hasGreeks == 1 {
		q.Greeks = &models.Greeks{
			Delta: delta.Float64,
			Gamma: gamma.Float64,
			Theta: theta.Float64,
			Vega:  vega.Float64,
			Rho:   rho.Float64,
		}
	}
	return &q, nil
}

// ValidateQuotes scans the latest reference quote per symbol for data-quality
// violations of bid <= price <= ask.
func (s *SQLiteStore) ValidateQuotes(ctx context.Context) ([]QuoteViolation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol, price, bid, ask, MAX(quote_date) FROM quotes GROUP BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("scanning quotes: %w", err)
	}
	defer rows.Close()

	var violations []QuoteViolation
	for rows.Next() {
		var symbol string
		var price, bid, ask sql.NullString
		var quoteDate time.Time
		if err := rows.Scan(&symbol, &price, &bid, &ask, &quoteDate); err != nil {
			return nil, err
		}

		p, err := scanNullDecimal(price)
		if err != nil {
			violations = append(violations, QuoteViolation{Symbol: symbol, QuoteDate: quoteDate, Reason: "unparseable price"})
			continue
		}
		b, err := scanNullDecimal(bid)
		if err != nil {
			violations = append(violations, QuoteViolation{Symbol: symbol, QuoteDate: quoteDate, Reason: "unparseable bid"})
			continue
		}
		a, err := scanNullDecimal(ask)
		if err != nil {
			violations = append(violations, QuoteViolation{Symbol: symbol, QuoteDate: quoteDate, Reason: "unparseable ask"})
			continue
		}

		// The invariant only applies when all three values are present.
		if !p.Valid || !b.Valid || !a.Valid {
			continue
		}
		if b.Decimal.GreaterThan(p.Decimal) || p.Decimal.GreaterThan(a.Decimal) {
			violations = append(violations, QuoteViolation{
				Symbol:    symbol,
				Price:     p,
				Bid:       b,
				Ask:       a,
				QuoteDate: quoteDate,
				Reason:    "bid <= price <= ask violated",
			})
		}
	}
	return violations, rows.Err()
}

// SaveOrder commits an order record in a single transaction.
func (s *SQLiteStore) SaveOrder(ctx context.Context, order *models.Order) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertOrder(ctx, tx, order)
	})
}

// SaveOrderWithFill commits an order plus its position and cash effects
// atomically. Used by single-leg paper fills.
func (s *SQLiteStore) SaveOrderWithFill(ctx context.Context, order *models.Order, position *models.Position, newCashBalance decimal.Decimal) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertOrder(ctx, tx, order); err != nil {
			return err
		}
		if position != nil {
			if position.Quantity == 0 {
				if _, err := tx.ExecContext(ctx,
					`DELETE FROM positions WHERE account_id = ? AND symbol = ?`,
					position.AccountID, position.Symbol); err != nil {
					return fmt.Errorf("clearing position: %w", err)
				}
			} else {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO positions (account_id, symbol, quantity, avg_price, updated_at)
					 VALUES (?, ?, ?, ?, ?)
					 ON CONFLICT(account_id, symbol) DO UPDATE SET
						quantity = excluded.quantity,
						avg_price = excluded.avg_price,
						updated_at = excluded.updated_at`,
					position.AccountID, position.Symbol, position.Quantity, position.AvgPrice.String(), time.Now()); err != nil {
					return fmt.Errorf("updating position: %w", err)
				}
			}
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET cash_balance = ?, updated_at = ? WHERE id = ?`,
			newCashBalance.String(), time.Now(), order.AccountID); err != nil {
			return fmt.Errorf("updating cash balance: %w", err)
		}
		return nil
	})
}

func insertOrder(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	if order.AccountID == "" {
		return domainerrors.NewConversionError("order", "account_id", nil)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, account_id, symbol, order_type, quantity, price, status, leg_count, created_at, filled_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.AccountID, order.Symbol, string(order.Type), order.Quantity,
		order.Price.String(), string(order.Status), order.LegCount, order.CreatedAt, order.FilledAt)
	if err != nil {
		if strings.Contains(err.Error(), "CHECK constraint failed") {
			return domainerrors.NewValidationError("quantity", order.Quantity, "quantity must be positive")
		}
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

// GetOrder fetches an order by ID.
func (s *SQLiteStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, account_id, symbol, order_type, quantity, price, status, leg_count, created_at, filled_at
		 FROM orders WHERE id = ?`, id)
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrOrderNotFound
	}
	return order, err
}

// GetOrders returns orders matching the filter.
func (s *SQLiteStore) GetOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := `SELECT id, account_id, symbol, order_type, quantity, price, status, leg_count, created_at, filled_at FROM orders WHERE 1=1`
	var args []interface{}

	if filter.AccountID != "" {
		query += " AND account_id = ?"
		args = append(args, filter.AccountID)
	}
	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if !filter.From.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, filter.To)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var orderType, status, price string
	var filledAt sql.NullTime
	if err := row.Scan(&o.ID, &o.AccountID, &o.Symbol, &orderType, &o.Quantity, &price, &status, &o.LegCount, &o.CreatedAt, &filledAt); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, domainerrors.NewConversionError("order", "price", err)
	}
	o.Type = models.OrderType(orderType)
	o.Status = models.OrderStatus(status)
	o.Price = p
	o.FilledAt = filledAt.Time
	return &o, nil
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullDecimal(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

func scanNullDecimal(s sql.NullString) (decimal.NullDecimal, error) {
	if !s.Valid {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// Ensure SQLiteStore implements DataStore
var _ DataStore = (*SQLiteStore)(nil)
