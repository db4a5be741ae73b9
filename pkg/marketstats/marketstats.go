package marketstats

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const DefaultDBFileName = "market_stats.db"

type Stat struct {
	Ticker       string
	TradeDate    string
	Close        float64
	Return1D     float64
	Volatility20 float64
	RSI14        float64
	Volume       int64
}

func ResolvePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return p
	}
	if filepath.Ext(p) == "" {
		return filepath.Join(p, DefaultDBFileName)
	}
	if fi, err := os.Stat(p); err == nil && fi.IsDir() {
		return filepath.Join(p, DefaultDBFileName)
	}
	return p
}

func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS market_stats (
			ticker TEXT NOT NULL,
			trade_date TEXT NOT NULL,
			close REAL NOT NULL,
			return_1d REAL NOT NULL,
			volatility_20 REAL NOT NULL,
			rsi_14 REAL NOT NULL,
			volume INTEGER NOT NULL,
			PRIMARY KEY (ticker, trade_date)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_market_stats_date ON market_stats(trade_date);`,
		`CREATE INDEX IF NOT EXISTS idx_market_stats_rsi ON market_stats(rsi_14);`,
		`CREATE INDEX IF NOT EXISTS idx_market_stats_volatility ON market_stats(volatility_20);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func MaxTradeDate(db *sql.DB, ticker string) (string, error) {
	var maxDate sql.NullString
	err := db.QueryRow(`SELECT MAX(trade_date) FROM market_stats WHERE ticker = ?`, ticker).Scan(&maxDate)
	if err != nil {
		return "", err
	}
	if !maxDate.Valid {
		return "", nil
	}
	return maxDate.String, nil
}

func QueryRecent(dbPath, ticker string, k int) ([]Stat, error) {
	if k <= 0 {
		return nil, nil
	}
	dbPath = ResolvePath(dbPath)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", filepath.ToSlash(dbPath)))
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`
SELECT ticker, trade_date, close, return_1d, volatility_20, rsi_14, volume
FROM market_stats
WHERE ticker = ?
ORDER BY trade_date DESC
LIMIT ?`, ticker, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Stat, 0, k)
	for rows.Next() {
		var s Stat
		if err := rows.Scan(
			&s.Ticker,
			&s.TradeDate,
			&s.Close,
			&s.Return1D,
			&s.Volatility20,
			&s.RSI14,
			&s.Volume,
		); err != nil {
			continue
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return out, err
	}
	return out, nil
}
