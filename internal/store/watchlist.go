package store

import (
	"database/sql"
	"errors"

	"stock-advisor-backend/internal/model"
)

// HasWatchlist 用户是否有自选股记录
func (s *Store) HasWatchlist(userID int64) (bool, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM watchlist WHERE user_id = ?`, userID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListWatchlist 用户的全部自选股，按创建顺序
func (s *Store) ListWatchlist(userID int64) ([]model.WatchlistItem, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, ticker, created_at FROM watchlist WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.WatchlistItem{}
	for rows.Next() {
		var item model.WatchlistItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.Ticker, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListWatchlistTickers 所有用户自选股的去重代码表，给定时刷新用
func (s *Store) ListWatchlistTickers() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT ticker FROM watchlist ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, err
		}
		tickers = append(tickers, ticker)
	}
	return tickers, rows.Err()
}

// AddWatchlistItem 添加自选股，同一用户重复添加返回ErrDuplicate
func (s *Store) AddWatchlistItem(userID int64, ticker string) (*model.WatchlistItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO watchlist (user_id, ticker) VALUES (?, ?)`, userID, ticker)
	if err != nil {
		return nil, translateErr(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetWatchlistItem(id)
}

// GetWatchlistItem 按ID查找自选股条目
func (s *Store) GetWatchlistItem(id int64) (*model.WatchlistItem, error) {
	var item model.WatchlistItem
	err := s.db.QueryRow(
		`SELECT id, user_id, ticker, created_at FROM watchlist WHERE id = ?`, id).
		Scan(&item.ID, &item.UserID, &item.Ticker, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteWatchlistItem 删除自选股条目，返回被删的记录
func (s *Store) DeleteWatchlistItem(id int64) (*model.WatchlistItem, error) {
	item, err := s.GetWatchlistItem(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(`DELETE FROM watchlist WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return item, nil
}
