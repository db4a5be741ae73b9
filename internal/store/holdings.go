package store

import (
	"database/sql"
	"errors"

	"stock-advisor-backend/internal/model"
)

// ListHoldings 用户的全部持仓
func (s *Store) ListHoldings(userID int64) ([]model.Holding, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, ticker, shares, purchase_price, created_at
		 FROM holdings WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		var h model.Holding
		if err := rows.Scan(&h.ID, &h.UserID, &h.Ticker, &h.Shares, &h.PurchasePrice, &h.CreatedAt); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// AddHolding 添加持仓
func (s *Store) AddHolding(userID int64, ticker string, shares, purchasePrice float64) (*model.Holding, error) {
	result, err := s.db.Exec(
		`INSERT INTO holdings (user_id, ticker, shares, purchase_price) VALUES (?, ?, ?, ?)`,
		userID, ticker, shares, purchasePrice)
	if err != nil {
		return nil, translateErr(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	var h model.Holding
	err = s.db.QueryRow(
		`SELECT id, user_id, ticker, shares, purchase_price, created_at FROM holdings WHERE id = ?`, id).
		Scan(&h.ID, &h.UserID, &h.Ticker, &h.Shares, &h.PurchasePrice, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GetHoldingByTicker 按用户和代码查找持仓
func (s *Store) GetHoldingByTicker(userID int64, ticker string) (*model.Holding, error) {
	var h model.Holding
	err := s.db.QueryRow(
		`SELECT id, user_id, ticker, shares, purchase_price, created_at
		 FROM holdings WHERE user_id = ? AND ticker = ?`, userID, ticker).
		Scan(&h.ID, &h.UserID, &h.Ticker, &h.Shares, &h.PurchasePrice, &h.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// UpdateHolding 更新持仓数量和买入均价
func (s *Store) UpdateHolding(id int64, shares, purchasePrice float64) error {
	_, err := s.db.Exec(
		`UPDATE holdings SET shares = ?, purchase_price = ? WHERE id = ?`,
		shares, purchasePrice, id)
	return err
}

// DeleteHolding 删除持仓，记录不存在返回ErrNotFound
func (s *Store) DeleteHolding(id int64) error {
	var exists int64
	err := s.db.QueryRow(`SELECT id FROM holdings WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM holdings WHERE id = ?`, id)
	return err
}
