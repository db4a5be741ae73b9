package store

import (
	"database/sql"
	"errors"

	"stock-advisor-backend/internal/model"
)

// CreateUser 创建用户，用户名或邮箱重复时返回ErrDuplicate
func (s *Store) CreateUser(username, email, passwordHash string) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`,
		username, email, passwordHash)
	if err != nil {
		return 0, translateErr(err)
	}
	return result.LastInsertId()
}

// IdentifierExists 检查用户名或邮箱是否已被占用
func (s *Store) IdentifierExists(username, email string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(1) FROM users WHERE (username = ? AND ? != '') OR (email = ? AND ? != '')`,
		username, username, email, email).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	var isActive int
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &isActive, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.IsActive = isActive != 0
	return &user, nil
}

// GetUserByIdentifier 按用户名或邮箱查找用户
func (s *Store) GetUserByIdentifier(identifier string) (*model.User, error) {
	row := s.db.QueryRow(
		`SELECT id, username, email, password_hash, is_active, created_at
		 FROM users WHERE username = ? OR email = ?`, identifier, identifier)
	return scanUser(row)
}

// GetUserByID 按ID查找用户
func (s *Store) GetUserByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(
		`SELECT id, username, email, password_hash, is_active, created_at
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}
