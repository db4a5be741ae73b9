package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"stock-advisor-backend/internal/model"
	"stock-advisor-backend/internal/store"
)

var (
	// ErrInvalidCredentials 用户不存在或密码不对，对外不区分
	ErrInvalidCredentials = errors.New("Invalid credentials")
	// ErrInactiveAccount 账号被停用
	ErrInactiveAccount = errors.New("Account is inactive. Please contact support.")
	// ErrIdentifierTaken 用户名或邮箱已被注册
	ErrIdentifierTaken = errors.New("Identifier already exists")
)

// truncatePassword bcrypt只处理前72字节，超长输入先截断再哈希
func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	return b
}

// IdentifierAvailable 注册前检查标识符（用户名或邮箱）是否可用
func IdentifierAvailable(identifier string) (bool, error) {
	exists, err := db.IdentifierExists(identifier, identifier)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// Signup 注册新用户，返回用户ID
func Signup(username, email, password string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword(truncatePassword(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	id, err := db.CreateUser(username, email, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return 0, ErrIdentifierTaken
		}
		return 0, err
	}
	return id, nil
}

// Login 校验身份并返回用户，identifier可以是用户名或邮箱
func Login(identifier, password string) (*model.User, error) {
	user, err := db.GetUserByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), truncatePassword(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}
	return user, nil
}
