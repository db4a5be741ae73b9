package model

// User 用户
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // 不对外输出
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at"`
}

// SignupRequest 注册请求
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest 登录请求，identifier/username/email任填其一
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// ValidUserRequest 注册前的重名检查请求
type ValidUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
