package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stock-advisor-backend/internal/model"
	"stock-advisor-backend/internal/service"
)

var tokenSecret = "stock-advisor-secret-key"

func init() {
	// 从环境变量读取密钥
	if secret := os.Getenv("TOKEN_SECRET"); secret != "" {
		tokenSecret = secret
	}
}

// generateToken 生成token: userID.timestamp.signature
func generateToken(userID int64) string {
	payload := fmt.Sprintf("%d.%d", userID, time.Now().Unix())
	h := hmac.New(sha256.New, []byte(tokenSecret))
	h.Write([]byte(payload))
	signature := hex.EncodeToString(h.Sum(nil))
	return payload + "." + signature
}

// ValidateToken 验证token并取出用户ID
func ValidateToken(token string) (int64, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return 0, false
	}

	payload := parts[0] + "." + parts[1]

	// 验证签名
	h := hmac.New(sha256.New, []byte(tokenSecret))
	h.Write([]byte(payload))
	expectedSig := hex.EncodeToString(h.Sum(nil))
	if parts[2] != expectedSig {
		return 0, false
	}

	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, false
	}

	// 验证是否过期（7天有效期）
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, false
	}
	if time.Now().Unix()-ts > 7*24*3600 {
		return 0, false
	}

	return userID, true
}

// AuthMiddleware 认证中间件，校验通过后把user_id放进上下文
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Authentication token is required",
			})
			c.Abort()
			return
		}

		// 去掉 Bearer 前缀
		token = strings.TrimPrefix(token, "Bearer ")

		userID, ok := ValidateToken(token)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// currentUserID 从上下文取认证用户ID
func currentUserID(c *gin.Context) int64 {
	v, ok := c.Get("user_id")
	if !ok {
		return 0
	}
	id, _ := v.(int64)
	return id
}

// ValidUser 注册前检查用户名或邮箱是否已被占用
func ValidUser(c *gin.Context) {
	var req model.ValidUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username or Email is required"})
		return
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username or Email is required"})
		return
	}

	available, err := service.IdentifierAvailable(identifier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if !available {
		c.JSON(http.StatusConflict, gin.H{"message": "Identifier already exists"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Identifier is available"})
}

// Signup 用户注册
func Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username, email, and password are required"})
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username, email, and password are required"})
		return
	}

	if _, err := service.Signup(req.Username, req.Email, req.Password); err != nil {
		if errors.Is(err, service.ErrIdentifierTaken) {
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Registration failed due to server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// Login 用户登录，成功时返回token和用户信息
func Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username/Email and password are required"})
		return
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username/Email and password are required"})
		return
	}

	user, err := service.Login(identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
		case errors.Is(err, service.ErrInactiveAccount):
			c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed due to server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   generateToken(user.ID),
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Logout 登出。token无状态，客户端丢弃即可
func Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
