package handler_test

import (
	"net/http"
	"testing"

	"stock-advisor-backend/internal/handler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupLoginLogout_Flow(t *testing.T) {
	r, _ := newTestEnv(t, chartMux(nil))

	w := doJSON(t, r, http.MethodPost, "/api/v1/signup", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "User registered successfully", decodeBody(t, w)["message"])

	// 重复注册
	w = doJSON(t, r, http.MethodPost, "/api/v1/signup", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Identifier already exists", decodeBody(t, w)["message"])

	w = doJSON(t, r, http.MethodPost, "/api/v1/login", map[string]string{
		"identifier": "alice", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Login successful", body["message"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	user, _ := body["user"].(map[string]any)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@example.com", user["email"])

	// token可以解出用户ID
	userID, ok := handler.ValidateToken(token)
	require.True(t, ok)
	assert.Equal(t, int64(user["id"].(float64)), userID)

	w = doJSON(t, r, http.MethodPost, "/api/v1/logout", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out successfully", decodeBody(t, w)["message"])
}

func TestSignup_MissingFields(t *testing.T) {
	r, _ := newTestEnv(t, chartMux(nil))

	w := doJSON(t, r, http.MethodPost, "/api/v1/signup", map[string]string{
		"username": "bob", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username, email, and password are required", decodeBody(t, w)["message"])

	w = doJSON(t, r, http.MethodPost, "/api/v1/signup", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	r, _ := newTestEnv(t, chartMux(nil))

	w := doJSON(t, r, http.MethodPost, "/api/v1/signup", map[string]string{
		"username": "carl", "email": "carl@example.com", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/login", map[string]string{
		"identifier": "carl", "password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, w)["message"])

	// 账号和密码都缺
	w = doJSON(t, r, http.MethodPost, "/api/v1/login", map[string]string{}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username/Email and password are required", decodeBody(t, w)["message"])
}

func TestValidUser_ChecksAvailability(t *testing.T) {
	r, _ := newTestEnv(t, chartMux(nil))

	w := doJSON(t, r, http.MethodPost, "/api/v1/valid_user", map[string]string{"username": "dora"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Identifier is available", decodeBody(t, w)["message"])

	w = doJSON(t, r, http.MethodPost, "/api/v1/signup", map[string]string{
		"username": "dora", "email": "dora@example.com", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/valid_user", map[string]string{"username": "dora"}, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Identifier already exists", decodeBody(t, w)["message"])

	// 邮箱也可用作标识符
	w = doJSON(t, r, http.MethodPost, "/api/v1/valid_user", map[string]string{"email": "dora@example.com"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/valid_user", map[string]string{}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username or Email is required", decodeBody(t, w)["message"])
}

func TestAuthMiddleware_RejectsMissingAndBadTokens(t *testing.T) {
	r, _ := newTestEnv(t, chartMux(nil))

	w := doJSON(t, r, http.MethodPost, "/api/v1/logout", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication token is required", decodeBody(t, w)["message"])

	w = doJSON(t, r, http.MethodPost, "/api/v1/logout", nil, map[string]string{
		"Authorization": "Bearer not.a.token",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", decodeBody(t, w)["message"])
}

func TestValidateToken_RejectsTampering(t *testing.T) {
	_, ok := handler.ValidateToken("garbage")
	assert.False(t, ok)
	_, ok = handler.ValidateToken("1.2")
	assert.False(t, ok)
	// 签名对不上
	_, ok = handler.ValidateToken("1.1700000000.deadbeef")
	assert.False(t, ok)
}
