package service_test

import (
	"testing"

	"stock-advisor-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupLogin_RoundTrip(t *testing.T) {
	initService(t, chartMux(nil, nil), defaultSimConfig())

	id, err := service.Signup("frank", "frank@example.com", "secret123")
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	// 用户名或邮箱都能登录
	user, err := service.Login("frank", "secret123")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "frank@example.com", user.Email)

	user, err = service.Login("frank@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	initService(t, chartMux(nil, nil), defaultSimConfig())

	_, err := service.Signup("gina", "gina@example.com", "secret123")
	require.NoError(t, err)

	_, err = service.Login("gina", "wrongpass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	// 不存在的用户报同样的错，不暴露账号是否存在
	_, err = service.Login("nobody", "secret123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestSignup_DuplicateIdentifier(t *testing.T) {
	initService(t, chartMux(nil, nil), defaultSimConfig())

	_, err := service.Signup("henry", "henry@example.com", "secret123")
	require.NoError(t, err)

	_, err = service.Signup("henry", "other@example.com", "secret123")
	assert.ErrorIs(t, err, service.ErrIdentifierTaken)
	_, err = service.Signup("other", "henry@example.com", "secret123")
	assert.ErrorIs(t, err, service.ErrIdentifierTaken)
}

func TestIdentifierAvailable(t *testing.T) {
	initService(t, chartMux(nil, nil), defaultSimConfig())

	available, err := service.IdentifierAvailable("iris")
	require.NoError(t, err)
	assert.True(t, available)

	_, err = service.Signup("iris", "iris@example.com", "secret123")
	require.NoError(t, err)

	available, err = service.IdentifierAvailable("iris")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = service.IdentifierAvailable("iris@example.com")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestLogin_TruncatesOverlongPassword(t *testing.T) {
	initService(t, chartMux(nil, nil), defaultSimConfig())

	// bcrypt只看前72字节，第73字节起的差异不影响校验
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	_, err := service.Signup("judy", "judy@example.com", string(long))
	require.NoError(t, err)

	_, err = service.Login("judy", string(long[:72]))
	assert.NoError(t, err)
}
