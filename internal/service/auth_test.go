package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/forgo/hearth/api/internal/model"
	"github.com/forgo/hearth/api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T, m *memStore) (*AuthService, *jwt.Service) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer := jwt.NewTestService(key, "hearth-test", time.Hour)
	return NewAuthService(AuthServiceConfig{
		UserRepo:   memUsers{m},
		AssetRepo:  memAssets{m},
		Signer:     signer,
		BcryptCost: bcrypt.MinCost,
	}), signer
}

func validRegistration() model.RegisterRequest {
	return model.RegisterRequest{
		Email:         "  Robin@Example.com ",
		Password:      "correct horse",
		Color:         "#FF8800",
		PreferredName: "Robin",
	}
}

func TestRegister_IssuesToken(t *testing.T) {
	t.Parallel()
	m := newMemStore()
	svc, signer := newAuthService(t, m)

	resp, err := svc.Register(context.Background(), validRegistration())

	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)

	claims, err := signer.Validate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID())

	u := m.users[resp.UserID]
	assert.Equal(t, "robin@example.com", u.Email)
	assert.Equal(t, "#ff8800", u.Color)
	assert.Equal(t, "Robin", u.Nickname, "nickname defaults to the preferred name")
	assert.NotEqual(t, "correct horse", u.Hash)
	assert.NotNil(t, u.Pronouns)
}

func TestRegister_Rejections(t *testing.T) {
	t.Parallel()
	m := newMemStore()
	svc, _ := newAuthService(t, m)
	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(*model.RegisterRequest)
		wantErr error
	}{
		{"duplicate email", func(r *model.RegisterRequest) {}, ErrEmailAlreadyExists},
		{"bad email", func(r *model.RegisterRequest) { r.Email = "robin" }, ErrInvalidEmail},
		{"short password", func(r *model.RegisterRequest) { r.Email = "x@y.z"; r.Password = "short" }, ErrPasswordTooShort},
		{"bad color", func(r *model.RegisterRequest) { r.Email = "x@y.z"; r.Color = "orange" }, ErrInvalidColor},
		{"missing name", func(r *model.RegisterRequest) { r.Email = "x@y.z"; r.PreferredName = "" }, ErrInvalidName},
		{"unknown avatar", func(r *model.RegisterRequest) { r.Email = "x@y.z"; r.AvatarHash = strPtr("nope") }, ErrInvalidAssetHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegistration()
			tt.mutate(&req)
			_, err := svc.Register(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()
	m := newMemStore()
	svc, _ := newAuthService(t, m)
	reg, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), model.LoginRequest{Email: "ROBIN@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, resp.UserID)

	_, err = svc.Login(context.Background(), model.LoginRequest{Email: "robin@example.com", Password: "wrong horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), model.LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
