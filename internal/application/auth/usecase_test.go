package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/pkg/jwt"
)

const secret = "test-secret"

func newAuth() *auth.AuthUseCase {
	store := memory.New()
	return auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "pos-api"})
}

func TestRegisterYLogin(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()

	user, err := uc.RegisterUser(ctx, dto.CreateUserRequest{Email: "Marie@Shop.be", Password: "secret123", Role: entity.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, "marie@shop.be", user.Email)
	assert.Equal(t, "marie@shop.be", user.Name)

	resp, err := uc.Login(ctx, dto.LoginRequest{Email: "marie@shop.be", Password: "secret123"})
	require.NoError(t, err)
	claims, err := jwt.Parse(secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, entity.RoleManager, claims.Role)
}

func TestRegisterUser_Rechazos(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	_, err := uc.RegisterUser(ctx, dto.CreateUserRequest{Email: "a@b.be", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.RegisterUser(ctx, dto.CreateUserRequest{Email: "a@b.be", Password: "secret123", Role: "bodeguero"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RegisterUser(ctx, dto.CreateUserRequest{Email: "a@b.be", Password: "secret123"})
	require.NoError(t, err)
	_, err = uc.RegisterUser(ctx, dto.CreateUserRequest{Email: "A@b.be", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	_, err := uc.RegisterUser(ctx, dto.CreateUserRequest{Email: "a@b.be", Password: "secret123"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@b.be", Password: "wrong-pass"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@b.be", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
