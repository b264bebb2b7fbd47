package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
)

func newAuthService() (*Service, *memory.UserRepository, *memory.SessionStore) {
	users := memory.NewUserRepository()
	sessions := memory.NewSessionStore()
	svc := &Service{
		Users:     users,
		Sessions:  sessions,
		Passwords: security.BcryptHasher{Cost: 4},
		Tokens:    security.RandomTokenGenerator{},
	}
	return svc, users, sessions
}

func TestRegister(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterParams{
		Email:    "Amit@Example.com",
		Name:     "Amit",
		Password: "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "amit@example.com", result.User.Email)
	assert.Equal(t, []domainuser.Role{domainuser.RoleTraveler}, result.User.Roles)
	assert.NotEmpty(t, result.Token)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterParams{Email: "amit@example.com", Name: "Amit", Password: "secret-pass"})
		assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
	})
}

func TestRegisterRoles(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	cases := map[string]struct {
		role   domainuser.Role
		want   []domainuser.Role
		outErr error
	}{
		"traveler by default": {role: "", want: []domainuser.Role{domainuser.RoleTraveler}},
		"host":                {role: domainuser.RoleHost, want: []domainuser.Role{domainuser.RoleTraveler, domainuser.RoleHost}},
		"agent":               {role: domainuser.RoleAgent, want: []domainuser.Role{domainuser.RoleTraveler, domainuser.RoleAgent}},
		"admin refused":       {role: domainuser.RoleAdmin, outErr: ErrRoleNotSelfServe},
		"unknown refused":     {role: "superuser", outErr: domainuser.ErrInvalidRole},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			result, err := svc.Register(ctx, RegisterParams{
				Email:    name + "@example.com",
				Name:     "User",
				Password: "secret-pass",
				Role:     tc.role,
			})
			if tc.outErr != nil {
				assert.ErrorIs(t, err, tc.outErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.User.Roles)
		})
	}
}

func TestRegisterShortPassword(t *testing.T) {
	svc, _, _ := newAuthService()
	_, err := svc.Register(context.Background(), RegisterParams{Email: "a@b.c", Name: "A", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestLogin(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterParams{Email: "amit@example.com", Name: "Amit", Password: "secret-pass"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, LoginParams{Email: "amit@example.com", Password: "secret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginParams{Email: "amit@example.com", Password: "wrong-pass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginParams{Email: "nobody@example.com", Password: "secret-pass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
	t.Run("blocked user", func(t *testing.T) {
		user, err := users.ByEmail(ctx, "amit@example.com")
		require.NoError(t, err)
		user.Block(time.Now())
		require.NoError(t, users.Save(ctx, user))

		_, err = svc.Login(ctx, LoginParams{Email: "amit@example.com", Password: "secret-pass"})
		assert.ErrorIs(t, err, ErrUserBlocked)
	})
}

func TestResolveToken(t *testing.T) {
	svc, users, sessions := newAuthService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterParams{Email: "amit@example.com", Name: "Amit", Password: "secret-pass"})
	require.NoError(t, err)

	resolved, err := svc.ResolveToken(ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resolved.User.ID)

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.ResolveToken(ctx, "no-such-token")
		assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	})
	t.Run("blocked user loses sessions", func(t *testing.T) {
		user, err := users.ByID(ctx, reg.User.ID)
		require.NoError(t, err)
		user.Block(time.Now())
		require.NoError(t, users.Save(ctx, user))

		_, err = svc.ResolveToken(ctx, reg.Token)
		assert.ErrorIs(t, err, ErrUserBlocked)

		_, err = sessions.Get(ctx, domainauth.Token(reg.Token))
		assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	})
}

func TestLogout(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterParams{Email: "amit@example.com", Name: "Amit", Password: "secret-pass"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, reg.Token))
	_, err = svc.ResolveToken(ctx, reg.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}
