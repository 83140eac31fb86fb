package services

import (
	"context"
	"testing"
	"time"

	"sacco-hub/internal/adapters/persistence/models"
	"sacco-hub/internal/config"
	"sacco-hub/internal/pkg/jwt"
	"sacco-hub/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRefreshTokenRepo keyed by token hash
type fakeRefreshTokenRepo struct {
	tokens map[string]*models.RefreshToken
	nextID uint
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]*models.RefreshToken), nextID: 1}
}

func (r *fakeRefreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	token.ID = r.nextID
	r.nextID++
	cp := *token
	r.tokens[token.TokenHash] = &cp
	return nil
}

func (r *fakeRefreshTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	t, ok := r.tokens[tokenHash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRefreshTokenRepo) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	t, ok := r.tokens[tokenHash]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllByUserID(ctx context.Context, userID uint) error {
	now := time.Now()
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(ctx context.Context) error {
	for hash, t := range r.tokens {
		if t.IsExpired() {
			delete(r.tokens, hash)
		}
	}
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeRefreshTokenRepo) {
	t.Helper()
	userRepo := newFakeUserRepo()
	tokenRepo := newFakeRefreshTokenRepo()
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	return NewAuthService(userRepo, tokenRepo, cfg), userRepo, tokenRepo
}

func registerTestUser(t *testing.T, svc *AuthService) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &RegisterInput{
		PhoneNumber: "+254712345678",
		FirstName:   "Mary",
		LastName:    "Member",
		Password:    "s3cret-pass",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	resp := registerTestUser(t, svc)
	assert.Equal(t, models.RoleMember, resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// The access token carries the member identity
	claims, err := jwt.ValidateAccessToken(resp.AccessToken, "test-access-secret")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "+254712345678", claims.PhoneNumber)
	assert.Equal(t, models.RoleMember, claims.Role)
}

func TestRegisterRejectsBadPhone(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	for _, phone := range []string{"0712345678", "+0712345678", "254712345678", "+2547"} {
		_, err := svc.Register(context.Background(), &RegisterInput{
			PhoneNumber: phone,
			FirstName:   "Mary",
			LastName:    "Member",
			Password:    "s3cret-pass",
		})
		assert.ErrorIs(t, err, ErrInvalidPhone, "phone %q", phone)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), &RegisterInput{
		PhoneNumber: "+254712345678",
		FirstName:   "Mary",
		LastName:    "Member",
		Password:    "short",
	})
	assert.ErrorIs(t, err, password.ErrPasswordTooShort)
}

func TestRegisterDuplicatePhone(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	registerTestUser(t, svc)

	_, err := svc.Register(context.Background(), &RegisterInput{
		PhoneNumber: "+254712345678",
		FirstName:   "Other",
		LastName:    "Person",
		Password:    "s3cret-pass",
	})
	assert.ErrorIs(t, err, ErrPhoneAlreadyUsed)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	registerTestUser(t, svc)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &LoginInput{PhoneNumber: "+254712345678", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(ctx, &LoginInput{PhoneNumber: "+254712345678", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginInput{PhoneNumber: "+254700000000", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	svc, userRepo, _ := newAuthFixture(t)
	resp := registerTestUser(t, svc)

	user, err := userRepo.GetByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, userRepo.Update(context.Background(), user))

	_, err = svc.Login(context.Background(), &LoginInput{PhoneNumber: "+254712345678", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, _, tokenRepo := newAuthFixture(t)
	resp := registerTestUser(t, svc)
	ctx := context.Background()

	refreshed, err := svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)

	// The old token was rotated out and cannot be replayed
	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// The new one still works
	_, err = svc.RefreshToken(ctx, refreshed.RefreshToken)
	assert.NoError(t, err)

	// Old hash is marked revoked in storage
	old, err := tokenRepo.GetByTokenHash(ctx, password.HashToken(resp.RefreshToken))
	require.NoError(t, err)
	assert.True(t, old.IsRevoked())
}

func TestRefreshTokenGarbage(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.RefreshToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	resp := registerTestUser(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, resp.RefreshToken))
	_, err := svc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Logging out an unknown token still succeeds
	assert.NoError(t, svc.Logout(ctx, "already-gone"))
}

func TestLogoutAll(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	resp := registerTestUser(t, svc)
	ctx := context.Background()

	second, err := svc.Login(ctx, &LoginInput{PhoneNumber: "+254712345678", Password: "s3cret-pass"})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, resp.User.ID))

	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = svc.RefreshToken(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
