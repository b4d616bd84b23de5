package service

import (
	"context"
	"testing"
	"time"

	"lexdraft-backend/models"
	"lexdraft-backend/service/servicetest"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*AuthService, *models.User) {
	t.Helper()
	db := servicetest.New()
	users := db.Stores().Users

	hash, err := HashPassword("senha-forte")
	require.NoError(t, err)
	user := &models.User{Email: "advogada@example.com", PasswordHash: hash, Name: "Dra. Silva"}
	require.NoError(t, users.Create(context.Background(), user))

	return NewAuthService(WithUserRepository(users), WithTokenSecret("test-secret", time.Hour)), user
}

func TestLoginAndVerify(t *testing.T) {
	svc, user := newAuthFixture(t)

	res, err := svc.Login(context.Background(), " Advogada@Example.com ", "senha-forte")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, user.ID, res.User.ID)

	userID, err := svc.VerifyToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), "advogada@example.com", "errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "ninguem@example.com", "senha-forte")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyTokenRejectsExpiredAndForeign(t *testing.T) {
	svc, user := newAuthFixture(t)

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := svc.IssueToken(user)
	require.NoError(t, err)
	svc.now = time.Now

	_, err = svc.VerifyToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService(WithTokenSecret("other-secret", time.Hour))
	foreign, _, err := other.IssueToken(user)
	require.NoError(t, err)
	_, err = svc.VerifyToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsNonUUIDSubject(t *testing.T) {
	svc, _ := newAuthFixture(t)

	claims := JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "admin",
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	id, err := svc.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, uuid.Nil, id)
}
