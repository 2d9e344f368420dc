package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
)

func newAuthFixture() (*AuthService, *stubUserRepo) {
	users := newStubUserRepo()
	svc := NewAuthService(users, NopRecorder{}, "test-secret", 8*time.Hour)
	return svc, users
}

func TestCreateUserAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()

	created, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Email:     "ana@example.com",
		FirstName: "Ana",
		LastName:  "Reyes",
		Password:  "correct horse",
		Role:      "staff",
		CreatedBy: "U-0",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ExternalID)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "ana@example.com", Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ExternalID, resp.User.ExternalID)
	assert.Equal(t, int((8 * time.Hour).Seconds()), resp.ExpiresIn)

	token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, created.ExternalID, claims["sub"])
	assert.Equal(t, "staff", claims["role"])
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture()
	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Email: "ana@example.com", FirstName: "Ana", LastName: "Reyes",
		Password: "correct horse", Role: "staff", CreatedBy: "U-0",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email: "ana@example.com", Password: "wrong",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email: "nobody@example.com", Password: "correct horse",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	req := dto.CreateUserRequest{
		Email: "ana@example.com", FirstName: "Ana", LastName: "Reyes",
		Password: "correct horse", Role: "staff", CreatedBy: "U-0",
	}
	_, err := svc.CreateUser(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), req)
	require.ErrorIs(t, err, ErrConflict)
}
