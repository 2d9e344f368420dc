package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/ids"
	"github.com/tddymnbt/CRCMS-API/internal/model"
	"github.com/tddymnbt/CRCMS-API/internal/repository"
)

// ErrInvalidCredentials is returned on any failed login. Deliberately the
// same for unknown email and wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService handles login and user provisioning. Tokens are HS256 JWTs
// carrying the user's external id and role.
type AuthService struct {
	users     repository.UserRepository
	recorder  ActivityRecorder
	jwtSecret []byte
	tokenTTL  time.Duration
	nowFn     nowFunc
}

func NewAuthService(users repository.UserRepository, recorder ActivityRecorder, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		recorder:  recorder,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		nowFn:     time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.nowFn()
	claims := jwt.MapClaims{
		"sub":  user.ExternalID,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		User:        toUserResponse(user),
	}, nil
}

func (s *AuthService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: email %s is already registered", ErrConflict, req.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ExternalID:   ids.New(ids.PrefixUser),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
		CreatedBy:    req.CreatedBy,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.recorder.Record(req.CreatedBy, "users", "create",
		fmt.Sprintf("User %s (%s) created with role %s", user.ExternalID, user.Email, user.Role),
		user.ExternalID)
	resp := toUserResponse(user)
	return &resp, nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ExternalID: u.ExternalID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
	}
}
