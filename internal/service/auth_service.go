package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"parkease/internal/db"
	apperrors "parkease/internal/errors"
	"parkease/internal/repository"
)

type AuthService interface {
	Register(username, email, phone, password string) (*db.User, string, error)
	Login(username, password string) (*db.User, string, error)
}

type authService struct {
	repo *repository.UserRepository
}

func NewAuthService(repo *repository.UserRepository) AuthService {
	return &authService{repo: repo}
}

func (s *authService) Register(username, email, phone, password string) (*db.User, string, error) {
	if username == "" || email == "" {
		return nil, "", apperrors.Validation("username and email are required")
	}
	if len(password) < 8 {
		return nil, "", apperrors.Validation("password must be at least 8 characters long")
	}

	if existing, err := s.repo.GetByUsername(username); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", apperrors.Validation("username already exists")
	}
	if existing, err := s.repo.GetByEmail(email); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", apperrors.Validation("email already registered")
	}

	user, err := s.repo.Create(username, email, phone, password, db.RoleUser)
	if err != nil {
		return nil, "", err
	}
	token, err := issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Login(username, password string) (*db.User, string, error) {
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", apperrors.Authorization("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.Authorization("invalid credentials")
	}
	token, err := issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func issueToken(user *db.User) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET not set")
	}
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
