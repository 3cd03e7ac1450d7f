package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"atelier-learning-service/internal/domain"
)

// Session is the explicit current-user context handed to components that act
// on a user's behalf. It is created at sign-in and discarded at sign-out;
// nothing in the service reads an ambient global user.
type Session struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Premium     bool   `json:"premium"`
}

// UserStore abstracts account persistence.
type UserStore interface {
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

// Claims is the JWT payload carried by issued tokens.
type Claims struct {
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	Premium     bool   `json:"premium"`
	jwt.RegisteredClaims
}

// Service issues and verifies sessions backed by a user store.
type Service struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
}

func NewService(users UserStore, secret string, ttl time.Duration) *Service {
	return &Service{users: users, secret: []byte(secret), ttl: ttl}
}

// SignUp validates credentials, stores a bcrypt hash, and signs the user in.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (Session, string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return Session{}, "", fmt.Errorf("email is required")
	}
	if password == "" {
		return Session{}, "", fmt.Errorf("password is required")
	}
	if displayName == "" {
		return Session{}, "", fmt.Errorf("display name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	})
	if err != nil {
		return Session{}, "", err
	}
	return s.issue(user)
}

// SignIn checks the password against the stored hash. Unknown email and wrong
// password both map to ErrInvalidCredentials so the response does not reveal
// which accounts exist.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, string, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return Session{}, "", domain.ErrInvalidCredentials
		}
		return Session{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, "", domain.ErrInvalidCredentials
	}
	return s.issue(user)
}

// Verify parses a token string back into a Session.
func (s *Service) Verify(tokenStr string) (Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Session{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Session{}, fmt.Errorf("unexpected claims type")
	}
	return Session{
		UserID:      claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		Premium:     claims.Premium,
	}, nil
}

func (s *Service) issue(user domain.User) (Session, string, error) {
	now := time.Now()
	claims := &Claims{
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Premium:     user.Premium,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, "", fmt.Errorf("sign token: %w", err)
	}
	return Session{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Premium:     user.Premium,
	}, signed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
