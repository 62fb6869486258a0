// Package auth owns credentials and sessions: bcrypt password hashing and
// HS256 bearer tokens. The rest of the system only ever sees a resolved
// user, never a credential.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasktraq/backend/apperr"
	"github.com/tasktraq/backend/models"
	"github.com/tasktraq/backend/store"
)

const minPasswordLength = 6

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type Service struct {
	store    *store.Store
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewService(st *store.Store, secret string, tokenTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		store:    st,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Session is the login result handed back to the client.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func (s *Service) Register(email, password string) (models.User, error) {
	if email == "" || !strings.Contains(email, "@") {
		return models.User{}, apperr.Validation("Invalid email address")
	}
	if len(password) < minPasswordLength {
		return models.User{}, apperr.Validation("Password must be at least 6 characters")
	}
	if _, exists := s.store.FindUserByEmail(email); exists {
		return models.User{}, apperr.Validation("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	created, err := s.store.AddUser(user)
	if err != nil {
		return models.User{}, err
	}

	s.logger.Info("user_registered", zap.String("user_id", user.ID))
	return created, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password produce the same error so the response leaks nothing.
func (s *Service) Login(email, password string) (Session, error) {
	user, ok := s.store.FindUserByEmail(email)
	if !ok {
		return Session{}, apperr.Auth("Invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Session{}, apperr.Auth("Invalid email or password")
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return Session{}, err
	}

	s.logger.Info("user_logged_in", zap.String("user_id", user.ID))
	return Session{UserID: user.ID, Email: user.Email, Token: token}, nil
}

func (s *Service) issueToken(userID string) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ResolveUser maps a bearer token to the user it was issued for.
func (s *Service) ResolveUser(tokenString string) (models.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return models.User{}, apperr.Auth("Invalid or expired token")
	}

	user, ok := s.store.FindUserByID(claims.UserID)
	if !ok {
		return models.User{}, apperr.Auth("User not found")
	}
	return user, nil
}
