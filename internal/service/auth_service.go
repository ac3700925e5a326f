package service

import (
	"time"

	"github.com/spedigo-next/internal/config"
	"github.com/spedigo-next/internal/models"
	"github.com/spedigo-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates ops API operators.
type AuthService struct {
	cfg          *config.Config
	operatorRepo repository.OperatorRepository
}

// NewAuthService creates the auth service.
func NewAuthService(cfg *config.Config, operatorRepo repository.OperatorRepository) *AuthService {
	return &AuthService{
		cfg:          cfg,
		operatorRepo: operatorRepo,
	}
}

// HashPassword hashes a password with bcrypt.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a password against its hash.
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// JWTClaims operator token claims.
type JWTClaims struct {
	OperatorID   uint   `json:"operator_id"`
	Username     string `json:"username"`
	TokenVersion int    `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateJWT issues a signed token for an operator.
func (s *AuthService) GenerateJWT(operator *models.Operator) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)

	claims := JWTClaims{
		OperatorID:   operator.ID,
		Username:     operator.Username,
		TokenVersion: operator.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseJWT validates a token signature and expiry and returns its claims.
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidCredentials
}

// ValidateClaims checks token-version revocation against the operator row.
func (s *AuthService) ValidateClaims(claims *JWTClaims) (*models.Operator, error) {
	operator, err := s.operatorRepo.GetByID(claims.OperatorID)
	if err != nil {
		return nil, err
	}
	if operator == nil {
		return nil, ErrNotFound
	}
	if operator.TokenVersion != claims.TokenVersion {
		return nil, ErrTokenRevoked
	}
	if operator.TokenInvalidBefore != nil && claims.IssuedAt != nil &&
		claims.IssuedAt.Time.Before(*operator.TokenInvalidBefore) {
		return nil, ErrTokenRevoked
	}
	return operator, nil
}

// Login authenticates an operator and issues a token.
func (s *AuthService) Login(username, password string) (*models.Operator, string, time.Time, error) {
	operator, err := s.operatorRepo.GetByUsername(username)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if operator == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if err := s.VerifyPassword(operator.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(operator)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	if err := s.operatorRepo.TouchLogin(operator.ID, time.Now()); err != nil {
		return nil, "", time.Time{}, err
	}

	return operator, token, expiresAt, nil
}

// ChangePassword rotates an operator password and revokes outstanding tokens.
func (s *AuthService) ChangePassword(operatorID uint, oldPassword, newPassword string) error {
	operator, err := s.operatorRepo.GetByID(operatorID)
	if err != nil {
		return err
	}
	if operator == nil {
		return ErrNotFound
	}

	if err := s.VerifyPassword(operator.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}

	hashedPassword, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	operator.PasswordHash = hashedPassword
	operator.TokenVersion++
	operator.TokenInvalidBefore = &now
	return s.operatorRepo.Update(operator)
}
