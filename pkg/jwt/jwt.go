package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token süreleri
const (
	TokenExpiryLogin = 7 * 24 * time.Hour
	TokenExpiryReset = 15 * time.Minute
)

const (
	TokenTypeSession = "session"
	TokenTypeReset   = "password_reset"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewManager(secret, issuer string) *Manager {
	return &Manager{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

func (m *Manager) GenerateToken(email string, userID uint) (string, error) {
	return m.sign(email, userID, TokenTypeSession, TokenExpiryLogin)
}

func (m *Manager) GenerateResetToken(email string, userID uint) (string, error) {
	return m.sign(email, userID, TokenTypeReset, TokenExpiryReset)
}

func (m *Manager) sign(email string, userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken imzayı, süreyi ve token tipini kontrol eder.
func (m *Manager) ValidateToken(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Type != tokenType || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
