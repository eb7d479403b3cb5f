package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the signed payload: sub (name), id (numeric row id),
// exp, plus typ to keep login and verification tokens apart.
type Claims struct {
	ID        int64  `json:"id"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret    []byte
	accessTTL time.Duration
	verifyTTL time.Duration
}

func NewManager(secret string, accessTTL time.Duration, verifyTTL time.Duration) *Manager {
	return &Manager{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		verifyTTL: verifyTTL,
	}
}

// IssueAccessToken signs a login token for an authenticated account.
func (m *Manager) IssueAccessToken(username string, accountID int64) (string, error) {
	return m.issue(username, accountID, "access", m.accessTTL)
}

// IssueVerificationToken signs the token embedded in a verification link.
// The subject is the contact's first name, the id the contact row id.
func (m *Manager) IssueVerificationToken(contactID int64, firstName string) (string, error) {
	return m.issue(firstName, contactID, "verify", m.verifyTTL)
}

func (m *Manager) issue(subject string, id int64, typ string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		ID:        id,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) ParseAndValidate(tokenStr string) (claims *Claims, err error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	// a signature alone is not enough, both payload fields must be present
	if claims.Subject == "" || claims.ID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (m *Manager) VerifyAccessToken(tokenStr string) (*Claims, error) {
	claims, err := m.ParseAndValidate(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "access" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) VerifyVerificationToken(tokenStr string) (*Claims, error) {
	claims, err := m.ParseAndValidate(tokenStr)

	if err != nil {
		return nil, err
	}

	if claims.TokenType != "verify" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
