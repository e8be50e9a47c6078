package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const TokenTypeSession = "session"

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidIssuer    = errors.New("invalid issuer")
	ErrInvalidTokenType = errors.New("invalid token type")
)

// Claims extends jwt.RegisteredClaims with the token type. Subject is the
// session ID.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

type Manager struct {
	signingKey []byte
	issuer     string
	sessionTTL time.Duration
}

func NewManager(signingKey string, issuer string, sessionTTL time.Duration) *Manager {
	return &Manager{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		sessionTTL: sessionTTL,
	}
}

// IssueSession starts a new session and returns its ID with a signed token.
func (m *Manager) IssueSession() (uuid.UUID, string, error) {
	sessionID := uuid.New()
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.sessionTTL)),
			ID:        uuid.New().String(),
		},
		TokenType: TokenTypeSession,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return uuid.Nil, "", err
	}
	return sessionID, signed, nil
}

// Validate parses a session token and returns its session ID.
func (m *Manager) Validate(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.signingKey, nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	if claims.Issuer != m.issuer {
		return uuid.Nil, ErrInvalidIssuer
	}
	if claims.TokenType != TokenTypeSession {
		return uuid.Nil, ErrInvalidTokenType
	}
	return uuid.Parse(claims.Subject)
}
