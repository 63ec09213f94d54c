package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	stateIssuer     = "paylands-gateway"
	DefaultStateTTL = 24 * time.Hour
)

var (
	ErrMissingSecret = errors.New("STATE_SECRET is not set")
	ErrInvalidState  = errors.New("invalid state token")
)

// StateClaims binds a buyer return/cancel URL to one local order.
type StateClaims struct {
	OrderID string `json:"order_id"`
	jwt.RegisteredClaims
}

type StateTokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewStateTokens(secret string, ttl time.Duration) (*StateTokens, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}

	return &StateTokens{
		key: []byte(secret),
		ttl: ttl,
		now: time.Now,
	}, nil
}

func (s *StateTokens) Issue(orderID string) (string, error) {
	now := s.now()
	claims := StateClaims{
		OrderID: orderID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    stateIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Parse verifies the token and returns the order id it was issued for.
func (s *StateTokens) Parse(tokenStr string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	token, err := parser.ParseWithClaims(
		tokenStr,
		&StateClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return s.key, nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	claims, ok := token.Claims.(*StateClaims)
	if !ok || !token.Valid || claims.OrderID == "" {
		return "", ErrInvalidState
	}

	return claims.OrderID, nil
}
