package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/joe-hadchity/lescale-pos/internal/checkout"
)

// ErrBadCredentials is returned for a failed terminal login.
var ErrBadCredentials = errors.New("invalid terminal credentials")

// JwtCustomClaims carries the terminal identity inside the session token.
type JwtCustomClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// NewPinChecker builds the manager-PIN capability from the configured code.
// Injected into the checkout machine so policy changes never touch it.
func NewPinChecker(code string) checkout.PinChecker {
	return func(pin string) bool {
		if code == "" {
			return false
		}
		return subtle.ConstantTimeCompare([]byte(pin), []byte(code)) == 1
	}
}

// Service issues terminal session tokens.
type Service struct {
	user   string
	pass   string
	secret []byte
}

func NewService(user, pass, secret string) *Service {
	return &Service{user: user, pass: pass, secret: []byte(secret)}
}

// Login validates the terminal credentials and returns a signed session
// token.
func (s *Service) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.pass)) == 1
	if !userOK || !passOK {
		return "", ErrBadCredentials
	}

	claims := &JwtCustomClaims{
		Name: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24)),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tkn.SignedString(s.secret)
}

// Secret exposes the signing key for the echo-jwt middleware.
func (s *Service) Secret() []byte {
	return s.secret
}
