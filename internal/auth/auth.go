package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid login credentials")
	ErrEmailExists     = errors.New("email already registered")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidToken    = errors.New("invalid access token")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether email looks like an address.
func ValidEmail(email string) bool {
	return len(email) >= 5 && len(email) <= 254 && emailRegex.MatchString(email)
}

// ValidateNewUser checks the fields of an account before it is created.
func ValidateNewUser(email, fullName, password string) error {
	if !ValidEmail(email) {
		return fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(fullName)); n < 2 || n > 100 {
		return fmt.Errorf("%w: full name must be 2-100 characters", ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(password); n < 6 || n > 72 {
		return fmt.Errorf("%w: password must be 6-72 characters", ErrInvalidInput)
	}
	return nil
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPasswordHash compares a bcrypt hash with a plain password.
func CheckPasswordHash(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Claims are carried by access tokens issued by the SQL backends.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	Now    func() time.Time
}

// NewTokenIssuer returns an issuer for secret with the given token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		Secret: []byte(secret),
		TTL:    ttl,
		Issuer: "asa-sports-blog",
		Now:    time.Now,
	}
}

func (ti *TokenIssuer) now() time.Time {
	if ti.Now == nil {
		return time.Now()
	}
	return ti.Now()
}

// Issue returns a signed token for the session and its expiry.
func (ti *TokenIssuer) Issue(userID, sessionID string) (string, time.Time, error) {
	if len(ti.Secret) == 0 {
		return "", time.Time{}, errors.New("auth: token secret is not configured")
	}
	now := ti.now()
	expires := now.Add(ti.TTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    ti.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		SessionID: sessionID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies token and returns its claims. Expired or tampered tokens
// yield ErrInvalidToken.
func (ti *TokenIssuer) Parse(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return ti.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ti.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
