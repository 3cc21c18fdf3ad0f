package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer    = "studynotes"
	roleAdmin = "admin"
)

// AdminClaims describes the identity extracted from an admin token.
type AdminClaims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Verifier validates HS256 admin tokens.
type Verifier struct {
	secret  []byte
	nowFunc func() time.Time
	parser  *jwt.Parser
}

// NewVerifier creates a Verifier for the shared secret. An empty secret
// yields a verifier that is disabled.
func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret:  []byte(secret),
		nowFunc: time.Now,
		parser:  jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})),
	}
}

// Enabled reports whether a secret is configured.
func (v *Verifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Issue signs an admin token for subject valid for ttl.
func (v *Verifier) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if !v.Enabled() {
		return "", time.Time{}, fmt.Errorf("issue admin token: no secret configured")
	}
	now := v.nowFunc()
	expiresAt := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  subject,
		"iss":  issuer,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
		"role": roleAdmin,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate verifies the token signature, expiry and admin role.
func (v *Verifier) Validate(tokenString string) (AdminClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return AdminClaims{}, ErrUnauthorized
	}

	parsed, err := v.parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return AdminClaims{}, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return AdminClaims{}, ErrUnauthorized
	}

	expFloat, ok := claims["exp"].(float64)
	if !ok {
		return AdminClaims{}, ErrUnauthorized
	}
	exp := time.Unix(int64(expFloat), 0)
	if exp.Before(v.nowFunc()) {
		return AdminClaims{}, ErrUnauthorized
	}

	if role, _ := claims["role"].(string); role != roleAdmin {
		return AdminClaims{}, ErrForbidden
	}

	sub, _ := claims["sub"].(string)
	iat := time.Time{}
	if iatFloat, ok := claims["iat"].(float64); ok {
		iat = time.Unix(int64(iatFloat), 0)
	}

	return AdminClaims{Subject: sub, ExpiresAt: exp, IssuedAt: iat}, nil
}
