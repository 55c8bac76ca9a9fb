package util

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity fields the API reads from a bearer token.
// Subject is the user's open ID.
type Claims struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

func parsePublicKey(pemKey string) (any, error) {
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, errors.New("failed to decode PEM block containing public key")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return pub, nil
}

// ParseRSAPublicKey parses a PEM-encoded RSA public key.
func ParseRSAPublicKey(pemKey string) (*rsa.PublicKey, error) {
	pub, err := parsePublicKey(pemKey)
	if err != nil {
		return nil, err
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return rsaPub, nil
}

// ParseECDSAPublicKey parses a PEM-encoded ECDSA public key.
func ParseECDSAPublicKey(pemKey string) (*ecdsa.PublicKey, error) {
	pub, err := parsePublicKey(pemKey)
	if err != nil {
		return nil, err
	}
	ecdsaPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not ECDSA")
	}
	return ecdsaPub, nil
}

var (
	hmacMethods  = []string{"HS256", "HS384", "HS512"}
	rsaMethods   = []string{"RS256", "RS384", "RS512"}
	ecdsaMethods = []string{"ES256", "ES384", "ES512"}
)

// Verifier checks bearer tokens against one configured key. The accepted
// algorithm family follows the key: a PEM public key admits only RS* or ES*,
// anything else is an HMAC secret and admits only HS*. The token header never
// selects the key type.
type Verifier struct {
	key     any
	methods []string
}

// NewVerifier classifies keyMaterial once.
func NewVerifier(keyMaterial string) (*Verifier, error) {
	if keyMaterial == "" {
		return nil, errors.New("empty JWT key material")
	}
	if block, _ := pem.Decode([]byte(keyMaterial)); block == nil {
		return &Verifier{key: []byte(keyMaterial), methods: hmacMethods}, nil
	}
	pub, err := parsePublicKey(keyMaterial)
	if err != nil {
		return nil, err
	}
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return &Verifier{key: k, methods: rsaMethods}, nil
	case *ecdsa.PublicKey:
		return &Verifier{key: k, methods: ecdsaMethods}, nil
	default:
		return nil, fmt.Errorf("unsupported public key type %T", pub)
	}
}

// Verify checks signature, algorithm and expiry and returns the claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return v.key, nil },
		jwt.WithValidMethods(v.methods),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// ValidateJWT verifies tokenString against keyMaterial. Callers that check
// many tokens should build a Verifier once.
func ValidateJWT(tokenString string, keyMaterial string) (*Claims, error) {
	v, err := NewVerifier(keyMaterial)
	if err != nil {
		return nil, err
	}
	return v.Verify(tokenString)
}

// IssueHS256 signs a development token for the given subject.
func IssueHS256(secret, subject, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
