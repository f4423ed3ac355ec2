package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, expired, or fails signature,
	// issuer, audience or algorithm checks.
	ErrInvalidToken = errors.New("invalid token")
)

// SessionClaims holds JWT claims for a company session token. Subject is the account id.
type SessionClaims struct {
	jwt.RegisteredClaims
	CompanyID string `json:"company_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}

// Identity is the account a validated token asserts.
type Identity struct {
	AccountID string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// TokenProvider issues and validates stateless session JWTs. It signs with HS256 over a
// shared secret, or with RS256/ES256 when constructed from a key pair.
type TokenProvider struct {
	method    jwt.SigningMethod
	signKey   interface{}
	verifyKey interface{}
	issuer    string
	audience  string
	ttl       time.Duration
	nowF      func() time.Time
}

// NewHMACTokenProvider returns a TokenProvider that signs HS256 with secret.
func NewHMACTokenProvider(secret []byte, issuer, audience string, ttl time.Duration) *TokenProvider {
	return &TokenProvider{
		method:    jwt.SigningMethodHS256,
		signKey:   secret,
		verifyKey: secret,
		issuer:    issuer,
		audience:  audience,
		ttl:       ttl,
		nowF:      time.Now,
	}
}

// NewTokenProvider returns a TokenProvider that signs with the given private key (RS256 or ES256).
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, ttl time.Duration) (*TokenProvider, error) {
	var method jwt.SigningMethod
	switch privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return nil, ErrInvalidKey
	}
	if KeyAlg(publicKey) != method.Alg() {
		return nil, ErrInvalidKey
	}
	return &TokenProvider{
		method:    method,
		signKey:   privateKey,
		verifyKey: publicKey,
		issuer:    issuer,
		audience:  audience,
		ttl:       ttl,
		nowF:      time.Now,
	}, nil
}

// TTL returns the lifetime of issued tokens.
func (p *TokenProvider) TTL() time.Duration {
	return p.ttl
}

// Issue signs a session token for the account. Returns the token and its expiry.
func (p *TokenProvider) Issue(accountID, email, name string) (token string, expiresAt time.Time, err error) {
	now := p.nowF().UTC().Truncate(time.Second)
	expiresAt = now.Add(p.ttl)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		CompanyID: accountID,
		Email:     email,
		Name:      name,
	}
	token, err = jwt.NewWithClaims(p.method, claims).SignedString(p.signKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Validate parses and validates the token (algorithm, signature, exp, iss, aud) with no clock skew.
func (p *TokenProvider) Validate(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != p.method.Alg() {
			return nil, ErrInvalidToken
		}
		return p.verifyKey, nil
	},
		jwt.WithValidMethods([]string{p.method.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.nowF),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	id := &Identity{
		AccountID: claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
