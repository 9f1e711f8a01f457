package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// DefaultTokenTTL is how long an issued token stays valid when no TTL is
// configured
const DefaultTokenTTL = 30 * time.Minute

// Claims is the payload of an issued bearer token
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type TokenOpts struct {
	Secret    string
	Algorithm string // HS256, HS384 or HS512
	TTL       time.Duration
	Now       func() time.Time
}

// TokenIssuer signs and parses bearer tokens with a symmetric secret
type TokenIssuer struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(o *TokenOpts) (*TokenIssuer, error) {
	if o == nil {
		return nil, errors.New("no token options provided")
	}

	if o.Secret == "" {
		return nil, errors.New("no signing secret provided")
	}

	alg := o.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}

	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}

	ttl := o.TTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	if ttl < 0 {
		return nil, errors.New("token ttl must be positive")
	}

	now := o.Now
	if now == nil {
		now = time.Now
	}

	return &TokenIssuer{
		secret: []byte(o.Secret),
		method: method,
		ttl:    ttl,
		now:    now,
	}, nil
}

func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a new token for the user. Every token gets a random ID so two
// logins within the same second never produce the same string.
func (i *TokenIssuer) Issue(userID uint, username string) (string, *Claims, error) {
	jti, err := gonanoid.New()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token ID, %w", err)
	}

	now := i.now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token, %w", err)
	}

	return signed, claims, nil
}

// Parse verifies the signature and expiry of s against the issuer's clock
func (i *TokenIssuer) Parse(s string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(s, &Claims{}, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		return nil, fmt.Errorf("%w, %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
