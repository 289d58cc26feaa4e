package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// JWTProvider accepts HS256 tokens signed with a shared secret. It stands in
// for Firebase in local development and tests; the profile comes from the
// token's own claims.
type JWTProvider struct {
	secret []byte
}

func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret)}
}

func (p *JWTProvider) Verify(_ context.Context, tokenString string) (*Principal, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub := claimString(claims, "sub")
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &Principal{UID: sub, Claims: claims}, nil
}

func (p *JWTProvider) LookupProfile(_ context.Context, principal *Principal) (*Profile, error) {
	email := claimString(principal.Claims, "email")
	if email == "" {
		return nil, errors.New("token carries no email claim")
	}

	profile := &Profile{
		Email:     email,
		FirstName: claimString(principal.Claims, "given_name"),
		LastName:  claimString(principal.Claims, "family_name"),
		PhotoURL:  claimString(principal.Claims, "picture"),
	}
	if profile.FirstName == "" && profile.LastName == "" {
		profile.FirstName, profile.LastName = splitDisplayName(claimString(principal.Claims, "name"))
	}
	return profile, nil
}

// Issue signs a token for uid. Extra claims such as email or name are
// copied into the token.
func (p *JWTProvider) Issue(uid string, extra map[string]interface{}, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": uid,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
