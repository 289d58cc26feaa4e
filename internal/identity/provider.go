// Package identity adapts external identity providers. A provider turns a
// bearer token into a Principal and can look up the account profile used
// to seed a local user record on first sync.
package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidToken is returned by Verify for missing, malformed, expired or
// wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Principal is a verified caller as asserted by the provider
type Principal struct {
	UID    string
	Claims map[string]interface{}
}

// Profile is the account data the provider holds for a principal
type Profile struct {
	Email     string
	FirstName string
	LastName  string
	PhotoURL  string
}

// Provider verifies tokens and looks up account profiles
type Provider interface {
	Verify(ctx context.Context, token string) (*Principal, error)
	LookupProfile(ctx context.Context, principal *Principal) (*Profile, error)
}

// splitDisplayName splits "Ada King Lovelace" into "Ada" and "King Lovelace"
func splitDisplayName(name string) (first, last string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
