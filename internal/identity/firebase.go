package identity

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

// FirebaseProvider verifies Firebase ID tokens and reads Firebase user records
type FirebaseProvider struct {
	client *auth.Client
}

func NewFirebaseProvider(client *auth.Client) *FirebaseProvider {
	return &FirebaseProvider{client: client}
}

func (p *FirebaseProvider) Verify(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	decoded, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &Principal{UID: decoded.UID, Claims: decoded.Claims}, nil
}

func (p *FirebaseProvider) LookupProfile(ctx context.Context, principal *Principal) (*Profile, error) {
	record, err := p.client.GetUser(ctx, principal.UID)
	if err != nil {
		return nil, fmt.Errorf("get firebase user %s: %w", principal.UID, err)
	}

	profile := &Profile{}
	if record.UserInfo != nil {
		profile.Email = record.UserInfo.Email
		profile.PhotoURL = record.UserInfo.PhotoURL
		profile.FirstName, profile.LastName = splitDisplayName(record.UserInfo.DisplayName)
	}
	return profile, nil
}
