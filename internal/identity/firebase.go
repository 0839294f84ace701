// Package identity wraps Firebase Authentication.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"firebase.google.com/go/v4/auth"
)

// Claims are the identity attributes carried by a verified token or session cookie.
type Claims struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// FirebaseIdentity implements core.IdentityProvider and the middleware's token
// verifier on top of a Firebase Auth client.
type FirebaseIdentity struct {
	client *auth.Client
}

// NewFirebaseIdentity creates a FirebaseIdentity. client must not be nil.
func NewFirebaseIdentity(client *auth.Client) (*FirebaseIdentity, error) {
	if client == nil {
		return nil, errors.New("firebase auth client is not initialized")
	}
	return &FirebaseIdentity{client: client}, nil
}

// VerifyIDToken verifies a Firebase ID token.
func (f *FirebaseIdentity) VerifyIDToken(ctx context.Context, idToken string) (*Claims, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return claimsFromToken(token), nil
}

// VerifySession verifies a session cookie, rejecting revoked sessions.
func (f *FirebaseIdentity) VerifySession(ctx context.Context, cookie string) (*Claims, error) {
	token, err := f.client.VerifySessionCookieAndCheckRevoked(ctx, cookie)
	if err != nil {
		return nil, err
	}
	return claimsFromToken(token), nil
}

// CreateSessionCookie exchanges an ID token for a session cookie.
func (f *FirebaseIdentity) CreateSessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	return f.client.SessionCookie(ctx, idToken, expiresIn)
}

// VerifySessionCookie returns the UID owning a valid session cookie.
func (f *FirebaseIdentity) VerifySessionCookie(ctx context.Context, cookie string) (string, error) {
	claims, err := f.VerifySession(ctx, cookie)
	if err != nil {
		return "", err
	}
	return claims.UID, nil
}

// RevokeRefreshTokens invalidates every session of uid.
func (f *FirebaseIdentity) RevokeRefreshTokens(ctx context.Context, uid string) error {
	return f.client.RevokeRefreshTokens(ctx, uid)
}

// DeleteUser removes the auth account. A missing account is not an error.
func (f *FirebaseIdentity) DeleteUser(ctx context.Context, uid string) error {
	if err := f.client.DeleteUser(ctx, uid); err != nil {
		if auth.IsUserNotFound(err) {
			return nil
		}
		return fmt.Errorf("firebase: delete user '%s': %w", uid, err)
	}
	return nil
}

func claimsFromToken(token *auth.Token) *Claims {
	c := &Claims{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		c.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		c.DisplayName = name
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		c.PhotoURL = picture
	}
	return c
}
