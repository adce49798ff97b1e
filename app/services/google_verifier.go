// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Identity verification error constants
var (
	ErrIdentityTokenInvalid     = errors.New("identity token is invalid")
	ErrIdentityEmailMissing     = errors.New("identity token carries no email")
	ErrIdentityEmailNotVerified = errors.New("identity email is not verified")
)

// GoogleIdentity holds the verified claims extracted from a Google ID token
type GoogleIdentity struct {
	Subject       string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// IdentityVerifier verifies a federated ID token and extracts the identity claims
type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*GoogleIdentity, error)
}

// GoogleVerifier verifies Google-issued ID tokens against the Google OIDC issuer
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier creates a verifier bound to the given OAuth client ID.
// Provider discovery hits Google's well-known configuration endpoint once.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	provider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize google oidc provider: %w", err)
	}

	return &GoogleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Verify validates the raw ID token signature, issuer, audience and expiry,
// then extracts the profile claims.
func (v *GoogleVerifier) Verify(ctx context.Context, rawIDToken string) (*GoogleIdentity, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, ErrIdentityTokenInvalid
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, ErrIdentityTokenInvalid
	}

	if claims.Email == "" {
		return nil, ErrIdentityEmailMissing
	}
	if !claims.EmailVerified {
		return nil, ErrIdentityEmailNotVerified
	}

	return &GoogleIdentity{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		Picture:       claims.Picture,
		EmailVerified: claims.EmailVerified,
	}, nil
}
