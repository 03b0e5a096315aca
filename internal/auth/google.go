package auth

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

var (
	// ErrInvalidAssertion is returned when the Google ID token fails
	// cryptographic verification or the audience does not match.
	ErrInvalidAssertion = errors.New("invalid identity assertion")

	// ErrUnverifiedEmail is returned when Google did not assert that the
	// account email is verified.
	ErrUnverifiedEmail = errors.New("unverified account email")

	// ErrMissingEmailClaim is returned when the assertion carries no email.
	ErrMissingEmailClaim = errors.New("identity assertion missing email claim")
)

// GoogleClaims is the profile subset extracted from a verified ID token.
type GoogleClaims struct {
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// IdentityVerifier verifies a third-party identity assertion against the
// expected audience. Implemented by GoogleVerifier in production and by test
// fakes in the service tests.
type IdentityVerifier interface {
	Verify(ctx context.Context, token, audience string) (*GoogleClaims, error)
}

// GoogleVerifier validates Google ID tokens against Google's public keys.
type GoogleVerifier struct{}

func (GoogleVerifier) Verify(ctx context.Context, token, audience string) (*GoogleClaims, error) {
	payload, err := idtoken.Validate(ctx, token, audience)
	if err != nil {
		return nil, ErrInvalidAssertion
	}

	claims := &GoogleClaims{}
	if v, ok := payload.Claims["email"].(string); ok {
		claims.Email = v
	}
	if v, ok := payload.Claims["email_verified"].(bool); ok {
		claims.EmailVerified = v
	}
	if v, ok := payload.Claims["name"].(string); ok {
		claims.Name = v
	}
	if v, ok := payload.Claims["picture"].(string); ok {
		claims.Picture = v
	}
	return claims, nil
}

// RequireVerifiedEmail rejects assertions whose email Google has not verified
// or that carry no email at all.
func RequireVerifiedEmail(claims *GoogleClaims) error {
	if claims.Email == "" {
		return ErrMissingEmailClaim
	}
	if !claims.EmailVerified {
		return ErrUnverifiedEmail
	}
	return nil
}
