package services

import (
	"context"
	"log"

	"gorm.io/gorm"

	"bookstore/internal/auth"
	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// TokenPair bundles freshly minted access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// ─── Service Interface ────────────────────────────────────────────────────────

// AuthService owns credential verification, token issuance, principal
// resolution, and the Google identity bridge.
type AuthService interface {
	Register(email, password string, fullName *string) (*models.User, *TokenPair, error)
	Login(email, password string) (*models.User, *TokenPair, error)
	Refresh(refreshToken string) (*models.User, *TokenPair, error)
	GoogleSignIn(ctx context.Context, idToken string) (*models.User, *TokenPair, error)

	// ResolvePrincipal turns a bearer access token into the acting user. The
	// active flag is always re-read from storage, never trusted from claims.
	ResolvePrincipal(token string) (*models.User, error)
	RequireAdmin(user *models.User) error
}

type authService struct {
	db       *gorm.DB
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
	verifier auth.IdentityVerifier

	// googleAudience is the expected ID-token audience; empty disables the bridge.
	googleAudience string
}

func NewAuthService(
	db *gorm.DB,
	userRepo repositories.UserRepository,
	tokens *auth.TokenManager,
	verifier auth.IdentityVerifier,
	googleAudience string,
) AuthService {
	return &authService{
		db:             db,
		userRepo:       userRepo,
		tokens:         tokens,
		verifier:       verifier,
		googleAudience: googleAudience,
	}
}

func (s *authService) issuePair(user *models.User) (*TokenPair, error) {
	access, refresh, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// ─── Password Accounts ────────────────────────────────────────────────────────

func (s *authService) Register(email, password string, fullName *string) (*models.User, *TokenPair, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		IsActive:     true,
	}
	if err := s.userRepo.Create(nil, user); err != nil {
		if isUniqueViolation(err) {
			return nil, nil, ErrEmailTaken
		}
		log.Printf("[ERROR] Register: failed to create user %s: %v", email, err)
		return nil, nil, err
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[INFO] Register: created user %s (id=%s)", user.Email, user.ID)
	return user, pair, nil
}

func (s *authService) Login(email, password string) (*models.User, *TokenPair, error) {
	user, err := s.userRepo.GetByEmail(nil, email)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrInactiveUser
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates the token pair. The presented refresh token is not revoked;
// it stays cryptographically valid until its natural expiry.
func (s *authService) Refresh(refreshToken string) (*models.User, *TokenPair, error) {
	claims, err := s.tokens.Decode(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	if err := auth.RequireKind(claims, auth.TokenKindRefresh); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetByID(nil, claims.Subject)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrInactiveUser
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, ErrInactiveUser
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// ─── Google Bridge ────────────────────────────────────────────────────────────

// GoogleSignIn verifies a Google ID token and maps it to a local user,
// creating one on first sign-in. Profile fields from Google win over stored
// values (last-write-wins, no conflict detection).
func (s *authService) GoogleSignIn(ctx context.Context, idToken string) (*models.User, *TokenPair, error) {
	if s.googleAudience == "" {
		return nil, nil, ErrGoogleNotConfigured
	}

	claims, err := s.verifier.Verify(ctx, idToken, s.googleAudience)
	if err != nil {
		return nil, nil, err
	}
	if err := auth.RequireVerifiedEmail(claims); err != nil {
		return nil, nil, err
	}

	user, err := s.resolveOrCreateGoogleUser(claims)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, ErrInactiveUser
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *authService) resolveOrCreateGoogleUser(claims *auth.GoogleClaims) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(nil, claims.Email)
	if err == nil {
		updated := false
		if claims.Name != "" && (user.FullName == nil || *user.FullName != claims.Name) {
			user.FullName = &claims.Name
			updated = true
		}
		if claims.Picture != "" && (user.AvatarURL == nil || *user.AvatarURL != claims.Picture) {
			user.AvatarURL = &claims.Picture
			updated = true
		}
		if updated {
			if err := s.userRepo.Update(nil, user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	// First sign-in: the random password is never exposed; it only exists so
	// the account shape matches password-based accounts.
	hash, err := auth.HashPassword(auth.RandomPassword())
	if err != nil {
		return nil, err
	}
	user = &models.User{
		Email:        claims.Email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if claims.Name != "" {
		user.FullName = &claims.Name
	}
	if claims.Picture != "" {
		user.AvatarURL = &claims.Picture
	}

	if err := s.userRepo.Create(nil, user); err != nil {
		if isUniqueViolation(err) {
			// Lost a first-sign-in race; the row now exists.
			return s.userRepo.GetByEmail(nil, claims.Email)
		}
		return nil, err
	}
	log.Printf("[INFO] GoogleSignIn: created user %s (id=%s)", user.Email, user.ID)
	return user, nil
}

// ─── Principal Resolution ─────────────────────────────────────────────────────

func (s *authService) ResolvePrincipal(token string) (*models.User, error) {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireKind(claims, auth.TokenKindAccess); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(nil, claims.Subject)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInactiveUser
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

func (s *authService) RequireAdmin(user *models.User) error {
	if !user.IsAdmin {
		return ErrAdminRequired
	}
	return nil
}
