package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bookmarket/bookmarket/internal/config"
	"github.com/bookmarket/bookmarket/internal/database"
	"github.com/bookmarket/bookmarket/internal/database/users"
	"github.com/bookmarket/bookmarket/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrGoogleSignInDisabled is returned when no token verifier is
	// configured (GOOGLE_CLIENT_ID unset). The route stays registered so
	// clients get a structured error instead of a 404.
	ErrGoogleSignInDisabled = errors.New("google sign-in is not configured")
)

// maxUsernameAttempts bounds the suffix search during username derivation.
// The loop exists for races on the unique index, not for pathological data,
// so a generous bound is fine.
const maxUsernameAttempts = 1000

// Service handles registration, login, and external sign-in.
type Service struct {
	users    *users.Repository
	tokens   *TokenService
	verifier TokenVerifier
	cfg      config.Auth
}

// NewService creates a new authentication service.
func NewService(repo *users.Repository, tokens *TokenService, verifier TokenVerifier, cfg config.Auth) *Service {
	return &Service{
		users:    repo,
		tokens:   tokens,
		verifier: verifier,
		cfg:      cfg,
	}
}

// Register creates a password-backed account and returns it with a signed
// bearer token. The username is derived from the display name (or the email
// local part) and disambiguated with a numeric suffix on collision.
func (s *Service) Register(email, name, password string) (*entities.User, string, error) {
	if email == "" {
		return nil, "", ErrEmailRequired
	}
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, "", ErrEmailInvalid
	}
	if password == "" {
		return nil, "", ErrPasswordRequired
	}

	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check existing email: %w", err)
	}

	passwordHash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, "", err
	}

	user, err := s.createWithDerivedUsername(&entities.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         entities.UserRoleUser,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(email, password string) (*entities.User, string, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	// Accounts created through an external identity provider have no
	// local credential and cannot log in with a password.
	if user.PasswordHash == "" {
		return nil, "", ErrInvalidCredentials
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// GoogleSignIn verifies an external ID token, finds or creates the matching
// account, and issues a bearer token. An existing account with the same
// email is linked to the Google identity; a fresh account has no local
// credential.
func (s *Service) GoogleSignIn(ctx context.Context, idToken string) (*entities.User, string, error) {
	if s.verifier == nil {
		return nil, "", ErrGoogleSignInDisabled
	}

	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.GetByEmail(identity.Email)
	switch {
	case err == nil:
		if user.GoogleID == nil {
			googleID := identity.Subject
			if err := s.users.UpdateProfile(user.ID, map[string]any{"google_id": googleID}); err != nil {
				return nil, "", fmt.Errorf("failed to link google identity: %w", err)
			}
			user.GoogleID = &googleID
		}
	case errors.Is(err, database.ErrNotFound):
		googleID := identity.Subject
		user, err = s.createWithDerivedUsername(&entities.User{
			Email:    identity.Email,
			Name:     identity.Name,
			GoogleID: &googleID,
			Role:     entities.UserRoleUser,
		})
		if err != nil {
			return nil, "", err
		}
	default:
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// GetUserByID resolves a user id to the stored account.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	return s.users.GetByID(id)
}

// SeedAdmin creates the configured admin account if no account with that
// email exists yet. Idempotent across restarts.
func (s *Service) SeedAdmin(email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.users.GetByEmail(email); err == nil {
		return nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return err
	}

	passwordHash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	_, err = s.createWithDerivedUsername(&entities.User{
		Email:        email,
		Name:         "Admin",
		PasswordHash: passwordHash,
		Role:         entities.UserRoleAdmin,
	})
	if err != nil {
		return err
	}
	zap.L().Info("seeded admin account", zap.String("email", email))
	return nil
}

// createWithDerivedUsername inserts the user, deriving the username and
// retrying with the next numeric suffix when the unique index reports a
// collision. Racing the index instead of pre-checking keeps derivation
// correct under concurrent registrations sharing a base name.
func (s *Service) createWithDerivedUsername(user *entities.User) (*entities.User, error) {
	base := DeriveUsernameBase(user.Name, user.Email)

	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		if attempt == 0 {
			user.Username = base
		} else {
			user.Username = base + strconv.Itoa(attempt)
		}

		err := s.users.Create(user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, database.ErrConflict) {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		// The conflict may be the email rather than the username when
		// two registrations race; in that case retrying cannot help.
		if _, lookupErr := s.users.GetByEmail(user.Email); lookupErr == nil {
			return nil, ErrEmailTaken
		}
	}
	return nil, fmt.Errorf("could not derive a unique username from %q", base)
}

// DeriveUsernameBase lower-cases the display name with spaces stripped, or
// falls back to the email's local part when no name was given.
func DeriveUsernameBase(name, email string) string {
	base := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	if base == "" {
		local, _, _ := strings.Cut(email, "@")
		base = strings.ToLower(local)
	}
	return base
}
