package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"docsum/internal/domain"
)

const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountNotLinked is returned when the email belongs to a user
	// registered through another provider.
	ErrAccountNotLinked = errors.New("email is registered with another sign-in method")
)

type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, u domain.User) error
}

type Service struct {
	store      UserStore
	secret     []byte
	sessionTTL time.Duration
	hashCost   int
	now        func() time.Time
	log        *slog.Logger
}

func NewService(store UserStore, secret []byte, sessionTTL time.Duration, log *slog.Logger) (*Service, error) {
	if len(secret) < minSecretLen {
		return nil, errShortSecret
	}

	return &Service{
		store:      store,
		secret:     secret,
		sessionTTL: sessionTTL,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
		log:        log,
	}, nil
}

func (s *Service) Secret() []byte {
	return s.secret
}

func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// SignInWithCredentials registers an unseen email with the given password,
// and verifies the password for a known one.
func (s *Service) SignInWithCredentials(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}

	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if user == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
		if err != nil {
			return nil, "", fmt.Errorf("hash password: %w", err)
		}

		user, err = s.createUser(ctx, domain.User{
			Email:        email,
			Name:         localPart(email),
			PasswordHash: string(hash),
			Provider:     ProviderCredentials,
		})
		if err != nil {
			return nil, "", err
		}

		// A concurrent registration may have won with a different password.
		if user.PasswordHash != string(hash) {
			if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
				return nil, "", ErrInvalidCredentials
			}
		}
	} else {
		if user.PasswordHash == "" {
			return nil, "", ErrInvalidCredentials
		}

		if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			return nil, "", ErrInvalidCredentials
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// SignInWithOAuth finds the local user by email, creating one on first sight.
// A user registered through another provider is never reused.
func (s *Service) SignInWithOAuth(ctx context.Context, provider string, profile *OAuthUser) (*domain.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		return nil, "", errors.New("provider profile has no email")
	}

	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if user == nil {
		name := strings.TrimSpace(profile.Name)
		if name == "" {
			name = localPart(email)
		}

		user, err = s.createUser(ctx, domain.User{
			Email:    email,
			Name:     name,
			Provider: provider,
		})
		if err != nil {
			return nil, "", err
		}
	}

	if user.Provider != provider || user.PasswordHash != "" {
		s.log.WarnContext(ctx, "OAuth sign-in is refused for an account of another provider",
			"userID", user.ID,
			"provider", provider,
			"userProvider", user.Provider)

		return nil, "", ErrAccountNotLinked
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// createUser inserts u and returns the stored row, which belongs to another
// request if it registered the same email first.
func (s *Service) createUser(ctx context.Context, u domain.User) (*domain.User, error) {
	u.ID = uuid.NewString()
	u.CreatedAt = s.now().UTC()

	createErr := s.store.CreateUser(ctx, u)

	stored, err := s.store.UserByEmail(ctx, u.Email)
	if err != nil {
		return nil, errors.Join(createErr, fmt.Errorf("find user: %w", err))
	}
	if stored == nil {
		if createErr == nil {
			createErr = errors.New("user is missing after insert")
		}
		return nil, fmt.Errorf("create user: %w", createErr)
	}

	if createErr == nil {
		s.log.InfoContext(ctx, "User is registered",
			"userID", stored.ID,
			"provider", stored.Provider)
	}

	return stored, nil
}

func (s *Service) issueToken(user *domain.User) (string, error) {
	token, err := GenerateToken(s.secret, &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}, s.sessionTTL, s.now())
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return token, nil
}

func localPart(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
