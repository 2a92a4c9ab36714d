package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"acervo/internal/repository"
	"acervo/pkg/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired session token")
	ErrEmailDomain        = errors.New("email must belong to an institutional domain")
	ErrEmailTaken         = errors.New("email already registered")
)

// Argon2id parameters (tuned for server-side hashing).
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

// Institutional domains accepted on registration.
var allowedEmailDomains = []string{"uenf.br", "pq.uenf.br"}

// AuthService defines authentication operations.
type AuthService interface {
	// Register creates a new account with secure password hashing. Only
	// institutional email addresses are accepted.
	Register(ctx context.Context, name, email, password string) (*model.User, error)

	// Login authenticates the account and returns a signed session token.
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)

	// Verify parses and validates a session token, returning its account.
	Verify(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	users   repository.UserRepository
	signKey []byte
	ttl     time.Duration
}

// NewAuthService constructs an AuthService signing sessions with the given
// key for the given lifetime.
func NewAuthService(users repository.UserRepository, signKey []byte, ttl time.Duration) AuthService {
	return &authService{users: users, signKey: signKey, ttl: ttl}
}

// HashPassword derives Argon2id password material with a fresh random salt.
func HashPassword(password string) (hash, salt []byte, err error) {
	salt = make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen), salt, nil
}

func verifyPassword(password string, salt, expected []byte) bool {
	got := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(got, expected) == 1
}

func allowedDomain(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range allowedEmailDomains {
		if domain == d {
			return true
		}
	}
	return false
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	if !allowedDomain(email) {
		return nil, ErrEmailDomain
	}
	if _, err := s.users.FindCredential(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, salt, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.users.Create(ctx, &repository.Credential{
		User: model.User{
			ID:        uuid.New().String(),
			Name:      name,
			Email:     email,
			Role:      model.RoleUser,
			CreatedAt: time.Now().UTC(),
		},
		PasswordHash: hash,
		Salt:         salt,
	})
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	cred, err := s.users.FindCredential(ctx, email)
	if err != nil {
		// Hide whether the account exists.
		return "", nil, ErrInvalidCredentials
	}
	if !verifyPassword(password, cred.Salt, cred.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.issueToken(cred.User.ID)
	if err != nil {
		return "", nil, err
	}
	u := cred.User
	return token, &u, nil
}

func (s *authService) Verify(ctx context.Context, token string) (*model.User, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.signKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// issueToken creates a signed HS256 JWT for the given subject.
func (s *authService) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
}
