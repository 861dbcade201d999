package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"moneytracker/internal/core"
)

const (
	MinPasswordLength = 8
	MinUsernameLength = 3
	MaxUsernameLength = 150
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrInvalidUsername    = fmt.Errorf("username must be %d-%d characters of letters, digits and @.+-_", MinUsernameLength, MaxUsernameLength)
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9@.+_-]+$`)

// UserStorage is the user persistence surface.
type UserStorage interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
	GetUserByID(ctx context.Context, id string) (core.User, error)
}

// PasswordAuthenticator implements username and password authentication
// using bcrypt hashes.
type PasswordAuthenticator struct {
	storage UserStorage
	cost    int
}

func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
		cost:    bcrypt.DefaultCost,
	}
}

func ValidateUsername(username string) error {
	if n := len(username); n < MinUsernameLength || n > MaxUsernameLength || !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates an account. Usernames are unique regardless of case.
func (a *PasswordAuthenticator) Register(ctx context.Context, username, password string) (core.User, error) {
	username = strings.TrimSpace(username)
	errs := core.ValidationErrors{}
	if err := ValidateUsername(username); err != nil {
		errs.Add("username", err.Error())
	}
	if err := ValidatePassword(password); err != nil {
		errs.Add("password", err.Error())
	}
	if err := errs.Err(); err != nil {
		return core.User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := a.storage.CreateUser(ctx, core.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hashed),
	})
	if err != nil {
		if errors.Is(err, core.ErrUsernameTaken) {
			return core.User{}, core.ValidationErrors{"username": core.ErrUsernameTaken.Error()}
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate returns ErrInvalidCredentials for both unknown users and
// wrong passwords.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, password string) (core.User, error) {
	user, err := a.storage.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, ErrInvalidCredentials
		}
		return core.User{}, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return core.User{}, ErrInvalidCredentials
	}
	return user, nil
}
