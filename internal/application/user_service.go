package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"
)

// UserRepository captures the persistence operations needed by the user service.
type UserRepository interface {
	// CreateUserWithWallet inserts the user, their credentials, and an empty
	// active wallet in one store transaction.
	CreateUserWithWallet(ctx context.Context, creds UserCredentials, wallet Wallet) (User, error)
	GetUser(ctx context.Context, collegeID, id string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	SetUserDisabled(ctx context.Context, collegeID, id string, disabled bool) error
	ListUsers(ctx context.Context, collegeID string) ([]User, error)
}

// PasswordHasher derives a stored hash from a plain password. It is satisfied
// by CreatePasswordHash.
type PasswordHasher func(password string) (string, error)

// UserService orchestrates validation, authorization, and persistence for
// user accounts. Creating a user also provisions their wallet.
type UserService struct {
	users        UserRepository
	hashPassword PasswordHasher
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, hash PasswordHasher, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, hash, idGenerator, now, nil)
}

// NewUserServiceWithLogger constructs a user service with a specified logger.
func NewUserServiceWithLogger(users UserRepository, hash PasswordHasher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if hash == nil {
		hash = func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, hashPassword: hash, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser validates input and persists a new user for administrators. The
// user's wallet is created in the same transaction with a zero balance.
func (s *UserService) CreateUser(ctx context.Context, principal Principal, input UserInput) (user User, err error) {
	if s == nil || s.users == nil {
		err = fmt.Errorf("user service not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateUser", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID, "role", string(user.Role)).InfoContext(ctx, "user created")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	normalized := normalizeUserInput(input)
	vErr := validateUserInput(normalized, true)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	hash, err = s.hashPassword(normalized.Password)
	if err != nil {
		return
	}

	now := s.now()
	user = User{
		ID:          s.idGenerator(),
		CollegeID:   principal.CollegeID,
		Email:       normalized.Email,
		DisplayName: normalized.DisplayName,
		Role:        normalized.Role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	wallet := Wallet{
		ID:        s.idGenerator(),
		CollegeID: principal.CollegeID,
		UserID:    user.ID,
		Balance:   0,
		Status:    WalletActive,
		UpdatedAt: now,
	}

	user, err = s.users.CreateUserWithWallet(ctx, UserCredentials{User: user, PasswordHash: hash}, wallet)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// UpdateUser validates input and updates an existing user for administrators.
// The password is left unchanged; only profile fields and the role move.
func (s *UserService) UpdateUser(ctx context.Context, principal Principal, userID string, input UserInput) (user User, err error) {
	if s == nil || s.users == nil {
		err = fmt.Errorf("user service not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateUser",
		"principal_id", principal.UserID,
		"user_id", userID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user updated")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	normalized := normalizeUserInput(input)
	vErr := validateUserInput(normalized, false)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var existing User
	existing, err = s.users.GetUser(ctx, principal.CollegeID, userID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	existing.Email = normalized.Email
	existing.DisplayName = normalized.DisplayName
	existing.Role = normalized.Role
	existing.UpdatedAt = s.now()

	user, err = s.users.UpdateUser(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// DisableUser blocks a user from authenticating. Administrators only.
func (s *UserService) DisableUser(ctx context.Context, principal Principal, userID string) error {
	return s.setDisabled(ctx, principal, userID, true, "DisableUser")
}

// EnableUser restores a disabled user. Administrators only.
func (s *UserService) EnableUser(ctx context.Context, principal Principal, userID string) error {
	return s.setDisabled(ctx, principal, userID, false, "EnableUser")
}

func (s *UserService) setDisabled(ctx context.Context, principal Principal, userID string, disabled bool, operation string) (err error) {
	if s == nil || s.users == nil {
		return fmt.Errorf("user service not configured")
	}

	logger := s.loggerWith(ctx, operation,
		"principal_id", principal.UserID,
		"user_id", userID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update user status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user status updated")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	if err = s.users.SetUserDisabled(ctx, principal.CollegeID, userID, disabled); err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// GetUser returns one user. The user themselves and administrators only.
func (s *UserService) GetUser(ctx context.Context, principal Principal, userID string) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user service not configured")
	}
	if !principal.IsAuthenticated() {
		return User{}, ErrUnauthenticated
	}
	if userID == "" {
		userID = principal.UserID
	}
	if userID != principal.UserID && !principal.IsAdmin() {
		return User{}, ErrUnauthorized
	}

	user, err := s.users.GetUser(ctx, principal.CollegeID, userID)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	return user, nil
}

// ListUsers returns the college's users for administrators, ordered by email.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil || s.users == nil {
		return nil, fmt.Errorf("user service not configured")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}

	users, err := s.users.ListUsers(ctx, principal.CollegeID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	out := make([]User, len(users))
	copy(out, users)

	sort.Slice(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Email, out[j].Email) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Email) < strings.ToLower(out[j].Email)
	})

	return out, nil
}

func normalizeUserInput(input UserInput) UserInput {
	email := strings.TrimSpace(input.Email)
	email = strings.ToLower(email)

	displayName := strings.TrimSpace(input.DisplayName)

	return UserInput{
		Email:       email,
		DisplayName: displayName,
		Role:        input.Role,
		Password:    input.Password,
	}
}

func validateUserInput(input UserInput, requirePassword bool) *ValidationError {
	vErr := &ValidationError{}

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if input.DisplayName == "" {
		vErr.add("display_name", "display name is required")
	}

	if _, ok := ParseRole(string(input.Role)); !ok {
		vErr.add("role", "unknown role")
	}

	if requirePassword {
		if len(input.Password) < 8 {
			vErr.add("password", "password must be at least 8 characters")
		}
	}

	return vErr
}
