package usecase

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/finvault/bankd/internal/domain"
)

const bcryptCost = 10

// Login throttle window settings. The limiter key combines email and caller
// IP so one abusive source cannot lock out a shared address.
const DefaultMaxLoginAttempts = 5

// UserUseCase handles registration, authentication and profile management.
type UserUseCase struct {
	userRepo     UserRepository
	loginLimiter LoginLimiter
	maxAttempts  int64
	idGen        IDGenerator
}

// NewUserUseCase creates a new UserUseCase. loginLimiter may be nil, which
// disables throttling.
func NewUserUseCase(userRepo UserRepository, loginLimiter LoginLimiter, maxAttempts int64, idGen IDGenerator) *UserUseCase {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxLoginAttempts
	}

	return &UserUseCase{
		userRepo:     userRepo,
		loginLimiter: loginLimiter,
		maxAttempts:  maxAttempts,
		idGen:        idGen,
	}
}

// RegisterInput represents input for registering a user.
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	DateOfBirth string
}

// Register creates a new user with a bcrypt-hashed password.
func (uc *UserUseCase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	existing, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uc.idGen.Generate(),
		Email:        input.Email,
		PasswordHash: string(hashed),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		DateOfBirth:  input.DateOfBirth,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// AuthenticateInput represents authentication input. ClientIP feeds the
// throttle key and may be empty.
type AuthenticateInput struct {
	Email    string
	Password string
	ClientIP string
}

// Authenticate verifies credentials, enforcing the keyed attempt limit.
func (uc *UserUseCase) Authenticate(ctx context.Context, input AuthenticateInput) (*domain.User, error) {
	throttleKey := input.Email + "|" + input.ClientIP

	if uc.loginLimiter != nil {
		attempts, err := uc.loginLimiter.Hit(ctx, throttleKey)
		if err != nil {
			return nil, err
		}
		if attempts > uc.maxAttempts {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if uc.loginLimiter != nil {
		if err := uc.loginLimiter.Reset(ctx, throttleKey); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	user.UpdatedAt = now
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// GetProfile retrieves a user by ID, with the password hash stripped.
func (uc *UserUseCase) GetProfile(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// UpdateProfileInput represents input for updating a profile. Empty fields
// are left unchanged.
type UpdateProfileInput struct {
	FirstName   string
	LastName    string
	PhoneNumber string
}

// UpdateProfile updates mutable profile fields.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.PhoneNumber != "" {
		user.PhoneNumber = input.PhoneNumber
	}
	user.UpdatedAt = time.Now().UTC()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// ChangePassword verifies the current password and replaces it.
func (uc *UserUseCase) ChangePassword(ctx context.Context, id, current, next string) error {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return domain.ErrInvalidCredentials
	}

	if err := domain.ValidatePassword(next); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashed)
	user.UpdatedAt = time.Now().UTC()

	return uc.userRepo.Update(ctx, user)
}
