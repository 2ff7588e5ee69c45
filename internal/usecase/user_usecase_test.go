package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/finvault/bankd/internal/domain"
	"github.com/finvault/bankd/internal/usecase"
	"github.com/finvault/bankd/internal/usecase/mocks"
)

const testPassword = "Sup3rSecret"

func registerTestUser(t *testing.T, uc *usecase.UserUseCase) *domain.User {
	t.Helper()

	user, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:     "user@example.com",
		Password:  testPassword,
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	return user
}

func TestUserUseCase_Register(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	uc := usecase.NewUserUseCase(userRepo, nil, 0, mocks.NewMockIDGenerator())

	user := registerTestUser(t, uc)

	if user.PasswordHash != "" {
		t.Error("expected password hash to be stripped from the result")
	}
	if !user.IsActive {
		t.Error("expected new user to be active")
	}

	stored, err := userRepo.GetByEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == testPassword {
		t.Error("expected stored password to be hashed")
	}
}

func TestUserUseCase_Register_Failures(t *testing.T) {
	uc := usecase.NewUserUseCase(mocks.NewMockUserRepository(), nil, 0, mocks.NewMockIDGenerator())
	registerTestUser(t, uc)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "user@example.com",
		Password: testPassword,
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	_, err = uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "not-an-email",
		Password: testPassword,
	})
	if !errors.Is(err, domain.ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}

	_, err = uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "other@example.com",
		Password: "weak",
	})
	if !errors.Is(err, domain.ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak, got %v", err)
	}
}

func TestUserUseCase_Authenticate(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	limiter := mocks.NewMockLoginLimiter()
	uc := usecase.NewUserUseCase(userRepo, limiter, 5, mocks.NewMockIDGenerator())
	registerTestUser(t, uc)

	user, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{
		Email:    "user@example.com",
		Password: testPassword,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("expected password hash to be stripped")
	}
	if user.LastLogin == nil {
		t.Error("expected last login to be set")
	}
}

func TestUserUseCase_Authenticate_WrongPassword(t *testing.T) {
	uc := usecase.NewUserUseCase(mocks.NewMockUserRepository(), nil, 0, mocks.NewMockIDGenerator())
	registerTestUser(t, uc)

	_, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{
		Email:    "user@example.com",
		Password: "WrongPass1",
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// An unknown email reports the same error as a bad password.
	_, err = uc.Authenticate(context.Background(), usecase.AuthenticateInput{
		Email:    "stranger@example.com",
		Password: testPassword,
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserUseCase_Authenticate_Throttled(t *testing.T) {
	limiter := mocks.NewMockLoginLimiter()
	uc := usecase.NewUserUseCase(mocks.NewMockUserRepository(), limiter, 3, mocks.NewMockIDGenerator())
	registerTestUser(t, uc)

	input := usecase.AuthenticateInput{
		Email:    "user@example.com",
		Password: "WrongPass1",
		ClientIP: "203.0.113.7",
	}

	for i := 0; i < 3; i++ {
		if _, err := uc.Authenticate(context.Background(), input); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	if _, err := uc.Authenticate(context.Background(), input); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	// A different caller IP keys a separate counter.
	other := input
	other.ClientIP = "198.51.100.9"
	if _, err := uc.Authenticate(context.Background(), other); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for other IP, got %v", err)
	}
}

func TestUserUseCase_Authenticate_ResetsThrottleOnSuccess(t *testing.T) {
	limiter := mocks.NewMockLoginLimiter()
	uc := usecase.NewUserUseCase(mocks.NewMockUserRepository(), limiter, 3, mocks.NewMockIDGenerator())
	registerTestUser(t, uc)

	bad := usecase.AuthenticateInput{Email: "user@example.com", Password: "WrongPass1"}
	good := usecase.AuthenticateInput{Email: "user@example.com", Password: testPassword}

	for i := 0; i < 2; i++ {
		uc.Authenticate(context.Background(), bad)
	}
	if _, err := uc.Authenticate(context.Background(), good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The counter restarted, so two more bad attempts stay under the limit.
	for i := 0; i < 2; i++ {
		if _, err := uc.Authenticate(context.Background(), bad); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
}

func TestUserUseCase_Authenticate_InactiveUser(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	uc := usecase.NewUserUseCase(userRepo, nil, 0, mocks.NewMockIDGenerator())
	user := registerTestUser(t, uc)

	stored, _ := userRepo.GetByID(context.Background(), user.ID)
	stored.IsActive = false
	if err := userRepo.Update(context.Background(), stored); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{
		Email:    "user@example.com",
		Password: testPassword,
	})
	if !errors.Is(err, domain.ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive, got %v", err)
	}
}

func TestUserUseCase_ChangePassword(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	uc := usecase.NewUserUseCase(userRepo, nil, 0, mocks.NewMockIDGenerator())
	user := registerTestUser(t, uc)

	if err := uc.ChangePassword(context.Background(), user.ID, "WrongPass1", "NewSecret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := uc.ChangePassword(context.Background(), user.ID, testPassword, "weak"); !errors.Is(err, domain.ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak, got %v", err)
	}

	if err := uc.ChangePassword(context.Background(), user.ID, testPassword, "NewSecret1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{
		Email:    "user@example.com",
		Password: "NewSecret1",
	}); err != nil {
		t.Fatalf("expected new password to authenticate, got %v", err)
	}
}

func TestUserUseCase_UpdateProfile(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	uc := usecase.NewUserUseCase(userRepo, nil, 0, mocks.NewMockIDGenerator())
	user := registerTestUser(t, uc)

	updated, err := uc.UpdateProfile(context.Background(), user.ID, usecase.UpdateProfileInput{
		PhoneNumber: "+1-555-0100",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Empty fields are left unchanged.
	if updated.FirstName != "Ada" || updated.LastName != "Lovelace" {
		t.Errorf("expected names unchanged, got %s %s", updated.FirstName, updated.LastName)
	}
	if updated.PhoneNumber != "+1-555-0100" {
		t.Errorf("expected phone updated, got %s", updated.PhoneNumber)
	}
}
