package file

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/finvault/bankd/internal/domain"
)

type userRecord struct {
	UserID       string     `json:"user_id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	PhoneNumber  string     `json:"phone_number"`
	DateOfBirth  string     `json:"date_of_birth"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func userToRecord(u *domain.User) userRecord {
	return userRecord{
		UserID:       u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PhoneNumber:  u.PhoneNumber,
		DateOfBirth:  u.DateOfBirth,
		IsActive:     u.IsActive,
		LastLogin:    u.LastLogin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func recordToUser(r userRecord) *domain.User {
	return &domain.User{
		ID:           r.UserID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PhoneNumber:  r.PhoneNumber,
		DateOfBirth:  r.DateOfBirth,
		IsActive:     r.IsActive,
		LastLogin:    r.LastLogin,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// UserRepository is the file-store implementation of usecase.UserRepository.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create persists a new user.
func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	raw, err := json.Marshal(userToRecord(user))
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return r.store.PutNow(collectionUsers, user.ID, raw)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	raw, ok := r.store.Get(collectionUsers, id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	var rec userRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return recordToUser(rec), nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for raw := range r.store.All(collectionUsers) {
		var rec userRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		if rec.Email == email {
			return recordToUser(rec), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Update overwrites an existing user.
func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.store.Get(collectionUsers, user.ID); !ok {
		return domain.ErrUserNotFound
	}

	raw, err := json.Marshal(userToRecord(user))
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return r.store.PutNow(collectionUsers, user.ID, raw)
}
