package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iho/commledger/internal/domain"
)

// UserUseCase implements member management.
type UserUseCase struct {
	userRepo UserRepository
	idGen    IDGenerator
}

func NewUserUseCase(userRepo UserRepository, idGen IDGenerator) *UserUseCase {
	return &UserUseCase{userRepo: userRepo, idGen: idGen}
}

// CreateUserInput represents input for registering a member.
type CreateUserInput struct {
	Email string
	Name  string
	Role  domain.Role
}

// Create registers a new member. Emails are unique and stored lowercased.
func (uc *UserUseCase) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !role.IsValid() {
		return nil, domain.ErrInsufficientRole
	}

	if _, err := uc.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailInUse
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uc.idGen.Generate(),
		Email:     email,
		Name:      strings.TrimSpace(input.Name),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetByID returns a single user.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// GetByEmail returns a user by lowercased email.
func (uc *UserUseCase) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return uc.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
}

// List returns a page of users.
func (uc *UserUseCase) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.userRepo.List(ctx, limit, offset)
}
