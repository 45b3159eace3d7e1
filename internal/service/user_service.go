package service

import (
	"context"
	"strings"

	"townsquare/internal/models"
	"townsquare/internal/repository"
	"townsquare/internal/validation"
)

// UserService manages the profiles communities refer to.
type UserService struct {
	userRepo repository.UserRepository
}

// CreateUserInput is the input for registering a profile.
type CreateUserInput struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Age      int    `json:"age" validate:"gte=0,lte=150"`
}

// EditUserInput carries the profile fields a user may change. Nil fields are left alone.
type EditUserInput struct {
	Username *string `json:"username" validate:"omitempty,username"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Age      *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// normalizeEmail trims and lowercases an address before it is validated or stored.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Age:      in.Age,
		Active:   true,
	}
	if err := s.userRepo.Add(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.Get(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// EditUser updates a profile. Users may only edit themselves.
func (s *UserService) EditUser(ctx context.Context, targetID, callerID uint, in EditUserInput) (*models.User, error) {
	if targetID != callerID {
		return nil, denied(GateOwner, "You can only edit your own profile")
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		in.Username = &username
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	user, err := s.userRepo.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Username != nil {
		fields["username"] = *in.Username
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if in.Age != nil {
		fields["age"] = *in.Age
	}
	if len(fields) == 0 {
		return user, nil
	}
	if err := s.userRepo.Update(ctx, targetID, fields); err != nil {
		return nil, err
	}
	return s.userRepo.Get(ctx, targetID)
}

// DeleteUser deactivates the caller's own account.
func (s *UserService) DeleteUser(ctx context.Context, targetID, callerID uint) error {
	if targetID != callerID {
		return denied(GateOwner, "You can only delete your own account")
	}
	if _, err := s.userRepo.Get(ctx, targetID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, targetID)
}
