package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
)

// UserService registers and looks up users.
type UserService struct {
	state *state
}

// List returns every user in registration order.
func (s *UserService) List(ctx context.Context) (users []models.User, err error) {
	defer func() { finish(ctx, "ListUsers", err) }()

	users, err = s.state.users.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Get returns the user registered with phone.
func (s *UserService) Get(ctx context.Context, phone string) (user models.User, err error) {
	defer func() { finish(ctx, "GetUser", err, "phone", phone) }()

	u, ok, err := s.state.findUser(ctx, phone)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", phone, ErrNotFound)
	}
	return u, nil
}

// Create registers a new user. The name is normalized before it is checked
// and stored.
func (s *UserService) Create(ctx context.Context, name, phone string) (user models.User, err error) {
	slog.InfoContext(ctx, "CreateUser request received", "phone", phone)
	defer func() { finish(ctx, "CreateUser", err, "phone", phone) }()

	user = models.User{Name: normalizeName(name), Phone: phone}
	if err := validateUser(user); err != nil {
		return models.User{}, err
	}

	err = s.state.users.Update(ctx, func(users *[]models.User) error {
		for _, u := range *users {
			if u.Phone == user.Phone {
				return fmt.Errorf("user %s: %w", user.Phone, ErrPhoneTaken)
			}
		}
		*users = append(*users, user)
		return nil
	})
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "phone", user.Phone)

	e := events.New(events.UserCreated)
	e.Phone = user.Phone
	s.state.publish(ctx, e)

	return user, nil
}

func validateUser(u models.User) error {
	if u.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if containsDigit(u.Name) {
		return fmt.Errorf("%w: name must not contain digits", ErrValidation)
	}
	if !models.ValidPhone(u.Phone) {
		return fmt.Errorf("%w: phone %q must look like 1234-567890", ErrValidation, u.Phone)
	}
	return nil
}
