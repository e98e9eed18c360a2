package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/Danielbclr/E-commerce-API/internal/domain"
	"github.com/Danielbclr/E-commerce-API/internal/repository"
)

type UserService struct {
	store repository.Store
}

func NewUserService(store repository.Store) *UserService {
	return &UserService{store: store}
}

// Register creates a user with the default ROLE_USER and the cart that will
// follow the user for their whole lifetime. Everything happens in one
// transaction so a user never exists without a cart.
func (s *UserService) Register(ctx context.Context, req domain.RegisterUserRequest) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.NewUser(req.Name, req.Email, string(hash))

	err = s.store.WithinTx(ctx, func(tx repository.TxStore) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		role, err := tx.Users().EnsureRole(ctx, domain.RoleUser)
		if err != nil {
			return err
		}
		if err := tx.Users().AssignRole(ctx, user.ID, role.ID); err != nil {
			return err
		}
		user.Roles = []domain.Role{*role}
		return tx.Carts().CreateCart(ctx, domain.NewCart(user.ID))
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("User registered")
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.store.Users().GetUserByID(ctx, id)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.store.Users().GetUserByEmail(ctx, email)
}

// BootstrapData is the idempotent startup routine: it ensures the default
// roles exist and that the configured admin account is present with a cart.
// Safe to run on every process start.
func (s *UserService) BootstrapData(ctx context.Context, adminEmail, adminPassword, adminName string) error {
	log.Info().Msg("Checking for initial roles and admin user...")

	return s.store.WithinTx(ctx, func(tx repository.TxStore) error {
		adminRole, err := tx.Users().EnsureRole(ctx, domain.RoleAdmin)
		if err != nil {
			return err
		}
		if _, err := tx.Users().EnsureRole(ctx, domain.RoleUser); err != nil {
			return err
		}

		_, err = tx.Users().GetUserByEmail(ctx, adminEmail)
		if err == nil {
			log.Info().Msg("Admin user already exists.")
			return nil
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}

		admin := domain.NewUser(adminName, adminEmail, string(hash))
		if err := tx.Users().CreateUser(ctx, admin); err != nil {
			return err
		}
		if err := tx.Users().AssignRole(ctx, admin.ID, adminRole.ID); err != nil {
			return err
		}
		if err := tx.Carts().CreateCart(ctx, domain.NewCart(admin.ID)); err != nil {
			return err
		}

		log.Info().Str("email", adminEmail).Msg("Initial admin user created")
		return nil
	})
}
