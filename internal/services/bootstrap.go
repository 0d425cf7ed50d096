package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"clinical-case-server/internal/models"
	"clinical-case-server/internal/repository"
)

// EnsureAdminUser makes sure the default admin account exists. It is
// idempotent and runs once at process start.
func EnsureAdminUser(ctx context.Context, users repository.UserRepository, email, password string, logger *zap.Logger) error {
	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("looking up admin user: %w", err)
	}

	admin := &models.User{
		Email:     email,
		FirstName: "System",
		LastName:  "Admin",
		Role:      models.RoleAdmin,
	}
	if err := admin.SetPassword(password); err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	logger.Info("default admin user created", zap.String("email", email))
	return nil
}
