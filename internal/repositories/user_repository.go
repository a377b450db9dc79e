package repositories

import (
	"context"

	"github.com/classbridge/lms-service/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Query  string // Search query for name or email
	Role   *models.UserRole
	Limit  int
	Offset int
}

// UserRepository interface for user operations. The identity provider owns
// the directory; this service keeps a local row per user for joins and role
// checks, provisioned at first sign-in.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	// Upsert provisions or refreshes the local row from identity claims.
	Upsert(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id string, fullName string, avatarURL *string) error

	// List and search operations
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	Search(ctx context.Context, query string, filters UserFilters) ([]*models.User, int64, error)

	// Validation and checks
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
}
