package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/classbridge/lms-service/internal/cache"
	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/repositories"
)

// userPostgreSQL keeps the local user directory. Identity lives in the
// auth provider; rows here are provisioned from verified claims at sign-in
// and exist for joins, role checks and roster labels.
type userPostgreSQL struct {
	db          *gorm.DB
	cacheHelper *cache.CacheHelper
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &userPostgreSQL{
		db:          db,
		cacheHelper: cache.NewCacheHelper(redisClient, cache.UserCacheConfig.Prefix),
	}
}

func (r *userPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User

	cacheKey := fmt.Sprintf("id:%s", id)
	if err := r.cacheHelper.Get(ctx, cacheKey, &user); err == nil {
		return &user, nil
	}

	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get user by id")
	}

	_ = r.cacheHelper.Set(ctx, cacheKey, &user, cache.UserCacheConfig.TTL)

	return &user, nil
}

func (r *userPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, handleDBError(err, "get user by email")
	}

	return &user, nil
}

func (r *userPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var users []*models.User
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, handleDBError(err, "get users by ids")
	}

	return users, nil
}

// Upsert provisions or refreshes the local row from identity claims. The
// role set at first sign-in sticks; later sign-ins only refresh profile
// fields, so a demoted admin email cannot silently regain the role.
func (r *userPostgreSQL) Upsert(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(
				[]string{"full_name", "email", "avatar_url", "updated_at"},
			),
		}).
		Create(user).Error
	if err != nil {
		return handleDBError(err, "upsert user")
	}

	cache.SafeDelete(ctx, r.cacheHelper, fmt.Sprintf("id:%s", user.ID))
	return nil
}

func (r *userPostgreSQL) UpdateProfile(ctx context.Context, id string, fullName string, avatarURL *string) error {
	updates := map[string]interface{}{"full_name": fullName}
	if avatarURL != nil {
		updates["avatar_url"] = *avatarURL
	}

	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return handleDBError(err, "update user profile")
	}

	cache.SafeDelete(ctx, r.cacheHelper, fmt.Sprintf("id:%s", id))
	return nil
}

func (r *userPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{})

	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count users")
	}

	query = query.Order("full_name ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "list users")
	}

	return users, total, nil
}

func (r *userPostgreSQL) Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	search := "%" + query + "%"

	var users []*models.User
	var total int64

	dbQuery := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("full_name ILIKE ? OR email ILIKE ?", search, search)

	if filters.Role != nil {
		dbQuery = dbQuery.Where("role = ?", *filters.Role)
	}

	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count user search results")
	}

	dbQuery = dbQuery.Order("full_name ASC")
	if filters.Limit > 0 {
		dbQuery = dbQuery.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		dbQuery = dbQuery.Offset(filters.Offset)
	}

	if err := dbQuery.Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "search users")
	}

	return users, total, nil
}

func (r *userPostgreSQL) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64

	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check user exists")
	}

	return count > 0, nil
}

func (r *userPostgreSQL) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64

	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check user email exists")
	}

	return count > 0, nil
}

func (r *userPostgreSQL) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	return user.Role == role, nil
}
