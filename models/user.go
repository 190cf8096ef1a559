package models

import (
	"context"
	"regexp"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	RoleId    int       `gorm:"not null;index" json:"role_id"`
	Role      *Role     `gorm:"foreignKey:RoleId" json:"role,omitempty"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
	RoleId   int    `json:"role_id" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

type UpdateUserInput struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	RoleId   *int    `json:"role_id"`
	IsActive *bool   `json:"is_active"`
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

/*
caches:
	User:$id
*/

func (user *User) RoleName() string {
	if user.Role == nil {
		return ""
	}
	return user.Role.Name
}

func (user *User) Active() bool {
	return utils.DereferencePtr(user.IsActive, true)
}

func validateUsername(tx *gorm.DB, username string, id int) error {
	if !usernamePattern.MatchString(username) {
		return utils.Errorf(utils.ErrInvalidInput, "username may only contain letters, digits, '_', '.' and '-'")
	}
	return utils.ValidateUnique[User](tx, "username", username, id)
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	db := config.GetDB().WithContext(ctx)
	if err := validateUsername(db, input.Username, 0); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Role](db, input.RoleId, utils.ErrRoleNotFound); err != nil {
		return nil, err
	}
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := User{
		Username: input.Username,
		Password: string(hashed),
		RoleId:   input.RoleId,
		IsActive: input.IsActive,
	}
	if user.IsActive == nil {
		user.IsActive = utils.NewTrue()
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, utils.TranslateDBError(err, "username already registered")
	}
	return GetUser(ctx, user.ID)
}

func GetUser(ctx context.Context, id int) (*User, error) {
	return utils.FetchModel[User](ctx, id, utils.ErrUserNotFound, "Role")
}

// GetCachedUser reads User:$id from redis, falling back to the database.
func GetCachedUser(ctx context.Context, id int) (*User, error) {
	cached, err := utils.RetrieveRedis[User](id)
	if err != nil {
		config.LogError(config.GetLogger(), "User", "GetCachedUser", "redis read failed", id, err)
	}
	if cached != nil {
		return cached, nil
	}
	user, err := GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := utils.StoreRedis(user, id); err != nil {
		config.LogError(config.GetLogger(), "User", "GetCachedUser", "redis write failed", id, err)
	}
	return user, nil
}

func GetAllUsers(ctx context.Context, skip int, limit int) ([]*User, error) {
	db := config.GetDB()
	var results []*User
	if err := db.WithContext(ctx).Preload("Role").Scopes(utils.Paginate(skip, limit)).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func UpdateUser(ctx context.Context, id int, input *UpdateUserInput) (*User, error) {
	user, err := GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB().WithContext(ctx)
	updates := map[string]interface{}{}
	if input.Username != nil && *input.Username != user.Username {
		if err := validateUsername(db, *input.Username, id); err != nil {
			return nil, err
		}
		updates["Username"] = *input.Username
	}
	if input.Password != nil {
		hashed, err := utils.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		updates["Password"] = string(hashed)
	}
	if input.RoleId != nil {
		if err := utils.ValidateResourceId[Role](db, *input.RoleId, utils.ErrRoleNotFound); err != nil {
			return nil, err
		}
		updates["RoleId"] = *input.RoleId
	}
	if input.IsActive != nil {
		updates["IsActive"] = *input.IsActive
	}
	if len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			return nil, utils.TranslateDBError(err, "username already registered")
		}
	}
	// caching
	if err := utils.RemoveRedisItem[User](id); err != nil {
		return nil, err
	}
	return GetUser(ctx, id)
}

// Don't delete users that are linked to an employee record
func DeleteUser(ctx context.Context, id int) (*User, error) {
	user, err := GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	count, err := utils.ResourceCountWhere[Employee](tx, "user_id = ?", id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if count > 0 {
		tx.Rollback()
		return nil, utils.Errorf(utils.ErrConflict, "user is linked to an employee")
	}
	if err := tx.Delete(&User{ID: id}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[User](id); err != nil {
		config.LogError(config.GetLogger(), "User", "DeleteUser", "redis delete failed", id, err)
	}
	return user, nil
}
