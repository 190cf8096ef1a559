package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
	"gorm.io/gorm"
)

// Permissions is stored as a JSON array in a text column.
type Permissions []string

func (p Permissions) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *Permissions) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*p = Permissions{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into Permissions", value)
	}
	if len(raw) == 0 {
		*p = Permissions{}
		return nil
	}
	return json.Unmarshal(raw, p)
}

type Role struct {
	ID          int         `gorm:"primary_key" json:"id"`
	Name        string      `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Permissions Permissions `gorm:"type:text" json:"permissions"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRole struct {
	Name        string   `json:"name" binding:"required,max=50"`
	Permissions []string `json:"permissions"`
}

var defaultRoles = []NewRole{
	{Name: RoleAdmin, Permissions: []string{"*"}},
	{Name: RoleManager, Permissions: []string{"read", "write", "pos", "reports"}},
	{Name: RoleCashier, Permissions: []string{"read", "pos"}},
	{Name: RoleUser, Permissions: []string{"read"}},
}

// IsManagerContext reports whether the caller on ctx is a manager or admin.
func IsManagerContext(ctx context.Context) bool {
	role, _ := utils.GetRoleFromContext(ctx)
	return role == RoleAdmin || role == RoleManager
}

// SeedDefaultRoles creates any of the built-in roles that are missing.
func SeedDefaultRoles(ctx context.Context) error {
	db := config.GetDB()
	logger := config.GetLogger()
	for _, r := range defaultRoles {
		var count int64
		if err := db.WithContext(ctx).Model(&Role{}).Where("name = ?", r.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		role := Role{Name: r.Name, Permissions: r.Permissions}
		if err := db.WithContext(ctx).Create(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return err
		}
		logger.WithField("role", r.Name).Info("created default role")
	}
	return nil
}

func isBuiltinRole(name string) bool {
	for _, r := range defaultRoles {
		if r.Name == name {
			return true
		}
	}
	return false
}

func normalizeRoleName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func CreateRole(ctx context.Context, input *NewRole) (*Role, error) {
	name := normalizeRoleName(input.Name)
	if name == "" {
		return nil, utils.Errorf(utils.ErrInvalidInput, "role name is required")
	}
	db := config.GetDB().WithContext(ctx)
	// check duplicate
	if err := utils.ValidateUnique[Role](db, "name", name, 0); err != nil {
		return nil, err
	}
	role := Role{Name: name, Permissions: input.Permissions}
	if err := db.Create(&role).Error; err != nil {
		return nil, utils.TranslateDBError(err, "role name already exists")
	}
	return &role, nil
}

// UpdateRole renames or re-permissions a role. Built-in roles keep their names.
func UpdateRole(ctx context.Context, id int, input *NewRole) (*Role, error) {
	role, err := GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	name := normalizeRoleName(input.Name)
	if name == "" {
		return nil, utils.Errorf(utils.ErrInvalidInput, "role name is required")
	}
	if isBuiltinRole(role.Name) && name != role.Name {
		return nil, utils.Errorf(utils.ErrInvalidInput, "built-in role %s cannot be renamed", role.Name)
	}
	db := config.GetDB().WithContext(ctx)
	if err := utils.ValidateUnique[Role](db, "name", name, id); err != nil {
		return nil, err
	}
	err = db.Model(role).Updates(map[string]interface{}{
		"Name":        name,
		"Permissions": Permissions(input.Permissions),
	}).Error
	if err != nil {
		return nil, utils.TranslateDBError(err, "role name already exists")
	}
	return GetRole(ctx, id)
}

// don't allow if a user is using the role
func DeleteRole(ctx context.Context, id int) (*Role, error) {
	role, err := GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if isBuiltinRole(role.Name) {
		return nil, utils.Errorf(utils.ErrInvalidInput, "built-in role %s cannot be deleted", role.Name)
	}
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	count, err := utils.ResourceCountWhere[User](tx, "role_id = ?", id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if count > 0 {
		tx.Rollback()
		return nil, utils.Errorf(utils.ErrConflict, "role has been used")
	}
	if err := tx.Delete(role).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return role, tx.Commit().Error
}

func GetRole(ctx context.Context, id int) (*Role, error) {
	return utils.FetchModel[Role](ctx, id, utils.ErrRoleNotFound)
}

func GetRoleByName(ctx context.Context, name string) (*Role, error) {
	db := config.GetDB()
	var role Role
	err := db.WithContext(ctx).Where("name = ?", normalizeRoleName(name)).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.Errorf(utils.ErrRoleNotFound, "%s", name)
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func GetRoles(ctx context.Context) ([]*Role, error) {
	return utils.FetchAllModels[Role](ctx)
}
