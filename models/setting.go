package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
	"gorm.io/gorm"
)

type Setting struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Key         string    `gorm:"size:100;not null;uniqueIndex" json:"key"`
	Value       string    `gorm:"type:text" json:"value"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSetting struct {
	Key         string `json:"key" binding:"required,max=100"`
	Value       string `json:"value"`
	Description string `json:"description" binding:"max=255"`
}

func CreateSetting(ctx context.Context, input *NewSetting) (*Setting, error) {
	key := strings.TrimSpace(input.Key)
	if key == "" {
		return nil, utils.Errorf(utils.ErrInvalidInput, "key is required")
	}
	db := config.GetDB().WithContext(ctx)
	if err := utils.ValidateUnique[Setting](db, "`key`", key, 0); err != nil {
		return nil, err
	}
	setting := Setting{Key: key, Value: input.Value, Description: input.Description}
	if err := db.Create(&setting).Error; err != nil {
		return nil, utils.TranslateDBError(err, "setting already exists")
	}
	return &setting, nil
}

func GetSetting(ctx context.Context, key string) (*Setting, error) {
	db := config.GetDB()
	var setting Setting
	err := db.WithContext(ctx).Where("`key` = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.Errorf(utils.ErrSettingNotFound, "%s", key)
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func ListSettings(ctx context.Context) ([]*Setting, error) {
	db := config.GetDB()
	var results []*Setting
	if err := db.WithContext(ctx).Order("`key`").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func UpdateSetting(ctx context.Context, key string, value string, description *string) (*Setting, error) {
	setting, err := GetSetting(ctx, key)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"Value": value}
	if description != nil {
		updates["Description"] = *description
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(setting).Updates(updates).Error; err != nil {
		return nil, err
	}
	return GetSetting(ctx, key)
}

func DeleteSetting(ctx context.Context, key string) (*Setting, error) {
	setting, err := GetSetting(ctx, key)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(setting).Error; err != nil {
		return nil, err
	}
	return setting, nil
}
