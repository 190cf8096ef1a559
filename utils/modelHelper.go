package utils

import (
	"context"
	"errors"

	"github.com/mmdatafocus/pos_backend/config"
	"gorm.io/gorm"
)

/* DB fetching */

// fetch model from db
// (returns notFound when the row does not exist)
func FetchModel[T any](ctx context.Context, id int, notFound *Error, associations ...string) (*T, error) {
	return FetchModelTx[T](config.GetDB().WithContext(ctx), id, notFound, associations...)
}

// same as FetchModel, inside a transaction
func FetchModelTx[T any](tx *gorm.DB, id int, notFound *Error, associations ...string) (*T, error) {
	dbCtx := tx
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if notFound == nil {
			notFound = ErrorRecordNotFound
		}
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// fetch all models from db, ordered by id
func FetchAllModels[T any](ctx context.Context, associations ...string) ([]*T, error) {
	dbCtx := config.GetDB().WithContext(ctx)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var results []*T
	if err := dbCtx.Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Paginate applies skip/limit with config.SearchLimit as the ceiling.
func Paginate(skip int, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if skip < 0 {
			skip = 0
		}
		if limit <= 0 || limit > config.SearchLimit {
			limit = config.SearchLimit
		}
		return db.Offset(skip).Limit(limit)
	}
}
