package utils

import (
	"gorm.io/gorm"
)

// check if id exists, return notFound otherwise
func ValidateResourceId[T any](tx *gorm.DB, id interface{}, notFound *Error) error {
	count, err := ResourceCountWhere[T](tx, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return notFound
	}
	return nil
}

// check if ALL ids exist, return notFound otherwise
func ValidateResourcesId[M any, ID comparable](tx *gorm.DB, ids []ID, notFound *Error) error {
	unqIds := UniqueSlice(ids)
	if len(unqIds) == 0 {
		return nil
	}
	count, err := ResourceCountWhere[M](tx, "id IN ?", unqIds)
	if err != nil {
		return err
	}
	if count != int64(len(unqIds)) {
		return notFound
	}
	return nil
}

// ValidateUnique returns ErrConflict when another row already holds value in column.
func ValidateUnique[T any](tx *gorm.DB, column string, value interface{}, exceptId int) error {
	var count int64
	var err error
	if exceptId == 0 {
		count, err = ResourceCountWhere[T](tx, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](tx, column+" = ? AND id <> ?", value, exceptId)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return Errorf(ErrConflict, "duplicate %s", column)
	}
	return nil
}

// count records matching condition
func ResourceCountWhere[T any](tx *gorm.DB, condition string, value ...interface{}) (int64, error) {
	var model T
	var count int64
	if err := tx.Model(&model).Where(condition, value...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
