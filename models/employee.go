package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
	"gorm.io/gorm"
)

type Employee struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;index" json:"name"`
	Position  string    `gorm:"size:50;not null" json:"position"`
	UserId    int       `gorm:"uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewEmployee struct {
	Name     string `json:"name" binding:"required,max=100"`
	Position string `json:"position" binding:"required,max=50"`
	UserId   int    `json:"user_id" binding:"required"`
}

// CreateEmployee links a staff record to an existing user; one employee per user.
func CreateEmployee(ctx context.Context, input *NewEmployee) (*Employee, error) {
	db := config.GetDB().WithContext(ctx)
	if err := utils.ValidateResourceId[User](db, input.UserId, utils.ErrUserNotFound); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[Employee](db, "user_id", input.UserId, 0); err != nil {
		return nil, err
	}
	employee := Employee{
		Name:     input.Name,
		Position: input.Position,
		UserId:   input.UserId,
	}
	if err := db.Create(&employee).Error; err != nil {
		return nil, utils.TranslateDBError(err, "user already has an employee record")
	}
	return &employee, nil
}

func UpdateEmployee(ctx context.Context, id int, input *NewEmployee) (*Employee, error) {
	employee, err := GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB().WithContext(ctx)
	if input.UserId != employee.UserId {
		if err := utils.ValidateResourceId[User](db, input.UserId, utils.ErrUserNotFound); err != nil {
			return nil, err
		}
		if err := utils.ValidateUnique[Employee](db, "user_id", input.UserId, id); err != nil {
			return nil, err
		}
	}
	err = db.Model(employee).Updates(map[string]interface{}{
		"Name":     input.Name,
		"Position": input.Position,
		"UserId":   input.UserId,
	}).Error
	if err != nil {
		return nil, utils.TranslateDBError(err, "user already has an employee record")
	}
	return GetEmployee(ctx, id)
}

func GetEmployee(ctx context.Context, id int) (*Employee, error) {
	return utils.FetchModel[Employee](ctx, id, utils.ErrEmployeeNotFound)
}

func getEmployeeByUserTx(tx *gorm.DB, userId int) (*Employee, error) {
	var employee Employee
	result := tx.Where("user_id = ?", userId).Limit(1).Find(&employee)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.Errorf(utils.ErrEmployeeNotFound, "no employee for user %d", userId)
	}
	return &employee, nil
}

func GetEmployeeByUser(ctx context.Context, userId int) (*Employee, error) {
	return getEmployeeByUserTx(config.GetDB().WithContext(ctx), userId)
}

func ListEmployees(ctx context.Context, skip int, limit int) ([]*Employee, error) {
	db := config.GetDB()
	var results []*Employee
	if err := db.WithContext(ctx).Scopes(utils.Paginate(skip, limit)).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Don't delete if sales reference the employee
func DeleteEmployee(ctx context.Context, id int) (*Employee, error) {
	employee, err := GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	count, err := utils.ResourceCountWhere[Sale](tx, "employee_id = ?", id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if count > 0 {
		tx.Rollback()
		return nil, utils.Errorf(utils.ErrConflict, "employee has sales")
	}
	if err := tx.Delete(employee).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return employee, tx.Commit().Error
}

func GetEmployeeSales(ctx context.Context, id int) ([]*Sale, error) {
	if _, err := GetEmployee(ctx, id); err != nil {
		return nil, err
	}
	return ListSales(ctx, SaleFilter{EmployeeId: id})
}
