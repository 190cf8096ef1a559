// seed-admin creates or updates the admin user and links it to an employee record,
// so the account can log in and ring up sales on a fresh database.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	ADMIN_USERNAME=admin ADMIN_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/models"
	"github.com/mmdatafocus/pos_backend/utils"
	"gorm.io/gorm"
)

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	ctx := context.Background()
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if len(password) < 8 {
		fail("ADMIN_PASSWORD must be set (at least 8 characters)")
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fail("database not initialized (config.GetDB returned nil). Set DB_* env vars.")
	}
	if err := models.MigrateTable(); err != nil {
		fail("failed to migrate: %v", err)
	}

	role, err := models.GetRoleByName(ctx, models.RoleAdmin)
	if err != nil {
		fail("failed to lookup admin role: %v", err)
	}

	var existing models.User
	err = db.WithContext(ctx).Where("username = ?", username).Take(&existing).Error
	var user *models.User
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = models.CreateUser(ctx, &models.NewUser{
			Username: username,
			Password: password,
			RoleId:   role.ID,
			IsActive: utils.NewTrue(),
		})
		if err != nil {
			fail("failed to create admin user: %v", err)
		}
		fmt.Printf("Created admin user: username=%q\n", username)
	case err != nil:
		fail("failed to lookup user: %v", err)
	default:
		user, err = models.UpdateUser(ctx, existing.ID, &models.UpdateUserInput{
			Password: &password,
			RoleId:   &role.ID,
			IsActive: utils.NewTrue(),
		})
		if err != nil {
			fail("failed to update admin user: %v", err)
		}
		fmt.Printf("Updated admin user: username=%q\n", username)
	}

	if _, err := models.GetEmployeeByUser(ctx, user.ID); err == nil {
		return
	} else if !errors.Is(err, utils.ErrEmployeeNotFound) {
		fail("failed to lookup employee: %v", err)
	}
	if _, err := models.CreateEmployee(ctx, &models.NewEmployee{
		Name:     "Administrator",
		Position: "Administrator",
		UserId:   user.ID,
	}); err != nil {
		fail("failed to create employee record: %v", err)
	}
	fmt.Printf("Linked employee record to %q\n", username)
}
